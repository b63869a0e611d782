package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Field names a form input.
type Field int

const (
	FieldName Field = iota
	FieldValue
	FieldPhone
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldValue:
		return "value"
	case FieldPhone:
		return "phone"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// PhoneDigits is the exact digit count an accepted phone number has.
const PhoneDigits = 10

// ValidationError reports the first rule a submission broke. Field is the
// input that should regain focus.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Fields holds the raw text of the form inputs.
type Fields struct {
	Name  string
	Value string
	Phone string
}

// Input is a validated, normalised submission.
type Input struct {
	Name  string
	Value float64
	Phone string
}

// Validate applies the rules in order; the first failure wins.
func Validate(f Fields, requirePhone bool) (Input, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Input{}, &ValidationError{Field: FieldName, Message: "Name is required."}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return Input{}, &ValidationError{Field: FieldValue, Message: "Enter a valid non-negative number."}
	}

	in := Input{Name: name, Value: value}
	if requirePhone {
		phone := NormalizePhone(f.Phone)
		if len(phone) != PhoneDigits {
			return Input{}, &ValidationError{
				Field:   FieldPhone,
				Message: fmt.Sprintf("Enter a valid %d-digit phone number.", PhoneDigits),
			}
		}
		in.Phone = phone
	}
	return in, nil
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatValue renders a value the way the form shows it when editing.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
