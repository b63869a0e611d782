package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// colorFor reports whether escape codes should reach w: only terminals get
// them unless forced.
func colorFor(w io.Writer) bool {
	if disableColor {
		return false
	}
	if forceColor {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// C wraps s in color. Whether the codes survive is decided when the text is
// written, see Println.
func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	return color + s + reset
}

// Println writes s to w, dropping escape codes when w is not a terminal.
func Println(w io.Writer, s string) {
	if !colorFor(w) {
		s = stripANSI(s)
	}
	fmt.Fprintln(w, s)
}

func OK(w io.Writer, msg string)   { Println(w, C(current.Success, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { Println(w, C(current.Error, symCross+" "+msg)) }
