package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

func visibleWidth(s string) int { return utf8.RuneCountInString(stripANSI(s)) }

// Panel draws a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := Current()
	// compute visible width
	maxw := 0
	for _, ln := range lines {
		if n := visibleWidth(ln); n > maxw {
			maxw = n
		}
	}
	pad := func(s string) string {
		if vis := visibleWidth(s); vis < maxw {
			s += strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	Println(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		Println(w, t.V+" "+pad(ln)+" "+t.V)
	}
	Println(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// EmptyMessage is shown in place of rows when there are no records.
const EmptyMessage = "No data available. Add a record!"

const maxNameWidth = 40

// TableLines renders records as aligned columns: a header, a rule and one
// line per record in list order.
func TableLines(records []model.Record) []string {
	t := Current()
	header := []string{"ID", "Name", "Value", "Phone"}
	if len(records) == 0 {
		return []string{C(t.Header, strings.Join(header, "  ")), C(t.Muted, EmptyMessage)}
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row(r))
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	out := make([]string, 0, len(rows)+2)
	out = append(out, C(t.Header, joinCells(header, widths)))
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat(t.H, n)
	}
	out = append(out, C(t.Muted, strings.Join(rule, "  ")))
	for _, row := range rows {
		out = append(out, joinCells(row, widths))
	}
	return out
}

// Row is the display form of a record: id, name, value, phone.
func Row(r model.Record) []string {
	name := r.Name
	if utf8.RuneCountInString(name) > maxNameWidth {
		name = string([]rune(name)[:maxNameWidth-3]) + "..."
	}
	phone := r.Phone
	if phone == "" {
		phone = MissingPhone
	}
	return []string{fmt.Sprintf("%d", r.ID), name, form.FormatValue(r.Value), phone}
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// Summary is the header line: title plus record count and value total.
func Summary(records []model.Record) string {
	t := Current()
	total := 0.0
	for _, r := range records {
		total += r.Value
	}
	return fmt.Sprintf("%s   %s %d  %s %s",
		C(t.Title, "Records"),
		C(t.Accent, "Count"), len(records),
		C(t.Accent, "Total"), form.FormatValue(total),
	)
}
