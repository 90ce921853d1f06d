package snapshot

import (
	"io"
	"strings"
)

// Format renders s as snapshot text, one newline-terminated line per field.
func Format(s Snapshot) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.label)
		b.WriteString(": ")
		b.WriteString(f.format(&s))
		b.WriteString(f.unit)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the snapshot text of s to w.
func WriteTo(w io.Writer, s Snapshot) (int64, error) {
	n, err := io.WriteString(w, Format(s))
	return int64(n), err
}

// Header returns the column names of a row, in order.
func Header() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.label
	}
	return out
}

// Row returns the column values of s: integers unscaled, load averages with
// two fraction digits.
func Row(s Snapshot) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.format(&s)
	}
	return out
}
