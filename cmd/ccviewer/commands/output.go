package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// OutputWriter handles formatted output for commands.
type OutputWriter struct {
	w      io.Writer
	isJSON bool
}

// NewOutputWriter creates a new OutputWriter.
func NewOutputWriter(w io.Writer, isJSON bool) *OutputWriter {
	return &OutputWriter{w: w, isJSON: isJSON}
}

// WriteJSON writes data as formatted JSON.
func (o *OutputWriter) WriteJSON(data any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteTable writes data as a formatted table. Widths count terminal cells
// so CJK titles stay aligned.
func (o *OutputWriter) WriteTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	for i, h := range headers {
		fmt.Fprint(o.w, runewidth.FillRight(strings.ToUpper(h), widths[i])+"  ")
	}
	fmt.Fprintln(o.w)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprint(o.w, runewidth.FillRight(cell, widths[i])+"  ")
			}
		}
		fmt.Fprintln(o.w)
	}
}

// FormatTime formats a time for display.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatAgo formats a time relative to now ("3 hours ago").
func FormatAgo(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.Time(*t)
}

// FormatNumber formats a number with comma separators.
func FormatNumber[T int | int64](n T) string {
	return humanize.Comma(int64(n))
}

// Truncate shortens s to maxLen runes.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// PrintSection prints a section header.
func (o *OutputWriter) PrintSection(title string) {
	fmt.Fprintf(o.w, "\n%s\n", title)
	fmt.Fprintln(o.w, strings.Repeat("-", len(title)))
}

// PrintKeyValue prints a key-value pair.
func (o *OutputWriter) PrintKeyValue(key, value string) {
	fmt.Fprintf(o.w, "%-30s %s\n", key+":", value)
}

// PrintLine prints a line of text.
func (o *OutputWriter) PrintLine(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

// PrintError prints an error message.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
