package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/wudi/packlist/record"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// WriteHTML renders records as an HTML table, going through a Markdown table
// so the same text can be pasted into tickets as-is.
func WriteHTML(w io.Writer, title string, records []record.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := md.Convert([]byte(Markdown(title, records)), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Markdown formats records as a GitHub-flavored Markdown table.
func Markdown(title string, records []record.Record) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", escapeCell(title))
	}
	writeRow(&b, record.Headers)
	seps := make([]string, len(record.Headers))
	for i := range seps {
		seps[i] = "---"
		if i >= 5 {
			seps[i] = "---:"
		}
	}
	writeRow(&b, seps)
	for _, rec := range records {
		writeRow(&b, rec.Strings())
	}
	fmt.Fprintf(&b, "\n%d records\n", len(records))
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
