package render

import (
	"fmt"
	"io"
	"strings"
)

// Setting is one configuration key and its current value.
type Setting struct {
	Key   string
	Value string
}

const notSet = "(not set)"

// Settings writes a titled key = value listing. Empty values show as
// (not set).
func (p *Printer) Settings(heading string, settings []Setting) error {
	var b strings.Builder
	b.WriteString(p.heading.Render(heading))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n\n")
	for _, s := range settings {
		fmt.Fprintf(&b, "  %s = %s\n", p.key.Render(s.Key), p.value(s.Value))
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// Setting writes key = value for a value that was just changed.
func (p *Printer) Setting(s Setting) error {
	_, err := fmt.Fprintf(p.out, "%s = %s\n", p.key.Render(s.Key), p.value(s.Value))
	return err
}

// Value writes a bare configuration value.
func (p *Printer) Value(v string) error {
	_, err := fmt.Fprintln(p.out, p.value(v))
	return err
}

// Line writes msg unstyled.
func (p *Printer) Line(msg string) error {
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

func (p *Printer) value(v string) string {
	if v == "" {
		return p.dim.Render(notSet)
	}
	return v
}
