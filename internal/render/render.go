// Package render formats recommendation results for people and programs.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/runger/cinematch/internal/recommend"
	"github.com/runger/cinematch/internal/sanitize"
)

// Color modes accepted by Options.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options controls text rendering.
type Options struct {
	// Color is auto, always, or never. Auto follows the terminal and
	// honours NO_COLOR.
	Color string
	// MaxTitleWidth caps displayed titles in columns. 0 uses the terminal
	// width when the output is a terminal, and no limit otherwise.
	MaxTitleWidth int
}

// Printer writes human-readable output.
type Printer struct {
	out        io.Writer
	titleWidth int

	heading lipgloss.Style
	rank    lipgloss.Style
	title   lipgloss.Style
	dist    lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
	key     lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(colorProfile(w, opts.Color))

	return &Printer{
		out:        w,
		titleWidth: titleWidth(w, opts.MaxTitleWidth),
		heading:    r.NewStyle().Bold(true),
		rank:       r.NewStyle().Foreground(lipgloss.Color("241")),
		title:      r.NewStyle().Foreground(lipgloss.Color("15")),
		dist:       r.NewStyle().Foreground(lipgloss.Color("245")),
		warn:       r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:        r.NewStyle().Foreground(lipgloss.Color("241")),
		key:        r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// colorProfile maps a color mode to a termenv profile for w.
func colorProfile(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.ANSI256
	default:
		return termenv.NewOutput(w).EnvColorProfile()
	}
}

// titleWidth resolves the title column limit. The margin leaves room for
// the rank and distance columns.
func titleWidth(w io.Writer, limit int) int {
	if limit > 0 {
		return limit
	}
	const margin = 16
	cols := 0
	if f, ok := w.(*os.File); ok {
		cols = ioctlWidth(f)
	}
	if cols == 0 {
		if c, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
			cols = c
		}
	}
	if cols <= margin {
		return 0
	}
	return cols - margin
}

// displayTitle cleans and truncates a title for one output line.
func (p *Printer) displayTitle(t string) string {
	t = sanitize.Title(t)
	if p.titleWidth > 0 {
		t = sanitize.MiddleTruncate(t, p.titleWidth)
	}
	return t
}

// Result writes a recommendation result.
//
//	Recommendations based on movie Pocahontas (1995):
//	  1. Mulan (1998)          0.4123
//	  2. Tarzan (1999)         0.5271
func (p *Printer) Result(res *recommend.Result) error {
	if res.NotFound {
		_, err := fmt.Fprintln(p.out, p.warn.Render("Movie not found: "+sanitize.Title(res.Query)))
		return err
	}

	var b strings.Builder
	if len(res.Ignored) > 0 {
		b.WriteString(p.warn.Render("Ignoring unknown preferences: " + strings.Join(res.Ignored, ", ")))
		b.WriteByte('\n')
	}

	switch res.Mode {
	case recommend.ModeTitle:
		b.WriteString(p.heading.Render("Recommendations based on movie " + p.displayTitle(res.Title) + ":"))
	default:
		b.WriteString(p.heading.Render("Recommendations for given preferences:"))
	}
	b.WriteByte('\n')

	if len(res.Matches) == 0 {
		b.WriteString(p.dim.Render("  (no other movies in catalog)"))
		b.WriteByte('\n')
	}

	titles := make([]string, len(res.Matches))
	col := 0
	for i, m := range res.Matches {
		titles[i] = p.displayTitle(m.Title)
		col = max(col, sanitize.Width(titles[i]))
	}
	numWidth := len(strconv.Itoa(len(res.Matches)))
	for i, m := range res.Matches {
		num := fmt.Sprintf("%*d.", numWidth, i+1)
		b.WriteString("  ")
		b.WriteString(p.rank.Render(num))
		b.WriteByte(' ')
		b.WriteString(p.title.Render(sanitize.PadRight(titles[i], col)))
		b.WriteString("  ")
		b.WriteString(p.dist.Render(strconv.FormatFloat(m.Distance, 'f', 4, 64)))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

// Titles writes one title per line.
func (p *Printer) Titles(titles []string) error {
	var b strings.Builder
	for _, t := range titles {
		b.WriteString(p.displayTitle(t))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// Warn writes a highlighted warning line.
func (p *Printer) Warn(msg string) error {
	_, err := fmt.Fprintln(p.out, p.warn.Render(msg))
	return err
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
