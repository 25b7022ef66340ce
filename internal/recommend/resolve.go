package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/runger/cinematch/internal/catalog"
)

var (
	// ErrNoMatch means no catalog title contains the requested text.
	ErrNoMatch = errors.New("movie not found")

	// ErrAmbiguous is returned when several titles match and the resolver
	// has no Chooser to ask.
	ErrAmbiguous = errors.New("title is ambiguous")
)

// Chooser picks one entry from an ordered list of options and returns its
// 0-based index. Implementations may block on user input.
type Chooser interface {
	Choose(ctx context.Context, options []string) (int, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, options []string) (int, error)

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, options []string) (int, error) {
	return f(ctx, options)
}

// Canonicalize trims and title-cases user input the way catalog titles are
// written ("toy story" -> "Toy Story").
func Canonicalize(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Matches returns, in catalog order, every title that contains partial
// ignoring case. Blank input matches nothing.
func Matches(c *catalog.Catalog, partial string) []string {
	canon := Canonicalize(partial)
	if canon == "" {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(canon)

	var out []string
	for _, title := range c.Titles() {
		if strings.Contains(fold.String(title), needle) {
			out = append(out, title)
		}
	}
	return out
}

// Resolver maps partial titles to exactly one catalog title.
type Resolver struct {
	chooser Chooser
	logger  *slog.Logger
}

// NewResolver creates a Resolver. chooser may be nil, in which case
// ambiguous input fails with ErrAmbiguous. A nil logger discards output.
func NewResolver(chooser Chooser, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{chooser: chooser, logger: logger}
}

// Resolve returns the single catalog title matching partial.
//
// No match returns ErrNoMatch. One match is returned without prompting.
// Several matches are handed to the Chooser; an index outside the option
// list is discarded and the Chooser is asked again. Errors from the Chooser
// end resolution.
func (r *Resolver) Resolve(ctx context.Context, c *catalog.Catalog, partial string) (string, error) {
	options := Matches(c, partial)
	switch len(options) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrNoMatch, Canonicalize(partial))
	case 1:
		return options[0], nil
	}

	if r.chooser == nil {
		return "", fmt.Errorf("%w: %d titles match %q", ErrAmbiguous, len(options), Canonicalize(partial))
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		idx, err := r.chooser.Choose(ctx, options)
		if err != nil {
			return "", err
		}
		if idx >= 0 && idx < len(options) {
			return options[idx], nil
		}
		r.logger.Debug("selection out of range, asking again",
			"selection", idx, "options", len(options))
	}
}
