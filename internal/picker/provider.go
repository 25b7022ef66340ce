package picker

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Provider supplies the items shown by the picker for a filter query.
type Provider interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Request describes what items the picker wants from a Provider.
type Request struct {
	RequestID uint64 // Monotonically increasing, for stale response detection
	Query     string // Search filter
}

// Item is one selectable entry. Index is its position in the option list
// the picker was opened with.
type Item struct {
	Index int
	Label string
}

// Response carries items back from a Provider.
type Response struct {
	RequestID uint64 // Must match Request.RequestID to be accepted
	Items     []Item
}

// OptionsProvider filters a fixed option list by case-insensitive
// substring match, keeping option order.
type OptionsProvider struct {
	options []string
	folded  []string
}

// NewOptionsProvider creates a provider over options.
func NewOptionsProvider(options []string) *OptionsProvider {
	fold := cases.Fold()
	folded := make([]string, len(options))
	for i, o := range options {
		folded[i] = fold.String(o)
	}
	return &OptionsProvider{options: options, folded: folded}
}

// Fetch implements Provider.
func (p *OptionsProvider) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	needle := cases.Fold().String(strings.TrimSpace(req.Query))

	items := make([]Item, 0, len(p.options))
	for i, f := range p.folded {
		if needle == "" || strings.Contains(f, needle) {
			items = append(items, Item{Index: i, Label: p.options[i]})
		}
	}
	return Response{RequestID: req.RequestID, Items: items}, nil
}
