package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/runger/cinematch/internal/catalog"
)

// Mode says how a result's query was built.
type Mode string

const (
	ModeTitle       Mode = "title"
	ModePreferences Mode = "preferences"
)

// Request is one recommendation request. An empty Title selects
// preference mode.
type Request struct {
	Title       string
	N           int
	Preferences map[string]float64
}

// Result is the outcome of one request. When NotFound is set, Query holds
// the canonicalized input and Matches is empty.
type Result struct {
	RequestID string  `json:"request_id"`
	Mode      Mode    `json:"mode"`
	Query     string  `json:"query,omitempty"`
	Title     string  `json:"title,omitempty"`
	NotFound  bool    `json:"not_found"`
	Matches   []Match `json:"matches"`
	// Ignored lists preference keys that name no catalog field.
	Ignored []string `json:"ignored_preferences,omitempty"`
}

// Engine answers recommendation requests against one catalog.
type Engine struct {
	catalog  *catalog.Catalog
	resolver *Resolver
	chooser  Chooser
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithChooser sets the chooser used to disambiguate titles.
func WithChooser(ch Chooser) Option {
	return func(e *Engine) { e.chooser = ch }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over c. The catalog is only read.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = NewResolver(e.chooser, e.logger)
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Recommend runs one request.
//
// A title that matches nothing is not an error: the result comes back with
// NotFound set. Errors are reserved for invalid requests and chooser
// failures (for example, the user cancelling the selection).
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	if req.N <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidCount, req.N)
	}

	res := &Result{RequestID: uuid.NewString(), Matches: []Match{}}
	log := e.logger.With("request_id", res.RequestID)

	var (
		q       Query
		exclude string
	)
	if req.Title == "" {
		res.Mode = ModePreferences
		var err error
		if q, err = FromPreferences(e.catalog, req.Preferences); err != nil {
			return nil, err
		}
		res.Ignored = UnknownPreferences(e.catalog, req.Preferences)
		if len(res.Ignored) > 0 {
			log.Warn("ignoring unknown preferences", "keys", res.Ignored)
		}
	} else {
		res.Mode = ModeTitle
		res.Query = Canonicalize(req.Title)

		title, err := e.resolver.Resolve(ctx, e.catalog, req.Title)
		if errors.Is(err, ErrNoMatch) {
			res.NotFound = true
			log.Info("title not found", "query", res.Query)
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve title: %w", err)
		}
		res.Title = title

		q, err = FromTitle(e.catalog, title)
		if err != nil {
			return nil, err
		}
		exclude = title
	}

	matches, err := Rank(e.catalog, q, exclude, req.N)
	if err != nil {
		return nil, err
	}
	res.Matches = matches

	log.Info("recommendation served",
		"mode", res.Mode,
		"title", res.Title,
		"n", req.N,
		"results", len(matches),
	)
	return res, nil
}
