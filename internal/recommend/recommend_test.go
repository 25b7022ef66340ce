package recommend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cinematch/internal/catalog"
)

// --- fixtures ---

// abcCatalog is the three-movie catalog A(1,1), B(.5,.5), C(0,0).
func abcCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	schema, err := catalog.NewSchema([]catalog.Field{
		{Name: "rating", Kind: catalog.Continuous},
		{Name: "year", Kind: catalog.Continuous},
	})
	require.NoError(t, err)
	c, err := catalog.New(schema, []catalog.Record{
		{Title: "A", Features: catalog.FeatureVector{1.0, 1.0}},
		{Title: "B", Features: catalog.FeatureVector{0.5, 0.5}},
		{Title: "C", Features: catalog.FeatureVector{0.0, 0.0}},
	})
	require.NoError(t, err)
	return c
}

func disneyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	schema, err := catalog.NewSchema([]catalog.Field{
		{Name: "imdbRating", Kind: catalog.Continuous},
		{Name: "year", Kind: catalog.Continuous},
		{Name: "Animation", Kind: catalog.Binary},
		{Name: "Drama", Kind: catalog.Binary},
	})
	require.NoError(t, err)
	c, err := catalog.New(schema, []catalog.Record{
		{Title: "Toy Story (1995)", Features: catalog.FeatureVector{0.9, 0.6, 1, 0}},
		{Title: "Toy Story 2 (1999)", Features: catalog.FeatureVector{0.8, 0.7, 1, 0}},
		{Title: "Pocahontas (1995)", Features: catalog.FeatureVector{0.5, 0.6, 1, 1}},
		{Title: "Toy Story 3 (2010)", Features: catalog.FeatureVector{0.85, 1.0, 1, 0}},
		{Title: "Schindler's List (1993)", Features: catalog.FeatureVector{1.0, 0.0, 0, 1}},
	})
	require.NoError(t, err)
	return c
}

// scriptedChooser replays canned answers and records every prompt.
type scriptedChooser struct {
	answers []int
	err     error
	calls   [][]string
}

func (s *scriptedChooser) Choose(_ context.Context, options []string) (int, error) {
	s.calls = append(s.calls, append([]string(nil), options...))
	if s.err != nil {
		return 0, s.err
	}
	if len(s.answers) == 0 {
		return 0, io.EOF
	}
	idx := s.answers[0]
	s.answers = s.answers[1:]
	return idx, nil
}

func titles(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Title
	}
	return out
}

// --- distance & ranking ---

func TestDistance_Symmetric(t *testing.T) {
	c := disneyCatalog(t)
	var vecs []catalog.FeatureVector
	c.Each(func(_ int, r catalog.Record) {
		vecs = append(vecs, r.Features.Clone())
	})

	for i := range vecs {
		assert.Equal(t, 0.0, Distance(vecs[i], vecs[i]))
		for j := range vecs {
			assert.Equal(t, Distance(vecs[i], vecs[j]), Distance(vecs[j], vecs[i]))
		}
	}
	assert.InDelta(t, 5.0, Distance(catalog.FeatureVector{0, 0}, catalog.FeatureVector{3, 4}), 1e-12)
}

func TestRank_ExcludesTitleAndOrders(t *testing.T) {
	c := disneyCatalog(t)
	q, err := FromTitle(c, "Toy Story (1995)")
	require.NoError(t, err)

	for n := 1; n <= 6; n++ {
		got, err := Rank(c, q, "Toy Story (1995)", n)
		require.NoError(t, err)
		assert.Len(t, got, min(n, 4))
		assert.NotContains(t, titles(got), "Toy Story (1995)")
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
		}
	}
}

func TestRank_NoExclusionComparesWholeCatalog(t *testing.T) {
	c := abcCatalog(t)
	got, err := Rank(c, Query{Vector: catalog.FeatureVector{1, 1}}, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(got))
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	c := abcCatalog(t)
	// (0.5, 0.5) is equidistant from A and C.
	got, err := Rank(c, Query{Vector: catalog.FeatureVector{0.5, 0.5}}, "B", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, titles(got))
	assert.Equal(t, got[0].Distance, got[1].Distance)
}

func TestRank_EmptyAfterExclusion(t *testing.T) {
	schema, err := catalog.NewSchema([]catalog.Field{{Name: "rating"}})
	require.NoError(t, err)
	c, err := catalog.New(schema, []catalog.Record{{Title: "Only", Features: catalog.FeatureVector{1}}})
	require.NoError(t, err)

	got, err := Rank(c, Query{Vector: catalog.FeatureVector{1}, Title: "Only"}, "Only", 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_InvalidInput(t *testing.T) {
	c := abcCatalog(t)

	_, err := Rank(c, Query{Vector: catalog.FeatureVector{1, 1}}, "", 0)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Rank(c, Query{Vector: catalog.FeatureVector{1}}, "", 1)
	assert.Error(t, err)
}

// --- query building ---

func TestFromTitle(t *testing.T) {
	c := abcCatalog(t)

	q, err := FromTitle(c, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", q.Title)
	assert.Equal(t, catalog.FeatureVector{0.5, 0.5}, q.Vector)

	_, err = FromTitle(c, "b")
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestFromPreferences(t *testing.T) {
	c := disneyCatalog(t)

	q, err := FromPreferences(c, nil)
	require.NoError(t, err)
	assert.Empty(t, q.Title)
	assert.Equal(t, catalog.FeatureVector{1.0, 1.0, 0, 0}, q.Vector,
		"continuous fields default to the catalog max, binary to 0")

	q, err = FromPreferences(c, map[string]float64{
		"year":      0.25,
		"Drama":     1,
		"Animation": 0.5,
		"Western":   1,
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.FeatureVector{1.0, 0.25, 0.5, 1}, q.Vector)

	assert.Equal(t, []string{"Western", "director"},
		UnknownPreferences(c, map[string]float64{"director": 1, "Western": 1, "year": 2}))
}

func TestFromPreferences_RejectsNonFinite(t *testing.T) {
	c := disneyCatalog(t)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromPreferences(c, map[string]float64{"year": v, "Drama": 1})
		require.ErrorIs(t, err, ErrInvalidPreference, "value %v", v)
		assert.Contains(t, err.Error(), "year must be finite")
	}

	_, err := FromPreferences(c, map[string]float64{"budget": math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidPreference, "unknown keys are checked too")
}

// --- title resolution ---

func TestMatches(t *testing.T) {
	c := disneyCatalog(t)

	assert.Equal(t, []string{"Toy Story (1995)", "Toy Story 2 (1999)", "Toy Story 3 (2010)"},
		Matches(c, "toy story"))
	assert.Equal(t, []string{"Schindler's List (1993)"}, Matches(c, "  SCHINDLER "))
	assert.Empty(t, Matches(c, "Frozen"))
	assert.Empty(t, Matches(c, "   "))
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "Toy Story", Canonicalize("  toy STORY "))
}

func TestResolve_NoMatch(t *testing.T) {
	ch := &scriptedChooser{}
	r := NewResolver(ch, nil)

	_, err := r.Resolve(context.Background(), disneyCatalog(t), "frozen")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Empty(t, ch.calls)
}

func TestResolve_SingleMatchDoesNotPrompt(t *testing.T) {
	ch := &scriptedChooser{}
	r := NewResolver(ch, nil)

	got, err := r.Resolve(context.Background(), disneyCatalog(t), "pocahontas")
	require.NoError(t, err)
	assert.Equal(t, "Pocahontas (1995)", got)
	assert.Empty(t, ch.calls)
}

func TestResolve_MultipleMatchesAsksChooser(t *testing.T) {
	ch := &scriptedChooser{answers: []int{1}}
	r := NewResolver(ch, nil)

	got, err := r.Resolve(context.Background(), disneyCatalog(t), "Toy Story")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story 2 (1999)", got)
	require.Len(t, ch.calls, 1)
	assert.Equal(t, []string{"Toy Story (1995)", "Toy Story 2 (1999)", "Toy Story 3 (2010)"}, ch.calls[0])
}

func TestResolve_OutOfRangeSelectionRetries(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ch := &scriptedChooser{answers: []int{-1, 3, 7, 2}}
	r := NewResolver(ch, logger)

	got, err := r.Resolve(context.Background(), disneyCatalog(t), "toy")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story 3 (2010)", got)
	assert.Len(t, ch.calls, 4)
	assert.Contains(t, logBuf.String(), "selection out of range")
}

func TestResolve_ChooserErrorStops(t *testing.T) {
	boom := errors.New("boom")
	r := NewResolver(&scriptedChooser{err: boom}, nil)

	_, err := r.Resolve(context.Background(), disneyCatalog(t), "toy")
	assert.ErrorIs(t, err, boom)
}

func TestResolve_AmbiguousWithoutChooser(t *testing.T) {
	r := NewResolver(nil, nil)
	_, err := r.Resolve(context.Background(), disneyCatalog(t), "toy")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewResolver(&scriptedChooser{answers: []int{0}}, nil)

	_, err := r.Resolve(ctx, disneyCatalog(t), "toy")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChooserFunc(t *testing.T) {
	var ch Chooser = ChooserFunc(func(_ context.Context, options []string) (int, error) {
		return len(options) - 1, nil
	})
	idx, err := ch.Choose(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

// --- engine ---

func TestEngine_TitlePath(t *testing.T) {
	e := New(abcCatalog(t))
	ctx := context.Background()

	tests := []struct {
		n     int
		want  []string
		dists []float64
	}{
		{1, []string{"B"}, []float64{math.Sqrt2 / 2}},
		{2, []string{"B", "C"}, []float64{math.Sqrt2 / 2, math.Sqrt2}},
		{5, []string{"B", "C"}, []float64{math.Sqrt2 / 2, math.Sqrt2}},
	}
	for _, tt := range tests {
		res, err := e.Recommend(ctx, Request{Title: "A", N: tt.n})
		require.NoError(t, err)
		assert.False(t, res.NotFound)
		assert.Equal(t, ModeTitle, res.Mode)
		assert.Equal(t, "A", res.Title)
		assert.Equal(t, tt.want, titles(res.Matches), "n=%d", tt.n)
		for i, d := range tt.dists {
			assert.InDelta(t, d, res.Matches[i].Distance, 1e-9)
		}
		assert.NotEmpty(t, res.RequestID)
	}
}

func TestEngine_TitleNotFound(t *testing.T) {
	e := New(abcCatalog(t))

	res, err := e.Recommend(context.Background(), Request{Title: "Z", N: 1})
	require.NoError(t, err)
	assert.True(t, res.NotFound)
	assert.Equal(t, "Z", res.Query)
	assert.Empty(t, res.Matches)
}

func TestEngine_PreferencePath(t *testing.T) {
	var logBuf bytes.Buffer
	e := New(disneyCatalog(t), WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))

	res, err := e.Recommend(context.Background(), Request{
		N:           2,
		Preferences: map[string]float64{"Drama": 1, "Animation": 0, "year": 0, "budget": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, ModePreferences, res.Mode)
	assert.Empty(t, res.Title)
	assert.Equal(t, []string{"Schindler's List (1993)", "Pocahontas (1995)"}, titles(res.Matches))
	assert.Equal(t, []string{"budget"}, res.Ignored)
	assert.Contains(t, logBuf.String(), "ignoring unknown preferences")
}

func TestEngine_NonFinitePreference(t *testing.T) {
	e := New(disneyCatalog(t))

	res, err := e.Recommend(context.Background(), Request{
		N:           3,
		Preferences: map[string]float64{"year": math.NaN()},
	})
	assert.ErrorIs(t, err, ErrInvalidPreference)
	assert.Nil(t, res)

	_, err = e.Recommend(context.Background(), Request{
		N:           3,
		Preferences: map[string]float64{"Drama": math.Inf(1)},
	})
	assert.ErrorIs(t, err, ErrInvalidPreference)
}

func TestEngine_AmbiguousTitleUsesChooser(t *testing.T) {
	ch := &scriptedChooser{answers: []int{2}}
	e := New(disneyCatalog(t), WithChooser(ch))

	res, err := e.Recommend(context.Background(), Request{Title: "toy story", N: 1})
	require.NoError(t, err)
	assert.Equal(t, "Toy Story 3 (2010)", res.Title)
	assert.Equal(t, []string{"Toy Story 2 (1999)"}, titles(res.Matches))
}

func TestEngine_ChooserFailure(t *testing.T) {
	e := New(disneyCatalog(t), WithChooser(&scriptedChooser{}))

	_, err := e.Recommend(context.Background(), Request{Title: "toy", N: 1})
	assert.ErrorIs(t, err, io.EOF)
}

func TestEngine_InvalidCount(t *testing.T) {
	_, err := New(abcCatalog(t)).Recommend(context.Background(), Request{Title: "A", N: 0})
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestEngine_DoesNotMutateCatalog(t *testing.T) {
	c := abcCatalog(t)
	before := c.Column(0)
	e := New(c)

	_, err := e.Recommend(context.Background(), Request{Title: "A", N: 3})
	require.NoError(t, err)
	_, err = e.Recommend(context.Background(), Request{N: 3, Preferences: map[string]float64{"rating": 0}})
	require.NoError(t, err)

	assert.Equal(t, before, c.Column(0))
	assert.Equal(t, 3, c.Len())
}
