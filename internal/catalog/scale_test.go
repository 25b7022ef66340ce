package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale_MapsRangeToTarget(t *testing.T) {
	tests := []struct {
		name   string
		column []float64
		target float64
		want   []float64
	}{
		{"unit", []float64{2, 4, 6}, 1, []float64{0, 0.5, 1}},
		{"weighted", []float64{10, 0, 5}, 4, []float64{4, 0, 2}},
		{"negative input", []float64{-1, 1}, 1, []float64{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scale(tt.column, tt.target)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestScale_MonotonicAndPure(t *testing.T) {
	column := []float64{1995, 1931, 2013, 1931, 1977}
	orig := append([]float64(nil), column...)

	got, err := Scale(column, 2.5)
	require.NoError(t, err)
	assert.Equal(t, orig, column, "input must not be modified")

	for i := range column {
		for j := range column {
			if column[i] < column[j] {
				assert.Less(t, got[i], got[j])
			}
		}
	}
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 2.5, got[2])
}

func TestScale_Degenerate(t *testing.T) {
	for _, column := range [][]float64{{3, 3, 3}, {7}, {}} {
		_, err := Scale(column, 1)
		var de *DegenerateColumnError
		require.True(t, errors.As(err, &de), "column %v", column)
	}
}

func TestNormalize(t *testing.T) {
	c := testCatalog(t)

	n, err := Normalize(c, map[string]float64{"year": 2})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 1, 0.6667}, n.Column(0), 1e-3)
	assert.InDeltaSlice(t, []float64{0, 1.5, 2}, n.Column(1), 1e-12)
	assert.Equal(t, []float64{0, 1, 1}, n.Column(2), "binary fields are not rescaled")

	st, _ := n.Stats("year")
	assert.Equal(t, Stats{Min: 0, Max: 2}, st)

	// The source catalog is untouched.
	assert.Equal(t, []float64{1995, 1998, 1999}, c.Column(1))
}

func TestNormalize_DegenerateColumnNamed(t *testing.T) {
	c, err := New(testSchema(t), []Record{
		{Title: "A", Features: FeatureVector{5, 2000, 0}},
		{Title: "B", Features: FeatureVector{6, 2000, 1}},
	})
	require.NoError(t, err)

	_, err = Normalize(c, nil)
	var de *DegenerateColumnError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "year", de.Column)
	assert.Equal(t, 2000.0, de.Value)
	assert.Contains(t, err.Error(), `"year"`)
}

func TestNormalize_RejectsBadScales(t *testing.T) {
	c := testCatalog(t)
	for _, scales := range []map[string]float64{
		{"unknown": 1},
		{"Drama": 2},
		{"year": 0},
		{"year": math.NaN()},
		{"year": math.Inf(1)},
	} {
		_, err := Normalize(c, scales)
		require.Error(t, err, "scales %v", scales)
		assert.Contains(t, err.Error(), "invalid scale factors")
	}
}
