package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cinematch/internal/render"
)

func TestTitles(t *testing.T) {
	withTestEnv(t)

	c, out, _ := testCommand("")
	require.NoError(t, runTitles(c, []string{"TOY"}))
	assert.Equal(t, "Toy Story (1995)\nToy Story 2 (1999)\n", out.String())
}

func TestTitles_Limit(t *testing.T) {
	withTestEnv(t)
	titlesLimit = 1

	c, out, _ := testCommand("")
	require.NoError(t, runTitles(c, []string{"(199"}))
	assert.Equal(t, "Toy Story (1995)\n", out.String())
}

func TestTitles_NegativeLimit(t *testing.T) {
	withTestEnv(t)
	titlesLimit = -1

	c, _, _ := testCommand("")
	assert.Error(t, runTitles(c, []string{"toy"}))
}

func TestTitles_NotFound(t *testing.T) {
	withTestEnv(t)

	c, out, _ := testCommand("")
	require.NoError(t, runTitles(c, []string{"alien"}))
	assert.Equal(t, "Movie not found: Alien\n", out.String())
}

func TestTitles_JSON(t *testing.T) {
	withTestEnv(t)
	titlesJSON = true

	c, out, _ := testCommand("")
	require.NoError(t, runTitles(c, []string{"alien"}))

	var got []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFeatures(t *testing.T) {
	withTestEnv(t)

	c, out, _ := testCommand("")
	require.NoError(t, runFeatures(c, nil))
	assert.Contains(t, out.String(), "FEATURE")
	assert.Contains(t, out.String(), "imdbRating")
	assert.NotContains(t, out.String(), "url")
}

func TestFeatures_JSON(t *testing.T) {
	withTestEnv(t)
	featuresJSON = true

	c, out, _ := testCommand("")
	require.NoError(t, runFeatures(c, nil))

	var rows []render.FeatureRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 10)
	assert.Equal(t, "imdbRating", rows[0].Name)
	assert.Equal(t, "Drama", rows[9].Name)
}
