package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const testCatalogCSV = `title,imdbRating,ratingCount,duration,year,nrOfWins,nrOfNominations,nrOfNewsArticles,nrOfUserReviews,Animation,Drama,url
Toy Story (1995),8.3,600000,81,1995,27,23,500,900,1,0,http://www.imdb.com/title/tt0114709/
Toy Story 2 (1999),7.9,400000,92,1999,11,17,300,500,1,0,http://www.imdb.com/title/tt0120363/
Pocahontas (1995),6.7,150000,81,1995,11,11,200,300,1,1,http://www.imdb.com/title/tt0114148/
Heat (1995),8.2,500000,170,1995,0,14,400,1000,0,1,http://www.imdb.com/title/tt0113277/
Schindler's List (1993),8.9,1000000,195,1993,80,30,900,1500,0,1,http://www.imdb.com/title/tt0108052/
`

// withTestEnv points config and catalog at a temp dir, clears CINEMATCH_*
// overrides and resets command flags after the test.
func withTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, name := range []string{"CINEMATCH_CATALOG", "CINEMATCH_DEBUG", "CINEMATCH_LOG_LEVEL", "CINEMATCH_CHOOSER"} {
		t.Setenv(name, "")
	}
	t.Setenv("NO_COLOR", "1")

	path := filepath.Join(dir, "imdb.csv")
	if err := os.WriteFile(path, []byte(testCatalogCSV), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	oldConfig, oldCatalog, oldLevel := configPath, catalogPath, logLevelFlag
	oldRec := struct {
		n       int
		prefs   []string
		json    bool
		chooser string
		color   string
	}{recommendN, recommendPrefs, recommendJSON, recommendChooser, recommendColor}
	oldTitlesLimit, oldTitlesJSON, oldFeaturesJSON := titlesLimit, titlesJSON, featuresJSON

	configPath = filepath.Join(dir, "config.yaml")
	catalogPath = path
	logLevelFlag = ""
	recommendN, recommendPrefs, recommendJSON, recommendChooser, recommendColor = 0, nil, false, "", "never"
	titlesLimit, titlesJSON, featuresJSON = 0, false, false

	t.Cleanup(func() {
		configPath, catalogPath, logLevelFlag = oldConfig, oldCatalog, oldLevel
		recommendN, recommendPrefs, recommendJSON = oldRec.n, oldRec.prefs, oldRec.json
		recommendChooser, recommendColor = oldRec.chooser, oldRec.color
		titlesLimit, titlesJSON, featuresJSON = oldTitlesLimit, oldTitlesJSON, oldFeaturesJSON
	})
	return dir
}

// testCommand returns a command wired to in-memory streams.
func testCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetIn(strings.NewReader(stdin))
	c.SetOut(&out)
	c.SetErr(&errOut)
	return c, &out, &errOut
}
