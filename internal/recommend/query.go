// Package recommend ranks catalog movies by Euclidean distance to a query
// built either from a chosen title or from stated preferences.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/runger/cinematch/internal/catalog"
)

// ErrTitleNotFound is returned by FromTitle when no record has the title.
var ErrTitleNotFound = errors.New("title not found in catalog")

// ErrInvalidPreference is returned for a preference value that is NaN or
// infinite.
var ErrInvalidPreference = errors.New("invalid preference")

// Query is the feature vector every catalog record is measured against.
// Title is the originating movie, empty for preference queries.
type Query struct {
	Vector catalog.FeatureVector
	Title  string
}

// FromTitle builds a query from the record whose title equals title exactly.
func FromTitle(c *catalog.Catalog, title string) (Query, error) {
	r, ok := c.Record(title)
	if !ok {
		return Query{}, fmt.Errorf("%w: %q", ErrTitleNotFound, title)
	}
	return Query{Vector: r.Features, Title: r.Title}, nil
}

// FromPreferences synthesizes a query from explicit feature values.
//
// Every continuous field starts at the catalog maximum for that field and
// every binary field at 0. Each prefs entry naming a schema field then
// overwrites it, whatever its kind. Entries naming unknown fields are
// ignored without error; use UnknownPreferences to list them. Any value
// that is not finite fails with ErrInvalidPreference.
func FromPreferences(c *catalog.Catalog, prefs map[string]float64) (Query, error) {
	if err := checkPreferences(prefs); err != nil {
		return Query{}, err
	}

	schema := c.Schema()
	vec := make(catalog.FeatureVector, schema.Len())
	for j := 0; j < schema.Len(); j++ {
		if schema.Field(j).Kind == catalog.Continuous {
			vec[j] = c.StatsAt(j).Max
		}
	}
	for name, v := range prefs {
		if j, ok := schema.Index(name); ok {
			vec[j] = v
		}
	}
	return Query{Vector: vec}, nil
}

func checkPreferences(prefs map[string]float64) error {
	var bad []string
	for name, v := range prefs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, name)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("%w: %s must be finite", ErrInvalidPreference, strings.Join(bad, ", "))
}

// UnknownPreferences returns the sorted prefs keys that FromPreferences
// would ignore.
func UnknownPreferences(c *catalog.Catalog, prefs map[string]float64) []string {
	schema := c.Schema()
	var unknown []string
	for name := range prefs {
		if _, ok := schema.Index(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
