package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/runger/cinematch/internal/catalog"
)

// ErrInvalidCount is returned when fewer than one result is requested.
var ErrInvalidCount = errors.New("number of recommendations must be positive")

// Match is one ranked catalog title and its distance to the query.
type Match struct {
	Title    string  `json:"title"`
	Distance float64 `json:"distance"`
}

// Distance returns the Euclidean distance between a and b.
// a and b must have the same length.
func Distance(a, b catalog.FeatureVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Rank measures q against every record of c except the one titled exclude
// and returns the n closest, nearest first. Equal distances keep catalog
// order. An empty exclude compares against the whole catalog.
//
// Fewer than n eligible records yields all of them; none yields an empty,
// non-nil slice.
func Rank(c *catalog.Catalog, q Query, exclude string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidCount, n)
	}
	if len(q.Vector) != c.Schema().Len() {
		return nil, fmt.Errorf("query has %d features, catalog schema has %d",
			len(q.Vector), c.Schema().Len())
	}

	matches := make([]Match, 0, c.Len())
	c.Each(func(_ int, r catalog.Record) {
		if exclude != "" && r.Title == exclude {
			return
		}
		matches = append(matches, Match{Title: r.Title, Distance: Distance(q.Vector, r.Features)})
	})

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > n {
		matches = matches[:n:n]
	}
	return matches, nil
}
