package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultScale is the target maximum used for a continuous feature that has
// no explicit scale factor.
const DefaultScale = 1.0

// DegenerateColumnError reports a column whose values are all equal, so it
// cannot be rescaled.
type DegenerateColumnError struct {
	Column string
	Value  float64
}

func (e *DegenerateColumnError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("degenerate column: every value is %v", e.Value)
	}
	return fmt.Sprintf("degenerate column %q: every value is %v", e.Column, e.Value)
}

// Scale maps every value v of column to targetMax*(v-min)/(max-min) and
// returns the result as a new slice. A column with fewer than two distinct
// values yields a *DegenerateColumnError.
func Scale(column []float64, targetMax float64) ([]float64, error) {
	if len(column) == 0 {
		return nil, &DegenerateColumnError{}
	}
	lo, hi := column[0], column[0]
	for _, v := range column[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return nil, &DegenerateColumnError{Value: lo}
	}

	span := hi - lo
	out := make([]float64, len(column))
	for i, v := range column {
		out[i] = targetMax * (v - lo) / span
	}
	return out, nil
}

// Normalize rescales every continuous field of c into [0, scale] and returns
// the result as a new catalog. The scale of a field is scales[name] when
// present, DefaultScale otherwise. Binary fields are copied unchanged.
//
// The first degenerate continuous column aborts normalization with a
// *DegenerateColumnError naming it.
func Normalize(c *Catalog, scales map[string]float64) (*Catalog, error) {
	if err := checkScales(c.schema, scales); err != nil {
		return nil, err
	}

	records := make([]Record, len(c.records))
	for i, r := range c.records {
		records[i] = Record{Title: r.Title, Features: r.Features.Clone()}
	}

	for j, f := range c.schema.fields {
		if f.Kind != Continuous {
			continue
		}
		target := DefaultScale
		if s, ok := scales[f.Name]; ok {
			target = s
		}
		scaled, err := Scale(c.Column(j), target)
		if err != nil {
			if de, ok := err.(*DegenerateColumnError); ok {
				de.Column = f.Name
			}
			return nil, err
		}
		for i := range records {
			records[i].Features[j] = scaled[i]
		}
	}

	return New(c.schema, records)
}

func checkScales(schema Schema, scales map[string]float64) error {
	var bad []string
	for name, s := range scales {
		j, ok := schema.Index(name)
		switch {
		case !ok:
			bad = append(bad, fmt.Sprintf("%s (unknown field)", name))
		case schema.fields[j].Kind != Continuous:
			bad = append(bad, fmt.Sprintf("%s (not continuous)", name))
		case !(s > 0) || math.IsInf(s, 0):
			bad = append(bad, fmt.Sprintf("%s (scale must be finite and > 0, got %v)", name, s))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fmt.Errorf("invalid scale factors: %s", strings.Join(bad, ", "))
}
