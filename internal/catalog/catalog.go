// Package catalog holds the in-memory movie catalog: an ordered set of
// records that share one numeric feature schema.
//
// A Catalog is built once with New and is read-only afterwards. Operations
// that change feature values, such as Normalize, return a new Catalog.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind classifies a feature field.
type Kind int

const (
	Continuous Kind = iota // rating, year, vote count...
	Binary                 // genre indicator, always 0 or 1
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is one named feature column.
type Field struct {
	Name string
	Kind Kind
}

// FeatureVector is the ordered feature values of one record or query.
// Its length and order always match the catalog schema.
type FeatureVector []float64

// Clone returns a copy of v.
func (v FeatureVector) Clone() FeatureVector {
	if v == nil {
		return nil
	}
	out := make(FeatureVector, len(v))
	copy(out, v)
	return out
}

// Record is one movie: a unique title and its feature vector.
type Record struct {
	Title    string
	Features FeatureVector
}

// Stats holds the observed range of one column.
type Stats struct {
	Min float64
	Max float64
}

// Schema is the ordered list of feature fields shared by every record.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the fields and builds a Schema.
func NewSchema(fields []Field) (Schema, error) {
	if len(fields) == 0 {
		return Schema{}, errors.New("schema has no feature fields")
	}
	s := Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return Schema{}, fmt.Errorf("field %d has an empty name", i)
		}
		if f.Kind != Continuous && f.Kind != Binary {
			return Schema{}, fmt.Errorf("field %q has unknown kind %d", name, int(f.Kind))
		}
		if _, dup := s.index[name]; dup {
			return Schema{}, fmt.Errorf("duplicate field %q", name)
		}
		s.fields[i] = Field{Name: name, Kind: f.Kind}
		s.index[name] = i
	}
	return s, nil
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the ordered fields.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field at position i.
func (s Schema) Field(i int) Field { return s.fields[i] }

// Index returns the position of the named field.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Catalog is an immutable, ordered collection of movie records.
type Catalog struct {
	schema  Schema
	records []Record
	byTitle map[string]int
	stats   []Stats
}

// New validates records against schema and builds a Catalog. The records
// and their feature slices are copied; later changes by the caller do not
// reach the catalog.
func New(schema Schema, records []Record) (*Catalog, error) {
	if schema.Len() == 0 {
		return nil, errors.New("catalog schema has no feature fields")
	}

	c := &Catalog{
		schema:  schema,
		records: make([]Record, 0, len(records)),
		byTitle: make(map[string]int, len(records)),
		stats:   make([]Stats, schema.Len()),
	}

	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("record %d has an empty title", i)
		}
		if _, dup := c.byTitle[r.Title]; dup {
			return nil, fmt.Errorf("duplicate title %q", r.Title)
		}
		if len(r.Features) != schema.Len() {
			return nil, fmt.Errorf("record %q has %d features, schema has %d",
				r.Title, len(r.Features), schema.Len())
		}
		for j, v := range r.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("record %q: field %q is not finite", r.Title, schema.fields[j].Name)
			}
			if schema.fields[j].Kind == Binary && v != 0 && v != 1 {
				return nil, fmt.Errorf("record %q: binary field %q has value %v", r.Title, schema.fields[j].Name, v)
			}
		}
		c.byTitle[r.Title] = len(c.records)
		c.records = append(c.records, Record{Title: r.Title, Features: r.Features.Clone()})
	}

	for j := range c.stats {
		c.stats[j] = columnStats(c.records, j)
	}

	return c, nil
}

func columnStats(records []Record, j int) Stats {
	if len(records) == 0 {
		return Stats{}
	}
	st := Stats{Min: records[0].Features[j], Max: records[0].Features[j]}
	for _, r := range records[1:] {
		v := r.Features[j]
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
	}
	return st
}

// Schema returns the catalog's feature schema.
func (c *Catalog) Schema() Schema { return c.schema }

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Title returns the title of the record at position i.
func (c *Catalog) Title(i int) string { return c.records[i].Title }

// Titles returns every title in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Title
	}
	return out
}

// Record returns a copy of the record with exactly the given title.
func (c *Catalog) Record(title string) (Record, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return Record{}, false
	}
	r := c.records[i]
	return Record{Title: r.Title, Features: r.Features.Clone()}, true
}

// Each calls fn for every record in catalog order. The feature vector
// passed to fn is the catalog's own storage: fn must not modify or retain it.
func (c *Catalog) Each(fn func(i int, r Record)) {
	for i, r := range c.records {
		fn(i, r)
	}
}

// Column returns a copy of the values of field j in catalog order.
func (c *Catalog) Column(j int) []float64 {
	out := make([]float64, len(c.records))
	for i, r := range c.records {
		out[i] = r.Features[j]
	}
	return out
}

// Stats returns the observed range of the named field.
func (c *Catalog) Stats(name string) (Stats, bool) {
	j, ok := c.schema.Index(name)
	if !ok {
		return Stats{}, false
	}
	return c.stats[j], true
}

// StatsAt returns the observed range of field j.
func (c *Catalog) StatsAt(j int) Stats { return c.stats[j] }
