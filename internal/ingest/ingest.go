// Package ingest loads raw tabular movie data into a catalog.Catalog.
//
// Sources are CSV files and SQLite tables. Both go through the same row
// pipeline: configured non-feature columns are dropped, malformed rows and
// rows with a missing feature value are skipped, and duplicate titles keep
// their first occurrence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/runger/cinematch/internal/catalog"
	"github.com/runger/cinematch/internal/logging"
)

// Format names a catalog source format.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// DefaultTitleColumn is the column holding the movie title.
const DefaultTitleColumn = "title"

// DefaultTable is the SQLite table read when Options.Table is empty.
const DefaultTable = "movies"

// ErrNoRecords is returned when every source row was skipped.
var ErrNoRecords = errors.New("no usable rows in catalog source")

// Options controls how a source becomes a catalog.
type Options struct {
	Format      Format
	TitleColumn string
	DropColumns []string
	// Continuous lists the continuous feature columns. Every other feature
	// column is binary. When empty, a column is binary if all its values are
	// 0 or 1 and continuous otherwise.
	Continuous []string
	// Table is the SQLite table to read.
	Table string
	// Comma is the CSV field delimiter (default ',').
	Comma  rune
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TitleColumn == "" {
		o.TitleColumn = DefaultTitleColumn
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Report counts what happened to the source rows.
type Report struct {
	Rows       int
	Loaded     int
	Malformed  int
	Missing    int
	Duplicates int
	// Dropped lists the configured drop columns found in the source.
	Dropped []string
}

// Load reads a catalog from path. With FormatAuto (or an empty Format) the
// format follows the file extension: .db, .sqlite and .sqlite3 are SQLite,
// anything else is CSV.
func Load(ctx context.Context, path string, opts Options) (*catalog.Catalog, Report, error) {
	switch DetectFormat(path, opts.Format) {
	case FormatSQLite:
		return LoadSQLite(ctx, path, opts)
	default:
		return LoadCSVFile(path, opts)
	}
}

// DetectFormat resolves FormatAuto for path.
func DetectFormat(path string, f Format) Format {
	if f != "" && f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// missingTokens are cell values treated as absent.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

func isMissing(s string) bool {
	return missingTokens[strings.ToLower(s)]
}

// builder turns header + rows into catalog records.
type builder struct {
	opts     Options
	width    int
	titleIdx int
	featIdx  []int
	names    []string
	// kinds is nil until classification when continuous columns are
	// detected from the data.
	kinds   []catalog.Kind
	records []catalog.Record
	seen    map[string]bool
	report  Report
}

func newBuilder(header []string, opts Options) (*builder, error) {
	b := &builder{
		opts:     opts,
		width:    len(header),
		titleIdx: -1,
		seen:     make(map[string]bool),
	}

	drop := make(map[string]bool, len(opts.DropColumns))
	for _, c := range opts.DropColumns {
		drop[c] = true
	}

	for i, raw := range header {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		switch {
		case name == opts.TitleColumn:
			b.titleIdx = i
		case drop[name]:
			b.report.Dropped = append(b.report.Dropped, name)
		default:
			b.featIdx = append(b.featIdx, i)
			b.names = append(b.names, name)
		}
	}

	if b.titleIdx < 0 {
		return nil, fmt.Errorf("title column %q not found in header", opts.TitleColumn)
	}
	if len(b.names) == 0 {
		return nil, errors.New("source has no feature columns")
	}

	if len(opts.Continuous) > 0 {
		cont := make(map[string]bool, len(opts.Continuous))
		for _, c := range opts.Continuous {
			cont[c] = true
		}
		b.kinds = make([]catalog.Kind, len(b.names))
		for j, name := range b.names {
			if cont[name] {
				b.kinds[j] = catalog.Continuous
				delete(cont, name)
			} else {
				b.kinds[j] = catalog.Binary
			}
		}
		if len(cont) > 0 {
			missing := make([]string, 0, len(cont))
			for name := range cont {
				missing = append(missing, name)
			}
			sort.Strings(missing)
			return nil, fmt.Errorf("continuous columns not found in source: %s", strings.Join(missing, ", "))
		}
	}

	return b, nil
}

// add processes one source row; line is its 1-based position for logging.
func (b *builder) add(line int, row []string) {
	b.report.Rows++

	if len(row) != b.width {
		b.report.Malformed++
		logging.LogRowSkipped(b.opts.Logger, line,
			fmt.Sprintf("expected %d fields, got %d", b.width, len(row)))
		return
	}

	title := strings.TrimSpace(row[b.titleIdx])
	if isMissing(title) {
		b.report.Missing++
		logging.LogRowSkipped(b.opts.Logger, line, "missing title")
		return
	}

	features := make(catalog.FeatureVector, len(b.featIdx))
	for j, i := range b.featIdx {
		cell := strings.TrimSpace(row[i])
		if isMissing(cell) {
			b.report.Missing++
			logging.LogRowSkipped(b.opts.Logger, line, "missing "+b.names[j])
			return
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsInf(v, 0) {
			b.report.Malformed++
			logging.LogRowSkipped(b.opts.Logger, line, fmt.Sprintf("%s: %q is not a number", b.names[j], cell))
			return
		}
		if b.kinds != nil && b.kinds[j] == catalog.Binary && v != 0 && v != 1 {
			b.report.Malformed++
			logging.LogRowSkipped(b.opts.Logger, line, fmt.Sprintf("%s: %v is not 0 or 1", b.names[j], v))
			return
		}
		features[j] = v
	}

	if b.seen[title] {
		b.report.Duplicates++
		logging.LogRowSkipped(b.opts.Logger, line, "duplicate title "+strconv.Quote(title))
		return
	}
	b.seen[title] = true
	b.records = append(b.records, catalog.Record{Title: title, Features: features})
}

func (b *builder) build() (*catalog.Catalog, Report, error) {
	if len(b.records) == 0 {
		return nil, b.report, ErrNoRecords
	}

	kinds := b.kinds
	if kinds == nil {
		kinds = detectKinds(b.records, len(b.names))
	}

	fields := make([]catalog.Field, len(b.names))
	for j, name := range b.names {
		fields[j] = catalog.Field{Name: name, Kind: kinds[j]}
	}
	schema, err := catalog.NewSchema(fields)
	if err != nil {
		return nil, b.report, err
	}

	c, err := catalog.New(schema, b.records)
	if err != nil {
		return nil, b.report, err
	}
	b.report.Loaded = c.Len()
	return c, b.report, nil
}

// detectKinds marks a column binary when every value is 0 or 1.
func detectKinds(records []catalog.Record, n int) []catalog.Kind {
	kinds := make([]catalog.Kind, n)
	for j := range kinds {
		kinds[j] = catalog.Binary
		for _, r := range records {
			if v := r.Features[j]; v != 0 && v != 1 {
				kinds[j] = catalog.Continuous
				break
			}
		}
	}
	return kinds
}
