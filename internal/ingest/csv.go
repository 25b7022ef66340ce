package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/runger/cinematch/internal/catalog"
)

// LoadCSVFile reads a catalog from a delimited text file.
func LoadCSVFile(path string, opts Options) (*catalog.Catalog, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return LoadCSV(f, opts)
}

// LoadCSV reads a catalog from delimited text. The first record is the
// header. Rows the CSV parser rejects are counted as malformed and skipped.
func LoadCSV(r io.Reader, opts Options) (*catalog.Catalog, Report, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Report{}, errors.New("catalog source is empty")
		}
		return nil, Report{}, fmt.Errorf("failed to read header: %w", err)
	}

	b, err := newBuilder(header, opts)
	if err != nil {
		return nil, Report{}, err
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, b.report, fmt.Errorf("failed to read catalog: %w", err)
			}
			b.report.Rows++
			b.report.Malformed++
			opts.Logger.Debug("row skipped", "line", pe.StartLine, "reason", pe.Err.Error())
			continue
		}
		line, _ := cr.FieldPos(0)
		b.add(line, row)
	}

	return b.build()
}
