package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/runger/cinematch/internal/catalog"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads a catalog from a table of a SQLite database. The
// database is opened read-only; each table row is one source row.
func LoadSQLite(ctx context.Context, path string, opts Options) (*catalog.Catalog, Report, error) {
	opts = opts.withDefaults()

	if !identRE.MatchString(opts.Table) {
		return nil, Report{}, fmt.Errorf("invalid table name %q", opts.Table)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, Report{}, fmt.Errorf("failed to open catalog: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+opts.Table+`"`)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to query table %s: %w", opts.Table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to read columns: %w", err)
	}

	b, err := newBuilder(header, opts)
	if err != nil {
		return nil, Report{}, err
	}

	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}

	line := 0
	for rows.Next() {
		line++
		if err := rows.Scan(ptrs...); err != nil {
			return nil, b.report, fmt.Errorf("failed to scan row %d: %w", line, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellString(v)
		}
		b.add(line, row)
	}
	if err := rows.Err(); err != nil {
		return nil, b.report, fmt.Errorf("failed to read table %s: %w", opts.Table, err)
	}

	return b.build()
}

// cellString renders a scanned SQLite value the way it would appear in CSV.
// NULL becomes the empty string, which the row pipeline treats as missing.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
