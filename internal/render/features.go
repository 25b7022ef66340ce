package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/runger/cinematch/internal/catalog"
	"github.com/runger/cinematch/internal/sanitize"
)

// FeatureRow describes one catalog feature for display.
type FeatureRow struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Scale float64 `json:"scale,omitempty"`
}

// FeatureRows lists the features of c in schema order. raw holds the
// unnormalized catalog so min and max are in source units; scale is only
// reported for continuous fields.
func FeatureRows(raw *catalog.Catalog, scales map[string]float64) []FeatureRow {
	schema := raw.Schema()
	rows := make([]FeatureRow, schema.Len())
	for j, f := range schema.Fields() {
		st := raw.StatsAt(j)
		rows[j] = FeatureRow{Name: f.Name, Kind: f.Kind.String(), Min: st.Min, Max: st.Max}
		if f.Kind == catalog.Continuous {
			rows[j].Scale = catalog.DefaultScale
			if s, ok := scales[f.Name]; ok {
				rows[j].Scale = s
			}
		}
	}
	return rows
}

// Features writes rows as an aligned table.
func (p *Printer) Features(rows []FeatureRow) error {
	header := []string{"FEATURE", "KIND", "MIN", "MAX", "SCALE"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = sanitize.Width(h)
	}
	for i, r := range rows {
		scale := "-"
		if r.Scale > 0 {
			scale = formatNum(r.Scale)
		}
		cells[i] = []string{sanitize.Title(r.Name), r.Kind, formatNum(r.Min), formatNum(r.Max), scale}
		for j, c := range cells[i] {
			widths[j] = max(widths[j], sanitize.Width(c))
		}
	}

	var b strings.Builder
	b.WriteString(p.heading.Render(strings.TrimRight(joinRow(header, widths), " ")))
	b.WriteByte('\n')
	for _, row := range cells {
		b.WriteString(strings.TrimRight(joinRow(row, widths), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

func joinRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = sanitize.PadRight(c, widths[i])
	}
	return strings.Join(padded, "  ")
}

func formatNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
