package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Row is a single record keyed by column name. Values are float64 for
// numeric-looking cells, string otherwise, nil for empty cells.
type Row map[string]any

// Frame is an in-memory tabular dataset loaded from CSV.
type Frame struct {
	Columns []string
	Rows    []Row
}

// FieldStats holds summary statistics for a numeric column.
type FieldStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	Q90    float64 `json:"q90"`
}

// LoadCSV reads a CSV file into a Frame, coercing numeric cells to float64.
func LoadCSV(path string, delimiter rune) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty: %s", path)
	}

	columns := records[0]
	frame := &Frame{Columns: columns, Rows: make([]Row, 0, len(records)-1)}

	for _, rec := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i >= len(rec) {
				row[col] = nil
				continue
			}
			row[col] = coerce(rec[i])
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

func coerce(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

func (f *Frame) Len() int {
	return len(f.Rows)
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns a new frame containing only rows matching the predicate.
// Columns are shared; rows are not copied.
func (f *Frame) Filter(pred func(Row) bool) *Frame {
	out := &Frame{Columns: f.Columns}
	for _, row := range f.Rows {
		if pred(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns up to n rows from the top of the frame.
func (f *Frame) Head(n int) []Row {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return f.Rows[:n]
}

// Numeric collects the non-empty numeric values of a column.
func (f *Frame) Numeric(col string) []float64 {
	var values []float64
	for _, row := range f.Rows {
		if v, ok := row[col].(float64); ok {
			values = append(values, v)
		}
	}
	return values
}

// Stats computes summary statistics for a numeric column. Returns nil when
// the column has no numeric values.
func (f *Frame) Stats(col string) *FieldStats {
	values := f.Numeric(col)
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return &FieldStats{
		Count:  len(sorted),
		Mean:   sum / float64(len(sorted)),
		Median: quantile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantile(sorted, 0.25),
		Q75:    quantile(sorted, 0.75),
		Q90:    quantile(sorted, 0.90),
	}
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// GroupBy splits the frame by the string value of a column. Rows with an
// empty or non-string value land under "Unknown".
func (f *Frame) GroupBy(col string) map[string]*Frame {
	groups := make(map[string]*Frame)
	for _, row := range f.Rows {
		key := "Unknown"
		switch v := row[col].(type) {
		case string:
			key = v
		case float64:
			key = strconv.FormatFloat(v, 'g', -1, 64)
		}
		g, ok := groups[key]
		if !ok {
			g = &Frame{Columns: f.Columns}
			groups[key] = g
		}
		g.Rows = append(g.Rows, row)
	}
	return groups
}

// ValueCounts tallies the occurrences of each string value in a column.
func (f *Frame) ValueCounts(col string) map[string]int {
	counts := make(map[string]int)
	for _, row := range f.Rows {
		if v, ok := row[col].(string); ok {
			counts[v]++
		}
	}
	return counts
}
