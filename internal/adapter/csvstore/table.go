package csvstore

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table is an ordered, string-valued table: one CSV file in memory. Header
// names are kept lower-cased so lookups are case-insensitive regardless of
// how the source file spells them.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}
	return &Table{Columns: lowered}
}

// ReadTable loads a CSV file. The first record is the header; every row must
// have the same width.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	t := NewTable(records[0]...)
	t.Rows = records[1:]
	return t, nil
}

// Write saves the table, creating parent directories as needed.
func (t *Table) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Index returns the position of a column, or -1 when absent. Lookup is
// case-insensitive.
func (t *Table) Index(name string) int {
	name = strings.ToLower(name)
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Require returns an error naming the first missing column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if t.Index(n) < 0 {
			return fmt.Errorf("missing required column %q", n)
		}
	}
	return nil
}

// AppendRow adds one row. The row must match the table width.
func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a column with the given values, one per existing row.
// Shorter value slices are padded with empty cells.
func (t *Table) AddColumn(name string, values []string) {
	t.Columns = append(t.Columns, strings.ToLower(name))
	for i := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(t.Rows[i], v)
	}
}

// ParseFloat converts a CSV cell to a float. Empty and unparseable cells are
// NaN, mirroring the coercion the cleaned tables were built with.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// FormatFloat converts a float to its CSV cell. NaN becomes the empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
