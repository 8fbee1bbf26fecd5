package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadOptions controls CSV ingestion and cleaning.
type LoadOptions struct {
	// Rename maps raw header names to canonical sensor names. Entries here
	// are applied on top of DefaultRenames.
	Rename map[string]string

	// DropDuplicates removes rows whose cells are all identical to an
	// earlier row, keeping the first occurrence.
	DropDuplicates bool

	// ForwardFill replaces a missing value with the last seen value of the
	// same column. Leading missing values stay missing.
	ForwardFill bool
}

// DefaultRenames maps header variants seen in exported turbine data to the
// canonical sensor names.
func DefaultRenames() map[string]string {
	return map[string]string{
		"NOx (mg/m3)": "NOx",
		"NOX":         "NOx",
		"TIT (°C)":    "TIT",
		"TAT (°C)":    "TAT",
	}
}

// LoadCSV reads a header-rowed CSV file into a Table. Cells that do not
// parse as numbers (including empty cells) become NaN. Column order follows
// the file header after renaming.
func LoadCSV(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	// Exported sensor data occasionally has short rows; missing trailing
	// cells parse as NaN.
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input %q is empty", path)
	}

	header := canonicalHeader(records[0], opts.Rename)
	body := records[1:]
	if opts.DropDuplicates {
		body = dropDuplicateRows(body)
	}

	tbl := NewTable()
	for col, name := range header {
		values := make([]float64, len(body))
		for row, rec := range body {
			values[row] = parseCell(rec, col)
		}
		if opts.ForwardFill {
			forwardFill(values)
		}
		if err := tbl.AddColumn(name, values); err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
	}
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("input %q has a header but no data rows", path)
	}
	return tbl, nil
}

func canonicalHeader(raw []string, extra map[string]string) []string {
	renames := DefaultRenames()
	for k, v := range extra {
		renames[k] = v
	}
	header := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if canonical, ok := renames[h]; ok {
			h = canonical
		}
		header[i] = h
	}
	return header
}

func parseCell(rec []string, col int) float64 {
	if col >= len(rec) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func dropDuplicateRows(body [][]string) [][]string {
	seen := make(map[string]struct{}, len(body))
	out := body[:0:0]
	for _, rec := range body {
		key := strings.Join(rec, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func forwardFill(values []float64) {
	last := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = last
			continue
		}
		last = v
	}
}
