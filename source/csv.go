package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/goarff/codec"
)

// ReadCSV reads comma-separated rows into a Table. With header set the
// first record names the columns. Empty cells are masked; other cells are
// parsed as integers, floats or RFC 3339 timestamps before falling back to
// strings.
func ReadCSV(r io.Reader, header bool) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	var names []string
	if header {
		if len(records) == 0 {
			return nil, fmt.Errorf("parse csv: missing header")
		}
		names, records = records[0], records[1:]
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for c, s := range rec {
			row[c] = inferCSVValue(s)
		}
		rows[i] = row
	}
	return NewTable(names, rows)
}

// inferCSVValue parses a cell as a number or timestamp.
func inferCSVValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// ParseFloat also takes "NaN" and "Inf"; those stay text.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if t, err := codec.ParseTime(s); err == nil {
		return t
	}
	return s
}
