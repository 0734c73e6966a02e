package source

import (
	"fmt"
	"iter"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/schema"
)

// Table is a list of rows of mixed scalars. Column kinds are inferred from
// the non-nil cells: integers give integer columns, any float gives a real
// column, timestamps give a date column, and anything else (or a mix of
// timestamps and other values) gives a string column. nil cells are masked.
type Table struct {
	header []string
	kinds  []schema.LeafKind
	rows   [][]goarff.Value
}

// NewTable converts rows. header may be nil, in which case columns are named
// f0, f1, ... by the writer.
func NewTable(header []string, rows [][]any) (*Table, error) {
	width := len(header)
	if header == nil && len(rows) > 0 {
		width = len(rows[0])
	}
	t := &Table{header: header, rows: make([][]goarff.Value, len(rows))}
	for i, raw := range rows {
		if len(raw) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(raw), width)
		}
		row := make([]goarff.Value, width)
		for c, x := range raw {
			v, err := goarff.ValueOf(x)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, c, err)
			}
			row[c] = v
		}
		t.rows[i] = row
	}
	t.kinds = make([]schema.LeafKind, width)
	for c := range t.kinds {
		t.kinds[c] = t.infer(c, schema.Float)
	}
	return t, nil
}

// infer picks the leaf kind of column c; fallback is used for a column with
// no present cells.
func (t *Table) infer(c int, fallback schema.LeafKind) schema.LeafKind {
	var ints, uints, floats, strs, times int
	for _, row := range t.rows {
		switch row[c].Kind() {
		case goarff.KindInt:
			ints++
		case goarff.KindUint:
			uints++
		case goarff.KindFloat:
			floats++
		case goarff.KindString:
			strs++
		case goarff.KindTime:
			times++
		}
	}
	numeric := ints + uints + floats
	switch {
	case strs > 0, times > 0 && numeric > 0:
		return schema.String
	case times > 0:
		return schema.Date
	case floats > 0:
		return schema.Float
	case uints > 0 && ints == 0:
		return schema.Uint
	case numeric > 0:
		return schema.Int
	}
	return fallback
}

// Kinds returns the inferred column kinds.
func (t *Table) Kinds() []schema.LeafKind { return t.kinds }

// Header returns the column names, nil for an unnamed table.
func (t *Table) Header() []string { return t.header }

func (t *Table) Schema() schema.Node {
	if t.header == nil {
		return schema.Table(t.kinds...)
	}
	fs := make([]schema.Field, len(t.kinds))
	for i, k := range t.kinds {
		fs[i] = schema.F(t.header[i], schema.LeafOf(k))
	}
	return schema.Struct(fs...)
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		for c, v := range t.rows[r] {
			if !yield(c, v) {
				return
			}
		}
	}
}
