package source

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/reoring/goarff/schema"
)

// FromSQL reads the whole result set into a Table, closing rows. Column names
// become attribute names; NULL cells are masked. A column with only NULLs
// takes its kind from the driver's scan type.
func FromSQL(ctx context.Context, rows *sql.Rows) (*Table, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	// Column types are only available while the rows are open.
	types, _ := rows.ColumnTypes()
	var data [][]any
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for j, v := range values {
			if b, ok := v.([]byte); ok {
				values[j] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}

	t, err := NewTable(cols, data)
	if err != nil {
		return nil, err
	}
	if len(types) == len(cols) {
		for c, ct := range types {
			t.kinds[c] = t.infer(c, scanKind(ct.ScanType()))
		}
	}
	return t, nil
}

var (
	timeType      = reflect.TypeFor[time.Time]()
	nullInt64     = reflect.TypeFor[sql.NullInt64]()
	nullInt32     = reflect.TypeFor[sql.NullInt32]()
	nullInt16     = reflect.TypeFor[sql.NullInt16]()
	nullFloat64   = reflect.TypeFor[sql.NullFloat64]()
	nullTime      = reflect.TypeFor[sql.NullTime]()
	nullByte      = reflect.TypeFor[sql.NullByte]()
	rawBytesType  = reflect.TypeFor[sql.RawBytes]()
	byteSliceType = reflect.TypeFor[[]byte]()
)

// scanKind maps a driver scan type onto a leaf kind.
func scanKind(t reflect.Type) schema.LeafKind {
	if t == nil {
		return schema.Float
	}
	switch t {
	case timeType, nullTime:
		return schema.Date
	case nullInt64, nullInt32, nullInt16:
		return schema.Int
	case nullByte:
		return schema.Uint
	case nullFloat64:
		return schema.Float
	case rawBytesType, byteSliceType:
		return schema.String
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return schema.Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return schema.Uint
	case reflect.Float32, reflect.Float64:
		return schema.Float
	}
	return schema.String
}
