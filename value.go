package goarff

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/goarff/schema"
)

// ValueKind tags the scalar held by a Value.
type ValueKind uint8

const (
	KindMasked ValueKind = iota // The source marks the cell as missing.
	KindInt
	KindUint
	KindFloat
	KindString
	KindTime
)

// Value is one cell as read from a Source. The zero Value is masked.
type Value struct {
	kind ValueKind
	i    int64
	u    uint64
	f    float64
	s    string
	t    time.Time
}

func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value    { return Value{kind: KindUint, u: v} }
func Float(v float64) Value  { return Value{kind: KindFloat, f: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }
func Masked() Value          { return Value{} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsMasked() bool  { return v.kind == KindMasked }

// IsZero reports a numeric zero. Strings, times and masked cells are never
// zero.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInt:
		return v.i == 0
	case KindUint:
		return v.u == 0
	case KindFloat:
		return v.f == 0
	}
	return false
}

// Float64 converts numeric values; ok is false for other kinds.
func (v Value) Float64() (f float64, ok bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Int64 returns the integer payload; ok is false unless the value is an
// integer (or an integral float) representable as int64.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u <= math.MaxInt64 {
			return int64(v.u), true
		}
	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Str returns the string payload.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Timestamp returns the time payload.
func (v Value) Timestamp() (time.Time, bool) { return v.t, v.kind == KindTime }

// String is a debugging rendering, used in issue messages.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	}
	return "<masked>"
}

// ValueOf converts a Go scalar. nil becomes Masked; booleans become the
// strings "true"/"false".
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Masked(), nil
	case Value:
		return t, nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return String(string(t)), nil
	case bool:
		return String(strconv.FormatBool(t)), nil
	case time.Time:
		return Time(t), nil
	case *time.Time:
		if t == nil {
			return Masked(), nil
		}
		return Time(*t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("goarff: invalid number %q", string(t))
		}
		return Float(f), nil
	}
	return Value{}, fmt.Errorf("goarff: unsupported cell type %T", x)
}

// Source is the read-only view of a dataset the writer needs. Adapters for
// concrete containers live in the source package.
type Source interface {
	// Schema describes one row; Flatten(Schema()) fixes the column order.
	Schema() schema.Node
	// Len is the number of rows.
	Len() int
	// Row yields the present cells of row r in ascending column order.
	// Dense sources yield every column. Sparse sources yield stored entries
	// only; an absent column is an implicit numeric zero, not missing.
	Row(r int) iter.Seq2[int, Value]
}

// Sparser is implemented by sources whose natural encoding is sparse.
type Sparser interface {
	IsSparse() bool
}
