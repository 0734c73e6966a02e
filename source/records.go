package source

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/codec"
	"github.com/reoring/goarff/schema"
)

// Records is a structured array: each record follows one schema node, which
// may nest composites and fixed-size arrays. Records are expanded into
// flattened cells once, at construction.
type Records struct {
	node  schema.Node
	width int
	rows  [][]goarff.Value
}

// NewRecords expands records against node.
//
// A composite accepts a positional []any or a map[string]any keyed by field
// name (absent keys are masked). An array accepts a slice nested once per
// dimension or a flat slice of all its elements. nil masks the whole
// subtree. Date leaves accept time.Time, Unix seconds or RFC 3339 strings.
func NewRecords(node schema.Node, records []any) (*Records, error) {
	width := schema.Count(node)
	if width < 0 {
		if _, err := schema.Flatten(node, schema.DefaultNaming()); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: invalid schema", ErrShape)
	}
	out := &Records{node: node, width: width, rows: make([][]goarff.Value, len(records))}
	for i, rec := range records {
		row := make([]goarff.Value, 0, width)
		row, err := expand(row, node, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out.rows[i] = row
	}
	return out, nil
}

func (s *Records) Schema() schema.Node { return s.node }
func (s *Records) Len() int            { return len(s.rows) }

func (s *Records) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		for c, v := range s.rows[r] {
			if !yield(c, v) {
				return
			}
		}
	}
}

// masked appends one masked cell per leaf under n.
func masked(dst []goarff.Value, n schema.Node) []goarff.Value {
	for k := schema.Count(n); k > 0; k-- {
		dst = append(dst, goarff.Masked())
	}
	return dst
}

func expand(dst []goarff.Value, n schema.Node, x any) ([]goarff.Value, error) {
	if x == nil {
		return masked(dst, n), nil
	}
	switch t := n.(type) {
	case *schema.Leaf:
		v, err := leafValue(t, x)
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	case *schema.Composite:
		return expandComposite(dst, t, x)
	case *schema.Array:
		return expandArray(dst, t, x)
	}
	return dst, fmt.Errorf("%w: unsupported node %T", ErrShape, n)
}

func expandComposite(dst []goarff.Value, c *schema.Composite, x any) ([]goarff.Value, error) {
	var err error
	if m, ok := x.(map[string]any); ok && !c.Unnamed {
		for _, f := range c.Fields {
			if dst, err = expand(dst, f.Node, m[f.Name]); err != nil {
				return dst, fmt.Errorf("%s: %w", f.Name, err)
			}
		}
		return dst, nil
	}
	items, ok := sliceOf(x)
	if !ok {
		return dst, fmt.Errorf("%w: record must be a list or an object, got %T", ErrShape, x)
	}
	if len(items) != len(c.Fields) {
		return dst, fmt.Errorf("%w: %d values for %d fields", ErrShape, len(items), len(c.Fields))
	}
	for i, f := range c.Fields {
		if dst, err = expand(dst, f.Node, items[i]); err != nil {
			if f.Name != "" {
				return dst, fmt.Errorf("%s: %w", f.Name, err)
			}
			return dst, err
		}
	}
	return dst, nil
}

func expandArray(dst []goarff.Value, a *schema.Array, x any) ([]goarff.Value, error) {
	items, ok := sliceOf(x)
	if !ok {
		return dst, fmt.Errorf("%w: array value must be a list, got %T", ErrShape, x)
	}
	flat, err := flatten(items, a.Shape)
	if err != nil {
		if len(a.Shape) > 1 && len(items) == a.Len() {
			// Flat row-major layout.
			return expandItems(dst, a.Elem, items)
		}
		return dst, err
	}
	return expandItems(dst, a.Elem, flat)
}

func expandItems(dst []goarff.Value, elem schema.Node, items []any) ([]goarff.Value, error) {
	var err error
	for i, it := range items {
		if dst, err = expand(dst, elem, it); err != nil {
			return dst, fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return dst, nil
}

// flatten unnests items along shape in row-major order.
func flatten(items []any, shape []int) ([]any, error) {
	if len(items) != shape[0] {
		return nil, fmt.Errorf("%w: %d elements for dimension %d", ErrShape, len(items), shape[0])
	}
	if len(shape) == 1 {
		return items, nil
	}
	var out []any
	for _, it := range items {
		sub, ok := sliceOf(it)
		if !ok {
			return nil, fmt.Errorf("%w: nested array value must be a list, got %T", ErrShape, it)
		}
		inner, err := flatten(sub, shape[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// sliceOf views any slice or array as []any. Strings and byte slices are
// scalars.
func sliceOf(x any) ([]any, bool) {
	switch t := x.(type) {
	case []any:
		return t, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func leafValue(l *schema.Leaf, x any) (goarff.Value, error) {
	if l.Type == schema.Date {
		if s, ok := x.(string); ok {
			t, err := codec.ParseTime(s)
			if err != nil {
				return goarff.Value{}, err
			}
			return goarff.Time(t), nil
		}
	}
	return goarff.ValueOf(x)
}
