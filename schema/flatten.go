package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Error codes reported by Flatten and Rename.
const (
	CodeBadSchema      = "bad_schema"
	CodeBadDimension   = "bad_dimension"
	CodeRelational     = "relational"
	CodeDuplicateName  = "duplicate_name"
	CodeAttributeCount = "attribute_count"
)

// Error describes an invalid schema. Name is the (partial) flattened name of
// the offending node when known.
type Error struct {
	Code string
	Name string
	Msg  string
}

func (e *Error) Error() string {
	if e.Name == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema: %s: %s", e.Name, e.Msg)
}

// Naming controls how flattened column names are synthesized.
type Naming struct {
	Join       string // between a composite and its sub-field; default "."
	IndexOpen  string // before an array index; default "_"
	IndexClose string
	IndexBase  int
	// MultiIndexJoin, when non-empty, names elements of multi-dimensional
	// arrays by their multi-index (e.g. "m(1;2)") instead of the flat index.
	MultiIndexJoin string
}

// DefaultNaming returns the naming that produces "pos.x" and "values_0".
func DefaultNaming() Naming { return Naming{Join: ".", IndexOpen: "_"} }

func (n Naming) normalized() Naming {
	if n.Join == "" {
		n.Join = "."
	}
	if n.IndexOpen == "" {
		n.IndexOpen = "_"
	}
	return n
}

// Step is one hop from a schema node to a child: either a composite field
// (Field/Pos) or an array element (Index, one entry per dimension).
type Step struct {
	Field string
	Pos   int
	Index []int
}

// IsIndex reports whether the step selects an array element.
func (s Step) IsIndex() bool { return s.Index != nil }

// Column is one flattened output column.
type Column struct {
	Name string
	Leaf *Leaf
	Path []Step
}

// Flatten walks root depth-first and returns one Column per leaf, composite
// fields in declaration order and array elements in row-major order.
func Flatten(root Node, n Naming) ([]Column, error) {
	if root == nil {
		return nil, &Error{Code: CodeBadSchema, Msg: "nil schema"}
	}
	f := flattener{naming: n.normalized()}
	if err := f.walk(root, "", nil); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(f.out))
	for _, c := range f.out {
		if _, dup := seen[c.Name]; dup {
			return nil, &Error{Code: CodeDuplicateName, Name: c.Name, Msg: "flattened name is not unique"}
		}
		seen[c.Name] = struct{}{}
	}
	return f.out, nil
}

// Count returns the number of leaves after full expansion, or -1 when the
// tree contains an invalid array.
func Count(n Node) int {
	switch t := n.(type) {
	case *Leaf:
		return 1
	case *Composite:
		total := 0
		for _, fl := range t.Fields {
			c := Count(fl.Node)
			if c < 0 {
				return -1
			}
			total += c
		}
		return total
	case *Array:
		l := t.Len()
		if l == 0 || t.Elem == nil {
			return -1
		}
		c := Count(t.Elem)
		if c < 0 {
			return -1
		}
		return l * c
	}
	return -1
}

// Rename replaces the synthesized names one-for-one.
func Rename(cols []Column, names []string) ([]Column, error) {
	if len(names) != len(cols) {
		return nil, &Error{
			Code: CodeAttributeCount,
			Msg:  fmt.Sprintf("%d attribute names given for %d columns", len(names), len(cols)),
		}
	}
	out := make([]Column, len(cols))
	seen := make(map[string]struct{}, len(names))
	for i, c := range cols {
		if _, dup := seen[names[i]]; dup {
			return nil, &Error{Code: CodeDuplicateName, Name: names[i], Msg: "attribute name is not unique"}
		}
		seen[names[i]] = struct{}{}
		c.Name = names[i]
		out[i] = c
	}
	return out, nil
}

type flattener struct {
	naming Naming
	out    []Column
}

func (f *flattener) walk(n Node, name string, path []Step) error {
	switch t := n.(type) {
	case *Leaf:
		if t.Type == Relational {
			return &Error{Code: CodeRelational, Name: name, Msg: "relational attributes are not supported"}
		}
		p := make([]Step, len(path))
		copy(p, path)
		f.out = append(f.out, Column{Name: name, Leaf: t, Path: p})
		return nil
	case *Composite:
		if len(t.Fields) == 0 {
			return &Error{Code: CodeBadSchema, Name: name, Msg: "composite has no fields"}
		}
		seen := make(map[string]struct{}, len(t.Fields))
		for i, fl := range t.Fields {
			fname := fl.Name
			if t.Unnamed {
				fname = "f" + strconv.Itoa(f.naming.IndexBase+i)
			} else if fname == "" {
				return &Error{Code: CodeBadSchema, Name: name, Msg: fmt.Sprintf("field %d has no name", i)}
			}
			if _, dup := seen[fname]; dup {
				return &Error{Code: CodeDuplicateName, Name: name, Msg: fmt.Sprintf("duplicate field %q", fname)}
			}
			seen[fname] = struct{}{}
			if fl.Node == nil {
				return &Error{Code: CodeBadSchema, Name: f.join(name, fname), Msg: "nil field schema"}
			}
			if err := f.walk(fl.Node, f.join(name, fname), append(path, Step{Field: fname, Pos: i})); err != nil {
				return err
			}
		}
		return nil
	case *Array:
		if len(t.Shape) == 0 {
			return &Error{Code: CodeBadDimension, Name: name, Msg: "array has no dimensions"}
		}
		for _, d := range t.Shape {
			if d <= 0 {
				return &Error{Code: CodeBadDimension, Name: name, Msg: fmt.Sprintf("dimension %d must be positive", d)}
			}
		}
		if t.Elem == nil {
			return &Error{Code: CodeBadSchema, Name: name, Msg: "nil array element schema"}
		}
		total := t.Len()
		for k := 0; k < total; k++ {
			idx := Unravel(k, t.Shape)
			if err := f.walk(t.Elem, f.indexName(name, k, idx), append(path, Step{Index: idx})); err != nil {
				return err
			}
		}
		return nil
	}
	return &Error{Code: CodeBadSchema, Name: name, Msg: fmt.Sprintf("unsupported node %T", n)}
}

func (f *flattener) join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + f.naming.Join + child
}

func (f *flattener) indexName(name string, flat int, idx []int) string {
	nm := f.naming
	if name == "" {
		// A bare array row has no field name to suffix.
		return "f" + strconv.Itoa(nm.IndexBase+flat)
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(nm.IndexOpen)
	if nm.MultiIndexJoin != "" && len(idx) > 1 {
		for d, i := range idx {
			if d > 0 {
				b.WriteString(nm.MultiIndexJoin)
			}
			b.WriteString(strconv.Itoa(nm.IndexBase + i))
		}
	} else {
		b.WriteString(strconv.Itoa(nm.IndexBase + flat))
	}
	b.WriteString(nm.IndexClose)
	return b.String()
}

// Unravel converts a flat row-major index into a multi-index for shape.
func Unravel(flat int, shape []int) []int {
	idx := make([]int, len(shape))
	for d := len(shape) - 1; d >= 0; d-- {
		idx[d] = flat % shape[d]
		flat /= shape[d]
	}
	return idx
}
