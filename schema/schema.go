package schema

// Package schema defines the element-type tree a Source exposes and the
// flattening of that tree into an ordered list of scalar output columns.

// NodeKind identifies a schema node variant.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeComposite
	NodeArray
)

// Node is the root schema interface. It is implemented by *Leaf, *Composite
// and *Array only.
type Node interface {
	Kind() NodeKind
}

// LeafKind is the base scalar kind of a leaf.
type LeafKind int

const (
	Int LeafKind = iota
	Uint
	Float
	String
	Date
	// Relational marks a nested-table attribute. It can be declared but is
	// rejected by Flatten.
	Relational
)

func (k LeafKind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case String:
		return "string"
	case Date:
		return "date"
	case Relational:
		return "relational"
	}
	return "unknown"
}

// Numeric reports whether values of this kind have a numeric zero.
func (k LeafKind) Numeric() bool { return k == Int || k == Uint || k == Float }

// Leaf maps to exactly one output attribute.
type Leaf struct {
	Type LeafKind
	// Bits is the storage width. It only changes how Float values are
	// rendered (shortest round trip at 32 or 64 bits); 0 means 64.
	Bits int
}

func (l *Leaf) Kind() NodeKind { return NodeLeaf }

// FloatBits returns the width used for shortest round-trip formatting.
func (l *Leaf) FloatBits() int {
	if l.Bits == 32 {
		return 32
	}
	return 64
}

// Composite is an ordered list of named sub-fields. When Unnamed is set the
// field names are ignored and synthesized as f0, f1, ... instead.
type Composite struct {
	Fields  []Field
	Unnamed bool
}

func (c *Composite) Kind() NodeKind { return NodeComposite }

// Field is a named child of a Composite.
type Field struct {
	Name string
	Node Node
}

// Array repeats Elem along fixed dimensions.
type Array struct {
	Elem  Node
	Shape []int
}

func (a *Array) Kind() NodeKind { return NodeArray }

// Len returns the number of elements, or 0 when any dimension is not positive.
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Shape {
		if d <= 0 {
			return 0
		}
		n *= d
	}
	return n
}

// ---- constructors ----

func IntLeaf() *Leaf     { return &Leaf{Type: Int, Bits: 64} }
func UintLeaf() *Leaf    { return &Leaf{Type: Uint, Bits: 64} }
func FloatLeaf() *Leaf   { return &Leaf{Type: Float, Bits: 64} }
func Float32Leaf() *Leaf { return &Leaf{Type: Float, Bits: 32} }
func StringLeaf() *Leaf  { return &Leaf{Type: String} }
func DateLeaf() *Leaf    { return &Leaf{Type: Date} }

// LeafOf returns a 64-bit leaf of kind k.
func LeafOf(k LeafKind) *Leaf { return &Leaf{Type: k, Bits: 64} }

// Struct builds a Composite from alternating name/node pairs given as Fields.
func Struct(fields ...Field) *Composite { return &Composite{Fields: fields} }

// F is shorthand for a Field.
func F(name string, n Node) Field { return Field{Name: name, Node: n} }

// ArrayOf repeats elem with the given shape.
func ArrayOf(elem Node, shape ...int) *Array { return &Array{Elem: elem, Shape: shape} }

// Table describes a plain rectangular array: one unnamed leaf per column.
func Table(kinds ...LeafKind) *Composite {
	fs := make([]Field, len(kinds))
	for i, k := range kinds {
		fs[i] = Field{Node: LeafOf(k)}
	}
	return &Composite{Fields: fs, Unnamed: true}
}

// Uniform describes n unnamed columns sharing one leaf.
func Uniform(leaf *Leaf, n int) *Composite {
	fs := make([]Field, n)
	for i := range fs {
		fs[i] = Field{Node: leaf}
	}
	return &Composite{Fields: fs, Unnamed: true}
}
