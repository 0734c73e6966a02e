package source

// Package source adapts concrete containers to goarff.Source: dense numeric
// rows (with an optional mask), gonum matrices, compressed sparse rows,
// structured records, mixed tables, SQL result sets, JSON and CSV.

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/schema"
)

// ErrShape reports rows, masks or sparse index arrays that do not line up.
var ErrShape = errors.New("source: inconsistent shape")

// Number is the set of element types a numeric container may hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// leafFor maps a Go numeric type to its schema leaf.
func leafFor[T Number]() *schema.Leaf {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32:
		return schema.Float32Leaf()
	case reflect.Float64:
		return schema.FloatLeaf()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return schema.UintLeaf()
	}
	return schema.IntLeaf()
}

// numberValue converts v according to the leaf kind of T.
func numberValue[T Number](leaf *schema.Leaf, v T) goarff.Value {
	switch leaf.Type {
	case schema.Float:
		return goarff.Float(float64(v))
	case schema.Uint:
		return goarff.Uint(uint64(v))
	}
	return goarff.Int(int64(v))
}

// Dense is a rectangular numeric array with unnamed columns f0, f1, ...
type Dense[T Number] struct {
	rows [][]T
	mask [][]bool
	cols int
	leaf *schema.Leaf
}

// NewDense wraps rows. Every row must have the same length.
func NewDense[T Number](rows [][]T) (*Dense[T], error) {
	d := &Dense[T]{rows: rows, leaf: leafFor[T]()}
	if len(rows) > 0 {
		d.cols = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != d.cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(r), d.cols)
		}
	}
	return d, nil
}

// WithMask marks cells as missing where mask is true. The mask must have the
// shape of the data.
func (d *Dense[T]) WithMask(mask [][]bool) (*Dense[T], error) {
	if len(mask) != len(d.rows) {
		return nil, fmt.Errorf("%w: mask has %d rows, want %d", ErrShape, len(mask), len(d.rows))
	}
	for i, m := range mask {
		if len(m) != d.cols {
			return nil, fmt.Errorf("%w: mask row %d has %d columns, want %d", ErrShape, i, len(m), d.cols)
		}
	}
	out := *d
	out.mask = mask
	return &out, nil
}

func (d *Dense[T]) Schema() schema.Node { return schema.Uniform(d.leaf, d.cols) }
func (d *Dense[T]) Len() int            { return len(d.rows) }

func (d *Dense[T]) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		for c, v := range d.rows[r] {
			val := numberValue(d.leaf, v)
			if d.mask != nil && d.mask[r][c] {
				val = goarff.Masked()
			}
			if !yield(c, val) {
				return
			}
		}
	}
}

// Matrix adapts a gonum matrix; every column is real.
type Matrix struct {
	m          mat.Matrix
	rows, cols int
}

// FromMatrix wraps m without copying it.
func FromMatrix(m mat.Matrix) *Matrix {
	r, c := m.Dims()
	return &Matrix{m: m, rows: r, cols: c}
}

func (m *Matrix) Schema() schema.Node { return schema.Uniform(schema.FloatLeaf(), m.cols) }
func (m *Matrix) Len() int            { return m.rows }

func (m *Matrix) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		for c := 0; c < m.cols; c++ {
			if !yield(c, goarff.Float(m.m.At(r, c))) {
				return
			}
		}
	}
}
