package source

import (
	"fmt"
	"iter"
	"sort"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/schema"
)

// CSR is a compressed sparse row matrix. Entries of row r are
// indices[indptr[r]:indptr[r+1]] with the matching data; columns that are not
// stored are zero. Writers default to the sparse encoding for it.
type CSR[T Number] struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []T
	leaf       *schema.Leaf
}

// NewCSR validates and wraps the three CSR arrays. Column indices must be
// strictly ascending within each row.
func NewCSR[T Number](rows, cols int, indptr, indices []int, data []T) (*CSR[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, rows, cols)
	}
	if len(indptr) != rows+1 || indptr[0] != 0 {
		return nil, fmt.Errorf("%w: indptr must have %d entries starting at 0", ErrShape, rows+1)
	}
	if len(indices) != len(data) || indptr[rows] != len(data) {
		return nil, fmt.Errorf("%w: %d indices and %d values for %d stored entries", ErrShape, len(indices), len(data), indptr[rows])
	}
	for r := 0; r < rows; r++ {
		lo, hi := indptr[r], indptr[r+1]
		if lo > hi {
			return nil, fmt.Errorf("%w: indptr decreases at row %d", ErrShape, r)
		}
		for k := lo; k < hi; k++ {
			c := indices[k]
			if c < 0 || c >= cols {
				return nil, fmt.Errorf("%w: column %d out of range in row %d", ErrShape, c, r)
			}
			if k > lo && c <= indices[k-1] {
				return nil, fmt.Errorf("%w: columns not strictly ascending in row %d", ErrShape, r)
			}
		}
	}
	return &CSR[T]{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data, leaf: leafFor[T]()}, nil
}

// FromTriplets builds a CSR matrix from coordinate entries in any order.
// Entries at the same position are summed.
func FromTriplets[T Number](rows, cols int, ri, ci []int, vals []T) (*CSR[T], error) {
	if len(ri) != len(ci) || len(ci) != len(vals) {
		return nil, fmt.Errorf("%w: %d rows, %d columns and %d values", ErrShape, len(ri), len(ci), len(vals))
	}
	order := make([]int, len(vals))
	for i := range order {
		if ri[i] < 0 || ri[i] >= rows || ci[i] < 0 || ci[i] >= cols {
			return nil, fmt.Errorf("%w: entry (%d,%d) outside %dx%d", ErrShape, ri[i], ci[i], rows, cols)
		}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if ri[ia] != ri[ib] {
			return ri[ia] < ri[ib]
		}
		return ci[ia] < ci[ib]
	})

	indptr := make([]int, rows+1)
	indices := make([]int, 0, len(vals))
	data := make([]T, 0, len(vals))
	lastR, lastC := -1, -1
	for _, i := range order {
		if ri[i] == lastR && ci[i] == lastC {
			data[len(data)-1] += vals[i]
			continue
		}
		lastR, lastC = ri[i], ci[i]
		indices = append(indices, ci[i])
		data = append(data, vals[i])
		indptr[ri[i]+1]++
	}
	for r := 0; r < rows; r++ {
		indptr[r+1] += indptr[r]
	}
	return NewCSR(rows, cols, indptr, indices, data)
}

func (m *CSR[T]) Schema() schema.Node { return schema.Uniform(m.leaf, m.cols) }
func (m *CSR[T]) Len() int            { return m.rows }
func (m *CSR[T]) IsSparse() bool      { return true }

// Stored returns the number of stored entries.
func (m *CSR[T]) Stored() int { return len(m.data) }

func (m *CSR[T]) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			if !yield(m.indices[k], numberValue(m.leaf, m.data[k])) {
				return
			}
		}
	}
}
