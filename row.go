package goarff

import (
	"strconv"
)

// cells visits the cells of row r in column order. When all is set every
// column is visited and absent cells are filled with their implicit zero;
// otherwise only the cells the source yields are visited.
func (p *plan) cells(src Source, r int, all bool, visit func(c int, v Value, implicit bool) error) error {
	next := 0
	fill := func(upto int) error {
		for ; next < upto; next++ {
			z, err := p.implicitZero(next, r)
			if err != nil {
				return err
			}
			if err := visit(next, z, true); err != nil {
				return err
			}
		}
		return nil
	}
	for c, v := range src.Row(r) {
		if c < next || c >= len(p.attrs) {
			return issueAt(ValueError, CodeSourceIndex, "", r, map[string]string{"got": strconv.Itoa(c)}, nil)
		}
		if all {
			if err := fill(c); err != nil {
				return err
			}
		}
		if err := visit(c, v, false); err != nil {
			return err
		}
		next = c + 1
	}
	if all {
		return fill(len(p.attrs))
	}
	return nil
}

// appendDense renders row r as a comma-joined list of every column.
func (p *plan) appendDense(b []byte, src Source, r int) ([]byte, error) {
	err := p.cells(src, r, true, func(c int, v Value, implicit bool) error {
		s, err := p.cell(&p.attrs[c], v, r, implicit)
		if err != nil {
			return err
		}
		if c > 0 {
			b = append(b, ',')
		}
		b = append(b, s...)
		return nil
	})
	return b, err
}

// appendSparse renders row r as {index value, ...}. Zeros of integer and
// real attributes are omitted; missing cells are kept as "?".
func (p *plan) appendSparse(b []byte, src Source, r int) ([]byte, error) {
	b = append(b, '{')
	first := true
	err := p.cells(src, r, !p.allNumeric, func(c int, v Value, implicit bool) error {
		a := &p.attrs[c]
		if a.numeric() && v.IsZero() {
			if implicit {
				return nil
			}
			missing, err := p.isMissing(a, v, r)
			if err != nil {
				return err
			}
			if !missing {
				return nil
			}
		}
		s, err := p.cell(a, v, r, implicit)
		if err != nil {
			return err
		}
		if !first {
			b = append(b, ',', ' ')
		}
		first = false
		b = strconv.AppendInt(b, int64(c), 10)
		b = append(b, ' ')
		b = append(b, s...)
		return nil
	})
	return append(b, '}'), err
}

// appendRow renders row r in the selected encoding plus its weight suffix.
func (p *plan) appendRow(b []byte, src Source, r int) ([]byte, error) {
	var err error
	if p.sparse {
		b, err = p.appendSparse(b, src, r)
	} else {
		b, err = p.appendDense(b, src, r)
	}
	if err != nil {
		return b, err
	}
	if p.opts.Weights != nil {
		w, err := weight(p.opts.Weights[r], r)
		if err != nil {
			return b, err
		}
		b = append(b, ", {"...)
		b = append(b, w...)
		b = append(b, '}')
	}
	return b, nil
}
