package goarff

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/reoring/goarff/codec"
	"github.com/reoring/goarff/internal/text"
	"github.com/reoring/goarff/schema"
)

// isMissing applies the missing-value policy to one cell. Masked cells and
// sentinel matches are missing; non-finite floats are missing or rejected
// depending on Options.NonFinite.
func (p *plan) isMissing(a *Attribute, v Value, r int) (bool, error) {
	if v.IsMasked() || p.missing.match(v) {
		return true, nil
	}
	if v.kind == KindFloat && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		if p.opts.NonFinite == NonFiniteMissing {
			return true, nil
		}
		return false, issueAt(ValueError, CodeNonFinite, a.Name, r, map[string]string{"got": v.String()}, nil)
	}
	return false, nil
}

// label is the textual form of a value used for nominal alphabets and
// string attributes, before quoting.
func (p *plan) label(a *Attribute, v Value, r int) (string, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return text.Int(v.i), nil
	case KindUint:
		return text.Uint(v.u), nil
	case KindFloat:
		return text.Real(v.f, floatBits(a.Leaf)), nil
	case KindTime:
		return codec.FormatRFC3339(v.t), nil
	}
	return "", issueAt(ValueError, CodeCoerce, a.Name, r, gotWant(v, a.Type), nil)
}

func floatBits(l *schema.Leaf) int {
	if l != nil && l.Type == schema.Float {
		return l.FloatBits()
	}
	return 64
}

// cell renders one value for the @data section. Implicit zeros of sparse
// sources are never missing.
func (p *plan) cell(a *Attribute, v Value, r int, implicit bool) (string, error) {
	if !implicit {
		missing, err := p.isMissing(a, v, r)
		if err != nil {
			return "", err
		}
		if missing {
			return text.Missing, nil
		}
	}
	switch a.Type {
	case TypeInteger:
		switch v.kind {
		case KindInt:
			return text.Int(v.i), nil
		case KindUint:
			return text.Uint(v.u), nil
		case KindFloat:
			if i, ok := v.Int64(); ok {
				return text.Int(i), nil
			}
		}
	case TypeReal:
		if p.opts.RealFormat == "" {
			// Integer payloads keep their exact digits.
			switch v.kind {
			case KindInt:
				return text.Int(v.i), nil
			case KindUint:
				return text.Uint(v.u), nil
			}
		}
		if f, ok := v.Float64(); ok {
			return p.real(f, floatBits(a.Leaf)), nil
		}
	case TypeString:
		s, err := p.label(a, v, r)
		if err != nil {
			return "", err
		}
		return text.Quote(s), nil
	case TypeNominal:
		s, err := p.label(a, v, r)
		if err != nil {
			return "", err
		}
		if !a.inAlphabet(s) {
			return "", issueAt(ValueError, CodeNominalValue, a.Name, r, map[string]string{"got": s}, nil)
		}
		return text.Quote(s), nil
	case TypeDate:
		t, ok := asTime(v)
		if ok {
			return text.Quote(a.date.Format(t)), nil
		}
	}
	return "", issueAt(ValueError, CodeCoerce, a.Name, r, gotWant(v, a.Type), nil)
}

// real renders a finite float with Options.RealFormat or, by default, the
// shortest round-trip form.
func (p *plan) real(f float64, bits int) string {
	if p.opts.RealFormat != "" {
		return fmt.Sprintf(p.opts.RealFormat, f)
	}
	return text.Real(f, bits)
}

// asTime accepts timestamps, Unix seconds and parseable date strings.
func asTime(v Value) (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindInt:
		return time.Unix(v.i, 0).UTC(), true
	case KindString:
		t, err := codec.ParseTime(v.s)
		return t, err == nil
	}
	return time.Time{}, false
}

// implicitZero is the value of a cell a sparse source does not store.
func (p *plan) implicitZero(c, r int) (Value, error) {
	a := &p.attrs[c]
	switch a.Leaf.Type {
	case schema.Int:
		return Int(0), nil
	case schema.Uint:
		return Uint(0), nil
	case schema.Float:
		return Float(0), nil
	}
	return Value{}, issueAt(ValueError, CodeCoerce, a.Name, r, gotWant("0", a.Type), errNoImplicitZero)
}

// weight renders an instance weight.
func weight(w float64, r int) (string, error) {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return "", issueAt(ValueError, CodeNonFinite, "", r, map[string]string{"got": strconv.FormatFloat(w, 'g', -1, 64)}, nil)
	}
	return text.Real(w, 64), nil
}

// validRealFormat reports whether format renders a float with exactly one
// verb.
func validRealFormat(format string) error {
	if format == "" {
		return nil
	}
	out := fmt.Sprintf(format, 1.5)
	for i := 0; i+1 < len(out); i++ {
		if out[i] == '%' && out[i+1] == '!' {
			return errors.New("realformat must hold exactly one float verb: " + out)
		}
	}
	return nil
}
