package goarff

import (
	"errors"
	"sort"
	"strings"

	"github.com/reoring/goarff/codec"
	"github.com/reoring/goarff/internal/text"
	"github.com/reoring/goarff/schema"
)

// AttrType is the ARFF attribute type tag.
type AttrType int

const (
	TypeInteger AttrType = iota
	TypeReal
	TypeString
	TypeDate
	TypeNominal
)

func (t AttrType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeNominal:
		return "nominal"
	}
	return "unknown"
}

// Attribute is one output column, fixed before the first header line is
// written.
type Attribute struct {
	Name       string
	Type       AttrType
	DateFormat string       // TypeDate only.
	Nominal    []string     // TypeNominal only, in declaration order.
	Leaf       *schema.Leaf // The flattened source leaf.

	date     *codec.SimpleDate
	alphabet map[string]struct{}
}

// Declaration renders the type part of the @attribute line.
func (a *Attribute) Declaration() string {
	switch a.Type {
	case TypeDate:
		return "date " + text.Quote(a.DateFormat)
	case TypeNominal:
		var b strings.Builder
		b.WriteByte('{')
		for i, v := range a.Nominal {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(text.Name(v))
		}
		b.WriteByte('}')
		return b.String()
	}
	return a.Type.String()
}

// numeric reports whether an implicit or explicit zero may be dropped from a
// sparse row.
func (a *Attribute) numeric() bool { return a.Type == TypeInteger || a.Type == TypeReal }

func (a *Attribute) setAlphabet(vs []string) {
	a.Nominal = vs
	a.alphabet = make(map[string]struct{}, len(vs))
	for _, v := range vs {
		a.alphabet[v] = struct{}{}
	}
}

func (a *Attribute) inAlphabet(label string) bool {
	_, ok := a.alphabet[label]
	return ok
}

// classify maps flattened columns to attribute descriptors. Nominal
// alphabets that must be derived are left empty; the scan pass fills them.
func (p *plan) classify(cols []schema.Column) error {
	byName := make(map[string]int, len(cols))
	for i, c := range cols {
		byName[c.Name] = i
	}
	for name := range p.opts.Nominal {
		if _, ok := byName[name]; !ok {
			return issueAt(ConfigurationError, CodeUnknownNominalKey, name, -1, nil, nil)
		}
	}
	for name := range p.opts.DateFormats {
		i, ok := byName[name]
		if !ok || cols[i].Leaf.Type != schema.Date {
			return issueAt(ConfigurationError, CodeUnknownDateKey, name, -1, nil, nil)
		}
	}

	p.attrs = make([]Attribute, len(cols))
	for i, c := range cols {
		a := Attribute{Name: c.Name, Leaf: c.Leaf}
		if !text.ValidName(c.Name) {
			return issueAt(SchemaError, CodeInvalidName, c.Name, -1, nil, nil)
		}
		if nom := p.opts.Nominal[c.Name]; nom.enabled() {
			a.Type = TypeNominal
			if nom.Derive {
				p.derive = append(p.derive, i)
			} else {
				a.setAlphabet(dedupe(nom.Values))
				p.validate = append(p.validate, i)
			}
			p.attrs[i] = a
			continue
		}
		switch c.Leaf.Type {
		case schema.Int, schema.Uint:
			a.Type = TypeInteger
		case schema.Float:
			a.Type = TypeReal
		case schema.String:
			a.Type = TypeString
		case schema.Date:
			a.Type = TypeDate
			pattern := p.opts.DateFormat
			if f, ok := p.opts.DateFormats[c.Name]; ok {
				pattern = f
			}
			if pattern == "" {
				pattern = codec.DefaultDateFormat
			}
			d, err := codec.ParseSimpleDate(pattern)
			if err != nil {
				return issueAt(ConfigurationError, CodeDateFormat, c.Name, -1, map[string]string{"got": pattern}, err)
			}
			a.DateFormat = pattern
			a.date = d
		default:
			return issueAt(SchemaError, CodeRelational, c.Name, -1, nil, nil)
		}
		p.attrs[i] = a
	}
	return nil
}

// dedupe drops repeated values keeping the first occurrence.
func dedupe(vs []string) []string {
	seen := make(map[string]struct{}, len(vs))
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// scanNominal is the pre-pass over the rows: it collects the alphabet of
// every derived nominal column and checks every explicit one.
func (p *plan) scanNominal(src Source) error {
	cols := append(append([]int(nil), p.derive...), p.validate...)
	if len(cols) == 0 {
		return nil
	}
	watch := make(map[int]int, len(cols)) // column -> slot
	for slot, c := range cols {
		watch[c] = slot
	}
	found := make([]map[string]float64, len(p.derive))
	for i := range found {
		found[i] = map[string]float64{}
	}
	seenRow := make([]int, len(cols))
	for i := range seenRow {
		seenRow[i] = -1
	}

	visit := func(r, c int, v Value, implicit bool) error {
		a := &p.attrs[c]
		if !implicit {
			missing, err := p.isMissing(a, v, r)
			if err != nil || missing {
				return err
			}
		}
		label, err := p.label(a, v, r)
		if err != nil {
			return err
		}
		slot := watch[c]
		if slot < len(p.derive) {
			f, _ := v.Float64()
			found[slot][label] = f
			return nil
		}
		if !a.inAlphabet(label) {
			return issueAt(ValueError, CodeNominalValue, a.Name, r, map[string]string{"got": label}, nil)
		}
		return nil
	}

	for r := 0; r < src.Len(); r++ {
		for c, v := range src.Row(r) {
			slot, ok := watch[c]
			if !ok {
				continue
			}
			seenRow[slot] = r
			if err := visit(r, c, v, false); err != nil {
				return err
			}
		}
		for slot, c := range cols {
			if seenRow[slot] == r {
				continue
			}
			z, err := p.implicitZero(c, r)
			if err != nil {
				return err
			}
			if err := visit(r, c, z, true); err != nil {
				return err
			}
		}
	}

	for slot, c := range p.derive {
		p.attrs[c].setAlphabet(sortLabels(found[slot], p.attrs[c].Leaf.Type.Numeric()))
	}
	return nil
}

// sortLabels orders a derived alphabet: by numeric value for numeric leaves,
// byte-wise otherwise.
func sortLabels(found map[string]float64, numeric bool) []string {
	out := make([]string, 0, len(found))
	for l := range found {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if numeric && found[out[i]] != found[out[j]] {
			return found[out[i]] < found[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// errNoImplicitZero marks an absent cell in a column that has no zero.
var errNoImplicitZero = errors.New("absent cell in a non-numeric column")
