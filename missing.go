package goarff

import (
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// missingSet is the compiled form of Options.Missing.
type missingSet struct {
	ints   map[int64]struct{}
	floats map[float64]struct{}
	nan    bool
	strs   map[string]struct{}
}

func (m *missingSet) empty() bool {
	return len(m.ints) == 0 && len(m.floats) == 0 && !m.nan && len(m.strs) == 0
}

func (m *missingSet) addFloat(f float64) {
	if math.IsNaN(f) {
		m.nan = true
		return
	}
	m.floats[f] = struct{}{}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		m.ints[int64(f)] = struct{}{}
	}
}

func (m *missingSet) addInt(i int64) {
	m.ints[i] = struct{}{}
	m.floats[float64(i)] = struct{}{}
}

func compileMissing(vals []any) (missingSet, error) {
	m := missingSet{
		ints:   map[int64]struct{}{},
		floats: map[float64]struct{}{},
		strs:   map[string]struct{}{},
	}
	for _, raw := range vals {
		switch t := raw.(type) {
		case string:
			m.strs[t] = struct{}{}
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				m.addFloat(f)
			}
		case json.Number:
			if i, err := t.Int64(); err == nil {
				m.addInt(i)
				continue
			}
			f, err := t.Float64()
			if err != nil {
				return m, fmt.Errorf("invalid missing sentinel %q", string(t))
			}
			m.addFloat(f)
		case float32:
			m.addFloat(float64(t))
		case float64:
			m.addFloat(t)
		case uint64:
			if t > math.MaxInt64 {
				m.floats[float64(t)] = struct{}{}
				continue
			}
			m.addInt(int64(t))
		default:
			v, err := ValueOf(raw)
			if err != nil || v.IsMasked() {
				return m, fmt.Errorf("unsupported missing sentinel %v (%T)", raw, raw)
			}
			i, ok := v.Int64()
			if !ok {
				return m, fmt.Errorf("unsupported missing sentinel %v (%T)", raw, raw)
			}
			m.addInt(i)
		}
	}
	return m, nil
}

// match reports whether v equals a sentinel.
func (m *missingSet) match(v Value) bool {
	switch v.kind {
	case KindInt:
		if _, ok := m.ints[v.i]; ok {
			return true
		}
		_, ok := m.floats[float64(v.i)]
		return ok
	case KindUint:
		if v.u <= math.MaxInt64 {
			if _, ok := m.ints[int64(v.u)]; ok {
				return true
			}
		}
		_, ok := m.floats[float64(v.u)]
		return ok
	case KindFloat:
		if math.IsNaN(v.f) {
			return m.nan
		}
		_, ok := m.floats[v.f]
		return ok
	case KindString:
		_, ok := m.strs[v.s]
		return ok
	}
	return false
}
