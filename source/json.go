package source

import (
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/codec"
	"github.com/reoring/goarff/schema"
)

// ErrJSONLayout reports a document that is not an array of flat records.
var ErrJSONLayout = errors.New("source: JSON input must be an array of objects or arrays")

// DecodeJSON reads a JSON array of records and expands them against node
// (see NewRecords). Numbers keep their integer or float form.
func DecodeJSON(r io.Reader, node schema.Node) (*Records, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var recs []any
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return NewRecords(node, recs)
}

// DecodeJSONTable reads a JSON array of flat objects or of flat arrays into a
// Table. Object keys become columns in first-seen order; a key absent from a
// record is masked. Strings holding RFC 3339 timestamps become dates.
func DecodeJSONTable(r io.Reader) (*Table, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var (
		header  []string
		index   = map[string]int{}
		objects []map[string]any
		arrays  [][]any
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		switch tok {
		case j.Delim('{'):
			obj := map[string]any{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("decode json: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("%w: object key %v", ErrJSONLayout, kt)
				}
				val, err := scalarToken(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				if _, seen := index[key]; !seen {
					index[key] = len(header)
					header = append(header, key)
				}
				obj[key] = val
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
			objects = append(objects, obj)
		case j.Delim('['):
			var row []any
			for dec.More() {
				val, err := scalarToken(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(row), err)
				}
				row = append(row, val)
			}
			if err := expectDelim(dec, ']'); err != nil {
				return nil, err
			}
			arrays = append(arrays, row)
		default:
			return nil, fmt.Errorf("%w: unexpected %v", ErrJSONLayout, tok)
		}
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	switch {
	case len(objects) > 0 && len(arrays) > 0:
		return nil, fmt.Errorf("%w: objects and arrays are mixed", ErrJSONLayout)
	case len(arrays) > 0:
		return NewTable(nil, arrays)
	}
	rows := make([][]any, len(objects))
	for i, obj := range objects {
		row := make([]any, len(header))
		for k, v := range obj {
			row[index[k]] = v
		}
		rows[i] = row
	}
	if header == nil {
		header = []string{}
	}
	return NewTable(header, rows)
}

func expectDelim(dec *j.Decoder, want j.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if d, ok := tok.(j.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrJSONLayout, rune(want), tok)
	}
	return nil
}

// scalarToken reads one scalar value. Numbers are converted at once since
// the decoder may reuse the bytes behind them.
func scalarToken(dec *j.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	switch v := tok.(type) {
	case j.Delim:
		return nil, fmt.Errorf("%w: nested %q", ErrJSONLayout, rune(v))
	case j.Number:
		return goarff.ValueOf(v)
	case string:
		if t, err := codec.ParseTime(v); err == nil {
			return t, nil
		}
		return v, nil
	}
	return tok, nil
}
