package config

// Package config loads goarff.Options from YAML or JSON documents, locally or
// from any location the afs file system understands.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goarff"
)

// DuplicateKeyError reports a key given twice in one YAML mapping, with both
// positions.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Parse decodes options. name selects the syntax by extension: .json is
// JSON, anything else YAML. Unknown keys are rejected in both.
func Parse(data []byte, name string) (goarff.Options, error) {
	if strings.EqualFold(path.Ext(name), ".json") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

// Load downloads the document at URL (file path, file://, mem://, ...) and
// parses it.
func Load(ctx context.Context, URL string) (goarff.Options, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return goarff.Options{}, fmt.Errorf("load %s: %w", URL, err)
	}
	opts, err := Parse(data, URL)
	if err != nil {
		return goarff.Options{}, fmt.Errorf("%s: %w", URL, err)
	}
	return opts, nil
}

func parseJSON(data []byte) (goarff.Options, error) {
	var opts goarff.Options
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return goarff.Options{}, fmt.Errorf("decode json: %w", err)
	}
	return opts, nil
}

func parseYAML(data []byte) (goarff.Options, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return goarff.Options{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := checkDuplicates(&root); err != nil {
		return goarff.Options{}, err
	}

	var opts goarff.Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return goarff.Options{}, fmt.Errorf("decode yaml: %w", err)
	}
	return opts, nil
}

// checkDuplicates walks every mapping under n.
func checkDuplicates(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if pos, dup := first[k.Value]; dup {
				return &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
		}
	}
	for _, c := range n.Content {
		if err := checkDuplicates(c); err != nil {
			return err
		}
	}
	return nil
}
