package goarff

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/reoring/goarff/internal/text"
	"github.com/reoring/goarff/schema"
)

// plan is the immutable state of one write: the attribute list and the
// compiled options. It is built before any byte is written.
type plan struct {
	opts       Options
	relation   string
	attrs      []Attribute
	derive     []int // nominal columns whose alphabet is collected from the data
	validate   []int // nominal columns with an explicit alphabet
	missing    missingSet
	sparse     bool
	allNumeric bool
}

func lastOptions(opts []Options) Options {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return Options{}
}

// prepare runs every check that does not need the rows, then the nominal
// pre-pass.
func prepare(src Source, opts Options) (*plan, error) {
	if src == nil {
		return nil, issueAt(SchemaError, CodeBadSchema, "", -1, nil, nil)
	}
	p := &plan{opts: opts, relation: opts.Relation}
	if p.relation == "" {
		p.relation = DefaultRelation
	}
	if !text.ValidName(p.relation) {
		return nil, issueAt(SchemaError, CodeInvalidName, p.relation, -1, nil, nil)
	}

	switch opts.FileFormat {
	case FormatAuto:
		if s, ok := src.(Sparser); ok {
			p.sparse = s.IsSparse()
		}
	case FormatDense:
	case FormatSparse:
		p.sparse = true
	default:
		return nil, issueAt(ConfigurationError, CodeFileFormat, "", -1, map[string]string{"got": string(opts.FileFormat)}, nil)
	}
	switch opts.Style {
	case StyleDefault, StyleCompact:
	default:
		return nil, issueAt(ConfigurationError, CodeInvalidOption, "style", -1, nil, nil)
	}
	switch opts.NonFinite {
	case NonFiniteReject, "reject", NonFiniteMissing:
	default:
		return nil, issueAt(ConfigurationError, CodeInvalidOption, "nonfinite", -1, nil, nil)
	}
	if err := validRealFormat(opts.RealFormat); err != nil {
		return nil, issueAt(ConfigurationError, CodeInvalidOption, "realformat", -1, nil, err)
	}

	cols, err := schema.Flatten(src.Schema(), opts.Naming())
	if err != nil {
		return nil, fromSchemaError(err)
	}
	if opts.Attributes != nil {
		if cols, err = schema.Rename(cols, opts.Attributes); err != nil {
			return nil, fromSchemaError(err)
		}
	}

	n := src.Len()
	if opts.Weights != nil {
		if len(opts.Weights) != n {
			return nil, issueAt(ConfigurationError, CodeWeightsLength, "", -1, gotWant(len(opts.Weights), n), nil)
		}
		for r, w := range opts.Weights {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, issueAt(ValueError, CodeNonFinite, "", r, gotWant(w, "finite weight"), nil)
			}
		}
	}
	if p.missing, err = compileMissing(opts.Missing); err != nil {
		return nil, issueAt(ConfigurationError, CodeInvalidOption, "missing", -1, nil, err)
	}

	if err := p.classify(cols); err != nil {
		return nil, err
	}
	p.allNumeric = true
	for i := range p.attrs {
		if !p.attrs[i].numeric() {
			p.allNumeric = false
			break
		}
	}
	if err := p.scanNominal(src); err != nil {
		return nil, err
	}
	return p, nil
}

// Describe returns the attribute list Write would declare for src, running
// the same checks (including the nominal pre-pass) without writing.
func Describe(src Source, opts ...Options) ([]Attribute, error) {
	p, err := prepare(src, lastOptions(opts))
	if err != nil {
		return nil, err
	}
	return p.attrs, nil
}

// Write renders src as an ARFF document to w. Schema and configuration
// errors are reported before anything is written; a value or sink error
// aborts the write and leaves a partial document in w.
func Write(w io.Writer, src Source, opts ...Options) error {
	p, err := prepare(src, lastOptions(opts))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := p.writeHeader(bw); err != nil {
		return err
	}
	var line []byte
	for r := 0; r < src.Len(); r++ {
		line, err = p.appendRow(line[:0], src, r)
		if err != nil {
			// Keep what was rendered so far visible to the caller.
			_ = bw.Flush()
			return err
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return ioIssue(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return ioIssue(err)
	}
	return nil
}

func (p *plan) writeHeader(bw *bufio.Writer) error {
	blank := p.opts.Style != StyleCompact
	for _, c := range p.opts.Comments {
		for _, l := range strings.Split(c, "\n") {
			bw.WriteString("% ")
			bw.WriteString(strings.TrimRight(l, "\r"))
			bw.WriteByte('\n')
		}
	}
	bw.WriteString("@relation ")
	bw.WriteString(text.Name(p.relation))
	bw.WriteByte('\n')
	if blank {
		bw.WriteByte('\n')
	}
	for i := range p.attrs {
		a := &p.attrs[i]
		bw.WriteString("@attribute ")
		bw.WriteString(text.Name(a.Name))
		bw.WriteByte(' ')
		bw.WriteString(a.Declaration())
		bw.WriteByte('\n')
	}
	if blank {
		bw.WriteByte('\n')
	}
	if _, err := bw.WriteString("@data\n"); err != nil {
		return ioIssue(err)
	}
	return nil
}

func ioIssue(err error) error {
	return issueAt(IOError, CodeWriteFailed, "", -1, nil, err)
}
