package goarff_test

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/schema"
	"github.com/reoring/goarff/source"
)

func render(t *testing.T, src goarff.Source, opts goarff.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, goarff.Write(&buf, src, opts))
	return buf.String()
}

func dataLines(doc string) []string {
	_, data, ok := strings.Cut(doc, "@data\n")
	if !ok {
		return nil
	}
	return strings.Split(strings.TrimSuffix(data, "\n"), "\n")
}

func TestWrite_DensePoints(t *testing.T) {
	src, err := source.NewDense([][]int64{{1, 2, 3}, {9, 7, 6}})
	require.NoError(t, err)

	got := render(t, src, goarff.Options{Relation: "points", Attributes: []string{"x0", "y0", "z0"}})

	want := "@relation points\n" +
		"\n" +
		"@attribute x0 integer\n" +
		"@attribute y0 integer\n" +
		"@attribute z0 integer\n" +
		"\n" +
		"@data\n" +
		"1,2,3\n" +
		"9,7,6\n"
	assert.Equal(t, want, got)
}

func TestWrite_DenseRoundTrip(t *testing.T) {
	rows := [][]int64{{0, -5, 120}, {7, 0, -1}, {42, 42, 0}}
	src, err := source.NewDense(rows)
	require.NoError(t, err)

	lines := dataLines(render(t, src, goarff.Options{}))
	require.Len(t, lines, len(rows))
	for i, line := range lines {
		for j, cell := range strings.Split(line, ",") {
			v, err := strconv.ParseInt(cell, 10, 64)
			require.NoError(t, err)
			assert.Equal(t, rows[i][j], v, "row %d col %d", i, j)
		}
	}
}

func sparseExample(t *testing.T) *source.CSR[int64] {
	t.Helper()
	m, err := source.FromTriplets(7, 5,
		[]int{0, 2, 2, 3, 5, 5},
		[]int{3, 1, 2, 2, 3, 4},
		[]int64{10, 20, 30, 40, 50, 60})
	require.NoError(t, err)
	return m
}

func TestWrite_SparseExample(t *testing.T) {
	got := render(t, sparseExample(t), goarff.Options{})

	want := "@relation undefined\n" +
		"\n" +
		"@attribute f0 integer\n" +
		"@attribute f1 integer\n" +
		"@attribute f2 integer\n" +
		"@attribute f3 integer\n" +
		"@attribute f4 integer\n" +
		"\n" +
		"@data\n" +
		"{3 10}\n" +
		"{}\n" +
		"{1 20, 2 30}\n" +
		"{2 40}\n" +
		"{}\n" +
		"{3 50, 4 60}\n" +
		"{}\n"
	assert.Equal(t, want, got)
}

func TestWrite_SparseSourceAsDense(t *testing.T) {
	lines := dataLines(render(t, sparseExample(t), goarff.Options{FileFormat: goarff.FormatDense}))
	assert.Equal(t, []string{
		"0,0,0,10,0",
		"0,0,0,0,0",
		"0,20,30,0,0",
		"0,0,40,0,0",
		"0,0,0,0,0",
		"0,0,0,50,60",
		"0,0,0,0,0",
	}, lines)
}

// expand turns a data section back into a matrix, zero-filling sparse rows.
func expand(t *testing.T, lines []string, cols int) [][]float64 {
	t.Helper()
	out := make([][]float64, len(lines))
	for i, line := range lines {
		row := make([]float64, cols)
		if strings.HasPrefix(line, "{") {
			body := strings.TrimSuffix(strings.TrimPrefix(line, "{"), "}")
			if body != "" {
				for _, entry := range strings.Split(body, ", ") {
					idx, val, ok := strings.Cut(entry, " ")
					require.True(t, ok, entry)
					c, err := strconv.Atoi(idx)
					require.NoError(t, err)
					row[c], err = strconv.ParseFloat(val, 64)
					require.NoError(t, err)
				}
			}
		} else {
			for c, cell := range strings.Split(line, ",") {
				var err error
				row[c], err = strconv.ParseFloat(cell, 64)
				require.NoError(t, err)
			}
		}
		out[i] = row
	}
	return out
}

func TestWrite_DenseSparseEquivalence(t *testing.T) {
	rows := [][]float64{
		{0, 1.5, 0, 0},
		{0, 0, 0, 0},
		{-2.25, 0, 3, 1e-7},
		{0, 0, 0, 40},
	}
	src, err := source.NewDense(rows)
	require.NoError(t, err)

	dense := dataLines(render(t, src, goarff.Options{FileFormat: goarff.FormatDense}))
	sparse := dataLines(render(t, src, goarff.Options{FileFormat: goarff.FormatSparse}))

	assert.Equal(t, "{}", sparse[1])
	assert.Equal(t, "{3 40}", sparse[3])
	assert.Equal(t, rows, expand(t, dense, 4))
	assert.Equal(t, expand(t, dense, 4), expand(t, sparse, 4))
}

func TestWrite_MissingPrecedence(t *testing.T) {
	src, err := source.NewDense([][]float64{{0, 1.5, -1}, {2, 0, 3}})
	require.NoError(t, err)
	src, err = src.WithMask([][]bool{{false, false, false}, {false, true, false}})
	require.NoError(t, err)
	opts := goarff.Options{Missing: []any{-1.0}}

	opts.FileFormat = goarff.FormatDense
	assert.Equal(t, []string{"0,1.5,?", "2,?,3"}, dataLines(render(t, src, opts)))

	// The masked zero at (1,1) is kept; the plain zero at (0,0) is omitted.
	opts.FileFormat = goarff.FormatSparse
	assert.Equal(t, []string{"{1 1.5, 2 ?}", "{0 2, 1 ?, 2 3}"}, dataLines(render(t, src, opts)))
}

func TestWrite_ZeroSentinel(t *testing.T) {
	m, err := source.NewCSR(2, 3, []int{0, 2, 3}, []int{0, 2, 1}, []float64{0, 5, 7})
	require.NoError(t, err)
	opts := goarff.Options{Missing: []any{"0"}}

	// A stored zero matches the sentinel; absent cells stay zero.
	assert.Equal(t, []string{"{0 ?, 2 5}", "{1 7}"}, dataLines(render(t, m, opts)))
	opts.FileFormat = goarff.FormatDense
	assert.Equal(t, []string{"?,0,5", "0,7,0"}, dataLines(render(t, m, opts)))
}

func colorTable(t *testing.T) *source.Table {
	t.Helper()
	tbl, err := source.NewTable([]string{"color"}, [][]any{{"green"}, {"red"}, {"red"}, {"black"}, {"red"}})
	require.NoError(t, err)
	return tbl
}

func TestWrite_NominalDerived(t *testing.T) {
	got := render(t, colorTable(t), goarff.Options{
		Nominal: map[string]goarff.Nominal{"color": goarff.DeriveNominal()},
	})

	want := "@relation undefined\n" +
		"\n" +
		"@attribute color {black,green,red}\n" +
		"\n" +
		"@data\n" +
		"\"green\"\n\"red\"\n\"red\"\n\"black\"\n\"red\"\n"
	assert.Equal(t, want, got)
}

func TestWrite_NominalDeterminism(t *testing.T) {
	opts := goarff.Options{Nominal: map[string]goarff.Nominal{"color": goarff.DeriveNominal()}}
	a1, err := goarff.Describe(colorTable(t), opts)
	require.NoError(t, err)
	a2, err := goarff.Describe(colorTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, a1[0].Nominal, a2[0].Nominal)

	opts.Nominal["color"] = goarff.NominalValues("red", "green", "black", "red")
	attrs, err := goarff.Describe(colorTable(t), opts)
	require.NoError(t, err)
	assert.Equal(t, goarff.TypeNominal, attrs[0].Type)
	assert.Equal(t, []string{"red", "green", "black"}, attrs[0].Nominal)
	assert.Equal(t, "{red,green,black}", attrs[0].Declaration())
}

func TestWrite_NominalNumericOrder(t *testing.T) {
	src, err := source.NewDense([][]int64{{10}, {2}, {-3}, {2}})
	require.NoError(t, err)
	attrs, err := goarff.Describe(src, goarff.Options{
		Nominal: map[string]goarff.Nominal{"f0": goarff.DeriveNominal()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"-3", "2", "10"}, attrs[0].Nominal)
}

func TestWrite_NominalValueOutsideAlphabet(t *testing.T) {
	var buf bytes.Buffer
	err := goarff.Write(&buf, colorTable(t), goarff.Options{
		Nominal: map[string]goarff.Nominal{"color": goarff.NominalValues("red", "green")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, goarff.ErrValue)
	iss, ok := goarff.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, goarff.CodeNominalValue, iss[0].Code)
	assert.Equal(t, "color", iss[0].Attribute)
	assert.Equal(t, 3, iss[0].Row)
	assert.Zero(t, buf.Len(), "explicit alphabets are checked before the header")
}

func TestWrite_NominalMissingExcluded(t *testing.T) {
	tbl, err := source.NewTable([]string{"c"}, [][]any{{"b"}, {nil}, {"n/a"}, {"a"}})
	require.NoError(t, err)
	got := render(t, tbl, goarff.Options{
		Missing: []any{"n/a"},
		Nominal: map[string]goarff.Nominal{"c": goarff.DeriveNominal()},
	})
	assert.Contains(t, got, "@attribute c {a,b}\n")
	assert.Equal(t, []string{`"b"`, "?", "?", `"a"`}, dataLines(got))
}

func TestWrite_NominalQuestionMarkLabel(t *testing.T) {
	tbl, err := source.NewTable([]string{"c"}, [][]any{{"?"}, {"a"}})
	require.NoError(t, err)
	got := render(t, tbl, goarff.Options{Nominal: map[string]goarff.Nominal{"c": goarff.DeriveNominal()}})
	assert.Contains(t, got, "@attribute c {\"?\",a}\n")
	assert.Equal(t, []string{`"?"`, `"a"`}, dataLines(got))
}

func TestWrite_Weights(t *testing.T) {
	src, err := source.NewDense([][]int64{{1, 0}, {0, 0}})
	require.NoError(t, err)
	opts := goarff.Options{Weights: []float64{0.5, 2}}

	opts.FileFormat = goarff.FormatDense
	assert.Equal(t, []string{"1,0, {0.5}", "0,0, {2}"}, dataLines(render(t, src, opts)))
	opts.FileFormat = goarff.FormatSparse
	assert.Equal(t, []string{"{0 1}, {0.5}", "{}, {2}"}, dataLines(render(t, src, opts)))
}

func TestWrite_WeightsLengthMismatch(t *testing.T) {
	src, err := source.NewDense([][]int64{{1}, {2}, {3}})
	require.NoError(t, err)
	var buf bytes.Buffer
	err = goarff.Write(&buf, src, goarff.Options{Weights: []float64{1, 2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, goarff.ErrConfiguration)
	iss, _ := goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeWeightsLength, iss[0].Code)
	assert.Equal(t, map[string]string{"got": "2", "want": "3"}, iss[0].Params)
	assert.Zero(t, buf.Len())
}

func TestWrite_Reals(t *testing.T) {
	src, err := source.NewDense([][]float64{{40.0, 0.1, -1.5e-9}})
	require.NoError(t, err)
	assert.Equal(t, []string{"40,0.1,-1.5e-09"}, dataLines(render(t, src, goarff.Options{})))
	assert.Equal(t, []string{"40.00,0.10,-0.00"}, dataLines(render(t, src, goarff.Options{RealFormat: "%.2f"})))

	f32, err := source.NewDense([][]float32{{0.1, 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"0.1,3"}, dataLines(render(t, f32, goarff.Options{})))
}

func TestWrite_NonFinite(t *testing.T) {
	src, err := source.NewDense([][]float64{{1, math.NaN()}, {math.Inf(-1), 2}})
	require.NoError(t, err)

	err = goarff.Write(io.Discard, src, goarff.Options{})
	assert.ErrorIs(t, err, goarff.ErrValue)
	iss, _ := goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeNonFinite, iss[0].Code)
	assert.Equal(t, 0, iss[0].Row)

	got := render(t, src, goarff.Options{NonFinite: goarff.NonFiniteMissing})
	assert.Equal(t, []string{"1,?", "?,2"}, dataLines(got))

	got = render(t, src, goarff.Options{Missing: []any{math.NaN()}, NonFinite: goarff.NonFiniteMissing})
	assert.Equal(t, []string{"1,?", "?,2"}, dataLines(got))
}

func TestWrite_StringsAndQuoting(t *testing.T) {
	tbl, err := source.NewTable([]string{"first name", "note"}, [][]any{
		{"Ann", `say "hi", \ bye`},
		{"Bob", "two\nlines"},
	})
	require.NoError(t, err)
	got := render(t, tbl, goarff.Options{Relation: "people 2024"})

	assert.Contains(t, got, "@relation \"people 2024\"\n")
	assert.Contains(t, got, "@attribute \"first name\" string\n")
	assert.Equal(t, []string{
		`"Ann","say \"hi\", \\ bye"`,
		`"Bob","two\nlines"`,
	}, dataLines(got))
}

func TestWrite_Dates(t *testing.T) {
	when := time.Date(2015, time.November, 15, 8, 20, 48, 0, time.UTC)
	node := schema.Struct(schema.F("id", schema.IntLeaf()), schema.F("at", schema.DateLeaf()))
	recs, err := source.NewRecords(node, []any{
		[]any{1, when},
		[]any{2, nil},
		map[string]any{"id": 3, "at": "2020-02-29T23:59:01Z"},
	})
	require.NoError(t, err)

	got := render(t, recs, goarff.Options{})
	assert.Contains(t, got, "@attribute at date \"yyyy-MM-dd'T'HH:mm:ss\"\n")
	assert.Equal(t, []string{
		`1,"2015-11-15T08:20:48"`,
		`2,?`,
		`3,"2020-02-29T23:59:01"`,
	}, dataLines(got))

	got = render(t, recs, goarff.Options{DateFormats: map[string]string{"at": "dd/MM/yy HH:mm"}})
	assert.Contains(t, got, "@attribute at date \"dd/MM/yy HH:mm\"\n")
	assert.Equal(t, `1,"15/11/15 08:20"`, dataLines(got)[0])
}

func TestWrite_NestedRecords(t *testing.T) {
	node := schema.Struct(
		schema.F("name", schema.StringLeaf()),
		schema.F("pos", schema.ArrayOf(schema.FloatLeaf(), 2)),
	)
	recs, err := source.NewRecords(node, []any{
		[]any{"a", []float64{1, 2.5}},
		map[string]any{"name": "b", "pos": []any{nil, 3}},
	})
	require.NoError(t, err)

	got := render(t, recs, goarff.Options{Relation: "nested", Join: "/", IndexOpen: "[", IndexClose: "]", IndexBase: 1})
	assert.Contains(t, got, "@attribute name string\n@attribute pos[1] real\n@attribute pos[2] real\n")
	assert.Equal(t, []string{`"a",1,2.5`, `"b",?,3`}, dataLines(got))
}

func TestWrite_CommentsAndCompactStyle(t *testing.T) {
	src, err := source.NewDense([][]int64{{1}})
	require.NoError(t, err)
	got := render(t, src, goarff.Options{
		Relation: "r",
		Comments: []string{"generated", "line one\nline two"},
		Style:    goarff.StyleCompact,
	})
	assert.Equal(t, "% generated\n% line one\n% line two\n@relation r\n@attribute f0 integer\n@data\n1\n", got)
}

func TestWrite_ConfigurationErrors(t *testing.T) {
	src, err := source.NewDense([][]int64{{1, 2}})
	require.NoError(t, err)
	dates, err := source.NewRecords(schema.Struct(schema.F("d", schema.DateLeaf())), []any{[]any{time.Now()}})
	require.NoError(t, err)

	cases := []struct {
		name  string
		src   goarff.Source
		opts  goarff.Options
		class error
		code  string
	}{
		{"attribute count", src, goarff.Options{Attributes: []string{"a"}}, goarff.ErrSchema, goarff.CodeAttributeCount},
		{"duplicate attribute", src, goarff.Options{Attributes: []string{"a", "a"}}, goarff.ErrSchema, goarff.CodeDuplicateName},
		{"control char", src, goarff.Options{Attributes: []string{"a", "b\x01"}}, goarff.ErrSchema, goarff.CodeInvalidName},
		{"unknown nominal", src, goarff.Options{Nominal: map[string]goarff.Nominal{"zz": goarff.DeriveNominal()}}, goarff.ErrConfiguration, goarff.CodeUnknownNominalKey},
		{"unknown disabled nominal", src, goarff.Options{Nominal: map[string]goarff.Nominal{"zz": {}}}, goarff.ErrConfiguration, goarff.CodeUnknownNominalKey},
		{"unknown date key", dates, goarff.Options{DateFormats: map[string]string{"zz": "yyyy"}}, goarff.ErrConfiguration, goarff.CodeUnknownDateKey},
		{"date key on non-date", src, goarff.Options{DateFormats: map[string]string{"f0": "yyyy"}}, goarff.ErrConfiguration, goarff.CodeUnknownDateKey},
		{"unsupported date token", dates, goarff.Options{DateFormat: "yyyy-ww"}, goarff.ErrConfiguration, goarff.CodeDateFormat},
		{"date without fields", dates, goarff.Options{DateFormat: "'today'"}, goarff.ErrConfiguration, goarff.CodeDateFormat},
		{"file format", src, goarff.Options{FileFormat: "arff"}, goarff.ErrConfiguration, goarff.CodeFileFormat},
		{"real format", src, goarff.Options{RealFormat: "%d"}, goarff.ErrConfiguration, goarff.CodeInvalidOption},
		{"missing sentinel", src, goarff.Options{Missing: []any{[]int{1}}}, goarff.ErrConfiguration, goarff.CodeInvalidOption},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := goarff.Write(&buf, tc.src, tc.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.class)
			iss, ok := goarff.AsIssues(err)
			require.True(t, ok)
			assert.Equal(t, tc.code, iss[0].Code)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestWrite_SchemaErrors(t *testing.T) {
	node := schema.Struct(
		schema.F("a", schema.IntLeaf()),
		schema.F("b", schema.ArrayOf(schema.IntLeaf(), 2, 0)),
	)
	recs := &fixedSource{node: node}
	err := goarff.Write(io.Discard, recs)
	assert.ErrorIs(t, err, goarff.ErrSchema)
	iss, _ := goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeBadDimension, iss[0].Code)

	rel := &fixedSource{node: schema.Struct(schema.F("r", schema.LeafOf(schema.Relational)))}
	err = goarff.Write(io.Discard, rel)
	iss, _ = goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeRelational, iss[0].Code)
}

func TestWrite_ValueErrors(t *testing.T) {
	node := schema.Struct(schema.F("n", schema.IntLeaf()))
	src := &fixedSource{node: node, rows: [][]goarff.Value{{goarff.Int(1)}, {goarff.String("x")}}}
	var buf bytes.Buffer
	err := goarff.Write(&buf, src)
	assert.ErrorIs(t, err, goarff.ErrValue)
	iss, _ := goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeCoerce, iss[0].Code)
	assert.Equal(t, 1, iss[0].Row)
	assert.True(t, strings.HasSuffix(buf.String(), "@data\n1\n"), "rows before the failure are flushed")

	bad := &fixedSource{node: schema.Table(schema.Int, schema.Int), rows: [][]goarff.Value{{goarff.Int(1)}}, order: []int{1, 0}}
	err = goarff.Write(io.Discard, bad)
	iss, _ = goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeSourceIndex, iss[0].Code)

	strs := &fixedSource{node: schema.Table(schema.String), rows: [][]goarff.Value{nil}, sparse: true}
	err = goarff.Write(io.Discard, strs)
	iss, _ = goarff.AsIssues(err)
	assert.Equal(t, goarff.CodeCoerce, iss[0].Code)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWrite_IOError(t *testing.T) {
	src, err := source.NewDense([][]int64{{1}})
	require.NoError(t, err)
	err = goarff.Write(failingWriter{}, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, goarff.ErrIO)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDescribe(t *testing.T) {
	node := schema.Struct(
		schema.F("i", schema.IntLeaf()),
		schema.F("u", schema.UintLeaf()),
		schema.F("f", schema.Float32Leaf()),
		schema.F("s", schema.StringLeaf()),
		schema.F("d", schema.DateLeaf()),
	)
	attrs, err := goarff.Describe(&fixedSource{node: node}, goarff.Options{DateFormat: "yyyy"})
	require.NoError(t, err)
	var decl []string
	for _, a := range attrs {
		decl = append(decl, a.Name+" "+a.Declaration())
	}
	assert.Equal(t, []string{"i integer", "u integer", "f real", "s string", `d date "yyyy"`}, decl)
}

// fixedSource yields rows verbatim; order, when set, permutes the column
// indices of row 0.
type fixedSource struct {
	node   schema.Node
	rows   [][]goarff.Value
	order  []int
	sparse bool
}

func (s *fixedSource) Schema() schema.Node { return s.node }
func (s *fixedSource) Len() int            { return len(s.rows) }
func (s *fixedSource) IsSparse() bool      { return s.sparse }

func (s *fixedSource) Row(r int) iter.Seq2[int, goarff.Value] {
	return func(yield func(int, goarff.Value) bool) {
		if s.order != nil {
			for _, c := range s.order {
				if !yield(c, goarff.Int(1)) {
					return
				}
			}
			return
		}
		for c, v := range s.rows[r] {
			if !yield(c, v) {
				return
			}
		}
	}
}
