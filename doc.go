package goarff

// Package goarff provides:
//
// - Flattening of nested record schemas into ordered, named ARFF attributes (schema.Flatten)
// - Attribute classification: integer, real, string, date "<fmt>" and nominal {a,b,c}
// - Dense (a,b,c) and sparse ({i v, j w}) row encoding with optional instance weights
// - A stable error model via Issues (class, code, attribute, row, message)
//
// Design policy:
// - Keep only public APIs in the root package; put lexical rules under internal/text.
// - Place the schema tree under schema/, date patterns under codec/, container adapters
//   under source/, option files under config/ and the CLI under cmd/goarff.
// - The write is two-pass at most: an optional nominal pre-pass, then one pass emitting rows.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  src, err := source.NewDense([][]int64{{1, 2, 3}, {9, 7, 6}})
//  if err != nil { ... }
//  err = goarff.Write(os.Stdout, src, goarff.Options{
//      Relation:   "points",
//      Attributes: []string{"x0", "y0", "z0"},
//  })
//
//  attrs, err := goarff.Describe(src, goarff.Options{FileFormat: goarff.FormatSparse})
//
