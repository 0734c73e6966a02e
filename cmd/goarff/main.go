package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/minio/highwayhash"
	"github.com/viant/afs"
	_ "modernc.org/sqlite"

	"github.com/reoring/goarff"
	"github.com/reoring/goarff/config"
	"github.com/reoring/goarff/i18n"
	"github.com/reoring/goarff/source"
)

// digestKey keys the -digest fingerprint; it only needs to be stable.
var digestKey = []byte("0123456789ABCDEF0123456789ABCDEF")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx := context.Background()
	var err error
	switch sub := os.Args[1]; sub {
	case "write":
		err = writeCmd(ctx, os.Args[2:], os.Stdout, os.Stderr)
	case "describe":
		err = describeCmd(ctx, os.Args[2:], os.Stdout, os.Stderr)
	default:
		usage()
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		fatalf("goarff %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "goarff CLI\n\nUsage:\n  goarff write -in data.csv [-config opts.yaml] [-relation r] [-sparse] [-o out.arff]\n  goarff write -format sql -driver sqlite -dsn file.db -query 'SELECT ...' [-o out.arff]\n  goarff describe -in data.json\n\nNotes:\n  - Inputs and outputs are URLs understood by afs (paths, file://, mem://, s3://, gs://).\n  - Output is uploaded only after the whole document rendered without error.")
}

// flags shared by the subcommands.
type inputFlags struct {
	in, format         string
	driver, dsn, query string
	noHeader           bool
	configURL          string
	relation           string
	attributes         string
	nominal            string
	sparse             bool
	lang               string
	verbose            bool
}

func (f *inputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.in, "in", "", "input URL (csv or json)")
	fs.StringVar(&f.format, "format", "", "input format: csv, json or sql (default: from -in extension)")
	fs.StringVar(&f.driver, "driver", "sqlite", "database/sql driver for -format sql: sqlite, postgres or mysql")
	fs.StringVar(&f.dsn, "dsn", "", "data source name for -format sql")
	fs.StringVar(&f.query, "query", "", "query for -format sql")
	fs.BoolVar(&f.noHeader, "noheader", false, "csv input has no header row")
	fs.StringVar(&f.configURL, "config", "", "options file URL (yaml or json)")
	fs.StringVar(&f.relation, "relation", "", "relation name")
	fs.StringVar(&f.attributes, "attributes", "", "comma-separated attribute names")
	fs.StringVar(&f.nominal, "nominal", "", "comma-separated attributes whose nominal alphabet is derived")
	fs.BoolVar(&f.sparse, "sparse", false, "write sparse rows")
	fs.StringVar(&f.lang, "lang", "", "message language (en, ja)")
	fs.BoolVar(&f.verbose, "v", false, "enable verbose logs")
}

func writeCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in inputFlags
	var out string
	var digest bool
	in.register(fs)
	fs.StringVar(&out, "o", "", "output URL (default: stdout)")
	fs.BoolVar(&digest, "digest", false, "print a 64-bit highwayhash of the document to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logf := newLogf(stderr, in.verbose)

	src, opts, err := in.load(ctx, logf)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := goarff.Write(&buf, src, opts); err != nil {
		return err
	}
	logf("rendered %d rows, %d bytes", src.Len(), buf.Len())

	if digest {
		h, err := highwayhash.New64(digestKey)
		if err != nil {
			return err
		}
		_, _ = h.Write(buf.Bytes())
		dest := out
		if dest == "" {
			dest = "-"
		}
		fmt.Fprintf(stderr, "%016x  %s\n", h.Sum64(), dest)
	}

	if out == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := afs.New().Upload(ctx, out, 0o644, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("upload %s: %w", out, err)
	}
	logf("wrote %s", out)
	return nil
}

func describeCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in inputFlags
	in.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	logf := newLogf(stderr, in.verbose)

	src, opts, err := in.load(ctx, logf)
	if err != nil {
		return err
	}
	attrs, err := goarff.Describe(src, opts)
	if err != nil {
		return err
	}
	for i, a := range attrs {
		fmt.Fprintf(stdout, "%d\t%s\t%s\n", i, a.Name, a.Declaration())
	}
	return nil
}

func newLogf(w io.Writer, verbose bool) func(string, ...any) {
	logger := log.New(w, "goarff: ", 0)
	return func(format string, a ...any) {
		if verbose {
			logger.Printf(format, a...)
		}
	}
}

// load reads the input and merges the options file with the flags; flags
// win.
func (f *inputFlags) load(ctx context.Context, logf func(string, ...any)) (goarff.Source, goarff.Options, error) {
	var opts goarff.Options
	if f.lang != "" {
		i18n.SetLanguage(f.lang)
	}
	if f.configURL != "" {
		var err error
		if opts, err = config.Load(ctx, f.configURL); err != nil {
			return nil, opts, err
		}
		logf("loaded options from %s", f.configURL)
	}
	if f.relation != "" {
		opts.Relation = f.relation
	}
	if f.attributes != "" {
		opts.Attributes = splitCSV(f.attributes)
	}
	if f.nominal != "" {
		if opts.Nominal == nil {
			opts.Nominal = map[string]goarff.Nominal{}
		}
		for _, name := range splitCSV(f.nominal) {
			opts.Nominal[name] = goarff.DeriveNominal()
		}
	}
	if f.sparse {
		opts.FileFormat = goarff.FormatSparse
	}

	format := f.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(f.in)), ".")
	}
	var (
		src goarff.Source
		err error
	)
	switch format {
	case "sql":
		src, err = f.querySQL(ctx, logf)
	case "csv", "json":
		if f.in == "" {
			return nil, opts, errors.New("-in is required")
		}
		var data []byte
		if data, err = afs.New().DownloadWithURL(ctx, f.in); err != nil {
			return nil, opts, fmt.Errorf("download %s: %w", f.in, err)
		}
		logf("read %d bytes from %s", len(data), f.in)
		if format == "csv" {
			src, err = source.ReadCSV(bytes.NewReader(data), !f.noHeader)
		} else {
			src, err = source.DecodeJSONTable(bytes.NewReader(data))
		}
	default:
		return nil, opts, fmt.Errorf("unknown input format %q (want csv, json or sql)", format)
	}
	if err != nil {
		return nil, opts, err
	}
	return src, opts, nil
}

// querySQL runs -query against -dsn and materializes the result.
func (f *inputFlags) querySQL(ctx context.Context, logf func(string, ...any)) (goarff.Source, error) {
	if f.dsn == "" || f.query == "" {
		return nil, errors.New("-dsn and -query are required for -format sql")
	}
	db, err := sql.Open(f.driver, f.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.driver, err)
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, f.query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	tbl, err := source.FromSQL(ctx, rows)
	if err != nil {
		return nil, err
	}
	logf("%s: %d rows, columns %v", f.driver, tbl.Len(), tbl.Header())
	return tbl, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
