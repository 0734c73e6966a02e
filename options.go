package goarff

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goarff/schema"
)

// FileFormat selects the @data row encoding.
type FileFormat string

const (
	FormatAuto   FileFormat = ""       // Sparse for Sparser sources, dense otherwise.
	FormatDense  FileFormat = "dense"  // a,b,c
	FormatSparse FileFormat = "sparse" // {0 a, 2 c}
)

// Style controls header layout.
type Style string

const (
	StyleDefault Style = ""
	// StyleCompact drops the blank lines between header sections.
	StyleCompact Style = "compact"
)

// NonFinitePolicy dictates how NaN and ±Inf numeric cells are written.
type NonFinitePolicy string

const (
	NonFiniteReject  NonFinitePolicy = ""        // ValueError (default).
	NonFiniteMissing NonFinitePolicy = "missing" // Written as "?".
)

// DefaultRelation is written when Options.Relation is empty.
const DefaultRelation = "undefined"

// Options bundles the write configuration. The zero value is usable.
type Options struct {
	Relation   string   `yaml:"relation" json:"relation"`
	Attributes []string `yaml:"attributes" json:"attributes"`
	// Nominal declares columns as nominal, keyed by attribute name.
	Nominal map[string]Nominal `yaml:"nominal" json:"nominal"`
	// Missing lists sentinel values written as "?". Numbers compare
	// numerically (NaN matches NaN); strings compare lexically and, when
	// they parse as a float, numerically too.
	Missing []any `yaml:"missing" json:"missing"`
	// DateFormat is the SimpleDateFormat pattern for date attributes;
	// DateFormats overrides it per attribute.
	DateFormat  string            `yaml:"dateformat" json:"dateformat"`
	DateFormats map[string]string `yaml:"dateformats" json:"dateformats"`

	Join           string `yaml:"join" json:"join"`
	IndexBase      int    `yaml:"index_base" json:"index_base"`
	IndexOpen      string `yaml:"index_open" json:"index_open"`
	IndexClose     string `yaml:"index_close" json:"index_close"`
	MultiIndexJoin string `yaml:"multiindex_join" json:"multiindex_join"`

	FileFormat FileFormat `yaml:"fileformat" json:"fileformat"`
	Weights    []float64  `yaml:"weights" json:"weights"`

	Comments   []string        `yaml:"comments" json:"comments"`
	Style      Style           `yaml:"style" json:"style"`
	RealFormat string          `yaml:"realformat" json:"realformat"`
	NonFinite  NonFinitePolicy `yaml:"nonfinite" json:"nonfinite"`
}

// Naming returns the flattening configuration carried by o.
func (o Options) Naming() schema.Naming {
	return schema.Naming{
		Join:           o.Join,
		IndexOpen:      o.IndexOpen,
		IndexClose:     o.IndexClose,
		IndexBase:      o.IndexBase,
		MultiIndexJoin: o.MultiIndexJoin,
	}
}

// Nominal declares a nominal attribute: either Derive (collect the distinct
// values of the column) or an explicit ordered Values list.
type Nominal struct {
	Derive bool
	Values []string
}

// DeriveNominal asks the writer to collect the alphabet from the data.
func DeriveNominal() Nominal { return Nominal{Derive: true} }

// NominalValues fixes the alphabet, in the given order.
func NominalValues(vs ...string) Nominal { return Nominal{Values: vs} }

func (n Nominal) enabled() bool { return n.Derive || n.Values != nil }

// UnmarshalYAML accepts a boolean or a sequence of scalars.
func (n *Nominal) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("nominal: line %d: expected true or a list: %w", node.Line, err)
		}
		*n = Nominal{Derive: b}
		return nil
	case yaml.SequenceNode:
		vs := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("nominal: line %d: values must be scalars", c.Line)
			}
			vs = append(vs, c.Value)
		}
		*n = Nominal{Values: vs}
		return nil
	}
	return fmt.Errorf("nominal: line %d: expected true or a list", node.Line)
}

// UnmarshalJSON accepts a boolean or an array of strings or numbers.
func (n *Nominal) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case bool:
		*n = Nominal{Derive: t}
		return nil
	case []any:
		vs := make([]string, 0, len(t))
		for _, v := range t {
			switch s := v.(type) {
			case string:
				vs = append(vs, s)
			case float64, json.Number:
				vs = append(vs, fmt.Sprint(s))
			default:
				return fmt.Errorf("nominal: unsupported value %v", v)
			}
		}
		*n = Nominal{Values: vs}
		return nil
	}
	return fmt.Errorf("nominal: expected true or a list, got %s", string(data))
}
