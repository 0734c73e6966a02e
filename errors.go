package goarff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goarff/i18n"
	"github.com/reoring/goarff/schema"
)

// Class groups issue codes by the stage that detects them.
type Class int

const (
	SchemaError        Class = iota + 1 // Flattening or naming failed.
	ConfigurationError                  // Options are inconsistent with the data.
	ValueError                          // A cell cannot be written.
	IOError                             // The sink failed.
)

func (c Class) String() string {
	switch c {
	case SchemaError:
		return "schema error"
	case ConfigurationError:
		return "configuration error"
	case ValueError:
		return "value error"
	case IOError:
		return "io error"
	}
	return "unknown error"
}

// Sentinels matched by errors.Is against Issues of the corresponding Class.
var (
	ErrSchema        = errors.New("goarff: schema error")
	ErrConfiguration = errors.New("goarff: configuration error")
	ErrValue         = errors.New("goarff: value error")
	ErrIO            = errors.New("goarff: io error")
)

func (c Class) sentinel() error {
	switch c {
	case SchemaError:
		return ErrSchema
	case ConfigurationError:
		return ErrConfiguration
	case ValueError:
		return ErrValue
	case IOError:
		return ErrIO
	}
	return nil
}

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema
	CodeAttributeCount = schema.CodeAttributeCount
	CodeDuplicateName  = schema.CodeDuplicateName
	CodeInvalidName    = "invalid_name"
	CodeRelational     = schema.CodeRelational
	CodeBadDimension   = schema.CodeBadDimension
	CodeBadSchema      = schema.CodeBadSchema
	// Configuration
	CodeDateFormat        = "date_format"
	CodeUnknownNominalKey = "unknown_nominal_key"
	CodeUnknownDateKey    = "unknown_date_key"
	CodeWeightsLength     = "weights_length"
	CodeFileFormat        = "file_format"
	CodeInvalidOption     = "invalid_option"
	// Value
	CodeNominalValue = "nominal_value"
	CodeCoerce       = "coerce"
	CodeNonFinite    = "non_finite"
	CodeSourceIndex  = "source_index"
	// IO
	CodeWriteFailed = "write_failed"
)

// Issue is a single write failure.
type Issue struct {
	Class     Class
	Code      string // One of the codes listed above.
	Attribute string // Attribute name, empty when not attribute-bound.
	Row       int    // Zero-based data row, -1 when not row-bound.
	Message   string
	// Params carries the values substituted into Message (e.g. {"got": "3"}).
	Params map[string]string
	Cause  error // Optional: underlying error.
}

func (it Issue) String() string {
	b := &strings.Builder{}
	b.WriteString(it.Code)
	if it.Attribute != "" {
		fmt.Fprintf(b, " at %s", it.Attribute)
	}
	if it.Row >= 0 {
		fmt.Fprintf(b, " (row %d)", it.Row)
	}
	if it.Message != "" && it.Message != it.Code {
		b.WriteString(": ")
		b.WriteString(it.Message)
	}
	if it.Cause != nil {
		fmt.Fprintf(b, ": %v", it.Cause)
	}
	return b.String()
}

// Issues is a collection of write failures that implements error. Writes
// abort on the first failure, so in practice it holds a single Issue.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is matches the Class sentinels (ErrSchema, ErrValue, ...).
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if s := it.Class.sentinel(); s != nil && s == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the underlying causes to errors.Is and errors.As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// issueAt builds a single-issue error with a translated message.
func issueAt(class Class, code, attr string, row int, params map[string]string, cause error) Issues {
	return Issues{{
		Class:     class,
		Code:      code,
		Attribute: attr,
		Row:       row,
		Message:   i18n.T(code, params),
		Params:    params,
		Cause:     cause,
	}}
}

func gotWant(got, want any) map[string]string {
	return map[string]string{"got": fmt.Sprint(got), "want": fmt.Sprint(want)}
}

// fromSchemaError maps a flattening failure onto a SchemaError issue.
func fromSchemaError(err error) error {
	var se *schema.Error
	if errors.As(err, &se) {
		out := issueAt(SchemaError, se.Code, se.Name, -1, nil, nil)
		out[0].Message = se.Msg
		return out
	}
	return issueAt(SchemaError, CodeBadSchema, "", -1, nil, err)
}
