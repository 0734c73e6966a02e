package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDateFormat is the ISO-8601 combined date and time pattern used when
// no pattern is configured.
const DefaultDateFormat = "yyyy-MM-dd'T'HH:mm:ss"

var (
	// ErrUnknownLetter reports a pattern letter that is not part of the
	// SimpleDateFormat language.
	ErrUnknownLetter = errors.New("codec: unknown date pattern letter")
	// ErrUnsupported reports a SimpleDateFormat letter (or repeat count) that
	// this formatter does not implement.
	ErrUnsupported = errors.New("codec: unsupported date pattern")
	// ErrUnterminatedQuote reports a quoted literal without its closing quote.
	ErrUnterminatedQuote = errors.New("codec: missing closing quote in date pattern")
	// ErrNoFields reports a pattern made only of literal text.
	ErrNoFields = errors.New("codec: date pattern has no date fields")
)

const (
	javaLetters        = "GyYMLdhHmsSEDFwWakKuzZX"
	unsupportedLetters = "YLFwWuX"
)

// Token is either literal text (Letter == 0) or a pattern letter repeated
// Count times.
type Token struct {
	Literal string
	Letter  byte
	Count   int
}

func (t Token) String() string {
	if t.Letter == 0 {
		return strconv.Quote(t.Literal)
	}
	return strings.Repeat(string(t.Letter), t.Count)
}

// SimpleDate formats time values with a Java SimpleDateFormat pattern, the
// notation ARFF uses in date attribute declarations.
type SimpleDate struct {
	pattern string
	tokens  []Token
}

// ParseSimpleDate tokenizes pattern and checks every letter is supported.
func ParseSimpleDate(pattern string) (*SimpleDate, error) {
	toks, err := Tokenize(pattern)
	if err != nil {
		return nil, err
	}
	fields := 0
	for _, t := range toks {
		if t.Letter == 0 {
			continue
		}
		fields++
		if strings.IndexByte(unsupportedLetters, t.Letter) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnsupported, t.String())
		}
		if t.Letter == 'z' && t.Count > 3 {
			return nil, fmt.Errorf("%w: %q (use zzz)", ErrUnsupported, t.String())
		}
	}
	if fields == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoFields, pattern)
	}
	return &SimpleDate{pattern: pattern, tokens: toks}, nil
}

// MustSimpleDate is like ParseSimpleDate but panics on error.
func MustSimpleDate(pattern string) *SimpleDate {
	d, err := ParseSimpleDate(pattern)
	if err != nil {
		panic(err)
	}
	return d
}

// Pattern returns the source pattern.
func (d *SimpleDate) Pattern() string { return d.pattern }

// Tokens returns a copy of the parsed tokens.
func (d *SimpleDate) Tokens() []Token {
	out := make([]Token, len(d.tokens))
	copy(out, d.tokens)
	return out
}

// Format renders t in its own location.
func (d *SimpleDate) Format(t time.Time) string {
	return string(d.AppendFormat(make([]byte, 0, len(d.pattern)+8), t))
}

// AppendFormat appends the rendering of t to b.
func (d *SimpleDate) AppendFormat(b []byte, t time.Time) []byte {
	for _, tok := range d.tokens {
		if tok.Letter == 0 {
			b = append(b, tok.Literal...)
			continue
		}
		b = appendField(b, tok, t)
	}
	return b
}

// Tokenize splits a SimpleDateFormat pattern into literal runs and letter
// runs. Text between single quotes is literal; a doubled quote is a literal
// quote both inside and outside quoted text.
func Tokenize(pattern string) ([]Token, error) {
	var (
		out     []Token
		lit     strings.Builder
		quoted  bool
		letter  byte
		count   int
		flushLt = func() {
			if lit.Len() > 0 {
				out = append(out, Token{Literal: lit.String()})
				lit.Reset()
			}
		}
		flushFd = func() {
			if letter != 0 {
				out = append(out, Token{Letter: letter, Count: count})
				letter, count = 0, 0
			}
		}
	)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				flushFd()
				lit.WriteByte('\'')
				i++
				continue
			}
			flushFd()
			quoted = !quoted
			continue
		}
		if quoted || !isASCIILetter(c) {
			flushFd()
			lit.WriteByte(c)
			continue
		}
		if strings.IndexByte(javaLetters, c) < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLetter, string(c))
		}
		flushLt()
		if letter != 0 && letter != c {
			flushFd()
		}
		letter = c
		count++
	}
	if quoted {
		return nil, fmt.Errorf("%w: %q", ErrUnterminatedQuote, pattern)
	}
	flushFd()
	flushLt()
	return out, nil
}

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func appendField(b []byte, tok Token, t time.Time) []byte {
	n := tok.Count
	switch tok.Letter {
	case 'G':
		if t.Year() <= 0 {
			return append(b, "BC"...)
		}
		return append(b, "AD"...)
	case 'y':
		y := t.Year()
		if n == 2 {
			return appendPadded(b, ((y%100)+100)%100, 2)
		}
		return appendPadded(b, y, n)
	case 'M':
		switch {
		case n >= 4:
			return append(b, t.Month().String()...)
		case n == 3:
			return append(b, t.Month().String()[:3]...)
		}
		return appendPadded(b, int(t.Month()), n)
	case 'd':
		return appendPadded(b, t.Day(), n)
	case 'D':
		return appendPadded(b, t.YearDay(), n)
	case 'H':
		return appendPadded(b, t.Hour(), n)
	case 'k':
		h := t.Hour()
		if h == 0 {
			h = 24
		}
		return appendPadded(b, h, n)
	case 'K':
		return appendPadded(b, t.Hour()%12, n)
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return appendPadded(b, h, n)
	case 'm':
		return appendPadded(b, t.Minute(), n)
	case 's':
		return appendPadded(b, t.Second(), n)
	case 'S':
		return appendPadded(b, t.Nanosecond()/int(time.Millisecond), n)
	case 'E':
		if n >= 4 {
			return append(b, t.Weekday().String()...)
		}
		return append(b, t.Weekday().String()[:3]...)
	case 'a':
		if t.Hour() < 12 {
			return append(b, "AM"...)
		}
		return append(b, "PM"...)
	case 'z':
		name, _ := t.Zone()
		return append(b, name...)
	case 'Z':
		return t.AppendFormat(b, "-0700")
	}
	// Tokens are validated by ParseSimpleDate; anything else is a bug.
	panic(fmt.Sprintf("codec: unhandled date token %q", tok.String()))
}

func appendPadded(b []byte, v, width int) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	s := strconv.Itoa(v)
	for i := len(s); i < width; i++ {
		b = append(b, '0')
	}
	return append(b, s...)
}
