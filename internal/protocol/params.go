package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/geom"
)

var (
	ErrUnknownKeyword = errors.New("unknown keyword")
	ErrBlankLine      = errors.New("blank line")
	ErrUnterminated   = errors.New("unterminated quote")
	ErrMissingValue   = errors.New("missing value")
)

// ParseError describes a line that could not be decoded. Field and Value
// are set when a single field was malformed.
type ParseError struct {
	Line  string
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %q: field %s=%q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Params is the key=value bag of one protocol line. A key may repeat; its
// values keep their order of appearance. A bare token is a key with an
// empty value.
type Params struct {
	values map[string][]string
}

// ParseParams splits s on whitespace into key=value tokens. Double quotes
// group a value containing spaces and are removed.
func ParseParams(s string) (Params, error) {
	p := Params{values: make(map[string][]string)}
	var (
		tok     strings.Builder
		quoted  bool
		pending bool
	)
	flush := func() {
		if !pending {
			return
		}
		key, value, _ := strings.Cut(tok.String(), "=")
		p.values[key] = append(p.values[key], value)
		tok.Reset()
		pending = false
	}
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			tok.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return Params{}, ErrUnterminated
	}
	flush()
	return p, nil
}

func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// All returns every value of key in order.
func (p Params) All(key string) []string {
	return p.values[key]
}

func (p Params) first(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func fieldErr(key, value string, err error) error {
	return &ParseError{Field: key, Value: value, Err: err}
}

func (p Params) String(key, def string) string {
	if v, ok := p.first(key); ok {
		return v
	}
	return def
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	f, err := parseFloat(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return f, nil
}

func (p Params) Int(key string, def int) (int, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return n, nil
}

// Bool accepts 0, 1 and bare presence.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	b, err := parseBool(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return b, nil
}

func (p Params) Point(key string, def geom.Point) (geom.Point, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	pt, err := parsePoint(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return pt, nil
}

// Points parses every value of key as a point.
func (p Params) Points(key string) ([]geom.Point, error) {
	vs := p.All(key)
	out := make([]geom.Point, 0, len(vs))
	for _, v := range vs {
		pt, err := parsePoint(v)
		if err != nil {
			return nil, fieldErr(key, v, err)
		}
		out = append(out, pt)
	}
	return out, nil
}

// Dims parses a tuple of two non-negative integers.
func (p Params) Dims(key string, defA, defB int) (int, int, error) {
	v, ok := p.first(key)
	if !ok {
		return defA, defB, nil
	}
	parts, err := tuple(v, 2, 2)
	if err != nil {
		return defA, defB, fieldErr(key, v, err)
	}
	var out [2]int
	for i, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return defA, defB, fieldErr(key, v, err)
		}
		if n < 0 {
			return defA, defB, fieldErr(key, v, errors.New("negative dimension"))
		}
		out[i] = n
	}
	return out[0], out[1], nil
}

// Color accepts (r,g,b), (r,g,b,a) and #rrggbb.
func (p Params) Color(key string, def figure.Color) (figure.Color, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	c, err := parseColor(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return c, nil
}

func (p Params) Alignment(key string, def geom.Alignment) (geom.Alignment, error) {
	v, ok := p.first(key)
	if !ok {
		return def, nil
	}
	a, err := geom.ParseAlignment(v)
	if err != nil {
		return def, fieldErr(key, v, err)
	}
	return a, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, ErrMissingValue
	}
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1", "":
		return true, nil
	}
	return false, fmt.Errorf("want 0 or 1")
}

// tuple strips the parentheses of "(a,b,...)" and splits its elements.
func tuple(s string, minLen, maxLen int) ([]string, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("want a parenthesised tuple")
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) < minLen || len(parts) > maxLen {
		return nil, fmt.Errorf("want %d..%d elements, got %d", minLen, maxLen, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parsePoint(s string) (geom.Point, error) {
	parts, err := tuple(s, 2, 2)
	if err != nil {
		return geom.Point{}, err
	}
	x, err := parseFloat(parts[0])
	if err != nil {
		return geom.Point{}, err
	}
	y, err := parseFloat(parts[1])
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

func parseColor(s string) (figure.Color, error) {
	if strings.HasPrefix(s, "#") {
		return figure.Hex(s)
	}
	parts, err := tuple(s, 3, 4)
	if err != nil {
		return figure.Color{}, err
	}
	ch := [4]uint8{0, 0, 0, 255}
	for i, v := range parts {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return figure.Color{}, err
		}
		ch[i] = uint8(n)
	}
	return figure.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
