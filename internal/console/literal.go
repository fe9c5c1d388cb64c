package console

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a parsed literal.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindNone
	KindList
	KindMap
)

// Pair is one mapping entry. Mappings keep their source order.
type Pair struct {
	Key   Value
	Value Value
}

// Value is a tagged literal: a string, number, boolean, None, list or
// mapping written with Python-style literal syntax.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []Value
	Pairs []Pair
}

// Native converts v to the plain Go value stored on records: string, int64,
// float64, bool, nil, []any or map[string]any.
func (v Value) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Pairs))
		for _, p := range v.Pairs {
			out[p.Key.keyString()] = p.Value.Native()
		}
		return out
	}
	return nil
}

// keyString renders a mapping key as an attribute name.
func (v Value) keyString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindNone:
		return "None"
	}
	return fmt.Sprint(v.Native())
}

// Coerce interprets text as a literal, falling back to the text itself as a
// string when it is not one. It never fails.
func Coerce(text string) Value {
	if v, err := ParseLiteral(text); err == nil {
		return v
	}
	return Value{Kind: KindString, Str: text}
}

// ParseLiteral parses a single literal occupying all of text (surrounding
// whitespace aside).
func ParseLiteral(text string) (Value, error) {
	p := &literalParser{src: text}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Value{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("invalid literal at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (Value, error) {
	switch c := p.peek(); {
	case c == 0:
		return Value{}, p.errorf("unexpected end of input")
	case c == '\'' || c == '"':
		s, err := p.str()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == '[':
		items, err := p.sequence('[', ']')
		return Value{Kind: KindList, List: items}, err
	case c == '(':
		items, err := p.sequence('(', ')')
		return Value{Kind: KindList, List: items}, err
	case c == '{':
		return p.mapping()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.name()
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch e := p.src[p.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) sequence(open, closing byte) ([]Value, error) {
	p.pos++ // open
	items := []Value{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return items, nil
		}
		item, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
		default:
			return nil, p.errorf("expected ',' or %q", closing)
		}
	}
}

func (p *literalParser) mapping() (Value, error) {
	p.pos++ // {
	out := Value{Kind: KindMap, Pairs: []Pair{}}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}
		key, err := p.value()
		if err != nil {
			return Value{}, err
		}
		if key.Kind == KindList || key.Kind == KindMap {
			return Value{}, p.errorf("unhashable mapping key")
		}
		p.skipSpace()
		if p.peek() != ':' {
			return Value{}, p.errorf("expected ':'")
		}
		p.pos++
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return Value{}, err
		}
		out.Pairs = setPair(out.Pairs, key, val)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return Value{}, p.errorf("expected ',' or '}'")
		}
	}
}

// setPair keeps the first position of a repeated key and its last value.
func setPair(pairs []Pair, key, val Value) []Pair {
	for i := range pairs {
		if pairs[i].Key.Kind == key.Kind && pairs[i].Key.keyString() == key.keyString() {
			pairs[i].Value = val
			return pairs
		}
	}
	return append(pairs, Pair{Key: key, Value: val})
}

func (p *literalParser) number() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'e' || c == 'E' ||
			c == 'x' || c == 'X' || c == 'o' || c == 'O' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			((c == '-' || c == '+') && (p.pos == start || p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	lit := p.src[start:p.pos]
	if lit == "" || lit == "-" || lit == "+" {
		return Value{}, p.errorf("invalid number %q", lit)
	}
	if !hasLeadingZero(lit) {
		if n, err := strconv.ParseInt(lit, 0, 64); err == nil {
			return Value{Kind: KindInt, Int: n}, nil
		}
	}
	if isDecimalFloat(lit) {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(lit, "_", ""), 64); err == nil {
			return Value{Kind: KindFloat, Float: f}, nil
		}
	}
	return Value{}, p.errorf("invalid number %q", lit)
}

// hasLeadingZero reports decimal integers such as 017, which are not
// literals (base prefixes and plain zeros are).
func hasLeadingZero(lit string) bool {
	digits := strings.TrimLeft(lit, "+-")
	if len(digits) < 2 || digits[0] != '0' {
		return false
	}
	switch digits[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	return strings.Trim(digits, "0_") != ""
}

// isDecimalFloat rejects hex floats and other forms Python literals do not allow.
func isDecimalFloat(lit string) bool {
	lower := strings.ToLower(strings.TrimLeft(lit, "+-"))
	if strings.HasPrefix(lower, "0x") || strings.Contains(lower, "p") {
		return false
	}
	return strings.ContainsAny(lower, ".e")
}

func (p *literalParser) name() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	switch word := p.src[start:p.pos]; word {
	case "True":
		return Value{Kind: KindBool, Bool: true}, nil
	case "False":
		return Value{Kind: KindBool, Bool: false}, nil
	case "None":
		return Value{Kind: KindNone}, nil
	case "":
		return Value{}, p.errorf("unexpected %q", p.src[start:start+1])
	default:
		return Value{}, p.errorf("name %q is not a literal", word)
	}
}
