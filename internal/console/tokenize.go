package console

import (
	"errors"
	"strings"
)

var (
	errNoClosingQuote = errors.New("no closing quotation")
	errNoEscapedChar  = errors.New("no escaped character")
)

// Token is one shell word. Text has quotes removed and escapes resolved; Raw
// is the word exactly as typed.
type Token struct {
	Text   string
	Raw    string
	Quoted bool
}

// tokenize splits line into shell words with POSIX quoting rules: single
// quotes are literal, double quotes honor \" and \\, and a backslash outside
// quotes escapes the next character. Characters in seps (besides whitespace)
// also separate words.
func tokenize(line, seps string) ([]Token, error) {
	var (
		tokens []Token
		text   strings.Builder
		start  = -1
		quoted bool
	)
	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, Token{Text: text.String(), Raw: line[start:end], Quoted: quoted})
		text.Reset()
		start = -1
		quoted = false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || strings.IndexByte(seps, c) >= 0:
			flush(i)
		case c == '\'':
			if start < 0 {
				start = i
			}
			quoted = true
			end := strings.IndexByte(line[i+1:], '\'')
			if end < 0 {
				return nil, errNoClosingQuote
			}
			text.WriteString(line[i+1 : i+1+end])
			i += end + 1
		case c == '"':
			if start < 0 {
				start = i
			}
			quoted = true
			j := i + 1
			for ; j < len(line) && line[j] != '"'; j++ {
				if line[j] == '\\' && j+1 < len(line) && (line[j+1] == '"' || line[j+1] == '\\') {
					j++
				}
				text.WriteByte(line[j])
			}
			if j >= len(line) {
				return nil, errNoClosingQuote
			}
			i = j
		case c == '\\':
			if start < 0 {
				start = i
			}
			if i+1 >= len(line) {
				return nil, errNoEscapedChar
			}
			i++
			text.WriteByte(line[i])
		default:
			if start < 0 {
				start = i
			}
			text.WriteByte(c)
		}
	}
	flush(len(line))
	return tokens, nil
}

// splitWords tokenizes a space-form argument string.
func splitWords(args string) ([]Token, error) { return tokenize(args, "") }

func joinText(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func joinRaw(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Raw
	}
	return strings.Join(parts, " ")
}
