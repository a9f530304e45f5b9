package front

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"
)

// LexicalError reports a byte the tokenizer has no rule for.
type LexicalError struct {
	Pos  int
	Char byte
}

func (e LexicalError) Error() string {
	return fmt.Sprintf("unexpected character at pos %d: %q", e.Pos, e.Char)
}

// Tokenize scans the whole source text into a token sequence terminated by
// an EOF sentinel. Rules are tried in a fixed order at each position:
// comment, whitespace, number, string, identifier, operator. Comments and
// whitespace are recognized but never emitted. The first byte no rule
// matches aborts the scan.
func Tokenize(ctx context.Context, b []byte) ([]Token, error) {
	tr := tlog.SpanFromContext(ctx)

	var toks []Token

	for i := 0; i < len(b); {
		c := b[i]

		switch {
		case c == '/' && i+1 < len(b) && b[i+1] == '/':
			i = skipLine(b, i)

		case isSpace(c):
			i = skipSpaces(b, i)

		case isDigit(c):
			e := skipNumber(b, i)
			toks = append(toks, Token{Kind: Number, Lexeme: string(b[i:e])})
			i = e

		case c == '"':
			e, ok := skipString(b, i)
			if !ok {
				return nil, LexicalError{Pos: i, Char: c}
			}

			toks = append(toks, Token{Kind: Str, Lexeme: string(b[i:e])})
			i = e

		case isIdentStart(c):
			e := skipIdent(b, i)
			lex := string(b[i:e])

			k := Ident
			if kw, ok := keywords[lex]; ok {
				k = kw
			}

			toks = append(toks, Token{Kind: k, Lexeme: lex})
			i = e

		default:
			e := skipOp(b, i)
			if e == i {
				return nil, LexicalError{Pos: i, Char: c}
			}

			toks = append(toks, Token{Kind: Op, Lexeme: string(b[i:e])})
			i = e
		}
	}

	toks = append(toks, Token{Kind: EOF})

	if tr.If("tokens") {
		tr.Printw("tokenized", "text_len", len(b), "tokens", len(toks))
	}

	return toks, nil
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}

	return i
}

// skipNumber consumes digits and at most one decimal point. The point is
// only taken when a digit follows, so "3." stops after the "3".
func skipNumber(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}

	if i+1 < len(b) && b[i] == '.' && isDigit(b[i+1]) {
		i++

		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}

	return i
}

// skipString consumes a double-quoted literal, backslash escapes
// included. Raw newlines are ordinary string bytes; only end of input
// leaves the literal unterminated.
func skipString(b []byte, i int) (int, bool) {
	i++ // opening quote

	for i < len(b) {
		switch b[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, true
		default:
			i++
		}
	}

	return i, false
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isIdentStart(b[i]) || isDigit(b[i])) {
		i++
	}

	return i
}

// skipOp matches the longest operator or punctuation at i:
// two-byte ==, !=, <=, >=, &&, || first, then the single-byte set.
func skipOp(b []byte, i int) int {
	if i+1 < len(b) {
		switch string(b[i : i+2]) {
		case "==", "!=", "<=", ">=", "&&", "||":
			return i + 2
		}
	}

	switch b[i] {
	case '+', '-', '*', '/', '%', '<', '>', '=', '!', ';', '(', ')', ',', '{', '}':
		return i + 1
	}

	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
