package front

import "fmt"

// Kind classifies a lexical token. Tokens carry no semantic type
// information, only the lexical class and the matched text.
type Kind int

const (
	EOF Kind = iota // sentinel: end of input

	Number // integer or float literal; told apart by the parser
	Str    // string literal, quotes and escapes still in the lexeme
	Ident  // identifier
	Op     // operator or punctuation

	// Keywords, promoted from Ident by exact lexeme match.
	KwInt
	KwFloat
	KwString
	KwBool
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwFor
	KwReturn
	KwFunc
	KwTrue
	KwFalse
	KwInput
)

// keywords maps reserved lexemes to their promoted token kind.
var keywords = map[string]Kind{
	"int":    KwInt,
	"float":  KwFloat,
	"string": KwString,
	"bool":   KwBool,
	"void":   KwVoid,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"for":    KwFor,
	"return": KwReturn,
	"func":   KwFunc,
	"true":   KwTrue,
	"false":  KwFalse,
	"input":  KwInput,
}

var kindNames = [...]string{
	EOF:      "EOF",
	Number:   "Number",
	Str:      "String",
	Ident:    "Ident",
	Op:       "Op",
	KwInt:    "int",
	KwFloat:  "float",
	KwString: "string",
	KwBool:   "bool",
	KwVoid:   "void",
	KwIf:     "if",
	KwElse:   "else",
	KwWhile:  "while",
	KwFor:    "for",
	KwReturn: "return",
	KwFunc:   "func",
	KwTrue:   "true",
	KwFalse:  "false",
	KwInput:  "input",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit: its kind and the exact source text.
type Token struct {
	Kind   Kind
	Lexeme string
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}

	return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
}

// typeKind reports whether k names one of the primitive types (void included).
func typeKind(k Kind) bool {
	switch k {
	case KwInt, KwFloat, KwString, KwBool, KwVoid:
		return true
	}

	return false
}
