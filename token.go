package docbind

import (
	"strconv"
)

// TokenKind enumerates the structural and scalar events of the document stream.
type TokenKind int

const (
	TokenEnterObject TokenKind = iota
	TokenExitObject
	TokenEnterList
	TokenExitList
	TokenKey
	TokenString
	TokenInt
	TokenLong
	TokenFloat
	TokenDouble
	TokenBool
	// TokenComment only appears in recorded streams (see TokenRecorder). Readers
	// never report it from Peek.
	TokenComment
)

var tokenKindNames = [...]string{
	TokenEnterObject: "EnterObject",
	TokenExitObject:  "ExitObject",
	TokenEnterList:   "EnterList",
	TokenExitList:    "ExitList",
	TokenKey:         "Key",
	TokenString:      "String",
	TokenInt:         "Int",
	TokenLong:        "Long",
	TokenFloat:       "Float",
	TokenDouble:      "Double",
	TokenBool:        "Bool",
	TokenComment:     "Comment",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// IsScalar reports whether k carries a scalar value.
func (k TokenKind) IsScalar() bool {
	switch k {
	case TokenString, TokenInt, TokenLong, TokenFloat, TokenDouble, TokenBool:
		return true
	}
	return false
}

// IsNumber reports whether k is one of the numeric scalar kinds.
func (k TokenKind) IsNumber() bool {
	switch k {
	case TokenInt, TokenLong, TokenFloat, TokenDouble:
		return true
	}
	return false
}

// Token is one unit of a recorded document stream. Only the payload field
// matching Kind is meaningful: Text for Key/String/Comment, Int for Int/Long,
// Float for Float/Double and Bool for Bool.
type Token struct {
	Kind  TokenKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// Convenience constructors, mostly useful when writing expected streams in tests.

func EnterObject() Token          { return Token{Kind: TokenEnterObject} }
func ExitObject() Token           { return Token{Kind: TokenExitObject} }
func EnterList() Token            { return Token{Kind: TokenEnterList} }
func ExitList() Token             { return Token{Kind: TokenExitList} }
func KeyToken(k string) Token     { return Token{Kind: TokenKey, Text: k} }
func StringToken(s string) Token  { return Token{Kind: TokenString, Text: s} }
func IntToken(v int32) Token      { return Token{Kind: TokenInt, Int: int64(v)} }
func LongToken(v int64) Token     { return Token{Kind: TokenLong, Int: v} }
func FloatToken(v float32) Token  { return Token{Kind: TokenFloat, Float: float64(v)} }
func DoubleToken(v float64) Token { return Token{Kind: TokenDouble, Float: v} }
func BoolToken(v bool) Token      { return Token{Kind: TokenBool, Bool: v} }
func CommentToken(c string) Token { return Token{Kind: TokenComment, Text: c} }

func (t Token) String() string {
	switch t.Kind {
	case TokenKey, TokenString, TokenComment:
		return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")"
	case TokenInt, TokenLong:
		return t.Kind.String() + "(" + strconv.FormatInt(t.Int, 10) + ")"
	case TokenFloat:
		return t.Kind.String() + "(" + strconv.FormatFloat(t.Float, 'g', -1, 32) + ")"
	case TokenDouble:
		return t.Kind.String() + "(" + strconv.FormatFloat(t.Float, 'g', -1, 64) + ")"
	case TokenBool:
		return t.Kind.String() + "(" + strconv.FormatBool(t.Bool) + ")"
	default:
		return t.Kind.String()
	}
}

// Tokens is a complete recorded document.
type Tokens []Token

// WithoutComments returns a copy of ts with comment entries removed.
func (ts Tokens) WithoutComments() Tokens {
	out := make(Tokens, 0, len(ts))
	for _, t := range ts {
		if t.Kind != TokenComment {
			out = append(out, t)
		}
	}
	return out
}
