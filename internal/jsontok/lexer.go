// Package jsontok turns a JSON byte stream into a flat token stream with
// object keys told apart from string values, one token of lookahead and
// optional depth and duplicate-key enforcement. It is built on goccy/go-json's
// streaming decoder.
package jsontok

import (
	"bytes"
	"io"
	"strings"

	j "github.com/goccy/go-json"
)

// Kind represents token kinds of the JSON stream.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{"{", "}", "[", "]", "key", "string", "number", "bool", "null"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Token is one JSON token. String holds keys and string values, Number the
// literal text of numbers.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// IsInteger reports whether a number token is written without fraction or
// exponent.
func (t Token) IsInteger() bool {
	return t.Kind == KindNumber && !strings.ContainsAny(t.Number, ".eE")
}

// Source yields tokens until io.EOF.
type Source interface {
	Next() (Token, error)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type lexer struct {
	dec   *j.Decoder
	stack []frame
}

// NewLexer reads JSON from r.
func NewLexer(r io.Reader) Source {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &lexer{dec: dec}
}

// NewBytes reads JSON from b.
func NewBytes(b []byte) Source { return NewLexer(bytes.NewReader(b)) }

// valueDone flips the enclosing object back to expecting a key.
func (s *lexer) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *lexer) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *lexer) Next() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v)}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull}, nil
}
