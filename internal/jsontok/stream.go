package jsontok

import (
	"io"
)

// Stream adds one token of lookahead to a Source.
type Stream struct {
	src    Source
	head   Token
	err    error
	peeked bool
}

// NewStream wraps src.
func NewStream(src Source) *Stream { return &Stream{src: src} }

// Peek returns the next token without consuming it. Repeated calls return the
// same token or error.
func (s *Stream) Peek() (Token, error) {
	if !s.peeked {
		s.head, s.err = s.src.Next()
		s.peeked = true
	}
	return s.head, s.err
}

// Next consumes the next token.
func (s *Stream) Next() (Token, error) {
	t, err := s.Peek()
	if err == nil {
		s.peeked = false
	}
	return t, err
}

// Skip consumes one complete value, nested containers included.
func (s *Stream) Skip() error {
	depth := 0
	for {
		t, err := s.Next()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch t.Kind {
		case KindBeginObject, KindBeginArray:
			depth++
		case KindEndObject, KindEndArray:
			depth--
		case KindKey:
			continue
		}
		if depth <= 0 {
			return nil
		}
	}
}

// AtEOF reports whether the input is exhausted.
func (s *Stream) AtEOF() bool {
	_, err := s.Peek()
	return err == io.EOF
}
