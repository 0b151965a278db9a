package json

import (
	"io"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	j "github.com/goccy/go-json"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/internal/jsontok"
)

// Reader streams a JSON document as docbind tokens with one token of
// lookahead. Integers peek as Long and other numbers as Double. null is
// rejected everywhere except inside SkipDeep. Quoted numbers and booleans are
// accepted by the numeric and bool consumers.
type Reader struct {
	s *jsontok.Stream
}

var _ docbind.Reader = (*Reader)(nil)

// NewReader reads one JSON document from r.
func NewReader(r io.Reader, opt jsontok.Options) *Reader {
	return &Reader{s: jsontok.NewStream(jsontok.Enforce(jsontok.NewLexer(r), opt))}
}

// readErr classifies lexer failures: syntax and enforcement problems are
// malformed input, anything else comes from the underlying stream.
func readErr(err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return docbind.Malformed("json: unexpected end of input")
	}
	var se *j.SyntaxError
	var ie jsontok.IssueError
	if errors.As(err, &se) || errors.As(err, &ie) {
		return errors.Mark(errors.Wrap(err, "json"), docbind.ErrMalformedToken)
	}
	return docbind.BackendError(err, "json: read")
}

func (r *Reader) peek() (jsontok.Token, error) {
	t, err := r.s.Peek()
	if err != nil {
		return t, readErr(err)
	}
	return t, nil
}

func kindOf(t jsontok.Token) (docbind.TokenKind, error) {
	switch t.Kind {
	case jsontok.KindBeginObject:
		return docbind.TokenEnterObject, nil
	case jsontok.KindEndObject:
		return docbind.TokenExitObject, nil
	case jsontok.KindBeginArray:
		return docbind.TokenEnterList, nil
	case jsontok.KindEndArray:
		return docbind.TokenExitList, nil
	case jsontok.KindKey:
		return docbind.TokenKey, nil
	case jsontok.KindString:
		return docbind.TokenString, nil
	case jsontok.KindBool:
		return docbind.TokenBool, nil
	case jsontok.KindNumber:
		if t.IsInteger() {
			if _, err := strconv.ParseInt(t.Number, 10, 64); err == nil {
				return docbind.TokenLong, nil
			}
		}
		return docbind.TokenDouble, nil
	}
	return 0, docbind.Malformed("json: null is not a supported value")
}

func (r *Reader) Peek() (docbind.TokenKind, error) {
	t, err := r.peek()
	if err != nil {
		return 0, err
	}
	return kindOf(t)
}

func (r *Reader) SkipDeep() error {
	t, err := r.peek()
	if err != nil {
		return err
	}
	switch t.Kind {
	case jsontok.KindEndObject, jsontok.KindEndArray, jsontok.KindKey:
		got, _ := kindOf(t)
		return docbind.Unexpected("value", got)
	}
	if err := r.s.Skip(); err != nil {
		return readErr(err)
	}
	return nil
}

func (r *Reader) expect(want jsontok.Kind, name docbind.TokenKind) (jsontok.Token, error) {
	t, err := r.peek()
	if err != nil {
		return t, err
	}
	if t.Kind != want {
		got, kerr := kindOf(t)
		if kerr != nil {
			return t, kerr
		}
		return t, docbind.Unexpected(name.String(), got)
	}
	_, _ = r.s.Next()
	return t, nil
}

func (r *Reader) EnterObject() error {
	_, err := r.expect(jsontok.KindBeginObject, docbind.TokenEnterObject)
	return err
}

func (r *Reader) ExitObject() error {
	_, err := r.expect(jsontok.KindEndObject, docbind.TokenExitObject)
	return err
}

func (r *Reader) EnterList() error {
	_, err := r.expect(jsontok.KindBeginArray, docbind.TokenEnterList)
	return err
}

func (r *Reader) ExitList() error {
	_, err := r.expect(jsontok.KindEndArray, docbind.TokenExitList)
	return err
}

func (r *Reader) Key() (string, error) {
	t, err := r.expect(jsontok.KindKey, docbind.TokenKey)
	return t.String, err
}

// scalar consumes a string, number or bool token.
func (r *Reader) scalar(want string) (jsontok.Token, error) {
	t, err := r.peek()
	if err != nil {
		return t, err
	}
	got, err := kindOf(t)
	if err != nil {
		return t, err
	}
	if !got.IsScalar() {
		return t, docbind.Unexpected(want, got)
	}
	_, _ = r.s.Next()
	return t, nil
}

func (r *Reader) StringValue() (string, error) {
	t, err := r.scalar("string")
	if err != nil {
		return "", err
	}
	switch t.Kind {
	case jsontok.KindNumber:
		return t.Number, nil
	case jsontok.KindBool:
		return strconv.FormatBool(t.Bool), nil
	}
	return t.String, nil
}

// numberText returns the literal of a number or quoted number.
func numberText(t jsontok.Token) (string, error) {
	switch t.Kind {
	case jsontok.KindNumber:
		return t.Number, nil
	case jsontok.KindString:
		return t.String, nil
	}
	return "", docbind.Malformed("json: expected number, found %s", t.Kind)
}

func (r *Reader) LongValue() (int64, error) {
	t, err := r.scalar("number")
	if err != nil {
		return 0, err
	}
	text, err := numberText(t)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, docbind.Malformed("json: %q is not a long", text)
	}
	return int64(f), nil
}

func (r *Reader) IntValue() (int32, error) {
	n, err := r.LongValue()
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, docbind.Malformed("json: %d overflows int", n)
	}
	return int32(n), nil
}

func (r *Reader) DoubleValue() (float64, error) {
	t, err := r.scalar("number")
	if err != nil {
		return 0, err
	}
	text, err := numberText(t)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, docbind.Malformed("json: %q is not a number", text)
	}
	return f, nil
}

func (r *Reader) FloatValue() (float32, error) {
	f, err := r.DoubleValue()
	return float32(f), err
}

func (r *Reader) BoolValue() (bool, error) {
	t, err := r.scalar("bool")
	if err != nil {
		return false, err
	}
	switch {
	case t.Kind == jsontok.KindBool:
		return t.Bool, nil
	case t.Kind == jsontok.KindString && (t.String == "true" || t.String == "false"):
		return t.String == "true", nil
	}
	return false, docbind.Malformed("json: expected bool, found %s", t.Kind)
}

// AtEOF reports whether the document has no further tokens.
func (r *Reader) AtEOF() bool { return r.s.AtEOF() }
