package docbind

import (
	"math"
	"strconv"
)

// TokenRecorder is a Writer that records the stream in memory. It is the
// backend behind Handler.Encode.
type TokenRecorder struct {
	toks Tokens
}

var _ Writer = (*TokenRecorder)(nil)

// Tokens returns the recorded stream.
func (b *TokenRecorder) Tokens() Tokens { return b.toks }

// Reset drops the recording.
func (b *TokenRecorder) Reset() { b.toks = b.toks[:0] }

func (b *TokenRecorder) add(t Token) error {
	b.toks = append(b.toks, t)
	return nil
}

func (b *TokenRecorder) Key(name string) error     { return b.add(KeyToken(name)) }
func (b *TokenRecorder) EnterObject() error        { return b.add(EnterObject()) }
func (b *TokenRecorder) ExitObject() error         { return b.add(ExitObject()) }
func (b *TokenRecorder) EnterList() error          { return b.add(EnterList()) }
func (b *TokenRecorder) ExitList() error           { return b.add(ExitList()) }
func (b *TokenRecorder) Comment(text string) error { return b.add(CommentToken(text)) }
func (b *TokenRecorder) String(v string) error     { return b.add(StringToken(v)) }
func (b *TokenRecorder) Int(v int32) error         { return b.add(IntToken(v)) }
func (b *TokenRecorder) Long(v int64) error        { return b.add(LongToken(v)) }
func (b *TokenRecorder) Float(v float32) error     { return b.add(FloatToken(v)) }
func (b *TokenRecorder) Double(v float64) error    { return b.add(DoubleToken(v)) }
func (b *TokenRecorder) Bool(v bool) error         { return b.add(BoolToken(v)) }

// TokenReader replays a recorded stream. It is the backend behind
// Handler.Decode.
//
// Replay coerces scalars the way a loosely typed text format would: integral
// floating point values convert to int/long, any scalar renders as text for
// StringValue and the strings "true"/"false" read as bools. Comments in the
// recording never surface.
type TokenReader struct {
	toks Tokens
	pos  int
}

var _ Reader = (*TokenReader)(nil)

// NewTokenReader returns a reader positioned at the start of ts.
func NewTokenReader(ts Tokens) *TokenReader {
	return &TokenReader{toks: ts}
}

// Remaining reports how many tokens (comments included) have not been read.
func (b *TokenReader) Remaining() int { return len(b.toks) - b.pos }

// head skips comments and returns the next readable token.
func (b *TokenReader) head() (Token, error) {
	for b.pos < len(b.toks) && b.toks[b.pos].Kind == TokenComment {
		b.pos++
	}
	if b.pos >= len(b.toks) {
		return Token{}, Malformed("docbind: unexpected end of token stream")
	}
	return b.toks[b.pos], nil
}

func (b *TokenReader) take(want TokenKind) (Token, error) {
	t, err := b.head()
	if err != nil {
		return t, err
	}
	if t.Kind != want {
		return t, Unexpected(want.String(), t.Kind)
	}
	b.pos++
	return t, nil
}

func (b *TokenReader) scalar() (Token, error) {
	t, err := b.head()
	if err != nil {
		return t, err
	}
	if !t.Kind.IsScalar() {
		return t, Unexpected("scalar", t.Kind)
	}
	b.pos++
	return t, nil
}

func (b *TokenReader) Peek() (TokenKind, error) {
	t, err := b.head()
	return t.Kind, err
}

func (b *TokenReader) SkipDeep() error { return SkipValue(b) }

func (b *TokenReader) EnterObject() error {
	_, err := b.take(TokenEnterObject)
	return err
}

func (b *TokenReader) ExitObject() error {
	_, err := b.take(TokenExitObject)
	return err
}

func (b *TokenReader) EnterList() error {
	_, err := b.take(TokenEnterList)
	return err
}

func (b *TokenReader) ExitList() error {
	_, err := b.take(TokenExitList)
	return err
}

func (b *TokenReader) Key() (string, error) {
	t, err := b.take(TokenKey)
	return t.Text, err
}

func (b *TokenReader) StringValue() (string, error) {
	t, err := b.scalar()
	if err != nil {
		return "", err
	}
	return ScalarText(t), nil
}

func (b *TokenReader) LongValue() (int64, error) {
	t, err := b.scalar()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case TokenInt, TokenLong:
		return t.Int, nil
	case TokenFloat, TokenDouble:
		if t.Float == math.Trunc(t.Float) && t.Float >= math.MinInt64 && t.Float < math.MaxInt64 {
			return int64(t.Float), nil
		}
		return 0, Malformed("docbind: %v is not an integer", t.Float)
	case TokenString:
		if n, err := strconv.ParseInt(t.Text, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(t.Text, 64); err == nil &&
			f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), nil
		}
		return 0, Malformed("docbind: %q is not an integer", t.Text)
	}
	return 0, Unexpected("number", t.Kind)
}

func (b *TokenReader) IntValue() (int32, error) {
	v, err := b.LongValue()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, Malformed("docbind: %d overflows int", v)
	}
	return int32(v), nil
}

func (b *TokenReader) DoubleValue() (float64, error) {
	t, err := b.scalar()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case TokenInt, TokenLong:
		return float64(t.Int), nil
	case TokenFloat, TokenDouble:
		return t.Float, nil
	case TokenString:
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return 0, Malformed("docbind: %q is not a number", t.Text)
		}
		return f, nil
	}
	return 0, Unexpected("number", t.Kind)
}

func (b *TokenReader) FloatValue() (float32, error) {
	v, err := b.DoubleValue()
	return float32(v), err
}

func (b *TokenReader) BoolValue() (bool, error) {
	t, err := b.scalar()
	if err != nil {
		return false, err
	}
	switch t.Kind {
	case TokenBool:
		return t.Bool, nil
	case TokenString:
		if t.Text == "true" || t.Text == "false" {
			return t.Text == "true", nil
		}
		return false, Malformed("docbind: %q is not a bool", t.Text)
	}
	return false, Unexpected("bool", t.Kind)
}

// ScalarText renders a scalar token the way StringValue reports it.
func ScalarText(t Token) string {
	switch t.Kind {
	case TokenInt, TokenLong:
		return strconv.FormatInt(t.Int, 10)
	case TokenFloat:
		return strconv.FormatFloat(t.Float, 'g', -1, 32)
	case TokenDouble:
		return strconv.FormatFloat(t.Float, 'g', -1, 64)
	case TokenBool:
		return strconv.FormatBool(t.Bool)
	default:
		return t.Text
	}
}
