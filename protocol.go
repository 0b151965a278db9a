package docbind

// Writer is the sink half of the token protocol. Backends emit one token per
// call. Calls must follow the structural order (every Enter has a matching
// Exit, a Key inside an object is followed by exactly one value); the engine
// never violates it, so implementations are free to assume it.
type Writer interface {
	Key(name string) error
	EnterObject() error
	ExitObject() error
	EnterList() error
	ExitList() error
	// Comment attaches a human readable note to the next value. Formats without
	// comments may drop it.
	Comment(text string) error
	String(v string) error
	Int(v int32) error
	Long(v int64) error
	Float(v float32) error
	Double(v float64) error
	Bool(v bool) error
}

// Reader is the source half of the token protocol.
//
// Peek classifies the next token without consuming it and must be idempotent.
// Every other method consumes exactly one token, except SkipDeep which
// consumes one complete value. The typed scalar consumers coerce across
// numeric kinds following the format's own rules.
type Reader interface {
	Peek() (TokenKind, error)
	SkipDeep() error
	EnterObject() error
	ExitObject() error
	EnterList() error
	ExitList() error
	Key() (string, error)
	StringValue() (string, error)
	IntValue() (int32, error)
	LongValue() (int64, error)
	FloatValue() (float32, error)
	DoubleValue() (float64, error)
	BoolValue() (bool, error)
}

// SkipValue consumes one complete value from r using only Peek and the
// structural consumers. Backends without a native skip can implement
// SkipDeep with it.
func SkipValue(r Reader) error {
	depth := 0
	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		switch kind {
		case TokenEnterObject:
			err = r.EnterObject()
			depth++
		case TokenEnterList:
			err = r.EnterList()
			depth++
		case TokenExitObject:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			err = r.ExitObject()
			depth--
		case TokenExitList:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			err = r.ExitList()
			depth--
		case TokenKey:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			_, err = r.Key()
			if err == nil {
				continue
			}
		default:
			_, err = r.StringValue()
		}
		if err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

// CopyValue reads one complete value from r and replays it on w, keeping
// scalar kinds as r reports them.
func CopyValue(w Writer, r Reader) error {
	depth := 0
	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		switch kind {
		case TokenEnterObject:
			if err = r.EnterObject(); err == nil {
				err = w.EnterObject()
			}
			depth++
		case TokenEnterList:
			if err = r.EnterList(); err == nil {
				err = w.EnterList()
			}
			depth++
		case TokenExitObject:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			if err = r.ExitObject(); err == nil {
				err = w.ExitObject()
			}
			depth--
		case TokenExitList:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			if err = r.ExitList(); err == nil {
				err = w.ExitList()
			}
			depth--
		case TokenKey:
			if depth == 0 {
				return Unexpected("value", kind)
			}
			var k string
			if k, err = r.Key(); err == nil {
				err = w.Key(k)
			}
			if err != nil {
				return err
			}
			continue
		default:
			err = copyScalar(w, r, kind)
		}
		if err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

func copyScalar(w Writer, r Reader, kind TokenKind) error {
	switch kind {
	case TokenInt:
		v, err := r.IntValue()
		if err != nil {
			return err
		}
		return w.Int(v)
	case TokenLong:
		v, err := r.LongValue()
		if err != nil {
			return err
		}
		return w.Long(v)
	case TokenFloat:
		v, err := r.FloatValue()
		if err != nil {
			return err
		}
		return w.Float(v)
	case TokenDouble:
		v, err := r.DoubleValue()
		if err != nil {
			return err
		}
		return w.Double(v)
	case TokenBool:
		v, err := r.BoolValue()
		if err != nil {
			return err
		}
		return w.Bool(v)
	default:
		v, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.String(v)
	}
}
