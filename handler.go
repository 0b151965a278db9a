package docbind

import (
	"github.com/cockroachdb/errors"
)

// Handler is the root entry point: it binds a token endpoint to a registry
// and walks exactly one complete value per call.
type Handler struct {
	reg *Registry
}

// NewHandler returns a handler resolving through reg, or Default() when reg
// is nil.
func NewHandler(reg *Registry) *Handler {
	if reg == nil {
		reg = Default()
	}
	return &Handler{reg: reg}
}

// Registry returns the handler's registry.
func (h *Handler) Registry() *Registry { return h.reg }

// Write writes v as t to w. Unclassified failures returned by w are marked
// ErrBackend; errors raised by adapters keep their own classification.
func (h *Handler) Write(w Writer, t Type, v any) error {
	err := NewWriterContext(backendWriter{w}, h.reg).WriteValue(t, v)
	return errors.Wrapf(err, "docbind: write %s", t)
}

// Read reads one value of type t from r, marking r's failures like Write.
func (h *Handler) Read(r Reader, t Type) (any, error) {
	v, err := NewReaderContext(backendReader{r}, h.reg).ReadValue(t)
	if err != nil {
		return nil, errors.Wrapf(err, "docbind: read %s", t)
	}
	return v, nil
}

// Encode writes v as t into an in-memory token stream.
func (h *Handler) Encode(t Type, v any) (Tokens, error) {
	rec := &TokenRecorder{}
	if err := h.Write(rec, t, v); err != nil {
		return nil, err
	}
	return rec.Tokens(), nil
}

// Decode reads a value of type t from ts. Tokens left over after the value
// are a malformed stream.
func (h *Handler) Decode(t Type, ts Tokens) (any, error) {
	r := NewTokenReader(ts)
	v, err := h.Read(r, t)
	if err != nil {
		return nil, err
	}
	if k, err := r.Peek(); err == nil {
		return nil, Malformed("docbind: trailing %s after %s value", k, t)
	}
	return v, nil
}

// ReadAs reads t from r and converts the result with Assign.
func ReadAs[T any](h *Handler, r Reader, t Type) (T, error) {
	v, err := h.Read(r, t)
	if err != nil {
		var zero T
		return zero, err
	}
	return Assign[T](v)
}

// DecodeAs decodes t from ts and converts the result with Assign.
func DecodeAs[T any](h *Handler, t Type, ts Tokens) (T, error) {
	v, err := h.Decode(t, ts)
	if err != nil {
		var zero T
		return zero, err
	}
	return Assign[T](v)
}

// backendWriter marks failures of the wrapped endpoint as backend errors.
type backendWriter struct{ w Writer }

func (b backendWriter) Key(name string) error     { return BackendError(b.w.Key(name), "docbind: backend") }
func (b backendWriter) EnterObject() error        { return BackendError(b.w.EnterObject(), "docbind: backend") }
func (b backendWriter) ExitObject() error         { return BackendError(b.w.ExitObject(), "docbind: backend") }
func (b backendWriter) EnterList() error          { return BackendError(b.w.EnterList(), "docbind: backend") }
func (b backendWriter) ExitList() error           { return BackendError(b.w.ExitList(), "docbind: backend") }
func (b backendWriter) Comment(text string) error { return BackendError(b.w.Comment(text), "docbind: backend") }
func (b backendWriter) String(v string) error     { return BackendError(b.w.String(v), "docbind: backend") }
func (b backendWriter) Int(v int32) error         { return BackendError(b.w.Int(v), "docbind: backend") }
func (b backendWriter) Long(v int64) error        { return BackendError(b.w.Long(v), "docbind: backend") }
func (b backendWriter) Float(v float32) error     { return BackendError(b.w.Float(v), "docbind: backend") }
func (b backendWriter) Double(v float64) error    { return BackendError(b.w.Double(v), "docbind: backend") }
func (b backendWriter) Bool(v bool) error         { return BackendError(b.w.Bool(v), "docbind: backend") }

type backendReader struct{ r Reader }

func backendValue[T any](v T, err error) (T, error) {
	return v, BackendError(err, "docbind: backend")
}

func (b backendReader) Peek() (TokenKind, error)      { return backendValue(b.r.Peek()) }
func (b backendReader) SkipDeep() error               { return BackendError(b.r.SkipDeep(), "docbind: backend") }
func (b backendReader) EnterObject() error            { return BackendError(b.r.EnterObject(), "docbind: backend") }
func (b backendReader) ExitObject() error             { return BackendError(b.r.ExitObject(), "docbind: backend") }
func (b backendReader) EnterList() error              { return BackendError(b.r.EnterList(), "docbind: backend") }
func (b backendReader) ExitList() error               { return BackendError(b.r.ExitList(), "docbind: backend") }
func (b backendReader) Key() (string, error)          { return backendValue(b.r.Key()) }
func (b backendReader) StringValue() (string, error)  { return backendValue(b.r.StringValue()) }
func (b backendReader) IntValue() (int32, error)      { return backendValue(b.r.IntValue()) }
func (b backendReader) LongValue() (int64, error)     { return backendValue(b.r.LongValue()) }
func (b backendReader) FloatValue() (float32, error)  { return backendValue(b.r.FloatValue()) }
func (b backendReader) DoubleValue() (float64, error) { return backendValue(b.r.DoubleValue()) }
func (b backendReader) BoolValue() (bool, error)      { return backendValue(b.r.BoolValue()) }
