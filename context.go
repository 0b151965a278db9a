package docbind

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// WriterContext binds a Writer to a Registry so adapters can write nested
// values by their declared descriptors. One context serves one traversal.
type WriterContext struct {
	Writer
	reg *Registry
}

// NewWriterContext binds w to reg. A nil registry means Default().
func NewWriterContext(w Writer, reg *Registry) *WriterContext {
	if reg == nil {
		reg = Default()
	}
	return &WriterContext{Writer: w, reg: reg}
}

// Registry returns the registry nested resolutions go through.
func (c *WriterContext) Registry() *Registry { return c.reg }

// Logger is a shortcut for Registry().Logger().
func (c *WriterContext) Logger() *zap.Logger { return c.reg.Logger() }

// WriteValue resolves t and writes v with its adapter.
func (c *WriterContext) WriteValue(t Type, v any) error {
	a, err := c.reg.Resolve(t)
	if err != nil {
		return err
	}
	return a.Write(c, v)
}

// WriteKey resolves t and writes v in key position. Types whose adapter does
// not implement KeyAdapter fail with ErrKeyUnsupported.
func (c *WriterContext) WriteKey(t Type, v any) error {
	a, err := c.reg.Resolve(t)
	if err != nil {
		return err
	}
	ka, ok := a.(KeyAdapter)
	if !ok {
		return errors.Mark(errors.Newf("docbind: %s cannot be written as a key", t), ErrKeyUnsupported)
	}
	return ka.WriteKey(c, v)
}

// ReaderContext is the read-side counterpart of WriterContext.
type ReaderContext struct {
	Reader
	reg *Registry
}

// NewReaderContext binds r to reg. A nil registry means Default().
func NewReaderContext(r Reader, reg *Registry) *ReaderContext {
	if reg == nil {
		reg = Default()
	}
	return &ReaderContext{Reader: r, reg: reg}
}

func (c *ReaderContext) Registry() *Registry { return c.reg }

func (c *ReaderContext) Logger() *zap.Logger { return c.reg.Logger() }

// ReadValue resolves t and reads one value with its adapter.
func (c *ReaderContext) ReadValue(t Type) (any, error) {
	a, err := c.reg.Resolve(t)
	if err != nil {
		return nil, err
	}
	return a.Read(c)
}

// ReadKey resolves t and reads one key, converting it to t's representation.
func (c *ReaderContext) ReadKey(t Type) (any, error) {
	a, err := c.reg.Resolve(t)
	if err != nil {
		return nil, err
	}
	ka, ok := a.(KeyAdapter)
	if !ok {
		return nil, errors.Mark(errors.Newf("docbind: %s cannot be read as a key", t), ErrKeyUnsupported)
	}
	return ka.ReadKey(c)
}
