package docbind

import (
	"github.com/cockroachdb/errors"
)

// TypeAdapter reads and writes values of one type purely in terms of the
// token protocol. Adapters hold no per-call state and may be shared by
// concurrent traversals.
type TypeAdapter interface {
	Write(ctx *WriterContext, v any) error
	Read(ctx *ReaderContext) (any, error)
}

// KeyAdapter is implemented by adapters whose type may appear in map key
// position. Only types with a stable string rendering support it.
type KeyAdapter interface {
	WriteKey(ctx *WriterContext, v any) error
	ReadKey(ctx *ReaderContext) (any, error)
}

// SupportsKeys reports whether a may be used for map keys.
func SupportsKeys(a TypeAdapter) bool {
	_, ok := a.(KeyAdapter)
	return ok
}

// AdapterOf builds an adapter for values of Go type T from two closures.
// Values that are not a T are rejected with ErrInvalidValue.
func AdapterOf[T any](write func(ctx *WriterContext, v T) error, read func(ctx *ReaderContext) (T, error)) TypeAdapter {
	return &funcAdapter[T]{write: write, read: read}
}

type funcAdapter[T any] struct {
	write func(*WriterContext, T) error
	read  func(*ReaderContext) (T, error)
}

func (a *funcAdapter[T]) Write(ctx *WriterContext, v any) error {
	tv, ok := v.(T)
	if !ok {
		var zero T
		return errors.Mark(errors.Newf("docbind: adapter for %T cannot encode %T", zero, v), ErrInvalidValue)
	}
	return a.write(ctx, tv)
}

func (a *funcAdapter[T]) Read(ctx *ReaderContext) (any, error) {
	v, err := a.read(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}
