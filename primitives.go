package docbind

import (
	"strconv"
)

// scalarAdapter handles one scalar kind. Writes accept any Go value that
// converts to T without loss; key forms use canonical text.
type scalarAdapter[T any] struct {
	typ    Type
	write  func(w Writer, v T) error
	read   func(r Reader) (T, error)
	format func(v T) string
	parse  func(s string) (T, error)
}

func (a *scalarAdapter[T]) coerce(v any) (T, error) {
	if v == nil {
		var zero T
		return zero, invalidValue(a.typ, v)
	}
	tv, err := Assign[T](v)
	if err != nil {
		return tv, invalidValue(a.typ, v)
	}
	return tv, nil
}

func (a *scalarAdapter[T]) Write(ctx *WriterContext, v any) error {
	tv, err := a.coerce(v)
	if err != nil {
		return err
	}
	return a.write(ctx, tv)
}

func (a *scalarAdapter[T]) Read(ctx *ReaderContext) (any, error) {
	v, err := a.read(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (a *scalarAdapter[T]) WriteKey(ctx *WriterContext, v any) error {
	tv, err := a.coerce(v)
	if err != nil {
		return err
	}
	return ctx.Key(a.format(tv))
}

func (a *scalarAdapter[T]) ReadKey(ctx *ReaderContext) (any, error) {
	raw, err := ctx.Key()
	if err != nil {
		return nil, err
	}
	v, err := a.parse(raw)
	if err != nil {
		return nil, keyCoercion(a.typ, raw, err)
	}
	return v, nil
}

var (
	stringAdapter = &scalarAdapter[string]{
		typ:    String,
		write:  Writer.String,
		read:   Reader.StringValue,
		format: func(v string) string { return v },
		parse:  func(s string) (string, error) { return s, nil },
	}
	intAdapter = &scalarAdapter[int32]{
		typ:    Int,
		write:  Writer.Int,
		read:   Reader.IntValue,
		format: func(v int32) string { return strconv.FormatInt(int64(v), 10) },
		parse: func(s string) (int32, error) {
			n, err := strconv.ParseInt(s, 10, 32)
			return int32(n), err
		},
	}
	longAdapter = &scalarAdapter[int64]{
		typ:    Long,
		write:  Writer.Long,
		read:   Reader.LongValue,
		format: func(v int64) string { return strconv.FormatInt(v, 10) },
		parse:  func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
	}
	floatAdapter = &scalarAdapter[float32]{
		typ:    Float,
		write:  Writer.Float,
		read:   Reader.FloatValue,
		format: func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) },
		parse: func(s string) (float32, error) {
			f, err := strconv.ParseFloat(s, 32)
			return float32(f), err
		},
	}
	doubleAdapter = &scalarAdapter[float64]{
		typ:    Double,
		write:  Writer.Double,
		read:   Reader.DoubleValue,
		format: func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
		parse:  func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
	}
	boolAdapter = &scalarAdapter[bool]{
		typ:    Bool,
		write:  Writer.Bool,
		read:   Reader.BoolValue,
		format: strconv.FormatBool,
		parse:  strconv.ParseBool,
	}
)

type primitiveFactory struct{}

func (primitiveFactory) Create(_ *Registry, t Type) (TypeAdapter, bool) {
	switch t.Kind() {
	case KindString:
		return stringAdapter, true
	case KindInt:
		return intAdapter, true
	case KindLong:
		return longAdapter, true
	case KindFloat:
		return floatAdapter, true
	case KindDouble:
		return doubleAdapter, true
	case KindBool:
		return boolAdapter, true
	}
	return nil, false
}
