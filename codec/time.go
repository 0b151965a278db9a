// Package codec provides adapters for common Go value types that have a
// canonical text form: time.Time as RFC3339 and time.Duration in Go notation.
// Both support map key position.
package codec

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/reoring/docbind"
)

var (
	// Time describes time.Time values.
	Time = docbind.Named("time.Time")
	// Duration describes time.Duration values.
	Duration = docbind.Named("time.Duration")
)

// Register installs the adapters of this package into r.
func Register(r *docbind.Registry) error {
	if err := r.RegisterAdapter(Time, TimeRFC3339()); err != nil {
		return err
	}
	return r.RegisterAdapter(Duration, DurationText())
}

// TimeRFC3339 returns an adapter that writes times in UTC with RFC3339Nano
// (trailing zeros trimmed) and reads both RFC3339 and RFC3339Nano.
func TimeRFC3339() docbind.TypeAdapter {
	return &textAdapter[time.Time]{typ: Time, format: formatRFC3339Canonical, parse: parseRFC3339}
}

// DurationText returns an adapter using time.Duration's String form.
func DurationText() docbind.TypeAdapter {
	return &textAdapter[time.Duration]{typ: Duration, format: time.Duration.String, parse: time.ParseDuration}
}

type textAdapter[T any] struct {
	typ    docbind.Type
	format func(T) string
	parse  func(string) (T, error)
}

func (a *textAdapter[T]) value(v any) (T, error) {
	switch tv := v.(type) {
	case T:
		return tv, nil
	case *T:
		if tv != nil {
			return *tv, nil
		}
	}
	var zero T
	return zero, errors.Mark(errors.Newf("codec: cannot encode %T as %s", v, a.typ), docbind.ErrInvalidValue)
}

func (a *textAdapter[T]) Write(ctx *docbind.WriterContext, v any) error {
	tv, err := a.value(v)
	if err != nil {
		return err
	}
	return ctx.String(a.format(tv))
}

func (a *textAdapter[T]) Read(ctx *docbind.ReaderContext) (any, error) {
	s, err := ctx.StringValue()
	if err != nil {
		return nil, err
	}
	v, err := a.parse(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "codec: invalid %s %q", a.typ, s), docbind.ErrMalformedToken)
	}
	return v, nil
}

func (a *textAdapter[T]) WriteKey(ctx *docbind.WriterContext, v any) error {
	tv, err := a.value(v)
	if err != nil {
		return err
	}
	return ctx.Key(a.format(tv))
}

func (a *textAdapter[T]) ReadKey(ctx *docbind.ReaderContext) (any, error) {
	s, err := ctx.Key()
	if err != nil {
		return nil, err
	}
	v, err := a.parse(s)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "codec: cannot parse key %q as %s", s, a.typ), docbind.ErrKeyCoercion)
	}
	return v, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
