package docbind

import (
	"reflect"
	"slices"
	"strings"
)

// mapAdapter writes entries as Key/value pairs and reads into *OrderedMap.
type mapAdapter struct {
	typ   Type
	key   Type
	value Type
	keys  KeyAdapter
}

type mapEntry struct {
	text string
	key  any
	val  any
}

func (a *mapAdapter) Write(ctx *WriterContext, v any) error {
	if om, ok := v.(*OrderedMap); ok && om != nil {
		if err := ctx.EnterObject(); err != nil {
			return err
		}
		var err error
		om.Range(func(k, e any) bool {
			if err = ctx.WriteKey(a.key, k); err != nil {
				return false
			}
			err = ctx.WriteValue(a.value, e)
			return err == nil
		})
		if err != nil {
			return err
		}
		return ctx.ExitObject()
	}

	entries, err := a.sortedEntries(ctx, v)
	if err != nil {
		return err
	}
	if err := ctx.EnterObject(); err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Key(e.text); err != nil {
			return err
		}
		if err := ctx.WriteValue(a.value, e.val); err != nil {
			return err
		}
	}
	return ctx.ExitObject()
}

// sortedEntries renders every key of a Go map up front and orders entries by
// that text, since Go maps have no stable iteration order.
func (a *mapAdapter) sortedEntries(ctx *WriterContext, v any) ([]mapEntry, error) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map {
		return nil, invalidValue(a.typ, v)
	}
	rec := &TokenRecorder{}
	kctx := NewWriterContext(rec, ctx.Registry())
	entries := make([]mapEntry, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		rec.Reset()
		k := it.Key().Interface()
		if err := a.keys.WriteKey(kctx, k); err != nil {
			return nil, err
		}
		toks := rec.Tokens()
		if len(toks) != 1 || toks[0].Kind != TokenKey {
			return nil, Malformed("docbind: key adapter for %s wrote %d tokens", a.key, len(toks))
		}
		entries = append(entries, mapEntry{text: toks[0].Text, key: k, val: it.Value().Interface()})
	}
	slices.SortStableFunc(entries, func(x, y mapEntry) int { return strings.Compare(x.text, y.text) })
	return entries, nil
}

func (a *mapAdapter) Read(ctx *ReaderContext) (any, error) {
	if err := ctx.EnterObject(); err != nil {
		return nil, err
	}
	m := NewOrderedMap()
	for {
		k, err := ctx.Peek()
		if err != nil {
			return nil, err
		}
		if k == TokenExitObject {
			break
		}
		key, err := ctx.ReadKey(a.key)
		if err != nil {
			return nil, err
		}
		val, err := ctx.ReadValue(a.value)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	if err := ctx.ExitObject(); err != nil {
		return nil, err
	}
	return m, nil
}

type mapFactory struct{}

func (mapFactory) Create(r *Registry, t Type) (TypeAdapter, bool) {
	if t.Kind() != KindMap || len(t.args) != 2 {
		return nil, false
	}
	ka, err := r.Resolve(t.args[0])
	if err != nil {
		return nil, false
	}
	keys, ok := ka.(KeyAdapter)
	if !ok {
		return nil, false
	}
	return &mapAdapter{typ: t, key: t.args[0], value: t.args[1], keys: keys}, true
}
