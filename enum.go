package docbind

import (
	"fmt"
	"strings"
)

// enumDef is the definition attached to an enum descriptor.
type enumDef struct {
	names   []string
	byName  map[string]any
	nameOf  func(v any) (string, bool)
	ordered []any
}

// Enum describes an enum type E with the given variants. Variant names come
// from String() and must be unique.
func Enum[E interface {
	comparable
	fmt.Stringer
}](name string, values ...E) Type {
	def := &enumDef{byName: make(map[string]any, len(values))}
	byValue := make(map[E]string, len(values))
	for _, v := range values {
		n := v.String()
		if _, dup := def.byName[n]; dup {
			panic(fmt.Sprintf("docbind: enum %s declares variant %q twice", name, n))
		}
		def.names = append(def.names, n)
		def.byName[n] = v
		def.ordered = append(def.ordered, v)
		byValue[v] = n
	}
	def.nameOf = func(v any) (string, bool) {
		e, err := Assign[E](v)
		if err != nil || v == nil {
			return "", false
		}
		n, ok := byValue[e]
		return n, ok
	}
	return Type{kind: KindEnum, name: name, def: def}
}

// EnumVariants returns the declared variants of an enum descriptor in
// declaration order, or nil for other descriptors.
func EnumVariants(t Type) []any {
	def, ok := t.def.(*enumDef)
	if t.kind != KindEnum || !ok {
		return nil
	}
	return append([]any(nil), def.ordered...)
}

type enumAdapter struct {
	typ Type
	def *enumDef
}

func (a *enumAdapter) name(v any) (string, error) {
	n, ok := a.def.nameOf(v)
	if !ok {
		return "", invalidValue(a.typ, v)
	}
	return n, nil
}

func (a *enumAdapter) lookup(n string) (any, error) {
	v, ok := a.def.byName[n]
	if !ok {
		return nil, &UnknownVariantError{Type: a.typ, Name: n}
	}
	return v, nil
}

func (a *enumAdapter) Write(ctx *WriterContext, v any) error {
	n, err := a.name(v)
	if err != nil {
		return err
	}
	return ctx.String(n)
}

func (a *enumAdapter) Read(ctx *ReaderContext) (any, error) {
	n, err := ctx.StringValue()
	if err != nil {
		return nil, err
	}
	return a.lookup(n)
}

func (a *enumAdapter) WriteKey(ctx *WriterContext, v any) error {
	n, err := a.name(v)
	if err != nil {
		return err
	}
	return ctx.Key(n)
}

func (a *enumAdapter) ReadKey(ctx *ReaderContext) (any, error) {
	n, err := ctx.Key()
	if err != nil {
		return nil, err
	}
	return a.lookup(n)
}

// String lists the variants, mostly for debug logs.
func (a *enumAdapter) String() string {
	return a.typ.String() + "{" + strings.Join(a.def.names, ",") + "}"
}

type enumFactory struct{}

func (enumFactory) Create(_ *Registry, t Type) (TypeAdapter, bool) {
	def, ok := t.def.(*enumDef)
	if t.kind != KindEnum || !ok {
		return nil, false
	}
	return &enumAdapter{typ: t, def: def}, true
}
