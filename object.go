package docbind

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/reoring/docbind/internal/metrics"
)

// Field describes one property of a structured object of type T: its external
// name, its declared descriptor and typed accessor closures.
type Field[T any] struct {
	name      string
	typ       Type
	get       func(*T) (any, bool)
	set       func(*T, any) error
	serialize *bool
	comment   string
}

// Prop declares a read/write property.
func Prop[T, V any](name string, t Type, get func(*T) V, set func(*T, V)) Field[T] {
	f := ReadOnly(name, t, get)
	if set != nil {
		f.set = func(o *T, v any) error {
			tv, err := Assign[V](v)
			if err != nil {
				return err
			}
			set(o, tv)
			return nil
		}
	}
	return f
}

// PropE is Prop with a setter that can reject the value.
func PropE[T, V any](name string, t Type, get func(*T) V, set func(*T, V) error) Field[T] {
	f := ReadOnly(name, t, get)
	if set != nil {
		f.set = func(o *T, v any) error {
			tv, err := Assign[V](v)
			if err != nil {
				return err
			}
			return set(o, tv)
		}
	}
	return f
}

// ReadOnly declares a property that is written but ignored on read.
func ReadOnly[T, V any](name string, t Type, get func(*T) V) Field[T] {
	f := Field[T]{name: name, typ: t}
	if get != nil {
		f.get = func(o *T) (any, bool) {
			v := any(get(o))
			return v, !isAbsent(v)
		}
	}
	return f
}

// Optional declares a property whose getter reports presence explicitly.
func Optional[T, V any](name string, t Type, get func(*T) (V, bool), set func(*T, V)) Field[T] {
	f := Prop[T, V](name, t, nil, set)
	if get != nil {
		f.get = func(o *T) (any, bool) {
			v, ok := get(o)
			if !ok {
				return nil, false
			}
			return v, !isAbsent(v)
		}
	}
	return f
}

// Accessor declares a property named after a GetX/IsX accessor, e.g.
// Accessor("GetMaxSize", ...) yields the field "maxSize". Accessor names with
// no derivable property name produce a field that is never written.
func Accessor[T, V any](accessor string, t Type, get func(*T) V, set func(*T, V)) Field[T] {
	name, _ := PropertyName(accessor)
	return Prop(name, t, get, set)
}

// Serialize overrides the object's default visibility for this field.
func (f Field[T]) Serialize(on bool) Field[T] {
	f.serialize = &on
	return f
}

// Describe attaches a comment written before the field.
func (f Field[T]) Describe(comment string) Field[T] {
	f.comment = comment
	return f
}

// Name returns the external field name.
func (f Field[T]) Name() string { return f.name }

// PropertyName derives a field name from a getter name: the "Get"/"Is" prefix
// (either case) is stripped and the next rune lower-cased.
func PropertyName(accessor string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(accessor, "Is"), strings.HasPrefix(accessor, "is"):
		rest = accessor[2:]
	case strings.HasPrefix(accessor, "Get"), strings.HasPrefix(accessor, "get"):
		rest = accessor[3:]
	default:
		return "", false
	}
	if rest == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToLower(r)) + rest[size:], true
}

// SetterName returns the mutator name for a field, "count" -> "SetCount".
func SetterName(field string) string {
	if field == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(field)
	return "Set" + string(unicode.ToUpper(r)) + field[size:]
}

// isAbsent reports whether v is the absence marker: nil or a nil pointer,
// interface, map, slice, func or chan.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// objectDef is the type-erased definition behind an object descriptor.
type objectDef struct {
	name             string
	goType           reflect.Type
	construct        func() any
	fields           []fieldDef
	setters          map[string]int
	serializeDefault bool
	provider         AdapterProvider
}

type fieldDef struct {
	name      string
	typ       Type
	serialize *bool
	comment   string
	get       func(obj any) (any, bool)
	set       func(obj any, v any) error
}

func (d *objectDef) adapterProvider() AdapterProvider { return d.provider }

// ObjectBuilder declares a structured object type T.
type ObjectBuilder[T any] struct {
	def *objectDef
}

// NewObject starts the declaration of T under name. Instances are created
// with new(T) unless New is called.
func NewObject[T any](name string) *ObjectBuilder[T] {
	return &ObjectBuilder[T]{def: &objectDef{
		name:             name,
		goType:           reflect.TypeOf((*T)(nil)),
		construct:        func() any { return new(T) },
		setters:          map[string]int{},
		serializeDefault: true,
	}}
}

// New sets the constructor. A nil constructor marks the type as not
// constructible: the object factory then declines it, leaving it to
// registered adapters or SerializedBy.
func (b *ObjectBuilder[T]) New(fn func() *T) *ObjectBuilder[T] {
	if fn == nil {
		b.def.construct = nil
		return b
	}
	b.def.construct = func() any { return fn() }
	return b
}

// Field appends fields in declaration order, which is also write order.
func (b *ObjectBuilder[T]) Field(fs ...Field[T]) *ObjectBuilder[T] {
	for _, f := range fs {
		fd := fieldDef{name: f.name, typ: f.typ, serialize: f.serialize, comment: f.comment}
		if get := f.get; get != nil {
			fd.get = func(obj any) (any, bool) { return get(obj.(*T)) }
		}
		if set := f.set; set != nil && f.name != "" {
			fd.set = func(obj any, v any) error { return set(obj.(*T), v) }
			b.def.setters[f.name] = len(b.def.fields)
		}
		b.def.fields = append(b.def.fields, fd)
	}
	return b
}

// SerializeByDefault sets whether fields without their own Serialize flag are
// written. It defaults to true.
func (b *ObjectBuilder[T]) SerializeByDefault(on bool) *ObjectBuilder[T] {
	b.def.serializeDefault = on
	return b
}

// SerializedBy declares a preferred adapter for T. It only takes effect when
// no earlier factory claims the type, e.g. when T is not constructible.
func (b *ObjectBuilder[T]) SerializedBy(p AdapterProvider) *ObjectBuilder[T] {
	b.def.provider = p
	return b
}

// Type returns the descriptor. The definition is shared, so the descriptor
// may be used in field declarations of T itself.
func (b *ObjectBuilder[T]) Type() Type {
	return Type{kind: KindObject, name: b.def.name, def: b.def}
}

type objectAdapter struct {
	typ Type
	def *objectDef
}

func (a *objectAdapter) instance(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Type() {
	case a.def.goType:
		return v, !rv.IsNil()
	case a.def.goType.Elem():
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		return p.Interface(), true
	}
	return nil, false
}

func (a *objectAdapter) Write(ctx *WriterContext, v any) error {
	obj, ok := a.instance(v)
	if !ok {
		return invalidValue(a.typ, v)
	}
	if err := ctx.EnterObject(); err != nil {
		return err
	}
	for i := range a.def.fields {
		f := &a.def.fields[i]
		if f.name == "" || f.get == nil {
			continue
		}
		serialize := a.def.serializeDefault
		if f.serialize != nil {
			serialize = *f.serialize
		}
		if !serialize {
			continue
		}
		val, present, err := a.get(f, obj)
		if err != nil {
			a.accessFailure(ctx.Logger(), "error while getting object property", f.name, err)
			continue
		}
		if !present {
			continue
		}
		if f.comment != "" {
			if err := ctx.Comment(f.comment); err != nil {
				return err
			}
		}
		if err := ctx.Key(f.name); err != nil {
			return err
		}
		if err := ctx.WriteValue(f.typ, val); err != nil {
			return err
		}
	}
	return ctx.ExitObject()
}

func (a *objectAdapter) get(f *fieldDef, obj any) (val any, present bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in getter: %v", r)
		}
	}()
	val, present = f.get(obj)
	return val, present, nil
}

func (a *objectAdapter) set(f *fieldDef, obj, val any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in setter: %v", r)
		}
	}()
	return f.set(obj, val)
}

func (a *objectAdapter) accessFailure(l *zap.Logger, msg, field string, err error) {
	metrics.SkippedFields.WithLabelValues("access").Inc()
	l.Warn(msg,
		zap.String("type", a.typ.String()),
		zap.String("field", field),
		zap.Error(errors.Mark(err, ErrAccess)))
}

func (a *objectAdapter) Read(ctx *ReaderContext) (any, error) {
	obj := a.def.construct()
	if err := ctx.EnterObject(); err != nil {
		return nil, err
	}
	for {
		k, err := ctx.Peek()
		if err != nil {
			return nil, err
		}
		if k == TokenExitObject {
			break
		}
		name, err := ctx.Key()
		if err != nil {
			return nil, err
		}
		i, ok := a.def.setters[name]
		if !ok {
			metrics.SkippedFields.WithLabelValues("unknown").Inc()
			ctx.Logger().Debug("skipping unknown object property",
				zap.String("type", a.typ.String()), zap.String("field", name))
			if err := ctx.SkipDeep(); err != nil {
				return nil, err
			}
			continue
		}
		f := &a.def.fields[i]
		val, err := ctx.ReadValue(f.typ)
		if err != nil {
			return nil, err
		}
		if err := a.set(f, obj, val); err != nil {
			a.accessFailure(ctx.Logger(), "error while setting object property", name, err)
		}
	}
	if err := ctx.ExitObject(); err != nil {
		return nil, err
	}
	return obj, nil
}

type objectFactory struct{}

func (objectFactory) Create(_ *Registry, t Type) (TypeAdapter, bool) {
	def, ok := t.def.(*objectDef)
	if t.kind != KindObject || !ok || def.construct == nil {
		return nil, false
	}
	return &objectAdapter{typ: t.Base(), def: def}, true
}
