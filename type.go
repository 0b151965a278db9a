package docbind

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Kind is the tag of a type descriptor. Factories pattern-match on it.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBool
	KindList
	KindSet
	KindQueue
	KindCollection
	KindMap
	KindEnum
	KindObject
	KindNamed
	KindFragment
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindString:     "string",
	KindInt:        "int",
	KindLong:       "long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindBool:       "bool",
	KindList:       "list",
	KindSet:        "set",
	KindQueue:      "queue",
	KindCollection: "collection",
	KindMap:        "map",
	KindEnum:       "enum",
	KindObject:     "object",
	KindNamed:      "named",
	KindFragment:   "fragment",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// IsScalar reports whether k is one of the primitive kinds.
func (k Kind) IsScalar() bool { return k >= KindString && k <= KindBool }

// IsContainer reports whether k is a homogeneous collection kind.
func (k Kind) IsContainer() bool { return k >= KindList && k <= KindCollection }

// Type describes a requested type for adapter resolution: a base identity
// (kind tag plus name) and, for generic types, ordered type arguments.
//
// Two descriptors are equal iff kind, name and all arguments are equal.
// Definitions attached to enum/object/named descriptors are looked up by the
// factories but do not take part in equality; a name must therefore identify
// one definition.
type Type struct {
	kind Kind
	name string
	args []Type
	def  any
}

// Built-in scalar descriptors.
var (
	String = Type{kind: KindString, name: "string"}
	Int    = Type{kind: KindInt, name: "int"}
	Long   = Type{kind: KindLong, name: "long"}
	Float  = Type{kind: KindFloat, name: "float"}
	Double = Type{kind: KindDouble, name: "double"}
	Bool   = Type{kind: KindBool, name: "bool"}
)

// ListOf describes an insertion ordered sequence of elem.
func ListOf(elem Type) Type { return Type{kind: KindList, name: "list", args: []Type{elem}} }

// SetOf describes an insertion ordered, deduplicating set of elem.
func SetOf(elem Type) Type { return Type{kind: KindSet, name: "set", args: []Type{elem}} }

// QueueOf describes a double-ended sequence of elem.
func QueueOf(elem Type) Type { return Type{kind: KindQueue, name: "queue", args: []Type{elem}} }

// CollectionOf describes an unspecified collection; it reads as a list.
func CollectionOf(elem Type) Type {
	return Type{kind: KindCollection, name: "collection", args: []Type{elem}}
}

// MapOf describes a key/value map.
func MapOf(key, value Type) Type {
	return Type{kind: KindMap, name: "map", args: []Type{key, value}}
}

// Named describes an opaque user type. Only explicitly registered adapters,
// custom factories or a SerializedBy override can resolve it.
func Named(name string, args ...Type) Type {
	return Type{kind: KindNamed, name: name, args: cloneTypes(args)}
}

// Kind returns the descriptor tag.
func (t Type) Kind() Kind { return t.kind }

// Name returns the base name.
func (t Type) Name() string { return t.name }

// Args returns a copy of the type arguments.
func (t Type) Args() []Type { return cloneTypes(t.args) }

// Arg returns the i-th type argument or the invalid descriptor.
func (t Type) Arg(i int) Type {
	if i < 0 || i >= len(t.args) {
		return Type{}
	}
	return t.args[i]
}

// IsValid reports whether t was constructed by one of the descriptor
// constructors.
func (t Type) IsValid() bool { return t.kind != KindInvalid }

// IsGeneric reports whether t carries type arguments.
func (t Type) IsGeneric() bool { return len(t.args) > 0 }

// Base returns t without its type arguments (the raw type).
func (t Type) Base() Type { return Type{kind: t.kind, name: t.name, def: t.def} }

// Equal compares base identity and arguments recursively.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || t.name != o.name || len(t.args) != len(o.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Key renders the canonical cache key, e.g. "map[string,list[int]]". Names
// that differ from their kind tag are qualified by it ("named:int"), so two
// descriptors share a key iff they are Equal.
func (t Type) Key() string {
	b := &strings.Builder{}
	t.writeKey(b)
	return b.String()
}

func (t Type) writeKey(b *strings.Builder) {
	if t.name != t.kind.String() {
		b.WriteString(t.kind.String())
		b.WriteByte(':')
	}
	if strings.ContainsAny(t.name, `[],:"`) {
		b.WriteString(strconv.Quote(t.name))
	} else {
		b.WriteString(t.name)
	}
	if len(t.args) == 0 {
		return
	}
	b.WriteByte('[')
	for i, a := range t.args {
		if i > 0 {
			b.WriteByte(',')
		}
		a.writeKey(b)
	}
	b.WriteByte(']')
}

func (t Type) String() string {
	if !t.IsValid() {
		return "<invalid>"
	}
	if len(t.args) == 0 {
		return t.name
	}
	return t.name + "[" + strings.Join(lo.Map(t.args, func(a Type, _ int) string { return a.String() }), ", ") + "]"
}

func cloneTypes(ts []Type) []Type {
	if len(ts) == 0 {
		return nil
	}
	out := make([]Type, len(ts))
	copy(out, ts)
	return out
}
