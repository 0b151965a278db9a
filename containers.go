package docbind

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// contentKey is the canonical rendering of a value that cannot serve as a
// map key itself. It is a distinct type so it never equals a plain string.
type contentKey string

// identity returns a comparable stand-in for v. Comparable values stand for
// themselves; slices, maps and the dynamic containers are identified by
// their content.
func identity(v any) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case *Set, *Deque, *OrderedMap:
		return canonical(v)
	}
	if rv := reflect.ValueOf(v); rv.Comparable() {
		return v
	}
	return canonical(v)
}

func canonical(v any) contentKey {
	b := &strings.Builder{}
	writeCanonical(b, v)
	return contentKey(b.String())
}

// writeCanonical renders v unambiguously: every leaf carries its Go type and
// quoted text, sequences keep their order, sets and maps sort their entries.
func writeCanonical(b *strings.Builder, v any) {
	switch tv := v.(type) {
	case nil:
		b.WriteString("nil")
		return
	case *Set:
		writeUnordered(b, "set", setEntries(tv))
		return
	case *Deque:
		writeSequence(b, "deque", tv.Values())
		return
	case *OrderedMap:
		var entries []string
		tv.Range(func(k, val any) bool {
			entries = append(entries, entry(k, val))
			return true
		})
		writeUnordered(b, "map", entries)
		return
	case string:
		b.WriteString("string:")
		b.WriteString(strconv.Quote(tv))
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString(rv.Type().String() + ":nil")
			return
		}
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}
		writeSequence(b, rv.Type().String(), vals)
	case reflect.Map:
		entries := make([]string, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			entries = append(entries, entry(it.Key().Interface(), it.Value().Interface()))
		}
		writeUnordered(b, rv.Type().String(), entries)
	default:
		b.WriteString(rv.Type().String())
		b.WriteByte(':')
		b.WriteString(strconv.Quote(fmt.Sprintf("%#v", v)))
	}
}

func writeSequence(b *strings.Builder, tag string, vals []any) {
	b.WriteString(tag)
	b.WriteByte('[')
	for i, e := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		writeCanonical(b, e)
	}
	b.WriteByte(']')
}

func writeUnordered(b *strings.Builder, tag string, entries []string) {
	slices.Sort(entries)
	b.WriteString(tag)
	b.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(e))
	}
	b.WriteByte('}')
}

func setEntries(s *Set) []string {
	out := make([]string, 0, s.Len())
	for _, v := range s.Values() {
		out = append(out, string(canonical(v)))
	}
	return out
}

func entry(k, v any) string {
	b := &strings.Builder{}
	writeCanonical(b, k)
	b.WriteByte('=')
	writeCanonical(b, v)
	return b.String()
}

// Set is an insertion ordered set. It is what set descriptors read into.
type Set struct {
	vals  []any
	index map[any]int
}

// NewSet returns a set holding vals in order, dropping duplicates.
func NewSet(vals ...any) *Set {
	s := &Set{index: make(map[any]int, len(vals))}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add appends v unless it is already present and reports whether it was added.
func (s *Set) Add(v any) bool {
	if s.index == nil {
		s.index = make(map[any]int)
	}
	id := identity(v)
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.vals)
	s.vals = append(s.vals, v)
	return true
}

func (s *Set) Contains(v any) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[identity(v)]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.vals)
}

// Values returns the elements in insertion order.
func (s *Set) Values() []any {
	if s == nil {
		return nil
	}
	return append([]any(nil), s.vals...)
}

// Deque is a double ended sequence. It is what queue descriptors read into.
type Deque struct {
	vals []any
	head int
}

// NewDeque returns a deque holding vals front to back.
func NewDeque(vals ...any) *Deque {
	return &Deque{vals: append([]any(nil), vals...)}
}

func (d *Deque) Len() int {
	if d == nil {
		return 0
	}
	return len(d.vals) - d.head
}

func (d *Deque) PushBack(v any) { d.vals = append(d.vals, v) }

func (d *Deque) PushFront(v any) {
	if d.head > 0 {
		d.head--
		d.vals[d.head] = v
		return
	}
	d.vals = append([]any{v}, d.vals...)
}

// PopFront removes and returns the first element.
func (d *Deque) PopFront() (any, bool) {
	if d.Len() == 0 {
		return nil, false
	}
	v := d.vals[d.head]
	d.vals[d.head] = nil
	d.head++
	if d.head == len(d.vals) {
		d.vals, d.head = d.vals[:0], 0
	}
	return v, true
}

// PopBack removes and returns the last element.
func (d *Deque) PopBack() (any, bool) {
	if d.Len() == 0 {
		return nil, false
	}
	last := len(d.vals) - 1
	v := d.vals[last]
	d.vals[last] = nil
	d.vals = d.vals[:last]
	if d.head == len(d.vals) {
		d.vals, d.head = d.vals[:0], 0
	}
	return v, true
}

// Values returns the elements front to back.
func (d *Deque) Values() []any {
	if d == nil {
		return nil
	}
	return append([]any(nil), d.vals[d.head:]...)
}

// OrderedMap keeps entries in insertion order. Map descriptors read into it
// and writing one preserves its order.
type OrderedMap struct {
	keys  []any
	vals  []any
	index map[any]int
}

// NewOrderedMap returns an empty map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[any]int)}
}

// Set stores v under k. Replacing an existing key keeps its position.
func (m *OrderedMap) Set(k, v any) {
	if m.index == nil {
		m.index = make(map[any]int)
	}
	id := identity(k)
	if i, ok := m.index[id]; ok {
		m.vals[i] = v
		return
	}
	m.index[id] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

func (m *OrderedMap) Get(k any) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[identity(k)]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Delete removes k and reports whether it was present.
func (m *OrderedMap) Delete(k any) bool {
	if m == nil {
		return false
	}
	id := identity(k)
	i, ok := m.index[id]
	if !ok {
		return false
	}
	delete(m.index, id)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[identity(m.keys[j])] = j
	}
	return true
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []any {
	if m == nil {
		return nil
	}
	return append([]any(nil), m.keys...)
}

// Range calls fn for each entry in order until it returns false.
func (m *OrderedMap) Range(fn func(k, v any) bool) {
	if m == nil {
		return
	}
	for i := range m.keys {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}
