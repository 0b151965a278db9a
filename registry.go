package docbind

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/reoring/docbind/internal/log"
	"github.com/reoring/docbind/internal/metrics"
)

// Registry owns the ordered factory chain and the resolution cache.
//
// Configuration (Register*, DeclareSubtype) is expected to happen once before
// use; the registry freezes on the first resolution and further configuration
// fails with ErrRegistryFrozen until Clear is called. Resolution is safe for
// concurrent use. Concurrent misses for the same descriptor may walk the chain
// more than once; the first adapter stored wins.
type Registry struct {
	mu         sync.RWMutex
	factories  []Factory
	nextCustom int
	supers     map[string][]Type

	frozen  atomic.Bool
	cache   atomic.Pointer[sync.Map]
	cacheOn bool
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCache enables or disables memoization of resolved adapters. Disabling it
// never changes results, only cost.
func WithCache(enabled bool) Option { return func(r *Registry) { r.cacheOn = enabled } }

// WithLogger sets the logger used by the registry and the adapters it
// produces. The global logger is used otherwise.
func WithLogger(l *zap.Logger) Option { return func(r *Registry) { r.logger = l } }

// WithFactories replaces the built-in chain.
func WithFactories(fs ...Factory) Option {
	return func(r *Registry) { r.factories = append([]Factory(nil), fs...) }
}

// NewRegistry returns a registry with the default factory chain.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: DefaultFactories(),
		supers:    make(map[string][]Type),
		cacheOn:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache.Store(&sync.Map{})
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default returns the process-wide shared registry.
func Default() *Registry { return defaultRegistry() }

// Logger returns the logger adapters should use.
func (r *Registry) Logger() *zap.Logger { return log.Or(r.logger) }

// RegisterAdapter registers a for t. The adapter also serves any descriptor
// with t's base identity (type arguments ignored) and, for non-generic
// descriptors, any type declared as a subtype of t.
func (r *Registry) RegisterAdapter(t Type, a TypeAdapter) error {
	if !t.IsValid() || a == nil {
		return errors.New("docbind: RegisterAdapter needs a valid type and adapter")
	}
	base := t.Base()
	return r.RegisterAdapterFactory(FactoryFunc(func(reg *Registry, d Type) (TypeAdapter, bool) {
		if d.Base().Equal(base) {
			return a, true
		}
		if !d.IsGeneric() && reg.Assignable(d, base) {
			return a, true
		}
		return nil, false
	}))
}

// RegisterAdapterFactory adds f ahead of the built-in chain, after any custom
// factories registered earlier.
func (r *Registry) RegisterAdapterFactory(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(r.nextCustom, f, true)
}

// InsertAdapterFactory places f at position i of the chain (clamped).
func (r *Registry) InsertAdapterFactory(i int, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(i, f, false)
}

// AppendAdapterFactory places f after every other factory.
func (r *Registry) AppendAdapterFactory(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(len(r.factories), f, false)
}

func (r *Registry) insertLocked(i int, f Factory, custom bool) error {
	if f == nil {
		return errors.New("docbind: nil factory")
	}
	if r.frozen.Load() {
		return errors.Mark(errors.New("docbind: cannot register factories after resolution started"), ErrRegistryFrozen)
	}
	if i < 0 {
		i = 0
	}
	if i > len(r.factories) {
		i = len(r.factories)
	}
	r.factories = append(r.factories, nil)
	copy(r.factories[i+1:], r.factories[i:])
	r.factories[i] = f
	if custom || i <= r.nextCustom {
		r.nextCustom++
	}
	return nil
}

// DeclareSubtype records that sub is assignable to super, so adapters
// registered for super also serve sub.
func (r *Registry) DeclareSubtype(sub, super Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return errors.Mark(errors.New("docbind: cannot declare subtypes after resolution started"), ErrRegistryFrozen)
	}
	k := sub.Base().Key()
	r.supers[k] = append(r.supers[k], super.Base())
	return nil
}

// Assignable reports whether sub equals super or was declared (transitively)
// as its subtype. Only base identities are compared.
func (r *Registry) Assignable(sub, super Type) bool {
	target := super.Base()
	if sub.Base().Equal(target) {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	stack := []Type{sub.Base()}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		k := cur.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		for _, s := range r.supers[k] {
			if s.Equal(target) {
				return true
			}
			stack = append(stack, s)
		}
	}
	return false
}

// Clear drops every factory and cached adapter and unfreezes the registry.
// Subtype declarations describe the type hierarchy, not the chain, and
// survive.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = nil
	r.nextCustom = 0
	r.cache.Store(&sync.Map{})
	r.frozen.Store(false)
}

// Factories returns a snapshot of the chain.
func (r *Registry) Factories() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Factory(nil), r.factories...)
}

// Resolve returns the adapter for t: cached, or produced by the first factory
// in the chain that accepts t. It fails with *UnsupportedTypeError when no
// factory matches.
func (r *Registry) Resolve(t Type) (TypeAdapter, error) {
	if !t.IsValid() {
		return nil, &UnsupportedTypeError{Type: t}
	}
	key := t.Key()
	cache := r.cache.Load()
	if r.cacheOn {
		if a, ok := cache.Load(key); ok {
			metrics.Resolutions.WithLabelValues(metrics.ResultHit).Inc()
			return a.(TypeAdapter), nil
		}
	}

	r.frozen.Store(true)
	r.mu.RLock()
	chain := r.factories
	r.mu.RUnlock()

	for _, f := range chain {
		metrics.FactoryEvaluations.Inc()
		a, ok := f.Create(r, t)
		if !ok || a == nil {
			continue
		}
		metrics.Resolutions.WithLabelValues(metrics.ResultMiss).Inc()
		if !r.cacheOn {
			return a, nil
		}
		actual, loaded := cache.LoadOrStore(key, a)
		if !loaded {
			r.Logger().Debug("resolved type adapter", zap.String("type", key))
		}
		return actual.(TypeAdapter), nil
	}
	metrics.Resolutions.WithLabelValues(metrics.ResultUnsupported).Inc()
	return nil, &UnsupportedTypeError{Type: t}
}
