package docbind

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// AdapterProvider instantiates a type's preferred adapter.
type AdapterProvider func() (TypeAdapter, error)

type providerDef interface {
	adapterProvider() AdapterProvider
}

type namedDef struct {
	provider AdapterProvider
}

func (d *namedDef) adapterProvider() AdapterProvider { return d.provider }

// NamedSerializedBy describes an opaque named type that declares its own
// adapter. The provider is consulted last in the default chain, so an adapter
// registered for the name still takes precedence.
func NamedSerializedBy(name string, p AdapterProvider, args ...Type) Type {
	t := Named(name, args...)
	t.def = &namedDef{provider: p}
	return t
}

type annotatedFactory struct{}

func (annotatedFactory) Create(r *Registry, t Type) (TypeAdapter, bool) {
	pd, ok := t.def.(providerDef)
	if !ok {
		return nil, false
	}
	p := pd.adapterProvider()
	if p == nil {
		return nil, false
	}
	a, err := instantiate(p)
	if err == nil && a == nil {
		err = errors.New("provider returned no adapter")
	}
	if err != nil {
		r.Logger().Warn("failed to instantiate declared type adapter",
			zap.String("type", t.String()), zap.Error(err))
		return nil, false
	}
	return a, true
}

func instantiate(p AdapterProvider) (a TypeAdapter, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf("panic in adapter provider: %v", rec)
		}
	}()
	return p()
}
