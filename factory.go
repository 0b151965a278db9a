package docbind

// Factory resolves a descriptor to an adapter or declines with ok=false.
// Factories are stateless; the registry is passed in so a factory can check
// properties of nested types (e.g. whether a key type supports keys).
type Factory interface {
	Create(r *Registry, t Type) (TypeAdapter, bool)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(r *Registry, t Type) (TypeAdapter, bool)

func (f FactoryFunc) Create(r *Registry, t Type) (TypeAdapter, bool) { return f(r, t) }

// DefaultFactories returns the built-in chain in priority order: fragment
// wrappers first so foreign pre-parsed documents are claimed before any
// structural matching, the broad object factory near the end and the
// SerializedBy override last.
func DefaultFactories() []Factory {
	return []Factory{
		fragmentFactory{},
		collectionFactory{},
		mapFactory{},
		primitiveFactory{},
		enumFactory{},
		objectFactory{},
		annotatedFactory{},
	}
}
