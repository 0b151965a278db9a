package docbind

// collectionAdapter writes any sequence as a list and reads into the
// container matching its descriptor kind.
type collectionAdapter struct {
	typ  Type
	elem Type
}

func (a *collectionAdapter) Write(ctx *WriterContext, v any) error {
	vals, ok := sequenceOf(v)
	if !ok || v == nil {
		return invalidValue(a.typ, v)
	}
	if err := ctx.EnterList(); err != nil {
		return err
	}
	for _, e := range vals {
		if err := ctx.WriteValue(a.elem, e); err != nil {
			return err
		}
	}
	return ctx.ExitList()
}

func (a *collectionAdapter) Read(ctx *ReaderContext) (any, error) {
	if err := ctx.EnterList(); err != nil {
		return nil, err
	}
	add, result := a.container()
	for {
		k, err := ctx.Peek()
		if err != nil {
			return nil, err
		}
		if k == TokenExitList {
			break
		}
		e, err := ctx.ReadValue(a.elem)
		if err != nil {
			return nil, err
		}
		add(e)
	}
	if err := ctx.ExitList(); err != nil {
		return nil, err
	}
	return result(), nil
}

// container returns an appender and a finisher for a fresh container of the
// descriptor's kind.
func (a *collectionAdapter) container() (func(any), func() any) {
	switch a.typ.Kind() {
	case KindSet:
		s := NewSet()
		return func(v any) { s.Add(v) }, func() any { return s }
	case KindQueue:
		d := NewDeque()
		return d.PushBack, func() any { return d }
	default:
		l := make([]any, 0)
		return func(v any) { l = append(l, v) }, func() any { return l }
	}
}

type collectionFactory struct{}

func (collectionFactory) Create(_ *Registry, t Type) (TypeAdapter, bool) {
	if !t.Kind().IsContainer() || len(t.args) != 1 {
		return nil, false
	}
	return &collectionAdapter{typ: t, elem: t.args[0]}, true
}
