package docbind_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind"
)

func TestHandler_MapOfListRoundTrip(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	typ := docbind.MapOf(docbind.String, docbind.ListOf(docbind.Int))

	toks, err := h.Encode(typ, map[string][]int{"a": {1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("a"),
		docbind.EnterList(),
		docbind.IntToken(1), docbind.IntToken(2), docbind.IntToken(3),
		docbind.ExitList(),
		docbind.ExitObject(),
	}, toks)

	v, err := h.Decode(typ, toks)
	require.NoError(t, err)
	om, ok := v.(*docbind.OrderedMap)
	require.True(t, ok)
	got, ok := om.Get("a")
	require.True(t, ok)
	require.Equal(t, []any{int32(1), int32(2), int32(3)}, got)

	typed, err := docbind.DecodeAs[map[string][]int](h, typ, toks)
	require.NoError(t, err)
	require.Equal(t, map[string][]int{"a": {1, 2, 3}}, typed)
}

func TestHandler_EnumByName(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())

	toks, err := h.Encode(ColorType, Red)
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{docbind.StringToken("RED")}, toks)

	_, err = h.Decode(ColorType, docbind.Tokens{docbind.StringToken("BLUE")})
	require.Error(t, err)
	require.True(t, isErr(err, docbind.ErrUnknownVariant))
	var uv *docbind.UnknownVariantError
	require.True(t, errors.As(err, &uv))
	require.Equal(t, "BLUE", uv.Name)
	require.True(t, uv.Type.Equal(ColorType))

	// Declared but unlisted variants cannot be written either.
	_, err = h.Encode(ColorType, Blue)
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}

func TestHandler_SerializeFlagHidesField(t *testing.T) {
	type pair struct {
		Name  string
		Count int
	}
	typ := docbind.NewObject[pair]("pair").Field(
		docbind.Prop("name", docbind.String,
			func(p *pair) string { return p.Name },
			func(p *pair, v string) { p.Name = v }),
		docbind.Prop("count", docbind.Int,
			func(p *pair) int { return p.Count },
			func(p *pair, v int) { p.Count = v }).Serialize(false),
	).Type()

	toks, err := docbind.NewHandler(docbind.NewRegistry()).Encode(typ, &pair{Name: "x", Count: 5})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("name"), docbind.StringToken("x"),
		docbind.ExitObject(),
	}, toks)
}

func TestHandler_UnknownNestedFieldSkipped(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	toks := docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("name"), docbind.StringToken("n"),
		docbind.KeyToken("extra"),
		docbind.EnterObject(),
		docbind.KeyToken("deep"), docbind.EnterList(), docbind.IntToken(1), docbind.EnterObject(), docbind.ExitObject(), docbind.ExitList(),
		docbind.ExitObject(),
		docbind.KeyToken("count"), docbind.IntToken(7),
		docbind.ExitObject(),
	}
	it, err := docbind.DecodeAs[*Item](h, itemType(), toks)
	require.NoError(t, err)
	require.Equal(t, "n", it.Name)
	require.Equal(t, 7, it.Count)
}

func TestHandler_UnsupportedTypeNamesDescriptor(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	want := docbind.Named("Widget", docbind.Long)

	_, err := h.Encode(want, 1)
	require.Error(t, err)
	require.True(t, isErr(err, docbind.ErrUnsupportedType))
	var ut *docbind.UnsupportedTypeError
	require.True(t, errors.As(err, &ut))
	require.True(t, ut.Type.Equal(want))
	require.Contains(t, err.Error(), "Widget[long]")
}

func TestHandler_ObjectRoundTrip(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	typ := itemType()
	green := Green
	in := &Item{
		Name:  "root",
		Count: 2,
		Tags:  []string{"a", "b"},
		Color: &green,
		Child: &Item{Name: "leaf"},
	}
	toks, err := h.Encode(typ, in)
	require.NoError(t, err)

	out, err := docbind.DecodeAs[*Item](h, typ, toks)
	require.NoError(t, err)
	require.Equal(t, in, out)

	// A value (not pointer) encodes the same way.
	toks2, err := h.Encode(typ, *in)
	require.NoError(t, err)
	require.Equal(t, toks, toks2)
}

func TestHandler_AbsentValuesOmitted(t *testing.T) {
	toks, err := docbind.NewHandler(docbind.NewRegistry()).Encode(itemType(), &Item{Name: "only"})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("name"), docbind.StringToken("only"),
		docbind.KeyToken("count"), docbind.IntToken(0),
		docbind.ExitObject(),
	}, toks)
}

func TestHandler_CollectionsKeepKind(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	toks := docbind.Tokens{
		docbind.EnterList(),
		docbind.StringToken("a"), docbind.StringToken("b"), docbind.StringToken("a"),
		docbind.ExitList(),
	}

	set, err := h.Decode(docbind.SetOf(docbind.String), toks)
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, set.(*docbind.Set).Values())

	q, err := h.Decode(docbind.QueueOf(docbind.String), toks)
	require.NoError(t, err)
	front, ok := q.(*docbind.Deque).PopFront()
	require.True(t, ok)
	require.Equal(t, "a", front)
	require.Equal(t, 2, q.(*docbind.Deque).Len())

	col, err := h.Decode(docbind.CollectionOf(docbind.String), toks)
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b", "a"}, col)

	back, err := h.Encode(docbind.SetOf(docbind.String), set)
	require.NoError(t, err)
	require.Len(t, back, 4)
}

func TestHandler_GoMapKeysSorted(t *testing.T) {
	toks, err := docbind.NewHandler(docbind.NewRegistry()).Encode(
		docbind.MapOf(docbind.Int, docbind.Bool),
		map[int]bool{10: true, 2: false, 1: true},
	)
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("1"), docbind.BoolToken(true),
		docbind.KeyToken("10"), docbind.BoolToken(true),
		docbind.KeyToken("2"), docbind.BoolToken(false),
		docbind.ExitObject(),
	}, toks)
}

func TestHandler_OrderedMapKeepsInsertionOrder(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	typ := docbind.MapOf(ColorType, docbind.Double)
	m := docbind.NewOrderedMap()
	m.Set(Green, 1.5)
	m.Set(Red, 2.0)

	toks, err := h.Encode(typ, m)
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("GREEN"), docbind.DoubleToken(1.5),
		docbind.KeyToken("RED"), docbind.DoubleToken(2),
		docbind.ExitObject(),
	}, toks)

	back, err := h.Decode(typ, toks)
	require.NoError(t, err)
	require.Equal(t, []any{Green, Red}, back.(*docbind.OrderedMap).Keys())
}

func TestHandler_KeyCoercionFailure(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	_, err := h.Decode(docbind.MapOf(docbind.Int, docbind.String), docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("twelve"), docbind.StringToken("x"),
		docbind.ExitObject(),
	})
	require.True(t, isErr(err, docbind.ErrKeyCoercion))
}

func TestHandler_NonKeyTypeCannotBeMapKey(t *testing.T) {
	reg := docbind.NewRegistry()
	h := docbind.NewHandler(reg)

	// The map factory declines, so resolution reports the map as unsupported.
	_, err := h.Encode(docbind.MapOf(docbind.ListOf(docbind.Int), docbind.String), map[string]string{})
	require.True(t, isErr(err, docbind.ErrUnsupportedType))

	// Asking for key behaviour directly is a programming error.
	ctx := docbind.NewWriterContext(&docbind.TokenRecorder{}, reg)
	err = ctx.WriteKey(docbind.ListOf(docbind.Int), []int{1})
	require.True(t, isErr(err, docbind.ErrKeyUnsupported))
	require.False(t, isErr(err, docbind.ErrMalformedToken))
}

func TestHandler_MalformedStreams(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())

	_, err := h.Decode(docbind.ListOf(docbind.Int), docbind.Tokens{docbind.EnterObject(), docbind.ExitObject()})
	require.True(t, isErr(err, docbind.ErrMalformedToken))

	_, err = h.Decode(docbind.ListOf(docbind.Int), docbind.Tokens{docbind.EnterList()})
	require.True(t, isErr(err, docbind.ErrMalformedToken))

	_, err = h.Decode(docbind.Int, docbind.Tokens{docbind.IntToken(1), docbind.IntToken(2)})
	require.True(t, isErr(err, docbind.ErrMalformedToken))
}

func TestHandler_BackendFailureIsMarked(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	err := h.Write(&failingWriter{}, docbind.String, "x")
	require.True(t, isErr(err, docbind.ErrBackend))
	require.False(t, isErr(err, docbind.ErrMalformedToken))
}

func TestHandler_AdapterFailureIsNotBackend(t *testing.T) {
	reg := docbind.NewRegistry()
	refuse := docbind.AdapterOf(
		func(*docbind.WriterContext, string) error { return errors.New("refused") },
		func(*docbind.ReaderContext) (string, error) { return "", errors.New("refused") },
	)
	require.NoError(t, reg.RegisterAdapter(docbind.Named("Secret"), refuse))
	h := docbind.NewHandler(reg)

	_, err := h.Encode(docbind.Named("Secret"), "x")
	require.Error(t, err)
	require.False(t, isErr(err, docbind.ErrBackend))
	require.Contains(t, err.Error(), "refused")

	_, err = h.Decode(docbind.Named("Secret"), docbind.Tokens{docbind.StringToken("x")})
	require.Error(t, err)
	require.False(t, isErr(err, docbind.ErrBackend))
}

func TestHandler_ReaderFailureIsMarked(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	_, err := h.Read(failingReader{docbind.NewTokenReader(nil)}, docbind.String)
	require.True(t, isErr(err, docbind.ErrBackend))
}

type failingReader struct{ *docbind.TokenReader }

func (failingReader) Peek() (docbind.TokenKind, error) { return 0, errors.New("connection reset") }

func (failingReader) StringValue() (string, error) { return "", errors.New("connection reset") }

type failingWriter struct{ docbind.TokenRecorder }

func (failingWriter) String(string) error { return errors.New("disk full") }
