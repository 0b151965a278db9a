package docbind_test

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind"
)

func TestYAMLNodeFragment(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
host: localhost
# listen port
port: 8080
ratio: 0.5
big: 0x10
debug: true
missing: ~
tags: [a, 1]
`), &doc))

	h := docbind.NewHandler(docbind.NewRegistry())
	toks, err := h.Encode(docbind.YAMLNode, &doc)
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("host"), docbind.StringToken("localhost"),
		docbind.CommentToken("listen port"),
		docbind.KeyToken("port"), docbind.LongToken(8080),
		docbind.KeyToken("ratio"), docbind.DoubleToken(0.5),
		docbind.KeyToken("big"), docbind.LongToken(16),
		docbind.KeyToken("debug"), docbind.BoolToken(true),
		docbind.KeyToken("tags"), docbind.EnterList(), docbind.StringToken("a"), docbind.LongToken(1), docbind.ExitList(),
		docbind.ExitObject(),
	}, toks)

	n, err := docbind.DecodeAs[*yaml.Node](h, docbind.YAMLNode, toks)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, n.Decode(&got))
	require.Equal(t, map[string]any{
		"host": "localhost", "port": 8080, "ratio": 0.5, "big": 16, "debug": true, "tags": []any{"a", 1},
	}, got)
}

func TestYAMLNullOutsideMapping(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("[1, null]"), &doc))
	_, err := docbind.NewHandler(docbind.NewRegistry()).Encode(docbind.YAMLNode, &doc)
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}

func TestRawJSONFragment(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	toks, err := h.Encode(docbind.RawJSON, gojson.RawMessage(`{"a": [1, 2.0, 2.5e0], "b": null, "c": {"d": "x"}}`))
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("a"), docbind.EnterList(),
		docbind.LongToken(1), docbind.LongToken(2), docbind.DoubleToken(2.5),
		docbind.ExitList(),
		docbind.KeyToken("c"), docbind.EnterObject(), docbind.KeyToken("d"), docbind.StringToken("x"), docbind.ExitObject(),
		docbind.ExitObject(),
	}, toks)

	raw, err := docbind.DecodeAs[gojson.RawMessage](h, docbind.RawJSON, toks)
	require.NoError(t, err)
	require.Equal(t, `{"a":[1,2,2.5],"c":{"d":"x"}}`, string(raw))

	_, err = h.Encode(docbind.RawJSON, gojson.RawMessage(`[1] 2`))
	require.True(t, isErr(err, docbind.ErrMalformedToken))
	_, err = h.Encode(docbind.RawJSON, gojson.RawMessage(`{"a": `))
	require.True(t, isErr(err, docbind.ErrMalformedToken))
	_, err = h.Encode(docbind.RawJSON, gojson.RawMessage(`[null]`))
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}

func TestProtoFragments(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"z":    1.0,
		"a":    []any{"x", true, 1.25},
		"none": nil,
	})
	require.NoError(t, err)

	h := docbind.NewHandler(docbind.NewRegistry())
	toks, err := h.Encode(docbind.ProtoStruct, s)
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("a"), docbind.EnterList(),
		docbind.StringToken("x"), docbind.BoolToken(true), docbind.DoubleToken(1.25),
		docbind.ExitList(),
		docbind.KeyToken("z"), docbind.LongToken(1),
		docbind.ExitObject(),
	}, toks)

	back, err := docbind.DecodeAs[*structpb.Struct](h, docbind.ProtoStruct, toks)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{"x", true, 1.25}, "z": 1.0}, back.AsMap())

	v, err := docbind.DecodeAs[*structpb.Value](h, docbind.ProtoValue, docbind.Tokens{docbind.IntToken(3)})
	require.NoError(t, err)
	require.Equal(t, 3.0, v.GetNumberValue())

	l, err := docbind.DecodeAs[*structpb.ListValue](h, docbind.ProtoList, docbind.Tokens{
		docbind.EnterList(), docbind.StringToken("a"), docbind.ExitList(),
	})
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, l.AsSlice())

	_, err = h.Encode(docbind.ProtoValue, structpb.NewNullValue())
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}

func TestFragmentInsideObject(t *testing.T) {
	type envelope struct{ Body gojson.RawMessage }
	typ := docbind.NewObject[envelope]("envelope").Field(
		docbind.Prop("body", docbind.RawJSON,
			func(e *envelope) gojson.RawMessage { return e.Body },
			func(e *envelope, v gojson.RawMessage) { e.Body = v }),
	).Type()

	h := docbind.NewHandler(docbind.NewRegistry())
	toks, err := h.Encode(typ, &envelope{Body: gojson.RawMessage(`{"k":true}`)})
	require.NoError(t, err)
	got, err := docbind.DecodeAs[*envelope](h, typ, toks)
	require.NoError(t, err)
	require.JSONEq(t, `{"k":true}`, string(got.Body))
}
