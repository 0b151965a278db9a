package docbind_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/docbind"
)

type Limits struct {
	MaxSize int64
	Enabled bool
	Note    string
	secret  string
}

func (l *Limits) GetMaxSize() int64 { return l.MaxSize }
func (l *Limits) IsEnabled() bool   { return l.Enabled }

func observed(level zapcore.Level) (*docbind.Handler, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return docbind.NewHandler(docbind.NewRegistry(docbind.WithLogger(zap.New(core)))), logs
}

func TestPropertyName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"GetMaxSize", "maxSize", true},
		{"getName", "name", true},
		{"IsEnabled", "enabled", true},
		{"isX", "x", true},
		{"Get", "", false},
		{"Size", "", false},
		{"GetÉtat", "état", true},
	}
	for _, c := range cases {
		got, ok := docbind.PropertyName(c.in)
		require.Equal(t, c.ok, ok, c.in)
		require.Equal(t, c.want, got, c.in)
	}
	require.Equal(t, "SetMaxSize", docbind.SetterName("maxSize"))
	require.Equal(t, "", docbind.SetterName(""))
}

func limitsType() docbind.Type {
	return docbind.NewObject[Limits]("Limits").Field(
		docbind.Accessor("GetMaxSize", docbind.Long, (*Limits).GetMaxSize,
			func(l *Limits, v int64) { l.MaxSize = v }),
		docbind.Accessor("IsEnabled", docbind.Bool, (*Limits).IsEnabled,
			func(l *Limits, v bool) { l.Enabled = v }).Describe("turns limits on"),
		docbind.Optional("note", docbind.String,
			func(l *Limits) (string, bool) { return l.Note, l.Note != "" },
			func(l *Limits, v string) { l.Note = v }),
		docbind.ReadOnly("secret", docbind.String,
			func(l *Limits) string { return l.secret }),
	).Type()
}

func TestAccessorFields(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	typ := limitsType()

	toks, err := h.Encode(typ, Limits{MaxSize: 10, Enabled: true, secret: "s"})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("maxSize"), docbind.LongToken(10),
		docbind.CommentToken("turns limits on"),
		docbind.KeyToken("enabled"), docbind.BoolToken(true),
		docbind.KeyToken("secret"), docbind.StringToken("s"),
		docbind.ExitObject(),
	}, toks)

	got, err := docbind.DecodeAs[*Limits](h, typ, toks)
	require.NoError(t, err)
	// Read-only fields are written but never set.
	require.Equal(t, &Limits{MaxSize: 10, Enabled: true}, got)
}

func TestSerializeDefaults(t *testing.T) {
	typ := docbind.NewObject[Limits]("Hidden").SerializeByDefault(false).Field(
		docbind.Prop("maxSize", docbind.Long,
			func(l *Limits) int64 { return l.MaxSize },
			func(l *Limits, v int64) { l.MaxSize = v }),
		docbind.Prop("note", docbind.String,
			func(l *Limits) string { return l.Note },
			func(l *Limits, v string) { l.Note = v }).Serialize(true),
		docbind.Prop("enabled", docbind.Bool,
			func(l *Limits) bool { return l.Enabled },
			nil).Serialize(true),
	).Type()

	h := docbind.NewHandler(docbind.NewRegistry())
	toks, err := h.Encode(typ, &Limits{MaxSize: 1, Note: "n"})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("note"), docbind.StringToken("n"),
		docbind.KeyToken("enabled"), docbind.BoolToken(false),
		docbind.ExitObject(),
	}, toks)

	// Hidden fields are still readable.
	got, err := docbind.DecodeAs[*Limits](h, typ, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("maxSize"), docbind.LongToken(7),
		docbind.KeyToken("enabled"), docbind.BoolToken(true),
		docbind.ExitObject(),
	})
	require.NoError(t, err)
	require.Equal(t, &Limits{MaxSize: 7}, got)
}

func TestGetterFailureSkipsField(t *testing.T) {
	h, logs := observed(zapcore.WarnLevel)
	typ := docbind.NewObject[Limits]("Fragile").Field(
		docbind.Prop("maxSize", docbind.Long,
			func(l *Limits) int64 { panic("boom") },
			func(l *Limits, v int64) { l.MaxSize = v }),
		docbind.Prop("note", docbind.String,
			func(l *Limits) string { return l.Note },
			func(l *Limits, v string) { l.Note = v }),
	).Type()

	toks, err := h.Encode(typ, &Limits{Note: "kept"})
	require.NoError(t, err)
	require.Equal(t, docbind.Tokens{
		docbind.EnterObject(), docbind.KeyToken("note"), docbind.StringToken("kept"), docbind.ExitObject(),
	}, toks)

	entries := logs.FilterMessage("error while getting object property").All()
	require.Len(t, entries, 1)
	require.Equal(t, "maxSize", entries[0].ContextMap()["field"])
}

func TestSetterFailureSkipsField(t *testing.T) {
	h, logs := observed(zapcore.WarnLevel)
	typ := docbind.NewObject[Limits]("Strict").Field(
		docbind.PropE("maxSize", docbind.Long,
			func(l *Limits) int64 { return l.MaxSize },
			func(l *Limits, v int64) error {
				if v < 0 {
					return errors.New("negative size")
				}
				l.MaxSize = v
				return nil
			}),
		docbind.Prop("note", docbind.String,
			func(l *Limits) string { return l.Note },
			func(l *Limits, v string) { l.Note = v }),
	).Type()

	got, err := docbind.DecodeAs[*Limits](h, typ, docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("maxSize"), docbind.LongToken(-1),
		docbind.KeyToken("note"), docbind.StringToken("n"),
		docbind.ExitObject(),
	})
	require.NoError(t, err)
	require.Equal(t, &Limits{Note: "n"}, got)
	require.Equal(t, 1, logs.FilterMessage("error while setting object property").Len())
}

func TestUnknownKeysAreSkipped(t *testing.T) {
	h, logs := observed(zapcore.DebugLevel)
	got, err := docbind.DecodeAs[*Item](h, itemType(), docbind.Tokens{
		docbind.EnterObject(),
		docbind.KeyToken("extra"),
		docbind.EnterObject(),
		docbind.KeyToken("deep"), docbind.EnterList(), docbind.LongToken(1), docbind.ExitList(),
		docbind.ExitObject(),
		docbind.KeyToken("name"), docbind.StringToken("a"),
		docbind.ExitObject(),
	})
	require.NoError(t, err)
	require.Equal(t, &Item{Name: "a"}, got)
	require.Equal(t, 1, logs.FilterMessage("skipping unknown object property").Len())
}

func TestObjectRejectsForeignValue(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	_, err := h.Encode(itemType(), "not an item")
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}

func TestObjectReadTypeMismatch(t *testing.T) {
	h := docbind.NewHandler(docbind.NewRegistry())
	_, err := h.Decode(itemType(), docbind.Tokens{
		docbind.EnterObject(), docbind.KeyToken("count"), docbind.StringToken("x"), docbind.ExitObject(),
	})
	require.True(t, isErr(err, docbind.ErrMalformedToken))
}

func TestCustomConstructor(t *testing.T) {
	typ := docbind.NewObject[Limits]("Defaults").
		New(func() *Limits { return &Limits{MaxSize: 64} }).
		Field(docbind.Prop("note", docbind.String,
			func(l *Limits) string { return l.Note },
			func(l *Limits, v string) { l.Note = v })).
		Type()

	h := docbind.NewHandler(docbind.NewRegistry())
	got, err := docbind.DecodeAs[*Limits](h, typ, docbind.Tokens{docbind.EnterObject(), docbind.ExitObject()})
	require.NoError(t, err)
	require.Equal(t, int64(64), got.MaxSize)
}
