package yaml_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/format"
	fyaml "github.com/reoring/docbind/format/yaml"
)

type server struct {
	Host string
	Port int
	Tags []string
}

func serverType() docbind.Type {
	return docbind.NewObject[server]("server").Field(
		docbind.Prop("host", docbind.String,
			func(s *server) string { return s.Host },
			func(s *server, v string) { s.Host = v }),
		docbind.Prop("port", docbind.Int,
			func(s *server) int { return s.Port },
			func(s *server, v int) { s.Port = v }).Describe("listen port"),
		docbind.Prop("tags", docbind.ListOf(docbind.String),
			func(s *server) []string { return s.Tags },
			func(s *server, v []string) { s.Tags = v }),
	).Type()
}

func write(t *testing.T, f format.Format, typ docbind.Type, v any) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := f.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, docbind.NewHandler(nil).Write(w, typ, v))
	require.NoError(t, w.Close())
	return buf.String()
}

func read(f format.Format, typ docbind.Type, doc string) (any, error) {
	r, err := f.NewReader(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	return docbind.NewHandler(nil).Read(r, typ)
}

func TestWriteWithComments(t *testing.T) {
	out := write(t, fyaml.New(fyaml.Options{}), serverType(), &server{Host: "localhost", Port: 8080})
	require.Equal(t, "host: localhost\n# listen port\nport: 8080\n", out)
}

func TestWriteOptions(t *testing.T) {
	f, err := fyaml.Configure(format.Properties{
		"yaml.flowstyle":     "true",
		"yaml.explicitstart": "true",
	})
	require.NoError(t, err)
	out := write(t, f, serverType(), &server{Host: "h", Port: 1})
	require.Equal(t, "---\n{host: h, port: 1}\n", out)

	f = fyaml.New(fyaml.Options{ScalarStyle: 0})
	f2, err := fyaml.Configure(format.Properties{"yaml.scalarstyle": "double"})
	require.NoError(t, err)
	require.Equal(t, "host: h\n# listen port\nport: 1\n", write(t, f, serverType(), &server{Host: "h", Port: 1}))
	require.Equal(t, "host: \"h\"\n# listen port\nport: 1\n", write(t, f2, serverType(), &server{Host: "h", Port: 1}))

	_, err = fyaml.Configure(format.Properties{"yaml.scalarstyle": "fancy"})
	require.Error(t, err)
}

func TestCommentWrapping(t *testing.T) {
	typ := docbind.NewObject[server]("server").Field(
		docbind.ReadOnly("host", docbind.String, func(s *server) string { return s.Host }).
			Describe("the address to listen on"),
	).Type()
	out := write(t, fyaml.New(fyaml.Options{Width: 10}), typ, &server{Host: "h"})
	require.Equal(t, "# the\n# address to\n# listen on\nhost: h\n", out)
}

func TestRoundTrip(t *testing.T) {
	f := fyaml.New(fyaml.Options{})
	in := &server{Host: "123", Port: 9, Tags: []string{"true", "b"}}
	doc := write(t, f, serverType(), in)

	v, err := read(f, serverType(), doc)
	require.NoError(t, err)
	require.Equal(t, in, v)

	// Strings that look like other scalars are quoted and keep their kind.
	r, err := f.NewReader(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, r.EnterObject())
	_, err = r.Key()
	require.NoError(t, err)
	k, err := r.Peek()
	require.NoError(t, err)
	require.Equal(t, docbind.TokenString, k)
}

func TestReaderScalarTags(t *testing.T) {
	r, err := fyaml.NewReader(strings.NewReader("[0x10, 1.5, .inf, true, ~x, '7']"))
	require.NoError(t, err)
	require.NoError(t, r.EnterList())
	var kinds []docbind.TokenKind
	for {
		k, err := r.Peek()
		require.NoError(t, err)
		if k == docbind.TokenExitList {
			break
		}
		kinds = append(kinds, k)
		require.NoError(t, r.SkipDeep())
	}
	require.Equal(t, []docbind.TokenKind{
		docbind.TokenLong, docbind.TokenDouble, docbind.TokenDouble, docbind.TokenBool,
		docbind.TokenString, docbind.TokenString,
	}, kinds)

	v, err := read(fyaml.New(fyaml.Options{}), docbind.Long, "0x10")
	require.NoError(t, err)
	require.Equal(t, int64(16), v)
}

func TestReaderNulls(t *testing.T) {
	f := fyaml.New(fyaml.Options{})
	v, err := read(f, serverType(), "host: h\nport: null\n")
	require.NoError(t, err)
	require.Equal(t, &server{Host: "h"}, v)

	_, err = read(f, docbind.ListOf(docbind.String), "[a, null]")
	require.True(t, errors.Is(err, docbind.ErrInvalidValue))

	_, err = read(f, serverType(), "")
	require.True(t, errors.Is(err, docbind.ErrMalformedToken))
	_, err = read(f, serverType(), "host: [unclosed")
	require.True(t, errors.Is(err, docbind.ErrMalformedToken))
}

func TestFormatSelection(t *testing.T) {
	for _, name := range []string{"yaml", "snakeyaml", "YAML"} {
		f, err := format.FromProperties(format.NewProperties(map[string]string{"format": name}))
		require.NoError(t, err, name)
		require.Equal(t, "yaml", f.Name())
		require.Equal(t, 2, f.(*fyaml.Format).Options().Indent)
	}
}

func TestWriterStructureErrors(t *testing.T) {
	w := fyaml.NewWriter(&bytes.Buffer{}, fyaml.Options{})
	require.True(t, errors.Is(w.Key("k"), docbind.ErrMalformedToken))
	require.True(t, errors.Is(w.ExitList(), docbind.ErrMalformedToken))
	require.NoError(t, w.EnterObject())
	require.True(t, errors.Is(w.String("v"), docbind.ErrMalformedToken))
	require.True(t, errors.Is(w.Close(), docbind.ErrMalformedToken))
}

func TestQuotedNumbersReadAsNumbers(t *testing.T) {
	v, err := read(fyaml.New(fyaml.Options{}), serverType(), "host: h\nport: \"8080\"\n")
	require.NoError(t, err)
	require.Equal(t, 8080, v.(*server).Port)

	_, err = read(fyaml.New(fyaml.Options{}), serverType(), "host: h\nport: \"eighty\"\n")
	require.True(t, errors.Is(err, docbind.ErrMalformedToken))
}
