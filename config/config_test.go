package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/config"
	"github.com/reoring/docbind/format"
	fjson "github.com/reoring/docbind/format/json"
)

type settings struct {
	Name    string
	Retries int
	Peers   map[string]int
}

func settingsType() docbind.Type {
	return docbind.NewObject[settings]("settings").Field(
		docbind.Prop("name", docbind.String,
			func(s *settings) string { return s.Name },
			func(s *settings, v string) { s.Name = v }),
		docbind.Prop("retries", docbind.Int,
			func(s *settings) int { return s.Retries },
			func(s *settings, v int) { s.Retries = v }).Describe("attempts before giving up"),
		docbind.Prop("peers", docbind.MapOf(docbind.String, docbind.Int),
			func(s *settings) map[string]int { return s.Peers },
			func(s *settings, v map[string]int) { s.Peers = v }),
	).Type()
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadProperties(t *testing.T) {
	path := writeFile(t, "docbind.properties", "format=yaml\nyaml.indent=4\ncommentWrapWidth=40\n")
	p, err := config.LoadProperties(path)
	require.NoError(t, err)
	require.Equal(t, "yaml", p.String("format", ""))
	n, err := p.Int("yaml.indent", 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	n, err = p.Int("commentWrapWidth", 0)
	require.NoError(t, err)
	require.Equal(t, 40, n)

	path = writeFile(t, "docbind.yaml", "format: json\njson:\n  indent: 2\n")
	p, err = config.LoadProperties(path)
	require.NoError(t, err)
	require.Equal(t, "json", p.String("format", ""))
	require.Equal(t, "2", p.String("json.indent", ""))

	_, err = config.LoadProperties(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DOCBIND_FORMAT", "yaml")
	t.Setenv("DOCBIND_JSON_INDENT", "8")

	p, err := config.LoadProperties(writeFile(t, "p.properties", "format=json\n"))
	require.NoError(t, err)
	require.Equal(t, "yaml", p.String("format", ""))
	require.Equal(t, "8", p.String("json.indent", ""))

	p, err = config.LoadProperties("")
	require.NoError(t, err)
	c, err := config.New(p)
	require.NoError(t, err)
	require.Equal(t, "yaml", c.Format().Name())
}

func TestSaveAndLoadFiles(t *testing.T) {
	in := &settings{Name: "svc", Retries: 3, Peers: map[string]int{"b": 2, "a": 1}}
	for _, name := range []string{"json", "sonic", "yaml"} {
		t.Run(name, func(t *testing.T) {
			c, err := config.New(config.Properties{"format": name})
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "settings"+c.Format().Extension())

			require.NoError(t, c.SaveFile(settingsType(), in, path))
			got, err := config.LoadFileAs[*settings](c, settingsType(), path)
			require.NoError(t, err)
			require.Equal(t, in, got)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}

func TestSaveJSONLayout(t *testing.T) {
	c, err := config.New(nil, config.WithFormat(fjson.New(fjson.WithIndent(2))))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, c.Save(settingsType(), &settings{Name: "svc", Retries: 3}, &buf))
	require.Equal(t, "{\n  \"name\": \"svc\",\n  // attempts before giving up\n  \"retries\": 3\n}\n", buf.String())

	got, err := config.LoadAs[settings](c, settingsType(), strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, settings{Name: "svc", Retries: 3}, got)
}

func TestFailures(t *testing.T) {
	_, err := config.New(config.Properties{"format": "toml"})
	require.True(t, errors.Is(err, format.ErrUnknownFormat))

	core, logs := observer.New(zapcore.DebugLevel)
	c, err := config.New(nil, config.WithLogger(zap.New(core)), config.WithRegistry(docbind.NewRegistry()))
	require.NoError(t, err)

	_, err = c.LoadFile(settingsType(), filepath.Join(t.TempDir(), "none.json"))
	require.True(t, errors.Is(err, docbind.ErrBackend))

	_, err = c.Load(settingsType(), strings.NewReader(`{"name": 1, "retries": "x"}`))
	require.True(t, errors.Is(err, docbind.ErrMalformedToken))

	dir := t.TempDir()
	err = c.SaveFile(settingsType(), "not settings", filepath.Join(dir, "out.json"))
	require.True(t, errors.Is(err, docbind.ErrInvalidValue))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, logs.FilterMessage("saved document").Len())
}
