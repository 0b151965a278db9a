// Package config is the file-oriented façade over docbind: it picks a format
// backend from properties and loads or saves typed values with it.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/format"
	fjson "github.com/reoring/docbind/format/json"
	fyaml "github.com/reoring/docbind/format/yaml"
	"github.com/reoring/docbind/internal/log"
)

// EnvPrefix prefixes environment overrides, e.g. DOCBIND_JSON_INDENT.
const EnvPrefix = "DOCBIND"

// Properties are the flat backend settings.
type Properties = format.Properties

// KnownKeys lists the properties that can be overridden from the
// environment without appearing in a file.
var KnownKeys = []string{
	format.PropFormat,
	fjson.PropIndent,
	fjson.PropLenient,
	fjson.PropCommentWrapWidth,
	fjson.PropDuplicateKeys,
	fjson.PropMaxDepth,
	fjson.PropDriver,
	fyaml.PropIndent,
	fyaml.PropFlowStyle,
	fyaml.PropScalarStyle,
	fyaml.PropExplicitStart,
	fyaml.PropWidth,
}

// LoadProperties reads a .properties, YAML or JSON file (chosen by
// extension) and applies DOCBIND_* environment overrides. An empty path
// reads the environment only.
func LoadProperties(path string) (Properties, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range KnownKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, errors.Wrapf(err, "config: bind %s", k)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}
	p := Properties{}
	for _, k := range v.AllKeys() {
		if s := v.GetString(k); s != "" {
			p.Set(k, s)
		}
	}
	return p, nil
}

// Configuration binds a handler to a format.
type Configuration struct {
	handler *docbind.Handler
	format  format.Format
	logger  *zap.Logger
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithRegistry resolves adapters through r instead of docbind.Default().
func WithRegistry(r *docbind.Registry) Option {
	return func(c *Configuration) { c.handler = docbind.NewHandler(r) }
}

// WithFormat bypasses property based format selection.
func WithFormat(f format.Format) Option { return func(c *Configuration) { c.format = f } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Configuration) { c.logger = l } }

// New returns a configuration whose format is chosen by p.
func New(p Properties, opts ...Option) (*Configuration, error) {
	c := &Configuration{}
	for _, opt := range opts {
		opt(c)
	}
	if c.handler == nil {
		c.handler = docbind.NewHandler(nil)
	}
	if c.format == nil {
		f, err := format.FromProperties(p)
		if err != nil {
			return nil, err
		}
		c.format = f
	}
	c.logger = log.Or(c.logger)
	return c, nil
}

// Handler returns the document handler.
func (c *Configuration) Handler() *docbind.Handler { return c.handler }

// Format returns the selected format.
func (c *Configuration) Format() format.Format { return c.format }

// Load reads one value of type t from r.
func (c *Configuration) Load(t docbind.Type, r io.Reader) (any, error) {
	rd, err := c.format.NewReader(r)
	if err != nil {
		return nil, err
	}
	return c.handler.Read(rd, t)
}

// LoadFile reads one value of type t from the file at path.
func (c *Configuration) LoadFile(t docbind.Type, path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, docbind.BackendError(err, "config: open")
	}
	defer f.Close()
	v, err := c.Load(t, f)
	if err != nil {
		return nil, errors.Wrapf(err, "config: load %s", path)
	}
	c.logger.Debug("loaded document",
		zap.String("path", path), zap.String("format", c.format.Name()), zap.Stringer("type", t))
	return v, nil
}

// Save writes v as t to w.
func (c *Configuration) Save(t docbind.Type, v any, w io.Writer) error {
	fw, err := c.format.NewWriter(w)
	if err != nil {
		return err
	}
	if err := c.handler.Write(fw, t, v); err != nil {
		return err
	}
	return fw.Close()
}

// SaveFile writes v as t to path, replacing the file only once the document
// was written completely.
func (c *Configuration) SaveFile(t docbind.Type, v any, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return docbind.BackendError(err, "config: create")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = c.Save(t, v, tmp); err != nil {
		return errors.Wrapf(err, "config: save %s", path)
	}
	if err = tmp.Close(); err != nil {
		return docbind.BackendError(err, "config: close")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return docbind.BackendError(err, "config: rename")
	}
	c.logger.Debug("saved document",
		zap.String("path", path), zap.String("format", c.format.Name()), zap.Stringer("type", t))
	return nil
}

// LoadAs reads t from r and converts the result into T.
func LoadAs[T any](c *Configuration, t docbind.Type, r io.Reader) (T, error) {
	v, err := c.Load(t, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return docbind.Assign[T](v)
}

// LoadFileAs reads t from path and converts the result into T.
func LoadFileAs[T any](c *Configuration, t docbind.Type, path string) (T, error) {
	v, err := c.LoadFile(t, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return docbind.Assign[T](v)
}
