// Package format binds the docbind token protocol to concrete document
// formats. Backends register a Configurer under one or more names; callers
// pick one by name or from a property map (key "format").
//
// Backends live in subpackages and register themselves in init, so a program
// must import them (usually blank) before Lookup can find them:
//
//	import (
//		_ "github.com/reoring/docbind/format/json"
//		_ "github.com/reoring/docbind/format/yaml"
//	)
package format

import (
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/reoring/docbind"
)

// ErrUnknownFormat is returned when no backend is registered under a name.
var ErrUnknownFormat = errors.New("format: unknown format")

// PropFormat selects the backend in FromProperties.
const PropFormat = "format"

// DefaultName is used when no format property is set.
const DefaultName = "json"

// Writer is a docbind.Writer bound to an output stream. Close releases it
// and reports a value left incomplete; it never closes the stream itself.
type Writer interface {
	docbind.Writer
	Close() error
}

// Format describes one configured backend.
type Format interface {
	Name() string
	Extension() string
	MimeType() string
	NewWriter(w io.Writer) (Writer, error)
	NewReader(r io.Reader) (docbind.Reader, error)
}

// Configurer builds a Format from backend properties.
type Configurer func(p Properties) (Format, error)

var (
	mu         sync.RWMutex
	registered = map[string]Configurer{}
)

// Register installs c under name (case-insensitive), replacing any previous
// registration.
func Register(name string, c Configurer) {
	if name == "" || c == nil {
		return
	}
	mu.Lock()
	registered[strings.ToLower(name)] = c
	mu.Unlock()
}

// Lookup returns the configurer registered under name.
func Lookup(name string) (Configurer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registered[strings.ToLower(name)]
	return c, ok
}

// Names lists the registered names in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := lo.Keys(registered)
	slices.Sort(out)
	return out
}

// New configures the backend registered under name.
func New(name string, p Properties) (Format, error) {
	c, ok := Lookup(name)
	if !ok {
		return nil, errors.Mark(errors.Newf("format: %q is not registered (have %v)", name, Names()), ErrUnknownFormat)
	}
	f, err := c(p)
	if err != nil {
		return nil, errors.Wrapf(err, "format: configure %q", name)
	}
	return f, nil
}

// FromProperties configures the backend named by the "format" property,
// JSON when unset.
func FromProperties(p Properties) (Format, error) {
	return New(p.String(PropFormat, DefaultName), p)
}
