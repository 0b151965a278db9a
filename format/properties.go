package format

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Properties is a flat, case-insensitive string map of backend settings such
// as "json.indent" or "yaml.flowStyle". Keys are stored lower-cased.
type Properties map[string]string

// NewProperties copies m, normalizing keys.
func NewProperties(m map[string]string) Properties {
	p := make(Properties, len(m))
	for k, v := range m {
		p.Set(k, v)
	}
	return p
}

// Set stores v under k.
func (p Properties) Set(k, v string) { p[strings.ToLower(k)] = v }

// Get returns the raw value of k.
func (p Properties) Get(k string) (string, bool) {
	v, ok := p[strings.ToLower(k)]
	return v, ok
}

// String returns k or def when unset or blank.
func (p Properties) String(k, def string) string {
	if v, ok := p.Get(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// Int parses k as a decimal integer.
func (p Properties) Int(k string, def int) (int, error) {
	v := p.String(k, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.Wrapf(err, "format: property %s", k)
	}
	return n, nil
}

// Bool parses k with strconv.ParseBool.
func (p Properties) Bool(k string, def bool) (bool, error) {
	v := p.String(k, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.Wrapf(err, "format: property %s", k)
	}
	return b, nil
}
