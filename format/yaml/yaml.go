// Package yaml is the YAML backend of docbind, built on gopkg.in/yaml.v3.
// Documents are read into a node tree and replayed as tokens; written tokens
// build a node tree that is encoded when the root value completes.
//
// Properties understood by Configure:
//
//	yaml.indent         spaces per level (default 2)
//	yaml.flowStyle      write containers in flow style (default false)
//	yaml.scalarStyle    plain, double, single, literal or folded (default plain)
//	yaml.explicitStart  begin every document with "---" (default false)
//	yaml.width          comment wrap width, -1 disables (default 80)
package yaml

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/format"
)

const (
	PropIndent        = "yaml.indent"
	PropFlowStyle     = "yaml.flowStyle"
	PropScalarStyle   = "yaml.scalarStyle"
	PropExplicitStart = "yaml.explicitStart"
	PropWidth         = "yaml.width"

	defaultIndent = 2
	defaultWidth  = 80
)

func init() {
	format.Register("yaml", Configure)
	format.Register("snakeyaml", Configure)
}

var scalarStyles = map[string]yaml.Style{
	"plain":   0,
	"double":  yaml.DoubleQuotedStyle,
	"single":  yaml.SingleQuotedStyle,
	"literal": yaml.LiteralStyle,
	"folded":  yaml.FoldedStyle,
}

// Options controls the writer.
type Options struct {
	Indent        int
	FlowStyle     bool
	ScalarStyle   yaml.Style
	ExplicitStart bool
	// Width wraps comments; <= 0 disables wrapping.
	Width int
}

// Format is a configured YAML backend.
type Format struct {
	opt Options
}

var _ format.Format = (*Format)(nil)

// New returns a YAML format. A zero Indent means the default of 2.
func New(opt Options) *Format {
	if opt.Indent <= 0 {
		opt.Indent = defaultIndent
	}
	return &Format{opt: opt}
}

// Configure builds a Format from properties.
func Configure(p format.Properties) (format.Format, error) {
	opt := Options{}
	var err error
	if opt.Indent, err = p.Int(PropIndent, defaultIndent); err != nil {
		return nil, err
	}
	if opt.FlowStyle, err = p.Bool(PropFlowStyle, false); err != nil {
		return nil, err
	}
	if opt.ExplicitStart, err = p.Bool(PropExplicitStart, false); err != nil {
		return nil, err
	}
	if opt.Width, err = p.Int(PropWidth, defaultWidth); err != nil {
		return nil, err
	}
	style := strings.ToLower(p.String(PropScalarStyle, "plain"))
	s, ok := scalarStyles[style]
	if !ok {
		return nil, errors.Newf("yaml: invalid %s %q", PropScalarStyle, style)
	}
	opt.ScalarStyle = s
	return New(opt), nil
}

func (f *Format) Name() string      { return "yaml" }
func (f *Format) Extension() string { return ".yaml" }
func (f *Format) MimeType() string  { return "application/yaml" }

// Options returns the writer options.
func (f *Format) Options() Options { return f.opt }

func (f *Format) NewWriter(w io.Writer) (format.Writer, error) {
	if w == nil {
		return nil, errors.New("yaml: nil writer")
	}
	return NewWriter(w, f.opt), nil
}

func (f *Format) NewReader(r io.Reader) (docbind.Reader, error) {
	if r == nil {
		return nil, errors.New("yaml: nil reader")
	}
	return NewReader(r)
}
