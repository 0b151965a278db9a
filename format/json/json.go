// Package json is the JSON backend of docbind. Documents are read either
// streaming, through goccy/go-json's tokenizer, or buffered, through
// bytedance/sonic, and written through json-iterator.
//
// Properties understood by Configure:
//
//	json.indent         spaces per level, 0 for compact output (default 4)
//	json.lenient        write comments as "//" lines and accept // and /* */
//	                    comments on read (default true)
//	commentWrapWidth    wrap comments at this width, -1 disables (default 80)
//	json.duplicateKeys  ignore, warn or error (default ignore)
//	json.maxDepth       maximum container nesting, 0 for unlimited
//	json.driver         gojson (streaming) or sonic (buffered)
package json

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/format"
	"github.com/reoring/docbind/internal/jsontok"
	"github.com/reoring/docbind/internal/log"
)

const (
	PropIndent           = "json.indent"
	PropLenient          = "json.lenient"
	PropCommentWrapWidth = "commentWrapWidth"
	PropDuplicateKeys    = "json.duplicateKeys"
	PropMaxDepth         = "json.maxDepth"
	PropDriver           = "json.driver"

	defaultIndent       = 4
	defaultCommentWidth = 80
)

func init() {
	format.Register("json", Configure)
	format.Register("gson", Configure)
	format.Register("gojson", Configure)
	format.Register("sonic", func(p format.Properties) (format.Format, error) {
		f, err := Configure(p)
		if err != nil {
			return nil, err
		}
		f.(*Format).driver = Buffered
		return f, nil
	})
}

// DuplicateKeys selects how repeated object keys are treated while reading.
type DuplicateKeys int

const (
	DuplicatesIgnore DuplicateKeys = iota
	DuplicatesWarn
	DuplicatesError
)

func (d DuplicateKeys) strictness() jsontok.DuplicateStrictness {
	switch d {
	case DuplicatesWarn:
		return jsontok.DupWarn
	case DuplicatesError:
		return jsontok.DupError
	}
	return jsontok.DupIgnore
}

// Driver produces readers. Streaming and Buffered are provided.
type Driver interface {
	Name() string
	NewReader(r io.Reader, f *Format) (docbind.Reader, error)
}

var (
	// Streaming tokenizes the input incrementally with goccy/go-json.
	Streaming Driver = streamingDriver{}
	// Buffered parses the whole document with sonic first.
	Buffered Driver = bufferedDriver{}
)

type streamingDriver struct{}

func (streamingDriver) Name() string { return "gojson" }

func (streamingDriver) NewReader(r io.Reader, f *Format) (docbind.Reader, error) {
	l := log.Or(f.logger)
	return NewReader(f.source(r), jsontok.Options{
		OnDuplicate: f.duplicates.strictness(),
		MaxDepth:    f.maxDepth,
		OnIssue: func(is jsontok.Issue) {
			l.Warn("json input issue",
				zap.String("code", is.Code),
				zap.String("path", is.Path),
				zap.String("message", is.Message))
		},
	}), nil
}

type bufferedDriver struct{}

func (bufferedDriver) Name() string { return "sonic" }

func (bufferedDriver) NewReader(r io.Reader, f *Format) (docbind.Reader, error) {
	return NewBufferedReader(f.source(r))
}

// Format is a configured JSON backend.
type Format struct {
	indent       int
	lenient      bool
	commentWidth int
	duplicates   DuplicateKeys
	maxDepth     int
	driver       Driver
	logger       *zap.Logger
}

var _ format.Format = (*Format)(nil)

// Option configures a Format.
type Option func(*Format)

// WithIndent sets the spaces per nesting level; 0 writes compact output.
func WithIndent(n int) Option { return func(f *Format) { f.indent = n } }

// WithLenient enables comments: written as "//" lines, skipped on read.
func WithLenient(on bool) Option { return func(f *Format) { f.lenient = on } }

// WithCommentWidth sets the comment wrap width; negative disables wrapping.
func WithCommentWidth(n int) Option { return func(f *Format) { f.commentWidth = n } }

// WithDuplicateKeys sets duplicate key handling for the streaming driver.
func WithDuplicateKeys(d DuplicateKeys) Option { return func(f *Format) { f.duplicates = d } }

// WithMaxDepth limits nesting for the streaming driver.
func WithMaxDepth(n int) Option { return func(f *Format) { f.maxDepth = n } }

// WithDriver selects the reader implementation.
func WithDriver(d Driver) Option { return func(f *Format) { f.driver = d } }

// WithLogger sets the logger for input warnings.
func WithLogger(l *zap.Logger) Option { return func(f *Format) { f.logger = l } }

// New returns a JSON format with defaults: 4-space indent, lenient comments
// wrapped at 80 columns, streaming reads.
func New(opts ...Option) *Format {
	f := &Format{
		indent:       defaultIndent,
		lenient:      true,
		commentWidth: defaultCommentWidth,
		driver:       Streaming,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.driver == nil {
		f.driver = Streaming
	}
	return f
}

// Configure builds a Format from properties.
func Configure(p format.Properties) (format.Format, error) {
	var opts []Option
	indent, err := p.Int(PropIndent, defaultIndent)
	if err != nil {
		return nil, err
	}
	lenient, err := p.Bool(PropLenient, true)
	if err != nil {
		return nil, err
	}
	width, err := p.Int(PropCommentWrapWidth, defaultCommentWidth)
	if err != nil {
		return nil, err
	}
	depth, err := p.Int(PropMaxDepth, 0)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithIndent(indent), WithLenient(lenient), WithCommentWidth(width), WithMaxDepth(depth))

	switch d := strings.ToLower(p.String(PropDuplicateKeys, "ignore")); d {
	case "ignore":
	case "warn":
		opts = append(opts, WithDuplicateKeys(DuplicatesWarn))
	case "error":
		opts = append(opts, WithDuplicateKeys(DuplicatesError))
	default:
		return nil, errors.Newf("json: invalid %s %q", PropDuplicateKeys, d)
	}

	switch d := strings.ToLower(p.String(PropDriver, Streaming.Name())); d {
	case Streaming.Name(), "json", "gson":
	case Buffered.Name():
		opts = append(opts, WithDriver(Buffered))
	default:
		return nil, errors.Newf("json: unknown driver %q", d)
	}
	return New(opts...), nil
}

func (f *Format) Name() string      { return "json" }
func (f *Format) Extension() string { return ".json" }
func (f *Format) MimeType() string  { return "application/json" }

func (f *Format) source(r io.Reader) io.Reader {
	if f.lenient {
		return jsontok.StripComments(r)
	}
	return r
}

// Driver returns the configured reader implementation.
func (f *Format) Driver() Driver { return f.driver }

func (f *Format) NewWriter(w io.Writer) (format.Writer, error) {
	if w == nil {
		return nil, errors.New("json: nil writer")
	}
	indent := ""
	if f.indent > 0 {
		indent = strings.Repeat(" ", f.indent)
	}
	return NewWriter(w, indent, f.lenient, f.commentWidth), nil
}

func (f *Format) NewReader(r io.Reader) (docbind.Reader, error) {
	if r == nil {
		return nil, errors.New("json: nil reader")
	}
	return f.driver.NewReader(r, f)
}
