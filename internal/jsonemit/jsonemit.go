// Package jsonemit writes a token stream as JSON text on top of
// json-iterator's Stream. Layout (indentation, line breaks, // comments) is
// handled here; escaping and buffering are left to json-iterator.
package jsonemit

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/reoring/docbind/internal/textwrap"
)

var api = jsoniter.Config{EscapeHTML: false}.Froze()

var (
	// ErrUnsupportedNumber is returned for NaN and infinities, which JSON
	// cannot represent.
	ErrUnsupportedNumber = errors.New("jsonemit: unsupported number")
	// ErrStructure is returned when a container is closed that was never
	// opened.
	ErrStructure = errors.New("jsonemit: unbalanced structure")
)

// Options controls layout.
type Options struct {
	// Indent is repeated once per nesting level. Empty means compact output.
	Indent string
	// Comments enables "// " comment lines, which makes the output lenient
	// JSON. Comments are dropped otherwise.
	Comments bool
	// CommentWidth wraps comment text; <= 0 disables wrapping.
	CommentWidth int
}

type frame struct {
	object bool
	count  int
}

// Emitter writes exactly the calls it receives; callers keep the structure
// valid. The output is flushed whenever a root value completes.
type Emitter struct {
	s        *jsoniter.Stream
	opt      Options
	stack    []frame
	afterKey bool
	comments []string
}

// New returns an emitter writing to w.
func New(w io.Writer, opt Options) *Emitter {
	return &Emitter{s: jsoniter.NewStream(api, w, 512), opt: opt}
}

// Depth returns the number of open containers.
func (e *Emitter) Depth() int { return len(e.stack) }

func (e *Emitter) err() error {
	if e.s.Error != nil {
		return errors.Wrap(e.s.Error, "jsonemit")
	}
	return nil
}

func (e *Emitter) top() *frame {
	if len(e.stack) == 0 {
		return nil
	}
	return &e.stack[len(e.stack)-1]
}

func (e *Emitter) newline(force bool) {
	if e.opt.Indent == "" && !force {
		return
	}
	e.s.WriteRaw("\n" + strings.Repeat(e.opt.Indent, len(e.stack)))
}

// beginItem writes the separator, pending comments and line break that
// precede a key or list element.
func (e *Emitter) beginItem() {
	top := e.top()
	if top != nil {
		if top.count > 0 {
			e.s.WriteRaw(",")
		}
		top.count++
	}
	for _, c := range e.comments {
		for _, line := range textwrap.Wrap(c, e.opt.CommentWidth) {
			if top != nil {
				e.newline(true)
			}
			e.s.WriteRaw(strings.TrimRight("// "+line, " "))
			if top == nil {
				e.s.WriteRaw("\n")
			}
		}
	}
	if top != nil {
		e.newline(len(e.comments) > 0)
	}
	e.comments = e.comments[:0]
}

func (e *Emitter) value() {
	if e.afterKey {
		e.afterKey = false
		return
	}
	e.beginItem()
}

// endValue flushes after a root value.
func (e *Emitter) endValue() error {
	if len(e.stack) > 0 {
		return e.err()
	}
	if e.opt.Indent != "" {
		e.s.WriteRaw("\n")
	}
	if err := e.err(); err != nil {
		return err
	}
	return errors.Wrap(e.s.Flush(), "jsonemit: flush")
}

func (e *Emitter) Comment(text string) error {
	if e.opt.Comments {
		e.comments = append(e.comments, text)
	}
	return nil
}

func (e *Emitter) Key(name string) error {
	e.beginItem()
	e.s.WriteString(name)
	if e.opt.Indent != "" {
		e.s.WriteRaw(": ")
	} else {
		e.s.WriteRaw(":")
	}
	e.afterKey = true
	return e.err()
}

func (e *Emitter) enter(object bool, open string) error {
	e.value()
	e.s.WriteRaw(open)
	e.stack = append(e.stack, frame{object: object})
	return e.err()
}

func (e *Emitter) exit(close string) error {
	f := e.top()
	if f == nil {
		return errors.Wrap(ErrStructure, "exit without enter")
	}
	count := f.count
	e.stack = e.stack[:len(e.stack)-1]
	e.comments = e.comments[:0]
	if count > 0 {
		e.newline(false)
	}
	e.s.WriteRaw(close)
	return e.endValue()
}

func (e *Emitter) EnterObject() error { return e.enter(true, "{") }
func (e *Emitter) ExitObject() error  { return e.exit("}") }
func (e *Emitter) EnterList() error   { return e.enter(false, "[") }
func (e *Emitter) ExitList() error    { return e.exit("]") }

func (e *Emitter) String(v string) error {
	e.value()
	e.s.WriteString(v)
	return e.endValue()
}

func (e *Emitter) Int(v int32) error {
	e.value()
	e.s.WriteInt32(v)
	return e.endValue()
}

func (e *Emitter) Long(v int64) error {
	e.value()
	e.s.WriteInt64(v)
	return e.endValue()
}

func (e *Emitter) Float(v float32) error { return e.float(float64(v), 32) }

func (e *Emitter) Double(v float64) error { return e.float(v, 64) }

func (e *Emitter) float(v float64, bits int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Wrapf(ErrUnsupportedNumber, "%v", v)
	}
	e.value()
	e.s.WriteRaw(FormatFloat(v, bits))
	return e.endValue()
}

func (e *Emitter) Bool(v bool) error {
	e.value()
	e.s.WriteBool(v)
	return e.endValue()
}

// FormatFloat renders v so that it always reads back as a floating point
// literal, e.g. 1 -> "1.0".
func FormatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
