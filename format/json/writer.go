package json

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/internal/jsonemit"
)

// Writer renders tokens as JSON text. Output is flushed each time a root
// value completes. Failures of the underlying io.Writer are marked
// docbind.ErrBackend.
type Writer struct {
	e *jsonemit.Emitter
}

var _ docbind.Writer = (*Writer)(nil)

// NewWriter writes JSON to w. An empty indent writes compact output; comments
// are emitted as "//" lines only when lenient is set.
func NewWriter(w io.Writer, indent string, lenient bool, commentWidth int) *Writer {
	return &Writer{e: jsonemit.New(w, jsonemit.Options{
		Indent:       indent,
		Comments:     lenient,
		CommentWidth: commentWidth,
	})}
}

// Close reports a value that was started but never completed.
func (w *Writer) Close() error {
	if d := w.e.Depth(); d > 0 {
		return errors.Mark(errors.Newf("json: %d containers left open", d), docbind.ErrMalformedToken)
	}
	return nil
}

func emitErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jsonemit.ErrUnsupportedNumber):
		return errors.Mark(err, docbind.ErrInvalidValue)
	case errors.Is(err, jsonemit.ErrStructure):
		return errors.Mark(err, docbind.ErrMalformedToken)
	}
	return docbind.BackendError(err, "json: write")
}

func (w *Writer) Comment(text string) error { return emitErr(w.e.Comment(text)) }
func (w *Writer) Key(name string) error     { return emitErr(w.e.Key(name)) }
func (w *Writer) EnterObject() error        { return emitErr(w.e.EnterObject()) }
func (w *Writer) ExitObject() error         { return emitErr(w.e.ExitObject()) }
func (w *Writer) EnterList() error          { return emitErr(w.e.EnterList()) }
func (w *Writer) ExitList() error           { return emitErr(w.e.ExitList()) }
func (w *Writer) String(v string) error     { return emitErr(w.e.String(v)) }
func (w *Writer) Int(v int32) error         { return emitErr(w.e.Int(v)) }
func (w *Writer) Long(v int64) error        { return emitErr(w.e.Long(v)) }
func (w *Writer) Float(v float32) error     { return emitErr(w.e.Float(v)) }
func (w *Writer) Double(v float64) error    { return emitErr(w.e.Double(v)) }
func (w *Writer) Bool(v bool) error         { return emitErr(w.e.Bool(v)) }
