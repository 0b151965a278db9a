package yaml

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/internal/jsonemit"
	"github.com/reoring/docbind/internal/textwrap"
)

// Writer collects tokens into a yaml.v3 node tree and encodes it once the
// root value is complete. Comments become the head comment of the next key
// or list element; flow style output drops them.
type Writer struct {
	out      io.Writer
	opt      Options
	stack    []*yaml.Node
	key      *yaml.Node
	comments []string
	docs     int
}

var _ docbind.Writer = (*Writer)(nil)

// NewWriter writes YAML documents to w.
func NewWriter(w io.Writer, opt Options) *Writer {
	if opt.Indent <= 0 {
		opt.Indent = defaultIndent
	}
	return &Writer{out: w, opt: opt}
}

func (w *Writer) headComment() string {
	if len(w.comments) == 0 {
		return ""
	}
	var lines []string
	for _, c := range w.comments {
		for _, l := range textwrap.Wrap(c, w.opt.Width) {
			lines = append(lines, strings.TrimRight("# "+l, " "))
		}
	}
	w.comments = w.comments[:0]
	return strings.Join(lines, "\n")
}

// add places n in the current container, or encodes it as a document when
// there is none.
func (w *Writer) add(n *yaml.Node) error {
	if len(w.stack) == 0 {
		n.HeadComment = w.headComment()
		if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
			w.stack = append(w.stack, n)
			return nil
		}
		return w.encode(n)
	}
	top := w.stack[len(w.stack)-1]
	if top.Kind == yaml.MappingNode {
		if w.key == nil {
			return docbind.Malformed("yaml: value without key")
		}
		top.Content = append(top.Content, w.key, n)
		w.key = nil
	} else {
		n.HeadComment = w.headComment()
		top.Content = append(top.Content, n)
	}
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		w.stack = append(w.stack, n)
	}
	return nil
}

func (w *Writer) encode(root *yaml.Node) error {
	if w.opt.ExplicitStart || w.docs > 0 {
		if _, err := io.WriteString(w.out, "---\n"); err != nil {
			return docbind.BackendError(err, "yaml: write")
		}
	}
	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(w.opt.Indent)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return docbind.BackendError(err, "yaml: encode")
	}
	if err := enc.Close(); err != nil {
		return docbind.BackendError(err, "yaml: encode")
	}
	w.docs++
	return nil
}

func (w *Writer) container(kind yaml.Kind, tag string) error {
	n := &yaml.Node{Kind: kind, Tag: tag}
	if w.opt.FlowStyle {
		n.Style = yaml.FlowStyle
	}
	return w.add(n)
}

func (w *Writer) exit(kind yaml.Kind) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].Kind != kind {
		return docbind.Malformed("yaml: unbalanced container end")
	}
	n := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.comments = w.comments[:0]
	if len(w.stack) == 0 {
		return w.encode(n)
	}
	return nil
}

func (w *Writer) EnterObject() error { return w.container(yaml.MappingNode, "!!map") }
func (w *Writer) ExitObject() error  { return w.exit(yaml.MappingNode) }
func (w *Writer) EnterList() error   { return w.container(yaml.SequenceNode, "!!seq") }
func (w *Writer) ExitList() error    { return w.exit(yaml.SequenceNode) }

func (w *Writer) Key(name string) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1].Kind != yaml.MappingNode {
		return docbind.Malformed("yaml: key outside a mapping")
	}
	w.key = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name, HeadComment: w.headComment()}
	return nil
}

func (w *Writer) Comment(text string) error {
	if w.opt.FlowStyle {
		return nil
	}
	w.comments = append(w.comments, text)
	return nil
}

func (w *Writer) scalar(tag, value string, style yaml.Style) error {
	return w.add(&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Style: style})
}

func (w *Writer) String(v string) error { return w.scalar("!!str", v, w.opt.ScalarStyle) }
func (w *Writer) Int(v int32) error     { return w.scalar("!!int", strconv.FormatInt(int64(v), 10), 0) }
func (w *Writer) Long(v int64) error    { return w.scalar("!!int", strconv.FormatInt(v, 10), 0) }
func (w *Writer) Float(v float32) error { return w.scalar("!!float", formatFloat(float64(v), 32), 0) }
func (w *Writer) Double(v float64) error {
	return w.scalar("!!float", formatFloat(v, 64), 0)
}
func (w *Writer) Bool(v bool) error { return w.scalar("!!bool", strconv.FormatBool(v), 0) }

// Close reports a value that was started but never completed.
func (w *Writer) Close() error {
	if d := len(w.stack); d > 0 {
		return errors.Mark(errors.Newf("yaml: %d containers left open", d), docbind.ErrMalformedToken)
	}
	return nil
}

func formatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	return jsonemit.FormatFloat(v, bits)
}
