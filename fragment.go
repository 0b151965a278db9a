package docbind

import (
	"bytes"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	gojson "github.com/goccy/go-json"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind/internal/jsonemit"
	"github.com/reoring/docbind/internal/jsontok"
)

// Fragment descriptors cover documents that were already parsed (or are kept
// raw) by another library. They are resolved before any structural factory.
var (
	// YAMLNode is *yaml.Node from gopkg.in/yaml.v3.
	YAMLNode = Type{kind: KindFragment, name: "yaml.Node"}
	// RawJSON is json.RawMessage from github.com/goccy/go-json.
	RawJSON = Type{kind: KindFragment, name: "json.RawMessage"}
	// ProtoValue is *structpb.Value.
	ProtoValue = Type{kind: KindFragment, name: "structpb.Value"}
	// ProtoStruct is *structpb.Struct.
	ProtoStruct = Type{kind: KindFragment, name: "structpb.Struct"}
	// ProtoList is *structpb.ListValue.
	ProtoList = Type{kind: KindFragment, name: "structpb.ListValue"}
)

type fragmentFactory struct{}

func (fragmentFactory) Create(_ *Registry, t Type) (TypeAdapter, bool) {
	if t.Kind() != KindFragment || t.IsGeneric() {
		return nil, false
	}
	switch t.Name() {
	case YAMLNode.name:
		return yamlNodeAdapter{}, true
	case RawJSON.name:
		return rawJSONAdapter{}, true
	case ProtoValue.name:
		return protoValueAdapter{}, true
	case ProtoStruct.name:
		return protoStructAdapter{}, true
	case ProtoList.name:
		return protoListAdapter{}, true
	}
	return nil, false
}

// writeNumber writes integral values as long and anything else as double.
func writeNumber(w Writer, f float64) error {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return w.Long(int64(f))
	}
	return w.Double(f)
}

func nullValue(t Type) error {
	return errors.Mark(errors.Newf("docbind: %s contains null outside a mapping", t), ErrInvalidValue)
}

// ---- yaml.v3 ----

type yamlNodeAdapter struct{}

func (yamlNodeAdapter) Write(ctx *WriterContext, v any) error {
	var n *yaml.Node
	switch x := v.(type) {
	case *yaml.Node:
		n = x
	case yaml.Node:
		n = &x
	}
	if n == nil {
		return invalidValue(YAMLNode, v)
	}
	return writeYAML(ctx, n)
}

func yamlIsNull(n *yaml.Node) bool {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func yamlComment(n *yaml.Node) string {
	if n.HeadComment == "" {
		return ""
	}
	lines := strings.Split(n.HeadComment, "\n")
	for i, l := range lines {
		l = strings.TrimPrefix(l, "#")
		lines[i] = strings.TrimPrefix(l, " ")
	}
	return strings.Join(lines, "\n")
}

func writeYAML(w Writer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Malformed("docbind: empty YAML document")
		}
		return writeYAML(w, n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Malformed("docbind: dangling YAML alias %q", n.Value)
		}
		return writeYAML(w, n.Alias)
	case yaml.MappingNode:
		if err := w.EnterObject(); err != nil {
			return err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if yamlIsNull(val) {
				continue
			}
			if c := yamlComment(k); c != "" {
				if err := w.Comment(c); err != nil {
					return err
				}
			}
			if err := w.Key(k.Value); err != nil {
				return err
			}
			if err := writeYAML(w, val); err != nil {
				return err
			}
		}
		return w.ExitObject()
	case yaml.SequenceNode:
		if err := w.EnterList(); err != nil {
			return err
		}
		for _, e := range n.Content {
			if err := writeYAML(w, e); err != nil {
				return err
			}
		}
		return w.ExitList()
	case yaml.ScalarNode:
		return writeYAMLScalar(w, n)
	}
	return Malformed("docbind: unsupported YAML node kind %d", n.Kind)
}

func writeYAMLScalar(w Writer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		return nullValue(YAMLNode)
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return w.Long(i)
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Malformed("docbind: bad YAML int %q", n.Value)
		}
		return w.Double(f)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Malformed("docbind: bad YAML float %q", n.Value)
		}
		return w.Double(f)
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Malformed("docbind: bad YAML bool %q", n.Value)
		}
		return w.Bool(b)
	}
	return w.String(n.Value)
}

func (yamlNodeAdapter) Read(ctx *ReaderContext) (any, error) {
	return readYAML(ctx)
}

func readYAML(r Reader) (*yaml.Node, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch kind {
	case TokenEnterObject:
		if err := r.EnterObject(); err != nil {
			return nil, err
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == TokenExitObject {
				break
			}
			key, err := r.Key()
			if err != nil {
				return nil, err
			}
			val, err := readYAML(r)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
		}
		return n, r.ExitObject()
	case TokenEnterList:
		if err := r.EnterList(); err != nil {
			return nil, err
		}
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == TokenExitList {
				break
			}
			e, err := readYAML(r)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, e)
		}
		return n, r.ExitList()
	case TokenInt, TokenLong:
		v, err := r.LongValue()
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}, nil
	case TokenFloat, TokenDouble:
		v, err := r.DoubleValue()
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v)}, nil
	case TokenBool:
		v, err := r.BoolValue()
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case TokenString:
		v, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	}
	return nil, Unexpected("value", kind)
}

func yamlFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	return jsonemit.FormatFloat(v, 64)
}

// ---- go-json RawMessage ----

type rawJSONAdapter struct{}

func (rawJSONAdapter) Write(ctx *WriterContext, v any) error {
	raw, ok := v.(gojson.RawMessage)
	if !ok {
		return invalidValue(RawJSON, v)
	}
	s := jsontok.NewStream(jsontok.NewBytes(raw))
	if err := copyJSON(ctx, s); err != nil {
		return err
	}
	if !s.AtEOF() {
		return Malformed("docbind: trailing data after raw JSON value")
	}
	return nil
}

// copyJSON replays one JSON value from s on w. Null members are omitted,
// null anywhere else is an error.
func copyJSON(w Writer, s *jsontok.Stream) error {
	tok, err := s.Next()
	if err != nil {
		return jsonErr(err)
	}
	switch tok.Kind {
	case jsontok.KindBeginObject:
		if err := w.EnterObject(); err != nil {
			return err
		}
		for {
			k, err := s.Next()
			if err != nil {
				return jsonErr(err)
			}
			if k.Kind == jsontok.KindEndObject {
				return w.ExitObject()
			}
			next, err := s.Peek()
			if err != nil {
				return jsonErr(err)
			}
			if next.Kind == jsontok.KindNull {
				_, _ = s.Next()
				continue
			}
			if err := w.Key(k.String); err != nil {
				return err
			}
			if err := copyJSON(w, s); err != nil {
				return err
			}
		}
	case jsontok.KindBeginArray:
		if err := w.EnterList(); err != nil {
			return err
		}
		for {
			next, err := s.Peek()
			if err != nil {
				return jsonErr(err)
			}
			if next.Kind == jsontok.KindEndArray {
				_, _ = s.Next()
				return w.ExitList()
			}
			if err := copyJSON(w, s); err != nil {
				return err
			}
		}
	case jsontok.KindString:
		return w.String(tok.String)
	case jsontok.KindBool:
		return w.Bool(tok.Bool)
	case jsontok.KindNumber:
		if tok.IsInteger() {
			if i, err := strconv.ParseInt(tok.Number, 10, 64); err == nil {
				return w.Long(i)
			}
		}
		f, err := strconv.ParseFloat(tok.Number, 64)
		if err != nil {
			return Malformed("docbind: bad JSON number %q", tok.Number)
		}
		return writeNumber(w, f)
	case jsontok.KindNull:
		return nullValue(RawJSON)
	}
	return Malformed("docbind: unexpected JSON token %s", tok.Kind)
}

func jsonErr(err error) error {
	if err == io.EOF {
		return Malformed("docbind: truncated JSON")
	}
	return errors.Mark(errors.Wrap(err, "docbind: invalid JSON"), ErrMalformedToken)
}

func (rawJSONAdapter) Read(ctx *ReaderContext) (any, error) {
	var buf bytes.Buffer
	if err := CopyValue(jsonemit.New(&buf, jsonemit.Options{}), ctx); err != nil {
		if errors.Is(err, jsonemit.ErrUnsupportedNumber) {
			return nil, errors.Mark(err, ErrMalformedToken)
		}
		return nil, err
	}
	return gojson.RawMessage(buf.Bytes()), nil
}

// ---- protobuf structpb ----

type protoValueAdapter struct{}

func (protoValueAdapter) Write(ctx *WriterContext, v any) error {
	pv, ok := v.(*structpb.Value)
	if !ok || pv == nil {
		return invalidValue(ProtoValue, v)
	}
	return writeProto(ctx, pv)
}

func (protoValueAdapter) Read(ctx *ReaderContext) (any, error) { return readProto(ctx) }

type protoStructAdapter struct{}

func (protoStructAdapter) Write(ctx *WriterContext, v any) error {
	s, ok := v.(*structpb.Struct)
	if !ok || s == nil {
		return invalidValue(ProtoStruct, v)
	}
	return writeProtoStruct(ctx, s)
}

func (protoStructAdapter) Read(ctx *ReaderContext) (any, error) { return readProtoStruct(ctx) }

type protoListAdapter struct{}

func (protoListAdapter) Write(ctx *WriterContext, v any) error {
	l, ok := v.(*structpb.ListValue)
	if !ok || l == nil {
		return invalidValue(ProtoList, v)
	}
	return writeProtoList(ctx, l)
}

func (protoListAdapter) Read(ctx *ReaderContext) (any, error) { return readProtoList(ctx) }

func protoIsNull(v *structpb.Value) bool {
	if v == nil || v.Kind == nil {
		return true
	}
	_, ok := v.Kind.(*structpb.Value_NullValue)
	return ok
}

func writeProto(w Writer, v *structpb.Value) error {
	switch k := v.Kind.(type) {
	case *structpb.Value_NumberValue:
		return writeNumber(w, k.NumberValue)
	case *structpb.Value_StringValue:
		return w.String(k.StringValue)
	case *structpb.Value_BoolValue:
		return w.Bool(k.BoolValue)
	case *structpb.Value_StructValue:
		return writeProtoStruct(w, k.StructValue)
	case *structpb.Value_ListValue:
		return writeProtoList(w, k.ListValue)
	}
	return nullValue(ProtoValue)
}

// writeProtoStruct writes fields in key order; protobuf maps are unordered.
func writeProtoStruct(w Writer, s *structpb.Struct) error {
	if err := w.EnterObject(); err != nil {
		return err
	}
	keys := lo.Keys(s.GetFields())
	slices.Sort(keys)
	for _, k := range keys {
		v := s.GetFields()[k]
		if protoIsNull(v) {
			continue
		}
		if err := w.Key(k); err != nil {
			return err
		}
		if err := writeProto(w, v); err != nil {
			return err
		}
	}
	return w.ExitObject()
}

func writeProtoList(w Writer, l *structpb.ListValue) error {
	if err := w.EnterList(); err != nil {
		return err
	}
	for _, v := range l.GetValues() {
		if err := writeProto(w, v); err != nil {
			return err
		}
	}
	return w.ExitList()
}

func readProto(r Reader) (*structpb.Value, error) {
	kind, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch kind {
	case TokenEnterObject:
		s, err := readProtoStruct(r)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(s), nil
	case TokenEnterList:
		l, err := readProtoList(r)
		if err != nil {
			return nil, err
		}
		return structpb.NewListValue(l), nil
	case TokenString:
		s, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		return structpb.NewStringValue(s), nil
	case TokenBool:
		b, err := r.BoolValue()
		if err != nil {
			return nil, err
		}
		return structpb.NewBoolValue(b), nil
	case TokenInt, TokenLong, TokenFloat, TokenDouble:
		f, err := r.DoubleValue()
		if err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(f), nil
	}
	return nil, Unexpected("value", kind)
}

func readProtoStruct(r Reader) (*structpb.Struct, error) {
	if err := r.EnterObject(); err != nil {
		return nil, err
	}
	s := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	for {
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == TokenExitObject {
			break
		}
		key, err := r.Key()
		if err != nil {
			return nil, err
		}
		v, err := readProto(r)
		if err != nil {
			return nil, err
		}
		s.Fields[key] = v
	}
	return s, r.ExitObject()
}

func readProtoList(r Reader) (*structpb.ListValue, error) {
	if err := r.EnterList(); err != nil {
		return nil, err
	}
	l := &structpb.ListValue{}
	for {
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == TokenExitList {
			break
		}
		v, err := readProto(r)
		if err != nil {
			return nil, err
		}
		l.Values = append(l.Values, v)
	}
	return l, r.ExitList()
}
