package yaml

import (
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docbind"
)

// nodes replays parsed trees through the node fragment adapter with a
// private registry so user registrations cannot change how YAML is read.
var nodes = docbind.NewHandler(docbind.NewRegistry())

// NewReader parses the first YAML document of r. Mapping members whose value
// is null are dropped; null anywhere else is malformed. Scalars keep their
// resolved tag: !!int reads as Long, !!float as Double, !!bool as Bool and
// everything else as String.
func NewReader(r io.Reader) (*docbind.TokenReader, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, docbind.Malformed("yaml: empty document")
		}
		return nil, errors.Mark(errors.Wrap(err, "yaml: parse"), docbind.ErrMalformedToken)
	}
	return NewNodeReader(&doc)
}

// NewNodeReader replays an already parsed node.
func NewNodeReader(n *yaml.Node) (*docbind.TokenReader, error) {
	toks, err := nodes.Encode(docbind.YAMLNode, n)
	if err != nil {
		return nil, err
	}
	return docbind.NewTokenReader(toks), nil
}
