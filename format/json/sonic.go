package json

import (
	stdjson "encoding/json"
	"io"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/reoring/docbind"
)

var sonicAPI = sonic.Config{UseNumber: true}.Froze()

// NewBufferedReader parses the whole document with sonic and replays it.
// Object members are visited in key order since the parsed tree keeps no
// order; null members are dropped and null elsewhere is malformed.
func NewBufferedReader(r io.Reader) (*docbind.TokenReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, docbind.BackendError(err, "json: read")
	}
	var root any
	if err := sonicAPI.Unmarshal(data, &root); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "json: parse"), docbind.ErrMalformedToken)
	}
	rec := &docbind.TokenRecorder{}
	if err := replayTree(rec, root); err != nil {
		return nil, err
	}
	return docbind.NewTokenReader(rec.Tokens()), nil
}

func replayTree(w docbind.Writer, v any) error {
	switch x := v.(type) {
	case map[string]any:
		if err := w.EnterObject(); err != nil {
			return err
		}
		keys := lo.Keys(x)
		slices.Sort(keys)
		for _, k := range keys {
			if x[k] == nil {
				continue
			}
			if err := w.Key(k); err != nil {
				return err
			}
			if err := replayTree(w, x[k]); err != nil {
				return err
			}
		}
		return w.ExitObject()
	case []any:
		if err := w.EnterList(); err != nil {
			return err
		}
		for _, e := range x {
			if err := replayTree(w, e); err != nil {
				return err
			}
		}
		return w.ExitList()
	case string:
		return w.String(x)
	case bool:
		return w.Bool(x)
	case stdjson.Number:
		if n, err := x.Int64(); err == nil {
			return w.Long(n)
		}
		f, err := x.Float64()
		if err != nil {
			return docbind.Malformed("json: bad number %q", x.String())
		}
		return w.Double(f)
	case float64:
		return w.Double(x)
	case nil:
		return docbind.Malformed("json: null is not a supported value")
	}
	return docbind.Malformed("json: unexpected %T in parsed document", v)
}
