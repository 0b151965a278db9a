package jsontok

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Issue is a problem found while enforcing Options.
type Issue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is returned for fatal issues.
type IssueError struct{ Issue }

func (e IssueError) Error() string { return e.Path + ": " + e.Message }

// Options controls enforcement.
type Options struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits container nesting; zero means unlimited.
	MaxDepth int
	// OnIssue receives non-fatal issues (DupWarn).
	OnIssue func(Issue)
}

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// Enforce wraps inner so that duplicate keys and excessive nesting are
// reported. A zero Options returns inner unchanged.
func Enforce(inner Source, opt Options) Source {
	if opt.OnDuplicate == DupIgnore && opt.MaxDepth <= 0 {
		return inner
	}
	return &enforcing{inner: inner, opt: opt}
}

type enforcing struct {
	inner Source
	opt   Options
	stack []dupFrame
}

func (e *enforcing) issue(code, path, msg string, fatal bool) error {
	is := Issue{Code: code, Path: normalizePath(path), Message: msg}
	if fatal {
		return IssueError{is}
	}
	if e.opt.OnIssue != nil {
		e.opt.OnIssue(is)
	}
	return nil
}

func (e *enforcing) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcing) Next() (Token, error) {
	tok, err := e.inner.Next()
	if err != nil {
		return Token{}, err
	}
	path := e.pathFor(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		kind := kindArray
		if tok.Kind == KindBeginObject {
			kind = kindObject
		}
		e.stack = append(e.stack, dupFrame{kind: kind, keys: map[string]struct{}{}, expectingKey: kind == kindObject, path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.issue("max_depth", path, "max depth exceeded", true)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				if err := e.issue("duplicate_key", path, "key '"+tok.String+"' duplicated", e.opt.OnDuplicate == DupError); err != nil {
					return Token{}, err
				}
			}
			top.keys[tok.String] = struct{}{}
			top.expectingKey = false
			top.pendingKey = tok.String
		}
	default:
		e.valueDone()
	}
	return tok, nil
}

// pathFor renders the JSON pointer of tok's position.
func (e *enforcing) pathFor(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinPointer(top.path, tok.String)
	case KindEndObject, KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	if !top.expectingKey {
		return joinPointer(top.path, top.pendingKey)
	}
	return top.path
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
