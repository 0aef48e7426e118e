// Package invalid defines the structured validation error shared by the
// Validate and Undictify dispatchers.
//
// An Invalid mirrors the shape of the type graph it was produced from: each
// node carries its own issues plus a child aggregate per failing edge. Nodes
// and edges with no problems are absent entirely; an Invalid is surfaced
// only when it is non-empty.
package invalid

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/typegraph"
)

// Well-known issue codes. The vocabulary is open; these are the codes the
// builtin handlers emit.
const (
	CodeTypeError        = "type_error"
	CodeMissingKey       = "missing_key"
	CodeBadFormat        = "bad_format"
	CodeBadValue         = "bad_value"
	CodeUnexpectedFields = "unexpected_fields"
	CodeNotIterable      = "not_iterable"
	CodeBadLength        = "bad_len"
	CodeBadList          = "bad_list"
)

// Issue is one problem recorded at a single node.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (i Issue) String() string {
	if i.Message == "" {
		return i.Code
	}
	return i.Code + " - " + i.Message
}

type childError struct {
	name string
	err  *Invalid
}

// Invalid aggregates validation failures for one node and its children.
// Child aggregates keep the order they were attached in, which is the
// declaring type graph's edge declaration order.
type Invalid struct {
	issues   []Issue
	children []childError
	index    map[string]int
}

// New creates an Invalid with a single issue. An empty code yields an empty
// aggregate, useful as a collector.
func New(code, message string) *Invalid {
	e := &Invalid{}
	if code != "" {
		e.Add(code, message)
	}
	return e
}

// Newf creates an Invalid with a formatted message.
func Newf(code, format string, args ...any) *Invalid {
	return New(code, fmt.Sprintf(format, args...))
}

// Add records an issue at this node.
func (e *Invalid) Add(code, message string) *Invalid {
	e.issues = append(e.issues, Issue{Code: code, Message: message})
	return e
}

// Attach nests a child aggregate under the named edge. Attaching under an
// edge that already has an aggregate merges the two. Empty children are
// ignored.
func (e *Invalid) Attach(edge string, child *Invalid) {
	if child == nil || child.Empty() {
		return
	}
	if e.index == nil {
		e.index = map[string]int{}
	}
	if i, ok := e.index[edge]; ok {
		e.children[i].err.merge(child)
		return
	}
	e.index[edge] = len(e.children)
	e.children = append(e.children, childError{name: edge, err: child})
}

func (e *Invalid) merge(other *Invalid) {
	e.issues = append(e.issues, other.issues...)
	for _, c := range other.children {
		e.Attach(c.name, c.err)
	}
}

// Empty reports whether the aggregate holds no issues anywhere.
func (e *Invalid) Empty() bool {
	return e == nil || (len(e.issues) == 0 && len(e.children) == 0)
}

// OrNil returns the aggregate as an error, or nil when it is empty. This is
// the only way an Invalid should escape a validation pass: empty aggregates
// are never surfaced.
func (e *Invalid) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Issues returns the problems recorded at this node.
func (e *Invalid) Issues() []Issue {
	return e.issues
}

// Child returns the nested aggregate for the named edge.
func (e *Invalid) Child(edge string) (*Invalid, bool) {
	if e == nil || e.index == nil {
		return nil, false
	}
	i, ok := e.index[edge]
	if !ok {
		return nil, false
	}
	return e.children[i].err, true
}

// Edges returns the names of edges with nested failures, in attach order.
func (e *Invalid) Edges() []string {
	names := make([]string, 0, len(e.children))
	for _, c := range e.children {
		names = append(names, c.name)
	}
	return names
}

// Error renders the aggregate on one line, e.g.
// "birthday: [type_error], favorites: [missing_key]".
func (e *Invalid) Error() string {
	if e.Empty() {
		return "<no message>"
	}
	var parts []string
	if len(e.issues) > 0 {
		strs := make([]string, len(e.issues))
		for i, issue := range e.issues {
			strs[i] = issue.String()
		}
		parts = append(parts, strings.Join(strs, ", "))
	}
	if len(e.children) > 0 {
		strs := make([]string, len(e.children))
		for i, c := range e.children {
			strs[i] = fmt.Sprintf("%s: [%s]", c.name, c.err.summary())
		}
		parts = append(parts, strings.Join(strs, ", "))
	}
	return strings.Join(parts, "; ")
}

// summary is Error without messages, used for nested rendering.
func (e *Invalid) summary() string {
	var parts []string
	if len(e.issues) > 0 {
		strs := make([]string, len(e.issues))
		for i, issue := range e.issues {
			strs[i] = issue.Code
		}
		parts = append(parts, strings.Join(strs, ", "))
	}
	for _, c := range e.children {
		parts = append(parts, fmt.Sprintf("%s: [%s]", c.name, c.err.summary()))
	}
	return strings.Join(parts, ", ")
}

// AsGraph converts the aggregate to a plain graph whose node values are
// issue slices, suitable for typegraph.Render.
func (e *Invalid) AsGraph() typegraph.Node {
	g := typegraph.NewGraph()
	return e.toGraph(g)
}

func (e *Invalid) toGraph(g *typegraph.Graph) typegraph.Node {
	edges := make([]typegraph.Edge, 0, len(e.children))
	for _, c := range e.children {
		edges = append(edges, typegraph.Edge{Name: c.name, To: c.err.toGraph(g)})
	}
	return g.NewNode(issueList(e.issues), edges...)
}

type issueList []Issue

func (l issueList) String() string {
	if len(l) == 0 {
		return "[]"
	}
	strs := make([]string, len(l))
	for i, issue := range l {
		strs[i] = issue.String()
	}
	return "[" + strings.Join(strs, "; ") + "]"
}

// MarshalJSON renders {"issues": [...], "fields": {...}} with empty parts
// omitted.
func (e *Invalid) MarshalJSON() ([]byte, error) {
	type wire struct {
		Issues []Issue                    `json:"issues,omitempty"`
		Fields map[string]json.RawMessage `json:"fields,omitempty"`
	}
	w := wire{Issues: e.issues}
	if len(e.children) > 0 {
		w.Fields = make(map[string]json.RawMessage, len(e.children))
		for _, c := range e.children {
			raw, err := json.Marshal(c.err)
			if err != nil {
				return nil, err
			}
			w.Fields[c.name] = raw
		}
	}
	return json.Marshal(w)
}
