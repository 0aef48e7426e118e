// Package typegraph provides the rooted graph structure that markers live in.
//
// A graph is an arena of nodes referenced by index. Edges are ordered, so
// field enumeration is deterministic and follows declaration order. Shared
// substructure (DAG shapes) is supported; handles stay valid for the life of
// the graph.
package typegraph

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a handle to a single node inside a Graph. The zero Node is invalid;
// use IsZero to detect it.
type Node struct {
	g  *Graph
	id int
}

// Edge pairs an edge name with the child it points to.
type Edge struct {
	Name string
	To   Node
}

type nodeData struct {
	value any
	edges []edgeData
	// base >= 0 marks a value overlay: edge access delegates to the base
	// node so overlays track graphs that are still under construction.
	base int
}

type edgeData struct {
	name string
	to   int
}

// Graph is an arena of nodes. It is not safe for concurrent mutation;
// finished graphs are safe for concurrent reads.
type Graph struct {
	nodes []nodeData
}

// NewGraph creates an empty arena.
func NewGraph() *Graph {
	return &Graph{}
}

// New creates a fresh single-node graph and returns its root.
func New(value any) Node {
	g := NewGraph()
	return g.NewNode(value)
}

// NewNode allocates a node holding value with the given outgoing edges.
// Edge targets must belong to this graph (targets from other graphs are
// imported automatically).
func (g *Graph) NewNode(value any, edges ...Edge) Node {
	n := nodeData{value: value, base: -1}
	for _, e := range edges {
		n.edges = append(n.edges, edgeData{name: e.Name, to: g.adopt(e.To)})
	}
	g.nodes = append(g.nodes, n)
	return Node{g: g, id: len(g.nodes) - 1}
}

// adopt returns an id valid in g for the given node, importing the node's
// subgraph if it lives in a different arena.
func (g *Graph) adopt(n Node) int {
	if n.g == g {
		return n.id
	}
	return g.importFrom(n, map[int]int{})
}

func (g *Graph) importFrom(n Node, seen map[int]int) int {
	if id, ok := seen[n.id]; ok {
		return id
	}
	src := n.g.nodes[n.id]
	data := nodeData{value: src.value, base: -1}
	g.nodes = append(g.nodes, data)
	id := len(g.nodes) - 1
	seen[n.id] = id
	if src.base >= 0 {
		g.nodes[id].base = g.importFrom(Node{g: n.g, id: src.base}, seen)
		return id
	}
	for _, e := range src.edges {
		to := g.importFrom(Node{g: n.g, id: e.to}, seen)
		g.nodes[id].edges = append(g.nodes[id].edges, edgeData{name: e.name, to: to})
	}
	return id
}

// Import copies the subgraph rooted at n into g, preserving shared
// substructure, and returns the copy's root. If n already belongs to g it is
// returned unchanged.
func (g *Graph) Import(n Node) Node {
	return Node{g: g, id: g.adopt(n)}
}

// IsZero reports whether the handle does not reference any graph.
func (n Node) IsZero() bool {
	return n.g == nil
}

// Graph returns the arena the node belongs to.
func (n Node) Graph() *Graph {
	return n.g
}

// Value returns the value stored at the node.
func (n Node) Value() any {
	return n.g.nodes[n.id].value
}

// SetValue replaces the value stored at the node.
func (n Node) SetValue(value any) {
	n.g.nodes[n.id].value = value
}

// resolve follows overlay base links to the node whose edges apply.
func (n Node) resolve() nodeData {
	d := n.g.nodes[n.id]
	for d.base >= 0 {
		d = n.g.nodes[d.base]
	}
	return d
}

// Edges returns the outgoing edges in declaration order.
func (n Node) Edges() []Edge {
	d := n.resolve()
	out := make([]Edge, 0, len(d.edges))
	for _, e := range d.edges {
		out = append(out, Edge{Name: e.name, To: Node{g: n.g, id: e.to}})
	}
	return out
}

// EdgeNames returns the edge names in declaration order.
func (n Node) EdgeNames() []string {
	d := n.resolve()
	names := make([]string, 0, len(d.edges))
	for _, e := range d.edges {
		names = append(names, e.name)
	}
	return names
}

// Child returns the target of the named edge.
func (n Node) Child(name string) (Node, bool) {
	d := n.resolve()
	for _, e := range d.edges {
		if e.name == name {
			return Node{g: n.g, id: e.to}, true
		}
	}
	return Node{}, false
}

// SetEdge appends an edge, or retargets it if the name is already declared.
// Used when building recursive graphs whose children are filled in after the
// root exists.
func (n Node) SetEdge(name string, to Node) {
	id := n.id
	for n.g.nodes[id].base >= 0 {
		id = n.g.nodes[id].base
	}
	tid := n.g.adopt(to)
	for i, e := range n.g.nodes[id].edges {
		if e.name == name {
			n.g.nodes[id].edges[i].to = tid
			return
		}
	}
	n.g.nodes[id].edges = append(n.g.nodes[id].edges, edgeData{name: name, to: tid})
}

// Overlay returns a node that shares n's edges but carries a different
// value. Edge access follows the original node, so edges added to n later
// are visible through the overlay.
func Overlay(n Node, value any) Node {
	n.g.nodes = append(n.g.nodes, nodeData{value: value, base: n.id})
	return Node{g: n.g, id: len(n.g.nodes) - 1}
}

// At walks the given edge path from n.
func At(n Node, path ...string) (Node, bool) {
	cur := n
	for _, name := range path {
		next, ok := cur.Child(name)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}

// Same reports whether two handles reference the same node.
func Same(a, b Node) bool {
	return a.g == b.g && a.id == b.id
}

// Render draws the subgraph rooted at n as an ascii tree:
//
//	root: <Mapping>
//	  +--birthday: <Date>
//	  +--name: <String>
//
// Edges print in declaration order unless sorted is true. Nodes already on
// the path from the root print as "..." to keep shared or cyclic structure
// finite.
func Render(n Node, sorted bool) string {
	var b strings.Builder
	renderNode(&b, "root", n, "", sorted, map[int]bool{})
	return b.String()
}

func renderNode(b *strings.Builder, label string, n Node, indent string, sorted bool, onPath map[int]bool) {
	fmt.Fprintf(b, "%s: %s\n", label, formatValue(n.Value()))
	if onPath[n.id] {
		return
	}
	onPath[n.id] = true
	defer delete(onPath, n.id)

	edges := n.Edges()
	if sorted {
		edges = append([]Edge(nil), edges...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].Name < edges[j].Name })
	}
	for _, e := range edges {
		b.WriteString(indent + "  +--")
		if onPath[e.To.id] {
			fmt.Fprintf(b, "%s: ...\n", e.Name)
			continue
		}
		renderNode(b, e.Name, e.To, indent+"  ", sorted, onPath)
	}
}

func formatValue(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
