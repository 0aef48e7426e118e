package typegraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/typegraph"
)

func TestNodeBasics(t *testing.T) {
	g := typegraph.NewGraph()
	leaf := g.NewNode("leaf")
	root := g.NewNode("root",
		typegraph.Edge{Name: "b", To: leaf},
		typegraph.Edge{Name: "a", To: leaf},
	)

	assert.Equal(t, "root", root.Value())
	assert.False(t, root.IsZero())
	assert.True(t, typegraph.Node{}.IsZero())

	// Declaration order, not lexical order.
	assert.Equal(t, []string{"b", "a"}, root.EdgeNames())

	child, ok := root.Child("a")
	require.True(t, ok)
	assert.True(t, typegraph.Same(child, leaf))

	_, ok = root.Child("missing")
	assert.False(t, ok)
}

func TestSetValue(t *testing.T) {
	n := typegraph.New(1)
	n.SetValue(2)
	assert.Equal(t, 2, n.Value())
}

func TestSetEdge(t *testing.T) {
	t.Run("Append And Retarget", func(t *testing.T) {
		g := typegraph.NewGraph()
		root := g.NewNode("root")
		first := g.NewNode("first")
		second := g.NewNode("second")

		root.SetEdge("x", first)
		assert.Equal(t, []string{"x"}, root.EdgeNames())

		root.SetEdge("x", second)
		assert.Equal(t, []string{"x"}, root.EdgeNames())
		child, _ := root.Child("x")
		assert.Equal(t, "second", child.Value())
	})

	t.Run("Self Cycle", func(t *testing.T) {
		g := typegraph.NewGraph()
		root := g.NewNode("node")
		root.SetEdge("next", root)

		child, ok := root.Child("next")
		require.True(t, ok)
		assert.True(t, typegraph.Same(child, root))
	})
}

func TestImport(t *testing.T) {
	t.Run("Preserves Shared Substructure", func(t *testing.T) {
		src := typegraph.NewGraph()
		shared := src.NewNode("shared")
		root := src.NewNode("root",
			typegraph.Edge{Name: "left", To: shared},
			typegraph.Edge{Name: "right", To: shared},
		)

		dst := typegraph.NewGraph()
		copied := dst.Import(root)
		assert.Same(t, dst, copied.Graph())

		left, _ := copied.Child("left")
		right, _ := copied.Child("right")
		assert.True(t, typegraph.Same(left, right))
		assert.Equal(t, "shared", left.Value())
	})

	t.Run("Same Graph Is Identity", func(t *testing.T) {
		g := typegraph.NewGraph()
		n := g.NewNode("n")
		assert.True(t, typegraph.Same(n, g.Import(n)))
	})

	t.Run("Adopting Foreign Edge Target", func(t *testing.T) {
		other := typegraph.NewGraph()
		foreign := other.NewNode("foreign")

		g := typegraph.NewGraph()
		root := g.NewNode("root", typegraph.Edge{Name: "f", To: foreign})
		child, ok := root.Child("f")
		require.True(t, ok)
		assert.Equal(t, "foreign", child.Value())
		assert.Same(t, g, child.Graph())
	})
}

func TestOverlay(t *testing.T) {
	g := typegraph.NewGraph()
	base := g.NewNode("base", typegraph.Edge{Name: "a", To: g.NewNode("child")})
	over := typegraph.Overlay(base, "over")

	assert.Equal(t, "over", over.Value())
	assert.Equal(t, "base", base.Value())
	assert.Equal(t, []string{"a"}, over.EdgeNames())

	// Edges added to the base after the overlay exists stay visible.
	base.SetEdge("b", g.NewNode("late"))
	assert.Equal(t, []string{"a", "b"}, over.EdgeNames())
}

func TestAt(t *testing.T) {
	g := typegraph.NewGraph()
	deep := g.NewNode("deep")
	mid := g.NewNode("mid", typegraph.Edge{Name: "y", To: deep})
	root := g.NewNode("root", typegraph.Edge{Name: "x", To: mid})

	n, ok := typegraph.At(root, "x", "y")
	require.True(t, ok)
	assert.Equal(t, "deep", n.Value())

	_, ok = typegraph.At(root, "x", "nope")
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	t.Run("Declaration Order", func(t *testing.T) {
		g := typegraph.NewGraph()
		root := g.NewNode("root",
			typegraph.Edge{Name: "b", To: g.NewNode("B")},
			typegraph.Edge{Name: "a", To: g.NewNode("A")},
		)
		out := typegraph.Render(root, false)
		assert.Equal(t, "root: root\n  +--b: B\n  +--a: A\n", out)
	})

	t.Run("Sorted", func(t *testing.T) {
		g := typegraph.NewGraph()
		root := g.NewNode("root",
			typegraph.Edge{Name: "b", To: g.NewNode("B")},
			typegraph.Edge{Name: "a", To: g.NewNode("A")},
		)
		out := typegraph.Render(root, true)
		assert.Equal(t, "root: root\n  +--a: A\n  +--b: B\n", out)
	})

	t.Run("Cycle Terminates", func(t *testing.T) {
		g := typegraph.NewGraph()
		root := g.NewNode("node")
		root.SetEdge("next", root)
		out := typegraph.Render(root, false)
		assert.Contains(t, out, "next: ...")
	})
}
