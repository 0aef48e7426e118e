package lattice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

func TestTraverse(t *testing.T) {
	t.Run("Walks Without Result", func(t *testing.T) {
		out, err := lattice.Traverse.Call(personSchema(), julie())
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("Fails Fast On Shape Faults", func(t *testing.T) {
		_, err := lattice.Traverse.Call(personSchema(), "not a map")
		assert.Error(t, err)
	})

	t.Run("Custom Walker Via Sub", func(t *testing.T) {
		var seen []string
		spy := lattice.Traverse.Sub().When(marker.KeyString,
			func(dg dispatch.DispatchNode, value any) (any, error) {
				seen = append(seen, value.(string))
				return nil, nil
			})

		_, err := spy.Call(personSchema(), julie())
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Julie Andrews",
			"raindrops on roses",
			"whiskers on kittens",
		}, seen)
	})
}

func TestClone(t *testing.T) {
	t.Run("Deep Copies Containers", func(t *testing.T) {
		g := personSchema()
		src := julie()

		out, err := lattice.Clone.Call(g, src)
		require.NoError(t, err)
		cloned := out.(map[string]any)

		assert.Equal(t, src, cloned)
		cloned["name"] = "changed"
		cloned["favorites"].([]any)[0] = "changed"
		assert.Equal(t, "Julie Andrews", src["name"])
		assert.Equal(t, "raindrops on roses", src["favorites"].([]any)[0])
	})

	t.Run("Save Policy Preserves Extras", func(t *testing.T) {
		g := marker.SchemaMapping{Extra: marker.Save}.Of(
			marker.F("name", marker.String{}),
		)
		out, err := lattice.Clone.Call(g, map[string]any{"name": "x", "extra": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "x", "extra": 1}, out)
	})

	t.Run("Discard Policy Drops Extras", func(t *testing.T) {
		g := marker.SchemaMapping{}.Of(marker.F("name", marker.String{}))
		out, err := lattice.Clone.Call(g, map[string]any{"name": "x", "extra": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "x"}, out)
	})

	t.Run("Object Reconstructs", func(t *testing.T) {
		g := personObject()
		p := person{Name: "x", Birthday: time.Now(), Favorites: []string{"a"}}
		out, err := lattice.Clone.Call(g, p)
		require.NoError(t, err)
		assert.Equal(t, p, out)
	})
}

func TestMutate(t *testing.T) {
	t.Run("Writes Containers In Place", func(t *testing.T) {
		g := personSchema()
		upper := lattice.Mutate.Sub().When(marker.KeyString,
			func(dg dispatch.DispatchNode, value any) (any, error) {
				return value.(string) + "!", nil
			})

		data := julie()
		favorites := data["favorites"].([]any)

		out, err := upper.Call(g, data)
		require.NoError(t, err)
		assert.Equal(t, "Julie Andrews!", data["name"])
		assert.Equal(t, "raindrops on roses!", favorites[0], "same backing array")
		m := out.(map[string]any)
		assert.Equal(t, "Julie Andrews!", m["name"])
	})

	t.Run("Objects Update Through Pointers", func(t *testing.T) {
		g := personObject()
		upper := lattice.Mutate.Sub().When(marker.KeyString,
			func(dg dispatch.DispatchNode, value any) (any, error) {
				return value.(string) + "!", nil
			})

		p := &person{Name: "julie", Favorites: []string{"roses"}}
		_, err := upper.Call(g, p)
		require.NoError(t, err)
		assert.Equal(t, "julie!", p.Name)
	})
}

func TestGraphize(t *testing.T) {
	t.Run("Mirrors The Type Graph", func(t *testing.T) {
		g := personSchema()
		out, err := lattice.Graphize.Call(g, julie())
		require.NoError(t, err)

		root, ok := out.(typegraph.Node)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "birthday", "favorites"}, root.EdgeNames())

		name, ok := typegraph.At(root, "name")
		require.True(t, ok)
		assert.Equal(t, "Julie Andrews", name.Value())

		first, ok := typegraph.At(root, "favorites", "0")
		require.True(t, ok)
		assert.Equal(t, "raindrops on roses", first.Value())
	})

	t.Run("Optional Nil Becomes Empty Node", func(t *testing.T) {
		out, err := lattice.Graphize.Call(marker.OptionalOf(marker.String{}), nil)
		require.NoError(t, err)
		n := out.(typegraph.Node)
		assert.Nil(t, n.Value())
	})
}
