package marker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

func TestKeyChain(t *testing.T) {
	chain := marker.KeyString.Chain()
	assert.Equal(t, []marker.Key{
		"marker/leaf/typed/string",
		"marker/leaf/typed",
		"marker/leaf",
		"marker",
	}, chain)
}

func TestKeyIsA(t *testing.T) {
	assert.True(t, marker.KeyString.IsA(marker.KeyLeaf))
	assert.True(t, marker.KeyString.IsA(marker.KeyString))
	assert.False(t, marker.KeyLeaf.IsA(marker.KeyString))
	// Prefix matching is per segment, not per character.
	assert.False(t, marker.Key("marker/li").IsA(marker.KeyList))
	assert.False(t, marker.Key("marker/listing").IsA(marker.KeyList))
}

func TestKeyExtend(t *testing.T) {
	k := marker.KeyObject.Extend("person")
	assert.Equal(t, marker.Key("marker/schema/object/person"), k)
	assert.True(t, k.IsA(marker.KeyObject))
}

type traversableStub struct{ g typegraph.Node }

func (s traversableStub) TypeGraph() typegraph.Node { return s.g }

func TestToGraph(t *testing.T) {
	t.Run("Node Passes Through", func(t *testing.T) {
		n := typegraph.New(marker.String{})
		got, err := marker.ToGraph(n)
		require.NoError(t, err)
		assert.True(t, typegraph.Same(n, got))
	})

	t.Run("Marker Becomes Single Node", func(t *testing.T) {
		got, err := marker.ToGraph(marker.Int{})
		require.NoError(t, err)
		assert.Equal(t, marker.Int{}, got.Value())
		assert.Empty(t, got.EdgeNames())
	})

	t.Run("Traversable Expands", func(t *testing.T) {
		n := typegraph.New(marker.Bool{})
		got, err := marker.ToGraph(traversableStub{g: n})
		require.NoError(t, err)
		assert.True(t, typegraph.Same(n, got))
	})

	t.Run("Unknown Value Fails", func(t *testing.T) {
		_, err := marker.ToGraph(42)
		assert.Error(t, err)
	})
}

func TestCompositeGraphs(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		g := marker.List{}.Of(marker.String{})
		assert.Equal(t, marker.List{}, g.Value())
		sub, ok := g.Child("sub")
		require.True(t, ok)
		assert.Equal(t, marker.String{}, sub.Value())
	})

	t.Run("StrMapping", func(t *testing.T) {
		g := marker.StrMapping{}.Of(marker.Int{})
		sub, ok := g.Child("sub")
		require.True(t, ok)
		assert.Equal(t, marker.Int{}, sub.Value())
	})

	t.Run("SchemaMapping Keeps Declaration Order", func(t *testing.T) {
		g := marker.SchemaMapping{}.Of(
			marker.F("zulu", marker.String{}),
			marker.F("alpha", marker.Int{}),
		)
		assert.Equal(t, []string{"zulu", "alpha"}, g.EdgeNames())
	})

	t.Run("Nested Declarations", func(t *testing.T) {
		g := marker.SchemaMapping{}.Of(
			marker.F("tags", marker.List{}.Of(marker.String{})),
		)
		sub, ok := typegraph.At(g, "tags", "sub")
		require.True(t, ok)
		assert.Equal(t, marker.String{}, sub.Value())
	})
}

func TestWrappers(t *testing.T) {
	t.Run("OptionalOf Keeps Children", func(t *testing.T) {
		inner := marker.SchemaMapping{}.Of(marker.F("name", marker.String{}))
		g := marker.OptionalOf(inner)

		opt, ok := g.Value().(marker.Optional)
		require.True(t, ok)
		assert.Equal(t, marker.SchemaMapping{}, opt.Inner())
		assert.Equal(t, []string{"name"}, g.EdgeNames())
	})

	t.Run("Unwrap", func(t *testing.T) {
		m := marker.Optional{Wrap: marker.Wrap{Marker: marker.Wrap{Marker: marker.String{}}}}
		assert.Equal(t, marker.String{}, marker.Unwrap(m))
		assert.Equal(t, marker.Int{}, marker.Unwrap(marker.Int{}))
	})

	t.Run("FindWrapper", func(t *testing.T) {
		m := marker.Wrap{Marker: marker.Optional{Wrap: marker.Wrap{Marker: marker.String{}}}}
		w, ok := marker.FindWrapper(m, marker.KeyOptional)
		require.True(t, ok)
		assert.Equal(t, marker.KeyOptional, w.Key())

		_, ok = marker.FindWrapper(marker.String{}, marker.KeyOptional)
		assert.False(t, ok)
	})
}

type account struct {
	Username string
	Email    string `mapstructure:"mail"`
	age      int
}

func TestObject(t *testing.T) {
	t.Run("Requires Struct", func(t *testing.T) {
		assert.Panics(t, func() { marker.NewObject(42) })
	})

	t.Run("Key Includes Type Name", func(t *testing.T) {
		obj := marker.NewObject(account{})
		assert.Equal(t, marker.KeyObject.Extend("account"), obj.Key())
		assert.True(t, obj.Key().IsA(marker.KeyObject))
	})

	t.Run("Marker Name Override", func(t *testing.T) {
		obj := marker.NewObject(account{}, marker.WithMarkerName("acct"))
		assert.Equal(t, marker.KeyObject.Extend("acct"), obj.Key())
	})

	t.Run("FieldValue", func(t *testing.T) {
		obj := marker.NewObject(account{})
		a := account{Username: "julie", Email: "julie@example.com", age: 3}

		v, ok := obj.FieldValue(a, "username")
		require.True(t, ok)
		assert.Equal(t, "julie", v)

		// The mapstructure tag wins over the field name.
		v, ok = obj.FieldValue(&a, "mail")
		require.True(t, ok)
		assert.Equal(t, "julie@example.com", v)

		_, ok = obj.FieldValue(a, "email")
		assert.False(t, ok)

		_, ok = obj.FieldValue(a, "age")
		assert.False(t, ok, "unexported fields are invisible")
	})

	t.Run("SetFieldValue", func(t *testing.T) {
		obj := marker.NewObject(account{})
		a := &account{}
		require.NoError(t, obj.SetFieldValue(a, "username", "maria"))
		require.NoError(t, obj.SetFieldValue(a, "mail", "m@example.com"))
		assert.Equal(t, "maria", a.Username)
		assert.Equal(t, "m@example.com", a.Email)

		assert.Error(t, obj.SetFieldValue(account{}, "username", "x"))
		assert.Error(t, obj.SetFieldValue(a, "username", 42),
			"integers never coerce to strings")
		assert.Equal(t, "maria", a.Username)
	})

	t.Run("SetFieldValue Slices", func(t *testing.T) {
		type bag struct {
			Items []string
		}
		obj := marker.NewObject(bag{})
		b := &bag{}
		require.NoError(t, obj.SetFieldValue(b, "items", []any{"a", "b"}))
		assert.Equal(t, []string{"a", "b"}, b.Items)

		assert.Error(t, obj.SetFieldValue(b, "items", []any{1, 2}))
		assert.Equal(t, []string{"a", "b"}, b.Items)
	})

	t.Run("Accepts", func(t *testing.T) {
		obj := marker.NewObject(account{})
		assert.True(t, obj.Accepts(account{}))
		assert.True(t, obj.Accepts(&account{}))
		assert.False(t, obj.Accepts("account"))
		assert.False(t, obj.Accepts(nil))
	})

	t.Run("WantsPointer", func(t *testing.T) {
		assert.False(t, marker.NewObject(account{}).WantsPointer())
		assert.True(t, marker.NewObject(&account{}).WantsPointer())
	})
}
