package validators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/validators"
)

func intPtr(n int) *int { return &n }

func code(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	inv, ok := invalid.As(err)
	require.True(t, ok)
	require.NotEmpty(t, inv.Issues())
	return inv.Issues()[0].Code
}

func TestInRange(t *testing.T) {
	r := validators.InRange{Low: 3, High: 44}

	assert.NoError(t, r.Validate(3))
	assert.NoError(t, r.Validate(44))
	assert.NoError(t, r.Validate(12.5))
	assert.NoError(t, r.Validate(nil))

	assert.Equal(t, "range_error/too_low", code(t, r.Validate(2)))
	assert.Equal(t, "range_error/too_high", code(t, r.Validate(45)))

	t.Run("Open Ends", func(t *testing.T) {
		assert.NoError(t, validators.InRange{Low: 3}.Validate(1000000))
		assert.NoError(t, validators.InRange{High: 3}.Validate(-1000000))
	})

	t.Run("Strings Compare Lexically", func(t *testing.T) {
		r := validators.InRange{Low: "b", High: "d"}
		assert.NoError(t, r.Validate("c"))
		assert.Equal(t, "range_error/too_low", code(t, r.Validate("a")))
	})
}

func TestHasLength(t *testing.T) {
	h := validators.HasLength{Length: 3}
	assert.NoError(t, h.Validate("abc"))
	assert.NoError(t, h.Validate([]any{1, 2, 3}))
	assert.Equal(t, "value_error/wrong_length", code(t, h.Validate("ab")))

	// Values without a length are out of scope.
	assert.NoError(t, h.Validate(42))
}

func TestLengthInRange(t *testing.T) {
	l := validators.LengthInRange{Min: intPtr(2), Max: intPtr(4)}
	assert.NoError(t, l.Validate("ab"))
	assert.NoError(t, l.Validate("abcd"))
	assert.Equal(t, "value_error/too_short", code(t, l.Validate("a")))
	assert.Equal(t, "value_error/too_long", code(t, l.Validate("abcde")))
}

func TestRegexp(t *testing.T) {
	r := validators.MustRegexp(`^\d{4}$`)
	assert.NoError(t, r.Validate("1935"))
	assert.Equal(t, "bad_value/pattern", code(t, r.Validate("35")))
	assert.NoError(t, r.Validate(42), "non-strings are out of scope")
}

func TestOneOf(t *testing.T) {
	o := validators.OneOf{Choices: []any{"red", "green"}}
	assert.NoError(t, o.Validate("red"))
	assert.Equal(t, "bad_value/not_in_set", code(t, o.Validate("blue")))
}

func TestValidatedDispatch(t *testing.T) {
	t.Run("Only Validate Interprets The Wrapper", func(t *testing.T) {
		g := validators.Wrap(marker.String{}, validators.LengthInRange{Max: intPtr(3)})

		// Dictify treats the wrapper as transparent.
		out, err := lattice.Dictify.Call(g, "much too long")
		require.NoError(t, err)
		assert.Equal(t, "much too long", out)

		_, err = lattice.Validate.Call(g, "ok")
		assert.NoError(t, err)

		assert.Equal(t, "value_error/too_long", code(t, func() error {
			_, err := lattice.Validate.Call(g, "much too long")
			return err
		}()))
	})

	t.Run("Validator And Inner Issues Aggregate Together", func(t *testing.T) {
		g := validators.Wrap(marker.String{}, validators.HasLength{Length: 3})

		_, err := lattice.Validate.Call(g, 42)
		inv, ok := invalid.As(err)
		require.True(t, ok)

		var codes []string
		for _, issue := range inv.Issues() {
			codes = append(codes, issue.Code)
		}
		assert.Contains(t, codes, invalid.CodeTypeError)
	})

	t.Run("Wrapped Field Inside A Mapping", func(t *testing.T) {
		g := marker.SchemaMapping{}.Of(
			marker.F("year", validators.Wrap(marker.Int{}, validators.InRange{Low: 1900, High: 2100})),
		)
		_, err := lattice.Validate.Call(g, map[string]any{"year": 1935})
		assert.NoError(t, err)

		_, err = lattice.Validate.Call(g, map[string]any{"year": 1066})
		inv, ok := invalid.As(err)
		require.True(t, ok)
		child, ok := inv.Child("year")
		require.True(t, ok)
		assert.Equal(t, "range_error/too_low", child.Issues()[0].Code)
	})

	t.Run("Stacks With Optional", func(t *testing.T) {
		g := marker.OptionalOf(validators.Wrap(marker.String{}, validators.HasLength{Length: 3}))

		_, err := lattice.Validate.Call(g, nil)
		assert.NoError(t, err)

		_, err = lattice.Validate.Call(g, "abc")
		assert.NoError(t, err)

		assert.Equal(t, "value_error/wrong_length", code(t, func() error {
			_, err := lattice.Validate.Call(g, "ab")
			return err
		}()))
	})
}
