package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

const personSchemaYAML = `
type: mapping
fields:
  name: string
  birthday: date
  favorites: "[string]"
`

func newTestServer(t *testing.T) (*httpadapter.Registry, http.Handler) {
	t.Helper()
	reg := httpadapter.NewRegistry()
	return reg, httpadapter.NewHandler(reg, nil)
}

func do(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRegistry(t *testing.T) {
	reg := httpadapter.NewRegistry()
	assert.Empty(t, reg.Names())

	reg.Put("b", typegraph.New(marker.String{}))
	reg.Put("a", typegraph.New(marker.Int{}))
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	g, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, marker.Int{}, g.Value())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestSchemaLifecycle(t *testing.T) {
	_, handler := newTestServer(t)

	t.Run("Upload", func(t *testing.T) {
		w := do(handler, "PUT", "/schemas/person", personSchemaYAML)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Bad Schema Rejected", func(t *testing.T) {
		w := do(handler, "PUT", "/schemas/broken", "type: quux\n")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		w := do(handler, "GET", "/schemas", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Schemas []string `json:"schemas"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"person"}, resp.Schemas)
	})

	t.Run("Graph", func(t *testing.T) {
		w := do(handler, "GET", "/schemas/person/graph", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "birthday: <Date>")
	})

	t.Run("Unknown Schema", func(t *testing.T) {
		w := do(handler, "GET", "/schemas/nope/graph", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestValidateEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	require.Equal(t, http.StatusNoContent,
		do(handler, "PUT", "/schemas/person", personSchemaYAML).Code)

	t.Run("Invalid Body", func(t *testing.T) {
		w := do(handler, "POST", "/schemas/person/validate", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Data Is 422", func(t *testing.T) {
		// Validation expects loaded values; a raw date string fails.
		w := do(handler, "POST", "/schemas/person/validate",
			`{"name": "Julie Andrews", "birthday": "1935-10-01", "favorites": []}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "birthday")
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	require.Equal(t, http.StatusNoContent,
		do(handler, "PUT", "/schemas/person", personSchemaYAML).Code)

	t.Run("Canonical Form", func(t *testing.T) {
		w := do(handler, "POST", "/schemas/person/normalize",
			`{"name": "Julie Andrews", "birthday": "1935-10-01", "favorites": ["roses"], "extra": 1}`)
		require.Equal(t, http.StatusOK, w.Code)

		var out map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, "1935-10-01", out["birthday"])
		assert.NotContains(t, out, "extra", "undeclared keys are dropped")
	})

	t.Run("Malformed Data Is 422", func(t *testing.T) {
		w := do(handler, "POST", "/schemas/person/normalize",
			`{"name": "x", "birthday": "10/01/1935", "favorites": []}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "bad_format")
	})
}
