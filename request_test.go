package sift

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-go/sift/schema"
)

func TestFromJSON(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		input, err := FromJSON([]byte(`{"name":"kim","tags":["a","b"]}`))
		require.NoError(t, err)
		assert.Equal(t, "kim", input["name"])
		assert.Equal(t, []any{"a", "b"}, input["tags"])
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := FromJSON([]byte(`{"name":`))
		assert.ErrorIs(t, err, ErrMalformedJSON)
	})

	t.Run("NotAnObject", func(t *testing.T) {
		_, err := FromJSON([]byte(`[1,2,3]`))
		assert.ErrorIs(t, err, ErrNotAnObject)
	})
}

func TestFromRequest(t *testing.T) {
	t.Run("QueryParams", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/search?tags=a,b&limit=10&q=x&q=y", nil)
		input, err := FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "a,b", input["tags"])
		assert.Equal(t, "10", input["limit"])
		assert.Equal(t, []any{"x", "y"}, input["q"])
	})

	t.Run("JSONBodyWinsOverQuery", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/things?name=fromquery",
			strings.NewReader(`{"name":"frombody","extra":1}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		input, err := FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "frombody", input["name"])
		assert.Equal(t, float64(1), input["extra"])
	})

	t.Run("NonJSONBodyIgnored", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/things?name=q", strings.NewReader("name=body"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		input, err := FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "q", input["name"])
	})

	t.Run("FeedsThePipeline", func(t *testing.T) {
		v := newTestValidator(t, Opts{})
		node := v.Register(schema.Object(schema.Keys{
			"tags":  schema.Array(schema.String()),
			"limit": schema.Number().Integer(),
		}), "request-schema")

		r := httptest.NewRequest("GET", "/search?tags=a,b&limit=10", nil)
		input, err := FromRequest(r)
		require.NoError(t, err)

		out, err := v.Validate(context.Background(), node, input)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"tags":  []any{"a", "b"},
			"limit": float64(10),
		}, out)
	})
}
