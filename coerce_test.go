package sift

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCoerceArrays(t *testing.T) {
	log := zerolog.Nop()

	t.Run("CommaSeparatedSplit", func(t *testing.T) {
		input := map[string]any{"tags": "a, b,c"}
		out := coerceArrays([]string{"tags"}, input, log)
		assert.Equal(t, map[string]any{"tags": []any{"a", "b", "c"}}, out)
	})

	t.Run("ScalarWrapped", func(t *testing.T) {
		input := map[string]any{"tags": "solo"}
		out := coerceArrays([]string{"tags"}, input, log)
		assert.Equal(t, map[string]any{"tags": []any{"solo"}}, out)

		input = map[string]any{"count": 7}
		out = coerceArrays([]string{"count"}, input, log)
		assert.Equal(t, map[string]any{"count": []any{7}}, out)
	})

	t.Run("AlreadyArrayUnchanged", func(t *testing.T) {
		input := map[string]any{"tags": []any{"already"}}
		out := coerceArrays([]string{"tags"}, input, log)
		assert.Equal(t, map[string]any{"tags": []any{"already"}}, out)
	})

	t.Run("AbsentFieldUnchanged", func(t *testing.T) {
		input := map[string]any{"other": 1}
		out := coerceArrays([]string{"tags"}, input, log)
		assert.Equal(t, map[string]any{"other": 1}, out)
	})

	t.Run("NestedPath", func(t *testing.T) {
		input := map[string]any{"filter": map[string]any{"ids": "1,2"}}
		out := coerceArrays([]string{"filter.ids"}, input, log)
		assert.Equal(t, map[string]any{"filter": map[string]any{"ids": []any{"1", "2"}}}, out)
	})

	t.Run("UnwalkablePathSkipped", func(t *testing.T) {
		input := map[string]any{"filter": "not-an-object", "tags": "a"}
		out := coerceArrays([]string{"filter.ids", "tags"}, input, log)
		// The bad path is skipped, the good one still coerced.
		assert.Equal(t, map[string]any{
			"filter": "not-an-object",
			"tags":   []any{"a"},
		}, out)
	})

	t.Run("RootPath", func(t *testing.T) {
		assert.Equal(t, []any{"solo"}, coerceArrays([]string{""}, "solo", log))
		assert.Equal(t, []any{"already"}, coerceArrays([]string{""}, []any{"already"}, log))
	})

	t.Run("NonObjectInputUnchanged", func(t *testing.T) {
		assert.Equal(t, "scalar", coerceArrays([]string{"tags"}, "scalar", log))
	})
}
