package sift

import (
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// coerceArrays normalizes scalar and comma-separated values into arrays at
// the positions named by paths, so flat query-string-style inputs can be
// validated against array-typed schema fields. Only the named positions are
// touched; everything else passes through unchanged.
//
// Coercion is best-effort: a path whose intermediate segments do not
// resolve to nested objects is skipped (logged at debug level), never
// failed.
func coerceArrays(paths []string, input any, log zerolog.Logger) any {
	for _, path := range paths {
		if path == "" {
			if !isArrayLike(input) {
				input = []any{input}
			}
			continue
		}
		m, ok := input.(map[string]any)
		if !ok {
			continue
		}
		coercePath(m, strings.Split(path, "."), log)
	}
	return input
}

func coercePath(m map[string]any, segments []string, log zerolog.Logger) {
	current := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			log.Debug().
				Str("path", strings.Join(segments, ".")).
				Str("segment", seg).
				Msg("array coercion skipped: intermediate segment is not an object")
			return
		}
		current = next
	}

	last := segments[len(segments)-1]
	value, ok := current[last]
	if !ok {
		return
	}
	if isArrayLike(value) {
		return
	}
	if s, isString := value.(string); isString && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, len(parts))
		for i, part := range parts {
			out[i] = strings.TrimSpace(part)
		}
		current[last] = out
		return
	}
	current[last] = []any{value}
}

func isArrayLike(value any) bool {
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
