package sift

import (
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const contentTypeJSON = "application/json"

// FromJSON parses a raw JSON object into the map form the pipeline
// validates. Non-object payloads are rejected.
func FromJSON(data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedJSON
	}
	value := gjson.ParseBytes(data).Value()
	m, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return m, nil
}

// FromRequest extracts a validation input from an HTTP request: query
// parameters first (single values as scalars, repeated keys as arrays),
// then a JSON body when one is present, with body keys taking precedence.
//
// Query values stay as strings; the engine's Convert option and the
// pipeline's array coercion handle typing, which is exactly what flat
// query-string-style inputs need.
func FromRequest(r *http.Request) (map[string]any, error) {
	input := make(map[string]any)

	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			input[key] = values[0]
			continue
		}
		arr := make([]any, len(values))
		for i, v := range values {
			arr[i] = v
		}
		input[key] = arr
	}

	if r.Body == nil || !hasJSONBody(r) {
		return input, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return input, nil
	}
	fromBody, err := FromJSON(body)
	if err != nil {
		return nil, err
	}
	for key, value := range fromBody {
		input[key] = value
	}
	return input, nil
}

func hasJSONBody(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType) == contentTypeJSON
}
