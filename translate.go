package sift

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sift-go/sift/schema"
)

// translate converts an engine failure into the structured DATA.INVALID
// taxonomy. It is the single catch point of the pipeline: no raw engine
// error ever escapes to the caller.
func translate(err error, root *schema.Node) error {
	var engineErr *schema.Error
	if !errors.As(err, &engineErr) || len(engineErr.Details) == 0 {
		return &InvalidDataError{Summary: invalidDataFallback}
	}

	fields := make(map[string][]FieldError, len(engineErr.Details))
	// Paths whose generic fallback message has been used. Once a field's
	// "any" message is emitted, every later detail for that field is
	// dropped from the report.
	anySuppressed := make(map[string]bool)

	for _, detail := range engineErr.Details {
		path := strings.Join(detail.Path, ".")
		if anySuppressed[path] {
			continue
		}

		message := detail.Message
		if node, ok := nodeAt(root, detail.Path); ok {
			custom := node.CustomMessages()
			if m, found := custom[detail.Code]; found {
				message = m
			} else if m, found := custom[schema.CodeAnyFallback]; found {
				message = m
				anySuppressed[path] = true
			}
		}

		message = capitalize(trimFieldPrefix(message, path))
		fields[path] = append(fields[path], FieldError{
			Code:    detail.Code,
			Message: message,
		})
	}

	return &InvalidDataError{Summary: invalidDataSummary, Fields: fields}
}

// nodeAt resolves a detail path to its schema node through the engine's
// keyed-child introspection. Any unresolvable step means "no custom
// metadata", not an error.
func nodeAt(root *schema.Node, path []string) (*schema.Node, bool) {
	node := root
	for _, segment := range path {
		switch node.Kind() {
		case schema.KindObject:
			child, ok := node.Key(segment)
			if !ok {
				return nil, false
			}
			node = child
		case schema.KindArray:
			if _, err := strconv.Atoi(segment); err != nil {
				return nil, false
			}
			if node.Items() == nil {
				return nil, false
			}
			node = node.Items()
		default:
			return nil, false
		}
	}
	return node, true
}

// trimFieldPrefix strips a redundant leading repetition of the field path
// from the message, quoted or bare.
func trimFieldPrefix(message, path string) string {
	if path == "" {
		return strings.TrimPrefix(message, "value ")
	}
	for _, prefix := range []string{`"` + path + `" `, path + " "} {
		if strings.HasPrefix(message, prefix) {
			return message[len(prefix):]
		}
	}
	return message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
