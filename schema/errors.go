package schema

import (
	"fmt"
	"strings"
)

// Violation-kind codes attached to each Detail. Custom messages registered
// via Node.Messages are keyed by these codes; the reserved key
// CodeAnyFallback matches any violation on the node.
const (
	CodeStringBase      = "string.base"
	CodeStringMin       = "string.min"
	CodeStringMax       = "string.max"
	CodeStringLength    = "string.length"
	CodeStringPattern   = "string.pattern"
	CodeStringEmail     = "string.email"
	CodeStringLowercase = "string.lowercase"
	CodeNumberBase      = "number.base"
	CodeNumberInteger   = "number.integer"
	CodeNumberMin       = "number.min"
	CodeNumberMax       = "number.max"
	CodeBooleanBase     = "boolean.base"
	CodeObjectBase      = "object.base"
	CodeObjectUnknown   = "object.unknown"
	CodeArrayBase       = "array.base"
	CodeAnyRequired     = "any.required"
	CodeAnyOnly         = "any.only"
	CodeAnyCustom       = "any.custom"
	CodeAlternatives    = "alternatives.match"

	CodeAnyFallback = "any"
)

// Detail is a single constraint violation. Path addresses the offending
// position in the input (object keys and array indices, root is empty).
// Message always leads with the node's label so callers can strip it.
// Rule carries the registered name of a custom hook, when one failed.
type Detail struct {
	Path    []string
	Code    string
	Message string
	Rule    string
}

// Error is the structured failure returned by Node.Validate. Details are in
// encounter order.
type Error struct {
	Details []Detail
}

// Error summarizes the first few details.
func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(e.Details)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		d := e.Details[i]
		fmt.Fprintf(b, "%s at %q", d.Code, strings.Join(d.Path, "."))
	}
	if len(e.Details) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(e.Details))
	}
	return b.String()
}
