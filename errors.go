package sift

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSchemaNotRegistered = errors.New("no schema registered for this identifier")
	ErrNilSchema           = errors.New("schema reference is nil")
	ErrBadSchemaRef        = errors.New("schema reference must be a *schema.Node or a registered identifier")
	ErrMalformedJSON       = errors.New("input is not valid JSON")
	ErrNotAnObject         = errors.New("input is not a JSON object")
)

// SetupError reports an unresolvable schema reference passed to Validate.
// It is fatal to the call and never retried.
type SetupError struct {
	Ref   string
	cause error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: cannot resolve schema %q: %v", CodeValidationSetup, e.Ref, e.cause)
}

func (e *SetupError) Unwrap() error { return e.cause }

// Code returns the taxonomy code for this error.
func (e *SetupError) Code() string { return CodeValidationSetup }

// FieldError is one constraint violation on a single field.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InvalidDataError is the structured validation failure handed back to the
// caller. Fields maps dotted field paths to their violations in encounter
// order; it is nil when the underlying engine supplied no usable per-field
// detail. Field lists are never empty.
type InvalidDataError struct {
	Summary string                  `json:"summary"`
	Fields  map[string][]FieldError `json:"fields,omitempty"`
}

func (e *InvalidDataError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", CodeDataInvalid, e.Summary)
	}
	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s:", CodeDataInvalid, e.Summary)
	for _, path := range paths {
		for _, fe := range e.Fields[path] {
			fmt.Fprintf(b, " [%s] %s;", path, fe.Message)
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Code returns the taxonomy code for this error.
func (e *InvalidDataError) Code() string { return CodeDataInvalid }

// ModelResolutionError reports a store, model or field that could not be
// resolved while building a ModelID schema. It is a setup-time
// configuration error: it aborts schema construction and is distinct from
// per-request validation failure.
type ModelResolutionError struct {
	Model  string
	Field  string
	Reason string
}

func (e *ModelResolutionError) Error() string {
	return fmt.Sprintf("%s: model %q field %q: %s", CodeModelResolution, e.Model, e.Field, e.Reason)
}

// Code returns the taxonomy code for this error.
func (e *ModelResolutionError) Code() string { return CodeModelResolution }
