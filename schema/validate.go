package schema

import (
	"context"
	"net/mail"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Options tune a single validation pass.
type Options struct {
	// AllowUnknown permits object keys that are not declared in the schema.
	AllowUnknown bool
	// StripUnknown drops allowed-but-undeclared keys from the result.
	StripUnknown bool
	// AbortEarly stops at the first violation.
	AbortEarly bool
	// Convert enables type coercion (numeric strings, boolean strings,
	// lowercase transforms).
	Convert bool
	// Presence is applied to nodes without an explicit Required/Optional.
	Presence Presence
}

// DefaultOptions are the engine's baseline: collect all violations, convert
// where possible, reject unknown keys, keys optional unless marked.
func DefaultOptions() Options {
	return Options{Convert: true}
}

type state struct {
	opts    Options
	details []Detail
}

func (s *state) fail(path []string, code, ruleName, label, text string) {
	s.details = append(s.details, Detail{
		Path:    append([]string(nil), path...),
		Code:    code,
		Rule:    ruleName,
		Message: label + " " + text,
	})
}

func (s *state) aborted() bool {
	return s.opts.AbortEarly && len(s.details) > 0
}

// Validate evaluates value against the schema tree. On success it returns
// the processed value: converted scalars, defaults filled in, unknown keys
// stripped when requested. On failure it returns a *Error carrying every
// violation in encounter order (or just the first with AbortEarly).
//
// ctx is consulted at object and array boundaries; a context error is
// returned as-is, never wrapped in *Error.
func (n *Node) Validate(ctx context.Context, value any, opts Options) (any, error) {
	st := &state{opts: opts}
	out, _ := n.validate(ctx, st, nil, value)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(st.details) > 0 {
		return nil, &Error{Details: st.details}
	}
	return out, nil
}

// validate returns the processed value and whether it should be kept. A
// false return means the violation has already been recorded (or the pass
// was cancelled).
func (n *Node) validate(ctx context.Context, st *state, path []string, value any) (any, bool) {
	label := n.labelFor(path)

	switch n.kind {
	case KindObject:
		return n.validateObject(ctx, st, path, value, label)
	case KindArray:
		return n.validateArray(ctx, st, path, value, label)
	case KindAlternatives:
		return n.validateAlternatives(ctx, st, path, value, label)
	}

	value, ok := n.checkBase(st, path, value, label)
	if !ok {
		return nil, false
	}
	return n.applyRules(st, path, value, label)
}

func (n *Node) labelFor(path []string) string {
	if n.label != "" {
		return n.label
	}
	if len(path) == 0 {
		return "value"
	}
	return strings.Join(path, ".")
}

// checkBase enforces the node's primitive type, converting when allowed.
func (n *Node) checkBase(st *state, path []string, value any, label string) (any, bool) {
	switch n.kind {
	case KindString:
		if s, ok := value.(string); ok {
			return s, true
		}
		st.fail(path, CodeStringBase, "", label, "must be a string")
		return nil, false
	case KindNumber:
		if f, ok := toFloat(value); ok {
			return f, true
		}
		if s, ok := value.(string); ok && st.opts.Convert {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
		st.fail(path, CodeNumberBase, "", label, "must be a number")
		return nil, false
	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b, true
		}
		if s, ok := value.(string); ok && st.opts.Convert {
			if b, err := strconv.ParseBool(s); err == nil {
				return b, true
			}
		}
		st.fail(path, CodeBooleanBase, "", label, "must be a boolean")
		return nil, false
	default:
		return value, true
	}
}

// applyRules runs the node's rules in declaration order. A failing rule
// records a detail and carries the value forward unchanged so later rules
// still run when not aborting early.
func (n *Node) applyRules(st *state, path []string, value any, label string) (any, bool) {
	ok := true
	for _, r := range n.rules {
		out, text := r.apply(value, st.opts)
		if text != "" {
			st.fail(path, r.code, r.name, label, text)
			ok = false
			if st.opts.AbortEarly {
				return nil, false
			}
			continue
		}
		value = out
	}
	return value, ok
}

func (n *Node) validateObject(ctx context.Context, st *state, path []string, value any, label string) (any, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		st.fail(path, CodeObjectBase, "", label, "must be of type object")
		return nil, false
	}

	out := make(map[string]any, len(m))
	allOK := true

	for _, name := range n.keyOrder {
		if ctx.Err() != nil || st.aborted() {
			return nil, false
		}
		child := n.keys[name]
		childPath := append(path, name)
		raw, present := m[name]
		if !present {
			if child.requiredUnder(st.opts) {
				st.fail(childPath, CodeAnyRequired, "", child.labelFor(childPath), "is required")
				allOK = false
			} else if child.hasDefault {
				out[name] = child.defaultVal
			}
			continue
		}
		res, childOK := child.validate(ctx, st, childPath, raw)
		if childOK {
			out[name] = res
		} else {
			allOK = false
		}
	}

	// Undeclared keys, in sorted order for deterministic reporting.
	var extra []string
	for name := range m {
		if _, declared := n.keys[name]; !declared {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		if st.aborted() {
			return nil, false
		}
		if !st.opts.AllowUnknown {
			childPath := append(path, name)
			st.fail(childPath, CodeObjectUnknown, "", strings.Join(childPath, "."), "is not allowed")
			allOK = false
			continue
		}
		if !st.opts.StripUnknown {
			out[name] = m[name]
		}
	}

	if !allOK {
		return nil, false
	}
	out, ok = objectRules(n, st, path, out, label)
	return out, ok
}

// objectRules runs any chained rules against the assembled object.
func objectRules(n *Node, st *state, path []string, out map[string]any, label string) (map[string]any, bool) {
	res, ok := n.applyRules(st, path, any(out), label)
	if !ok {
		return nil, false
	}
	if m, isMap := res.(map[string]any); isMap {
		return m, true
	}
	return out, true
}

func (n *Node) validateArray(ctx context.Context, st *state, path []string, value any, label string) (any, bool) {
	items, ok := toSlice(value)
	if !ok {
		st.fail(path, CodeArrayBase, "", label, "must be an array")
		return nil, false
	}

	out := make([]any, 0, len(items))
	allOK := true
	for i, item := range items {
		if ctx.Err() != nil || st.aborted() {
			return nil, false
		}
		if n.items == nil {
			out = append(out, item)
			continue
		}
		res, itemOK := n.items.validate(ctx, st, append(path, strconv.Itoa(i)), item)
		if itemOK {
			out = append(out, res)
		} else {
			allOK = false
		}
	}
	if !allOK {
		return nil, false
	}
	res, ok := n.applyRules(st, path, any(out), label)
	if !ok {
		return nil, false
	}
	if arr, isArr := res.([]any); isArr {
		return arr, true
	}
	return out, true
}

// validateAlternatives accepts the first alternative that validates with no
// violations. Each attempt runs against a scratch state so failed branches
// leave no trace.
func (n *Node) validateAlternatives(ctx context.Context, st *state, path []string, value any, label string) (any, bool) {
	for _, alt := range n.alts {
		scratch := &state{opts: st.opts}
		out, ok := alt.validate(ctx, scratch, path, value)
		if ok && len(scratch.details) == 0 {
			return n.applyRules(st, path, out, label)
		}
		if ctx.Err() != nil {
			return nil, false
		}
	}
	st.fail(path, CodeAlternatives, "", label, "does not match any of the allowed types")
	return nil, false
}

func (n *Node) requiredUnder(opts Options) bool {
	if n.presenceSet {
		return n.presence == PresenceRequired
	}
	return opts.Presence == PresenceRequired
}

///////////////////////////////////////////////////////////////////////////////
// Value helpers
///////////////////////////////////////////////////////////////////////////////

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// toSlice accepts any slice or array value; []any and []string are the
// common decoded shapes, everything else goes through reflection so typed
// slices like []int validate the same way.
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func valueEqual(got, want any) bool {
	if gf, ok := toFloat(got); ok {
		if wf, ok := toFloat(want); ok {
			return gf == wf
		}
		return false
	}
	return got == want
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	// mail.ParseAddress accepts local-only domains; require a dot.
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
