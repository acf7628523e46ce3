// Package schema is a small composable constraint engine: schemas are
// immutable-after-construction trees of *Node built with Object, Array,
// String, Number, Boolean, Any and Alternatives, refined with chainable
// rules, and evaluated with Validate.
//
// The package deliberately exposes the introspection surface a caller needs
// to post-process failures: Kind, Key, Keys, Items, CustomMessages and the
// Meta bag. Nodes must not be mutated after they are first used for
// validation, with one sanctioned exception: attaching derived metadata via
// SetMeta.
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kind identifies the shape a Node constrains.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindObject
	KindArray
	KindAlternatives
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindAlternatives:
		return "alternatives"
	default:
		return "any"
	}
}

// Presence controls whether a key must be present in its parent object.
type Presence int

const (
	PresenceOptional Presence = iota
	PresenceRequired
)

// Keys declares the named children of an object schema.
type Keys map[string]*Node

// CustomFunc is a transform-or-reject hook. It receives the value after the
// node's base type check and earlier rules, and returns the (possibly
// rewritten) value or an error describing the violation. The error text is
// used as the message body, prefixed with the node label.
type CustomFunc func(value any) (any, error)

// rule is one ordered constraint on a node. apply returns the value to
// carry forward and an empty failure text on success.
type rule struct {
	code  string
	name  string
	apply func(value any, opts Options) (any, string)
}

// Node is one position in a schema tree.
type Node struct {
	kind     Kind
	keys     map[string]*Node
	keyOrder []string
	items    *Node
	alts     []*Node
	rules    []rule

	presence    Presence
	presenceSet bool
	defaultVal  any
	hasDefault  bool

	label    string
	messages map[string]string
	meta     map[string]any
}

///////////////////////////////////////////////////////////////////////////////
// Builders
///////////////////////////////////////////////////////////////////////////////

// Object builds an object schema with the given named children. Child order
// is normalized to sorted key order so evaluation is deterministic.
func Object(keys Keys) *Node {
	n := &Node{kind: KindObject, keys: make(map[string]*Node, len(keys))}
	for name := range keys {
		n.keyOrder = append(n.keyOrder, name)
	}
	sort.Strings(n.keyOrder)
	for name, child := range keys {
		n.keys[name] = child
	}
	return n
}

// Array builds an array schema whose elements are constrained by item.
// A nil item leaves elements unconstrained.
func Array(item *Node) *Node {
	return &Node{kind: KindArray, items: item}
}

// String builds a string schema.
func String() *Node { return &Node{kind: KindString} }

// Number builds a numeric schema. All numeric inputs are normalized to
// float64 during validation.
func Number() *Node { return &Node{kind: KindNumber} }

// Boolean builds a boolean schema.
func Boolean() *Node { return &Node{kind: KindBoolean} }

// Any builds a schema that accepts every value.
func Any() *Node { return &Node{kind: KindAny} }

// Alternatives builds a schema that accepts a value matching any one of the
// given schemas, tried in order.
func Alternatives(alts ...*Node) *Node {
	return &Node{kind: KindAlternatives, alts: alts}
}

///////////////////////////////////////////////////////////////////////////////
// Chainable refinement
///////////////////////////////////////////////////////////////////////////////

// Required marks the node as mandatory in its parent object.
func (n *Node) Required() *Node {
	n.presence = PresenceRequired
	n.presenceSet = true
	return n
}

// Optional marks the node as optional regardless of the default presence
// option.
func (n *Node) Optional() *Node {
	n.presence = PresenceOptional
	n.presenceSet = true
	return n
}

// Default sets the value substituted when the key is absent.
func (n *Node) Default(v any) *Node {
	n.defaultVal = v
	n.hasDefault = true
	return n
}

// Label overrides the dotted-path label used in failure messages.
func (n *Node) Label(s string) *Node {
	n.label = s
	return n
}

// Messages registers custom failure messages keyed by violation code. The
// reserved key CodeAnyFallback matches any violation on this node.
func (n *Node) Messages(m map[string]string) *Node {
	if n.messages == nil {
		n.messages = make(map[string]string, len(m))
	}
	for code, msg := range m {
		n.messages[code] = msg
	}
	return n
}

// Custom appends a named transform-or-reject hook, reported under
// CodeAnyCustom on failure. The name is recorded in Detail.Rule.
func (n *Node) Custom(name string, fn CustomFunc) *Node {
	n.rules = append(n.rules, rule{
		code: CodeAnyCustom,
		name: name,
		apply: func(value any, _ Options) (any, string) {
			out, err := fn(value)
			if err != nil {
				return value, err.Error()
			}
			return out, ""
		},
	})
	return n
}

// Min constrains the minimum string length, numeric value or element count,
// depending on the node kind.
func (n *Node) Min(limit float64) *Node {
	switch n.kind {
	case KindNumber:
		n.rules = append(n.rules, rule{
			code: CodeNumberMin,
			apply: func(value any, _ Options) (any, string) {
				if f, ok := value.(float64); ok && f < limit {
					return value, fmt.Sprintf("must be greater than or equal to %v", limit)
				}
				return value, ""
			},
		})
	case KindArray:
		n.rules = append(n.rules, rule{
			code: "array.min",
			apply: func(value any, _ Options) (any, string) {
				if items, ok := value.([]any); ok && len(items) < int(limit) {
					return value, fmt.Sprintf("must contain at least %d items", int(limit))
				}
				return value, ""
			},
		})
	default:
		min := int(limit)
		n.rules = append(n.rules, rule{
			code: CodeStringMin,
			apply: func(value any, _ Options) (any, string) {
				if s, ok := value.(string); ok && len(s) < min {
					return value, fmt.Sprintf("length must be at least %d characters long", min)
				}
				return value, ""
			},
		})
	}
	return n
}

// Max constrains the maximum string length, numeric value or element count,
// depending on the node kind.
func (n *Node) Max(limit float64) *Node {
	switch n.kind {
	case KindNumber:
		n.rules = append(n.rules, rule{
			code: CodeNumberMax,
			apply: func(value any, _ Options) (any, string) {
				if f, ok := value.(float64); ok && f > limit {
					return value, fmt.Sprintf("must be less than or equal to %v", limit)
				}
				return value, ""
			},
		})
	case KindArray:
		n.rules = append(n.rules, rule{
			code: "array.max",
			apply: func(value any, _ Options) (any, string) {
				if items, ok := value.([]any); ok && len(items) > int(limit) {
					return value, fmt.Sprintf("must contain at most %d items", int(limit))
				}
				return value, ""
			},
		})
	default:
		max := int(limit)
		n.rules = append(n.rules, rule{
			code: CodeStringMax,
			apply: func(value any, _ Options) (any, string) {
				if s, ok := value.(string); ok && len(s) > max {
					return value, fmt.Sprintf("length must be at most %d characters long", max)
				}
				return value, ""
			},
		})
	}
	return n
}

// Length constrains a string to an exact length.
func (n *Node) Length(length int) *Node {
	n.rules = append(n.rules, rule{
		code: CodeStringLength,
		apply: func(value any, _ Options) (any, string) {
			if s, ok := value.(string); ok && len(s) != length {
				return value, fmt.Sprintf("length must be %d characters long", length)
			}
			return value, ""
		},
	})
	return n
}

// Pattern constrains a string to match re.
func (n *Node) Pattern(re *regexp.Regexp) *Node {
	n.rules = append(n.rules, rule{
		code: CodeStringPattern,
		apply: func(value any, _ Options) (any, string) {
			if s, ok := value.(string); ok && !re.MatchString(s) {
				return value, "fails to match the required pattern"
			}
			return value, ""
		},
	})
	return n
}

// Integer constrains a number to a whole value.
func (n *Node) Integer() *Node {
	n.rules = append(n.rules, rule{
		code: CodeNumberInteger,
		apply: func(value any, _ Options) (any, string) {
			if f, ok := value.(float64); ok && f != float64(int64(f)) {
				return value, "must be an integer"
			}
			return value, ""
		},
	})
	return n
}

// Email constrains a string to valid address syntax.
func (n *Node) Email() *Node {
	n.rules = append(n.rules, rule{
		code: CodeStringEmail,
		apply: func(value any, _ Options) (any, string) {
			if s, ok := value.(string); ok && !isEmail(s) {
				return value, "must be a valid email"
			}
			return value, ""
		},
	})
	return n
}

// Lowercase lowercases the string when conversion is enabled, and rejects
// mixed-case input otherwise.
func (n *Node) Lowercase() *Node {
	n.rules = append(n.rules, rule{
		code: CodeStringLowercase,
		apply: func(value any, opts Options) (any, string) {
			s, ok := value.(string)
			if !ok {
				return value, ""
			}
			lower := strings.ToLower(s)
			if lower == s {
				return value, ""
			}
			if opts.Convert {
				return lower, ""
			}
			return value, "must only contain lowercase characters"
		},
	})
	return n
}

// Valid restricts the node to exactly the given values.
func (n *Node) Valid(values ...any) *Node {
	allowed := make([]any, len(values))
	copy(allowed, values)
	n.rules = append(n.rules, rule{
		code: CodeAnyOnly,
		apply: func(value any, _ Options) (any, string) {
			for _, want := range allowed {
				if valueEqual(value, want) {
					return value, ""
				}
			}
			return value, fmt.Sprintf("must be one of %v", allowed)
		},
	})
	return n
}

///////////////////////////////////////////////////////////////////////////////
// Introspection
///////////////////////////////////////////////////////////////////////////////

// Kind reports the node's shape.
func (n *Node) Kind() Kind { return n.kind }

// Key returns the named child of an object node.
func (n *Node) Key(name string) (*Node, bool) {
	child, ok := n.keys[name]
	return child, ok
}

// Keys returns the declared child names of an object node, in the
// normalized evaluation order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keyOrder))
	copy(out, n.keyOrder)
	return out
}

// Items returns the element schema of an array node, which may be nil.
func (n *Node) Items() *Node { return n.items }

// CustomMessages returns the messages registered via Messages. The returned
// map is the node's own; callers must not modify it.
func (n *Node) CustomMessages() map[string]string { return n.messages }

// Meta returns a metadata value attached with SetMeta.
func (n *Node) Meta(key string) (any, bool) {
	v, ok := n.meta[key]
	return v, ok
}

// SetMeta attaches derived metadata to the node. This is the only sanctioned
// mutation after a schema is registered; callers are expected to write each
// key at most once, before the node is shared.
func (n *Node) SetMeta(key string, value any) *Node {
	if n.meta == nil {
		n.meta = make(map[string]any, 1)
	}
	n.meta[key] = value
	return n
}
