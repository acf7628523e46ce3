package sift

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sift-go/sift/schema"
)

// FieldType is the primitive type of a data-model attribute.
type FieldType string

const (
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeString  FieldType = "string"
)

// FieldRef points an attribute at another model's attribute (a foreign
// key).
type FieldRef struct {
	Model string
	Key   string
}

// FieldDescriptor describes one data-model attribute as exposed by the
// store collaborator.
type FieldDescriptor struct {
	Type FieldType
	// Ref, when set, is followed transitively to the referenced attribute.
	Ref *FieldRef
	// Length is the fixed length of the identifier suffix; 0 means
	// unspecified.
	Length int
	// Prefix is a literal identifier prefix, e.g. "usr_".
	Prefix string
}

// ModelDescriptor exposes a model's named attributes.
type ModelDescriptor interface {
	Field(name string) (FieldDescriptor, bool)
}

// Store is the data-store collaborator consumed by ModelID.
type Store interface {
	Model(name string) (ModelDescriptor, bool)
}

// ModelIDOpts tunes ModelID. The zero value targets the model's "id"
// attribute and logs nowhere.
type ModelIDOpts struct {
	// Field selects the attribute; defaults to "id". It may also be given
	// inline as "model.field" in the ref argument.
	Field string
	// Logger receives a warning when resolution fails.
	Logger *zerolog.Logger
}

const maxRefDepth = 8

// ModelID builds an identifier schema for the referenced model attribute,
// following foreign-key references transitively. Integer and float
// attributes yield a number-or-numeric-string schema whose string form is
// parsed into the matching numeric subtype; string attributes yield a
// prefixed fixed-length alphanumeric pattern.
//
// An unresolvable store, model or field is a setup-time configuration
// failure: ModelID logs a warning and returns a *ModelResolutionError
// synchronously, before any validation runs.
func ModelID(store Store, ref string, opts ...ModelIDOpts) (*schema.Node, error) {
	var o ModelIDOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	log := zerolog.Nop()
	if o.Logger != nil {
		log = o.Logger.With().Str("component", "sift").Logger()
	}

	model, field := splitModelRef(ref, o.Field)
	fd, err := resolveField(store, model, field)
	if err != nil {
		log.Warn().Str("model", model).Str("field", field).Err(err).
			Msg("cannot build model identifier schema")
		return nil, err
	}

	switch fd.Type {
	case FieldTypeInteger:
		return numericIDSchema(true), nil
	case FieldTypeFloat:
		return numericIDSchema(false), nil
	case FieldTypeString:
		return stringIDSchema(fd), nil
	default:
		err := &ModelResolutionError{
			Model:  model,
			Field:  field,
			Reason: fmt.Sprintf("unsupported field type %q", fd.Type),
		}
		log.Warn().Str("model", model).Str("field", field).Err(err).
			Msg("cannot build model identifier schema")
		return nil, err
	}
}

func splitModelRef(ref, fieldOpt string) (model, field string) {
	model, field = ref, "id"
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		model, field = ref[:i], ref[i+1:]
	}
	if fieldOpt != "" {
		field = fieldOpt
	}
	return model, field
}

// resolveField looks the attribute up in the store and follows foreign-key
// references until a concrete field definition is reached.
func resolveField(store Store, model, field string) (FieldDescriptor, error) {
	if store == nil {
		return FieldDescriptor{}, &ModelResolutionError{
			Model: model, Field: field, Reason: "no store configured",
		}
	}
	for depth := 0; depth <= maxRefDepth; depth++ {
		md, ok := store.Model(model)
		if !ok {
			return FieldDescriptor{}, &ModelResolutionError{
				Model: model, Field: field, Reason: "model not found in store",
			}
		}
		fd, ok := md.Field(field)
		if !ok {
			return FieldDescriptor{}, &ModelResolutionError{
				Model: model, Field: field, Reason: "field not found on model",
			}
		}
		if fd.Ref == nil {
			return fd, nil
		}
		model, field = fd.Ref.Model, fd.Ref.Key
	}
	return FieldDescriptor{}, &ModelResolutionError{
		Model: model, Field: field, Reason: "foreign-key reference chain too deep",
	}
}

var digitsRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// numericIDSchema accepts a number or a numeric string; the string form is
// parsed into the matching numeric subtype.
func numericIDSchema(integer bool) *schema.Node {
	num := schema.Number().Min(0)
	if integer {
		num = num.Integer()
	}
	str := schema.String().
		Pattern(digitsRe).
		Custom("modelId", func(value any) (any, error) {
			s, _ := value.(string)
			if integer {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return nil, errors.New("must be a valid numeric identifier")
				}
				return n, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.New("must be a valid numeric identifier")
			}
			return f, nil
		})
	return schema.Alternatives(num, str)
}

// stringIDSchema enforces the attribute's fixed identifier shape: an
// optional literal prefix followed by an alphanumeric suffix of known
// length.
func stringIDSchema(fd FieldDescriptor) *schema.Node {
	suffix := "[A-Za-z0-9]+"
	if fd.Length > 0 {
		suffix = fmt.Sprintf("[A-Za-z0-9]{%d}", fd.Length)
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(fd.Prefix) + suffix + "$")
	return schema.String().Pattern(re)
}
