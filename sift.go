package sift

import (
	"context"
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/rs/zerolog"

	"github.com/sift-go/sift/schema"
)

///////////////////////////////////////////////////////////////////////////////
// Validator Impl.
///////////////////////////////////////////////////////////////////////////////

// Validator is the main struct that runs the validate-and-clean pipeline:
// schema resolution through its Registry, array coercion, engine
// invocation, result reconciliation, and translation of engine failures
// into the structured error taxonomy.
//
// Each call is independent; the only shared state is the append-only
// Registry, so a single Validator is safe for concurrent use.
type Validator struct {
	registry *Registry
	defaults Options
	log      zerolog.Logger
}

// ValidatorContext provides a curried validator with a fixed per-call
// options layer. This is useful when one call site issues many validations
// with the same overrides.
type ValidatorContext struct {
	validator *Validator
	opts      Options
}

// Validate validates input with the context's options layer applied.
func (vc *ValidatorContext) Validate(ctx context.Context, ref any, input any) (any, error) {
	return vc.validator.Validate(ctx, ref, input, vc.opts)
}

// Opts configures a Validator instance.
type Opts struct {
	// Defaults is the instance options layer, overriding env defaults and
	// overridden by per-call options.
	Defaults Options
	// EnvDefaults loads the SIFT_* environment layer under Defaults.
	EnvDefaults bool
	// Logger receives non-fatal warnings (coercion skips, model resolution).
	// Nil disables logging.
	Logger *zerolog.Logger
	// Registry shares a schema registry between instances. Nil creates a
	// fresh one.
	Registry *Registry
}

// New constructs a Validator.
func New(opts Opts) (*Validator, error) {
	defaults := opts.Defaults
	if opts.EnvDefaults {
		envLayer, err := OptionsFromEnv()
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&defaults, envLayer); err != nil {
			return nil, fmt.Errorf("error merging env options: %w", err)
		}
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "sift").Logger()
	}

	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Validator{
		registry: registry,
		defaults: defaults,
		log:      log,
	}, nil
}

// Registry returns the validator's schema registry.
func (v *Validator) Registry() *Registry { return v.registry }

// WithOptions returns a ValidatorContext that applies opts as the per-call
// layer on every Validate.
func (v *Validator) WithOptions(opts Options) *ValidatorContext {
	return &ValidatorContext{validator: v, opts: opts}
}

// Register compiles and caches a schema in the validator's registry. See
// Registry.Register.
func (v *Validator) Register(def any, id ...string) *schema.Node {
	return v.registry.Register(def, id...)
}

// Validate validates input against a schema or a registered identifier.
//
// ref may be a *schema.Node or a string identifier previously passed to
// Register; anything else fails with a *SetupError. Per-call options
// override the instance defaults, which override the env layer.
//
// On success the processed input is returned: with Clean (the default) the
// engine result alone; without Clean the engine-processed keys are written
// back onto the original input map, which is mutated and returned so extra
// keys the engine dropped survive.
//
// On failure the returned error is always one of the taxonomy types:
// *SetupError, *InvalidDataError, or the caller's own context error.
func (v *Validator) Validate(ctx context.Context, ref any, input any, opts ...Options) (any, error) {
	node, err := v.resolveSchema(ref)
	if err != nil {
		return nil, err
	}

	var call Options
	if len(opts) > 0 {
		call = opts[0]
	}
	resolved, err := resolveOptions(call, v.defaults)
	if err != nil {
		return nil, err
	}
	isClean := resolved.Clean == nil || *resolved.Clean

	if input == nil {
		input = map[string]any{}
	}
	if paths, ok := arrayPathsOf(node); ok {
		input = coerceArrays(paths, input, v.log)
	}

	result, err := node.Validate(ctx, input, engineOptions(resolved))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, translate(err, node)
	}

	if isClean {
		return result, nil
	}
	if processed, ok := result.(map[string]any); ok {
		if original, ok := input.(map[string]any); ok {
			for key, value := range processed {
				original[key] = value
			}
			return original, nil
		}
	}
	return result, nil
}

func (v *Validator) resolveSchema(ref any) (*schema.Node, error) {
	switch r := ref.(type) {
	case *schema.Node:
		if r == nil {
			return nil, &SetupError{Ref: "<nil>", cause: ErrNilSchema}
		}
		return r, nil
	case string:
		node, ok := v.registry.Lookup(r)
		if !ok {
			return nil, &SetupError{Ref: r, cause: ErrSchemaNotRegistered}
		}
		return node, nil
	case nil:
		return nil, &SetupError{Ref: "<nil>", cause: ErrNilSchema}
	default:
		return nil, &SetupError{Ref: fmt.Sprintf("%T", ref), cause: ErrBadSchemaRef}
	}
}

// arrayPathsOf reads the registry-attached coercion metadata.
func arrayPathsOf(node *schema.Node) ([]string, bool) {
	v, ok := node.Meta(metaArrayPaths)
	if !ok {
		return nil, false
	}
	paths, ok := v.([]string)
	return paths, ok && len(paths) > 0
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _defaultValidator *Validator

func init() {
	var err error
	_defaultValidator, err = New(Opts{})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize default validator: %v", err))
	}
}

// Package-level functions that delegate to the default validator

// Default returns the package-wide validator.
func Default() *Validator {
	return _defaultValidator
}

// Register compiles and caches a schema with the default validator.
func Register(def any, id ...string) *schema.Node {
	return _defaultValidator.Register(def, id...)
}

// Validate validates input using the default validator.
func Validate(ctx context.Context, ref any, input any, opts ...Options) (any, error) {
	return _defaultValidator.Validate(ctx, ref, input, opts...)
}

// WithOptions returns a ValidatorContext from the default validator.
func WithOptions(opts Options) *ValidatorContext {
	return _defaultValidator.WithOptions(opts)
}
