package sift

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"

	"github.com/sift-go/sift/schema"
)

// Options is the layered options bag consumed by Validate. Unset pointer
// fields inherit from the next layer down (per-call overrides instance
// defaults, which override env/process defaults).
//
// Clean is consumed by the pipeline itself; every other field passes
// through to the schema engine.
type Options struct {
	// Clean returns only the engine-processed result (default). When false
	// the processed keys are merged back onto the original input, which
	// preserves extra keys the engine dropped.
	Clean *bool `env:"SIFT_CLEAN"`
	// AllowUnknown permits input keys the schema does not declare.
	AllowUnknown *bool `env:"SIFT_ALLOW_UNKNOWN"`
	// StripUnknown drops allowed-but-undeclared keys from the result.
	StripUnknown *bool `env:"SIFT_STRIP_UNKNOWN"`
	// AbortEarly stops at the first violation instead of collecting all.
	AbortEarly *bool `env:"SIFT_ABORT_EARLY"`
	// Convert enables the engine's type coercion (default true).
	Convert *bool `env:"SIFT_CONVERT"`
	// Presence is the default presence for keys without an explicit
	// Required/Optional: "optional" (default) or "required".
	Presence string `env:"SIFT_PRESENCE"`
}

// Bool is a convenience for populating Options literals.
func Bool(v bool) *bool { return &v }

// OptionsFromEnv builds the process-default options layer from SIFT_*
// environment variables.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("error reading options from environment: %w", err)
	}
	return opts, nil
}

// resolveOptions merges the option layers. Earlier arguments win: each merge
// only fills fields the higher layer left unset.
func resolveOptions(layers ...Options) (Options, error) {
	var merged Options
	for _, layer := range layers {
		if err := mergo.Merge(&merged, layer); err != nil {
			return Options{}, fmt.Errorf("error merging options: %w", err)
		}
	}
	return merged, nil
}

// engineOptions resolves the remaining unset fields to the engine baseline
// and converts to schema.Options.
func engineOptions(o Options) schema.Options {
	out := schema.DefaultOptions()
	if o.AllowUnknown != nil {
		out.AllowUnknown = *o.AllowUnknown
	}
	if o.StripUnknown != nil {
		out.StripUnknown = *o.StripUnknown
	}
	if o.AbortEarly != nil {
		out.AbortEarly = *o.AbortEarly
	}
	if o.Convert != nil {
		out.Convert = *o.Convert
	}
	if o.Presence == "required" {
		out.Presence = schema.PresenceRequired
	}
	return out
}
