package sift

// Taxonomy codes carried by the error types in errors.go.
const (
	CodeValidationSetup = "VALIDATION_SETUP"
	CodeDataInvalid     = "DATA.INVALID"
	CodeModelResolution = "MODEL_RESOLUTION"
)

// Fixed messages for the DATA.INVALID taxonomy.
const (
	invalidDataSummary  = "Request contains errors"
	invalidDataFallback = "Request contains invalid data"
)

// metaArrayPaths is the schema metadata key under which the registry caches
// the dotted paths of array-typed positions. The empty path denotes the
// schema root itself.
const metaArrayPaths = "sift.arrayPaths"
