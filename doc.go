// Package sift is a schema-driven input-validation layer that sits in front
// of request-handling logic. A schema is declared once with the composable
// builders from the schema subpackage, registered under a stable identifier,
// and reused for every validation call.
//
// The package provides:
//   - a process-wide schema registry with idempotent registration, keyed by
//     an explicit identifier or by the caller's source location
//   - a validate pipeline that coerces query-string-style scalars into
//     arrays where the schema expects them, runs the schema engine, and
//     reconciles the cleaned result with the original input
//   - a translator that turns engine failures into a single structured,
//     field-indexed error with per-field custom message resolution
//   - a library of domain builders: Enum, URL, Domain, Email, PhoneNumber,
//     ID, UUID and the store-backed ModelID
//
// To use the package, you may use the exported functions on the default
// validator:
//   - Register(): compile and cache a schema
//   - Validate(): validate input against a schema or registered identifier
//
// Or construct your own instance with New() to control option defaults,
// logging, and registry sharing.
//
// Validation is stateless per call and safe for concurrent use; the
// registry is append-only and insert-if-absent, so repeated registrations
// under the same identifier return the identical schema and never re-invoke
// the factory.
package sift
