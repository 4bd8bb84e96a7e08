// Package detect holds the catalogue of secret and PII detectors.
//
// A [Registry] is built once at startup from the builtin tables (and an
// optional YAML file of extra detectors) and is read-only afterwards. Build
// fails on any invalid definition; a detector that does not compile would
// otherwise produce no findings at all.
//
// Patterns are Go RE2 expressions, so matching is linear in the input size.
package detect
