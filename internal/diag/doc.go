// Package diag defines the diagnostic model shared by all engine phases.
//
// Diagnostic is the central record: severity, a compact numeric code with a
// stable string form, a short message, the primary span, and optional notes.
// Producers emit through a Reporter so emission stays decoupled from storage;
// BagReporter aggregates into a Bag, which supports sorting, deduplication
// and merging.
//
// The package performs no formatting or IO. Rendering lives in
// internal/diagfmt; classification of resolution failures into codes lives
// with the resolution engine itself.
package diag
