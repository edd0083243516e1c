// Package model defines the core data structures used throughout svgmin.
//
// This package contains the following main types:
//   - Document: one SVG file while it moves through the pipeline
//   - FileResult: the per-file processing record (name, sizes, status)
//   - RunReport: the result of one batch run, built from FileResults
//   - Summary: aggregate counters derived from a RunReport
//
// The pipeline, report, database and cli packages all share these types,
// so they live in their own package to avoid import cycles. Everything
// except Document is serializable to JSON for reports and run history.
package model
