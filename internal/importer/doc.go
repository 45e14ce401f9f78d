// Package importer implements the bulk-import reconciliation engine: it
// takes rows parsed from a spreadsheet upload, normalizes and validates
// them for a given import kind, detects duplicates against both persisted
// state and the in-flight batch, commits the survivors, and reports a
// per-row outcome summary. The package has no UI or transport dependencies.
package importer
