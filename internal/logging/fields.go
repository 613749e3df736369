package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldURI        = "uri"
	FieldWorkingDir = "working_dir"

	// Document fields.
	FieldVersion  = "version"
	FieldLanguage = "language"
	FieldRange    = "range"
	FieldKind     = "kind"

	// Query fields.
	FieldEpoch   = "epoch"
	FieldCommand = "command"
	FieldProbes  = "probes"
	FieldAttempt = "attempt"
	FieldReason  = "reason"

	// Navigation fields.
	FieldOp        = "op"
	FieldStatus    = "status"
	FieldDirection = "direction"
	FieldTarget    = "target"
	FieldParent    = "parent"

	// Service fields.
	FieldBackend = "backend"
	FieldServer  = "server"
	FieldMethod  = "method"

	// Build info fields.
	FieldCommit = "commit"
	FieldBuilt  = "built"
)
