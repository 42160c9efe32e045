// Package schema has the shared enums, records and reference data for all parts of SmarterTips.
package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// Confidence represents the qualitative confidence label of a prediction.
	Confidence string

	// OutcomeStatus represents the result of retraining one target player.
	OutcomeStatus string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Confidence labels attached to predictions. They are a presentation aid
// derived from p-values and sample size, not a confidence interval.
const (
	HighConfidence   Confidence = "High"
	MediumConfidence Confidence = "Medium"
	LowConfidence    Confidence = "Low"
)

// Per-target retrain outcomes.
const (
	OutcomeTrained      OutcomeStatus = "trained"
	OutcomeInsufficient OutcomeStatus = "skipped_insufficient"
	OutcomeFailed       OutcomeStatus = "failed"
)

// Model version tags.
const (
	DefaultModelVersion = "additive_v1"
	LatestModelVersion  = "latest"
)

// Significance levels used for display and confidence labels.
const (
	SignificantPValue = 0.05
	MarginalPValue    = 0.10
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
