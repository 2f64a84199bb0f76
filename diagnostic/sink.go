// Package diagnostic provides the pluggable structured-diagnostic sink
// construction reports through (spec.md §7). Construction never
// raises: every rule that detects a missing index, unresolved
// identifier, invalid control structure, or parser inconsistency
// reports the skip through a Sink and otherwise moves on.
package diagnostic

// Kind classifies a diagnostic against the §7 error taxonomy.
type Kind string

const (
	MissingIndex           Kind = "missing_index"
	UnresolvedIdentifier   Kind = "unresolved_identifier"
	InvalidControlFlow     Kind = "invalid_control_flow"
	ParserInconsistency    Kind = "parser_inconsistency"
)

// Sink receives non-fatal construction diagnostics and general
// progress/debug output. Implementations must never block
// construction; NopSink is safe as a default.
type Sink interface {
	Progress(format string, args ...any)
	Statistic(format string, args ...any)
	Debug(format string, args ...any)
	Skip(kind Kind, format string, args ...any)
	Warning(format string, args ...any)
}

// NopSink discards everything. It is the Engine's default sink so
// construction is silent unless a caller opts into diagnostics.
type NopSink struct{}

func (NopSink) Progress(string, ...any)        {}
func (NopSink) Statistic(string, ...any)       {}
func (NopSink) Debug(string, ...any)           {}
func (NopSink) Skip(Kind, string, ...any)      {}
func (NopSink) Warning(string, ...any)         {}
