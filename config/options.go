// Package config groups the engine's runtime configuration flags (§6).
package config

// EngineOptions bundles the construction-time toggles exposed by §6,
// built with functional defaults the way the teacher's
// output.NewDefaultOptions constructs output.OutputOptions.
type EngineOptions struct {
	// LastDef, when true, causes the DFG builder to additionally emit
	// the optional "lastDef" edges described in §4.7 (the preceding
	// reaching definition along every comesFrom edge, colored orange).
	LastDef bool

	// PreSolveDropsCrossFunctionEdges, when true, makes RDA skip
	// call/return CFG edges when it collects predecessors, so the
	// analysis never crosses a function boundary; the CFG itself keeps
	// those edges (the intraprocedural pre-solve toggle in
	// §4.5/§6); interprocedural DFG edges are still added afterward by
	// the dedicated pass in §4.8 regardless of this flag.
	PreSolveDropsCrossFunctionEdges bool

	// Debug is the debug-mode flag (§6 "Debug mode", §2.1). Engine.Run
	// does not read it and does not build the RDA-projected graph;
	// engine.BuildDebugProjection builds that graph from a CfgGraph and
	// an rda.Result passed in by the caller, and diagnostic.Logger
	// colors output by its own verbosity level, not by this flag.
	Debug bool
}

// Option mutates an EngineOptions being built by NewEngineOptions.
type Option func(*EngineOptions)

// NewEngineOptions returns the engine defaults (everything off) with
// any Option overrides applied, mirroring output.NewDefaultOptions's
// functional-options shape.
func NewEngineOptions(opts ...Option) EngineOptions {
	o := EngineOptions{
		LastDef:                         false,
		PreSolveDropsCrossFunctionEdges: false,
		Debug:                           false,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

func WithLastDef(enabled bool) Option {
	return func(o *EngineOptions) { o.LastDef = enabled }
}

func WithPreSolveDropsCrossFunctionEdges(enabled bool) Option {
	return func(o *EngineOptions) { o.PreSolveDropsCrossFunctionEdges = enabled }
}

func WithDebug(enabled bool) Option {
	return func(o *EngineOptions) { o.Debug = enabled }
}
