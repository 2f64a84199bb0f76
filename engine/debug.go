package engine

import (
	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/rda"
)

// DebugEdge is a CfgEdge decorated with the set of definitions that
// were live (IN[src]) when control crossed it, the original's
// `total_dfg` debug variant generalized to Go (SPEC_FULL.md §5).
type DebugEdge struct {
	model.CfgEdge
	ReachingDefs []string
}

// BuildDebugProjection keeps every CFG edge but annotates it with the
// names of the definitions reaching its source node, implementing §6
// "Debug mode": a caller running with config.EngineOptions.Debug wants
// to see what the RDA fixed point actually computed overlaid on the
// control-flow structure, not just the final comesFrom edges.
func BuildDebugProjection(g *graphutil.CfgGraph, result rda.Result) []DebugEdge {
	edges := g.Edges()
	out := make([]DebugEdge, 0, len(edges))
	for _, e := range edges {
		facts := result.In[e.Src]
		names := make([]string, 0, len(facts))
		for name := range facts {
			names = append(names, name)
		}
		out = append(out, DebugEdge{CfgEdge: e, ReachingDefs: names})
	}
	return out
}
