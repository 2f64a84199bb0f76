// Package rda implements the Reaching Definitions Analysis engine
// (component 5, §4.5): a generic monotone-framework fixed-point solver
// over the CFG, forward and may-analysis, distributive over set union.
package rda

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// DefKillFunc returns DEF[n] for a CFG node, supplied by the DFG
// builder's fact-table construction pass (§4.6). KILL is the
// subset of IN[n] whose Name matches any fact in DEF[n]; the engine
// itself does not know the kill relationship, so the caller precomputes
// DEF and leaves the engine to apply IN \ names(DEF) ∪ DEF.
type DefKillFunc func(n model.NodeId) model.FactSet

// Result holds the converged IN/OUT fact sets per node.
type Result struct {
	In  map[model.NodeId]model.FactSet
	Out map[model.NodeId]model.FactSet
}

// Options controls the solver's predecessor model.
type Options struct {
	// Intraprocedural, when true, drops predecessor edges that cross a
	// function boundary (call/return kinds and the destructor chain
	// kinds listed in crossFunctionKinds) before running the fixed
	// point — the "intraprocedural mode" pre-solve toggle of §4.5/§6.
	Intraprocedural bool
}

var crossFunctionKinds = map[model.CfgEdgeKind]bool{
	model.FunctionCall:          true,
	model.MethodCall:            true,
	model.VirtualCall:           true,
	model.ConstructorCall:       true,
	model.DestructorCall:        true,
	model.IndirectCall:          true,
	model.FunctionReturn:        true,
	model.MethodReturn:          true,
	model.ConstructorReturn:     true,
	model.DestructorReturn:      true,
	model.IndirectReturn:        true,
	model.BaseConstructorReturn: true,
	model.BaseDestructorReturn:  true,
	model.DestructorChain:       true,
	model.ScopeExitDestructor:   true,
	model.ScopeDestructorReturn: true,
}

// Solve runs the Kildall-style round-robin fixed point described in
// §4.5: IN[n] = union of OUT[p] over predecessors p; OUT[n] = (IN[n] \
// KILL[n]) ∪ DEF[n]. No worklist ordering is required, only
// convergence, so this iterates every node each round and stops on a
// deep-equality termination check across both IN and OUT.
func Solve(g *graphutil.CfgGraph, defs DefKillFunc, opts Options) Result {
	ids := maps.Keys(g.Nodes)
	slices.Sort(ids)

	in := make(map[model.NodeId]model.FactSet, len(ids))
	out := make(map[model.NodeId]model.FactSet, len(ids))
	for _, id := range ids {
		in[id] = model.NewFactSet()
		out[id] = model.NewFactSet()
	}

	predecessors := buildPredecessors(g, ids, opts)

	for {
		changed := false
		for _, id := range ids {
			newIn := model.NewFactSet()
			for _, pred := range predecessors[id] {
				newIn = newIn.Union(out[pred])
			}

			def := defs(id)
			newOut := model.NewFactSet()
			for name, fact := range newIn {
				if _, killed := def[name]; !killed {
					newOut[name] = fact
				}
			}
			for name, fact := range def {
				newOut[name] = fact
			}

			if !newIn.Equal(in[id]) || !newOut.Equal(out[id]) {
				changed = true
			}
			in[id] = newIn
			out[id] = newOut
		}
		if !changed {
			break
		}
	}

	return Result{In: in, Out: out}
}

func buildPredecessors(g *graphutil.CfgGraph, ids []model.NodeId, opts Options) map[model.NodeId][]model.NodeId {
	preds := make(map[model.NodeId][]model.NodeId, len(ids))
	for _, e := range g.Edges() {
		if opts.Intraprocedural && crossFunctionKinds[e.Kind] {
			continue
		}
		preds[e.Dst] = append(preds[e.Dst], e.Src)
	}
	for k := range preds {
		slices.Sort(preds[k])
	}
	return preds
}
