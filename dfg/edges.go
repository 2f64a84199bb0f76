package dfg

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/rda"
)

// DefsFor adapts a FactTable into the rda.DefKillFunc the solver needs.
func (t FactTable) DefsFor(n model.NodeId) model.FactSet {
	if sf, ok := t[n]; ok {
		return sf.Defs
	}
	return model.NewFactSet()
}

// Translator turns a converged RDA result into DfgEdges (§4.7).
type Translator struct {
	Graph  *graphutil.CfgGraph
	Facts  FactTable
	Result rda.Result
	// LastDef, when true, additionally emits a "most recent definition
	// regardless of reach" edge colored orange for every use (§4.7
	// optional step, gated by config.EngineOptions.LastDef).
	LastDef bool
	// Lang resolves a node's type tag so lastDef edges can skip
	// control-statement endpoints (§4.7 step 6).
	Lang lang.Spec
	// TypeTags maps NodeId -> the CfgNode's type_tag, needed to apply
	// the Lang.IsControlStatement check without re-walking the CST.
	TypeTags map[model.NodeId]string
}

func (tr *Translator) isControlStatement(id model.NodeId) bool {
	if tr.Lang == nil || tr.TypeTags == nil {
		return false
	}
	return tr.Lang.IsControlStatement(tr.TypeTags[id])
}

// Translate implements §4.7: for every statement's USE set, find the
// reaching definitions in IN[n] with the same base name and emit a
// comesFrom edge from the definition to the use, applying scope-prefix
// reach and the self-redefinition/loop-carried special case, falling
// back to a global-scope definition of the same name when nothing
// reaches.
func (tr *Translator) Translate() []model.DfgEdge {
	ids := maps.Keys(tr.Graph.Nodes)
	slices.Sort(ids)

	var out []model.DfgEdge
	for _, id := range ids {
		sf, ok := tr.Facts[id]
		if !ok || len(sf.Uses) == 0 {
			continue
		}
		in := tr.Result.In[id]
		names := maps.Keys(sf.Uses)
		slices.Sort(names)
		for _, name := range names {
			use := sf.Uses[name]
			out = append(out, tr.edgesForUse(id, use, in)...)
		}
	}
	return out
}

func (tr *Translator) edgesForUse(useID model.NodeId, use model.Fact, in model.FactSet) []model.DfgEdge {
	var matches []model.Fact
	for _, def := range in {
		if def.BaseName() != use.BaseName() {
			continue
		}
		if !def.Scope.Reaches(use.VariableScope) {
			continue
		}
		matches = append(matches, def)
	}

	if len(matches) == 0 {
		return tr.fallback(useID, use)
	}

	var out []model.DfgEdge
	for _, def := range matches {
		kind := model.ComesFrom
		if def.Line == useID {
			// Self-redefinition within the same statement (e.g. `i =
			// i + 1` inside a loop header) — the def and use share a
			// node id, which only happens via the loop back-edge
			// reaching IN[n] again; mark it loop_carried.
			kind = model.LoopCarried
		}
		out = append(out, model.DfgEdge{
			Src:          def.Line,
			Dst:          useID,
			DataflowType: kind,
			EdgeType:     "DFG_edge",
			Color:        model.ColorComesFrom,
			UsedDef:      use.Name,
			ObjectName:   objectNameOf(use.Name),
		})
	}
	if tr.LastDef && !tr.isControlStatement(useID) {
		if last, ok := tr.mostRecentDef(useID, use); ok && !tr.isControlStatement(last.Line) {
			out = append(out, model.DfgEdge{
				Src:          last.Line,
				Dst:          useID,
				DataflowType: model.LastDef,
				EdgeType:     "DFG_edge",
				Color:        model.ColorLastDef,
				UsedDef:      use.Name,
			})
		}
	}
	return out
}

// fallback runs when no in-scope reaching definition matches: it
// returns a comesFrom edge from the first same-name definition whose
// variable scope is global (the empty scope), and otherwise drops the
// use silently (not an error — §7). It does not try function return
// values, qualified (`A::x`) names, or partial scope-prefix matches.
func (tr *Translator) fallback(useID model.NodeId, use model.Fact) []model.DfgEdge {
	for _, sf := range tr.Facts {
		for name, def := range sf.Defs {
			if name != use.Name {
				continue
			}
			if def.VariableScope.IsGlobal() {
				return []model.DfgEdge{{
					Src: def.Line, Dst: useID, DataflowType: model.ComesFrom,
					EdgeType: "DFG_edge", Color: model.ColorComesFrom, UsedDef: use.Name,
				}}
			}
		}
	}
	return nil
}

// objectNameOf returns the receiver name for a field-qualified fact
// name (`obj.field` -> `obj`), or "" for a plain variable name. This
// is the method-member-access tagging of §4.8: a comesFrom edge whose
// use is a member access carries the receiver object so downstream
// consumers can group accesses by receiver.
func objectNameOf(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}

func (tr *Translator) mostRecentDef(useID model.NodeId, use model.Fact) (model.Fact, bool) {
	var best model.Fact
	found := false
	for _, def := range tr.Result.In[useID] {
		if def.BaseName() != use.BaseName() {
			continue
		}
		if !found || def.Line > best.Line {
			best = def
			found = true
		}
	}
	return best, found
}
