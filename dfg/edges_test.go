package dfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/rda"
)

func TestTranslateEmitsComesFromForReachingDef(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})
	g.AddNode(model.CfgNode{ID: 2})
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.NextLine})

	facts := FactTable{
		2: {Defs: model.NewFactSet(), Uses: factSetOf(model.Fact{Name: "x", VariableScope: model.Scope{0}})},
	}
	in := model.NewFactSet()
	in.Add(model.Fact{Name: "x", Line: 1, Scope: model.Scope{0}})
	result := rda.Result{In: map[model.NodeId]model.FactSet{2: in}, Out: map[model.NodeId]model.FactSet{}}

	tr := &Translator{Graph: g, Facts: facts, Result: result}
	edges := tr.Translate()

	assert.Len(t, edges, 1)
	assert.Equal(t, model.NodeId(1), edges[0].Src)
	assert.Equal(t, model.NodeId(2), edges[0].Dst)
	assert.Equal(t, model.ComesFrom, edges[0].DataflowType)
}

func TestTranslateMarksSelfRedefinitionLoopCarried(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})

	facts := FactTable{
		1: {Defs: model.NewFactSet(), Uses: factSetOf(model.Fact{Name: "i", VariableScope: model.Scope{0}})},
	}
	in := model.NewFactSet()
	in.Add(model.Fact{Name: "i", Line: 1, Scope: model.Scope{0}})
	result := rda.Result{In: map[model.NodeId]model.FactSet{1: in}}

	tr := &Translator{Graph: g, Facts: facts, Result: result}
	edges := tr.Translate()

	assert.Len(t, edges, 1)
	assert.Equal(t, model.LoopCarried, edges[0].DataflowType)
}

func TestTranslateFallsBackToGlobalDefWhenScopeDoesNotReach(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})

	facts := FactTable{
		1: {
			Defs: factSetOf(model.Fact{Name: "g", Line: 5, VariableScope: model.Scope{}}),
			Uses: factSetOf(model.Fact{Name: "g", VariableScope: model.Scope{0, 1}}),
		},
	}
	// IN[1] has no reaching def for "g" at all (simulating an unreached
	// scope), forcing the fallback path.
	result := rda.Result{In: map[model.NodeId]model.FactSet{1: model.NewFactSet()}}

	tr := &Translator{Graph: g, Facts: facts, Result: result}
	edges := tr.Translate()

	assert.Len(t, edges, 1)
	assert.Equal(t, model.NodeId(5), edges[0].Src)
}

func TestTranslateDropsUseWithNoMatchAndNoFallback(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})

	facts := FactTable{
		1: {Defs: model.NewFactSet(), Uses: factSetOf(model.Fact{Name: "unbound", VariableScope: model.Scope{0}})},
	}
	result := rda.Result{In: map[model.NodeId]model.FactSet{1: model.NewFactSet()}}

	tr := &Translator{Graph: g, Facts: facts, Result: result}
	edges := tr.Translate()
	assert.Empty(t, edges)
}

func TestTranslateTagsObjectNameForFieldAccess(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})
	g.AddNode(model.CfgNode{ID: 2})
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.NextLine})

	facts := FactTable{
		2: {Defs: model.NewFactSet(), Uses: factSetOf(model.Fact{Name: "obj.field", VariableScope: model.Scope{0}})},
	}
	in := model.NewFactSet()
	in.Add(model.Fact{Name: "obj.field", Line: 1, Scope: model.Scope{0}})
	result := rda.Result{In: map[model.NodeId]model.FactSet{2: in}}

	tr := &Translator{Graph: g, Facts: facts, Result: result}
	edges := tr.Translate()

	assert.Len(t, edges, 1)
	assert.Equal(t, "obj", edges[0].ObjectName)
}

func factSetOf(facts ...model.Fact) model.FactSet {
	fs := model.NewFactSet()
	for _, f := range facts {
		fs.Add(f)
	}
	return fs
}
