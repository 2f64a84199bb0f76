package rda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// buildLinearGraph builds 1 -> 2 -> 3 with plain sequential edges.
func buildLinearGraph() *graphutil.CfgGraph {
	g := graphutil.NewCfgGraph()
	for _, id := range []model.NodeId{1, 2, 3} {
		g.AddNode(model.CfgNode{ID: id})
	}
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.NextLine})
	g.AddEdge(model.CfgEdge{Src: 2, Dst: 3, Kind: model.NextLine})
	return g
}

func TestSolvePropagatesDefAlongSequentialEdges(t *testing.T) {
	g := buildLinearGraph()
	defs := func(n model.NodeId) model.FactSet {
		fs := model.NewFactSet()
		if n == 1 {
			fs.Add(model.Fact{Name: "x", Line: 1})
		}
		return fs
	}

	result := Solve(g, defs, Options{})

	assert.Contains(t, result.Out[1], "x")
	assert.Contains(t, result.In[2], "x")
	assert.Contains(t, result.In[3], "x")
}

func TestSolveKillsPriorDefOnRedefinition(t *testing.T) {
	g := buildLinearGraph()
	defs := func(n model.NodeId) model.FactSet {
		fs := model.NewFactSet()
		switch n {
		case 1:
			fs.Add(model.Fact{Name: "x", Line: 1})
		case 2:
			fs.Add(model.Fact{Name: "x", Line: 2})
		}
		return fs
	}

	result := Solve(g, defs, Options{})

	assert.Equal(t, model.NodeId(2), result.Out[2]["x"].Line)
	assert.Equal(t, model.NodeId(2), result.In[3]["x"].Line)
}

func TestSolveIntraproceduralDropsCrossFunctionEdges(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})
	g.AddNode(model.CfgNode{ID: 2})
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.FunctionCall})

	defs := func(n model.NodeId) model.FactSet {
		fs := model.NewFactSet()
		if n == 1 {
			fs.Add(model.Fact{Name: "x", Line: 1})
		}
		return fs
	}

	result := Solve(g, defs, Options{Intraprocedural: true})
	assert.NotContains(t, result.In[2], "x", "cross-function edges must be dropped under intraprocedural mode")
}

func TestSolveConvergesOnCycle(t *testing.T) {
	g := graphutil.NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 1})
	g.AddNode(model.CfgNode{ID: 2})
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.NextLine})
	g.AddEdge(model.CfgEdge{Src: 2, Dst: 1, Kind: model.LoopControl})

	defs := func(n model.NodeId) model.FactSet {
		fs := model.NewFactSet()
		if n == 1 {
			fs.Add(model.Fact{Name: "x", Line: 1})
		}
		return fs
	}

	result := Solve(g, defs, Options{})
	assert.Contains(t, result.In[1], "x")
	assert.Contains(t, result.In[2], "x")
}
