package graphutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/model"
)

func TestPartitionBasicBlocksConnected(t *testing.T) {
	g := NewCfgGraph()
	for _, id := range []model.NodeId{10, 11, 12} {
		g.AddNode(model.CfgNode{ID: id})
	}
	g.AddEdge(model.CfgEdge{Src: 10, Dst: 11, Kind: model.NextLine})
	g.AddEdge(model.CfgEdge{Src: 11, Dst: 12, Kind: model.NextLine})

	blocks := PartitionBasicBlocks(g)
	assert.Len(t, blocks, 1)
	assert.ElementsMatch(t, []model.NodeId{10, 11, 12}, blocks[1])
	for _, id := range []model.NodeId{10, 11, 12} {
		assert.Equal(t, 1, g.Nodes[id].BlockIndex)
	}
}

func TestPartitionBasicBlocksIsolatedNodeGetsBlockZero(t *testing.T) {
	g := NewCfgGraph()
	g.AddNode(model.CfgNode{ID: 20})
	blocks := PartitionBasicBlocks(g)
	assert.Equal(t, []model.NodeId{20}, blocks[0])
	assert.Equal(t, 0, g.Nodes[20].BlockIndex)
}

func TestPartitionBasicBlocksTwoComponents(t *testing.T) {
	g := NewCfgGraph()
	for _, id := range []model.NodeId{1, 2, 3, 4} {
		g.AddNode(model.CfgNode{ID: id})
	}
	g.AddEdge(model.CfgEdge{Src: 1, Dst: 2, Kind: model.NextLine})
	g.AddEdge(model.CfgEdge{Src: 3, Dst: 4, Kind: model.NextLine})

	blocks := PartitionBasicBlocks(g)
	// Two non-trivial components, indices 1 and 2.
	assert.Len(t, blocks, 2)
	assert.NotEqual(t, g.Nodes[1].BlockIndex, g.Nodes[3].BlockIndex)
}
