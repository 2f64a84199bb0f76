package graphutil

import (
	"sort"

	"github.com/go-cxflow/cxflow/model"
)

// PartitionBasicBlocks computes weakly-connected components of the
// graph (treating every edge as undirected) and stamps a block index
// onto each node, returning block index -> sorted NodeId list. An
// isolated node (no edges at all) gets block index 0, matching the
// spec's "0 if isolated" rule (§4.2 step 2). Node ids 1 (START) and 2
// (EXIT) never appear in g.Nodes and are not assigned a block.
func PartitionBasicBlocks(g *CfgGraph) map[int][]model.NodeId {
	adjacency := make(map[model.NodeId][]model.NodeId)
	for id := range g.Nodes {
		if _, ok := adjacency[id]; !ok {
			adjacency[id] = nil
		}
	}
	for _, e := range g.Edges() {
		if _, ok := g.Nodes[e.Src]; !ok {
			continue
		}
		if _, ok := g.Nodes[e.Dst]; !ok {
			continue
		}
		adjacency[e.Src] = append(adjacency[e.Src], e.Dst)
		adjacency[e.Dst] = append(adjacency[e.Dst], e.Src)
	}

	visited := make(map[model.NodeId]bool)
	blocks := make(map[int][]model.NodeId)

	// Deterministic order: iterate node ids numerically rather than
	// Go's randomized map order, so repeated runs on identical input
	// are bit-stable (§5).
	ordered := sortedIDs(g.Nodes)

	hasEdge := func(id model.NodeId) bool { return len(adjacency[id]) > 0 }

	nextBlock := 0
	for _, id := range ordered {
		if visited[id] {
			continue
		}
		if !hasEdge(id) {
			visited[id] = true
			blocks[0] = append(blocks[0], id)
			continue
		}
		// BFS the weakly-connected component containing id.
		component := []model.NodeId{}
		queue := []model.NodeId{id}
		visited[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, nb := range adjacency[cur] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		blockIdx := nextBlock + 1
		nextBlock++
		blocks[blockIdx] = append(blocks[blockIdx], component...)
	}

	for idx := range blocks {
		sortNodeIds(blocks[idx])
		for _, id := range blocks[idx] {
			if n, ok := g.Nodes[id]; ok {
				n.BlockIndex = idx
			}
		}
	}
	return blocks
}

func sortedIDs(m map[model.NodeId]*model.CfgNode) []model.NodeId {
	out := make([]model.NodeId, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sortNodeIds(out)
	return out
}

func sortNodeIds(ids []model.NodeId) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
