// Package graphutil provides the directed-multigraph primitives the
// CFG and DFG builders are layered on: node/edge storage with
// attributed, deduplicated edges, and weakly-connected-component based
// basic-block partitioning (spec.md §4.9).
package graphutil

import "github.com/go-cxflow/cxflow/model"

// CfgGraph is a directed multigraph over model.CfgNode, with edges
// deduplicated by exact (src, dst, kind, payload) match (I2).
type CfgGraph struct {
	Nodes map[model.NodeId]*model.CfgNode
	edges map[string]model.CfgEdge
	order []string // insertion order, for deterministic iteration
}

// NewCfgGraph returns an empty graph.
func NewCfgGraph() *CfgGraph {
	return &CfgGraph{
		Nodes: make(map[model.NodeId]*model.CfgNode),
		edges: make(map[string]model.CfgEdge),
	}
}

// AddNode inserts a node if not already present (every CfgNode is
// inserted once, per §3).
func (g *CfgGraph) AddNode(n model.CfgNode) {
	if _, ok := g.Nodes[n.ID]; ok {
		return
	}
	cp := n
	g.Nodes[n.ID] = &cp
}

// AddEdge inserts an edge, silently deduplicating an exact repeat.
func (g *CfgGraph) AddEdge(e model.CfgEdge) {
	key := e.Key()
	if _, ok := g.edges[key]; ok {
		return
	}
	g.edges[key] = e
	g.order = append(g.order, key)
}

// Edges returns all edges in insertion order.
func (g *CfgGraph) Edges() []model.CfgEdge {
	out := make([]model.CfgEdge, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.edges[k])
	}
	return out
}

// EdgesBetween returns every edge kind/payload recorded from src to
// dst.
func (g *CfgGraph) EdgesBetween(src, dst model.NodeId) []model.CfgEdge {
	var out []model.CfgEdge
	for _, k := range g.order {
		e := g.edges[k]
		if e.Src == src && e.Dst == dst {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns every edge whose source is id.
func (g *CfgGraph) OutEdges(id model.NodeId) []model.CfgEdge {
	var out []model.CfgEdge
	for _, k := range g.order {
		e := g.edges[k]
		if e.Src == id {
			out = append(out, e)
		}
	}
	return out
}

// OutEdgesOfKind filters OutEdges by kind.
func (g *CfgGraph) OutEdgesOfKind(id model.NodeId, kind model.CfgEdgeKind) []model.CfgEdge {
	var out []model.CfgEdge
	for _, e := range g.OutEdges(id) {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// InEdges returns every edge whose destination is id.
func (g *CfgGraph) InEdges(id model.NodeId) []model.CfgEdge {
	var out []model.CfgEdge
	for _, k := range g.order {
		e := g.edges[k]
		if e.Dst == id {
			out = append(out, e)
		}
	}
	return out
}

// RemoveEdgesOfKind deletes every edge of the given kind between src
// and dst. The RDA intraprocedural pre-solve toggle (§4.5) does not
// use it; rda.Solve filters predecessor edges instead.
func (g *CfgGraph) RemoveEdgesOfKind(src, dst model.NodeId, kind model.CfgEdgeKind) {
	newOrder := g.order[:0:0]
	for _, k := range g.order {
		e := g.edges[k]
		if e.Src == src && e.Dst == dst && e.Kind == kind {
			delete(g.edges, k)
			continue
		}
		newOrder = append(newOrder, k)
	}
	g.order = newOrder
}

// Copy returns a deep copy of the graph.
func (g *CfgGraph) Copy() *CfgGraph {
	cp := NewCfgGraph()
	for id, n := range g.Nodes {
		nn := *n
		cp.Nodes[id] = &nn
	}
	for _, k := range g.order {
		cp.AddEdge(g.edges[k])
	}
	return cp
}
