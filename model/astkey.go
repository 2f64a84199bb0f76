// Package model defines the data types shared across cxflow's CFG/SDFG
// construction pipeline: AST keys, CFG nodes and edges, the construction
// side-tables ("records"), scopes, and reaching-definition facts.
package model

import sitter "github.com/smacker/go-tree-sitter"

// Point mirrors sitter.Point so callers never need to import the
// tree-sitter package just to build an AstKey.
type Point struct {
	Row    uint32
	Column uint32
}

func pointOf(p sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

// AstKey uniquely identifies a CST node by its span and grammar type,
// exactly the key the external `index` collaborator maps to a NodeId.
type AstKey struct {
	Start Point
	End   Point
	Type  string
}

// KeyOf builds the AstKey for a tree-sitter node.
func KeyOf(n *sitter.Node) AstKey {
	return AstKey{
		Start: pointOf(n.StartPoint()),
		End:   pointOf(n.EndPoint()),
		Type:  n.Type(),
	}
}

// NodeId is the integer identity assigned by the external index
// collaborator. 1 and 2 are reserved for the synthetic START and EXIT
// nodes and are never present in the index.
type NodeId int

const (
	// StartNodeID is the synthetic entry node emitted once per CFG.
	StartNodeID NodeId = 1
	// ExitNodeID denotes the implicit exit; it is never materialized
	// as a CfgNode.
	ExitNodeID NodeId = 2
)

// Index resolves CST nodes to the NodeId space. It is supplied by the
// external caller (symbol-table/index construction is out of scope for
// cxflow) and is read-only from the engine's perspective.
type Index interface {
	// Lookup returns the NodeId registered for the given AstKey and
	// whether it was found. A miss is a "missing index" failure mode
	// (§7): the caller should skip just the node in question.
	Lookup(key AstKey) (NodeId, bool)
}

// IndexNode is a convenience helper that resolves a *sitter.Node
// directly through an Index.
func IndexNode(idx Index, n *sitter.Node) (NodeId, bool) {
	if n == nil || idx == nil {
		return 0, false
	}
	return idx.Lookup(KeyOf(n))
}
