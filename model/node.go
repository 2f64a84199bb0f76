package model

import sitter "github.com/smacker/go-tree-sitter"

// CfgNode is the immutable (post-extraction) tuple describing a
// statement-level CST node once it enters a CFG. NodeIds 1 (START)
// and 2 (EXIT) are reserved and never appear as a CfgNode.
type CfgNode struct {
	ID         NodeId
	Line       int
	Label      string
	TypeTag    string
	BlockIndex int
}

// NodeList is the extractor's working map from AstKey to the raw CST
// node, keyed the same way the external index is keyed. Statement
// extractors populate it; the CFG builder consumes it for successor
// lookups (§4.2.1).
type NodeList map[AstKey]*sitter.Node
