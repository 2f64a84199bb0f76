// Package cfgbuild implements the CFG builder (component 3, §4.2): the
// fixed multi-pass algorithm that turns a statement extractor's
// node_list and records into CfgEdges, shared across C and C++ with
// the language-specific control-statement/jump-statement checks
// supplied through lang.Spec.
package cfgbuild

import (
	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/model"
)

// successorCache memoizes next_index(node) per AstKey. next_index is
// recursive up and down the tree and is invoked from both the
// sequential-edge pass and the call/return wiring pass, so repeated
// computation on the same node is common — the same shape of problem
// the teacher solves with its registry caches in graph/callgraph.
type successorCache struct {
	cache *lru.Cache[model.AstKey, model.NodeId]
}

// defaultSuccessorCacheSize is generous relative to a typical
// translation unit's statement count; a miss just recomputes, so an
// undersized cache only costs time, never correctness.
const defaultSuccessorCacheSize = 4096

func newSuccessorCache() *successorCache {
	c, _ := lru.New[model.AstKey, model.NodeId](defaultSuccessorCacheSize)
	return &successorCache{cache: c}
}

// Builder carries the per-construction state next_index and the rest
// of the CFG algorithm need: the language spec, the index, records,
// node_list, source bytes, and the successor memo.
type Builder struct {
	Lang    lang.Spec
	Index   model.Index
	Records *model.Records
	Nodes   model.NodeList
	Source  []byte
	Sink    diagnostic.Sink

	// Symbols resolves scope/type/declaration information; may be nil
	// if a caller only wants CFG construction (DFG-facing lookups are
	// skipped, matching §7's "missing index/unresolved identifier"
	// failure mode).
	Symbols model.SymbolTable

	successors *successorCache
	// byID is a NodeId -> *sitter.Node reverse index built once from
	// Nodes, used wherever call/return wiring needs next_index of a
	// statement it only has the NodeId for.
	byID map[model.NodeId]*sitter.Node
}

// NewBuilder constructs a Builder. sink may be nil, in which case
// diagnostics are discarded. symbols may be nil when only CFG
// construction is needed.
func NewBuilder(spec lang.Spec, idx model.Index, records *model.Records, nodes model.NodeList, source []byte, symbols model.SymbolTable, sink diagnostic.Sink) *Builder {
	if sink == nil {
		sink = diagnostic.NopSink{}
	}
	b := &Builder{
		Lang:       spec,
		Index:      idx,
		Records:    records,
		Nodes:      nodes,
		Source:     source,
		Symbols:    symbols,
		Sink:       sink,
		successors: newSuccessorCache(),
		byID:       make(map[model.NodeId]*sitter.Node),
	}
	for _, n := range nodes {
		if id, ok := model.IndexNode(idx, n); ok {
			b.byID[id] = n
		}
	}
	return b
}

// resolveIdentifierType is the typeinfer.IdentifierResolver this
// Builder feeds to argument type inference (§4.4 "identifier ->
// symbol table's data_type via declaration_map, else unknown").
func (b *Builder) resolveIdentifierType(n *sitter.Node) string {
	if b.Symbols == nil {
		return "unknown"
	}
	useID, ok := model.IndexNode(b.Index, n)
	if !ok {
		return "unknown"
	}
	declID, ok := b.Symbols.DeclarationOf(useID)
	if !ok {
		return "unknown"
	}
	t, ok := b.Symbols.DataTypeOf(declID)
	if !ok {
		return "unknown"
	}
	return t
}

// ByID exposes the NodeId -> *sitter.Node reverse index built at
// construction time, for callers (the dfg package's interprocedural
// layer) that need the raw CST node behind a Records-held NodeId.
func (b *Builder) ByID() map[model.NodeId]*sitter.Node {
	return b.byID
}

// inNodeList reports whether n has been registered as a CfgNode by
// the statement extractor.
func (b *Builder) inNodeList(n *sitter.Node) bool {
	_, ok := b.Nodes[model.KeyOf(n)]
	return ok
}

// nextIndex implements §4.2.1: starting from node, find the NodeId of
// the statement that should receive the sequential successor edge.
// A walk that finds no statement ends at the function's implicit
// return or at EXIT (NodeId 2), so the second return value is always
// true.
func (b *Builder) nextIndex(node *sitter.Node) (model.NodeId, bool) {
	key := model.KeyOf(node)
	if id, ok := b.successors.cache.Get(key); ok {
		return id, true
	}
	id, ok := b.computeNextIndex(node)
	if ok {
		b.successors.cache.Add(key, id)
	}
	return id, ok
}

func (b *Builder) computeNextIndex(node *sitter.Node) (model.NodeId, bool) {
	if sib := node.NextNamedSibling(); sib != nil {
		return b.descendInto(sib)
	}
	return b.walkUp(node)
}

// descendInto implements the "If node.next_named_sibling exists,
// descend into it" branch of §4.2.1.
func (b *Builder) descendInto(sib *sitter.Node) (model.NodeId, bool) {
	switch sib.Type() {
	case "compound_statement":
		if sib.NamedChildCount() == 0 {
			return b.computeNextIndex(sib)
		}
		for i := 0; i < int(sib.NamedChildCount()); i++ {
			child := sib.NamedChild(i)
			if b.inNodeList(child) {
				if id, ok := model.IndexNode(b.Index, child); ok {
					return id, true
				}
				b.Sink.Skip(diagnostic.MissingIndex, "next_index: compound child has no index entry")
			}
		}
		return b.computeNextIndex(sib)
	case "field_declaration":
		for i := 0; i < int(sib.NamedChildCount()); i++ {
			if id, ok := b.firstStatementDescendant(sib.NamedChild(i)); ok {
				return id, true
			}
		}
		return b.computeNextIndex(sib)
	default:
		if b.inNodeList(sib) {
			if id, ok := model.IndexNode(b.Index, sib); ok {
				return id, true
			}
			b.Sink.Skip(diagnostic.MissingIndex, "next_index: sibling has no index entry")
		}
		return b.computeNextIndex(sib)
	}
}

func (b *Builder) firstStatementDescendant(n *sitter.Node) (model.NodeId, bool) {
	if n == nil {
		return 0, false
	}
	if b.inNodeList(n) {
		return model.IndexNode(b.Index, n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if id, ok := b.firstStatementDescendant(n.NamedChild(i)); ok {
			return id, true
		}
	}
	return 0, false
}

// walkUp implements the "If no sibling, walk up" branch of §4.2.1.
func (b *Builder) walkUp(node *sitter.Node) (model.NodeId, bool) {
	cur := node
	for {
		parent := cur.Parent()
		if parent == nil {
			return model.ExitNodeID, true
		}
		switch parent.Type() {
		case "while_statement", "for_statement", "for_range_loop", "do_statement":
			if id, ok := model.IndexNode(b.Index, parent); ok {
				return id, true
			}
			b.Sink.Skip(diagnostic.MissingIndex, "next_index: loop header has no index entry")
			return model.ExitNodeID, true
		case "function_definition":
			fnID, ok := model.IndexNode(b.Index, parent)
			if ok {
				if implicit, has := b.Records.ImplicitReturnMap[fnID]; has {
					return implicit, true
				}
			}
			return model.ExitNodeID, true
		case "class_specifier", "struct_specifier":
			return model.ExitNodeID, true
		case "namespace_definition":
			cur = parent
			continue
		default:
			if b.Lang.IsControlStatement(parent.Type()) || isStatementHolder(parent.Type()) {
				cur = parent
				continue
			}
			cur = parent
			continue
		}
	}
}

// isStatementHolder reports whether a node type is a generic
// container (compound statement, catch clause, case body) whose own
// successor must be resolved by continuing the upward walk rather
// than stopping.
func isStatementHolder(nodeType string) bool {
	switch nodeType {
	case "compound_statement", "catch_clause", "case_statement", "labeled_statement":
		return true
	}
	return false
}
