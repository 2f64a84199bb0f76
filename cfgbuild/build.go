package cfgbuild

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// Build runs the fixed multi-pass CFG algorithm of §4.2 over root,
// using b.Nodes/b.Records (already populated by a lang/c or lang/cpp
// Extract call) and returns the resulting graph. The CfgNodes given to
// NewCfgGraph come from cfgNodes (the statement extractor's pre-block
// list); Build stamps block indices onto them in place.
func Build(b *Builder, root *sitter.Node, cfgNodes []model.CfgNode) *graphutil.CfgGraph {
	g := graphutil.NewCfgGraph()
	for _, n := range cfgNodes {
		g.AddNode(n)
	}

	b.sequentialEdges(g, root)
	for idx, ids := range graphutil.PartitionBasicBlocks(g) {
		b.Records.BasicBlocks[idx] = ids
	}

	b.controlEdges(g, root)
	b.PopulateCallMap(root)
	b.PopulateConstructorDestructorCalls(root)
	b.callEdges(g)
	b.constructorCallEdges(g)
	b.implicitBaseConstructorEdges(g)
	b.destructorCallEdges(g)
	b.raiiDestructors(g, root)
	b.globalSequence(g, root)

	return g
}

// sequentialEdges implements §4.2 step 1: every non-control statement
// not last-in-control-block and not itself a definition container gets
// a next_line edge to next_index(s).
func (b *Builder) sequentialEdges(g *graphutil.CfgGraph, root *sitter.Node) {
	for key, n := range b.Nodes {
		if b.isLastInControlBlock(n) {
			continue
		}
		if containsDefinition(n) {
			continue
		}
		if b.Lang.IsControlStatement(n.Type()) {
			// Control statements' successor edges are entirely handled
			// by controlEdges (§4.2 step 6); they never also get a
			// plain next_line edge out.
			continue
		}
		if b.Lang.IsJumpStatement(n.Type()) {
			// break/continue/return/goto/throw transfer control
			// explicitly (jump_next, or the return/throw maps
			// consumed by call-return wiring) and never fall through.
			continue
		}
		srcID, ok := model.IndexNode(b.Index, n)
		if !ok {
			continue
		}
		dstID, ok := b.nextIndex(n)
		if !ok {
			continue
		}
		_ = key
		g.AddEdge(model.CfgEdge{Src: srcID, Dst: dstID, Kind: model.NextLine})
	}
}

// containsDefinition reports whether n is itself a class/function/struct
// definition (§4.2 step 1 "not containing an inner definition"). These
// get their own wiring (start edges, global_sequence, first_next_line
// into the body) rather than a blanket next_line to whatever follows.
func containsDefinition(n *sitter.Node) bool {
	switch n.Type() {
	case "function_definition", "class_specifier", "struct_specifier", "namespace_definition":
		return true
	}
	return false
}

// isLastInControlBlock implements §4.2.2: n's parent is the body /
// consequence / alternative / else-clause of an if/while/for/
// for_range/do (directly, or n is the final child of an enclosing
// compound statement that is itself such a body).
func (b *Builder) isLastInControlBlock(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if isControlBody(parent) {
		return true
	}
	if parent.Type() == "compound_statement" {
		if n.NextNamedSibling() != nil {
			return false
		}
		grand := parent.Parent()
		return grand != nil && isControlBody(grand)
	}
	return false
}

func isControlBody(n *sitter.Node) bool {
	switch n.Type() {
	case "if_statement", "while_statement", "for_statement", "for_range_loop", "do_statement":
		return true
	}
	return false
}

// globalSequence implements §4.2 step 9: sort top-level declarations
// by source line and connect consecutive ones by global_sequence.
func (b *Builder) globalSequence(g *graphutil.CfgGraph, root *sitter.Node) {
	var top []*sitter.Node
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(i)
		if _, ok := b.Nodes[model.KeyOf(child)]; ok {
			top = append(top, child)
		}
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].StartPoint().Row < top[j].StartPoint().Row
	})
	for i := 0; i+1 < len(top); i++ {
		srcID, ok1 := model.IndexNode(b.Index, top[i])
		dstID, ok2 := model.IndexNode(b.Index, top[i+1])
		if ok1 && ok2 {
			g.AddEdge(model.CfgEdge{Src: srcID, Dst: dstID, Kind: model.GlobalSequence})
		}
	}
}
