package cfgbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// controlEdges implements §4.2 step 6, the per-statement control-edge
// dispatch table, plus step 5's edges from the dummy start node
// (wireFunctionDefinition). Step 4's implicit-return ids are allocated
// by the statement extractors, not here. Dispatch is table-driven by
// node type per spec.md §9's
// recommendation over nested conditionals.
func (b *Builder) controlEdges(g *graphutil.CfgGraph, root *sitter.Node) {
	dispatch := map[string]func(*graphutil.CfgGraph, *sitter.Node){
		"function_definition": b.wireFunctionDefinition,
		"if_statement":         b.wireIf,
		"while_statement":       b.wireLoop,
		"for_statement":         b.wireLoop,
		"for_range_loop":        b.wireLoop,
		"do_statement":          b.wireDo,
		"switch_statement":      b.wireSwitch,
		"case_statement":        b.wireCase,
		"break_statement":       b.wireBreak,
		"continue_statement":    b.wireContinue,
		"return_statement":      b.wireReturn,
		"goto_statement":        b.wireGoto,
		"labeled_statement":     b.wireLabeled,
		"try_statement":         b.wireTry,
		"catch_clause":          b.wireCatch,
		"throw_statement":       b.wireThrow,
		"lambda_expression":     b.wireLambda,
	}

	for key, n := range b.Nodes {
		if fn, ok := dispatch[n.Type()]; ok {
			fn(g, n)
		}
		_ = key
	}
}

func (b *Builder) idOf(n *sitter.Node) (model.NodeId, bool) {
	id, ok := model.IndexNode(b.Index, n)
	if !ok {
		b.Sink.Skip(diagnostic.MissingIndex, "control edge: %s has no index entry", n.Type())
	}
	return id, ok
}

// firstStatementIn finds the first node_list member inside a block
// (skipping an empty compound statement entirely).
func (b *Builder) firstStatementIn(n *sitter.Node) (*sitter.Node, bool) {
	if n == nil {
		return nil, false
	}
	if _, ok := b.Nodes[model.KeyOf(n)]; ok && n.Type() != "compound_statement" {
		return n, true
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if found, ok := b.firstStatementIn(n.NamedChild(i)); ok {
			return found, true
		}
	}
	return nil, false
}

func (b *Builder) lastStatementIn(n *sitter.Node) (*sitter.Node, bool) {
	if n == nil {
		return nil, false
	}
	if _, ok := b.Nodes[model.KeyOf(n)]; ok && n.Type() != "compound_statement" {
		return n, true
	}
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		if found, ok := b.lastStatementIn(n.NamedChild(i)); ok {
			return found, true
		}
	}
	return nil, false
}

func (b *Builder) isJump(n *sitter.Node) bool {
	return n != nil && b.Lang.IsJumpStatement(n.Type())
}

// wireFunctionDefinition adds start->f for main (and free top-level
// functions), and f->first_body_stmt (first_next_line).
func (b *Builder) wireFunctionDefinition(g *graphutil.CfgGraph, n *sitter.Node) {
	fnID, ok := b.idOf(n)
	if !ok {
		return
	}
	isMain := b.Records.MainFunction == fnID
	isTopLevel := n.Parent() != nil && n.Parent().Type() != "class_specifier" && n.Parent().Type() != "struct_specifier" && n.Parent().Type() != "field_declaration_list"
	if isMain || isTopLevel {
		g.AddEdge(model.CfgEdge{Src: model.StartNodeID, Dst: fnID, Kind: model.NextLine})
	}
	body := n.ChildByFieldName("body")
	if first, ok := b.firstStatementIn(body); ok {
		firstID, ok2 := b.idOf(first)
		if ok2 {
			g.AddEdge(model.CfgEdge{Src: fnID, Dst: firstID, Kind: model.FirstNextLine})
		}
	}
}

func (b *Builder) wireIf(g *graphutil.CfgGraph, n *sitter.Node) {
	ifID, ok := b.idOf(n)
	if !ok {
		return
	}
	cons := n.ChildByFieldName("consequence")
	alt := n.ChildByFieldName("alternative")

	if first, ok := b.firstStatementIn(cons); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: ifID, Dst: id, Kind: model.PosNext})
		}
	}

	switch {
	case alt == nil:
		if id, ok := b.nextIndex(n); ok {
			g.AddEdge(model.CfgEdge{Src: ifID, Dst: id, Kind: model.NegNext})
		}
	case alt.Type() == "if_statement":
		if id, ok := b.idOf(alt); ok {
			g.AddEdge(model.CfgEdge{Src: ifID, Dst: id, Kind: model.NegNext})
		}
	default:
		if first, ok := b.firstStatementIn(alt); ok {
			if id, ok2 := b.idOf(first); ok2 {
				g.AddEdge(model.CfgEdge{Src: ifID, Dst: id, Kind: model.NegNext})
			}
		}
	}

	b.wireBranchTail(g, cons, n)
	if alt != nil && alt.Type() != "if_statement" {
		b.wireBranchTail(g, alt, n)
	}
}

// wireBranchTail connects the last statement of a then/else branch to
// next_index of the enclosing if (the function's implicit return when
// the if ends a void function's body), unless that last statement is
// a jump (which suppresses fall-through, §4.2.3).
func (b *Builder) wireBranchTail(g *graphutil.CfgGraph, branch *sitter.Node, ifNode *sitter.Node) {
	last, ok := b.lastStatementIn(branch)
	if !ok || b.isJump(last) {
		return
	}
	lastID, ok := b.idOf(last)
	if !ok {
		return
	}
	dstID, ok := b.nextIndex(ifNode)
	if !ok {
		return
	}
	g.AddEdge(model.CfgEdge{Src: lastID, Dst: dstID, Kind: model.NextLine})
}

func (b *Builder) wireLoop(g *graphutil.CfgGraph, n *sitter.Node) {
	loopID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	if first, ok := b.firstStatementIn(body); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: loopID, Dst: id, Kind: model.PosNext})
		}
	}
	if last, ok := b.lastStatementIn(body); ok && !b.isJump(last) {
		if lastID, ok2 := b.idOf(last); ok2 {
			g.AddEdge(model.CfgEdge{Src: lastID, Dst: loopID, Kind: model.LoopControl})
		}
	}
	if id, ok := b.nextIndex(n); ok {
		g.AddEdge(model.CfgEdge{Src: loopID, Dst: id, Kind: model.NegNext})
	}
	g.AddEdge(model.CfgEdge{Src: loopID, Dst: loopID, Kind: model.LoopUpdate})
}

func (b *Builder) wireDo(g *graphutil.CfgGraph, n *sitter.Node) {
	doID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	condNode := n.ChildByFieldName("condition")

	if first, ok := b.firstStatementIn(body); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: doID, Dst: id, Kind: model.PosNext})
		}
	}
	condID, hasCond := b.idOf(condNode)
	if last, ok := b.lastStatementIn(body); ok && hasCond && !b.isJump(last) {
		if lastID, ok2 := b.idOf(last); ok2 {
			g.AddEdge(model.CfgEdge{Src: lastID, Dst: condID, Kind: model.NextLine})
		}
	}
	if hasCond {
		g.AddEdge(model.CfgEdge{Src: condID, Dst: doID, Kind: model.LoopControl})
		if id, ok := b.nextIndex(n); ok {
			g.AddEdge(model.CfgEdge{Src: condID, Dst: id, Kind: model.NegNext})
		}
	}
}

// wireSwitch enumerates case statements in the body and connects
// switch->case (switch_case); if none is a default, add switch_exit.
func (b *Builder) wireSwitch(g *graphutil.CfgGraph, n *sitter.Node) {
	switchID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	hasDefault := false
	var cases []*sitter.Node
	if body != nil {
		count := int(body.NamedChildCount())
		for i := 0; i < count; i++ {
			c := body.NamedChild(i)
			if c.Type() != "case_statement" {
				continue
			}
			cases = append(cases, c)
			if c.ChildByFieldName("value") == nil {
				hasDefault = true
			}
		}
	}
	for _, c := range cases {
		if id, ok := b.idOf(c); ok {
			g.AddEdge(model.CfgEdge{Src: switchID, Dst: id, Kind: model.SwitchCase})
		}
	}
	if !hasDefault {
		if id, ok := b.nextIndex(n); ok {
			g.AddEdge(model.CfgEdge{Src: switchID, Dst: id, Kind: model.SwitchExit})
		}
	}
}

func (b *Builder) wireCase(g *graphutil.CfgGraph, n *sitter.Node) {
	caseID, ok := b.idOf(n)
	if !ok {
		return
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if _, ok := b.Nodes[model.KeyOf(child)]; ok {
			if id, ok2 := b.idOf(child); ok2 {
				g.AddEdge(model.CfgEdge{Src: caseID, Dst: id, Kind: model.CaseNext})
			}
			break
		}
	}
}

func (b *Builder) wireBreak(g *graphutil.CfgGraph, n *sitter.Node) {
	breakID, ok := b.idOf(n)
	if !ok {
		return
	}
	enclosing := b.enclosingLoopOrSwitch(n)
	if enclosing == nil {
		b.Sink.Skip(diagnostic.InvalidControlFlow, "break outside loop/switch")
		return
	}
	if id, ok := b.nextIndex(enclosing); ok {
		g.AddEdge(model.CfgEdge{Src: breakID, Dst: id, Kind: model.JumpNext})
	}
}

func (b *Builder) wireContinue(g *graphutil.CfgGraph, n *sitter.Node) {
	contID, ok := b.idOf(n)
	if !ok {
		return
	}
	enclosing := b.enclosingLoop(n)
	if enclosing == nil {
		b.Sink.Skip(diagnostic.InvalidControlFlow, "continue outside loop")
		return
	}
	if id, ok := b.idOf(enclosing); ok {
		g.AddEdge(model.CfgEdge{Src: contID, Dst: id, Kind: model.JumpNext})
	}
}

func (b *Builder) wireReturn(g *graphutil.CfgGraph, n *sitter.Node) {
	retID, ok := b.idOf(n)
	if !ok {
		return
	}
	if fn := enclosingFunction(n); fn != nil {
		if fnID, ok := b.idOf(fn); ok {
			b.Records.AddReturnStatement(fnID, retID)
		}
	}
}

func (b *Builder) wireGoto(g *graphutil.CfgGraph, n *sitter.Node) {
	gotoID, ok := b.idOf(n)
	if !ok {
		return
	}
	labelNode := n.ChildByFieldName("label")
	if labelNode == nil {
		return
	}
	key, ok := b.Records.LabelStatementMap[labelNode.Content(b.Source)]
	if !ok {
		b.Sink.Skip(diagnostic.UnresolvedIdentifier, "goto: label %q not found", labelNode.Content(b.Source))
		return
	}
	if id, ok := b.Index.Lookup(key); ok {
		g.AddEdge(model.CfgEdge{Src: gotoID, Dst: id, Kind: model.JumpNext})
	}
}

func (b *Builder) wireLabeled(g *graphutil.CfgGraph, n *sitter.Node) {
	labelID, ok := b.idOf(n)
	if !ok {
		return
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "identifier" {
			continue
		}
		if _, ok := b.Nodes[model.KeyOf(child)]; ok {
			if id, ok2 := b.idOf(child); ok2 {
				g.AddEdge(model.CfgEdge{Src: labelID, Dst: id, Kind: model.NextLine})
			}
			return
		}
	}
}

func (b *Builder) wireTry(g *graphutil.CfgGraph, n *sitter.Node) {
	tryID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	if first, ok := b.firstStatementIn(body); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: tryID, Dst: id, Kind: model.TryNext})
		}
	}
	var catches []*sitter.Node
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == "catch_clause" {
			catches = append(catches, c)
			if id, ok := b.idOf(c); ok {
				g.AddEdge(model.CfgEdge{Src: tryID, Dst: id, Kind: model.CatchException})
			}
		}
	}
	if last, ok := b.lastStatementIn(body); ok && !b.isJump(last) {
		if lastID, ok2 := b.idOf(last); ok2 {
			if id, ok3 := b.nextIndex(n); ok3 {
				g.AddEdge(model.CfgEdge{Src: lastID, Dst: id, Kind: model.TryExit})
			}
		}
	}
}

func (b *Builder) wireCatch(g *graphutil.CfgGraph, n *sitter.Node) {
	catchID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	if first, ok := b.firstStatementIn(body); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: catchID, Dst: id, Kind: model.CatchNext})
		}
	}
	tryNode := n.Parent()
	if last, ok := b.lastStatementIn(body); ok && !b.isJump(last) && tryNode != nil {
		if lastID, ok2 := b.idOf(last); ok2 {
			if id, ok3 := b.nextIndex(tryNode); ok3 {
				g.AddEdge(model.CfgEdge{Src: lastID, Dst: id, Kind: model.CatchExit})
			}
		}
	}
}

func (b *Builder) wireThrow(g *graphutil.CfgGraph, n *sitter.Node) {
	throwID, ok := b.idOf(n)
	if !ok {
		return
	}
	tryNode := b.enclosingTry(n)
	if tryNode == nil {
		if fn := enclosingFunction(n); fn != nil {
			if fnID, ok := b.idOf(fn); ok {
				b.Records.AddReturnStatement(fnID, throwID)
			}
		}
		return
	}
	count := int(tryNode.NamedChildCount())
	for i := 0; i < count; i++ {
		c := tryNode.NamedChild(i)
		if c.Type() == "catch_clause" {
			if id, ok := b.idOf(c); ok {
				g.AddEdge(model.CfgEdge{Src: throwID, Dst: id, Kind: model.ThrowExit})
			}
		}
	}
}

func (b *Builder) wireLambda(g *graphutil.CfgGraph, n *sitter.Node) {
	lambdaID, ok := b.idOf(n)
	if !ok {
		return
	}
	body := n.ChildByFieldName("body")
	if first, ok := b.firstStatementIn(body); ok {
		if id, ok2 := b.idOf(first); ok2 {
			g.AddEdge(model.CfgEdge{Src: lambdaID, Dst: id, Kind: model.LambdaNext})
		}
	}
}

func (b *Builder) enclosingLoopOrSwitch(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "while_statement", "for_statement", "for_range_loop", "do_statement", "switch_statement":
			return p
		case "function_definition":
			return nil
		}
	}
	return nil
}

func (b *Builder) enclosingLoop(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "while_statement", "for_statement", "for_range_loop", "do_statement":
			return p
		case "function_definition":
			return nil
		}
	}
	return nil
}

func (b *Builder) enclosingTry(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "try_statement" {
			return p
		}
		if p.Type() == "function_definition" {
			return nil
		}
	}
	return nil
}

func enclosingFunction(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "function_definition" {
			return p
		}
	}
	return nil
}
