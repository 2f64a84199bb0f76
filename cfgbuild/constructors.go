package cfgbuild

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/cstwalk"
	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/typeinfer"
)

// Sentinels used as Records.ConstructorCalls signatures when a
// declaration gives no argument-type signature to infer from, only a
// construction *kind* (§4.3 "Constructor overload matching" special-
// cases the copy and move forms before falling back to element-wise
// signature matching).
const (
	ctorSigDefault = "<default>"
	ctorSigCopy    = "<copy>"
	ctorSigMove    = "<move>"
)

// PopulateConstructorDestructorCalls implements the constructor half
// of §4.2 step 3 ("constructor calls are derived from declarations:
// default, copy, move, and new-expressions") and the destructor half
// ("destructor calls come from delete-expressions").
func (b *Builder) PopulateConstructorDestructorCalls(root *sitter.Node) {
	tracked := make(map[string]string) // pointer variable -> runtime type, seeded by a prior `new`
	cstwalk.WalkNamed(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "declaration":
			b.recordDeclarationConstructorCall(n)
		case "new_expression":
			b.recordNewExpressionConstructorCall(n, tracked)
		case "delete_expression":
			b.recordDeleteExpressionDestructorCall(n, tracked)
		}
		return true
	})
}

// recordDeclarationConstructorCall classifies every plain-object
// declarator of n (skipping pointer/reference/array declarators,
// which bind rather than construct) as a default, copy, or move
// construction, or a direct-init call with an inferred argument
// signature.
func (b *Builder) recordDeclarationConstructorCall(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	className := typeNode.Content(b.Source)
	if !b.hasConstructor(className) {
		return
	}
	enclosing := enclosingStatement(n, b)
	if enclosing == nil {
		return
	}
	enclosingID, ok := b.idOf(enclosing)
	if !ok {
		return
	}
	for _, decl := range declaratorsOf(n) {
		switch decl.Type() {
		case "identifier":
			b.emitConstructorCallAt(n, className, ctorSigDefault, enclosingID)
		case "init_declarator":
			inner := decl.ChildByFieldName("declarator")
			if inner == nil || inner.Type() != "identifier" {
				continue // pointer/reference/array declarator: no object constructed here
			}
			value := decl.ChildByFieldName("value")
			switch {
			case value == nil:
				b.emitConstructorCallAt(n, className, ctorSigDefault, enclosingID)
			case value.Type() == "new_expression":
				continue // the allocation is recorded by recordNewExpressionConstructorCall
			case isStdMoveCall(value, b.Source):
				b.emitConstructorCallAt(n, className, ctorSigMove, enclosingID)
			case value.Type() == "identifier" || value.Type() == "field_expression":
				b.emitConstructorCallAt(n, className, ctorSigCopy, enclosingID)
			default:
				sig := typeinfer.TypeOf(value, b.Source, b.resolveIdentifierType)
				b.emitConstructorCallAt(n, className, sig, enclosingID)
			}
		}
	}
}

// recordNewExpressionConstructorCall records the constructor call a
// `new ClassName(args)` performs, and tracks the pointer variable it
// was assigned to so a later `delete` on that variable can resolve the
// destructor's runtime type (§4.3 "Destructor chain").
func (b *Builder) recordNewExpressionConstructorCall(n *sitter.Node, tracked map[string]string) {
	typeNode := newExpressionType(n)
	if typeNode == nil {
		return
	}
	className := typeNode.Content(b.Source)
	if varName, ok := assignedVariableOf(n, b.Source); ok {
		tracked[varName] = className
	}
	if !b.hasConstructor(className) {
		return
	}
	enclosing := enclosingStatement(n, b)
	if enclosing == nil {
		return
	}
	enclosingID, ok := b.idOf(enclosing)
	if !ok {
		return
	}
	sig := typeinfer.Signature(newExpressionArguments(n), b.Source, b.resolveIdentifierType)
	b.emitConstructorCallAt(n, className, sig, enclosingID)
}

// newExpressionType finds the allocated type of a new_expression by
// child-type search rather than a named field, matching how the
// pack's own C++ call-graph extractor reads this node shape.
func newExpressionType(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		switch n.NamedChild(i).Type() {
		case "type_identifier", "qualified_identifier", "template_type":
			return n.NamedChild(i)
		}
	}
	return nil
}

func newExpressionArguments(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if n.NamedChild(i).Type() == "argument_list" {
			return n.NamedChild(i)
		}
	}
	return nil
}

// assignedVariableOf reports the variable n's value was bound to, when
// n sits directly on the right-hand side of an init_declarator or
// assignment_expression.
func assignedVariableOf(n *sitter.Node, source []byte) (string, bool) {
	parent := n.Parent()
	if parent == nil {
		return "", false
	}
	switch parent.Type() {
	case "init_declarator":
		if parent.ChildByFieldName("value") == n {
			if d := parent.ChildByFieldName("declarator"); d != nil {
				return identifierOf(d, source), true
			}
		}
	case "assignment_expression":
		if parent.ChildByFieldName("right") == n {
			if left := parent.ChildByFieldName("left"); left != nil {
				return left.Content(source), true
			}
		}
	}
	return "", false
}

func isStdMoveCall(value *sitter.Node, source []byte) bool {
	if value.Type() != "call_expression" {
		return false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	return strings.Contains(fn.Content(source), "move")
}

// recordDeleteExpressionDestructorCall resolves the runtime type of a
// `delete p` target (a prior tracked `new`, else the symbol table's
// static type stripped of pointer/reference qualifiers) and records
// the destructor call if that class declares one.
func (b *Builder) recordDeleteExpressionDestructorCall(n *sitter.Node, tracked map[string]string) {
	target := deleteExpressionTarget(n)
	if target == nil {
		return
	}
	varName := target.Content(b.Source)
	className, ok := tracked[varName]
	if !ok {
		className, ok = b.staticTypeOf(target)
	}
	if !ok || className == "" || !b.hasDestructor(className) {
		return
	}
	enclosing := enclosingStatement(n, b)
	if enclosing == nil {
		return
	}
	enclosingID, ok := b.idOf(enclosing)
	if !ok {
		return
	}
	callID, ok := model.IndexNode(b.Index, n)
	if !ok {
		b.Sink.Skip(diagnostic.MissingIndex, "delete_expression has no index entry")
		return
	}
	occ := model.CallOccurrence{CallSiteID: callID, EnclosingID: enclosingID}
	key := model.SignatureKey{FunctionKey: model.FunctionKey{Class: className, Name: "~" + className}}
	b.Records.DestructorCalls[key] = append(b.Records.DestructorCalls[key], occ)
}

func deleteExpressionTarget(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child.Type() == "identifier" || child.Type() == "field_expression" {
			return child
		}
	}
	return nil
}

func (b *Builder) staticTypeOf(n *sitter.Node) (string, bool) {
	if b.Symbols == nil {
		return "", false
	}
	useID, ok := model.IndexNode(b.Index, n)
	if !ok {
		return "", false
	}
	declID, ok := b.Symbols.DeclarationOf(useID)
	if !ok {
		return "", false
	}
	t, ok := b.Symbols.DataTypeOf(declID)
	if !ok {
		return "", false
	}
	return strings.TrimRight(strings.TrimSpace(t), "*& "), true
}

func (b *Builder) hasConstructor(className string) bool {
	for key := range b.Records.FunctionList {
		if key.Class == className && key.Name == className {
			return true
		}
	}
	return false
}

func (b *Builder) hasDestructor(className string) bool {
	key := model.SignatureKey{FunctionKey: model.FunctionKey{Class: className, Name: "~" + className}}
	_, ok := b.Records.FunctionList[key]
	return ok
}

func (b *Builder) emitConstructorCallAt(site *sitter.Node, className, sig string, enclosingID model.NodeId) {
	callID, ok := model.IndexNode(b.Index, site)
	if !ok {
		b.Sink.Skip(diagnostic.MissingIndex, "constructor call site has no index entry")
		return
	}
	occ := model.CallOccurrence{CallSiteID: callID, EnclosingID: enclosingID}
	key := model.SignatureKey{FunctionKey: model.FunctionKey{Class: className, Name: className}, Signature: sig}
	b.Records.ConstructorCalls[key] = append(b.Records.ConstructorCalls[key], occ)
}

// constructorCallEdges wires §4.3's constructor-overload-matching rule
// over every recorded constructor call. Constructors are void-like and
// already populate ReturnStatementMap/ImplicitReturnMap, so the return
// side reuses wireReturnsFor.
func (b *Builder) constructorCallEdges(g *graphutil.CfgGraph) {
	for sigKey, occs := range b.Records.ConstructorCalls {
		targetID, ok := b.resolveConstructorOverload(sigKey.Class, sigKey.Signature)
		if !ok {
			continue
		}
		for _, occ := range occs {
			g.AddEdge(model.CfgEdge{Src: occ.EnclosingID, Dst: targetID, Kind: model.ConstructorCall, Payload: callPayload(occ)})
			b.wireReturnsFor(g, targetID, occ, model.ConstructorReturn)
		}
	}
}

// resolveConstructorOverload implements §4.3 "Constructor overload
// matching": exact signature match; else a copy ctor `(const T&)` or
// move ctor `(T&&)` for the specialized forms; else element-wise match
// stripping const/&/*, treating `const char*` as compatible with any
// type containing "string"; falling back to the sole declared
// constructor when exactly one exists.
func (b *Builder) resolveConstructorOverload(className, sig string) (model.NodeId, bool) {
	var candidates []model.SignatureKey
	for key := range b.Records.FunctionList {
		if key.Class == className && key.Name == className {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	switch sig {
	case ctorSigDefault:
		if id, ok := b.exactCtorMatch(candidates, ""); ok {
			return id, true
		}
	case ctorSigCopy:
		if id, ok := b.singleParamCtorMatch(candidates, func(p string) bool {
			return strings.Contains(p, "&") && !strings.Contains(p, "&&")
		}); ok {
			return id, true
		}
	case ctorSigMove:
		if id, ok := b.singleParamCtorMatch(candidates, func(p string) bool {
			return strings.Contains(p, "&&")
		}); ok {
			return id, true
		}
	default:
		if id, ok := b.exactCtorMatch(candidates, sig); ok {
			return id, true
		}
		if id, ok := b.elementwiseCtorMatch(candidates, sig); ok {
			return id, true
		}
	}

	if len(candidates) == 1 {
		return b.Records.FunctionList[candidates[0]], true
	}
	return 0, false
}

func (b *Builder) exactCtorMatch(candidates []model.SignatureKey, sig string) (model.NodeId, bool) {
	for _, key := range candidates {
		if key.Signature == sig {
			return b.Records.FunctionList[key], true
		}
	}
	return 0, false
}

func (b *Builder) singleParamCtorMatch(candidates []model.SignatureKey, pred func(string) bool) (model.NodeId, bool) {
	for _, key := range candidates {
		params := splitSignature(key.Signature)
		if len(params) == 1 && pred(strings.TrimSpace(params[0])) {
			return b.Records.FunctionList[key], true
		}
	}
	return 0, false
}

func (b *Builder) elementwiseCtorMatch(candidates []model.SignatureKey, sig string) (model.NodeId, bool) {
	argTypes := splitSignature(sig)
	for _, key := range candidates {
		params := splitSignature(key.Signature)
		if len(params) != len(argTypes) {
			continue
		}
		match := true
		for i, p := range params {
			if !typeCompatible(p, argTypes[i]) {
				match = false
				break
			}
		}
		if match {
			return b.Records.FunctionList[key], true
		}
	}
	return 0, false
}

func splitSignature(sig string) []string {
	if sig == "" {
		return nil
	}
	return strings.Split(sig, ",")
}

func typeCompatible(param, arg string) bool {
	p := stripTypeQualifiers(param)
	a := stripTypeQualifiers(arg)
	if p == a {
		return true
	}
	if strings.Contains(p, "char") && strings.Contains(a, "string") {
		return true
	}
	if strings.Contains(a, "char") && strings.Contains(p, "string") {
		return true
	}
	return false
}

func stripTypeQualifiers(t string) string {
	t = strings.TrimSpace(t)
	t = strings.ReplaceAll(t, "const", "")
	t = strings.ReplaceAll(t, "&&", "")
	t = strings.ReplaceAll(t, "&", "")
	t = strings.ReplaceAll(t, "*", "")
	return strings.TrimSpace(t)
}

// implicitBaseConstructorEdges wires the implicit base-class
// construction that runs before a derived constructor's own body:
// for every constructor whose class extends a base that declares its
// own (default) constructor, add a constructor_call edge from the
// derived constructor's entry to the base constructor, returning via
// base_constructor_return to the derived constructor's first real
// statement (or its implicit return, for an empty body). The payload
// is tagged so the DFG interprocedural layer can tell this apart from
// an explicit, user-written constructor call (DfgBaseCtor vs.
// DfgConstructor).
func (b *Builder) implicitBaseConstructorEdges(g *graphutil.CfgGraph) {
	for key, fnID := range b.Records.FunctionList {
		if key.Name != key.Class || key.Class == "" {
			continue // not a constructor
		}
		fnNode, ok := b.byID[fnID]
		if !ok {
			continue
		}
		entry, hasEntry := b.Records.ImplicitReturnMap[fnID]
		if body := fnNode.ChildByFieldName("body"); body != nil {
			if first, ok := b.firstStatementIn(body); ok {
				if firstID, ok2 := b.idOf(first); ok2 {
					entry, hasEntry = firstID, true
				}
			}
		}
		if !hasEntry {
			continue
		}
		for _, base := range b.Records.Extends[key.Class] {
			baseID, ok := b.resolveConstructorOverload(base, ctorSigDefault)
			if !ok {
				continue
			}
			g.AddEdge(model.CfgEdge{Src: fnID, Dst: baseID, Kind: model.ConstructorCall, Payload: "basector|" + base})
			for _, retID := range b.Records.ReturnStatementMap[baseID] {
				g.AddEdge(model.CfgEdge{Src: retID, Dst: entry, Kind: model.BaseConstructorReturn})
			}
		}
	}
}

// destructorCallEdges implements §4.3 "Destructor chain": deleting an
// object of runtime type C calls ~C first, then chains into every base
// class's destructor (per records.Extends, the spec's preferred
// class-hierarchy-aware resolution) in derivation order, ending with a
// destructor_return (single-link chain) or base_destructor_return
// (chain length > 1) to next_index(delete_site).
func (b *Builder) destructorCallEdges(g *graphutil.CfgGraph) {
	for sigKey, occs := range b.Records.DestructorCalls {
		chain := b.destructorChain(sigKey.Class)
		if len(chain) == 0 {
			continue
		}
		for _, occ := range occs {
			b.wireDestructorChain(g, chain, occ)
		}
	}
}

// destructorChain returns the destructor function_list ids for
// className followed by each base class (in records.Extends discovery
// order) that itself declares a destructor, innermost (derived) first.
func (b *Builder) destructorChain(className string) []model.NodeId {
	var chain []model.NodeId
	seen := make(map[string]bool)
	var visit func(class string)
	visit = func(class string) {
		if class == "" || seen[class] {
			return
		}
		seen[class] = true
		key := model.SignatureKey{FunctionKey: model.FunctionKey{Class: class, Name: "~" + class}}
		if id, ok := b.Records.FunctionList[key]; ok {
			chain = append(chain, id)
		}
		for _, base := range b.Records.Extends[class] {
			visit(base)
		}
	}
	visit(className)
	return chain
}

func (b *Builder) wireDestructorChain(g *graphutil.CfgGraph, chain []model.NodeId, occ model.CallOccurrence) {
	g.AddEdge(model.CfgEdge{Src: occ.EnclosingID, Dst: chain[0], Kind: model.DestructorCall, Payload: callPayload(occ)})

	next := model.ExitNodeID
	if callSite, ok := b.byID[occ.EnclosingID]; ok {
		if nextID, ok := b.nextIndex(callSite); ok {
			next = nextID
		}
	}

	returnKind := model.DestructorReturn
	if len(chain) > 1 {
		returnKind = model.BaseDestructorReturn
	}

	for i, dtorID := range chain {
		tail := dtorID
		if dtorNode, ok := b.byID[dtorID]; ok {
			if body := dtorNode.ChildByFieldName("body"); body != nil {
				if last, ok := b.lastStatementIn(body); ok {
					if lastID, ok2 := b.idOf(last); ok2 {
						tail = lastID
					}
				}
			}
		}
		if i+1 < len(chain) {
			g.AddEdge(model.CfgEdge{Src: tail, Dst: chain[i+1], Kind: model.DestructorChain})
		} else {
			g.AddEdge(model.CfgEdge{Src: tail, Dst: next, Kind: returnKind})
		}
	}
}
