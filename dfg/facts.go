// Package dfg implements the DFG builder (component 6, §4.6-§4.8): RDA
// fact table construction, translation of RDA results into def->use
// edges, and the interprocedural data-flow layer.
package dfg

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/model"
)

// StatementFacts is the DEF/USE pair attributed to one enclosing
// statement (§4.6's per-construct table).
type StatementFacts struct {
	Defs model.FactSet
	Uses model.FactSet
}

// FactTable maps every CfgNode id to the facts defined/used there.
type FactTable map[model.NodeId]StatementFacts

// inputFunctions are the well-known stdio/stream input helpers whose
// pointer/reference arguments are DEFs rather than USEs (§4.6 "call to
// input function").
var inputFunctions = map[string]bool{
	"scanf": true, "fscanf": true, "sscanf": true, "gets": true, "fgets": true,
}

// Builder accumulates a FactTable while walking a translation unit's
// statement-level CST nodes.
type Builder struct {
	Index   model.Index
	Symbols model.SymbolTable
	Source  []byte
	Nodes   model.NodeList
	Records *model.Records

	// ModifiesParam reports whether calling the target function
	// through parameter index argIndex is known (from a prior
	// intraprocedural scan, §4.8) to modify that argument; nil means
	// "assume no" (conservative under-approximation, acceptable per
	// §4.6's "best effort" framing).
	ModifiesParam func(calleeID model.NodeId, argIndex int) bool
}

// Build walks every statement-level node in b.Nodes and attributes
// facts per the §4.6 construct table.
func (b *Builder) Build() FactTable {
	table := make(FactTable, len(b.Nodes))
	for _, n := range b.Nodes {
		id, ok := model.IndexNode(b.Index, n)
		if !ok {
			continue
		}
		facts := b.factsFor(n)
		if len(facts.Defs) > 0 || len(facts.Uses) > 0 {
			table[id] = facts
		}
	}
	return table
}

func (b *Builder) factsFor(n *sitter.Node) StatementFacts {
	id, _ := model.IndexNode(b.Index, n)
	sf := StatementFacts{Defs: model.NewFactSet(), Uses: model.NewFactSet()}

	switch n.Type() {
	case "declaration":
		b.declarationFacts(n, id, &sf)
	case "expression_statement":
		b.expressionStatementFacts(n, id, &sf)
	case "return_statement":
		if expr := firstNamedChild(n); expr != nil {
			b.collectUses(expr, id, &sf)
		}
	case "if_statement", "while_statement", "switch_statement":
		if cond := n.ChildByFieldName("condition"); cond != nil {
			b.collectUses(cond, id, &sf)
		}
	case "for_statement":
		if cond := n.ChildByFieldName("condition"); cond != nil {
			b.collectUses(cond, id, &sf)
		}
	case "for_range_loop":
		if decl := n.ChildByFieldName("declarator"); decl != nil {
			name := identifierText(decl, b.Source)
			if name != "" {
				sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Declaration: true, HasInitializer: true, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
			}
		}
		if rng := n.ChildByFieldName("right"); rng != nil {
			b.collectUses(rng, id, &sf)
		}
	case "throw_statement":
		if expr := firstNamedChild(n); expr != nil {
			b.collectUses(expr, id, &sf)
		}
	case "catch_clause":
		if params := n.ChildByFieldName("parameters"); params != nil {
			name := firstParamName(params, b.Source)
			if name != "" {
				sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Declaration: true, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
			}
		}
	case "function_definition":
		b.functionDefinitionFacts(n, id, &sf)
	}
	return sf
}

// variadicHelpers are the va_start/va_arg forms whose first argument
// is both a DEF (va_start initializes the list) and a USE (va_arg
// reads through it) per §4.6's "variadic helpers" row.
var variadicHelpers = map[string]bool{"va_start": true, "va_arg": true}

func (b *Builder) declarationFacts(n *sitter.Node, id model.NodeId, sf *StatementFacts) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "init_declarator":
			declarator := child.ChildByFieldName("declarator")
			value := child.ChildByFieldName("value")
			name := identifierText(declarator, b.Source)
			if name == "" {
				continue
			}
			sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Declaration: true, HasInitializer: true, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
			if value != nil {
				b.collectUses(value, id, sf)
			}
		case "identifier", "pointer_declarator", "array_declarator":
			name := identifierText(child, b.Source)
			if name != "" {
				sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Declaration: true, HasInitializer: false, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
			}
		}
	}
}

func (b *Builder) expressionStatementFacts(n *sitter.Node, id model.NodeId, sf *StatementFacts) {
	expr := firstNamedChild(n)
	if expr == nil {
		return
	}
	switch expr.Type() {
	case "assignment_expression":
		b.assignmentFacts(expr, id, sf)
	case "update_expression":
		operand := expr.ChildByFieldName("argument")
		name := identifierText(operand, b.Source)
		if name != "" {
			fact := model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)}
			sf.Defs.Add(fact)
			sf.Uses.Add(fact)
		}
	case "call_expression":
		b.callFacts(expr, id, sf)
	default:
		b.collectUses(expr, id, sf)
	}
}

func (b *Builder) assignmentFacts(expr *sitter.Node, id model.NodeId, sf *StatementFacts) {
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	op := operatorOf(expr, b.Source)
	name := identifierText(left, b.Source)
	if name == "" {
		return
	}
	fact := model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)}
	sf.Defs.Add(fact)
	if op != "=" {
		// Compound assignment (`op=`): l is also a USE (§4.6).
		sf.Uses.Add(fact)
	}
	if right != nil {
		b.collectUses(right, id, sf)
	}
}

func (b *Builder) callFacts(call *sitter.Node, id model.NodeId, sf *StatementFacts) {
	function := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")
	name := ""
	if function != nil {
		name = function.Content(b.Source)
	}
	if inputFunctions[name] {
		b.inputCallFacts(args, id, sf)
		return
	}
	if variadicHelpers[name] {
		b.variadicCallFacts(name, args, id, sf)
		return
	}
	if args == nil {
		return
	}
	count := int(args.NamedChildCount())
	for i := 0; i < count; i++ {
		arg := args.NamedChild(i)
		b.collectUses(arg, id, sf)
		if b.ModifiesParam != nil {
			if calleeID, ok := b.resolveCalleeByName(name); ok && b.ModifiesParam(calleeID, i) {
				varName := identifierText(arg, b.Source)
				if varName != "" {
					sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: varName, Line: id, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id), IsPointerModificationAtCallSite: true})
				}
			}
		}
	}
	if function != nil && function.Type() == "field_expression" {
		if receiver := function.ChildByFieldName("argument"); receiver != nil {
			b.collectUses(receiver, id, sf)
		}
	}
}

func (b *Builder) resolveCalleeByName(name string) (model.NodeId, bool) {
	for key, id := range b.Records.FunctionList {
		if key.Name == name {
			return id, true
		}
	}
	return 0, false
}

func (b *Builder) inputCallFacts(args *sitter.Node, id model.NodeId, sf *StatementFacts) {
	if args == nil {
		return
	}
	count := int(args.NamedChildCount())
	for i := 0; i < count; i++ {
		arg := args.NamedChild(i)
		if i == 0 {
			b.collectUses(arg, id, sf)
			continue
		}
		name := ""
		if arg.Type() == "pointer_expression" {
			operand := arg.ChildByFieldName("argument")
			name = identifierText(operand, b.Source)
		} else {
			name = identifierText(arg, b.Source)
		}
		if name != "" {
			sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
		} else {
			b.collectUses(arg, id, sf)
		}
	}
}

// variadicCallFacts handles va_start/va_arg (§4.6): the first argument
// (the va_list) is a DEF for both forms, and additionally a USE for
// va_arg, which reads through the list rather than initializing it.
func (b *Builder) variadicCallFacts(name string, args *sitter.Node, id model.NodeId, sf *StatementFacts) {
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	first := args.NamedChild(0)
	listName := identifierText(first, b.Source)
	if listName == "" {
		return
	}
	fact := model.Fact{Kind: model.FactIdentifier, Name: listName, Line: id, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)}
	sf.Defs.Add(fact)
	if name == "va_arg" {
		sf.Uses.Add(fact)
	}
}

func (b *Builder) functionDefinitionFacts(n *sitter.Node, id model.NodeId, sf *StatementFacts) {
	declarator := n.ChildByFieldName("declarator")
	params := findParameterList(declarator)
	if params == nil {
		return
	}
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		pd := p.ChildByFieldName("declarator")
		name := identifierText(pd, b.Source)
		if name != "" {
			sf.Defs.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Line: id, Declaration: true, HasInitializer: true, Scope: b.scopeOf(id), VariableScope: b.scopeOf(id)})
		}
	}
}

func findParameterList(declarator *sitter.Node) *sitter.Node {
	d := declarator
	for d != nil && d.Type() != "function_declarator" {
		d = d.ChildByFieldName("declarator")
	}
	if d == nil {
		return nil
	}
	return d.ChildByFieldName("parameters")
}

// collectUses recursively finds identifiers and literals inside an
// expression tree, attaching a USE fact per occurrence, using the
// enclosing statement id as Line for scope-lookup purposes only (uses
// never set Line as a defining location).
func (b *Builder) collectUses(n *sitter.Node, enclosing model.NodeId, sf *StatementFacts) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "field_expression", "pointer_expression", "subscript_expression", "this":
		name := identifierText(n, b.Source)
		if name != "" {
			sf.Uses.Add(model.Fact{Kind: model.FactIdentifier, Name: name, Scope: b.scopeOf(enclosing), VariableScope: b.scopeOf(enclosing)})
		}
		return
	case "number_literal", "string_literal", "char_literal", "true", "false", "null", "nullptr":
		sf.Uses.Add(model.Fact{Kind: model.FactLiteral, Name: "LITERAL_" + n.Content(b.Source), Scope: b.scopeOf(enclosing), VariableScope: b.scopeOf(enclosing)})
		return
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		b.collectUses(n.NamedChild(i), enclosing, sf)
	}
}

func (b *Builder) scopeOf(id model.NodeId) model.Scope {
	if b.Symbols == nil {
		return nil
	}
	scope, _ := b.Symbols.ScopeOf(id)
	return scope
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func firstParamName(params *sitter.Node, source []byte) string {
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		if p.Type() == "parameter_declaration" {
			return identifierText(p.ChildByFieldName("declarator"), source)
		}
	}
	return ""
}

func operatorOf(expr *sitter.Node, source []byte) string {
	count := int(expr.ChildCount())
	for i := 0; i < count; i++ {
		c := expr.Child(i)
		if !c.IsNamed() {
			text := c.Content(source)
			if len(text) > 0 && text[len(text)-1] == '=' {
				return text
			}
		}
	}
	return "="
}

// identifierText implements the name-resolution normalization of §3:
// *p and p[i] resolve to the base variable p, and p->f/p.f resolve
// to "p.f".
func identifierText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return n.Content(source)
	case "this":
		return "this"
	case "field_expression":
		obj := n.ChildByFieldName("argument")
		field := n.ChildByFieldName("field")
		if obj == nil || field == nil {
			return ""
		}
		return identifierText(obj, source) + "." + field.Content(source)
	case "pointer_expression":
		operand := n.ChildByFieldName("argument")
		return identifierText(operand, source)
	case "subscript_expression":
		base := n.ChildByFieldName("argument")
		return identifierText(base, source)
	case "init_declarator", "pointer_declarator", "array_declarator", "reference_declarator":
		if d := n.ChildByFieldName("declarator"); d != nil {
			return identifierText(d, source)
		}
		return n.Content(source)
	default:
		return ""
	}
}
