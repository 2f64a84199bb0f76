package cfgbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// raiiDeclaration is one destructor-bearing local object declared
// inside a scope, in construction order.
type raiiDeclaration struct {
	varName   string
	className string
	dtorID    model.NodeId
	dtorBody  *sitter.Node
}

// raiiDestructors implements §4.2 step 8: for every compound statement
// that declared objects of destructor-bearing classes, build a
// reverse-construction-order chain from the scope's last executable
// statement through each destructor's body, ending at the statement
// after the scope (or the function's implicit return at a function
// boundary).
func (b *Builder) raiiDestructors(g *graphutil.CfgGraph, root *sitter.Node) {
	for _, scope := range b.compoundStatements(root) {
		b.wireScopeDestructors(g, scope)
	}
}

func (b *Builder) compoundStatements(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "compound_statement" {
			out = append(out, n)
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(n)
	return out
}

func (b *Builder) wireScopeDestructors(g *graphutil.CfgGraph, scope *sitter.Node) {
	decls := b.destructorBearingDecls(scope)
	if len(decls) == 0 {
		return
	}
	last, ok := b.lastStatementIn(scope)
	if !ok || b.isJump(last) {
		return
	}
	lastID, ok := b.idOf(last)
	if !ok {
		return
	}

	// Reverse construction order.
	for i, j := 0, len(decls)-1; i < j; i, j = i+1, j-1 {
		decls[i], decls[j] = decls[j], decls[i]
	}

	next := func() model.NodeId {
		parent := scope.Parent()
		if fn := enclosingFunction(scope); fn != nil && parent != nil && parent.Type() == "function_definition" {
			if fnID, ok := b.idOf(fn); ok {
				if implicit, ok := b.Records.ImplicitReturnMap[fnID]; ok {
					return implicit
				}
			}
		}
		if id, ok := b.nextIndex(scope); ok {
			return id
		}
		return model.ExitNodeID
	}()

	for i, d := range decls {
		if i == 0 {
			g.AddEdge(model.CfgEdge{Src: lastID, Dst: d.dtorID, Kind: model.ScopeExitDestructor})
		}
		dtorTail := d.dtorID
		if last, ok := b.lastStatementIn(d.dtorBody); ok {
			if id, ok2 := b.idOf(last); ok2 {
				dtorTail = id
			}
		}
		if i+1 < len(decls) {
			g.AddEdge(model.CfgEdge{Src: dtorTail, Dst: decls[i+1].dtorID, Kind: model.DestructorChain, Payload: d.varName})
		} else {
			g.AddEdge(model.CfgEdge{Src: dtorTail, Dst: next, Kind: model.ScopeDestructorReturn, Payload: d.varName})
		}
	}
}

// destructorBearingDecls finds local variable declarations in scope
// whose class (per the symbol table's static type, stripped of
// qualifiers) has a user-defined destructor recorded in function_list
// under the `~ClassName` key.
func (b *Builder) destructorBearingDecls(scope *sitter.Node) []raiiDeclaration {
	var out []raiiDeclaration
	count := int(scope.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := scope.NamedChild(i)
		if stmt.Type() != "declaration" {
			continue
		}
		typeNode := stmt.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		className := typeNode.Content(b.Source)
		declarators := declaratorsOf(stmt)
		for _, decl := range declarators {
			varName := identifierOf(decl, b.Source)
			if varName == "" {
				continue
			}
			sig := model.SignatureKey{FunctionKey: model.FunctionKey{Class: className, Name: "~" + className}}
			dtorID, ok := b.Records.FunctionList[sig]
			if !ok {
				continue
			}
			dtorNode, ok := b.byID[dtorID]
			if !ok {
				continue
			}
			out = append(out, raiiDeclaration{
				varName:   varName,
				className: className,
				dtorID:    dtorID,
				dtorBody:  dtorNode.ChildByFieldName("body"),
			})
		}
	}
	return out
}

func declaratorsOf(decl *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	count := int(decl.NamedChildCount())
	for i := 0; i < count; i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "init_declarator", "identifier":
			out = append(out, child)
		}
	}
	return out
}

func identifierOf(decl *sitter.Node, source []byte) string {
	if decl.Type() == "identifier" {
		return decl.Content(source)
	}
	if d := decl.ChildByFieldName("declarator"); d != nil {
		return d.Content(source)
	}
	return ""
}
