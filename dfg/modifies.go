package dfg

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/model"
)

// ParamModifier precomputes, per function, which parameter indices are
// modified inside the body (§4.8 "Pointer-modification -> later use":
// "precompute, per function, which parameter indices are modified
// inside the body by scanning assignments, updates, and compound LHS
// of form *p, p[i], p->f, or p itself when reference"). The
// InterproceduralBuilder and the fact-table Builder both consult this
// to decide whether a call argument should be treated as a def at the
// call site rather than a plain use.
type ParamModifier struct {
	modified map[model.NodeId]map[int]bool
}

// NewParamModifier scans every function_definition reachable through
// byID and returns a ParamModifier ready to answer Modifies queries.
func NewParamModifier(byID map[model.NodeId]*sitter.Node, source []byte) *ParamModifier {
	pm := &ParamModifier{modified: make(map[model.NodeId]map[int]bool)}
	for id, n := range byID {
		if n.Type() == "function_definition" {
			pm.analyze(id, n, source)
		}
	}
	return pm
}

func (pm *ParamModifier) analyze(fnID model.NodeId, fn *sitter.Node, source []byte) {
	declarator := fn.ChildByFieldName("declarator")
	params := findParameterList(declarator)
	if params == nil {
		return
	}

	indexByName := make(map[string]int)
	refParams := make(map[string]bool)
	count := int(params.NamedChildCount())
	idx := 0
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		d := p.ChildByFieldName("declarator")
		name := identifierText(d, source)
		if name != "" {
			indexByName[name] = idx
			if d != nil {
				switch d.Type() {
				case "reference_declarator":
					refParams[name] = true
				}
			}
		}
		idx++
	}
	if len(indexByName) == 0 {
		return
	}

	body := fn.ChildByFieldName("body")
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "assignment_expression":
			pm.noteLValue(fnID, n.ChildByFieldName("left"), indexByName, refParams, source)
		case "update_expression":
			pm.noteLValue(fnID, n.ChildByFieldName("argument"), indexByName, refParams, source)
		}
		childCount := int(n.NamedChildCount())
		for i := 0; i < childCount; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
}

// noteLValue resolves an assignment/update target's base variable and
// marks the corresponding parameter index modified when the lvalue is
// a pointer-deref/subscript/field write (*p, p[i], p->f) or a direct
// reassignment of a reference parameter.
func (pm *ParamModifier) noteLValue(fnID model.NodeId, lhs *sitter.Node, indexByName map[string]int, refParams map[string]bool, source []byte) {
	if lhs == nil {
		return
	}
	base, throughIndirection := baseAndIndirection(lhs, source)
	if base == "" {
		return
	}
	idx, ok := indexByName[base]
	if !ok {
		return
	}
	if throughIndirection || refParams[base] {
		pm.mark(fnID, idx)
	}
}

// baseAndIndirection resolves an lvalue's base variable name and
// whether the lvalue denotes writing through a pointer/array/field
// (as opposed to reassigning the variable itself).
func baseAndIndirection(n *sitter.Node, source []byte) (string, bool) {
	switch n.Type() {
	case "pointer_expression":
		return identifierText(n.ChildByFieldName("argument"), source), true
	case "subscript_expression":
		return identifierText(n.ChildByFieldName("argument"), source), true
	case "field_expression":
		return identifierText(n.ChildByFieldName("argument"), source), true
	case "identifier":
		return n.Content(source), false
	default:
		return "", false
	}
}

func (pm *ParamModifier) mark(fnID model.NodeId, idx int) {
	if pm.modified[fnID] == nil {
		pm.modified[fnID] = make(map[int]bool)
	}
	pm.modified[fnID][idx] = true
}

// Modifies reports whether calleeID's parameter at argIndex is known
// to be modified inside the callee's body. A nil receiver (no
// precompute available) conservatively answers false.
func (pm *ParamModifier) Modifies(calleeID model.NodeId, argIndex int) bool {
	if pm == nil {
		return false
	}
	return pm.modified[calleeID][argIndex]
}
