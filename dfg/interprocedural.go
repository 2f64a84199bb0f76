package dfg

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
)

// InterproceduralBuilder wires argument->parameter, return->caller,
// and pointer-modification->use edges across call boundaries (§4.8),
// restricted to CFG-resolved targets so a virtual call only connects
// to the overloads the CFG actually wired (invariant I9).
type InterproceduralBuilder struct {
	Index   model.Index
	Source  []byte
	Records *model.Records
	ByID    map[model.NodeId]*sitter.Node

	// ModifiesParam answers whether the callee (by NodeId) modifies
	// its parameter at argIndex, as precomputed by ParamModifier.
	// nil means "assume no" (conservative).
	ModifiesParam func(calleeID model.NodeId, argIndex int) bool
}

// basectorPayloadPrefix tags a constructor_call edge synthesized for
// an implicit base-class construction (cfgbuild.implicitBaseConstructorEdges)
// so Build can route it to DfgBaseCtor instead of DfgConstructor.
const basectorPayloadPrefix = "basector|"

// Build walks every call/method/indirect/constructor/destructor edge
// the CFG recorded and derives the interprocedural DFG edges that ride
// along it (§4.8).
func (ib *InterproceduralBuilder) Build(g *graphutil.CfgGraph) []model.DfgEdge {
	var out []model.DfgEdge
	for _, e := range g.Edges() {
		switch e.Kind {
		case model.FunctionCall, model.IndirectCall:
			out = append(out, ib.argumentEdges(e)...)
		case model.MethodCall:
			out = append(out, ib.argumentEdges(e)...)
			out = append(out, ib.methodMemberAccessEdges(e)...)
		case model.VirtualCall:
			out = append(out, ib.argumentEdges(e)...)
			out = append(out, ib.methodMemberAccessEdges(e)...)
			out = append(out, ib.virtualDispatchEdge(e)...)
		case model.FunctionReturn, model.MethodReturn, model.IndirectReturn:
			out = append(out, ib.returnEdges(e)...)
		case model.ConstructorCall:
			if strings.HasPrefix(e.Payload, basectorPayloadPrefix) {
				out = append(out, ib.baseConstructorEdge(e)...)
			} else {
				out = append(out, ib.argumentEdges(e)...)
				out = append(out, ib.constructorEdge(e)...)
			}
		case model.ConstructorReturn, model.BaseConstructorReturn:
			out = append(out, ib.returnEdges(e)...)
		case model.DestructorCall:
			out = append(out, ib.destructorEdge(e)...)
		case model.DestructorChain:
			out = append(out, ib.baseDestructorEdge(e)...)
		}
	}
	return out
}

// methodMemberAccessEdges implements §4.8 "method member access": for
// a call shaped `object.method(...)`, wire the receiver object into
// the callee as its implicit `this` binding. It has no positional
// argument index, so it is carried via DfgEdge.ObjectName instead.
func (ib *InterproceduralBuilder) methodMemberAccessEdges(e model.CfgEdge) []model.DfgEdge {
	callSite, ok := ib.ByID[e.Src]
	if !ok {
		return nil
	}
	call := findCallExpression(callSite)
	if call == nil {
		return nil
	}
	function := call.ChildByFieldName("function")
	if function == nil || function.Type() != "field_expression" {
		return nil
	}
	object := function.ChildByFieldName("argument")
	if object == nil {
		return nil
	}
	objectName := identifierText(object, ib.Source)
	if objectName == "" {
		return nil
	}
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.ComesFrom,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
		UsedDef: objectName, Interprocedural: model.ArgumentToParameter,
		ArgumentIndex: -1, ObjectName: objectName,
	}}
}

// virtualDispatchEdge marks a virtual_call CFG edge with a
// virtual_dispatch DFG edge, restricted (by construction, since it
// rides an already CFG-resolved edge) to invariant I9's set of
// statically discoverable overloads.
func (ib *InterproceduralBuilder) virtualDispatchEdge(e model.CfgEdge) []model.DfgEdge {
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.VirtualDispatch,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
	}}
}

// constructorEdge marks an explicit constructor_call CFG edge with its
// DFG counterpart.
func (ib *InterproceduralBuilder) constructorEdge(e model.CfgEdge) []model.DfgEdge {
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.DfgConstructor,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
	}}
}

// baseConstructorEdge marks the implicit base-class construction a
// derived constructor performs before its own body runs.
func (ib *InterproceduralBuilder) baseConstructorEdge(e model.CfgEdge) []model.DfgEdge {
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.DfgBaseCtor,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
	}}
}

// destructorEdge marks a destructor_call CFG edge with its DFG
// counterpart.
func (ib *InterproceduralBuilder) destructorEdge(e model.CfgEdge) []model.DfgEdge {
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.DfgDestructor,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
	}}
}

// baseDestructorEdge marks a destructor_chain CFG edge (one destructor
// body invoking the next base class's destructor) with its DFG
// counterpart.
func (ib *InterproceduralBuilder) baseDestructorEdge(e model.CfgEdge) []model.DfgEdge {
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.DfgBaseDtor,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
	}}
}

// argumentEdges matches a call site's argument list against the
// callee's parameter list positionally, restricted to pointer/
// reference/array-typed parameters (§4.8 bullet 1). The implicit
// receiver for method calls ("this") is wired separately by
// methodMemberAccessEdges.
func (ib *InterproceduralBuilder) argumentEdges(e model.CfgEdge) []model.DfgEdge {
	callSite, ok := ib.ByID[e.Src]
	if !ok {
		return nil
	}
	callee, ok := ib.ByID[e.Dst]
	if !ok {
		return nil
	}
	call := findCallExpression(callSite)
	if call == nil {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	params := calleeParameters(callee)

	var out []model.DfgEdge
	count := int(args.NamedChildCount())
	for i := 0; i < count && i < len(params); i++ {
		argName := identifierText(args.NamedChild(i), ib.Source)
		paramName := identifierText(params[i].declarator, ib.Source)
		if argName == "" || paramName == "" {
			continue
		}
		if params[i].refLike {
			out = append(out, model.DfgEdge{
				Src: e.Src, Dst: e.Dst, DataflowType: model.Parameter,
				EdgeType: "DFG_edge", Color: model.ColorComesFrom,
				UsedDef: paramName, Interprocedural: model.ArgumentToParameter, ArgumentIndex: i,
			})
		}
		if ib.modifies(e.Dst, i) {
			out = append(out, model.DfgEdge{
				Src: e.Dst, Dst: e.Src, DataflowType: model.ComesFrom,
				EdgeType: "DFG_edge", Color: model.ColorComesFrom,
				UsedDef: argName, Interprocedural: model.ModificationToUse, ArgumentIndex: i,
			})
		}
		if lambdaNode, ok := ib.lambdaInvokedVia(argName, paramName, callee); ok {
			out = append(out, model.DfgEdge{
				Src: e.Src, Dst: lambdaNode, DataflowType: model.DfgLambdaCall,
				EdgeType: "DFG_edge", Color: model.ColorComesFrom,
				UsedDef: paramName, ArgumentIndex: i,
			})
		}
	}
	return out
}

// returnEdges wires the callee's return value back to the call site
// (§4.8 "return_to_caller").
func (ib *InterproceduralBuilder) returnEdges(e model.CfgEdge) []model.DfgEdge {
	retNode, ok := ib.ByID[e.Src]
	if !ok || retNode.Type() != "return_statement" {
		return nil
	}
	expr := firstNamedChild(retNode)
	if expr == nil {
		return nil
	}
	name := identifierText(expr, ib.Source)
	if name == "" {
		return nil
	}
	return []model.DfgEdge{{
		Src: e.Src, Dst: e.Dst, DataflowType: model.ComesFrom,
		EdgeType: "DFG_edge", Color: model.ColorComesFrom,
		UsedDef: name, Interprocedural: model.ReturnToCaller,
	}}
}

// modifies reports whether the CFG-resolved callee at calleeID is
// known (via ib.ModifiesParam, precomputed by ParamModifier scanning
// assignments/updates/compound-LHS writes in the callee body) to
// modify its parameter at argIndex (§4.8 "Pointer-modification ->
// later use").
func (ib *InterproceduralBuilder) modifies(calleeID model.NodeId, argIndex int) bool {
	if ib.ModifiesParam == nil {
		return false
	}
	return ib.ModifiesParam(calleeID, argIndex)
}

// lambdaInvokedVia implements §4.8 "Lambda invocation": if argName was
// bound at declaration time to a lambda (records.LambdaVariables), and
// the callee's body invokes its paramName parameter as a call, return
// the CFG node id of the lambda's enclosing statement (records.LambdaMap).
func (ib *InterproceduralBuilder) lambdaInvokedVia(argName, paramName string, callee *sitter.Node) (model.NodeId, bool) {
	if ib.Records == nil {
		return 0, false
	}
	lambdaKey, ok := ib.Records.LambdaVariables[argName]
	if !ok {
		return 0, false
	}
	lambdaNode, ok := ib.Records.LambdaMap[lambdaKey]
	if !ok {
		return 0, false
	}
	body := callee.ChildByFieldName("body")
	if body == nil || !calleeInvokesParam(body, paramName, ib.Source) {
		return 0, false
	}
	return lambdaNode, true
}

// calleeInvokesParam reports whether body contains a call_expression
// whose callee is the bare identifier paramName.
func calleeInvokesParam(body *sitter.Node, paramName string, source []byte) bool {
	found := false
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found {
			return
		}
		if n.Type() == "call_expression" {
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" && fn.Content(source) == paramName {
				found = true
				return
			}
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
	return found
}

func findCallExpression(enclosing *sitter.Node) *sitter.Node {
	var found *sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found != nil {
			return
		}
		if n.Type() == "call_expression" {
			found = n
			return
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(enclosing)
	return found
}

// calleeParameter pairs a parameter's declarator with whether it is
// pointer/reference/array-typed (§4.8 bullet 1: only those types let
// the callee observe or mutate the caller's storage, so only those get
// an argument_to_parameter edge).
type calleeParameter struct {
	declarator *sitter.Node
	refLike    bool
}

func calleeParameters(fn *sitter.Node) []calleeParameter {
	declarator := fn.ChildByFieldName("declarator")
	params := findParameterList(declarator)
	if params == nil {
		return nil
	}
	var out []calleeParameter
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		d := p.ChildByFieldName("declarator")
		if d == nil {
			continue
		}
		out = append(out, calleeParameter{declarator: d, refLike: isRefLikeParameter(d)})
	}
	return out
}

func isRefLikeParameter(d *sitter.Node) bool {
	switch d.Type() {
	case "pointer_declarator", "reference_declarator", "array_declarator":
		return true
	}
	return false
}

