package cfgbuild

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/cstwalk"
	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/typeinfer"
)

// PopulateCallMap implements §4.2 step 3: traverse the CST, classify
// every call_expression, and record (call_site_inner_id,
// enclosing_statement_id) under the right Records map, keyed by a
// best-effort argument-type signature (§4.4).
func (b *Builder) PopulateCallMap(root *sitter.Node) {
	cstwalk.WalkNamed(root, func(n *sitter.Node) bool {
		if n.Type() == "call_expression" {
			b.recordCall(n)
		}
		return true
	})
}

func (b *Builder) recordCall(call *sitter.Node) {
	enclosing := enclosingStatement(call, b)
	if enclosing == nil {
		return
	}
	enclosingID, ok := b.idOf(enclosing)
	if !ok {
		return
	}
	callID, ok := model.IndexNode(b.Index, call)
	if !ok {
		b.Sink.Skip(diagnostic.MissingIndex, "call_expression has no index entry")
		return
	}
	occ := model.CallOccurrence{CallSiteID: callID, EnclosingID: enclosingID}

	function := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")
	sig := typeinfer.Signature(args, b.Source, b.resolveIdentifierType)

	if function == nil {
		return
	}
	switch function.Type() {
	case "field_expression":
		name := function.ChildByFieldName("field")
		if name == nil {
			return
		}
		key := model.SignatureKey{FunctionKey: model.FunctionKey{Name: name.Content(b.Source)}, Signature: sig}
		b.Records.MethodCalls[key] = append(b.Records.MethodCalls[key], occ)
	case "qualified_identifier":
		scope := function.ChildByFieldName("scope")
		name := function.ChildByFieldName("name")
		if name == nil {
			return
		}
		class := ""
		if scope != nil {
			class = scope.Content(b.Source)
		}
		key := model.SignatureKey{FunctionKey: model.FunctionKey{Class: class, Name: name.Content(b.Source)}, Signature: sig}
		b.Records.FunctionCalls[key] = append(b.Records.FunctionCalls[key], occ)
	case "identifier":
		name := function.Content(b.Source)
		if _, tracked := b.Records.FunctionPointerAssignments[name]; tracked {
			key := model.SignatureKey{FunctionKey: model.FunctionKey{Name: name}, Signature: sig}
			b.Records.IndirectCalls[key] = append(b.Records.IndirectCalls[key], occ)
			return
		}
		key := model.SignatureKey{FunctionKey: model.FunctionKey{Name: name}, Signature: sig}
		b.Records.FunctionCalls[key] = append(b.Records.FunctionCalls[key], occ)
	case "subscript_expression":
		base := function.ChildByFieldName("argument")
		if base == nil {
			return
		}
		key := model.SignatureKey{FunctionKey: model.FunctionKey{Name: base.Content(b.Source)}, Signature: sig}
		b.Records.IndirectCalls[key] = append(b.Records.IndirectCalls[key], occ)
	}
}

func enclosingStatement(n *sitter.Node, b *Builder) *sitter.Node {
	for p := n; p != nil; p = p.Parent() {
		if _, ok := b.Nodes[model.KeyOf(p)]; ok {
			return p
		}
	}
	return nil
}

// callEdges implements §4.3: match every recorded call occurrence
// against function_list and add call + return edges.
func (b *Builder) callEdges(g *graphutil.CfgGraph) {
	b.wireCallGroup(g, b.Records.FunctionCalls, model.FunctionCall, model.FunctionReturn)
	b.wireCallGroup(g, b.Records.MethodCalls, model.MethodCall, model.MethodReturn)
	b.wireCallGroup(g, b.Records.IndirectCalls, model.IndirectCall, model.IndirectReturn)
}

func (b *Builder) wireCallGroup(g *graphutil.CfgGraph, calls map[model.SignatureKey][]model.CallOccurrence, callKind, returnKind model.CfgEdgeKind) {
	for sigKey, occs := range calls {
		targets := b.resolveTargets(sigKey)
		virtual := len(targets) > 1 || b.anyExplicitlyVirtual(targets)
		for _, fnID := range targets {
			kind := callKind
			if virtual {
				kind = model.VirtualCall
			}
			for _, occ := range occs {
				payloadKind := kind
				rk := returnKind
				if virtual {
					rk = model.MethodReturn
				}
				g.AddEdge(model.CfgEdge{Src: occ.EnclosingID, Dst: fnID, Kind: payloadKind, Payload: callPayload(occ)})
				b.wireReturnsFor(g, fnID, occ, rk)
			}
		}
	}
}

func callPayload(occ model.CallOccurrence) string {
	return payloadOf(occ.CallSiteID)
}

func payloadOf(id model.NodeId) string {
	return "call" + strconv.Itoa(int(id))
}

// resolveTargets finds every function_list entry whose name matches
// sigKey.Name and, when sigKey.Class is set, whose class matches too.
// The parameter signature is not compared, so every overload of the
// name is a target. When more than one
// match exists, §4.2 step 7 / §9 treats the callee as virtual
// (over-approximation is intentional, see DESIGN.md Open Question).
func (b *Builder) resolveTargets(sigKey model.SignatureKey) []model.NodeId {
	var out []model.NodeId
	for key, id := range b.Records.FunctionList {
		if key.Name != sigKey.Name {
			continue
		}
		if sigKey.Class != "" && key.Class != sigKey.Class {
			continue
		}
		out = append(out, id)
	}
	return out
}

// anyExplicitlyVirtual implements §4.3's virtual-dispatch rule (a): a
// method is virtual if any overload is explicitly marked virtual, even
// when only a single overload was resolved (rule (b), "more than one
// class defines the method", is the len(targets) > 1 check already in
// wireCallGroup).
func (b *Builder) anyExplicitlyVirtual(targets []model.NodeId) bool {
	for _, id := range targets {
		if info, ok := b.Records.VirtualFunctions[id]; ok && info.IsVirtual {
			return true
		}
	}
	return false
}

// wireReturnsFor implements the §4.3 "Return target selection" rule:
// implicit returns and explicit void-function returns target
// next_index(call_site); a non-void explicit return (one that carries
// a value, in a function whose return_type isn't void) targets the
// call site itself, matching the original CFG_cpp.py is_void_return
// check against records["return_type"].
func (b *Builder) wireReturnsFor(g *graphutil.CfgGraph, fnID model.NodeId, occ model.CallOccurrence, returnKind model.CfgEdgeKind) {
	implicit, hasImplicit := b.Records.ImplicitReturnMap[fnID]
	voidFn := b.isVoidReturnFunction(fnID)
	for _, retID := range b.Records.ReturnStatementMap[fnID] {
		isImplicit := hasImplicit && retID == implicit
		dst := occ.EnclosingID
		if isImplicit || voidFn || !b.returnCarriesValue(retID) {
			// Implicit fall-off-end, or an explicit void-function
			// return (including a bare `return;`): target the
			// statement after the call site.
			if callSite, ok := b.byID[occ.EnclosingID]; ok {
				if nextID, ok := b.nextIndex(callSite); ok {
					dst = nextID
				}
			}
		}
		g.AddEdge(model.CfgEdge{Src: retID, Dst: dst, Kind: returnKind})
	}
}

// isVoidReturnFunction reports whether fnID's declared return_type is
// void (or absent, as for constructors/destructors, which are
// void-like for return-wiring purposes).
func (b *Builder) isVoidReturnFunction(fnID model.NodeId) bool {
	for key, id := range b.Records.FunctionList {
		if id != fnID {
			continue
		}
		ret, ok := b.Records.ReturnType[key]
		if !ok {
			return true
		}
		return strings.TrimSpace(ret) == "void"
	}
	return false
}

// returnCarriesValue reports whether the return_statement at retID has
// a value expression, i.e. isn't a bare `return;`. Synthetic implicit-
// return ids (negative, never indexed in b.byID) carry no value.
func (b *Builder) returnCarriesValue(retID model.NodeId) bool {
	n, ok := b.byID[retID]
	if !ok {
		return false
	}
	if n.Type() != "return_statement" {
		return true
	}
	return n.NamedChildCount() > 0
}
