package c

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/cstwalk"
	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/model"
)

// Extract implements the statement extractor contract of §4.1 for C:
// given the CST root, the external index, and the source bytes, it
// produces node_list, the pre-block CfgNode list, and populates the
// function/label/switch-child/function-pointer maps on records.
func Extract(root *sitter.Node, idx model.Index, source []byte, records *model.Records, sink diagnostic.Sink) (model.NodeList, []model.CfgNode) {
	if sink == nil {
		sink = diagnostic.NopSink{}
	}
	nodes := model.NodeList{}
	var cfgNodes []model.CfgNode
	lg := Lang{}

	cstwalk.WalkNamed(root, func(n *sitter.Node) bool {
		t := n.Type()

		// An embedded switch inside a larger statement is recorded but
		// not itself emitted (§4.1 "switch_child_map").
		if t == "switch_statement" {
			if outer := enclosingNonSwitchStatement(n, lg); outer != nil && outer != n {
				if outerID, ok := model.IndexNode(idx, outer); ok {
					if innerID, ok2 := model.IndexNode(idx, n); ok2 {
						records.SwitchChildMap[outerID] = innerID
					}
				}
			}
		}

		if !lg.IsStatement(t) {
			return true
		}

		id, ok := model.IndexNode(idx, n)
		if !ok {
			sink.Skip(diagnostic.MissingIndex, "extract: %s has no index entry", t)
			return true
		}
		nodes[model.KeyOf(n)] = n

		node := model.CfgNode{
			ID:      id,
			Line:    int(n.StartPoint().Row) + 1,
			Label:   lang.Render(lg.Labels(), n, source),
			TypeTag: typeTag(t),
		}
		cfgNodes = append(cfgNodes, node)

		switch t {
		case "labeled_statement":
			labelNode := n.ChildByFieldName("label")
			if labelNode != nil {
				records.LabelStatementMap[labelNode.Content(source)] = model.KeyOf(n)
			}
		case "function_definition":
			recordFunction(n, idx, source, records, sink)
		}
		return true
	})

	functionPointerAssignments(root, source, records)
	return nodes, cfgNodes
}

// functionPointerAssignments seeds records.FunctionPointerAssignments
// from both assignment expressions (`fp = handler;`) and declarator
// initializers (`int (*fp)(int) = handler;`), per SPEC_FULL.md §5's
// supplemented seeding sites.
func functionPointerAssignments(root *sitter.Node, source []byte, records *model.Records) {
	cstwalk.WalkNamed(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "assignment_expression":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && right.Type() == "identifier" {
				name := left.Content(source)
				target := right.Content(source)
				records.FunctionPointerAssignments[name] = append(records.FunctionPointerAssignments[name], target)
			}
		case "init_declarator":
			declarator := n.ChildByFieldName("declarator")
			value := n.ChildByFieldName("value")
			if declarator != nil && value != nil && declarator.Type() == "function_declarator" && value.Type() == "identifier" {
				if inner := declarator.ChildByFieldName("declarator"); inner != nil {
					name := strings.Trim(inner.Content(source), "(*) ")
					target := value.Content(source)
					records.FunctionPointerAssignments[name] = append(records.FunctionPointerAssignments[name], target)
				}
			}
		}
		return true
	})
}

func typeTag(nodeType string) string {
	return nodeType
}

// enclosingNonSwitchStatement finds the nearest statement-set ancestor
// of a nested switch that is not itself a switch_statement, per §4.1
// "If a statement subtree contains an embedded switch expression".
func enclosingNonSwitchStatement(n *sitter.Node, lg Lang) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "switch_statement" && lg.IsStatement(p.Type()) {
			return p
		}
	}
	return nil
}

// recordFunction populates function_list/return_type/main_function and
// (for C, always non-virtual) leaves virtual_functions untouched.
func recordFunction(n *sitter.Node, idx model.Index, source []byte, records *model.Records, sink diagnostic.Sink) {
	declarator := n.ChildByFieldName("declarator")
	name, params := functionNameAndParams(declarator, source)
	if name == "" {
		return
	}
	id, ok := model.IndexNode(idx, n)
	if !ok {
		sink.Skip(diagnostic.MissingIndex, "extract: function_definition %s has no index entry", name)
		return
	}
	sig := model.SignatureKey{FunctionKey: model.FunctionKey{Name: name}, Signature: params}
	records.FunctionList[sig] = id

	retType := n.ChildByFieldName("type")
	if retType != nil {
		records.ReturnType[sig] = retType.Content(source)
	}
	if name == "main" {
		records.MainFunction = id
	}
	if retType == nil || retType.Content(source) == "void" {
		records.ImplicitReturnFor(id)
	}
}

// functionNameAndParams descends through pointer_declarator wrappers
// to the function_declarator, returning the identifier text and a
// stringified parameter-type signature (§4.1 "Function signatures").
func functionNameAndParams(declarator *sitter.Node, source []byte) (string, string) {
	d := declarator
	for d != nil && d.Type() != "function_declarator" {
		inner := d.ChildByFieldName("declarator")
		if inner == nil {
			return "", ""
		}
		d = inner
	}
	if d == nil {
		return "", ""
	}
	nameNode := d.ChildByFieldName("declarator")
	params := d.ChildByFieldName("parameters")
	var sig string
	if params != nil {
		sig = paramTypes(params, source)
	}
	if nameNode == nil {
		return "", sig
	}
	return nameNode.Content(source), sig
}

// paramTypes collects parameter types in declaration order (§4.1).
func paramTypes(params *sitter.Node, source []byte) string {
	var out string
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		typeNode := p.ChildByFieldName("type")
		if typeNode != nil {
			if out != "" {
				out += ","
			}
			out += typeNode.Content(source)
		}
	}
	return out
}
