package cpp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/cstwalk"
	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/model"
)

// Extract is the C++ statement extractor (§4.1): the C rule set plus
// for-range/try/throw/class/namespace/lambda/constructor/destructor
// handling, virtual-specifier parsing, and `extends` population.
func Extract(root *sitter.Node, idx model.Index, source []byte, records *model.Records, sink diagnostic.Sink) (model.NodeList, []model.CfgNode) {
	if sink == nil {
		sink = diagnostic.NopSink{}
	}
	e := &extractor{
		idx:     idx,
		source:  source,
		records: records,
		sink:    sink,
		lg:      Lang{},
		nodes:   model.NodeList{},
	}
	e.walk(root, "")
	FunctionPointerAssignments(root, source, records)
	recordLambdaVariables(root, source, records)
	return e.nodes, e.cfgNodes
}

// recordLambdaVariables seeds records.LambdaVariables for every
// `auto f = [...]{...}` declaration, so a later call through `f` can
// be recognized as a lambda invocation (§4.8).
func recordLambdaVariables(root *sitter.Node, source []byte, records *model.Records) {
	cstwalk.WalkNamed(root, func(n *sitter.Node) bool {
		if n.Type() != "init_declarator" {
			return true
		}
		declarator := n.ChildByFieldName("declarator")
		value := n.ChildByFieldName("value")
		if declarator == nil || value == nil || value.Type() != "lambda_expression" {
			return true
		}
		name := declarator.Content(source)
		records.LambdaVariables[name] = model.KeyOf(value)
		return true
	})
}

// extractor carries the recursive-descent state §4.1 needs: unlike a
// flat cstwalk.WalkNamed pass, method/constructor qualification must
// see the *currently enclosing* class name, which only a true
// recursive walk (class context threaded as a parameter, popped
// automatically on return) gets right.
type extractor struct {
	idx      model.Index
	source   []byte
	records  *model.Records
	sink     diagnostic.Sink
	lg       Lang
	nodes    model.NodeList
	cfgNodes []model.CfgNode
}

func (e *extractor) walk(n *sitter.Node, class string) {
	if n == nil {
		return
	}
	t := n.Type()

	switch t {
	case "class_specifier", "struct_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			class = name.Content(e.source)
			recordBaseClasses(n, e.source, e.records)
		}
	}

	if t == "switch_statement" {
		if outer := enclosingNonSwitchStatement(n, e.lg); outer != nil && outer != n {
			if outerID, ok := model.IndexNode(e.idx, outer); ok {
				if innerID, ok2 := model.IndexNode(e.idx, n); ok2 {
					e.records.SwitchChildMap[outerID] = innerID
				}
			}
		}
	}

	if t == "lambda_expression" {
		if enclosing := enclosingNonSwitchStatement(n, e.lg); enclosing != nil {
			if enclosingID, ok := model.IndexNode(e.idx, enclosing); ok {
				e.records.LambdaMap[model.KeyOf(n)] = enclosingID
			}
		}
	}

	if e.lg.IsStatement(t) {
		id, ok := model.IndexNode(e.idx, n)
		if !ok {
			e.sink.Skip(diagnostic.MissingIndex, "extract: %s has no index entry", t)
		} else {
			e.nodes[model.KeyOf(n)] = n
			e.cfgNodes = append(e.cfgNodes, model.CfgNode{
				ID:      id,
				Line:    int(n.StartPoint().Row) + 1,
				Label:   lang.Render(e.lg.Labels(), n, e.source),
				TypeTag: t,
			})

			switch t {
			case "labeled_statement":
				if labelNode := n.ChildByFieldName("label"); labelNode != nil {
					e.records.LabelStatementMap[labelNode.Content(e.source)] = model.KeyOf(n)
				}
			case "function_definition":
				recordFunctionOrMethod(n, e.idx, e.source, e.records, class, e.sink)
			}
		}
	}

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		e.walk(n.NamedChild(i), class)
	}
}

func enclosingNonSwitchStatement(n *sitter.Node, lg Lang) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "switch_statement" && lg.IsStatement(p.Type()) {
			return p
		}
	}
	return nil
}

func recordBaseClasses(n *sitter.Node, source []byte, records *model.Records) {
	name := n.ChildByFieldName("name")
	baseClause := n.ChildByFieldName("base_class_clause")
	if name == nil || baseClause == nil {
		return
	}
	var bases []string
	count := int(baseClause.NamedChildCount())
	for i := 0; i < count; i++ {
		b := baseClause.NamedChild(i)
		bases = append(bases, strings.TrimSpace(b.Content(source)))
	}
	if len(bases) > 0 {
		records.Extends[name.Content(source)] = bases
	}
}

// recordFunctionOrMethod populates function_list/return_type/
// virtual_functions/main_function for a method or free function, and
// registers the synthetic implicit return for void functions,
// constructors, and destructors (§4.2 step 4).
func recordFunctionOrMethod(n *sitter.Node, idx model.Index, source []byte, records *model.Records, class string, sink diagnostic.Sink) {
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
	sig := model.SignatureKey{FunctionKey: model.FunctionKey{Class: class, Name: name}, Signature: params}
	records.FunctionList[sig] = id

	retType := n.ChildByFieldName("type")
	isVoid := retType == nil || retType.Content(source) == "void"
	isCtor := class != "" && name == class
	isDtor := strings.HasPrefix(name, "~")
	if retType != nil {
		records.ReturnType[sig] = retType.Content(source)
	}
	if name == "main" && class == "" {
		records.MainFunction = id
	}

	if isVoid || isCtor || isDtor {
		records.ImplicitReturnFor(id)
	}

	virtSpec := findVirtSpecifier(n, source)
	if virtSpec.isVirtual {
		records.VirtualFunctions[id] = model.VirtualInfo{IsVirtual: true, IsPureVirtual: virtSpec.isPure}
	} else if existing, exists := records.VirtualFunctions[id]; exists {
		records.VirtualFunctions[id] = existing
	}
}

type virtualSpec struct {
	isVirtual bool
	isPure    bool
}

// findVirtSpecifier looks for a `virtual` storage-class specifier
// sibling and a trailing `= 0` pure-virtual marker (§4.1 "For C++
// virtual functions, parse virt-specifiers/pure-virtual markers").
func findVirtSpecifier(n *sitter.Node, source []byte) virtualSpec {
	var spec virtualSpec
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		switch child.Type() {
		case "virtual":
			spec.isVirtual = true
		case "number_literal":
			if child.Content(source) == "0" {
				spec.isPure = true
				spec.isVirtual = true
			}
		}
	}
	return spec
}

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

// FunctionPointerAssignments seeds records.FunctionPointerAssignments
// from both assignment expressions (`fp = handler;`) and declarator
// initializers (`int (*fp)(int) = handler;`), per SPEC_FULL.md §5's
// supplemented seeding sites.
func FunctionPointerAssignments(root *sitter.Node, source []byte, records *model.Records) {
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
