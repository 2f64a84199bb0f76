// Package cpp implements the C++ statement extractor and the C++
// statement, jump and control-statement tables and label rules (§4.1;
// the CFG/DFG wiring lives in cfgbuild and dfg), extending lang/c's
// C rule tables
// with for-range, try/throw, class/namespace constructs, lambdas, and
// constructor/destructor definitions.
package cpp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/lang/c"
)

var statementTypes = map[string]bool{
	"declaration":               true,
	"expression_statement":      true,
	"if_statement":              true,
	"while_statement":           true,
	"for_statement":             true,
	"for_range_loop":            true,
	"do_statement":              true,
	"switch_statement":          true,
	"case_statement":            true,
	"labeled_statement":         true,
	"goto_statement":            true,
	"break_statement":           true,
	"continue_statement":        true,
	"return_statement":          true,
	"compound_statement":        true,
	"preproc_include":           true,
	"preproc_def":               true,
	"preproc_function_def":      true,
	"preproc_ifdef":             true,
	"preproc_if":                true,
	"preproc_call":              true,
	"function_definition":       true,
	"try_statement":             true,
	"catch_clause":              true,
	"throw_statement":           true,
	"class_specifier":           true,
	"struct_specifier":          true,
	"namespace_definition":      true,
	"using_declaration":         true,
	"alias_declaration":         true,
	"template_declaration":      true,
	"field_declaration":         true,
	"access_specifier":          true,
	"lambda_expression":         true,
	"delete_expression":         true,
}

var jumpTypes = map[string]bool{
	"break_statement":    true,
	"continue_statement": true,
	"return_statement":   true,
	"goto_statement":     true,
	"throw_statement":    true,
}

var controlTypes = map[string]bool{
	"if_statement":     true,
	"while_statement":  true,
	"for_statement":    true,
	"for_range_loop":   true,
	"do_statement":     true,
	"switch_statement": true,
	"try_statement":    true,
	"catch_clause":     true,
}

// Lang is the lang.Spec implementation for C++.
type Lang struct{}

func (Lang) Name() string { return "cpp" }

func (Lang) IsStatement(nodeType string) bool { return statementTypes[nodeType] }

func (Lang) IsJumpStatement(nodeType string) bool { return jumpTypes[nodeType] }

func (Lang) IsControlStatement(nodeType string) bool { return controlTypes[nodeType] }

func (Lang) Labels() lang.LabelRules { return labelRules }

// labelRules starts from lang/c's table (if/while/switch/for/do/case
// labels are identical in C++) and adds the C++-only node types.
var labelRules = func() lang.LabelRules {
	out := lang.LabelRules{}
	for k, v := range (c.Lang{}).Labels() {
		out[k] = v
	}
	out["for_range_loop"] = labelForRange
	out["try_statement"] = func(n *sitter.Node, source []byte) string { return "try" }
	out["catch_clause"] = labelCatch
	out["throw_statement"] = labelThrow
	out["namespace_definition"] = labelNamespace
	out["class_specifier"] = labelClassLike("class")
	out["struct_specifier"] = labelClassLike("struct")
	out["lambda_expression"] = labelLambda
	out["delete_expression"] = func(n *sitter.Node, source []byte) string { return n.Content(source) }
	return out
}()

func labelForRange(n *sitter.Node, source []byte) string {
	decl := n.ChildByFieldName("declarator")
	rng := n.ChildByFieldName("right")
	if decl == nil || rng == nil {
		return "for(:)"
	}
	return "for(" + decl.Content(source) + " : " + rng.Content(source) + ")"
}

func labelCatch(n *sitter.Node, source []byte) string {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return "catch(...)"
	}
	text := params.Content(source)
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		// parameter_list's own span already includes the parens.
		return "catch" + text
	}
	return "catch(" + text + ")"
}

func labelThrow(n *sitter.Node, source []byte) string {
	return strings.TrimSpace(n.Content(source))
}

func labelNamespace(n *sitter.Node, source []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return "namespace"
	}
	return "namespace " + name.Content(source)
}

func labelClassLike(keyword string) lang.LabelFunc {
	return func(n *sitter.Node, source []byte) string {
		name := n.ChildByFieldName("name")
		if name == nil {
			return keyword
		}
		return keyword + " " + name.Content(source)
	}
}

func labelLambda(n *sitter.Node, source []byte) string {
	captures := n.ChildByFieldName("captures")
	if captures == nil {
		return "[]"
	}
	return "[" + strings.TrimSpace(captures.Content(source)) + "]"
}
