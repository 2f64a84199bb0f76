// Package c implements the C statement extractor and the C statement,
// jump and control-statement tables and label rules (§4.1); the CFG and
// DFG wiring itself lives in cfgbuild and dfg and is shared with C++,
// generalizing the teacher's Java `buildGraphFromAST` switch to the C
// tree-sitter grammar (github.com/smacker/go-tree-sitter/c).
package c

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/lang"
)

// statementTypes is the C statement set from §4.1: declarations,
// expression statements, if/while/for/do/switch/case, labeled/goto,
// break/continue/return, compound statement, preprocessor directives.
var statementTypes = map[string]bool{
	"declaration":            true,
	"expression_statement":   true,
	"if_statement":           true,
	"while_statement":        true,
	"for_statement":          true,
	"do_statement":           true,
	"switch_statement":       true,
	"case_statement":         true,
	"labeled_statement":      true,
	"goto_statement":         true,
	"break_statement":        true,
	"continue_statement":     true,
	"return_statement":       true,
	"compound_statement":     true,
	"preproc_include":        true,
	"preproc_def":            true,
	"preproc_function_def":   true,
	"preproc_ifdef":          true,
	"preproc_if":             true,
	"preproc_call":           true,
	"function_definition":    true,
}

var jumpTypes = map[string]bool{
	"break_statement":    true,
	"continue_statement": true,
	"return_statement":   true,
	"goto_statement":     true,
}

var controlTypes = map[string]bool{
	"if_statement":     true,
	"while_statement":  true,
	"for_statement":    true,
	"do_statement":     true,
	"switch_statement": true,
}

// Lang is the lang.Spec implementation for C.
type Lang struct{}

func (Lang) Name() string { return "c" }

func (Lang) IsStatement(nodeType string) bool { return statementTypes[nodeType] }

func (Lang) IsJumpStatement(nodeType string) bool { return jumpTypes[nodeType] }

func (Lang) IsControlStatement(nodeType string) bool { return controlTypes[nodeType] }

func (Lang) Labels() lang.LabelRules { return labelRules }

var labelRules = lang.LabelRules{
	"if_statement":     labelHeaderOnly("condition"),
	"while_statement":  labelHeaderOnly("condition"),
	"switch_statement":  labelHeaderOnly("condition"),
	"for_statement":    labelFor,
	"do_statement":     func(n *sitter.Node, source []byte) string { return "do" },
	"compound_statement": func(n *sitter.Node, source []byte) string { return "{...}" },
	"case_statement":   labelCase,
}

// labelHeaderOnly renders `type(condition)` and strips the body,
// matching c_nodes.py's per-type label builders (SPEC_FULL.md §5). The
// grammar's condition field is itself a parenthesized_expression, so the
// enclosing parens are unwrapped first to avoid doubling them up.
func labelHeaderOnly(field string) lang.LabelFunc {
	return func(n *sitter.Node, source []byte) string {
		cond := n.ChildByFieldName(field)
		keyword := strings.SplitN(n.Type(), "_", 2)[0]
		if cond == nil {
			return keyword
		}
		return keyword + "(" + unwrapParenthesized(cond, source) + ")"
	}
}

// unwrapParenthesized returns a node's source text with one layer of
// enclosing parentheses removed when the node is a parenthesized_expression.
func unwrapParenthesized(n *sitter.Node, source []byte) string {
	if n.Type() == "parenthesized_expression" {
		if inner := n.NamedChild(0); inner != nil {
			return inner.Content(source)
		}
	}
	return n.Content(source)
}

func labelFor(n *sitter.Node, source []byte) string {
	init := n.ChildByFieldName("initializer")
	cond := n.ChildByFieldName("condition")
	update := n.ChildByFieldName("update")
	var b strings.Builder
	b.WriteString("for(")
	if init != nil {
		b.WriteString(init.Content(source))
	}
	b.WriteString("; ")
	if cond != nil {
		b.WriteString(cond.Content(source))
	}
	b.WriteString("; ")
	if update != nil {
		b.WriteString(update.Content(source))
	}
	b.WriteString(")")
	return b.String()
}

func labelCase(n *sitter.Node, source []byte) string {
	val := n.ChildByFieldName("value")
	if val == nil {
		return "default:"
	}
	return "case " + val.Content(source) + ":"
}
