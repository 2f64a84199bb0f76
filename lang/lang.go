// Package lang defines the shared contract that lang/c and lang/cpp
// implement: the statement-set membership, jump-statement set, and
// per-node-type label rendering table the CFG/DFG builders dispatch
// through, generalizing the teacher's big `switch node.Type()` in
// construct.go's buildGraphFromAST into the table-driven shape spec.md
// §9 recommends over nested conditionals.
package lang

import sitter "github.com/smacker/go-tree-sitter"

// LabelFunc renders a CfgNode's label from its CST node and the
// original source bytes (§4.1 "every node gets a human-readable
// label"). This is the Go analogue of the original's c_nodes.py /
// cpp_nodes.py per-type label-builder dict (see SPEC_FULL.md §5).
type LabelFunc func(n *sitter.Node, source []byte) string

// LabelRules is a node-type -> LabelFunc table. A type with no entry
// falls back to DefaultLabel.
type LabelRules map[string]LabelFunc

// Spec is the per-language contract the statement extractor, CFG
// builder, and DFG builder are generalized over.
type Spec interface {
	// Name identifies the language ("c" or "cpp") for diagnostics.
	Name() string

	// IsStatement reports whether a CST node type belongs to this
	// language's statement set (§4.1, Glossary "statement set").
	IsStatement(nodeType string) bool

	// IsJumpStatement reports whether a CST node type is break,
	// continue, return, goto, or (C++ only) throw (§4.2.3, Glossary).
	IsJumpStatement(nodeType string) bool

	// IsControlStatement reports whether a node type is one whose body
	// statements should not receive ordinary sequential edges because
	// §4.2 step 6 handles them explicitly (if/while/for/for_range/do/
	// switch/try/catch).
	IsControlStatement(nodeType string) bool

	// Labels is this language's node-type -> LabelFunc table.
	Labels() LabelRules
}

// DefaultLabel trims a node's source text to a single line, the
// fallback used for any statement type without a dedicated entry in
// Labels().
func DefaultLabel(n *sitter.Node, source []byte) string {
	text := n.Content(source)
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}

// Render looks up n's label rule in rules, falling back to
// DefaultLabel when none is registered.
func Render(rules LabelRules, n *sitter.Node, source []byte) string {
	if f, ok := rules[n.Type()]; ok {
		return f(n, source)
	}
	return DefaultLabel(n, source)
}
