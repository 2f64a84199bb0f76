// Package cstwalk implements the tree walker & node classifier
// (component 1): pre-order CST traversal with optional pruning at
// chosen leaf types, generalized from the teacher's construct.go
// (which walks a *sitter.Node tree built from the Java grammar) to any
// tree-sitter grammar.
package cstwalk

import sitter "github.com/smacker/go-tree-sitter"

// Visitor is called once per visited node in pre-order. Returning
// false from Visitor prunes that node's subtree: Walk does not descend
// into its children.
type Visitor func(n *sitter.Node) bool

// Walk performs a pre-order traversal of root, calling visit on every
// named and unnamed descendant (root included). Pruning happens per
// the Visitor's own return value, mirroring the teacher's manual
// recursion in buildGraphFromAST rather than introducing a generic
// tree-sitter cursor API dependency.
func Walk(root *sitter.Node, visit Visitor) {
	if root == nil {
		return
	}
	if !visit(root) {
		return
	}
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		Walk(root.Child(i), visit)
	}
}

// WalkNamed is Walk restricted to named children, which is what every
// statement-set membership check in lang/c and lang/cpp actually wants
// (anonymous punctuation tokens never become CfgNodes).
func WalkNamed(root *sitter.Node, visit Visitor) {
	if root == nil {
		return
	}
	if !visit(root) {
		return
	}
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		WalkNamed(root.NamedChild(i), visit)
	}
}

// PruneAt returns a Visitor wrapping inner that stops descending once
// it reaches a node whose Type() is in leafTypes, after still invoking
// inner on that node. This is the "optional pruning at chosen leaf
// types" named in spec.md's component 1 description (e.g. not
// descending into a nested function_definition while collecting a
// statement list).
func PruneAt(leafTypes map[string]bool, inner Visitor) Visitor {
	return func(n *sitter.Node) bool {
		keepGoing := inner(n)
		if !keepGoing {
			return false
		}
		if leafTypes[n.Type()] {
			return false
		}
		return true
	}
}

// Children returns the direct named children of n as a slice, the
// shape most extractor code wants instead of index-based access.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// Text returns n's source text, or "" for a nil node or nil source.
func Text(n *sitter.Node, source []byte) string {
	if n == nil || source == nil {
		return ""
	}
	return n.Content(source)
}

// FieldOrNil is ChildByFieldName guarded against a nil n, matching the
// teacher's repeated `if n != nil` guards around tree-sitter field
// lookups in construct.go.
func FieldOrNil(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

// NextNamedSibling walks forward to the next named sibling, or nil.
func NextNamedSibling(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.NextNamedSibling()
}

// Ancestors yields n's ancestor chain starting at its immediate parent
// and ending at the root, used by the "last statement in control
// block" check (§4.2.2) and by next_index's upward walk (§4.2.1).
func Ancestors(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}
