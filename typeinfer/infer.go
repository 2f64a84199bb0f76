// Package typeinfer implements the bottom-up, best-effort, string-typed
// argument type inference of §4.4, used to disambiguate overloads when
// classifying call sites and matching constructor calls.
package typeinfer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// IdentifierResolver resolves an identifier-expression node to its
// symbol-table type string, or "unknown" if it cannot be resolved.
// The caller supplies this (cfgbuild holds the model.Index, model.
// SymbolTable, and declaration_map lookups typeinfer itself has no
// access to) rather than typeinfer depending on model.Index directly.
type IdentifierResolver func(n *sitter.Node) string

// Signature stringifies the type of each expression inside an
// argument_list (or parameter list used as a stand-in during
// constructor-call classification) into a comma-joined overload key.
func Signature(args *sitter.Node, source []byte, resolve IdentifierResolver) string {
	if args == nil {
		return ""
	}
	var parts []string
	count := int(args.NamedChildCount())
	for i := 0; i < count; i++ {
		parts = append(parts, TypeOf(args.NamedChild(i), source, resolve))
	}
	return strings.Join(parts, ",")
}

// TypeOf implements the §4.4 rule table for a single expression node.
func TypeOf(n *sitter.Node, source []byte, resolve IdentifierResolver) string {
	if n == nil {
		return "unknown"
	}
	switch n.Type() {
	case "identifier":
		if resolve == nil {
			return "unknown"
		}
		return resolve(n)
	case "number_literal":
		return numericLiteralType(n.Content(source))
	case "string_literal", "raw_string_literal":
		return "char*"
	case "char_literal":
		return "char"
	case "true", "false":
		return "bool"
	case "null", "nullptr":
		return "nullptr_t"
	case "cast_expression":
		if t := n.ChildByFieldName("type"); t != nil {
			return t.Content(source)
		}
		return "unknown"
	case "parenthesized_expression":
		return TypeOf(firstNamedChild(n), source, resolve)
	case "conditional_expression":
		return TypeOf(n.ChildByFieldName("consequence"), source, resolve)
	case "comma_expression":
		return TypeOf(lastNamedChild(n), source, resolve)
	case "sizeof_expression":
		return "size_t"
	case "update_expression":
		return TypeOf(n.ChildByFieldName("argument"), source, resolve)
	case "binary_expression":
		left := TypeOf(n.ChildByFieldName("left"), source, resolve)
		right := TypeOf(n.ChildByFieldName("right"), source, resolve)
		return promote(left, right)
	case "pointer_expression":
		return pointerExpressionType(n, source, resolve)
	case "subscript_expression":
		base := TypeOf(n.ChildByFieldName("argument"), source, resolve)
		return stripOne(base, "*")
	default:
		return "unknown"
	}
}

// CompatibleForConstructor implements the §4.3 constructor overload
// matching fallback: element-wise match stripping const/&/*, treating
// char* as compatible with any string-bearing type.
func CompatibleForConstructor(paramType, argType string) bool {
	p := normalizeType(paramType)
	a := normalizeType(argType)
	if p == a {
		return true
	}
	if p == "char" && strings.Contains(paramType, "*") && strings.Contains(strings.ToLower(a), "string") {
		return true
	}
	if a == "char" && strings.Contains(argType, "*") && strings.Contains(strings.ToLower(p), "string") {
		return true
	}
	return false
}

func normalizeType(t string) string {
	t = strings.ReplaceAll(t, "const", "")
	t = strings.ReplaceAll(t, "&", "")
	t = strings.ReplaceAll(t, "*", "")
	return strings.TrimSpace(t)
}

func numericLiteralType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "."):
		if strings.HasSuffix(lower, "f") {
			return "float"
		}
		return "double"
	case strings.HasSuffix(lower, "ull") || strings.HasSuffix(lower, "llu"):
		return "unsigned long long"
	case strings.HasSuffix(lower, "ll"):
		return "long long"
	case strings.HasSuffix(lower, "u"):
		return "unsigned int"
	case strings.HasSuffix(lower, "l"):
		return "long"
	default:
		return "int"
	}
}

// promote implements the usual-promotion subset named in §4.4: double
// beats float beats long beats whichever side is non-unknown, default
// int.
func promote(left, right string) string {
	if left == "double" || right == "double" {
		return "double"
	}
	if left == "float" || right == "float" {
		return "float"
	}
	if left == "long" || right == "long" {
		return "long"
	}
	if left != "unknown" {
		return left
	}
	if right != "unknown" {
		return right
	}
	return "int"
}

func pointerExpressionType(n *sitter.Node, source []byte, resolve IdentifierResolver) string {
	op := firstChildText(n, source)
	operand := TypeOf(n.ChildByFieldName("argument"), source, resolve)
	if op == "&" {
		return operand + "*"
	}
	return stripOne(operand, "*")
}

func stripOne(t string, suffix string) string {
	if strings.HasSuffix(t, suffix) {
		return strings.TrimSuffix(t, suffix)
	}
	return t
}

func firstChildText(n *sitter.Node, source []byte) string {
	if n.ChildCount() == 0 {
		return ""
	}
	return n.Child(0).Content(source)
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	c := int(n.NamedChildCount())
	if c == 0 {
		return nil
	}
	return n.NamedChild(c - 1)
}
