package typeinfer

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
)

func TestTypeOfLiterals(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(1, 1.5, "s", 'c', true, nullptr); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	assert.Equal(t, "int", TypeOf(args.NamedChild(0), source, nil))
	assert.Equal(t, "double", TypeOf(args.NamedChild(1), source, nil))
	assert.Equal(t, "char*", TypeOf(args.NamedChild(2), source, nil))
	assert.Equal(t, "char", TypeOf(args.NamedChild(3), source, nil))
	assert.Equal(t, "bool", TypeOf(args.NamedChild(4), source, nil))
}

func TestTypeOfIdentifierUsesResolver(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(x); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	resolve := func(n *sitter.Node) string { return "int" }
	assert.Equal(t, "int", TypeOf(args.NamedChild(0), source, resolve))
}

func TestTypeOfIdentifierWithoutResolverIsUnknown(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(x); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	assert.Equal(t, "unknown", TypeOf(args.NamedChild(0), source, nil))
}

func TestTypeOfBinaryExpressionPromotesDouble(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(1 + 1.5); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	assert.Equal(t, "double", TypeOf(args.NamedChild(0), source, nil))
}

func TestTypeOfPointerExpressionAppendsStar(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(&x); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	resolve := func(n *sitter.Node) string { return "int" }
	assert.Equal(t, "int*", TypeOf(args.NamedChild(0), source, resolve))
}

func TestSignatureJoinsCommaSeparated(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ f(1, 1.5); }`)
	call := findType(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	assert.Equal(t, "int,double", Signature(args, source, nil))
}

func TestCompatibleForConstructorStripsQualifiers(t *testing.T) {
	assert.True(t, CompatibleForConstructor("const int&", "int"))
	assert.True(t, CompatibleForConstructor("char*", "std::string"))
	assert.False(t, CompatibleForConstructor("int", "double"))
}

func findType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == typ {
		return n
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if found := findType(n.NamedChild(i), typ); found != nil {
			return found
		}
	}
	return nil
}
