package cstwalk

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
)

func TestWalkVisitsFunctionDefinition(t *testing.T) {
	root, _ := cxtest.ParseC(`int main(){ int x = 1; return x; }`)
	var types []string
	Walk(root, func(n *sitter.Node) bool {
		types = append(types, n.Type())
		return true
	})
	assert.Contains(t, types, "function_definition")
	assert.Contains(t, types, "return_statement")
}

func TestPruneAtStopsDescent(t *testing.T) {
	root, _ := cxtest.ParseC(`int main(){ int x = 1; return x; }`)
	var visited []string
	visit := PruneAt(map[string]bool{"compound_statement": true}, func(n *sitter.Node) bool {
		visited = append(visited, n.Type())
		return true
	})
	Walk(root, visit)
	assert.Contains(t, visited, "compound_statement")
	assert.NotContains(t, visited, "return_statement", "PruneAt must not descend past a compound_statement")
}

func TestWalkNamedSkipsAnonymousTokens(t *testing.T) {
	root, _ := cxtest.ParseC(`int main(){ return 1; }`)
	var types []string
	WalkNamed(root, func(n *sitter.Node) bool {
		types = append(types, n.Type())
		return true
	})
	for _, ty := range types {
		assert.NotEqual(t, "return", ty, "WalkNamed should not surface the bare `return` keyword token")
	}
}

func TestTextReturnsSourceSlice(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ return 1; }`)
	var fn *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if n.Type() == "function_definition" {
			fn = n
		}
		return true
	})
	assert.NotNil(t, fn)
	assert.Contains(t, Text(fn, source), "return 1")
}

func TestFieldOrNilGuardsNil(t *testing.T) {
	assert.Nil(t, FieldOrNil(nil, "body"))
}

func TestAncestorsEndsAtRoot(t *testing.T) {
	root, _ := cxtest.ParseC(`int main(){ return 1; }`)
	var ret *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if n.Type() == "return_statement" {
			ret = n
		}
		return true
	})
	assert.NotNil(t, ret)
	ancestors := Ancestors(ret)
	assert.NotEmpty(t, ancestors)
	assert.Equal(t, root, ancestors[len(ancestors)-1])
}
