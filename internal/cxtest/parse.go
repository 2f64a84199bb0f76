// Package cxtest provides shared test fixtures for cxflow's package
// tests: real tree-sitter parsing plus minimal fake Index/SymbolTable
// implementations, so _test.go files across the module don't each
// re-derive the same CST plumbing. It is not imported by any
// non-test code.
package cxtest

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/go-cxflow/cxflow/model"
)

// ParseC parses a C translation unit and returns its tree plus the
// source bytes the tree's spans index into.
func ParseC(source string) (*sitter.Node, []byte) {
	return parseWith(c.GetLanguage(), source)
}

// ParseCpp parses a C++ translation unit.
func ParseCpp(source string) (*sitter.Node, []byte) {
	return parseWith(cpp.GetLanguage(), source)
}

func parseWith(lang *sitter.Language, source string) (*sitter.Node, []byte) {
	src := []byte(source)
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		panic(err)
	}
	return tree.RootNode(), src
}

// FakeIndex implements model.Index over a pre-order-numbered walk of
// a CST, standing in for the external index collaborator (§1): every
// named node gets a distinct id starting at 3 (1 and 2 are reserved
// for START/EXIT).
type FakeIndex struct {
	byKey map[model.AstKey]model.NodeId
	byID  map[model.NodeId]*sitter.Node
}

// NewFakeIndex numbers every named node in root in pre-order.
func NewFakeIndex(root *sitter.Node) *FakeIndex {
	idx := &FakeIndex{byKey: make(map[model.AstKey]model.NodeId), byID: make(map[model.NodeId]*sitter.Node)}
	next := model.NodeId(3)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		key := model.KeyOf(n)
		if _, seen := idx.byKey[key]; !seen {
			idx.byKey[key] = next
			idx.byID[next] = n
			next++
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return idx
}

func (f *FakeIndex) Lookup(key model.AstKey) (model.NodeId, bool) {
	id, ok := f.byKey[key]
	return id, ok
}

// NodeFor is the reverse lookup, used by tests asserting on a
// specific node's id without re-walking the tree themselves.
func (f *FakeIndex) NodeFor(id model.NodeId) (*sitter.Node, bool) {
	n, ok := f.byID[id]
	return n, ok
}

// FakeSymbolTable is a minimal, test-populated model.SymbolTable.
type FakeSymbolTable struct {
	Scopes       map[model.NodeId]model.Scope
	DataTypes    map[model.NodeId]string
	Declarations map[model.NodeId]model.NodeId
}

// NewFakeSymbolTable returns an empty, ready-to-populate table.
func NewFakeSymbolTable() *FakeSymbolTable {
	return &FakeSymbolTable{
		Scopes:       make(map[model.NodeId]model.Scope),
		DataTypes:    make(map[model.NodeId]string),
		Declarations: make(map[model.NodeId]model.NodeId),
	}
}

func (f *FakeSymbolTable) ScopeOf(id model.NodeId) (model.Scope, bool) {
	s, ok := f.Scopes[id]
	return s, ok
}

func (f *FakeSymbolTable) DataTypeOf(id model.NodeId) (string, bool) {
	t, ok := f.DataTypes[id]
	return t, ok
}

func (f *FakeSymbolTable) DeclarationOf(useID model.NodeId) (model.NodeId, bool) {
	d, ok := f.Declarations[useID]
	return d, ok
}
