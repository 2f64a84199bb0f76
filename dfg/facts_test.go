package dfg

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
	"github.com/go-cxflow/cxflow/lang/c"
	"github.com/go-cxflow/cxflow/model"
)

// buildByID walks root and collects every indexed node into a reverse
// NodeId -> *sitter.Node map, the same shape cfgbuild.Builder.ByID()
// exposes to the interprocedural layer.
func buildByID(root *sitter.Node, idx model.Index) map[model.NodeId]*sitter.Node {
	out := make(map[model.NodeId]*sitter.Node)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if id, ok := model.IndexNode(idx, n); ok {
			out[id] = n
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

func TestBuildDeclarationWithInitializerProducesDefAndUse(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ int x = y + 1; return 0; }`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, _ := c.Extract(root, idx, source, records, nil)

	b := &Builder{Index: idx, Source: source, Nodes: nodes, Records: records}
	table := b.Build()

	var declFacts *StatementFacts
	for id, facts := range table {
		if _, ok := facts.Defs["x"]; ok {
			f := facts
			declFacts = &f
			_ = id
		}
	}
	assert.NotNil(t, declFacts)
	assert.True(t, declFacts.Defs["x"].Declaration)
	assert.True(t, declFacts.Defs["x"].HasInitializer)
	assert.Contains(t, declFacts.Uses, "y")
}

func TestBuildAssignmentCompoundOperatorIsAlsoUse(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ x += 1; return 0; }`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, _ := c.Extract(root, idx, source, records, nil)

	b := &Builder{Index: idx, Source: source, Nodes: nodes, Records: records}
	table := b.Build()

	var found bool
	for _, facts := range table {
		if _, ok := facts.Defs["x"]; ok {
			found = true
			assert.Contains(t, facts.Uses, "x", "compound assignment target must also be a use")
		}
	}
	assert.True(t, found)
}

func TestBuildScanfArgumentIsDefNotUse(t *testing.T) {
	root, source := cxtest.ParseC(`int main(){ scanf("%d", &x); return 0; }`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, _ := c.Extract(root, idx, source, records, nil)

	b := &Builder{Index: idx, Source: source, Nodes: nodes, Records: records}
	table := b.Build()

	var found bool
	for _, facts := range table {
		if _, ok := facts.Defs["x"]; ok {
			found = true
		}
	}
	assert.True(t, found, "scanf's pointer argument must be recorded as a def")
}

func TestBuildVaArgIsBothDefAndUseOfList(t *testing.T) {
	root, source := cxtest.ParseC(`
void f(int n, ...) { va_list args; va_start(args, n); int v = va_arg(args, int); }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, _ := c.Extract(root, idx, source, records, nil)

	b := &Builder{Index: idx, Source: source, Nodes: nodes, Records: records}
	table := b.Build()

	var sawStartDef, sawArgUse bool
	for _, facts := range table {
		if _, ok := facts.Defs["args"]; ok {
			sawStartDef = true
		}
		if _, ok := facts.Uses["args"]; ok {
			sawArgUse = true
		}
	}
	assert.True(t, sawStartDef, "va_start must define its va_list argument")
	assert.True(t, sawArgUse, "va_arg must also use its va_list argument")
}

func TestBuildCallArgumentModifiedByCalleeIsDef(t *testing.T) {
	root, source := cxtest.ParseC(`
void mutate(int *p) { *p = 1; }
int main(){ mutate(&x); return 0; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, _ := c.Extract(root, idx, source, records, nil)
	byID := buildByID(root, idx)
	paramMod := NewParamModifier(byID, source)

	b := &Builder{Index: idx, Source: source, Nodes: nodes, Records: records, ModifiesParam: paramMod.Modifies}
	table := b.Build()

	var found bool
	for _, facts := range table {
		if f, ok := facts.Defs["x"]; ok && f.IsPointerModificationAtCallSite {
			found = true
		}
	}
	assert.True(t, found, "a call argument modified inside the callee must be tagged as a pointer-modification def")
}
