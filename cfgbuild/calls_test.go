package cfgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
	"github.com/go-cxflow/cxflow/lang/c"
	"github.com/go-cxflow/cxflow/model"
)

func TestCallEdgesWireFunctionCallAndReturn(t *testing.T) {
	root, source := cxtest.ParseC(`
int helper() { return 1; }
int main() { int x = helper(); return x; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)

	b := NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var callSite, helperFn model.NodeId
	for _, n := range g.Nodes {
		if n.TypeTag == "declaration" {
			callSite = n.ID
		}
	}
	for key, id := range records.FunctionList {
		if key.Name == "helper" {
			helperFn = id
		}
	}
	assert.NotZero(t, callSite)
	assert.NotZero(t, helperFn)
	assert.NotEmpty(t, g.OutEdgesOfKind(callSite, model.FunctionCall))
	assert.NotEmpty(t, edgesFilter(g.InEdges(callSite)).filterReturns())
}

func TestWireReturnsForRoutesExplicitVoidReturnToNextIndex(t *testing.T) {
	root, source := cxtest.ParseC(`
void helper() { return; }
int main() { helper(); int after = 1; return 0; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)

	b := NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var callSite, afterStmt model.NodeId
	for _, n := range g.Nodes {
		if n.TypeTag == "expression_statement" {
			callSite = n.ID
		}
		if n.TypeTag == "declaration" {
			afterStmt = n.ID
		}
	}
	assert.NotZero(t, callSite)
	assert.NotZero(t, afterStmt)

	var returnEdges []model.CfgEdge
	for _, e := range g.Edges() {
		if e.Kind == model.FunctionReturn {
			returnEdges = append(returnEdges, e)
		}
	}
	assert.NotEmpty(t, returnEdges)
	for _, e := range returnEdges {
		assert.Equal(t, afterStmt, e.Dst, "an explicit bare `return;` in a void function must target next_index(call_site), not the call site itself")
	}
}

// filterReturns is a tiny test-local helper to keep the assertion above
// readable; it is not meant to be a general graphutil API.
type edgesFilter []model.CfgEdge

func (e edgesFilter) filterReturns() edgesFilter {
	var out edgesFilter
	for _, edge := range e {
		if edge.Kind == model.FunctionReturn {
			out = append(out, edge)
		}
	}
	return out
}
