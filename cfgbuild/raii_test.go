package cfgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
	"github.com/go-cxflow/cxflow/lang/cpp"
	"github.com/go-cxflow/cxflow/model"
)

func TestRaiiDestructorsWiredOnScopeExit(t *testing.T) {
	root, source := cxtest.ParseCpp(`
class Foo {
public:
    Foo() {}
    ~Foo() {}
};

int main() {
    Foo f;
    int x = 1;
}
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := cpp.Extract(root, idx, source, records, nil)

	b := NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var dtorID model.NodeId
	for key, id := range records.FunctionList {
		if key.Class == "Foo" && key.Name == "~Foo" {
			dtorID = id
		}
	}
	assert.NotZero(t, dtorID, "destructor must be recorded in function_list")

	var scopeExit []model.CfgEdge
	for _, e := range g.Edges() {
		if e.Kind == model.ScopeExitDestructor && e.Dst == dtorID {
			scopeExit = append(scopeExit, e)
		}
	}
	assert.NotEmpty(t, scopeExit, "a scope_exit_destructor edge must target the local object's destructor")
}
