package dfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/cfgbuild"
	"github.com/go-cxflow/cxflow/internal/cxtest"
	"github.com/go-cxflow/cxflow/lang/c"
	"github.com/go-cxflow/cxflow/lang/cpp"
	"github.com/go-cxflow/cxflow/model"
)

func TestInterproceduralArgumentEdgesMatchParametersPositionally(t *testing.T) {
	root, source := cxtest.ParseC(`
void add(int *a, int *b) { *a = *b; }
int main(){ add(&x, &y); return 0; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	var paramEdges []model.DfgEdge
	for _, e := range edges {
		if e.Interprocedural == model.ArgumentToParameter {
			paramEdges = append(paramEdges, e)
		}
	}
	assert.Len(t, paramEdges, 2)
	byArgIndex := map[int]string{}
	for _, e := range paramEdges {
		byArgIndex[e.ArgumentIndex] = e.UsedDef
	}
	assert.Equal(t, "a", byArgIndex[0])
	assert.Equal(t, "b", byArgIndex[1])
}

func TestInterproceduralArgumentEdgesSkipByValueParameters(t *testing.T) {
	root, source := cxtest.ParseC(`
int add(int a, int b) { return a + b; }
int main(){ int r = add(x, y); return r; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	for _, e := range edges {
		assert.NotEqual(t, model.ArgumentToParameter, e.Interprocedural, "by-value int parameters must not get an argument_to_parameter edge")
	}
}

func TestInterproceduralModificationToUseEdgeGatedByModifiesParam(t *testing.T) {
	root, source := cxtest.ParseC(`
void mutate(int *p) { *p = 1; }
int main(){ mutate(&x); return 0; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	paramMod := NewParamModifier(b.ByID(), source)
	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID(), ModifiesParam: paramMod.Modifies}
	edges := ib.Build(g)

	var found bool
	for _, e := range edges {
		if e.Interprocedural == model.ModificationToUse {
			found = true
		}
	}
	assert.True(t, found, "mutate modifying *p must produce a modification_to_use edge back to the call site")
}

func TestInterproceduralReturnEdgeWiresCalleeToCaller(t *testing.T) {
	root, source := cxtest.ParseC(`
int helper() { return v; }
int main(){ int r = helper(); return r; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := c.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(c.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	var found bool
	for _, e := range edges {
		if e.Interprocedural == model.ReturnToCaller && e.UsedDef == "v" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestInterproceduralConstructorAndDestructorChainEdges(t *testing.T) {
	root, source := cxtest.ParseCpp(`
class Base {
public:
    virtual ~Base() {}
};

class Derived : public Base {
public:
    ~Derived() {}
};

int main() {
    Base* p = new Derived();
    delete p;
    return 0;
}
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := cpp.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	var sawCtor, sawDtor, sawBaseDtor bool
	for _, e := range edges {
		switch e.DataflowType {
		case model.DfgConstructor:
			sawCtor = true
		case model.DfgDestructor:
			sawDtor = true
		case model.DfgBaseDtor:
			sawBaseDtor = true
		}
	}
	assert.True(t, sawCtor, "new Derived() must produce a constructor_call DFG edge")
	assert.True(t, sawDtor, "delete p must produce a destructor_call DFG edge")
	assert.True(t, sawBaseDtor, "the ~Derived -> ~Base chain must produce a base_destructor_call DFG edge")
}

func TestInterproceduralVirtualDispatchEdge(t *testing.T) {
	root, source := cxtest.ParseCpp(`
class Shape {
public:
    virtual void draw() {}
};

int main() {
    Shape s;
    s.draw();
    return 0;
}
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := cpp.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	var sawDispatch, sawMemberAccess bool
	for _, e := range edges {
		if e.DataflowType == model.VirtualDispatch {
			sawDispatch = true
		}
		if e.ObjectName == "s" {
			sawMemberAccess = true
		}
	}
	assert.True(t, sawDispatch, "an explicitly virtual single-override call must produce a virtual_dispatch DFG edge")
	assert.True(t, sawMemberAccess, "s.draw() must wire a method member access edge carrying the receiver object name")
}

func TestInterproceduralLambdaInvocationEdge(t *testing.T) {
	root, source := cxtest.ParseCpp(`
void call_it(Callback cb) { cb(); }
int main(){ auto f = []{ do_work(); }; call_it(f); return 0; }
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := cpp.Extract(root, idx, source, records, nil)
	b := cfgbuild.NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := cfgbuild.Build(b, root, cfgNodes)

	ib := &InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: b.ByID()}
	edges := ib.Build(g)

	var found bool
	for _, e := range edges {
		if e.DataflowType == model.DfgLambdaCall && e.UsedDef == "cb" {
			found = true
		}
	}
	assert.True(t, found, "call_it(f) invoking its parameter cb() must wire a lambda_call edge to f's lambda body")
}
