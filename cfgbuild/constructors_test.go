package cfgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-cxflow/cxflow/internal/cxtest"
	"github.com/go-cxflow/cxflow/lang/cpp"
	"github.com/go-cxflow/cxflow/model"
)

func TestConstructorCallWiresDefaultConstruction(t *testing.T) {
	root, source := cxtest.ParseCpp(`
class Widget {
public:
    Widget() {}
};

int main() {
    Widget w;
    return 0;
}
`)
	idx := cxtest.NewFakeIndex(root)
	records := model.NewRecords()
	nodes, cfgNodes := cpp.Extract(root, idx, source, records, nil)

	b := NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var ctorID model.NodeId
	for key, id := range records.FunctionList {
		if key.Class == "Widget" && key.Name == "Widget" {
			ctorID = id
		}
	}
	assert.NotZero(t, ctorID, "constructor must be recorded in function_list")

	var found bool
	for _, e := range g.Edges() {
		if e.Kind == model.ConstructorCall && e.Dst == ctorID {
			found = true
		}
	}
	assert.True(t, found, "a default-constructed local must get a constructor_call edge")
}

func TestDeleteExpressionWiresDestructorChainAcrossBaseClass(t *testing.T) {
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

	b := NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var derivedDtor, baseDtor model.NodeId
	for key, id := range records.FunctionList {
		if key.Class == "Derived" && key.Name == "~Derived" {
			derivedDtor = id
		}
		if key.Class == "Base" && key.Name == "~Base" {
			baseDtor = id
		}
	}
	assert.NotZero(t, derivedDtor, "~Derived must be recorded")
	assert.NotZero(t, baseDtor, "~Base must be recorded")

	var sawDestructorCall, sawChainToBase, sawBaseReturn bool
	for _, e := range g.Edges() {
		if e.Kind == model.DestructorCall && e.Dst == derivedDtor {
			sawDestructorCall = true
		}
		if e.Kind == model.DestructorChain && e.Dst == baseDtor {
			sawChainToBase = true
		}
		if e.Kind == model.BaseDestructorReturn && e.Src == baseDtor {
			sawBaseReturn = true
		}
	}
	assert.True(t, sawDestructorCall, "delete p must call ~Derived first (runtime type tracked from `new Derived`)")
	assert.True(t, sawChainToBase, "~Derived must chain into ~Base")
	assert.True(t, sawBaseReturn, "~Base must return via base_destructor_return since the chain has more than one link")
}

func TestVirtualCallWiredForExplicitlyMarkedVirtualWithSingleOverride(t *testing.T) {
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

	b := NewBuilder(cpp.Lang{}, idx, records, nodes, source, nil, nil)
	g := Build(b, root, cfgNodes)

	var drawID model.NodeId
	for key, id := range records.FunctionList {
		if key.Name == "draw" {
			drawID = id
		}
	}
	assert.NotZero(t, drawID)

	var found bool
	for _, e := range g.Edges() {
		if e.Kind == model.VirtualCall && e.Dst == drawID {
			found = true
		}
	}
	assert.True(t, found, "an explicitly-virtual method must dispatch as virtual even with a single resolved override")
}
