package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactSetUnionPrefersOther(t *testing.T) {
	a := NewFactSet()
	a.Add(Fact{Name: "x", Line: 1})
	b := NewFactSet()
	b.Add(Fact{Name: "x", Line: 2})

	u := a.Union(b)
	assert.Equal(t, NodeId(2), u["x"].Line)
	assert.Equal(t, NodeId(1), a["x"].Line, "Union must not mutate its receiver")
}

func TestFactSetEqual(t *testing.T) {
	a := NewFactSet()
	a.Add(Fact{Name: "x", Line: 1, Scope: Scope{0}})
	b := NewFactSet()
	b.Add(Fact{Name: "x", Line: 1, Scope: Scope{0}})
	assert.True(t, a.Equal(b))

	b.Add(Fact{Name: "y", Line: 2})
	assert.False(t, a.Equal(b))
}

func TestFactSetEqualDifferentSizes(t *testing.T) {
	a := NewFactSet()
	b := NewFactSet()
	b.Add(Fact{Name: "x"})
	assert.False(t, a.Equal(b))
}

func TestFactBaseNameStripsFieldSuffix(t *testing.T) {
	f := Fact{Name: "obj.field"}
	assert.Equal(t, "obj", f.BaseName())
}

func TestFactBaseNamePlainVariable(t *testing.T) {
	f := Fact{Name: "x"}
	assert.Equal(t, "x", f.BaseName())
}

func TestFactSetCloneIsIndependent(t *testing.T) {
	a := NewFactSet()
	a.Add(Fact{Name: "x", Line: 1})
	cp := a.Clone()
	cp.Add(Fact{Name: "x", Line: 2})
	assert.Equal(t, NodeId(1), a["x"].Line)
}
