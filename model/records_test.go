package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImplicitReturnForIsStableAndRegistered(t *testing.T) {
	r := NewRecords()
	fn := NodeId(42)

	first := r.ImplicitReturnFor(fn)
	second := r.ImplicitReturnFor(fn)
	assert.Equal(t, first, second, "repeated calls must return the same synthetic id")
	assert.Contains(t, r.ReturnStatementMap[fn], first)
}

func TestImplicitReturnForDistinctFunctionsGetDistinctIds(t *testing.T) {
	r := NewRecords()
	a := r.ImplicitReturnFor(1)
	b := r.ImplicitReturnFor(2)
	assert.NotEqual(t, a, b)
}

func TestAddReturnStatementAppends(t *testing.T) {
	r := NewRecords()
	r.AddReturnStatement(1, 10)
	r.AddReturnStatement(1, 11)
	assert.Equal(t, []NodeId{10, 11}, r.ReturnStatementMap[1])
}

func TestNewRecordsMapsAreUsable(t *testing.T) {
	r := NewRecords()
	r.FunctionList[SignatureKey{FunctionKey: FunctionKey{Name: "f"}}] = 7
	assert.Equal(t, NodeId(7), r.FunctionList[SignatureKey{FunctionKey: FunctionKey{Name: "f"}}])
}
