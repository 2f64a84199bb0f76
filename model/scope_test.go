package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeReachesPrefix(t *testing.T) {
	global := Scope{}
	fn := Scope{0}
	block := Scope{0, 1}
	assert.True(t, global.Reaches(fn))
	assert.True(t, global.Reaches(block))
	assert.True(t, fn.Reaches(block))
	assert.False(t, block.Reaches(fn))
}

func TestScopeReachesUnrelatedSiblings(t *testing.T) {
	a := Scope{0, 1}
	b := Scope{0, 2}
	assert.False(t, a.Reaches(b))
	assert.False(t, b.Reaches(a))
}

func TestScopeEqual(t *testing.T) {
	assert.True(t, Scope{0, 1}.Equal(Scope{0, 1}))
	assert.False(t, Scope{0, 1}.Equal(Scope{0, 2}))
	assert.False(t, Scope{0}.Equal(Scope{0, 1}))
}

func TestScopeIsGlobal(t *testing.T) {
	assert.True(t, Scope{}.IsGlobal())
	assert.False(t, Scope{0}.IsGlobal())
}

func TestScopeCloneIsIndependent(t *testing.T) {
	s := Scope{0, 1}
	cp := s.Clone()
	cp[0] = 99
	assert.Equal(t, 0, s[0])
}
