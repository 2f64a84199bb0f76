package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineOptionsDefaultsAllOff(t *testing.T) {
	o := NewEngineOptions()
	assert.False(t, o.LastDef)
	assert.False(t, o.PreSolveDropsCrossFunctionEdges)
	assert.False(t, o.Debug)
}

func TestNewEngineOptionsAppliesGivenOptions(t *testing.T) {
	o := NewEngineOptions(WithLastDef(true), WithDebug(true))
	assert.True(t, o.LastDef)
	assert.True(t, o.Debug)
	assert.False(t, o.PreSolveDropsCrossFunctionEdges)
}

func TestWithPreSolveDropsCrossFunctionEdges(t *testing.T) {
	o := NewEngineOptions(WithPreSolveDropsCrossFunctionEdges(true))
	assert.True(t, o.PreSolveDropsCrossFunctionEdges)
}
