package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadOverridesAppliesBoolEnvVars(t *testing.T) {
	os.Setenv("CXFLOW_LAST_DEF", "true")
	os.Setenv("CXFLOW_DEBUG", "false")
	defer os.Unsetenv("CXFLOW_LAST_DEF")
	defer os.Unsetenv("CXFLOW_DEBUG")

	base := NewEngineOptions(WithDebug(true))
	out := LoadOverrides(base, "")

	assert.True(t, out.LastDef)
	assert.False(t, out.Debug)
}

func TestLoadOverridesLeavesUnsetVarsAlone(t *testing.T) {
	os.Unsetenv("CXFLOW_PRESOLVE_DROP_CROSS_FN")
	base := NewEngineOptions(WithPreSolveDropsCrossFunctionEdges(true))
	out := LoadOverrides(base, "")
	assert.True(t, out.PreSolveDropsCrossFunctionEdges)
}

func TestLoadOverridesIgnoresMalformedBoolValue(t *testing.T) {
	os.Setenv("CXFLOW_DEBUG", "not-a-bool")
	defer os.Unsetenv("CXFLOW_DEBUG")

	base := NewEngineOptions(WithDebug(true))
	out := LoadOverrides(base, "")
	assert.True(t, out.Debug, "malformed env value must not override the base setting")
}
