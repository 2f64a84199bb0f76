package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadOverrides applies CXFLOW_LAST_DEF / CXFLOW_PRESOLVE_DROP_CROSS_FN /
// CXFLOW_DEBUG environment variable overrides on top of base, optionally
// reading them from a .env file first (dotenvPath may be empty, in which
// case only the process environment is consulted). This is the same role
// godotenv plays for the teacher's own test fixtures: flipping flags
// without threading them through every call site.
func LoadOverrides(base EngineOptions, dotenvPath string) EngineOptions {
	if dotenvPath != "" {
		// Best effort: a missing or malformed .env file is not fatal,
		// it just means only the ambient process environment applies.
		_ = godotenv.Load(dotenvPath)
	}

	out := base
	if v, ok := boolEnv("CXFLOW_LAST_DEF"); ok {
		out.LastDef = v
	}
	if v, ok := boolEnv("CXFLOW_PRESOLVE_DROP_CROSS_FN"); ok {
		out.PreSolveDropsCrossFunctionEdges = v
	}
	if v, ok := boolEnv("CXFLOW_DEBUG"); ok {
		out.Debug = v
	}
	return out
}

func boolEnv(name string) (bool, bool) {
	raw, present := os.LookupEnv(name)
	if !present {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
