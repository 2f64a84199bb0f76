package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCfgEdgeKeySameTupleCollide(t *testing.T) {
	a := CfgEdge{Src: 1, Dst: 2, Kind: NextLine}
	b := CfgEdge{Src: 1, Dst: 2, Kind: NextLine}
	assert.Equal(t, a.Key(), b.Key())
}

func TestCfgEdgeKeyDistinguishesPayload(t *testing.T) {
	a := CfgEdge{Src: 1, Dst: 2, Kind: FunctionCall, Payload: "call1"}
	b := CfgEdge{Src: 1, Dst: 2, Kind: FunctionCall, Payload: "call2"}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestDfgEdgeKeyDistinguishesInterprocedural(t *testing.T) {
	a := DfgEdge{Src: 1, Dst: 2, DataflowType: ComesFrom, UsedDef: "x"}
	b := DfgEdge{Src: 1, Dst: 2, DataflowType: ComesFrom, UsedDef: "x", Interprocedural: ArgumentToParameter}
	assert.NotEqual(t, a.Key(), b.Key())
}
