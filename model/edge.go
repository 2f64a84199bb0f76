package model

import "fmt"

// CfgEdgeKind enumerates the closed set of CFG edge kinds from §6.
// Kinds that carry a per-call-site payload (function_call, method_call,
// virtual_call, constructor_call, destructor_call, indirect_call,
// destructor_chain, scope_destructor_return) encode the payload in the
// CfgEdge.Payload field rather than the kind string itself; CfgEdgeKind
// stays the bare kind for dispatch and deduplication purposes.
type CfgEdgeKind string

const (
	NextLine              CfgEdgeKind = "next_line"
	FirstNextLine         CfgEdgeKind = "first_next_line"
	PosNext               CfgEdgeKind = "pos_next"
	NegNext               CfgEdgeKind = "neg_next"
	LoopControl           CfgEdgeKind = "loop_control"
	LoopUpdate            CfgEdgeKind = "loop_update"
	SwitchCase            CfgEdgeKind = "switch_case"
	CaseNext              CfgEdgeKind = "case_next"
	SwitchExit            CfgEdgeKind = "switch_exit"
	JumpNext              CfgEdgeKind = "jump_next"
	TryNext               CfgEdgeKind = "try_next"
	CatchException        CfgEdgeKind = "catch_exception"
	TryExit               CfgEdgeKind = "try_exit"
	CatchNext             CfgEdgeKind = "catch_next"
	CatchExit             CfgEdgeKind = "catch_exit"
	ThrowExit             CfgEdgeKind = "throw_exit"
	LambdaNext            CfgEdgeKind = "lambda_next"
	NamespaceEntry        CfgEdgeKind = "namespace_entry"
	ClassNext             CfgEdgeKind = "class_next"
	GlobalSequence        CfgEdgeKind = "global_sequence"
	FunctionCall          CfgEdgeKind = "function_call"
	MethodCall            CfgEdgeKind = "method_call"
	VirtualCall           CfgEdgeKind = "virtual_call"
	ConstructorCall       CfgEdgeKind = "constructor_call"
	DestructorCall        CfgEdgeKind = "destructor_call"
	IndirectCall          CfgEdgeKind = "indirect_call"
	FunctionReturn        CfgEdgeKind = "function_return"
	MethodReturn          CfgEdgeKind = "method_return"
	ConstructorReturn     CfgEdgeKind = "constructor_return"
	BaseConstructorReturn CfgEdgeKind = "base_constructor_return"
	DestructorReturn      CfgEdgeKind = "destructor_return"
	BaseDestructorReturn  CfgEdgeKind = "base_destructor_return"
	DestructorChain       CfgEdgeKind = "destructor_chain"
	ScopeExitDestructor   CfgEdgeKind = "scope_exit_destructor"
	ScopeDestructorReturn CfgEdgeKind = "scope_destructor_return"
	IndirectReturn        CfgEdgeKind = "indirect_return"
	Next                  CfgEdgeKind = "next"
	LambdaInvocation      CfgEdgeKind = "lambda_invocation"
)

// CfgEdge is a (src, dst, kind, payload) tuple. Payload disambiguates
// edges that share a kind but differ by call-site id or RAII variable
// name (e.g. "destructor_chain|obj", "method_call|call42"). Edges are
// deduplicated by exact tuple match (§3, I2).
type CfgEdge struct {
	Src     NodeId
	Dst     NodeId
	Kind    CfgEdgeKind
	Payload string
}

// Key returns the deduplication identity of the edge.
func (e CfgEdge) Key() string {
	return fmt.Sprintf("%d|%d|%s|%s", e.Src, e.Dst, e.Kind, e.Payload)
}

// DfgEdgeKind enumerates the dataflow_type values from §6.
type DfgEdgeKind string

const (
	ComesFrom        DfgEdgeKind = "comesFrom"
	Parameter        DfgEdgeKind = "parameter"
	LastDef          DfgEdgeKind = "lastDef"
	LoopCarried      DfgEdgeKind = "loop_carried"
	DfgConstructor   DfgEdgeKind = "constructor_call"
	DfgBaseCtor      DfgEdgeKind = "base_constructor_call"
	DfgDestructor    DfgEdgeKind = "destructor_call"
	DfgBaseDtor      DfgEdgeKind = "base_destructor_call"
	VirtualDispatch  DfgEdgeKind = "virtual_dispatch"
	DfgLambdaCall    DfgEdgeKind = "lambda_call"
)

// Interprocedural labels the `interprocedural` DFG edge attribute.
type Interprocedural string

const (
	ArgumentToParameter Interprocedural = "argument_to_parameter"
	ReturnToCaller      Interprocedural = "return_to_caller"
	ModificationToUse   Interprocedural = "modification_to_use"
)

// EdgeColor enumerates the two colors DFG edges render with (§4.7,
// §6); "orange" is reserved for optional lastDef edges.
type EdgeColor string

const (
	ColorComesFrom EdgeColor = "#00A3FF"
	ColorLastDef   EdgeColor = "orange"
)

// DfgEdge is one def→use (or interprocedural) data-flow edge.
type DfgEdge struct {
	Src             NodeId
	Dst             NodeId
	DataflowType    DfgEdgeKind
	EdgeType        string // always "DFG_edge"
	Color           EdgeColor
	UsedDef         string
	Interprocedural Interprocedural // optional, "" when absent
	ArgumentIndex   int             // optional, call-argument position on per-argument interprocedural and lambda_call edges; -1 marks the receiver
	ObjectName      string          // optional, set for method member access edges
}

// Key returns a deduplication identity for a DfgEdge.
func (e DfgEdge) Key() string {
	return fmt.Sprintf("%d|%d|%s|%s|%s|%d|%s", e.Src, e.Dst, e.DataflowType, e.UsedDef, e.Interprocedural, e.ArgumentIndex, e.ObjectName)
}
