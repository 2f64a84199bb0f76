package model

// FunctionKey identifies a function/method overload by its enclosing
// class (empty for free functions) and name; SignatureKey further keys
// by parameter-type signature where overload resolution is needed.
type FunctionKey struct {
	Class string // "" for free functions / namespace-scope functions
	Name  string
}

// SignatureKey pairs a FunctionKey with a stringified parameter-type
// signature, used as the map key for function_list/return_type so
// overloads resolve independently.
type SignatureKey struct {
	FunctionKey
	Signature string
}

// CallOccurrence is a single call site: the inner call-expression
// node id and the enclosing statement's CfgNode id, matching the
// `(call_site_inner_id, enclosing_statement_id)` pairs in §3.
type CallOccurrence struct {
	CallSiteID  NodeId
	EnclosingID NodeId
}

// VirtualInfo records whether a function overload is (pure) virtual.
type VirtualInfo struct {
	IsVirtual     bool
	IsPureVirtual bool
}

// Records is the per-graph sidecar built during extraction and
// consulted throughout CFG/DFG construction (§3). It is mutable only
// during construction; once the engine emits its final graphs the
// Records value is auxiliary metadata only (§3 "Lifecycle").
type Records struct {
	BasicBlocks map[int][]NodeId

	FunctionList map[SignatureKey]NodeId
	ReturnType   map[SignatureKey]string

	FunctionCalls    map[SignatureKey][]CallOccurrence
	MethodCalls      map[SignatureKey][]CallOccurrence
	ConstructorCalls map[SignatureKey][]CallOccurrence
	DestructorCalls  map[SignatureKey][]CallOccurrence
	IndirectCalls    map[SignatureKey][]CallOccurrence

	VirtualFunctions map[NodeId]VirtualInfo

	ReturnStatementMap map[NodeId][]NodeId
	// ImplicitReturnMap holds the synthetic fall-off-end id for void
	// functions/constructors/destructors. These ids are never emitted
	// as CfgNodes (§3, §9 "Implicit-return pseudo-nodes").
	ImplicitReturnMap map[NodeId]NodeId

	LabelStatementMap map[string]AstKey
	SwitchChildMap    map[NodeId]NodeId
	LambdaMap         map[AstKey]NodeId

	// LambdaVariables maps a variable name to the lambda expression it
	// was directly initialized with (`auto f = [...]{...}`), letting
	// the DFG interprocedural layer recognize "callee invokes its
	// parameter, which was bound to a lambda at the call site" (§4.8
	// "Lambda invocation").
	LambdaVariables map[string]AstKey

	FunctionPointerAssignments map[string][]string
	Extends                    map[string][]string

	MainFunction NodeId

	// nextSynthetic tracks the next free synthetic id handed out for
	// implicit returns, kept internal to Records so callers never
	// have to coordinate id allocation themselves.
	nextSynthetic int
}

// NewRecords returns an empty, fully initialized Records value. All
// maps are non-nil so callers can range/insert without nil checks.
func NewRecords() *Records {
	return &Records{
		BasicBlocks:                make(map[int][]NodeId),
		FunctionList:               make(map[SignatureKey]NodeId),
		ReturnType:                 make(map[SignatureKey]string),
		FunctionCalls:              make(map[SignatureKey][]CallOccurrence),
		MethodCalls:                make(map[SignatureKey][]CallOccurrence),
		ConstructorCalls:           make(map[SignatureKey][]CallOccurrence),
		DestructorCalls:            make(map[SignatureKey][]CallOccurrence),
		IndirectCalls:              make(map[SignatureKey][]CallOccurrence),
		VirtualFunctions:           make(map[NodeId]VirtualInfo),
		ReturnStatementMap:         make(map[NodeId][]NodeId),
		ImplicitReturnMap:          make(map[NodeId]NodeId),
		LabelStatementMap:          make(map[string]AstKey),
		SwitchChildMap:             make(map[NodeId]NodeId),
		LambdaMap:                  make(map[AstKey]NodeId),
		LambdaVariables:            make(map[string]AstKey),
		FunctionPointerAssignments: make(map[string][]string),
		Extends:                    make(map[string][]string),
		nextSynthetic:              -1000000, // far outside real NodeId space
	}
}

// NewSyntheticID allocates a fresh synthetic id for an implicit
// return. Synthetic ids are negative so they can never collide with a
// real NodeId assigned by the external index.
func (r *Records) NewSyntheticID() NodeId {
	id := NodeId(r.nextSynthetic)
	r.nextSynthetic--
	return id
}

// AddReturnStatement appends a return-transferring NodeId to a
// function's return_statement_map, used for both explicit returns and
// synthetic implicit-return ids.
func (r *Records) AddReturnStatement(fn NodeId, ret NodeId) {
	r.ReturnStatementMap[fn] = append(r.ReturnStatementMap[fn], ret)
}

// ImplicitReturnFor returns (and lazily creates) the synthetic
// fall-off-end id for a void function/constructor/destructor.
func (r *Records) ImplicitReturnFor(fn NodeId) NodeId {
	if id, ok := r.ImplicitReturnMap[fn]; ok {
		return id
	}
	id := r.NewSyntheticID()
	r.ImplicitReturnMap[fn] = id
	r.AddReturnStatement(fn, id)
	return id
}
