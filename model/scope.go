package model

// Scope is an ordered path of integers, as produced by the external
// symbol table's scope_map. Scope A "reaches" scope B iff A is a
// prefix of B (the "scope prefix reach" glossary entry).
type Scope []int

// Reaches reports whether s is a prefix of other, i.e. whether a
// definition visible at scope s can reach a use at scope other.
func (s Scope) Reaches(other Scope) bool {
	if len(s) > len(other) {
		return false
	}
	for i, v := range s {
		if other[i] != v {
			return false
		}
	}
	return true
}

// Equal reports whether two scopes denote the same path.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i, v := range s {
		if other[i] != v {
			return false
		}
	}
	return true
}

// Depth returns the number of elements in the scope path. A depth-0
// (empty) scope denotes global/file scope (the "[0]" global-scope
// reference in §4.7).
func (s Scope) Depth() int {
	return len(s)
}

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool {
	return len(s) == 0
}

// Clone returns an independent copy of the scope path.
func (s Scope) Clone() Scope {
	out := make(Scope, len(s))
	copy(out, s)
	return out
}

// SymbolTable is the external collaborator exposing per-NodeId scope
// and static-type information, plus declaration-site resolution for
// use-site identifiers.
type SymbolTable interface {
	// ScopeOf returns the scope path recorded for a NodeId.
	ScopeOf(id NodeId) (Scope, bool)
	// DataTypeOf returns the symbol table's static type string for a
	// NodeId (used as a fallback in argument type inference, §4.4).
	DataTypeOf(id NodeId) (string, bool)
	// DeclarationOf resolves a use-site NodeId to its declaration
	// NodeId, mirroring the external `declaration_map`.
	DeclarationOf(useID NodeId) (NodeId, bool)
}
