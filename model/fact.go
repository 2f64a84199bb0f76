package model

// FactKind distinguishes the two RDA fact shapes named in §3: a named
// variable occurrence ("Identifier") or a literal value treated as a
// pseudo-definition source ("Literal", e.g. "LITERAL_42").
type FactKind int

const (
	FactIdentifier FactKind = iota
	FactLiteral
)

// Fact is a single reaching-definition fact: either a definition or a
// live use, depending on context (DEF sets vs. USE sets, §4.6).
// Name is normalized so that *p and p[i] name the base variable p
// and p->f/p.f name "p.f" (§3).
type Fact struct {
	Kind FactKind
	Name string

	// Line is the defining statement's NodeId; zero value (NodeId(0))
	// for live uses, which are not themselves definitions.
	Line NodeId

	// Scope is the scope at which this def is considered visible:
	// equal to VariableScope for declarations, otherwise the scope of
	// the original declaration being redefined.
	Scope Scope

	// VariableScope is the scope of the variable occurrence itself
	// (as opposed to the defining declaration's scope).
	VariableScope Scope

	Declaration    bool
	HasInitializer bool
	MethodCall     bool
	Satisfied      bool

	// IsPointerModificationAtCallSite marks a fact produced by a
	// call that passes this variable by pointer/reference to a
	// callee known to modify it (§4.6); such facts are connected
	// interprocedurally rather than via plain comesFrom edges.
	IsPointerModificationAtCallSite bool
}

// BaseName returns the part of Name before its first `.`, i.e. the
// root variable of a field-qualified name (`obj.f.g` -> `obj`), used
// for scope and liveness bookkeeping. Name resolution rules for *p,
// p[i], p->f, obj.field are implemented by dfg's identifierText, which
// already reduces *p and p[i] to p; BaseName strips no `*` or `&`.
func (f Fact) BaseName() string {
	for i := 0; i < len(f.Name); i++ {
		if f.Name[i] == '.' {
			return f.Name[:i]
		}
	}
	return f.Name
}

// FactSet is a small set of Facts keyed by Name, used as the DEF/KILL
// building blocks the RDA engine's transfer function operates on. The
// RDA engine itself works over IN/OUT maps of NodeId -> FactSet; see
// package rda.
type FactSet map[string]Fact

// NewFactSet returns an empty, non-nil FactSet.
func NewFactSet() FactSet {
	return make(FactSet)
}

// Add inserts (or overwrites) a fact by name.
func (s FactSet) Add(f Fact) {
	s[f.Name] = f
}

// Clone returns an independent copy of the set.
func (s FactSet) Clone() FactSet {
	out := make(FactSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Union returns the union of s and other as a new set; on a name
// collision, other's fact wins (callers control ordering deliberately
// when union order matters).
func (s FactSet) Union(other FactSet) FactSet {
	out := s.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Equal reports whether two fact sets contain exactly the same
// (name, fact) pairs; used for the RDA fixed-point termination check
// (§4.5, §9 "deep-equality").
func (s FactSet) Equal(other FactSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || !factsEqual(v, ov) {
			return false
		}
	}
	return true
}

// factsEqual compares two facts field-by-field; Fact cannot use the
// `==` operator directly because Scope/VariableScope are slices.
func factsEqual(a, b Fact) bool {
	return a.Kind == b.Kind &&
		a.Name == b.Name &&
		a.Line == b.Line &&
		a.Scope.Equal(b.Scope) &&
		a.VariableScope.Equal(b.VariableScope) &&
		a.Declaration == b.Declaration &&
		a.HasInitializer == b.HasInitializer &&
		a.MethodCall == b.MethodCall &&
		a.Satisfied == b.Satisfied &&
		a.IsPointerModificationAtCallSite == b.IsPointerModificationAtCallSite
}
