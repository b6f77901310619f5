// Package bounds accumulates the capability obligations generated code
// places on generic type parameters and materializes them into
// constraint clauses. A parameter receives an obligation only when a
// fired emitter actually reads a field whose type mentions it; unrelated
// parameters stay untouched.
package bounds

import "strings"

// Capability is a constraint the generated code requires of a type
// expression.
type Capability string

const (
	// CapError marks participation in the causal chain: the value is
	// stored or returned as an error.
	CapError Capability = "error"
	// CapStringer marks bonus as-string display interpolation.
	CapStringer Capability = "fmt.Stringer"
)

// Obligation pairs a type expression with a required capability.
type Obligation struct {
	TypeExpr   string
	Capability Capability
}

// Set accumulates obligations in first-insertion order without
// duplicates, keeping the bound policy auditable in one place.
type Set struct {
	order []Obligation
	seen  map[Obligation]struct{}
}

// NewSet returns an empty obligation set.
func NewSet() *Set {
	return &Set{seen: map[Obligation]struct{}{}}
}

// Insert records one obligation, ignoring duplicates.
func (s *Set) Insert(typeExpr string, cap Capability) {
	ob := Obligation{TypeExpr: typeExpr, Capability: cap}
	if _, dup := s.seen[ob]; dup {
		return
	}
	s.seen[ob] = struct{}{}
	s.order = append(s.order, ob)
}

// Obligations returns the accumulated obligations in insertion order.
func (s *Set) Obligations() []Obligation {
	return append([]Obligation(nil), s.order...)
}

// ForParam returns the capabilities required of one type parameter, in
// insertion order.
func (s *Set) ForParam(name string) []Capability {
	var out []Capability
	for _, ob := range s.order {
		if ob.TypeExpr == name {
			out = append(out, ob.Capability)
		}
	}
	return out
}

// Augment materializes obligations into the constraint used when
// generated code redeclares a type parameter. The declared constraint is
// kept verbatim when nothing is required of the parameter.
func Augment(declared string, caps []Capability) string {
	var missing []Capability
	for _, c := range caps {
		if !Implies(declared, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return declared
	}
	if declared == "any" && len(missing) == 1 {
		return string(missing[0])
	}

	var elems []string
	if declared != "any" {
		elems = append(elems, embeddedElems(declared)...)
	}
	for _, c := range missing {
		elems = append(elems, string(c))
	}
	return "interface{ " + strings.Join(elems, "; ") + " }"
}

// Implies reports whether a declared constraint syntactically implies a
// capability. The check is conservative: named constraints other than
// the capability itself are assumed not to imply it, which errs toward
// surfacing a diagnostic rather than emitting code that cannot compile.
func Implies(declared string, cap Capability) bool {
	for _, elem := range embeddedElems(declared) {
		if elem == string(cap) {
			return true
		}
	}
	return false
}

// embeddedElems splits a constraint expression into its embedded
// elements: either the expression itself, or the semicolon-separated
// elements of an interface literal.
func embeddedElems(constraint string) []string {
	constraint = strings.TrimSpace(constraint)
	body, ok := strings.CutPrefix(constraint, "interface{")
	if !ok {
		return []string{constraint}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "}")
	var out []string
	for _, elem := range strings.Split(body, ";") {
		if elem = strings.TrimSpace(elem); elem != "" {
			out = append(out, elem)
		}
	}
	return out
}
