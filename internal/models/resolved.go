package models

// Provenance records where a derived value came from: the local computation
// or an authoritative server-side record that overrides it.
type Provenance int

const (
	// ProvenanceLocal marks a value recomputed from the transaction set.
	ProvenanceLocal Provenance = iota

	// ProvenanceAuthoritative marks a value taken from a server-side cycle
	// status record. Authoritative always wins over local; that is the single
	// precedence rule, applied at merge time rather than scattered through
	// consumers.
	ProvenanceAuthoritative
)

// String returns the string representation of Provenance
func (p Provenance) String() string {
	switch p {
	case ProvenanceLocal:
		return "Local"
	case ProvenanceAuthoritative:
		return "Authoritative"
	default:
		return "Unknown"
	}
}

// Resolved carries a derived value together with its provenance.
type Resolved[T any] struct {
	Value      T
	Provenance Provenance
}

// Local wraps a locally computed value.
func Local[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v, Provenance: ProvenanceLocal}
}

// Authoritative wraps a server-provided value.
func Authoritative[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v, Provenance: ProvenanceAuthoritative}
}

// IsAuthoritative reports whether the value came from the server.
func (r Resolved[T]) IsAuthoritative() bool {
	return r.Provenance == ProvenanceAuthoritative
}

// Merge applies the precedence rule: an authoritative candidate replaces the
// current value, anything else leaves it untouched.
func (r Resolved[T]) Merge(candidate Resolved[T]) Resolved[T] {
	if candidate.IsAuthoritative() {
		return candidate
	}
	return r
}
