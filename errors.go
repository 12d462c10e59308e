package tzdb

import "fmt"

// ErrorKind classifies a compile failure. It is a kind, not a Go type
// hierarchy: all compile errors are returned as *Error with a Kind field,
// following the teacher package's flat parseError style rather than a
// family of distinct error types.
type ErrorKind int

const (
	// CorruptArchive: DEFLATE or tar structure violation, or a required
	// archive member is missing.
	CorruptArchive ErrorKind = iota
	// MalformedDeclaration: a Rule/Zone/Link/iso3166.tab/zone1970.tab line
	// failed to parse.
	MalformedDeclaration
	// UnresolvedReference: a Zone names a non-existent rule bundle, a Link
	// names a non-existent main zone, zone1970.tab names an unknown zone,
	// a country row names an unknown country code, or a default-zone
	// override names a zone its country does not have.
	UnresolvedReference
	// Overflow: a bounded field (zone name, country name/code,
	// abbreviation) does not fit its capacity.
	Overflow
	// SuspectOrdering: a rule bundle's lazily-computed sort order is no
	// longer monotonic under a later epoch's standard offset, or two
	// successive rules in a bundle fire less than 48 hours apart.
	SuspectOrdering
)

func (k ErrorKind) String() string {
	switch k {
	case CorruptArchive:
		return "CorruptArchive"
	case MalformedDeclaration:
		return "MalformedDeclaration"
	case UnresolvedReference:
		return "UnresolvedReference"
	case Overflow:
		return "Overflow"
	case SuspectOrdering:
		return "SuspectOrdering"
	default:
		return "UnknownErrorKind"
	}
}

// Error is the single failure outcome of a Compile call. No partial
// TimezoneDB is ever returned alongside a non-nil error.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tzdb: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func wrapError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}
