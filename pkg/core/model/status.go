package model

import "strings"

// StatusKind is one recognised keyword from the monthly status column
type StatusKind string

const (
	StatusSBF      StatusKind = "SBF"
	StatusSail     StatusKind = "SAIL"
	StatusNDP      StatusKind = "NDP"
	StatusExcused  StatusKind = "EXCUSED"
	StatusMedical  StatusKind = "MEDICAL"
	StatusOnCourse StatusKind = "ON COURSE"
	StatusPartner  StatusKind = "PARTNER"
	StatusNew      StatusKind = "NEW"
)

// exclusionKinds are the status keywords that take a staff member out of the
// month entirely. NEW is deliberately absent: it only grants a joining bonus.
var exclusionKinds = []StatusKind{
	StatusSBF, StatusSail, StatusNDP, StatusExcused,
	StatusMedical, StatusOnCourse, StatusPartner,
}

// Status is the parsed monthly status of a staff member. The raw text is kept
// for diagnostics only and is never re-parsed downstream.
type Status struct {
	Raw   string
	Kinds []StatusKind
}

// ParseStatus classifies a free-text status cell into the closed keyword set.
// Matching is substring-based and case-insensitive, so "SBF (to May)" still
// classifies as SBF. Several keywords may match at once.
func ParseStatus(raw string) Status {
	text := strings.ToUpper(strings.TrimSpace(raw))
	s := Status{Raw: raw}
	if text == "" {
		return s
	}

	all := append(append([]StatusKind{}, exclusionKinds...), StatusNew)
	for _, kind := range all {
		if strings.Contains(text, string(kind)) {
			s.Kinds = append(s.Kinds, kind)
		}
	}
	return s
}

// Has reports whether the status carries the given keyword
func (s Status) Has(kind StatusKind) bool {
	for _, k := range s.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Excluded reports whether the staff member is out of the month's free pool
func (s Status) Excluded() bool {
	for _, kind := range exclusionKinds {
		if s.Has(kind) {
			return true
		}
	}
	return false
}

// WithKind returns a copy of the status with an extra keyword appended.
// Used when SBF exclusion propagates PARTNER status to the other half of a pair.
func (s Status) WithKind(kind StatusKind) Status {
	out := Status{Raw: s.Raw, Kinds: append([]StatusKind{}, s.Kinds...)}
	if !out.Has(kind) {
		out.Kinds = append(out.Kinds, kind)
	}
	return out
}
