package model

import (
	"errors"
	"fmt"
)

// ErrStaffBlockNotFound is returned when the contiguous block of staff rows
// cannot be located in the roster sheet. This is fatal: nothing downstream
// can run without it.
var ErrStaffBlockNotFound = errors.New("staff block not found in roster sheet")

// Pass identifies which solver pass an outcome belongs to
type Pass string

const (
	PassDuty    Pass = "duty"
	PassStandby Pass = "standby"
)

// InfeasibleError reports that a solver pass found no feasible solution
// within its time budget. It is a structured outcome, not a crash: callers
// can tell which pass failed and what the best attempt still violated.
type InfeasibleError struct {
	Pass       Pass
	Violations []string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s pass: no feasible solution found within budget (%d outstanding violations)",
		e.Pass, len(e.Violations))
}

// CapacityError reports that the standby branch-mirroring rule cannot be
// satisfied by the available data: a branch has fewer eligible standby
// candidates on a day than it has duty holders. Distinguishable from general
// infeasibility so the caller can point at the offending day and branch.
type CapacityError struct {
	Day    int // ordinal day-of-month
	Branch string
	Need   int
	Have   int
}

func (e *CapacityError) Error() string {
	if e.Branch == "" {
		return fmt.Sprintf("day %d: %d standby candidates for %d duties", e.Day, e.Have, e.Need)
	}
	return fmt.Sprintf("day %d, branch %s: needs %d standby but only %d candidates available",
		e.Day, e.Branch, e.Need, e.Have)
}

// DiagnosticKind classifies a non-fatal finding collected during ingestion
type DiagnosticKind string

const (
	// DiagUnmatchedName flags a name present in a secondary table (branch,
	// partner, adjustment) but absent from the primary roster. The entry is
	// skipped and the run continues.
	DiagUnmatchedName DiagnosticKind = "unmatched_name"
	// DiagUnparseableCell flags a cell whose content could not be interpreted
	DiagUnparseableCell DiagnosticKind = "unparseable_cell"
)

// Diagnostic is one "not found / skipped, continuing" finding. Malformed
// input that must abort the run is an error, never a Diagnostic.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string
	Detail  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Subject, d.Detail)
}
