package planner

import (
	"fmt"

	"github.com/jakechorley/duty-planner/pkg/solver"
)

// weeklyCapConstraint enforces at most one duty per ISO week for one staff
// row. Exempt columns (manual holiday duties, or every manual duty when so
// configured) do not count toward the weekly sum.
type weeklyCapConstraint struct {
	row   int
	weeks [][]int // counted day columns, grouped by ISO week
	who   string
}

func (w *weeklyCapConstraint) Name() string {
	return fmt.Sprintf("weekly duty cap (%s)", w.who)
}

func (w *weeklyCapConstraint) Violations(g *solver.Grid) int {
	violations := 0
	for _, cols := range w.weeks {
		count := 0
		for _, c := range cols {
			if g.At(w.row, c) {
				count++
			}
		}
		if count > 1 {
			violations += count - 1
		}
	}
	return violations
}

// minGapConstraint enforces the minimum day separation between two duties of
// one staff row. A pair is exempt when at least one side is a manual duty.
type minGapConstraint struct {
	row       int
	minGap    int
	dayOf     []int  // ordinal day per column
	fixedDuty []bool // manual duty per column
	who       string
}

func (m *minGapConstraint) Name() string {
	return fmt.Sprintf("duty gap (%s)", m.who)
}

func (m *minGapConstraint) Violations(g *solver.Grid) int {
	violations := 0
	for c1 := 0; c1 < len(m.dayOf); c1++ {
		if !g.At(m.row, c1) {
			continue
		}
		for c2 := c1 + 1; c2 < len(m.dayOf); c2++ {
			if m.dayOf[c2]-m.dayOf[c1] >= m.minGap {
				break
			}
			if !g.At(m.row, c2) {
				continue
			}
			if m.fixedDuty[c1] || m.fixedDuty[c2] {
				continue
			}
			violations++
		}
	}
	return violations
}

// dutyCapConstraint caps total duties for one staff row
type dutyCapConstraint struct {
	row int
	cap int
	who string
}

func (d *dutyCapConstraint) Name() string {
	return fmt.Sprintf("duty cap (%s)", d.who)
}

func (d *dutyCapConstraint) Violations(g *solver.Grid) int {
	if count := g.RowCount(d.row); count > d.cap {
		return count - d.cap
	}
	return 0
}

// genderPairConstraint requires each day's duty count among gender-flagged
// staff to be exactly 0 or 2, never 1 (or more than 2).
type genderPairConstraint struct {
	rows []int
	cols int
}

func (gp *genderPairConstraint) Name() string {
	return "female duty pairing"
}

func (gp *genderPairConstraint) Violations(g *solver.Grid) int {
	violations := 0
	for c := 0; c < gp.cols; c++ {
		count := 0
		for _, r := range gp.rows {
			if g.At(r, c) {
				count++
			}
		}
		if count != 0 && count != 2 {
			violations++
		}
	}
	return violations
}

// separationConstraint enforces the standby pass separation rule for one
// staff row: a standby must sit at least minSep days from every duty and
// every other standby of the same staff member.
type separationConstraint struct {
	row      int
	minSep   int
	dutyDays []int // ordinal days holding duty in the primary assignment
	dayOf    []int // ordinal day per column
	who      string
}

func (s *separationConstraint) Name() string {
	return fmt.Sprintf("standby separation (%s)", s.who)
}

func (s *separationConstraint) Violations(g *solver.Grid) int {
	violations := 0
	var selected []int
	for c := 0; c < len(s.dayOf); c++ {
		if g.At(s.row, c) {
			selected = append(selected, s.dayOf[c])
		}
	}
	for _, sd := range selected {
		for _, dd := range s.dutyDays {
			diff := sd - dd
			if diff < 0 {
				diff = -diff
			}
			if diff < s.minSep {
				violations++
			}
		}
	}
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			if selected[j]-selected[i] < s.minSep {
				violations++
			}
		}
	}
	return violations
}

// branchMirrorConstraint requires, for one day, each branch's standby count
// to equal its duty count from the primary assignment.
type branchMirrorConstraint struct {
	col    int
	day    int
	counts map[string]int // required standby per branch (0 for duty-less branches)
	rows   map[string][]int
}

func (b *branchMirrorConstraint) Name() string {
	return fmt.Sprintf("branch mirroring (day %d)", b.day)
}

func (b *branchMirrorConstraint) Violations(g *solver.Grid) int {
	violations := 0
	for branch, rows := range b.rows {
		count := 0
		for _, r := range rows {
			if g.At(r, b.col) {
				count++
			}
		}
		diff := count - b.counts[branch]
		if diff < 0 {
			diff = -diff
		}
		violations += diff
	}
	return violations
}

// standbyCapConstraint caps total standby assignments for one staff row
type standbyCapConstraint struct {
	row int
	cap int
	who string
}

func (s *standbyCapConstraint) Name() string {
	return fmt.Sprintf("standby cap (%s)", s.who)
}

func (s *standbyCapConstraint) Violations(g *solver.Grid) int {
	if count := g.RowCount(s.row); count > s.cap {
		return count - s.cap
	}
	return 0
}
