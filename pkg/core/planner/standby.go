package planner

import (
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/solver"
)

// standbyModel is the secondary problem, built on top of a solved duty grid.
type standbyModel struct {
	problem *solver.Problem
}

// buildStandbyModel constructs the secondary constraint problem. Eligibility
// is decided here: excluded and gender-flagged staff never stand by, and a
// cell already holding a duty or a manual block stays empty. Every day with
// duty gets the configured standby headcount; duty-less days get none.
// Capacity is checked before any solving, so an impossible day surfaces as a
// CapacityError instead of a failed search.
func buildStandbyModel(in Inputs, limits Limits, duty *solver.Grid) (*standbyModel, error) {
	staff := in.Roster.Staff
	days := in.Days

	m := &standbyModel{problem: solver.NewProblem(len(staff), len(days))}

	eligible := make([]bool, len(staff))
	for r, s := range staff {
		eligible[r] = !s.Status.Excluded() && !s.Female
	}

	// candidate marks cells the solver may fill
	candidate := func(r, c int) bool {
		return eligible[r] && !duty.At(r, c) && in.Availability[r][c] != model.MarkBlocked
	}

	for r := range staff {
		for c := range days {
			if !candidate(r, c) {
				m.problem.Fix(r, c, false)
			}
		}
	}

	branchRows := make(map[string][]int)
	for _, s := range staff {
		if s.Branch != "" {
			branchRows[s.Branch] = append(branchRows[s.Branch], s.Row)
		}
	}

	dayOf := make([]int, len(days))
	for c, d := range days {
		dayOf[c] = d.Day
	}

	for c, day := range days {
		dutyCount := 0
		for r := range staff {
			if duty.At(r, c) {
				dutyCount++
			}
		}
		need := 0
		if dutyCount > 0 {
			need = limits.DailyStandby
		}
		m.problem.SetColTarget(c, need)

		have := 0
		for r := range staff {
			if candidate(r, c) {
				have++
			}
		}
		if have < need {
			return nil, &model.CapacityError{Day: day.Day, Need: need, Have: have}
		}

		// each branch must cover its own duty presence; any difference
		// between the duty total and the configured headcount falls to
		// branchless staff
		counts := make(map[string]int)
		for branch, rows := range branchRows {
			counts[branch] = 0
			for _, r := range rows {
				if duty.At(r, c) {
					counts[branch]++
				}
			}
			branchHave := 0
			for _, r := range rows {
				if candidate(r, c) {
					branchHave++
				}
			}
			if branchHave < counts[branch] {
				return nil, &model.CapacityError{
					Day:    day.Day,
					Branch: branch,
					Need:   counts[branch],
					Have:   branchHave,
				}
			}
		}
		m.problem.AddConstraint(&branchMirrorConstraint{
			col:    c,
			day:    day.Day,
			counts: counts,
			rows:   branchRows,
		})
	}

	for r, s := range staff {
		if !eligible[r] {
			continue
		}
		var dutyDays []int
		for c := range days {
			if duty.At(r, c) {
				dutyDays = append(dutyDays, dayOf[c])
			}
		}
		m.problem.AddConstraint(&separationConstraint{
			row:      r,
			minSep:   limits.StandbySeparation,
			dutyDays: dutyDays,
			dayOf:    dayOf,
			who:      s.Key,
		})
		m.problem.AddConstraint(&standbyCapConstraint{row: r, cap: limits.StandbyCap, who: s.Key})
	}

	// flatten the load: the month is judged by its most burdened member
	m.problem.Objective = func(g *solver.Grid) int64 {
		var worst int64
		for r := range staff {
			if count := int64(g.RowCount(r)); count > worst {
				worst = count
			}
		}
		return worst
	}

	return m, nil
}
