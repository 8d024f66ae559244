package planner

import (
	"math"

	"github.com/jakechorley/duty-planner/pkg/core/history"
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
	"github.com/jakechorley/duty-planner/pkg/solver"
)

// Inputs bundles everything one planning run consumes. All fields are
// read-only to the planner except StaffRecord balances, which are set from
// history before model construction.
type Inputs struct {
	Roster       *roster.Roster
	Days         []model.DayRecord
	Availability [][]model.CellMark
	History      *history.History

	// NextDays are the day records of the following month, used only by the
	// forecaster
	NextDays []model.DayRecord
}

// dutyModel is the constructed primary problem plus the bookkeeping needed
// to extract scores afterwards.
type dutyModel struct {
	problem   *solver.Problem
	fixedDuty [][]bool // manual (or exclusion-derived) duty per (staff, day)
	base      []int64  // scaled carried balance + one-time bonuses per staff
	dayPoints []int64  // scaled point value per day
}

// buildDutyModel constructs the primary constraint problem: one boolean per
// (staff, day), pre-fixed cells, the six hard rules and the fairness
// objective with its soft penalty terms.
func buildDutyModel(in Inputs, weights Weights, limits Limits) *dutyModel {
	staff := in.Roster.Staff
	days := in.Days

	m := &dutyModel{
		problem:   solver.NewProblem(len(staff), len(days)),
		fixedDuty: make([][]bool, len(staff)),
		base:      make([]int64, len(staff)),
		dayPoints: make([]int64, len(days)),
	}
	for c, d := range days {
		m.dayPoints[c] = int64(math.Round(d.Points * Scale))
	}

	m.fixCells(in, limits)
	m.addHardConstraints(in, limits)
	m.setObjective(in, weights, limits)
	return m
}

// fixCells pins every cell whose value is not the solver's to choose:
// exclusion-derived zeros (with the holiday manual-duty exception), manual
// marks, the weekend cooldown and the cross-month gap.
func (m *dutyModel) fixCells(in Inputs, limits Limits) {
	for r, s := range in.Roster.Staff {
		m.fixedDuty[r] = make([]bool, len(in.Days))
		excluded := s.Status.Excluded()

		for c, day := range in.Days {
			mark := in.Availability[r][c]

			if excluded {
				if day.Holiday && mark == model.MarkDuty {
					m.problem.Fix(r, c, true)
					m.fixedDuty[r][c] = true
				} else {
					m.problem.Fix(r, c, false)
				}
				continue
			}

			switch mark {
			case model.MarkDuty:
				m.problem.Fix(r, c, true)
				m.fixedDuty[r][c] = true
			case model.MarkStandby, model.MarkBlocked:
				m.problem.Fix(r, c, false)
			}
		}

		// weekend cooldown: no free weekend duty after a weekend duty last
		// cycle; manual assignments stay untouched
		if in.History.WeekendWorkers[s.Key] {
			for c, day := range in.Days {
				if day.Weekend() && !m.fixedDuty[r][c] {
					m.problem.Fix(r, c, false)
				}
			}
		}

		// cross-month gap, anchored on last cycle's final duty date
		if last, ok := in.History.LastDutyDate[s.Key]; ok {
			for c, day := range in.Days {
				if int(day.Date.Sub(last).Hours()/24) >= limits.MinGap {
					break
				}
				if !m.fixedDuty[r][c] {
					m.problem.Fix(r, c, false)
				}
			}
		}
	}
}

func (m *dutyModel) addHardConstraints(in Inputs, limits Limits) {
	staff := in.Roster.Staff
	days := in.Days

	// daily headcount
	for c := range days {
		m.problem.SetColTarget(c, limits.DailyDuty)
	}

	dayOf := make([]int, len(days))
	for c, d := range days {
		dayOf[c] = d.Day
	}

	var femaleRows []int
	for r, s := range staff {
		if s.Female {
			femaleRows = append(femaleRows, r)
		}
		if s.Status.Excluded() {
			// every cell is already pinned; the per-staff rules have
			// nothing left to constrain
			continue
		}

		// one duty per ISO week, with the configured manual-duty exemption
		weeks := make(map[int][]int)
		var weekOrder []int
		for c, d := range days {
			exempt := m.fixedDuty[r][c] && (d.Holiday || limits.ExemptAllManualFromWeeklyCap)
			if exempt {
				continue
			}
			if _, seen := weeks[d.ISOWeek]; !seen {
				weekOrder = append(weekOrder, d.ISOWeek)
			}
			weeks[d.ISOWeek] = append(weeks[d.ISOWeek], c)
		}
		grouped := make([][]int, 0, len(weekOrder))
		for _, w := range weekOrder {
			grouped = append(grouped, weeks[w])
		}
		m.problem.AddConstraint(&weeklyCapConstraint{row: r, weeks: grouped, who: s.Key})

		m.problem.AddConstraint(&minGapConstraint{
			row:       r,
			minGap:    limits.MinGap,
			dayOf:     dayOf,
			fixedDuty: m.fixedDuty[r],
			who:       s.Key,
		})

		maxDuties := limits.DutyCap
		if s.Female {
			maxDuties--
		}
		m.problem.AddConstraint(&dutyCapConstraint{row: r, cap: maxDuties, who: s.Key})
	}

	if len(femaleRows) > 0 {
		m.problem.AddConstraint(&genderPairConstraint{rows: femaleRows, cols: len(days)})
	}
}

// setObjective installs the fairness objective: (max score − min score) +
// 100 × (max duty count − min duty count) + the weighted soft penalties.
// The 100× factor makes duty-count balance dominate point smoothing at the
// margin.
func (m *dutyModel) setObjective(in Inputs, weights Weights, limits Limits) {
	staff := in.Roster.Staff
	numDays := len(in.Days)

	for r, s := range staff {
		m.base[r] = int64(math.Round(s.Balance * Scale))
		// one-time bonuses lift a starting score without earning points
		if s.Status.Has(model.StatusSBF) {
			m.base[r] += int64(math.Round(limits.StatusBonus * Scale))
		}
		if s.Status.Has(model.StatusNew) {
			m.base[r] += int64(math.Round(in.History.AvgOffset * Scale))
		}
	}

	var pairs [][2]int
	for _, pair := range in.Roster.Pairs() {
		pairs = append(pairs, [2]int{pair[0].Row, pair[1].Row})
	}

	branchRows := make(map[string][]int)
	for _, s := range staff {
		if s.Branch != "" {
			branchRows[s.Branch] = append(branchRows[s.Branch], s.Row)
		}
	}

	var driverRows []int
	for r, s := range staff {
		if s.Driver {
			driverRows = append(driverRows, r)
		}
	}

	scores := make([]int64, len(staff))
	counts := make([]int, len(staff))

	m.problem.Objective = func(g *solver.Grid) int64 {
		for r := range staff {
			score := m.base[r]
			count := 0
			for c := 0; c < numDays; c++ {
				if g.At(r, c) {
					score += m.dayPoints[c]
					count++
				}
			}
			scores[r] = score
			counts[r] = count
		}

		maxScore, minScore := scores[0], scores[0]
		maxCount, minCount := counts[0], counts[0]
		for r := 1; r < len(staff); r++ {
			maxScore = max(maxScore, scores[r])
			minScore = min(minScore, scores[r])
			maxCount = max(maxCount, counts[r])
			minCount = min(minCount, counts[r])
		}

		var penalties int64

		for _, p := range pairs {
			for c := 0; c < numDays; c++ {
				if g.At(p[0], c) != g.At(p[1], c) {
					penalties += int64(weights.PartnerSplit)
				}
			}
		}

		for _, rows := range branchRows {
			if len(rows) < 2 {
				continue
			}
			for c := 0; c < numDays; c++ {
				onDuty := 0
				for _, r := range rows {
					if g.At(r, c) {
						onDuty++
					}
				}
				if onDuty == 2 {
					penalties += int64(weights.BranchDuplicate)
				}
			}
		}

		if len(driverRows) > 0 {
			for c := 0; c < numDays; c++ {
				drivers := 0
				for _, r := range driverRows {
					if g.At(r, c) {
						drivers++
					}
				}
				if drivers != 1 {
					penalties += int64(weights.DriverMix)
				}
			}
		}

		for r := range staff {
			if counts[r] == 0 {
				penalties += int64(weights.ZeroDuty)
			}
		}

		return (maxScore - minScore) + 100*int64(maxCount-minCount) + penalties
	}
}
