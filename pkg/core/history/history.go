// Package history extracts the prior-cycle facts that feed the hard and
// soft rules: weekend workers, per-staff duty days, carried balances, the
// previous normalization scale and manual point adjustments. A missing
// previous cycle is a valid state; everything degrades to empty/zero.
package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/duty-planner/pkg/core/calendar"
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
)

// Layout describes where the history extras live in the previous month's
// sheet: the normalization scale reference cell and the manual-adjustment
// block (name, change token, base value). Indices are 0-based.
type Layout struct {
	ScaleRow int
	ScaleCol int

	AdjustStartRow  int
	AdjustNameCol   int
	AdjustChangeCol int
	AdjustBaseCol   int
}

// DefaultLayout mirrors the production sheet
func DefaultLayout() Layout {
	return Layout{
		ScaleRow:        81,
		ScaleCol:        43,
		AdjustStartRow:  36,
		AdjustNameCol:   48,
		AdjustChangeCol: 49,
		AdjustBaseCol:   50,
	}
}

// History holds every prior-cycle fact the planner consumes
type History struct {
	// WeekendWorkers is the set of staff keys that held a weekend duty last cycle
	WeekendWorkers map[string]bool

	// Duties lists last cycle's duty day numbers per staff key
	Duties map[string][]int

	// LastDutyDate is the date of each staff's final duty last cycle
	LastDutyDate map[string]time.Time

	// Scale is last cycle's normalization scale (1 when missing or non-positive)
	Scale float64

	// Adjustments are the parsed manual change rows
	Adjustments []model.ManualAdjustment

	// Overrides maps staff keys to the balance value that replaces the
	// stored one: adjustment base + signed delta
	Overrides map[string]float64

	// AvgOffset is last cycle's average-offset reference value, used as the
	// synthetic starting bonus for newly joined staff
	AvgOffset float64

	Diagnostics []model.Diagnostic
}

// Empty returns the history of a first run: no previous cycle at all
func Empty() *History {
	return &History{
		WeekendWorkers: make(map[string]bool),
		Duties:         make(map[string][]int),
		LastDutyDate:   make(map[string]time.Time),
		Overrides:      make(map[string]float64),
		Scale:          1,
	}
}

// Build extracts history from the previous month's full output grid.
// prevRows may be nil for a first run.
func Build(prevRows [][]string, geo roster.Geometry, layout Layout, prevYear int, prevMonth time.Month) *History {
	h := Empty()
	if len(prevRows) == 0 {
		return h
	}

	h.Scale = readScale(prevRows, layout)
	h.readDuties(prevRows, geo, prevYear, prevMonth)
	h.readAdjustments(prevRows, layout)
	h.AvgOffset = findAvgOffset(prevRows)
	return h
}

// readScale pulls last cycle's normalization scale from its reference cell,
// defaulting to 1 when missing or non-positive.
func readScale(rows [][]string, layout Layout) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cellAt(rows, layout.ScaleRow, layout.ScaleCol)), 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}

// readDuties scans the previous grid for "D" cells, recording duty day lists,
// final duty dates and the weekend-worker set.
func (h *History) readDuties(rows [][]string, geo roster.Geometry, year int, month time.Month) {
	numDays := calendar.DaysIn(year, month)

	for i := geo.HeaderRows; i < len(rows); i++ {
		name := strings.TrimSpace(cellAt(rows, i, geo.NameCol))
		if name == "" || strings.EqualFold(name, "nan") {
			break // end of the staff block
		}
		key := roster.Key(name)

		for d := 1; d <= numDays; d++ {
			mark := strings.ToUpper(strings.TrimSpace(cellAt(rows, i, geo.DayStartCol+d-1)))
			if mark != "D" {
				continue
			}
			h.Duties[key] = append(h.Duties[key], d)

			date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
			h.LastDutyDate[key] = date
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				h.WeekendWorkers[key] = true
			}
		}
	}
}

// readAdjustments parses the manual change block. Each parsed row yields a
// balance override of base + delta, with the delta scaled by last cycle's
// normalization scale. Change text matching no canonical token is recorded
// as a diagnostic and the row's base value is used unchanged.
func (h *History) readAdjustments(rows [][]string, layout Layout) {
	for i := layout.AdjustStartRow; i < len(rows); i++ {
		name := strings.TrimSpace(cellAt(rows, i, layout.AdjustNameCol))
		if name == "" || strings.EqualFold(name, "nan") {
			continue
		}
		key := roster.Key(name)
		change := cellAt(rows, i, layout.AdjustChangeCol)
		base, err := strconv.ParseFloat(strings.TrimSpace(cellAt(rows, i, layout.AdjustBaseCol)), 64)
		if err != nil {
			base = 0
		}

		kind := model.ParseAdjustment(change)
		if kind == model.AdjNone && strings.TrimSpace(change) != "" {
			h.Diagnostics = append(h.Diagnostics, model.Diagnostic{
				Kind:    model.DiagUnparseableCell,
				Subject: name,
				Detail:  fmt.Sprintf("unrecognised change token %q", strings.TrimSpace(change)),
			})
		}

		h.Adjustments = append(h.Adjustments, model.ManualAdjustment{
			StaffKey: key,
			Kind:     kind,
			Raw:      change,
			Base:     base,
		})
		h.Overrides[key] = base + kind.Delta(h.Scale)
	}
}

// findAvgOffset locates the "Avg Offset" label anywhere in the previous
// sheet and returns the numeric value in the cell to its right, 0 if absent.
func findAvgOffset(rows [][]string) float64 {
	for _, row := range rows {
		for c, raw := range row {
			if !strings.Contains(strings.ToLower(raw), "avg offset") {
				continue
			}
			if c+1 < len(row) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[c+1]), 64); err == nil {
					return v
				}
			}
			return 0
		}
	}
	return 0
}

// Balance returns the carried balance for a staff member: the manual
// override when one exists, otherwise the stored value.
func (h *History) Balance(key string, stored float64) float64 {
	if v, ok := h.Overrides[key]; ok {
		return v
	}
	return stored
}

func cellAt(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	row := rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}
