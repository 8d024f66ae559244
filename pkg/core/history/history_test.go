package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
)

// prevSheet builds an empty grid large enough for the default layout
func prevSheet() [][]string {
	rows := make([][]string, 90)
	for i := range rows {
		rows[i] = make([]string, 60)
	}
	return rows
}

func withStaff(rows [][]string, idx int, name string, marks map[int]string) {
	r := roster.DefaultGeometry().HeaderRows + idx
	rows[r][1] = name
	for day, mark := range marks {
		rows[r][5+day-1] = mark
	}
}

func TestBuild_EmptyPrevious(t *testing.T) {
	h := Build(nil, roster.DefaultGeometry(), DefaultLayout(), 2026, time.May)

	assert.InDelta(t, 1.0, h.Scale, 1e-9)
	assert.Empty(t, h.Duties)
	assert.Empty(t, h.WeekendWorkers)
	assert.Empty(t, h.Overrides)
	assert.Zero(t, h.AvgOffset)
}

func TestBuild_ReadsDutiesAndWeekendWorkers(t *testing.T) {
	rows := prevSheet()
	// May 2026: the 2nd and 3rd are the first weekend
	withStaff(rows, 0, "ALPHA", map[int]string{4: "D", 20: "D"})
	withStaff(rows, 1, "BRAVO", map[int]string{2: "D"})
	withStaff(rows, 2, "CHARLIE", map[int]string{7: "S", 8: "X"})

	h := Build(rows, roster.DefaultGeometry(), DefaultLayout(), 2026, time.May)

	assert.Equal(t, []int{4, 20}, h.Duties["ALPHA"])
	assert.Equal(t, []int{2}, h.Duties["BRAVO"])
	assert.Empty(t, h.Duties["CHARLIE"]) // standby and blocks are not duties

	assert.False(t, h.WeekendWorkers["ALPHA"])
	assert.True(t, h.WeekendWorkers["BRAVO"])

	assert.Equal(t, time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC), h.LastDutyDate["ALPHA"])
	assert.Equal(t, time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC), h.LastDutyDate["BRAVO"])
}

func TestBuild_ReadsScale(t *testing.T) {
	layout := DefaultLayout()

	rows := prevSheet()
	rows[layout.ScaleRow][layout.ScaleCol] = "2.5"
	h := Build(rows, roster.DefaultGeometry(), layout, 2026, time.May)
	assert.InDelta(t, 2.5, h.Scale, 1e-9)

	// garbage or non-positive values degrade to 1
	rows[layout.ScaleRow][layout.ScaleCol] = "oops"
	assert.InDelta(t, 1.0, Build(rows, roster.DefaultGeometry(), layout, 2026, time.May).Scale, 1e-9)
	rows[layout.ScaleRow][layout.ScaleCol] = "-2"
	assert.InDelta(t, 1.0, Build(rows, roster.DefaultGeometry(), layout, 2026, time.May).Scale, 1e-9)
}

func TestBuild_Adjustments(t *testing.T) {
	layout := DefaultLayout()
	rows := prevSheet()
	rows[layout.ScaleRow][layout.ScaleCol] = "2"

	rows[layout.AdjustStartRow][layout.AdjustNameCol] = "Alpha"
	rows[layout.AdjustStartRow][layout.AdjustChangeCol] = "ADD 1X WE"
	rows[layout.AdjustStartRow][layout.AdjustBaseCol] = "3.0"

	rows[layout.AdjustStartRow+1][layout.AdjustNameCol] = "BRAVO"
	rows[layout.AdjustStartRow+1][layout.AdjustChangeCol] = "MINUS 1X F"
	rows[layout.AdjustStartRow+1][layout.AdjustBaseCol] = "1.0"

	h := Build(rows, roster.DefaultGeometry(), layout, 2026, time.May)

	require.Len(t, h.Adjustments, 2)
	// +2.0 weekend points at scale 2 => +1.0
	assert.InDelta(t, 4.0, h.Overrides["ALPHA"], 1e-9)
	// -1.5 friday points at scale 2 => -0.75
	assert.InDelta(t, 0.25, h.Overrides["BRAVO"], 1e-9)
	assert.Empty(t, h.Diagnostics)
}

func TestBuild_AdjustmentUnrecognisedToken(t *testing.T) {
	layout := DefaultLayout()
	rows := prevSheet()

	rows[layout.AdjustStartRow][layout.AdjustNameCol] = "ALPHA"
	rows[layout.AdjustStartRow][layout.AdjustChangeCol] = "TRIPLE BONUS"
	rows[layout.AdjustStartRow][layout.AdjustBaseCol] = "2.0"

	h := Build(rows, roster.DefaultGeometry(), layout, 2026, time.May)

	// base value is still honored as the override
	assert.InDelta(t, 2.0, h.Overrides["ALPHA"], 1e-9)
	require.Len(t, h.Diagnostics, 1)
	assert.Equal(t, model.DiagUnparseableCell, h.Diagnostics[0].Kind)
	assert.Equal(t, "ALPHA", h.Diagnostics[0].Subject)
}

func TestBuild_AvgOffset(t *testing.T) {
	rows := prevSheet()
	rows[70][10] = "Avg Offset"
	rows[70][11] = "1.75"

	h := Build(rows, roster.DefaultGeometry(), DefaultLayout(), 2026, time.May)
	assert.InDelta(t, 1.75, h.AvgOffset, 1e-9)
}

func TestBuild_AvgOffsetMissingValue(t *testing.T) {
	rows := prevSheet()
	rows[70][10] = "avg offset"
	rows[70][11] = "tbd"

	h := Build(rows, roster.DefaultGeometry(), DefaultLayout(), 2026, time.May)
	assert.Zero(t, h.AvgOffset)
}

func TestHistory_Balance(t *testing.T) {
	h := Empty()
	h.Overrides["ALPHA"] = 5.5

	assert.InDelta(t, 5.5, h.Balance("ALPHA", 2.0), 1e-9)
	assert.InDelta(t, 2.0, h.Balance("BRAVO", 2.0), 1e-9)
}
