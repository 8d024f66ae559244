package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/duty-planner/internal/config"
	"github.com/jakechorley/duty-planner/pkg/core/calendar"
	"github.com/jakechorley/duty-planner/pkg/core/history"
	"github.com/jakechorley/duty-planner/pkg/core/planner"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
)

// stringifyRows converts raw sheet values into the string grid the core
// packages consume. Numbers keep their spreadsheet rendering via %v.
func stringifyRows(rows [][]interface{}) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			out[i][j] = fmt.Sprintf("%v", cell)
		}
	}
	return out
}

// columnLetter converts a 0-based column index to A1 notation (A, B, ... AA)
func columnLetter(col int) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}

// a1Range builds an A1 range for a tab from 0-based cell coordinates,
// inclusive on both ends
func a1Range(tab string, startRow, startCol, endRow, endCol int) string {
	return fmt.Sprintf("%s!%s%d:%s%d",
		quoteTab(tab), columnLetter(startCol), startRow+1, columnLetter(endCol), endRow+1)
}

// a1Cell builds an A1 reference for one 0-based cell
func a1Cell(tab string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteTab(tab), columnLetter(col), row+1)
}

// quoteTab wraps a tab name in single quotes for A1 notation
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// parseHolidayDates reads the holiday table: the first non-empty cell of each
// row that parses as a date wins. Both ISO and day-first renderings appear in
// the sheet's history.
func parseHolidayDates(rows [][]string) []time.Time {
	layouts := []string{"2006-01-02", "02/01/2006", "2 Jan 2006", "2006-01-02T15:04:05"}

	var dates []time.Time
	for _, row := range rows {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			for _, layout := range layouts {
				if d, err := time.Parse(layout, cell); err == nil {
					dates = append(dates, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
					break
				}
			}
			break // only the first populated cell per row is the date
		}
	}
	return dates
}

// Config-to-domain conversions. The core packages never see config structs.

func pointSchedule(cfg *config.Config) calendar.PointSchedule {
	return calendar.PointSchedule{
		Weekday: cfg.Points.Weekday,
		Friday:  cfg.Points.Friday,
		Weekend: cfg.Points.Weekend,
		Holiday: cfg.Points.Holiday,
	}
}

func plannerWeights(cfg *config.Config) planner.Weights {
	return planner.Weights{
		PartnerSplit:    cfg.Weights.PartnerSplit,
		BranchDuplicate: cfg.Weights.BranchDuplicate,
		DriverMix:       cfg.Weights.DriverMix,
		ZeroDuty:        cfg.Weights.ZeroDuty,
	}
}

func plannerLimits(cfg *config.Config) planner.Limits {
	return planner.Limits{
		DailyDuty:                    cfg.Limits.DailyDuty,
		MinGap:                       cfg.Limits.MinGap,
		DutyCap:                      cfg.Limits.DutyCap,
		DailyStandby:                 cfg.Limits.DailyStandby,
		StandbySeparation:            cfg.Limits.StandbySeparation,
		StandbyCap:                   cfg.Limits.StandbyCap,
		NormTolerance:                cfg.Limits.NormTolerance,
		StatusBonus:                  cfg.Limits.StatusBonus,
		ExemptAllManualFromWeeklyCap: cfg.ExemptAllManualFromWeeklyCap,
	}
}

func rosterGeometry(cfg *config.Config) roster.Geometry {
	return roster.Geometry{
		HeaderRows:  cfg.Geometry.HeaderRows,
		NameCol:     cfg.Geometry.NameCol,
		DayStartCol: cfg.Geometry.DayStartCol,
		BalanceCol:  cfg.Geometry.BalanceCol,
		StatusCol:   cfg.Geometry.StatusCol,
	}
}

func historyLayout(cfg *config.Config) history.Layout {
	return history.Layout{
		ScaleRow:        cfg.HistoryLayout.ScaleRow,
		ScaleCol:        cfg.HistoryLayout.ScaleCol,
		AdjustStartRow:  cfg.HistoryLayout.AdjustStartRow,
		AdjustNameCol:   cfg.HistoryLayout.AdjustNameCol,
		AdjustChangeCol: cfg.HistoryLayout.AdjustChangeCol,
		AdjustBaseCol:   cfg.HistoryLayout.AdjustBaseCol,
	}
}
