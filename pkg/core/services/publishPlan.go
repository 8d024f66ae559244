package services

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/internal/config"
	"github.com/jakechorley/duty-planner/pkg/core/calendar"
)

// maxDayColumns is the width of the day grid in every monthly tab; months
// shorter than this get their trailing columns hidden.
const maxDayColumns = 31

// SheetWriter defines the sheet operations needed to publish a plan
type SheetWriter interface {
	SheetReader
	UpdateValues(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearValues(ctx context.Context, spreadsheetID, sheetRange string) error
	SheetIDByTitle(ctx context.Context, spreadsheetID, title string) (int64, error)
	DuplicateSheet(ctx context.Context, spreadsheetID string, sourceSheetID int64, newTitle string) (int64, error)
	HideColumns(ctx context.Context, spreadsheetID string, sheetID int64, startCol, endCol int64) error
}

// PublishOutcome names the worksheets a publish run produced
type PublishOutcome struct {
	OutputTab string
	NextTab   string
}

// PublishPlan writes a completed plan back to the spreadsheet: the source tab
// is duplicated as the output tab ("<tab> D") holding the assigned grid,
// normalized balances, forecasts and the normalization scale; then next
// month's working tab is templated from the current one.
func PublishPlan(
	ctx context.Context,
	client SheetWriter,
	cfg *config.Config,
	logger *zap.Logger,
	res *PlanMonthResult,
) (*PublishOutcome, error) {
	outputTab := res.MonthTab + " D"
	logger.Info("Publishing plan",
		zap.String("source", res.MonthTab),
		zap.String("output", outputTab))

	srcID, err := client.SheetIDByTitle(ctx, cfg.PlannerSheetID, res.MonthTab)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source tab: %w", err)
	}

	if _, err := client.DuplicateSheet(ctx, cfg.PlannerSheetID, srcID, outputTab); err != nil {
		return nil, fmt.Errorf("failed to create output tab: %w", err)
	}

	if err := writeAssignments(ctx, client, cfg, outputTab, res); err != nil {
		return nil, err
	}

	nextTab, err := templateNextMonth(ctx, client, cfg, logger, res)
	if err != nil {
		return nil, err
	}

	logger.Info("Plan published",
		zap.String("output", outputTab),
		zap.String("next", nextTab))
	return &PublishOutcome{OutputTab: outputTab, NextTab: nextTab}, nil
}

// writeAssignments fills the output tab: role grid, balances, forecasts and
// the scale reference cell
func writeAssignments(ctx context.Context, client SheetWriter, cfg *config.Config, tab string, res *PlanMonthResult) error {
	geo := cfg.Geometry
	numStaff := len(res.Plan.Staff)
	numDays := len(res.Days)

	grid := make([][]interface{}, numStaff)
	balances := make([][]interface{}, numStaff)
	forecasts := make([][]interface{}, numStaff)
	for r, outcome := range res.Plan.Staff {
		grid[r] = make([]interface{}, numDays)
		for c, role := range outcome.Roles {
			grid[r][c] = role.String()
		}
		balances[r] = []interface{}{roundTo(outcome.Balance, 2)}
		forecasts[r] = []interface{}{outcome.ForecastDays}
	}

	gridRange := a1Range(tab,
		geo.HeaderRows, geo.DayStartCol,
		geo.HeaderRows+numStaff-1, geo.DayStartCol+numDays-1)
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, gridRange, grid); err != nil {
		return fmt.Errorf("failed to write role grid: %w", err)
	}

	balanceRange := a1Range(tab,
		geo.HeaderRows, geo.BalanceCol,
		geo.HeaderRows+numStaff-1, geo.BalanceCol)
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, balanceRange, balances); err != nil {
		return fmt.Errorf("failed to write balances: %w", err)
	}

	// forecasts sit in the column right of the status column
	forecastRange := a1Range(tab,
		geo.HeaderRows, geo.StatusCol+1,
		geo.HeaderRows+numStaff-1, geo.StatusCol+1)
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, forecastRange, forecasts); err != nil {
		return fmt.Errorf("failed to write forecasts: %w", err)
	}

	scaleCell := a1Cell(tab, cfg.HistoryLayout.ScaleRow, cfg.HistoryLayout.ScaleCol)
	scale := [][]interface{}{{roundTo(res.Plan.NormScale, 3)}}
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, scaleCell, scale); err != nil {
		return fmt.Errorf("failed to write normalization scale: %w", err)
	}

	return nil
}

// templateNextMonth duplicates the current tab under next month's name,
// clears the working areas, carries the balances forward and hides the day
// columns past the month's end
func templateNextMonth(ctx context.Context, client SheetWriter, cfg *config.Config, logger *zap.Logger, res *PlanMonthResult) (string, error) {
	nextYear, nextMonth := calendar.NextMonth(res.Plan.Year, res.Plan.Month)
	nextTab := cfg.MonthTab(nextYear, nextMonth)
	geo := cfg.Geometry
	numStaff := len(res.Plan.Staff)

	srcID, err := client.SheetIDByTitle(ctx, cfg.PlannerSheetID, res.MonthTab)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source tab: %w", err)
	}
	nextID, err := client.DuplicateSheet(ctx, cfg.PlannerSheetID, srcID, nextTab)
	if err != nil {
		return "", fmt.Errorf("failed to create next month tab: %w", err)
	}

	// fresh grid and fresh statuses
	gridRange := a1Range(nextTab,
		geo.HeaderRows, geo.DayStartCol,
		geo.HeaderRows+numStaff-1, geo.DayStartCol+maxDayColumns-1)
	if err := client.ClearValues(ctx, cfg.PlannerSheetID, gridRange); err != nil {
		return "", fmt.Errorf("failed to clear next month grid: %w", err)
	}
	statusRange := a1Range(nextTab,
		geo.HeaderRows, geo.StatusCol,
		geo.HeaderRows+numStaff-1, geo.StatusCol+1)
	if err := client.ClearValues(ctx, cfg.PlannerSheetID, statusRange); err != nil {
		return "", fmt.Errorf("failed to clear next month statuses: %w", err)
	}

	balances := make([][]interface{}, numStaff)
	for r, outcome := range res.Plan.Staff {
		balances[r] = []interface{}{roundTo(outcome.Balance, 2)}
	}
	balanceRange := a1Range(nextTab,
		geo.HeaderRows, geo.BalanceCol,
		geo.HeaderRows+numStaff-1, geo.BalanceCol)
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, balanceRange, balances); err != nil {
		return "", fmt.Errorf("failed to carry balances forward: %w", err)
	}

	firstOfMonth := fmt.Sprintf("%04d-%02d-01", nextYear, int(nextMonth))
	headerCell := a1Cell(nextTab, 0, geo.DayStartCol)
	if err := client.UpdateValues(ctx, cfg.PlannerSheetID, headerCell, [][]interface{}{{firstOfMonth}}); err != nil {
		return "", fmt.Errorf("failed to write next month header: %w", err)
	}

	numDays := calendar.DaysIn(nextYear, nextMonth)
	if numDays < maxDayColumns {
		start := int64(geo.DayStartCol + numDays)
		end := int64(geo.DayStartCol + maxDayColumns)
		if err := client.HideColumns(ctx, cfg.PlannerSheetID, nextID, start, end); err != nil {
			return "", fmt.Errorf("failed to hide trailing day columns: %w", err)
		}
	}

	logger.Debug("Next month tab templated",
		zap.String("tab", nextTab),
		zap.Int("days", numDays))
	return nextTab, nil
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
