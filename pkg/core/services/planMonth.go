package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/internal/config"
	"github.com/jakechorley/duty-planner/pkg/core/calendar"
	"github.com/jakechorley/duty-planner/pkg/core/history"
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/planner"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
	"github.com/jakechorley/duty-planner/pkg/solver"
)

// SheetReader defines the read operations needed to assemble planning inputs
type SheetReader interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
}

// PlanMonthResult bundles the plan with the ingestion products the publisher
// needs afterwards
type PlanMonthResult struct {
	Plan     *model.PlanResult
	Roster   *roster.Roster
	Days     []model.DayRecord
	NextDays []model.DayRecord
	MonthTab string
}

// PlanMonth runs the full pipeline for one month: fetch the monthly tab and
// supporting tables, build the typed inputs, and solve.
//
// A missing previous-month tab is a valid first run and yields empty history.
func PlanMonth(
	ctx context.Context,
	reader SheetReader,
	cfg *config.Config,
	logger *zap.Logger,
	year int,
	month time.Month,
	opts solver.Options,
) (*PlanMonthResult, error) {
	monthTab := cfg.MonthTab(year, month)
	logger.Info("Planning month",
		zap.Int("year", year),
		zap.String("month", month.String()),
		zap.String("tab", monthTab))

	logger.Debug("Fetching staff grid")
	rawStaff, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(monthTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month tab %q: %w", monthTab, err)
	}
	staffRows := stringifyRows(rawStaff)

	logger.Debug("Fetching partner table")
	rawPartners, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(cfg.PartnerTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partner tab: %w", err)
	}

	logger.Debug("Fetching branch table")
	rawBranches, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(cfg.BranchTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch tab: %w", err)
	}

	rosterIdx, err := roster.Build(staffRows, stringifyRows(rawPartners), stringifyRows(rawBranches), rosterGeometry(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build roster: %w", err)
	}
	logger.Info("Roster built",
		zap.Int("staff", len(rosterIdx.Staff)),
		zap.Int("diagnostics", len(rosterIdx.Diagnostics)))

	days, err := buildDays(ctx, reader, cfg, year, month, logger)
	if err != nil {
		return nil, err
	}
	nextYear, nextMonth := calendar.NextMonth(year, month)
	nextDays, err := buildDays(ctx, reader, cfg, nextYear, nextMonth, logger)
	if err != nil {
		return nil, err
	}

	availability, err := roster.ParseAvailability(staffRows, rosterGeometry(cfg), len(days))
	if err != nil {
		return nil, fmt.Errorf("failed to parse availability: %w", err)
	}

	hist := fetchHistory(ctx, reader, cfg, year, month, logger)

	in := planner.Inputs{
		Roster:       rosterIdx,
		Days:         days,
		Availability: availability,
		History:      hist,
		NextDays:     nextDays,
	}

	plan, err := planner.Plan(ctx, in, plannerWeights(cfg), plannerLimits(cfg), opts, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Plan complete",
		zap.String("run_id", plan.RunID.String()),
		zap.Duration("elapsed", plan.Elapsed),
		zap.Bool("standby_ok", plan.StandbyErr == nil))

	return &PlanMonthResult{
		Plan:     plan,
		Roster:   rosterIdx,
		Days:     days,
		NextDays: nextDays,
		MonthTab: monthTab,
	}, nil
}

// buildDays merges the holiday tab with the configured recurring rules and
// constructs the month's day records
func buildDays(ctx context.Context, reader SheetReader, cfg *config.Config, year int, month time.Month, logger *zap.Logger) ([]model.DayRecord, error) {
	var holidays []time.Time

	if cfg.HolidayTab != "" {
		raw, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(cfg.HolidayTab))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch holiday tab: %w", err)
		}
		holidays = parseHolidayDates(stringifyRows(raw))
	}

	ruleDates, err := calendar.ExpandHolidayRules(cfg.HolidayRules, year, month)
	if err != nil {
		return nil, err
	}
	holidays = append(holidays, ruleDates...)

	days := calendar.BuildMonth(year, month, holidays, pointSchedule(cfg))
	logger.Debug("Calendar built",
		zap.Int("year", year),
		zap.String("month", month.String()),
		zap.Int("days", len(days)))
	return days, nil
}

// fetchHistory reads the previous month's tab. Absence is a first run, not
// an error.
func fetchHistory(ctx context.Context, reader SheetReader, cfg *config.Config, year int, month time.Month, logger *zap.Logger) *history.History {
	prevYear, prevMonth := calendar.PrevMonth(year, month)
	prevTab := cfg.MonthTab(prevYear, prevMonth)

	raw, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(prevTab))
	if err != nil {
		logger.Warn("No previous month tab, running without history",
			zap.String("tab", prevTab),
			zap.Error(err))
		return history.Empty()
	}

	hist := history.Build(stringifyRows(raw), rosterGeometry(cfg), historyLayout(cfg), prevYear, prevMonth)
	logger.Debug("History extracted",
		zap.Int("staff_with_duties", len(hist.Duties)),
		zap.Int("weekend_workers", len(hist.WeekendWorkers)),
		zap.Float64("scale", hist.Scale),
		zap.Int("adjustments", len(hist.Adjustments)))
	return hist
}
