package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/internal/config"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
)

// RosterPreview is the ingestion-only view of a month: the parsed roster
// without any solving
type RosterPreview struct {
	Roster   *roster.Roster
	MonthTab string
}

// PreviewRoster fetches and parses the roster tables for a month. Useful for
// checking name matching and statuses before a planning run.
func PreviewRoster(
	ctx context.Context,
	reader SheetReader,
	cfg *config.Config,
	logger *zap.Logger,
	year int,
	month time.Month,
) (*RosterPreview, error) {
	monthTab := cfg.MonthTab(year, month)
	logger.Debug("Previewing roster", zap.String("tab", monthTab))

	rawStaff, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(monthTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month tab %q: %w", monthTab, err)
	}
	rawPartners, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(cfg.PartnerTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partner tab: %w", err)
	}
	rawBranches, err := reader.GetValues(ctx, cfg.PlannerSheetID, quoteTab(cfg.BranchTab))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch tab: %w", err)
	}

	rosterIdx, err := roster.Build(
		stringifyRows(rawStaff),
		stringifyRows(rawPartners),
		stringifyRows(rawBranches),
		rosterGeometry(cfg),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster: %w", err)
	}

	return &RosterPreview{Roster: rosterIdx, MonthTab: monthTab}, nil
}
