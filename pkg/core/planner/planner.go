// Package planner turns a roster, a calendar and last cycle's history into
// a full month assignment: a primary duty pass, a secondary standby pass,
// then normalization and forecasting on the outcome.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/points"
	"github.com/jakechorley/duty-planner/pkg/solver"
)

// Plan runs the full two-pass assignment over the given inputs.
//
// A failed duty pass is fatal: the run returns nil and an *InfeasibleError.
// A failed standby pass is not: the duty assignment stands, standby cells
// stay empty and the failure is carried on PlanResult.StandbyErr. Each pass
// gets the full solver budget from opts.
func Plan(ctx context.Context, in Inputs, weights Weights, limits Limits, opts solver.Options, logger *zap.Logger) (*model.PlanResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	start := time.Now()

	// manual adjustment overrides replace the stored balances before
	// anything is scored
	for _, s := range in.Roster.Staff {
		s.Balance = in.History.Balance(s.Key, s.Balance)
	}

	duty := buildDutyModel(in, weights, limits)

	logger.Info("solving duty pass",
		zap.Int("staff", len(in.Roster.Staff)),
		zap.Int("days", len(in.Days)),
		zap.Duration("budget", opts.Budget),
	)
	dutyRes, err := solver.Solve(ctx, duty.problem, opts)
	if err != nil {
		return nil, fmt.Errorf("duty pass: %w", err)
	}
	if !dutyRes.Feasible {
		logger.Warn("duty pass infeasible", zap.Strings("violations", dutyRes.Violations))
		return nil, &model.InfeasibleError{Pass: model.PassDuty, Violations: dutyRes.Violations}
	}
	logger.Info("duty pass solved",
		zap.Int64("objective", dutyRes.Objective),
		zap.Int64("iterations", dutyRes.Iterations),
		zap.Duration("elapsed", dutyRes.Elapsed),
	)

	standbyGrid, standbyErr := solveStandby(ctx, in, limits, opts, dutyRes.Grid, logger)

	result := assemble(in, limits, duty, dutyRes.Grid, standbyGrid)
	result.StandbyErr = standbyErr
	result.Elapsed = time.Since(start)
	return result, nil
}

func validate(in Inputs) error {
	if in.Roster == nil || len(in.Roster.Staff) == 0 {
		return fmt.Errorf("planner: empty roster")
	}
	if len(in.Days) == 0 {
		return fmt.Errorf("planner: empty calendar")
	}
	if in.History == nil {
		return fmt.Errorf("planner: nil history")
	}
	if len(in.Availability) != len(in.Roster.Staff) {
		return fmt.Errorf("planner: availability has %d rows for %d staff",
			len(in.Availability), len(in.Roster.Staff))
	}
	for i, row := range in.Availability {
		if len(row) != len(in.Days) {
			return fmt.Errorf("planner: availability row %d has %d days, want %d",
				i, len(row), len(in.Days))
		}
	}
	return nil
}

// solveStandby runs the secondary pass. Any failure is returned as the
// structured error for PlanResult.StandbyErr, with a nil grid.
func solveStandby(ctx context.Context, in Inputs, limits Limits, opts solver.Options, duty *solver.Grid, logger *zap.Logger) (*solver.Grid, error) {
	standby, err := buildStandbyModel(in, limits, duty)
	if err != nil {
		logger.Warn("standby pass skipped", zap.Error(err))
		return nil, err
	}

	res, err := solver.Solve(ctx, standby.problem, opts)
	if err != nil {
		return nil, fmt.Errorf("standby pass: %w", err)
	}
	if !res.Feasible {
		logger.Warn("standby pass infeasible", zap.Strings("violations", res.Violations))
		return nil, &model.InfeasibleError{Pass: model.PassStandby, Violations: res.Violations}
	}
	logger.Info("standby pass solved",
		zap.Int64("objective", res.Objective),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res.Grid, nil
}

// assemble extracts roles and scores from the solved grids, normalizes the
// scores into carried balances and forecasts the next cycle.
func assemble(in Inputs, limits Limits, duty *dutyModel, dutyGrid, standbyGrid *solver.Grid) *model.PlanResult {
	staff := in.Roster.Staff
	first := in.Days[0].Date

	result := &model.PlanResult{
		RunID: uuid.New(),
		Year:  first.Year(),
		Month: first.Month(),
		Staff: make([]model.StaffOutcome, len(staff)),
	}
	result.Diagnostics = append(result.Diagnostics, in.Roster.Diagnostics...)
	result.Diagnostics = append(result.Diagnostics, in.History.Diagnostics...)

	scores := make([]float64, len(staff))
	for r, s := range staff {
		outcome := model.StaffOutcome{
			Key:   s.Key,
			Roles: make([]model.Role, len(in.Days)),
		}
		score := duty.base[r]
		for c := range in.Days {
			switch {
			case dutyGrid.At(r, c):
				outcome.Roles[c] = model.RoleDuty
				outcome.DutyCount++
				score += duty.dayPoints[c]
			case standbyGrid != nil && standbyGrid.At(r, c):
				outcome.Roles[c] = model.RoleStandby
				outcome.StandbyCount++
			}
		}
		outcome.Score = float64(score) / Scale
		scores[r] = outcome.Score
		result.Staff[r] = outcome
	}

	norm := points.Normalize(scores, limits.NormTolerance)
	result.NormScale = norm.Scale

	forecast := points.Forecast(norm.Shifted, points.TotalPoints(in.NextDays, limits.DailyDuty))
	for r := range result.Staff {
		result.Staff[r].Balance = norm.Balances[r]
		result.Staff[r].ForecastDays = forecast[r]
	}
	return result
}
