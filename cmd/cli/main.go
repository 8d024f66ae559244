package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/internal/config"
	"github.com/jakechorley/duty-planner/pkg/clients/sheetsclient"
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/services"
	"github.com/jakechorley/duty-planner/pkg/solver"
	"github.com/jakechorley/duty-planner/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg          *config.Config
	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	logger       *zap.Logger
	ctx          context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duty-planner",
		Short: "Duty Planner CLI - Assign monthly duty and standby shifts",
		Long:  `A CLI tool for planning monthly duty and standby rosters from the planning spreadsheet.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (test, prod, etc.)")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(previewRosterCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the sheets client
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.oauthCfg, err = config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.sheetsClient, err = sheetsclient.NewClient(app.ctx, app.oauthCfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	return nil
}

// solverOptions builds solver options from config plus command-line overrides
func solverOptions(seed int64, budget time.Duration) solver.Options {
	opts := solver.DefaultOptions()
	if app.cfg.SolverBudget() > 0 {
		opts.Budget = app.cfg.SolverBudget()
	}
	if app.cfg.Solver.Workers > 0 {
		opts.Workers = app.cfg.Solver.Workers
	}
	if app.cfg.Solver.Seed != 0 {
		opts.Seed = app.cfg.Solver.Seed
	}
	if seed != 0 {
		opts.Seed = seed
	}
	if budget > 0 {
		opts.Budget = budget
	}
	return opts
}

// parseMonthArgs interprets the <year> <month> positional arguments
func parseMonthArgs(args []string) (int, time.Month, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 2000 || year > 2200 {
		return 0, 0, fmt.Errorf("year must be a four-digit number, got %q", args[0])
	}
	monthNum, err := strconv.Atoi(args[1])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return 0, 0, fmt.Errorf("month must be 1-12, got %q", args[1])
	}
	return year, time.Month(monthNum), nil
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <year> <month>",
		Short: "Plan duty and standby assignments for a month (without publishing)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonthArgs(args)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetInt64("seed")
			budget, _ := cmd.Flags().GetDuration("budget")

			result, err := services.PlanMonth(
				app.ctx,
				app.sheetsClient,
				app.cfg,
				app.logger,
				year,
				month,
				solverOptions(seed, budget),
			)
			if err != nil {
				return reportPlanError(err)
			}

			printPlan(result)
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for reproducible solver runs")
	cmd.Flags().Duration("budget", 0, "Solver wall-clock budget (e.g. 30s)")

	return cmd
}

func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <year> <month>",
		Short: "Plan a month and write the result back to the spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonthArgs(args)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetInt64("seed")
			budget, _ := cmd.Flags().GetDuration("budget")

			result, err := services.PlanMonth(
				app.ctx,
				app.sheetsClient,
				app.cfg,
				app.logger,
				year,
				month,
				solverOptions(seed, budget),
			)
			if err != nil {
				return reportPlanError(err)
			}

			printPlan(result)

			outcome, err := services.PublishPlan(app.ctx, app.sheetsClient, app.cfg, app.logger, result)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			fmt.Printf("\n✅ Published to %q, next month templated as %q\n", outcome.OutputTab, outcome.NextTab)
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for reproducible solver runs")
	cmd.Flags().Duration("budget", 0, "Solver wall-clock budget (e.g. 30s)")

	return cmd
}

func previewRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview-roster <year> <month>",
		Short: "Show the parsed roster for a month without solving",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonthArgs(args)
			if err != nil {
				return err
			}

			preview, err := services.PreviewRoster(app.ctx, app.sheetsClient, app.cfg, app.logger, year, month)
			if err != nil {
				return err
			}

			fmt.Printf("\nRoster for %s (%d staff):\n\n", app.cfg.MonthTab(year, month), len(preview.Roster.Staff))
			fmt.Printf("%-25s %-10s %-7s %-25s %-20s %8s\n", "Name", "Branch", "Driver", "Partner", "Status", "Balance")
			for _, s := range preview.Roster.Staff {
				driver := ""
				if s.Driver {
					driver = "yes"
				}
				fmt.Printf("%-25s %-10s %-7s %-25s %-20s %8.2f\n",
					s.Name, s.Branch, driver, s.PartnerKey, s.Status.Raw, s.Balance)
			}

			if len(preview.Roster.Diagnostics) > 0 {
				fmt.Printf("\n⚠️  Diagnostics (%d):\n", len(preview.Roster.Diagnostics))
				for _, d := range preview.Roster.Diagnostics {
					fmt.Printf("  • %s\n", d)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

// reportPlanError renders the structured failure modes before returning them
func reportPlanError(err error) error {
	var infeasible *model.InfeasibleError
	if errors.As(err, &infeasible) {
		fmt.Printf("\n❌ The %s pass found no feasible assignment within the budget.\n", infeasible.Pass)
		fmt.Println("Outstanding violations of the best attempt:")
		for _, v := range infeasible.Violations {
			fmt.Printf("  • %s\n", v)
		}
		fmt.Println()
	}
	return err
}

// printPlan renders the plan result as a day-by-day table
func printPlan(result *services.PlanMonthResult) {
	plan := result.Plan

	fmt.Printf("\n🗓  Plan for %s %d (run %s)\n\n", plan.Month, plan.Year, plan.RunID)

	fmt.Printf("%-25s", "Name")
	for _, d := range result.Days {
		fmt.Printf("%3d", d.Day)
	}
	fmt.Printf("  %5s %7s %8s %8s\n", "Duty", "Standby", "Balance", "Next")

	for i, s := range result.Roster.Staff {
		outcome := plan.Staff[i]
		fmt.Printf("%-25s", s.Name)
		for _, role := range outcome.Roles {
			mark := role.String()
			if mark == "" {
				mark = "·"
			}
			fmt.Printf("%3s", mark)
		}
		fmt.Printf("  %5d %7d %8.2f %8.1f\n",
			outcome.DutyCount, outcome.StandbyCount, outcome.Balance, outcome.ForecastDays)
	}

	fmt.Printf("\nNormalization scale: %.3f, solve time %s\n", plan.NormScale, plan.Elapsed.Round(time.Millisecond))

	if plan.StandbyErr != nil {
		fmt.Printf("⚠️  Standby pass failed, duty assignments kept: %v\n", plan.StandbyErr)
	}
	if len(plan.Diagnostics) > 0 {
		fmt.Printf("⚠️  Diagnostics (%d):\n", len(plan.Diagnostics))
		for _, d := range plan.Diagnostics {
			fmt.Printf("  • %s\n", d)
		}
	}
	fmt.Println()
}
