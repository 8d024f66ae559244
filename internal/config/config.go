package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/duty-planner/pkg/core/history"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
)

// PointsConfig is the point value per day category
type PointsConfig struct {
	Weekday float64 `yaml:"weekday,omitempty" validate:"gte=0"`
	Friday  float64 `yaml:"friday,omitempty" validate:"gte=0"`
	Weekend float64 `yaml:"weekend,omitempty" validate:"gte=0"`
	Holiday float64 `yaml:"holiday,omitempty" validate:"gte=0"`
}

// WeightsConfig holds the soft-constraint penalty weights
type WeightsConfig struct {
	PartnerSplit    int `yaml:"partnerSplit,omitempty" validate:"gte=0"`
	BranchDuplicate int `yaml:"branchDuplicate,omitempty" validate:"gte=0"`
	DriverMix       int `yaml:"driverMix,omitempty" validate:"gte=0"`
	ZeroDuty        int `yaml:"zeroDuty,omitempty" validate:"gte=0"`
}

// LimitsConfig holds the hard-rule parameters
type LimitsConfig struct {
	DailyDuty         int     `yaml:"dailyDuty,omitempty" validate:"gte=0"`
	MinGap            int     `yaml:"minGap,omitempty" validate:"gte=0"`
	DutyCap           int     `yaml:"dutyCap,omitempty" validate:"gte=0"`
	DailyStandby      int     `yaml:"dailyStandby,omitempty" validate:"gte=0"`
	StandbySeparation int     `yaml:"standbySeparation,omitempty" validate:"gte=0"`
	StandbyCap        int     `yaml:"standbyCap,omitempty" validate:"gte=0"`
	NormTolerance     float64 `yaml:"normTolerance,omitempty" validate:"gte=0"`
	StatusBonus       float64 `yaml:"statusBonus,omitempty" validate:"gte=0"`
}

// SolverConfig controls the search budget
type SolverConfig struct {
	BudgetSeconds int   `yaml:"budgetSeconds,omitempty" validate:"gte=0"`
	Workers       int   `yaml:"workers,omitempty" validate:"gte=0"`
	Seed          int64 `yaml:"seed,omitempty"`
}

// GeometryConfig describes the staff sheet layout (0-based indices)
type GeometryConfig struct {
	HeaderRows  int `yaml:"headerRows,omitempty" validate:"gte=0"`
	NameCol     int `yaml:"nameCol,omitempty" validate:"gte=0"`
	DayStartCol int `yaml:"dayStartCol,omitempty" validate:"gte=0"`
	BalanceCol  int `yaml:"balanceCol,omitempty" validate:"gte=0"`
	StatusCol   int `yaml:"statusCol,omitempty" validate:"gte=0"`
}

// HistoryLayoutConfig describes where the history extras live in the
// previous month's sheet (0-based indices)
type HistoryLayoutConfig struct {
	ScaleRow        int `yaml:"scaleRow,omitempty" validate:"gte=0"`
	ScaleCol        int `yaml:"scaleCol,omitempty" validate:"gte=0"`
	AdjustStartRow  int `yaml:"adjustStartRow,omitempty" validate:"gte=0"`
	AdjustNameCol   int `yaml:"adjustNameCol,omitempty" validate:"gte=0"`
	AdjustChangeCol int `yaml:"adjustChangeCol,omitempty" validate:"gte=0"`
	AdjustBaseCol   int `yaml:"adjustBaseCol,omitempty" validate:"gte=0"`
}

// Config represents the application configuration
type Config struct {
	// PlannerSheetID is the spreadsheet holding one worksheet tab per month
	PlannerSheetID string `yaml:"plannerSheetID" validate:"required"`

	// MonthTabFormat is the Go time layout naming the monthly tabs
	MonthTabFormat string `yaml:"monthTabFormat,omitempty"`

	// PartnerTab, BranchTab and HolidayTab are the supporting table tabs.
	// HolidayTab may be empty when holidays come only from HolidayRules.
	PartnerTab string `yaml:"partnerTab" validate:"required"`
	BranchTab  string `yaml:"branchTab" validate:"required"`
	HolidayTab string `yaml:"holidayTab,omitempty"`

	// HolidayRules are recurring holidays as RRULE strings, expanded per month
	// and merged with the holiday tab
	HolidayRules []string `yaml:"holidayRules,omitempty"`

	// ExemptAllManualFromWeeklyCap widens the one-duty-per-week exemption from
	// holiday manual duties to every manual duty
	ExemptAllManualFromWeeklyCap bool `yaml:"exemptAllManualFromWeeklyCap,omitempty"`

	Points        PointsConfig        `yaml:"points,omitempty"`
	Weights       WeightsConfig       `yaml:"weights,omitempty"`
	Limits        LimitsConfig        `yaml:"limits,omitempty"`
	Solver        SolverConfig        `yaml:"solver,omitempty"`
	Geometry      GeometryConfig      `yaml:"geometry,omitempty"`
	HistoryLayout HistoryLayoutConfig `yaml:"historyLayout,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// MonthTab returns the worksheet tab name for a month
func (c *Config) MonthTab(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(c.MonthTabFormat)
}

// SolverBudget returns the configured wall-clock budget as a duration
func (c *Config) SolverBudget() time.Duration {
	return time.Duration(c.Solver.BudgetSeconds) * time.Second
}

// Load loads and validates the configuration from duty_planner_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "duty_planner_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.HolidayRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

// applyDefaults fills every zero-valued tunable with its production default
func applyDefaults(cfg *Config) {
	if cfg.MonthTabFormat == "" {
		cfg.MonthTabFormat = "Jan 2006"
	}

	defaultFloat(&cfg.Points.Weekday, 1.0)
	defaultFloat(&cfg.Points.Friday, 1.5)
	defaultFloat(&cfg.Points.Weekend, 2.0)
	defaultFloat(&cfg.Points.Holiday, 2.0)

	defaultInt(&cfg.Weights.PartnerSplit, 100)
	defaultInt(&cfg.Weights.BranchDuplicate, 60)
	defaultInt(&cfg.Weights.DriverMix, 10)
	defaultInt(&cfg.Weights.ZeroDuty, 400)

	defaultInt(&cfg.Limits.DailyDuty, 2)
	defaultInt(&cfg.Limits.MinGap, 4)
	defaultInt(&cfg.Limits.DutyCap, 3)
	defaultInt(&cfg.Limits.DailyStandby, 2)
	defaultInt(&cfg.Limits.StandbySeparation, 2)
	defaultInt(&cfg.Limits.StandbyCap, 5)
	defaultFloat(&cfg.Limits.NormTolerance, 4)
	defaultFloat(&cfg.Limits.StatusBonus, 2)

	defaultInt(&cfg.Solver.BudgetSeconds, 15)

	if cfg.Geometry == (GeometryConfig{}) {
		g := roster.DefaultGeometry()
		cfg.Geometry = GeometryConfig{
			HeaderRows:  g.HeaderRows,
			NameCol:     g.NameCol,
			DayStartCol: g.DayStartCol,
			BalanceCol:  g.BalanceCol,
			StatusCol:   g.StatusCol,
		}
	}
	if cfg.HistoryLayout == (HistoryLayoutConfig{}) {
		l := history.DefaultLayout()
		cfg.HistoryLayout = HistoryLayoutConfig{
			ScaleRow:        l.ScaleRow,
			ScaleCol:        l.ScaleCol,
			AdjustStartRow:  l.AdjustStartRow,
			AdjustNameCol:   l.AdjustNameCol,
			AdjustChangeCol: l.AdjustChangeCol,
			AdjustBaseCol:   l.AdjustBaseCol,
		}
	}
}

func defaultInt(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func defaultFloat(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

// findConfigFile searches for the config file in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "duty_planner_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "duty_planner_config.yaml"
	if env != "" {
		configFileName = "duty_planner_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
