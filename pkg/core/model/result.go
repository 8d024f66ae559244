package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffOutcome is the per-staff slice of the plan result
type StaffOutcome struct {
	Key string

	// Roles holds the final role per day of the month, index 0 = day 1
	Roles []Role

	// Score is the realized fairness score in raw points (balance + earned + bonuses)
	Score float64

	// Balance is the normalized point balance carried to the next cycle
	Balance float64

	// ForecastDays is the estimated duty-day count for the next cycle
	ForecastDays float64

	// DutyCount and StandbyCount are derived from Roles
	DutyCount    int
	StandbyCount int
}

// PlanResult is the single output bundle of a planning run. It is immutable
// once produced; the caller owns persistence.
type PlanResult struct {
	RunID uuid.UUID

	Year  int
	Month time.Month

	// Staff outcomes in roster row order
	Staff []StaffOutcome

	// NormScale is the divisor applied during point normalization, persisted
	// so the next cycle can interpret the stored balances
	NormScale float64

	// StandbyErr is the structured outcome of the standby pass when it failed:
	// either *InfeasibleError or *CapacityError. The duty assignment stands
	// regardless; standby cells are simply left empty.
	StandbyErr error

	// Diagnostics collected during ingestion (unmatched names and the like)
	Diagnostics []Diagnostic

	// Elapsed wall-clock time of the two solver passes combined
	Elapsed time.Duration
}

// Outcome returns the staff outcome for a roster key, nil if absent
func (p *PlanResult) Outcome(key string) *StaffOutcome {
	for i := range p.Staff {
		if p.Staff[i].Key == key {
			return &p.Staff[i]
		}
	}
	return nil
}

// DutyCountOn returns how many staff hold duty on the given day (1-based)
func (p *PlanResult) DutyCountOn(day int) int {
	count := 0
	for i := range p.Staff {
		if day >= 1 && day <= len(p.Staff[i].Roles) && p.Staff[i].Roles[day-1] == RoleDuty {
			count++
		}
	}
	return count
}
