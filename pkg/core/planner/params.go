package planner

// Scale integerizes all point quantities before they reach the solver, so
// the objective never carries fractional coefficients. Results are rescaled
// on extraction.
const Scale = 1000

// Weights are the soft-constraint penalty weights
type Weights struct {
	// PartnerSplit penalizes a day where exactly one half of a partner pair
	// is on duty
	PartnerSplit int

	// BranchDuplicate penalizes a day where two members of one branch are
	// on duty together
	BranchDuplicate int

	// DriverMix penalizes a day whose duty pair does not include exactly
	// one driver
	DriverMix int

	// ZeroDuty penalizes a staff member ending the month with no duties
	ZeroDuty int
}

// DefaultWeights mirror the production sliders
func DefaultWeights() Weights {
	return Weights{PartnerSplit: 100, BranchDuplicate: 60, DriverMix: 10, ZeroDuty: 400}
}

// Limits are the hard-rule parameters
type Limits struct {
	// DailyDuty is the required duty headcount per day
	DailyDuty int

	// MinGap is the minimum day separation between two duties of one staff
	// member, including the cross-month boundary
	MinGap int

	// DutyCap is the maximum duties per staff per month; gender-flagged
	// staff get one less
	DutyCap int

	// DailyStandby is the required standby headcount per day with duty
	DailyStandby int

	// StandbySeparation is the minimum day separation between a standby and
	// any duty or other standby of the same staff member
	StandbySeparation int

	// StandbyCap is the hard per-staff standby maximum for the month
	StandbyCap int

	// NormTolerance is the point-spread tolerance of the normalizer
	NormTolerance float64

	// StatusBonus is the one-time point bonus granted to SBF-flagged staff
	StatusBonus float64

	// ExemptAllManualFromWeeklyCap widens the one-duty-per-week exemption
	// from holiday manual duties to every manual duty
	ExemptAllManualFromWeeklyCap bool
}

// DefaultLimits mirror the production sliders
func DefaultLimits() Limits {
	return Limits{
		DailyDuty:         2,
		MinGap:            4,
		DutyCap:           3,
		DailyStandby:      2,
		StandbySeparation: 2,
		StandbyCap:        5,
		NormTolerance:     4,
		StatusBonus:       2,
	}
}
