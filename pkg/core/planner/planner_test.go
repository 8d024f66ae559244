package planner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/duty-planner/pkg/core/calendar"
	"github.com/jakechorley/duty-planner/pkg/core/history"
	"github.com/jakechorley/duty-planner/pkg/core/model"
	"github.com/jakechorley/duty-planner/pkg/core/roster"
	"github.com/jakechorley/duty-planner/pkg/solver"
)

type staffSpec struct {
	name    string
	status  string
	balance string
	marks   map[int]string // day (1-based) -> raw cell
}

// plainStaff generates n unexcluded male staff with free availability
func plainStaff(n int) []staffSpec {
	specs := make([]staffSpec, n)
	for i := range specs {
		specs[i] = staffSpec{name: fmt.Sprintf("STAFF %02d", i+1)}
	}
	return specs
}

func sheetRow(s staffSpec) []string {
	row := make([]string, 46)
	row[1] = s.name
	for day, mark := range s.marks {
		row[5+day-1] = mark
	}
	row[43] = s.balance
	row[44] = s.status
	return row
}

// buildInputs assembles planner inputs from staff specs the way the service
// layer would from sheet values
func buildInputs(t *testing.T, specs []staffSpec, days []model.DayRecord, branchRows [][]string, hist *history.History) Inputs {
	t.Helper()

	sheet := [][]string{make([]string, 46), make([]string, 46)}
	for _, s := range specs {
		sheet = append(sheet, sheetRow(s))
	}

	r, err := roster.Build(sheet, nil, branchRows, roster.DefaultGeometry())
	require.NoError(t, err)

	availability, err := roster.ParseAvailability(sheet, roster.DefaultGeometry(), len(days))
	require.NoError(t, err)

	if hist == nil {
		hist = history.Empty()
	}

	return Inputs{
		Roster:       r,
		Days:         days,
		Availability: availability,
		History:      hist,
		NextDays:     calendar.BuildMonth(2026, time.July, nil, calendar.DefaultPointSchedule()),
	}
}

func testLimits() Limits {
	l := DefaultLimits()
	l.DailyDuty = 1
	l.DailyStandby = 1
	l.DutyCap = 4
	return l
}

func testSolverOptions() solver.Options {
	return solver.Options{
		Budget:       5 * time.Second,
		Workers:      2,
		Seed:         7,
		InitialTemp:  200,
		Cooling:      0.9995,
		PlateauIters: 150_000,
	}
}

func juneDays(holidays ...time.Time) []model.DayRecord {
	return calendar.BuildMonth(2026, time.June, holidays, calendar.DefaultPointSchedule())
}

func TestPlan_BaselineProperties(t *testing.T) {
	days := juneDays()
	in := buildInputs(t, plainStaff(16), days, nil, nil)
	limits := testLimits()

	res, err := Plan(context.Background(), in, DefaultWeights(), limits, testSolverOptions(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NoError(t, res.StandbyErr)
	require.Len(t, res.Staff, 16)

	// every day carries the required duty and standby headcounts
	for _, d := range days {
		duty, standby := 0, 0
		for _, s := range res.Staff {
			switch s.Roles[d.Day-1] {
			case model.RoleDuty:
				duty++
			case model.RoleStandby:
				standby++
			}
		}
		assert.Equal(t, limits.DailyDuty, duty, "day %d duty count", d.Day)
		assert.Equal(t, limits.DailyStandby, standby, "day %d standby count", d.Day)
	}

	for _, s := range res.Staff {
		// at most one duty per ISO week
		perWeek := make(map[int]int)
		var dutyDays []int
		var standbyDays []int
		for c, role := range s.Roles {
			switch role {
			case model.RoleDuty:
				perWeek[days[c].ISOWeek]++
				dutyDays = append(dutyDays, days[c].Day)
			case model.RoleStandby:
				standbyDays = append(standbyDays, days[c].Day)
			}
		}
		for week, count := range perWeek {
			assert.LessOrEqual(t, count, 1, "%s has %d duties in week %d", s.Key, count, week)
		}

		// duty spacing and caps
		for i := 1; i < len(dutyDays); i++ {
			assert.GreaterOrEqual(t, dutyDays[i]-dutyDays[i-1], limits.MinGap,
				"%s duties too close", s.Key)
		}
		assert.LessOrEqual(t, s.DutyCount, limits.DutyCap)
		assert.LessOrEqual(t, s.StandbyCount, limits.StandbyCap)

		// standby stays clear of the member's own duties and other standby
		for _, sd := range standbyDays {
			for _, dd := range dutyDays {
				diff := sd - dd
				if diff < 0 {
					diff = -diff
				}
				assert.GreaterOrEqual(t, diff, limits.StandbySeparation,
					"%s standby day %d too close to duty day %d", s.Key, sd, dd)
			}
		}
		for i := 1; i < len(standbyDays); i++ {
			assert.GreaterOrEqual(t, standbyDays[i]-standbyDays[i-1], limits.StandbySeparation)
		}

		// counts derived from roles agree
		assert.Equal(t, len(dutyDays), s.DutyCount)
		assert.Equal(t, len(standbyDays), s.StandbyCount)
	}

	assert.GreaterOrEqual(t, res.NormScale, 1.0)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", res.RunID.String())
}

func TestPlan_ManualMarksHonored(t *testing.T) {
	specs := plainStaff(12)
	specs[0].marks = map[int]string{10: "D"}
	specs[1].marks = map[int]string{10: "X", 11: "X", 12: "X"}

	days := juneDays()
	in := buildInputs(t, specs, days, nil, nil)

	res, err := Plan(context.Background(), in, DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, model.RoleDuty, res.Staff[0].Roles[9])
	for _, day := range []int{10, 11, 12} {
		assert.Equal(t, model.RoleNone, res.Staff[1].Roles[day-1], "blocked day %d", day)
	}
}

func TestPlan_ExcludedStaffGetNothing(t *testing.T) {
	specs := plainStaff(12)
	specs[3].status = "SAIL"

	res, err := Plan(context.Background(), buildInputs(t, specs, juneDays(), nil, nil),
		DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	assert.Zero(t, res.Staff[3].DutyCount)
	assert.Zero(t, res.Staff[3].StandbyCount)
	for _, role := range res.Staff[3].Roles {
		assert.Equal(t, model.RoleNone, role)
	}
}

func TestPlan_ExcludedManualHolidayDutyKept(t *testing.T) {
	holiday := time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)
	specs := plainStaff(12)
	specs[2].status = "SBF"
	specs[2].marks = map[int]string{3: "D", 15: "D"}

	res, err := Plan(context.Background(), buildInputs(t, specs, juneDays(holiday), nil, nil),
		DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	// the holiday manual duty survives the exclusion, the ordinary one does not
	assert.Equal(t, model.RoleDuty, res.Staff[2].Roles[2])
	assert.Equal(t, model.RoleNone, res.Staff[2].Roles[14])
	assert.Equal(t, 1, res.Staff[2].DutyCount)
}

func TestPlan_WeekendCooldown(t *testing.T) {
	specs := plainStaff(12)
	hist := history.Empty()
	hist.WeekendWorkers["STAFF 01"] = true

	days := juneDays()
	res, err := Plan(context.Background(), buildInputs(t, specs, days, nil, hist),
		DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	for c, role := range res.Staff[0].Roles {
		if days[c].Weekend() {
			assert.NotEqual(t, model.RoleDuty, role, "weekend duty on day %d after weekend last cycle", days[c].Day)
		}
	}
}

func TestPlan_CrossMonthGap(t *testing.T) {
	specs := plainStaff(12)
	hist := history.Empty()
	// last duty on 29 May: 1 June is 3 days later and blocked, 2 June is
	// exactly the minimum gap and open again
	hist.LastDutyDate["STAFF 01"] = time.Date(2026, time.May, 29, 0, 0, 0, 0, time.UTC)

	res, err := Plan(context.Background(), buildInputs(t, specs, juneDays(), nil, hist),
		DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	assert.NotEqual(t, model.RoleDuty, res.Staff[0].Roles[0])
}

func TestPlan_BalanceOverrideApplied(t *testing.T) {
	specs := plainStaff(12)
	specs[0].balance = "2.0"
	hist := history.Empty()
	hist.Overrides["STAFF 01"] = 9.5

	in := buildInputs(t, specs, juneDays(), nil, hist)
	_, err := Plan(context.Background(), in, DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	assert.InDelta(t, 9.5, in.Roster.Staff[0].Balance, 1e-9)
	assert.InDelta(t, 0, in.Roster.Staff[1].Balance, 1e-9)
}

func TestPlan_StandbyCapacityShortfall(t *testing.T) {
	specs := []staffSpec{
		{name: "ABLE", marks: map[int]string{1: "D"}},
		{name: "BAKER", marks: map[int]string{1: "D"}},
		{name: "CHARLIE (F)"},
		{name: "DOG (F)"},
	}
	days := juneDays()[:1]

	limits := testLimits()
	limits.DailyDuty = 2
	limits.DailyStandby = 2

	res, err := Plan(context.Background(), buildInputs(t, specs, days, nil, nil),
		DefaultWeights(), limits, testSolverOptions(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, res)

	// the duty pass stands; the standby shortfall is a structured outcome
	assert.Equal(t, model.RoleDuty, res.Staff[0].Roles[0])
	assert.Equal(t, model.RoleDuty, res.Staff[1].Roles[0])

	var capErr *model.CapacityError
	require.ErrorAs(t, res.StandbyErr, &capErr)
	assert.Equal(t, 1, capErr.Day)
	assert.Equal(t, 2, capErr.Need)
	assert.Zero(t, capErr.Have)
}

func TestPlan_InfeasibleDuty(t *testing.T) {
	// 3 staff cannot cover 7 duties inside one ISO week at one per week
	specs := plainStaff(3)
	days := juneDays()[:7]

	opts := testSolverOptions()
	opts.Budget = 500 * time.Millisecond
	opts.PlateauIters = 5_000

	res, err := Plan(context.Background(), buildInputs(t, specs, days, nil, nil),
		DefaultWeights(), testLimits(), opts, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, res)

	var infeasible *model.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, model.PassDuty, infeasible.Pass)
	assert.NotEmpty(t, infeasible.Violations)
}

func TestPlan_BranchMirroredStandby(t *testing.T) {
	specs := plainStaff(12)
	branchRows := [][]string{{"", "Name", "Branch"}}
	for i, s := range specs {
		branch := "EAST"
		if i >= 6 {
			branch = "WEST"
		}
		branchRows = append(branchRows, []string{"", s.name, branch})
	}

	days := juneDays()
	in := buildInputs(t, specs, days, branchRows, nil)

	res, err := Plan(context.Background(), in, DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, res.StandbyErr)

	branchOf := make(map[int]string)
	for i := range specs {
		branchOf[i] = in.Roster.Staff[i].Branch
	}

	for _, d := range days {
		dutyPerBranch := make(map[string]int)
		standbyPerBranch := make(map[string]int)
		for i, s := range res.Staff {
			switch s.Roles[d.Day-1] {
			case model.RoleDuty:
				dutyPerBranch[branchOf[i]]++
			case model.RoleStandby:
				standbyPerBranch[branchOf[i]]++
			}
		}
		for branch, duty := range dutyPerBranch {
			assert.Equal(t, duty, standbyPerBranch[branch],
				"day %d branch %s standby does not mirror duty", d.Day, branch)
		}
	}
}

func TestPlan_StandbyHeadcountFollowsConfiguredLimit(t *testing.T) {
	days := juneDays()
	limits := testLimits()
	limits.DailyStandby = 2

	in := buildInputs(t, plainStaff(16), days, nil, nil)
	res, err := Plan(context.Background(), in, DefaultWeights(), limits, testSolverOptions(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, res.StandbyErr)

	// standby headcount is its own setting, independent of the duty count
	for _, d := range days {
		duty, standby := 0, 0
		for _, s := range res.Staff {
			switch s.Roles[d.Day-1] {
			case model.RoleDuty:
				duty++
			case model.RoleStandby:
				standby++
			}
		}
		assert.Equal(t, 1, duty, "day %d duty count", d.Day)
		assert.Equal(t, 2, standby, "day %d standby count", d.Day)
	}
}

func TestPlan_FemalePairingAndLowerCap(t *testing.T) {
	specs := append(plainStaff(14),
		staffSpec{name: "OLGA (F)"},
		staffSpec{name: "PRIYA (F)"},
	)

	limits := testLimits()
	limits.DailyDuty = 2
	limits.DailyStandby = 2
	limits.DutyCap = 5

	res, err := Plan(context.Background(), buildInputs(t, specs, juneDays(), nil, nil),
		DefaultWeights(), limits, testSolverOptions(), zap.NewNop())
	require.NoError(t, err)

	// the two flagged members serve together or not at all, never alone
	for day := 1; day <= 30; day++ {
		together := 0
		for _, r := range []int{14, 15} {
			if res.Staff[r].Roles[day-1] == model.RoleDuty {
				together++
			}
		}
		assert.Contains(t, []int{0, 2}, together, "day %d flagged duty count", day)
	}

	// their monthly cap sits one below everyone else's
	assert.LessOrEqual(t, res.Staff[14].DutyCount, limits.DutyCap-1)
	assert.LessOrEqual(t, res.Staff[15].DutyCount, limits.DutyCap-1)

	// flagged staff never stand by
	assert.Zero(t, res.Staff[14].StandbyCount)
	assert.Zero(t, res.Staff[15].StandbyCount)
}

func TestPlan_ManualDutiesAndWeeklyCapFlag(t *testing.T) {
	// two manual duties inside one ISO week (8 and 12 June 2026)
	specs := plainStaff(12)
	specs[0].marks = map[int]string{8: "D", 12: "D"}

	limits := testLimits()

	// without the exemption the weekly cap can never be met
	opts := testSolverOptions()
	opts.Budget = 500 * time.Millisecond
	opts.PlateauIters = 5_000

	res, err := Plan(context.Background(), buildInputs(t, specs, juneDays(), nil, nil),
		DefaultWeights(), limits, opts, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, res)

	var infeasible *model.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.Equal(t, model.PassDuty, infeasible.Pass)

	// with the exemption both manual duties stand
	limits.ExemptAllManualFromWeeklyCap = true
	res, err = Plan(context.Background(), buildInputs(t, specs, juneDays(), nil, nil),
		DefaultWeights(), limits, testSolverOptions(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.RoleDuty, res.Staff[0].Roles[7])
	assert.Equal(t, model.RoleDuty, res.Staff[0].Roles[11])
}

func TestPlan_ValidatesInputs(t *testing.T) {
	in := buildInputs(t, plainStaff(4), juneDays(), nil, nil)
	in.Availability = in.Availability[:2]

	_, err := Plan(context.Background(), in, DefaultWeights(), testLimits(), testSolverOptions(), zap.NewNop())
	assert.Error(t, err)
}
