package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/duty-planner/pkg/core/model"
)

// sheetRow builds a raw row wide enough for the default geometry, placing
// name, per-day marks, balance and status in their columns.
func sheetRow(name string, marks map[int]string, balance, status string) []string {
	row := make([]string, 46)
	row[1] = name
	for day, mark := range marks {
		row[5+day-1] = mark
	}
	row[43] = balance
	row[44] = status
	return row
}

func staffSheet(rows ...[]string) [][]string {
	sheet := [][]string{
		make([]string, 46), // title row
		make([]string, 46), // day-number header row
	}
	return append(sheet, rows...)
}

func TestBuild_StaffBlock(t *testing.T) {
	sheet := staffSheet(
		sheetRow("LIM WEI MING", nil, "2.5", ""),
		sheetRow("TAN AH KOW (F)", nil, "0", ""),
		sheetRow("", nil, "", ""), // terminates the block
		sheetRow("TRAILING NOISE", nil, "", ""),
	)

	r, err := Build(sheet, nil, nil, DefaultGeometry())
	require.NoError(t, err)
	require.Len(t, r.Staff, 2)

	assert.Equal(t, "LIM WEI MING", r.Staff[0].Name)
	assert.Equal(t, "LIM WEI MING", r.Staff[0].Key)
	assert.Equal(t, 0, r.Staff[0].Row)
	assert.InDelta(t, 2.5, r.Staff[0].Balance, 1e-9)
	assert.False(t, r.Staff[0].Female)

	assert.True(t, r.Staff[1].Female)
	assert.Equal(t, 1, r.Staff[1].Row)

	assert.Same(t, r.Staff[0], r.ByKey("LIM WEI MING"))
	assert.Nil(t, r.ByKey("TRAILING NOISE"))
}

func TestBuild_NoStaffBlock(t *testing.T) {
	_, err := Build([][]string{make([]string, 46)}, nil, nil, DefaultGeometry())
	assert.ErrorIs(t, err, model.ErrStaffBlockNotFound)

	empty := staffSheet(sheetRow("", nil, "", ""))
	_, err = Build(empty, nil, nil, DefaultGeometry())
	assert.ErrorIs(t, err, model.ErrStaffBlockNotFound)
}

func TestBuild_BalanceParsing(t *testing.T) {
	sheet := staffSheet(
		sheetRow("A", nil, "1.25", ""),
		sheetRow("B", nil, "", ""),
		sheetRow("C", nil, "n/a", ""),
	)
	r, err := Build(sheet, nil, nil, DefaultGeometry())
	require.NoError(t, err)

	assert.InDelta(t, 1.25, r.Staff[0].Balance, 1e-9)
	assert.Zero(t, r.Staff[1].Balance)
	assert.Zero(t, r.Staff[2].Balance)
}

func partnerRow(name1, desig1, name2, desig2 string) []string {
	return []string{"", name1, desig1, name2, desig2}
}

func TestBuild_PartnerTable(t *testing.T) {
	sheet := staffSheet(
		sheetRow("ALPHA", nil, "0", ""),
		sheetRow("BRAVO", nil, "0", ""),
		sheetRow("CHARLIE", nil, "0", ""),
	)
	partners := [][]string{
		partnerRow("Name", "Desig", "Name", "Desig"), // header
		partnerRow("alpha", "DRIVER", "bravo", ""),
	}

	r, err := Build(sheet, partners, nil, DefaultGeometry())
	require.NoError(t, err)

	assert.Equal(t, "BRAVO", r.ByKey("ALPHA").PartnerKey)
	assert.Equal(t, "ALPHA", r.ByKey("BRAVO").PartnerKey)
	assert.True(t, r.ByKey("ALPHA").Driver)
	assert.False(t, r.ByKey("BRAVO").Driver)
	assert.Empty(t, r.ByKey("CHARLIE").PartnerKey)

	pairs := r.Pairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, "ALPHA", pairs[0][0].Key)
	assert.Equal(t, "BRAVO", pairs[0][1].Key)
}

func TestBuild_PartnerTableUnmatchedName(t *testing.T) {
	sheet := staffSheet(sheetRow("ALPHA", nil, "0", ""))
	partners := [][]string{
		partnerRow("Name", "Desig", "Name", "Desig"),
		partnerRow("ALPHA", "", "GHOST", "DRIVER"),
	}

	r, err := Build(sheet, partners, nil, DefaultGeometry())
	require.NoError(t, err)

	// the run continues; the unknown name is only a diagnostic
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, model.DiagUnmatchedName, r.Diagnostics[0].Kind)
	assert.Equal(t, "GHOST", r.Diagnostics[0].Subject)
	// a half-matched pair is no pair
	assert.Empty(t, r.ByKey("ALPHA").PartnerKey)
}

func TestBuild_BranchTable(t *testing.T) {
	sheet := staffSheet(
		sheetRow("ALPHA", nil, "0", ""),
		sheetRow("BRAVO", nil, "0", ""),
	)
	branches := [][]string{
		{"", "Name", "Branch"},
		{"", "ALPHA", "east"},
		{"", "BRAVO", "West"},
		{"", "GHOST", "EAST"},
	}

	r, err := Build(sheet, nil, branches, DefaultGeometry())
	require.NoError(t, err)

	assert.Equal(t, "EAST", r.ByKey("ALPHA").Branch)
	assert.Equal(t, "WEST", r.ByKey("BRAVO").Branch)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, "GHOST", r.Diagnostics[0].Subject)

	grouped := r.Branches()
	assert.Len(t, grouped["EAST"], 1)
	assert.Len(t, grouped["WEST"], 1)
}

func TestBuild_PartnerExclusionPropagation(t *testing.T) {
	sheet := staffSheet(
		sheetRow("ALPHA", nil, "0", "SBF"),
		sheetRow("BRAVO", nil, "0", ""),
		sheetRow("CHARLIE", nil, "0", "SAIL"),
		sheetRow("DELTA", nil, "0", "SBF"),
	)
	partners := [][]string{
		partnerRow("Name", "Desig", "Name", "Desig"),
		partnerRow("ALPHA", "", "BRAVO", ""),
		partnerRow("CHARLIE", "", "DELTA", ""),
	}

	r, err := Build(sheet, partners, nil, DefaultGeometry())
	require.NoError(t, err)

	// the free partner of an SBF member picks up PARTNER
	assert.True(t, r.ByKey("BRAVO").Status.Has(model.StatusPartner))
	assert.True(t, r.ByKey("BRAVO").Status.Excluded())

	// a partner already excluded in their own right is left alone
	assert.False(t, r.ByKey("CHARLIE").Status.Has(model.StatusPartner))
	assert.True(t, r.ByKey("CHARLIE").Status.Has(model.StatusSail))
}

func TestParseAvailability(t *testing.T) {
	sheet := staffSheet(
		sheetRow("ALPHA", map[int]string{1: "D", 2: "X", 3: "S", 5: "leave"}, "0", ""),
		sheetRow("BRAVO", nil, "0", ""),
	)

	marks, err := ParseAvailability(sheet, DefaultGeometry(), 5)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	require.Len(t, marks[0], 5)

	assert.Equal(t, model.MarkDuty, marks[0][0])
	assert.Equal(t, model.MarkBlocked, marks[0][1])
	assert.Equal(t, model.MarkStandby, marks[0][2])
	assert.Equal(t, model.MarkFree, marks[0][3])
	assert.Equal(t, model.MarkBlocked, marks[0][4])

	for d := 0; d < 5; d++ {
		assert.Equal(t, model.MarkFree, marks[1][d])
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "LIM WEI MING", Key("  lim wei ming "))
}
