package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus_Keywords(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kinds    []StatusKind
		excluded bool
	}{
		{"empty", "", nil, false},
		{"plain sbf", "SBF", []StatusKind{StatusSBF}, true},
		{"sbf with note", "sbf (back in June)", []StatusKind{StatusSBF}, true},
		{"sail", "SAIL", []StatusKind{StatusSail}, true},
		{"ndp", "NDP", []StatusKind{StatusNDP}, true},
		{"excused lowercase", "excused", []StatusKind{StatusExcused}, true},
		{"medical", "Medical leave", []StatusKind{StatusMedical}, true},
		{"on course", "ON COURSE till 15th", []StatusKind{StatusOnCourse}, true},
		{"partner", "PARTNER", []StatusKind{StatusPartner}, true},
		{"new is not an exclusion", "NEW", []StatusKind{StatusNew}, false},
		{"unrecognised text", "late reporting", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseStatus(tt.raw)
			assert.Equal(t, tt.kinds, s.Kinds)
			assert.Equal(t, tt.excluded, s.Excluded())
			assert.Equal(t, tt.raw, s.Raw)
		})
	}
}

func TestParseStatus_MultipleKeywords(t *testing.T) {
	s := ParseStatus("NEW, ON COURSE")
	assert.True(t, s.Has(StatusNew))
	assert.True(t, s.Has(StatusOnCourse))
	assert.True(t, s.Excluded())
}

func TestStatus_WithKind(t *testing.T) {
	s := ParseStatus("")
	tagged := s.WithKind(StatusPartner)

	assert.True(t, tagged.Has(StatusPartner))
	assert.True(t, tagged.Excluded())
	// the original is untouched
	assert.False(t, s.Has(StatusPartner))

	// appending an already-present kind changes nothing
	again := tagged.WithKind(StatusPartner)
	assert.Equal(t, tagged.Kinds, again.Kinds)
}

func TestParseCellMark(t *testing.T) {
	assert.Equal(t, MarkFree, ParseCellMark(""))
	assert.Equal(t, MarkFree, ParseCellMark("   "))
	assert.Equal(t, MarkDuty, ParseCellMark("D"))
	assert.Equal(t, MarkDuty, ParseCellMark(" d "))
	assert.Equal(t, MarkStandby, ParseCellMark("s"))
	assert.Equal(t, MarkBlocked, ParseCellMark("X"))
	// stray notes never become silent availability
	assert.Equal(t, MarkBlocked, ParseCellMark("maybe"))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "", RoleNone.String())
	assert.Equal(t, "D", RoleDuty.String())
	assert.Equal(t, "S", RoleStandby.String())
}
