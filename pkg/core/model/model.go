package model

import (
	"strings"
	"time"
)

// DayCategory classifies a calendar day for point purposes
type DayCategory string

const (
	CategoryWeekday DayCategory = "weekday"
	CategoryFriday  DayCategory = "friday"
	CategoryWeekend DayCategory = "weekend"
)

// CellMark is the manual marker found in an availability cell
type CellMark int

const (
	// MarkFree means the cell is open to the planner
	MarkFree CellMark = iota
	// MarkBlocked means the staff member is unavailable that day ("X")
	MarkBlocked
	// MarkDuty is a manually pre-assigned duty ("D"), always honored
	MarkDuty
	// MarkStandby is a manually pre-assigned standby ("S")
	MarkStandby
)

// ParseCellMark interprets a raw availability cell value.
// Blank cells are free; anything unrecognised is treated as blocked so that
// stray notes in the grid never become silent availability.
func ParseCellMark(raw string) CellMark {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return MarkFree
	case "D":
		return MarkDuty
	case "S":
		return MarkStandby
	default:
		return MarkBlocked
	}
}

// StaffRecord is one row of the working roster
type StaffRecord struct {
	// Row is the stable index into the working grid (0-based within the staff block)
	Row int

	// Name as written in the roster sheet
	Name string

	// Key is the normalized uppercase lookup key
	Key string

	// Female is set when the roster name carries the "(F)" marker
	Female bool

	// Driver designation from the partner/designation table
	Driver bool

	// Branch membership; empty when the branch table had no match
	Branch string

	// PartnerKey is the reciprocal partner's Key, empty if unpaired
	PartnerKey string

	// Status is the parsed monthly status for this staff member
	Status Status

	// Balance is the carried point balance (prior cycle, after any manual adjustment)
	Balance float64
}

// DayRecord is one calendar day of the planning month
type DayRecord struct {
	Date     time.Time
	Day      int // ordinal day-of-month, 1-based
	Category DayCategory
	Holiday  bool
	Points   float64
	ISOWeek  int
}

// Weekend reports whether the day falls on Saturday or Sunday
func (d DayRecord) Weekend() bool {
	return d.Category == CategoryWeekend
}

// Role is the final assignment of a (staff, day) cell
type Role int

const (
	RoleNone Role = iota
	RoleDuty
	RoleStandby
)

func (r Role) String() string {
	switch r {
	case RoleDuty:
		return "D"
	case RoleStandby:
		return "S"
	default:
		return ""
	}
}
