package model

import "strings"

// AdjustmentKind is one of the eight canonical manual point adjustments
// recorded as free text against the previous month's sheet.
type AdjustmentKind int

const (
	AdjNone AdjustmentKind = iota
	AdjAddWeekday
	AdjAddFriday
	AdjAddWeekend
	AdjAddHoliday
	AdjMinusWeekday
	AdjMinusFriday
	AdjMinusWeekend
	AdjMinusHoliday
)

// adjustment token fragments, checked in order; no fragment is a substring
// of another so the order carries no precedence
var adjustmentTokens = []struct {
	fragment string
	kind     AdjustmentKind
}{
	{"ADD 1X WD", AdjAddWeekday},
	{"ADD 1X F", AdjAddFriday},
	{"ADD 1X WE", AdjAddWeekend},
	{"ADD 1X H", AdjAddHoliday},
	{"MINUS 1X WD", AdjMinusWeekday},
	{"MINUS 1X F", AdjMinusFriday},
	{"MINUS 1X WE", AdjMinusWeekend},
	{"MINUS 1X H", AdjMinusHoliday},
}

// ParseAdjustment classifies a free-text change entry. Returns AdjNone when
// the text matches none of the canonical tokens.
func ParseAdjustment(raw string) AdjustmentKind {
	text := strings.ToUpper(strings.TrimSpace(raw))
	if text == "" {
		return AdjNone
	}
	for _, t := range adjustmentTokens {
		if strings.Contains(text, t.fragment) {
			return t.kind
		}
	}
	return AdjNone
}

// unit point values for the four day categories. These are the sheet's own
// units, intentionally independent of the configured point schedule.
const (
	adjWeekdayUnit = 1.0
	adjFridayUnit  = 1.5
	adjWeekendUnit = 2.0
	adjHolidayUnit = 2.0
)

// Delta returns the signed point delta for the adjustment, divided by the
// previous cycle's normalization scale so the delta lands in the same units
// as the stored balances.
func (k AdjustmentKind) Delta(lastScale float64) float64 {
	if lastScale <= 0 {
		lastScale = 1
	}
	switch k {
	case AdjAddWeekday:
		return adjWeekdayUnit / lastScale
	case AdjAddFriday:
		return adjFridayUnit / lastScale
	case AdjAddWeekend:
		return adjWeekendUnit / lastScale
	case AdjAddHoliday:
		return adjHolidayUnit / lastScale
	case AdjMinusWeekday:
		return -adjWeekdayUnit / lastScale
	case AdjMinusFriday:
		return -adjFridayUnit / lastScale
	case AdjMinusWeekend:
		return -adjWeekendUnit / lastScale
	case AdjMinusHoliday:
		return -adjHolidayUnit / lastScale
	default:
		return 0
	}
}

// ManualAdjustment is one parsed change row from the previous month's sheet.
// Base is the balance value recorded alongside the change; the adjusted
// balance (Base + Kind.Delta(scale)) overrides the stored balance.
type ManualAdjustment struct {
	StaffKey string
	Kind     AdjustmentKind
	Raw      string
	Base     float64
}
