// Package points carries the post-solve arithmetic: normalizing realized
// scores into next cycle's balances and forecasting next cycle's duty load.
package points

import (
	"math"

	"github.com/jakechorley/duty-planner/pkg/core/model"
)

// avgPointsPerDuty converts a projected point share into an estimated duty
// day count.
const avgPointsPerDuty = 1.4

// Normalization is the output of one normalization pass
type Normalization struct {
	// Shifted holds the scores after the zero-floor shift, before any
	// division. Forecasting works on these.
	Shifted []float64

	// Balances are the values carried to the next cycle: Shifted divided by
	// Scale
	Balances []float64

	// Scale is the applied divisor, 1 when the spread was within tolerance
	Scale float64
}

// Normalize shifts the scores so the minimum sits at zero, then compresses
// the spread back to the tolerance when it has grown past it. Running it on
// its own output changes nothing.
func Normalize(scores []float64, tolerance float64) Normalization {
	n := Normalization{
		Shifted:  make([]float64, len(scores)),
		Balances: make([]float64, len(scores)),
		Scale:    1,
	}
	if len(scores) == 0 {
		return n
	}

	low, high := scores[0], scores[0]
	for _, v := range scores[1:] {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}

	spread := high - low
	if tolerance > 0 && spread > tolerance {
		n.Scale = spread / tolerance
	}

	for i, v := range scores {
		n.Shifted[i] = v - low
		n.Balances[i] = n.Shifted[i] / n.Scale
	}
	return n
}

// TotalPoints sums the point value of every duty slot in the given days
func TotalPoints(days []model.DayRecord, dailySlots int) float64 {
	total := 0.0
	for _, d := range days {
		total += d.Points * float64(dailySlots)
	}
	return total
}

// Forecast estimates next cycle's duty days per staff member from the
// shifted balances: the further below the pack a member sits, the larger
// their share of the coming month's points. Results are rounded to one
// decimal place.
func Forecast(shifted []float64, totalPoints float64) []float64 {
	out := make([]float64, len(shifted))
	if len(shifted) == 0 {
		return out
	}

	high := shifted[0]
	for _, v := range shifted[1:] {
		high = math.Max(high, v)
	}

	// +1 keeps the front-runner's weight positive, so everyone gets a share
	weights := make([]float64, len(shifted))
	sum := 0.0
	for i, v := range shifted {
		weights[i] = high + 1 - v
		sum += weights[i]
	}

	for i, w := range weights {
		days := (w / sum) * totalPoints / avgPointsPerDuty
		out[i] = math.Round(days*10) / 10
	}
	return out
}
