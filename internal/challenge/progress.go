package challenge

import (
	"math"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

const day = 24 * time.Hour

// maxProjectionDays bounds the forecast; a pace slower than this is
// reported as finishing maxProjectionDays out.
const maxProjectionDays = 10_000_000

// ComputeProgress derives pace and forecast metrics for c at now. It does
// not modify c.
//
// NeededDailyAvg divides by max(DaysRemaining, 1), so once the target date
// has passed it reports the whole remainder as due in a single day rather
// than growing without bound.
func ComputeProgress(c model.Challenge, now time.Time) model.Progress {
	daysElapsed := floorDays(now.Sub(c.StartDate)) + 1
	daysRemaining := floorDays(c.TargetDate.Sub(now))
	remaining := c.TotalReps - c.CurrentReps

	var percentage float64
	if c.TotalReps > 0 {
		percentage = float64(c.CurrentReps) / float64(c.TotalReps) * 100
	}

	var actualAvg float64
	if daysElapsed > 0 {
		actualAvg = float64(c.CurrentReps) / float64(daysElapsed)
	}

	neededAvg := float64(remaining) / float64(max(daysRemaining, 1))

	var projected *time.Time
	if actualAvg > 0 {
		t := projectFrom(now, float64(remaining)/actualAvg)
		projected = &t
	}

	return model.Progress{
		Challenge:           c,
		Percentage:          percentage,
		DaysElapsed:         daysElapsed,
		DaysRemaining:       daysRemaining,
		ActualDailyAvg:      actualAvg,
		NeededDailyAvg:      neededAvg,
		ProjectedCompletion: projected,
		OnTrack:             actualAvg >= c.DailyTarget,
	}
}

// projectFrom returns now plus daysToGo days. Whole days step by calendar
// date so the result never overflows time.Duration.
func projectFrom(now time.Time, daysToGo float64) time.Time {
	if daysToGo > maxProjectionDays {
		daysToGo = maxProjectionDays
	}
	whole := math.Floor(daysToGo)
	if whole*float64(day) < math.MaxInt64/2 {
		return now.Add(time.Duration(daysToGo * float64(day)))
	}
	return now.AddDate(0, 0, int(whole)).Add(time.Duration((daysToGo - whole) * float64(day)))
}

// floorDays converts d to whole days, rounding toward negative infinity.
func floorDays(d time.Duration) int {
	return int(math.Floor(float64(d) / float64(day)))
}
