package challenge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/reptrack/internal/challenge"
	"github.com/verte-zerg/reptrack/internal/model"
)

func testChallenge(total, days, current int) model.Challenge {
	return model.Challenge{
		ID:           "PUSHUPS_test",
		Exercise:     model.PushUps,
		TotalReps:    total,
		TargetDays:   days,
		CurrentReps:  current,
		StartDate:    testStart,
		TargetDate:   testStart.AddDate(0, 0, days),
		Status:       model.StatusActive,
		DailyRecords: map[string]int{"2024-03-01": current},
		DailyTarget:  float64(total) / float64(days),
	}
}

func TestComputeProgress(t *testing.T) {
	c := testChallenge(1000, 10, 300)
	now := testStart.Add(2*24*time.Hour + 3*time.Hour)

	p := challenge.ComputeProgress(c, now)

	assert.Equal(t, 3, p.DaysElapsed)
	assert.Equal(t, 7, p.DaysRemaining)
	assert.InDelta(t, 30.0, p.Percentage, 1e-9)
	assert.InDelta(t, 100.0, p.ActualDailyAvg, 1e-9)
	assert.InDelta(t, 100.0, p.NeededDailyAvg, 1e-9)
	assert.True(t, p.OnTrack)
	require.NotNil(t, p.ProjectedCompletion)
	assert.Equal(t, now.Add(7*24*time.Hour), *p.ProjectedCompletion)
	assert.Equal(t, c, p.Challenge)
}

func TestComputeProgress_CreationDayCountsAsDayOne(t *testing.T) {
	c := testChallenge(100, 10, 0)

	p := challenge.ComputeProgress(c, testStart)
	assert.Equal(t, 1, p.DaysElapsed)
	assert.Equal(t, 10, p.DaysRemaining)

	p = challenge.ComputeProgress(c, testStart.Add(23*time.Hour))
	assert.Equal(t, 1, p.DaysElapsed)
	assert.Equal(t, 9, p.DaysRemaining)
}

func TestComputeProgress_NoProgressHasNoForecast(t *testing.T) {
	c := testChallenge(100, 10, 0)

	p := challenge.ComputeProgress(c, testStart.Add(time.Hour))

	assert.Nil(t, p.ProjectedCompletion)
	assert.Zero(t, p.ActualDailyAvg)
	assert.Zero(t, p.Percentage)
	assert.False(t, p.OnTrack)
	late, ok := p.DaysLate(time.UTC)
	assert.Zero(t, late)
	assert.False(t, ok)
}

func TestComputeProgress_OnTrackBoundary(t *testing.T) {
	now := testStart.Add(time.Hour)

	p := challenge.ComputeProgress(testChallenge(100, 10, 10), now)
	assert.Equal(t, 1, p.DaysElapsed)
	assert.InDelta(t, 10.0, p.ActualDailyAvg, 1e-9)
	assert.True(t, p.OnTrack)

	p = challenge.ComputeProgress(testChallenge(100, 10, 9), now)
	assert.False(t, p.OnTrack)
}

func TestComputeProgress_Idempotent(t *testing.T) {
	c := testChallenge(500, 20, 123)
	now := testStart.Add(4*24*time.Hour + 17*time.Minute)

	first := challenge.ComputeProgress(c, now)
	second := challenge.ComputeProgress(c, now)

	assert.Equal(t, first, second)
	assert.Equal(t, testChallenge(500, 20, 123), c)
}

func TestComputeProgress_Overdue(t *testing.T) {
	c := testChallenge(100, 5, 60)
	now := testStart.AddDate(0, 0, 8).Add(time.Hour)

	p := challenge.ComputeProgress(c, now)

	assert.Equal(t, -4, p.DaysRemaining)
	assert.True(t, p.Overdue())
	assert.InDelta(t, 40.0, p.NeededDailyAvg, 1e-9)
	assert.False(t, p.OnTrack)
	late, ok := p.DaysLate(time.UTC)
	assert.True(t, ok)
	assert.Greater(t, late, 0)
}

func TestComputeProgress_DueToday(t *testing.T) {
	c := testChallenge(100, 5, 80)
	now := c.TargetDate.Add(-time.Hour)

	p := challenge.ComputeProgress(c, now)

	assert.Equal(t, 0, p.DaysRemaining)
	assert.InDelta(t, 20.0, p.NeededDailyAvg, 1e-9)
}

func TestProgress_DaysLate(t *testing.T) {
	// 10 reps a day on a 20/day target: the remaining 900 take 90 more days.
	c := testChallenge(1000, 50, 100)
	now := testStart.Add(9*24*time.Hour + time.Hour)

	p := challenge.ComputeProgress(c, now)

	assert.Equal(t, 10, p.DaysElapsed)
	assert.False(t, p.OnTrack)
	require.NotNil(t, p.ProjectedCompletion)
	late, ok := p.DaysLate(time.UTC)
	assert.True(t, ok)
	assert.Equal(t, 49, late)
}

func TestComputeProgress_SlowPaceProjectsIntoFuture(t *testing.T) {
	// One rep in 121 days leaves 99,999 reps about 33,000 years out.
	c := testChallenge(100000, 365, 1)
	now := testStart.AddDate(0, 0, 120)

	p := challenge.ComputeProgress(c, now)

	require.NotNil(t, p.ProjectedCompletion)
	assert.True(t, p.ProjectedCompletion.After(now), "projected %v before now %v", p.ProjectedCompletion, now)
	assert.Greater(t, p.ProjectedCompletion.Year(), 10000)
	late, ok := p.DaysLate(time.UTC)
	assert.True(t, ok)
	assert.Greater(t, late, 0)
}

func TestComputeProgress_ProjectionPastDurationRange(t *testing.T) {
	// One rep a day leaves 20,000,000 days to go, past the forecast cap.
	c := testChallenge(20_000_001, 365, 1)
	p := challenge.ComputeProgress(c, testStart.Add(time.Hour))

	require.NotNil(t, p.ProjectedCompletion)
	assert.True(t, p.ProjectedCompletion.After(testStart))
	assert.Equal(t, testStart.Add(time.Hour).AddDate(0, 0, 10_000_000), *p.ProjectedCompletion)
}
