// Package reminder decides what a reminder says for each active challenge and
// when a user's reminder slots are due. Delivery is left to a Notifier.
package reminder

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

// BuildDecisions classifies today's logging for each active challenge of p.
// It returns nil when reminders are disabled or nothing is active.
func BuildDecisions(p model.Profile, now time.Time) []model.ReminderLine {
	if !p.RemindersEnabled {
		return nil
	}
	today := now.In(p.Location()).Format(model.DateLayout)

	active := make([]*model.Challenge, 0, len(p.Challenges))
	for _, c := range p.Challenges {
		if c != nil && c.Status == model.StatusActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].StartDate.Equal(active[j].StartDate) {
			return active[i].ID < active[j].ID
		}
		return active[i].StartDate.Before(active[j].StartDate)
	})

	lines := make([]model.ReminderLine, 0, len(active))
	for _, c := range active {
		lines = append(lines, Classify(*c, c.DailyRecords[today]))
	}
	return lines
}

// Classify compares todayReps with the challenge's daily target. Fractional
// targets round half to even, so 2.5 reps needed shows as 2.
func Classify(c model.Challenge, todayReps int) model.ReminderLine {
	line := model.ReminderLine{
		ChallengeID: c.ID,
		Exercise:    c.Exercise,
	}
	switch {
	case todayReps <= 0:
		line.Kind = model.ReminderNotStarted
		line.Value = int(math.RoundToEven(c.DailyTarget))
	case float64(todayReps) < c.DailyTarget:
		line.Kind = model.ReminderPartial
		line.Value = int(math.RoundToEven(c.DailyTarget - float64(todayReps)))
	default:
		line.Kind = model.ReminderGoalMet
	}
	return line
}
