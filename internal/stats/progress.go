package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

const (
	barBlocks  = 20
	dateFormat = "January 02, 2006"
)

// ProgressBar renders pct as barBlocks blocks, one per 5%.
func ProgressBar(pct float64) string {
	filled := int(pct / (100 / barBlocks))
	if filled < 0 {
		filled = 0
	}
	if filled > barBlocks {
		filled = barBlocks
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barBlocks-filled) + "]"
}

// WriteProgress writes the full progress report of one challenge. Dates are
// shown in loc.
func WriteProgress(w io.Writer, p model.Progress, loc *time.Location) error {
	_, err := io.WriteString(w, strings.Join(ProgressLines(p, loc), "\n")+"\n")
	return err
}

// ProgressLines returns the report WriteProgress prints.
func ProgressLines(p model.Progress, loc *time.Location) []string {
	c := p.Challenge
	unit := c.Exercise.Unit()
	lines := []string{
		fmt.Sprintf("%s Challenge Progress", c.Exercise.Title()),
		"",
		fmt.Sprintf("Goal:            %s %s in %d days", FormatInt(c.TotalReps), unit, c.TargetDays),
		fmt.Sprintf("Current:         %s %s (%.1f%%)", FormatInt(c.CurrentReps), unit, p.Percentage),
		fmt.Sprintf("Days elapsed:    %d", p.DaysElapsed),
		fmt.Sprintf("Days remaining:  %d", p.DaysRemaining),
		"",
		fmt.Sprintf("%s %.1f%%", ProgressBar(p.Percentage), p.Percentage),
		"",
		fmt.Sprintf("Your daily avg:  %.1f %s", p.ActualDailyAvg, unit),
		fmt.Sprintf("Target daily:    %.1f %s", c.DailyTarget, unit),
	}
	if c.Status == model.StatusCompleted {
		done := "completed"
		if c.CompletionDate != nil {
			done += " on " + c.CompletionDate.In(loc).Format(dateFormat)
		}
		return append(lines, "", "Challenge "+done+"!")
	}
	if p.DaysRemaining > 0 {
		lines = append(lines, fmt.Sprintf("Needed per day:  %.1f %s", p.NeededDailyAvg, unit))
	}
	if verdict := Verdict(p, loc); len(verdict) > 0 {
		lines = append(lines, "")
		lines = append(lines, verdict...)
	}
	return lines
}

// Verdict describes the forecast in loc. It is empty when nothing has been
// logged.
func Verdict(p model.Progress, loc *time.Location) []string {
	if p.ProjectedCompletion == nil {
		return nil
	}
	projected := p.ProjectedCompletion.In(loc).Format(dateFormat)
	if !p.OnTrack {
		return []string{
			"Warning: at the current pace you will finish late.",
			"Target finish:    " + p.Challenge.TargetDate.In(loc).Format(dateFormat),
			"Projected finish: " + projected,
		}
	}
	lines := []string{"Forecast: you will finish by " + projected + "."}
	if late, ok := p.DaysLate(loc); ok {
		return append(lines, fmt.Sprintf("You will be %d %s late. Consider increasing your daily %s.", late, plural(late, "day"), p.Challenge.Exercise.Unit()))
	}
	return append(lines, "You are on track to meet your goal.")
}

// Feedback is the short message shown right after logging reps.
func Feedback(p model.Progress, added int) []string {
	c := p.Challenge
	unit := c.Exercise.Unit()
	lines := []string{
		fmt.Sprintf("Added:      %s %s", FormatInt(added), unit),
		fmt.Sprintf("Total:      %s/%s", FormatInt(c.CurrentReps), FormatInt(c.TotalReps)),
		fmt.Sprintf("Progress:   %.1f%%", p.Percentage),
		fmt.Sprintf("Daily avg:  %.1f", p.ActualDailyAvg),
	}
	switch {
	case c.Status == model.StatusCompleted:
		lines = append(lines, "",
			"CHALLENGE COMPLETED!",
			fmt.Sprintf("You've completed %s %s of %s.", FormatInt(c.TotalReps), unit, c.Exercise.Title()))
	case p.OnTrack:
		lines = append(lines, "", "You're on track to meet your goal. Keep it up!")
	default:
		lines = append(lines, "", fmt.Sprintf("To finish on time, aim for %.1f %s/day.", p.NeededDailyAvg, unit))
	}
	return lines
}

// FormatInt renders n with thousands separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
