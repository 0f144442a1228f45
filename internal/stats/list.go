package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

// PaceLabel summarizes a progress forecast in a couple of words.
func PaceLabel(p model.Progress) string {
	switch {
	case p.Challenge.Status == model.StatusCompleted:
		return "done"
	case p.Challenge.Status != model.StatusActive:
		return string(p.Challenge.Status)
	case p.Challenge.CurrentReps == 0:
		return "not started"
	case p.Overdue():
		return "overdue"
	case p.OnTrack:
		return "on track"
	default:
		return "behind"
	}
}

// WriteActiveList writes one table row per active challenge.
func WriteActiveList(w io.Writer, progress []model.Progress) error {
	if len(progress) == 0 {
		_, err := io.WriteString(w, "No active challenges. Start one with `reptrack new`.\n")
		return err
	}
	headers := []string{"ID", "Exercise", "Progress", "%", "Days left", "Avg/day", "Pace"}
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		c := p.Challenge
		rows = append(rows, []string{
			c.ID,
			c.Exercise.Title(),
			FormatInt(c.CurrentReps) + "/" + FormatInt(c.TotalReps),
			fmt.Sprintf("%.1f", p.Percentage),
			fmt.Sprintf("%d", p.DaysRemaining),
			fmt.Sprintf("%.1f", p.ActualDailyAvg),
			PaceLabel(p),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true})
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteChallengeList writes every challenge regardless of status, with
// dates in loc.
func WriteChallengeList(w io.Writer, challenges []model.Challenge, loc *time.Location) error {
	if len(challenges) == 0 {
		_, err := io.WriteString(w, "No challenges yet.\n")
		return err
	}
	headers := []string{"ID", "Exercise", "Progress", "Started", "Target", "Status"}
	rows := make([][]string, 0, len(challenges))
	for _, c := range challenges {
		rows = append(rows, []string{
			c.ID,
			c.Exercise.Title(),
			FormatInt(c.CurrentReps) + "/" + FormatInt(c.TotalReps),
			c.StartDate.In(loc).Format(model.DateLayout),
			c.TargetDate.In(loc).Format(model.DateLayout),
			string(c.Status),
		})
	}
	lines := formatTable(headers, rows, map[int]bool{2: true})
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
