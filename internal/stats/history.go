package stats

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/reptrack/internal/model"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	barGlyph            = "█"
)

// DayTotal is one calendar day of a challenge.
type DayTotal struct {
	Day        string
	Reps       int
	Cumulative int
	MetTarget  bool
}

// History lists every day from the challenge start through today (or the
// completion day), in loc, including days without reps.
func History(c model.Challenge, loc *time.Location, now time.Time) []DayTotal {
	if loc == nil {
		loc = time.UTC
	}
	end := now
	if c.CompletionDate != nil {
		end = *c.CompletionDate
	}
	days := map[string]struct{}{}
	for day := range c.DailyRecords {
		days[day] = struct{}{}
	}
	first := dayStart(c.StartDate.In(loc))
	last := dayStart(end.In(loc))
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days[d.Format(model.DateLayout)] = struct{}{}
	}

	keys := make([]string, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	out := make([]DayTotal, 0, len(keys))
	total := 0
	for _, day := range keys {
		reps := c.DailyRecords[day]
		total += reps
		out = append(out, DayTotal{
			Day:        day,
			Reps:       reps,
			Cumulative: total,
			MetTarget:  reps > 0 && float64(reps) >= c.DailyTarget,
		})
	}
	return out
}

// WriteHistory writes the per-day table followed by a bar chart sized to
// width display cells.
func WriteHistory(w io.Writer, c model.Challenge, days []DayTotal, width int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s (%s/%s %s)\n\n", c.ID, c.Exercise.Title(),
		FormatInt(c.CurrentReps), FormatInt(c.TotalReps), c.Exercise.Unit())
	if len(days) == 0 {
		b.WriteString("No days recorded.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		mark := ""
		if d.MetTarget {
			mark = "✓"
		}
		rows = append(rows, []string{d.Day, FormatInt(d.Reps), FormatInt(d.Cumulative), mark})
	}
	for _, line := range formatTable([]string{"Day", "Reps", "Total", "Goal"}, rows, map[int]bool{1: true, 2: true}) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, line := range barChart(days, width) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func barChart(days []DayTotal, width int) []string {
	maxReps := 0
	numWidth := 0
	for _, d := range days {
		if d.Reps > maxReps {
			maxReps = d.Reps
		}
		if n := displayWidth(FormatInt(d.Reps)); n > numWidth {
			numWidth = n
		}
	}
	label := len(model.DateLayout)
	barWidth := width - label - numWidth - 4
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lines := make([]string, 0, len(days))
	for _, d := range days {
		n := 0
		if maxReps > 0 {
			n = d.Reps * barWidth / maxReps
		}
		if d.Reps > 0 && n == 0 {
			n = 1
		}
		bar := padCell(strings.Repeat(barGlyph, n), barWidth, false, false)
		lines = append(lines, fmt.Sprintf("%s │%s %*s", d.Day, bar, numWidth, FormatInt(d.Reps)))
	}
	return lines
}

// TerminalWidth returns the width of f when it is a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
