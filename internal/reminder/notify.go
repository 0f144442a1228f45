package reminder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/verte-zerg/reptrack/internal/model"
)

// Notifier delivers a rendered reminder to one user.
type Notifier interface {
	Notify(ctx context.Context, userID string, lines []model.ReminderLine) error
}

// Render writes the reminder text for lines.
func Render(w io.Writer, lines []model.ReminderLine) error {
	var b strings.Builder
	b.WriteString("Daily Fitness Reminder!\n\n")
	b.WriteString("Time to work on your challenges:\n\n")
	for _, line := range lines {
		b.WriteString(FormatLine(line))
		b.WriteByte('\n')
	}
	b.WriteString("\nYou've got this! Every rep counts!\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatLine renders a single reminder line.
func FormatLine(line model.ReminderLine) string {
	title := line.Exercise.Title()
	unit := line.Exercise.Unit()
	switch line.Kind {
	case model.ReminderNotStarted:
		return fmt.Sprintf("  [ ] %s: %d %s needed", title, line.Value, unit)
	case model.ReminderPartial:
		return fmt.Sprintf("  [~] %s: %d more %s to reach daily goal", title, line.Value, unit)
	default:
		return fmt.Sprintf("  [x] %s: Daily goal achieved!", title)
	}
}

// WriterNotifier prints reminders to an io.Writer, one block per user.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a notifier that writes to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements Notifier.
func (n *WriterNotifier) Notify(ctx context.Context, userID string, lines []model.ReminderLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "== %s ==\n", userID); err != nil {
		return err
	}
	return Render(n.w, lines)
}
