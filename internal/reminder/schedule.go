package reminder

import (
	"fmt"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

// Slot names.
const (
	SlotMorning = "morning"
	SlotEvening = "evening"
)

// Slot is one daily reminder time in the user's timezone.
type Slot struct {
	Name   string
	Hour   int
	Minute int
}

// String formats the slot as "name HH:MM".
func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d", s.Name, s.Hour, s.Minute)
}

// Slots parses the profile's reminder times.
func Slots(p model.Profile) ([]Slot, error) {
	named := []struct {
		name  string
		value string
	}{
		{SlotMorning, p.ReminderTimes.Morning},
		{SlotEvening, p.ReminderTimes.Evening},
	}
	slots := make([]Slot, 0, len(named))
	for _, n := range named {
		h, m, err := model.ParseTimeOfDay(n.value)
		if err != nil {
			return nil, fmt.Errorf("%s reminder: %w", n.name, err)
		}
		slots = append(slots, Slot{Name: n.name, Hour: h, Minute: m})
	}
	return slots, nil
}

// DueSlots returns the slots whose local time fell in (since, now]. A caller
// polling every few minutes passes its previous poll time as since.
func DueSlots(p model.Profile, since, now time.Time) ([]Slot, error) {
	if !now.After(since) {
		return nil, nil
	}
	slots, err := Slots(p)
	if err != nil {
		return nil, err
	}
	loc := p.Location()
	from := since.In(loc)
	to := now.In(loc)

	var due []Slot
	for _, s := range slots {
		for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			at := time.Date(d.Year(), d.Month(), d.Day(), s.Hour, s.Minute, 0, 0, loc)
			if at.After(from) && !at.After(to) {
				due = append(due, s)
				break
			}
		}
	}
	return due, nil
}

// NextFiring returns the first slot strictly after now and when it fires.
func NextFiring(p model.Profile, now time.Time) (Slot, time.Time, error) {
	slots, err := Slots(p)
	if err != nil {
		return Slot{}, time.Time{}, err
	}
	loc := p.Location()
	local := now.In(loc)

	var (
		best   Slot
		bestAt time.Time
	)
	for _, s := range slots {
		at := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, loc)
		if !at.After(local) {
			at = time.Date(local.Year(), local.Month(), local.Day()+1, s.Hour, s.Minute, 0, 0, loc)
		}
		if bestAt.IsZero() || at.Before(bestAt) {
			best, bestAt = s, at
		}
	}
	return best, bestAt, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
