// Package model defines shared data structures.
package model

import "time"

// DateLayout is the key format of Challenge.DailyRecords.
const DateLayout = "2006-01-02"

// Profile defaults for users seen for the first time.
const (
	DefaultTimezone = "UTC"
	DefaultMorning  = "09:00"
	DefaultEvening  = "20:00"
)

// Status is the lifecycle state of a challenge.
type Status string

// Challenge statuses. Only Active -> Completed has a producer; Paused and
// Failed are kept so stored data using them still loads.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusFailed    Status = "failed"
)

// ReminderTimes are the local times of day ("HH:MM") reminders fire at.
type ReminderTimes struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

// Profile holds one user's challenges and preferences.
type Profile struct {
	UserID           string                `json:"-"`
	Challenges       map[string]*Challenge `json:"challenges"`
	Timezone         string                `json:"timezone"`
	ReminderTimes    ReminderTimes         `json:"reminder_times"`
	RemindersEnabled bool                  `json:"reminders_enabled"`
}

// NewProfile returns a profile with default preferences and no challenges.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:     userID,
		Challenges: map[string]*Challenge{},
		Timezone:   DefaultTimezone,
		ReminderTimes: ReminderTimes{
			Morning: DefaultMorning,
			Evening: DefaultEvening,
		},
		RemindersEnabled: true,
	}
}

// Location resolves the profile timezone, falling back to UTC when the
// name is empty or unknown.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	out := *p
	out.Challenges = make(map[string]*Challenge, len(p.Challenges))
	for id, c := range p.Challenges {
		cc := c.Clone()
		out.Challenges[id] = &cc
	}
	return &out
}

// Challenge is a commitment to TotalReps units of one exercise within
// TargetDays days.
type Challenge struct {
	ID             string         `json:"id"`
	Exercise       Exercise       `json:"exercise"`
	TotalReps      int            `json:"total_reps"`
	TargetDays     int            `json:"target_days"`
	CurrentReps    int            `json:"current_reps"`
	StartDate      time.Time      `json:"start_date"`
	TargetDate     time.Time      `json:"target_date"`
	Status         Status         `json:"status"`
	DailyRecords   map[string]int `json:"daily_records"`
	DailyTarget    float64        `json:"daily_target"`
	CompletionDate *time.Time     `json:"completion_date,omitempty"`
}

// Clone returns a deep copy.
func (c Challenge) Clone() Challenge {
	records := make(map[string]int, len(c.DailyRecords))
	for day, reps := range c.DailyRecords {
		records[day] = reps
	}
	c.DailyRecords = records
	if c.CompletionDate != nil {
		done := *c.CompletionDate
		c.CompletionDate = &done
	}
	return c
}

// Progress is a point-in-time view of a challenge and its forecast.
type Progress struct {
	Challenge           Challenge
	Percentage          float64
	DaysElapsed         int
	DaysRemaining       int
	ActualDailyAvg      float64
	NeededDailyAvg      float64
	ProjectedCompletion *time.Time
	OnTrack             bool
}

// Overdue reports whether the target date has passed.
func (p Progress) Overdue() bool {
	return p.DaysRemaining < 0
}

// DaysLate reports whether the projection falls on a later calendar date
// in loc than the target date, and by how many whole days. A projection a
// few hours past the target on the next date is late by zero days.
func (p Progress) DaysLate(loc *time.Location) (days int, late bool) {
	if p.ProjectedCompletion == nil {
		return 0, false
	}
	projected := p.ProjectedCompletion.In(loc)
	target := p.Challenge.TargetDate.In(loc)
	if !calendarDate(projected).After(calendarDate(target)) {
		return 0, false
	}
	return int(projected.Sub(target) / (24 * time.Hour)), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReminderKind classifies today's logging against the daily target.
type ReminderKind string

// Reminder classifications.
const (
	ReminderNotStarted ReminderKind = "not-started"
	ReminderPartial    ReminderKind = "partial"
	ReminderGoalMet    ReminderKind = "goal-met"
)

// ReminderLine is one challenge's entry in a reminder. Value is the rounded
// daily target for ReminderNotStarted, the rounded remainder for
// ReminderPartial and unused for ReminderGoalMet.
type ReminderLine struct {
	ChallengeID string
	Exercise    Exercise
	Kind        ReminderKind
	Value       int
}
