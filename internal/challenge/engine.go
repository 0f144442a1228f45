// Package challenge implements the challenge lifecycle, the per-user store
// and the progress/forecast calculator.
package challenge

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/reptrack/internal/clock"
	"github.com/verte-zerg/reptrack/internal/model"
)

// Engine applies challenge operations to an in-memory Store. It performs no
// I/O; callers persist Snapshot output after a successful mutation.
type Engine struct {
	clock clock.Clock
	store *Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfileTemplate sets the preferences new profiles start with. Empty
// strings keep the model defaults; RemindersEnabled is copied as is.
func WithProfileTemplate(tmpl model.Profile) Option {
	return func(e *Engine) {
		e.store = NewStore(func(userID string) *model.Profile {
			p := model.NewProfile(userID)
			if tmpl.Timezone != "" {
				p.Timezone = tmpl.Timezone
			}
			if tmpl.ReminderTimes.Morning != "" {
				p.ReminderTimes.Morning = tmpl.ReminderTimes.Morning
			}
			if tmpl.ReminderTimes.Evening != "" {
				p.ReminderTimes.Evening = tmpl.ReminderTimes.Evening
			}
			p.RemindersEnabled = tmpl.RemindersEnabled
			return p
		})
	}
}

// NewEngine builds an engine with an empty store.
func NewEngine(clk clock.Clock, opts ...Option) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	e := &Engine{
		clock: clk,
		store: NewStore(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current instant.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// CreateChallenge starts a new active challenge and returns its id.
func (e *Engine) CreateChallenge(userID string, exercise model.Exercise, totalReps, days int) (string, error) {
	if !exercise.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownExercise, exercise)
	}
	if totalReps <= 0 {
		return "", fmt.Errorf("%w: total reps must be > 0, got %d", ErrInvalidQuantity, totalReps)
	}
	if days <= 0 {
		return "", fmt.Errorf("%w: days must be > 0, got %d", ErrInvalidQuantity, days)
	}

	unlock := e.store.lockUser(userID)
	defer unlock()
	p := e.store.profile(userID)

	now := e.clock.Now()
	id := newChallengeID(exercise, now)
	for p.Challenges[id] != nil {
		id = newChallengeID(exercise, now)
	}

	p.Challenges[id] = &model.Challenge{
		ID:           id,
		Exercise:     exercise,
		TotalReps:    totalReps,
		TargetDays:   days,
		CurrentReps:  0,
		StartDate:    now,
		TargetDate:   now.AddDate(0, 0, days),
		Status:       model.StatusActive,
		DailyRecords: map[string]int{},
		DailyTarget:  float64(totalReps) / float64(days),
	}
	return id, nil
}

func newChallengeID(exercise model.Exercise, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", exercise.Name(), now.Format("20060102_150405"), uuid.NewString()[:8])
}

// AddReps logs reps against today's record and completes the challenge once
// the total is reached.
func (e *Engine) AddReps(userID, challengeID string, reps int) error {
	if reps <= 0 {
		return fmt.Errorf("%w: reps must be > 0, got %d", ErrInvalidQuantity, reps)
	}

	unlock := e.store.lockUser(userID)
	defer unlock()
	p, c, ok := e.find(userID, challengeID)
	if !ok {
		return fmt.Errorf("%s: %w", challengeID, ErrChallengeNotFound)
	}
	switch c.Status {
	case model.StatusActive:
	case model.StatusCompleted:
		return fmt.Errorf("%s: %w", challengeID, ErrChallengeCompleted)
	default:
		return fmt.Errorf("%s (%s): %w", challengeID, c.Status, ErrChallengeNotActive)
	}

	now := e.clock.Now()
	today := now.In(p.Location()).Format(model.DateLayout)
	if c.DailyRecords == nil {
		c.DailyRecords = map[string]int{}
	}
	c.CurrentReps += reps
	c.DailyRecords[today] += reps

	if c.CurrentReps >= c.TotalReps {
		c.Status = model.StatusCompleted
		c.CompletionDate = &now
	}
	return nil
}

// find looks a challenge up without creating the profile, so failed lookups
// leave the store untouched. The caller must hold the user's lock.
func (e *Engine) find(userID, challengeID string) (*model.Profile, *model.Challenge, bool) {
	p, ok := e.store.lookup(userID)
	if !ok {
		return nil, nil, false
	}
	c, ok := p.Challenges[challengeID]
	return p, c, ok
}

// Progress computes the snapshot for one challenge at the engine's now.
func (e *Engine) Progress(userID, challengeID string) (model.Progress, error) {
	unlock := e.store.lockUser(userID)
	defer unlock()
	_, c, ok := e.find(userID, challengeID)
	if !ok {
		return model.Progress{}, fmt.Errorf("%s: %w", challengeID, ErrChallengeNotFound)
	}
	return ComputeProgress(c.Clone(), e.clock.Now()), nil
}

// ListActiveProgress computes snapshots for the user's active challenges,
// oldest first.
func (e *Engine) ListActiveProgress(userID string) []model.Progress {
	now := e.clock.Now()
	var out []model.Progress
	for _, c := range e.ListChallenges(userID) {
		if c.Status != model.StatusActive {
			continue
		}
		out = append(out, ComputeProgress(c, now))
	}
	return out
}

// ListChallenges returns copies of all the user's challenges, oldest first.
func (e *Engine) ListChallenges(userID string) []model.Challenge {
	unlock := e.store.lockUser(userID)
	defer unlock()
	p := e.store.profile(userID)

	out := make([]model.Challenge, 0, len(p.Challenges))
	for _, c := range p.Challenges {
		out = append(out, c.Clone())
	}
	sortChallenges(out)
	return out
}

func sortChallenges(cs []model.Challenge) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].StartDate.Equal(cs[j].StartDate) {
			return cs[i].ID < cs[j].ID
		}
		return cs[i].StartDate.Before(cs[j].StartDate)
	})
}

// Users returns every user id the store knows about.
func (e *Engine) Users() []string {
	return e.store.Users()
}

// Snapshot returns a deep copy of the user's profile, creating it with
// defaults when unknown.
func (e *Engine) Snapshot(userID string) *model.Profile {
	unlock := e.store.lockUser(userID)
	defer unlock()
	return e.store.profile(userID).Clone()
}

// Restore replaces the store content with previously persisted profiles.
func (e *Engine) Restore(profiles map[string]*model.Profile) {
	e.store.Replace(profiles)
}

// HasUser reports whether the user has a profile without creating one.
func (e *Engine) HasUser(userID string) bool {
	_, ok := e.store.lookup(userID)
	return ok
}

// SetTimezone changes the IANA timezone daily records are keyed in.
func (e *Engine) SetTimezone(userID, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSetting, tz)
	}
	unlock := e.store.lockUser(userID)
	defer unlock()
	e.store.profile(userID).Timezone = tz
	return nil
}

// SetReminderTimes changes the morning and evening reminder times.
func (e *Engine) SetReminderTimes(userID, morning, evening string) error {
	for _, v := range []string{morning, evening} {
		if _, _, err := model.ParseTimeOfDay(v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
		}
	}
	unlock := e.store.lockUser(userID)
	defer unlock()
	e.store.profile(userID).ReminderTimes = model.ReminderTimes{Morning: morning, Evening: evening}
	return nil
}

// SetRemindersEnabled switches reminders on or off.
func (e *Engine) SetRemindersEnabled(userID string, enabled bool) {
	unlock := e.store.lockUser(userID)
	defer unlock()
	e.store.profile(userID).RemindersEnabled = enabled
}

// ToggleReminders flips the reminder switch and returns the new value.
func (e *Engine) ToggleReminders(userID string) bool {
	unlock := e.store.lockUser(userID)
	defer unlock()
	p := e.store.profile(userID)
	p.RemindersEnabled = !p.RemindersEnabled
	return p.RemindersEnabled
}
