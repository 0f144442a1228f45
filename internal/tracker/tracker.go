// Package tracker ties the challenge engine to a durable store and to
// reminder delivery. Every successful mutation is followed by a best-effort
// save of the affected profile; a failed save is logged and the in-memory
// change stands.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/verte-zerg/reptrack/internal/challenge"
	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/reminder"
)

// ErrPersistenceUnavailable marks a store that could not be read or written.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// DefaultSaveTimeout bounds one SaveProfile call.
const DefaultSaveTimeout = 5 * time.Second

// Persister is a durable profile store.
type Persister interface {
	Load(ctx context.Context) (map[string]*model.Profile, error)
	SaveProfile(ctx context.Context, p *model.Profile) error
	Close() error
}

// Service runs engine operations and persists their results.
type Service struct {
	engine      *challenge.Engine
	persist     Persister
	saveTimeout time.Duration
	log         logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithSaveTimeout overrides DefaultSaveTimeout. Non-positive values are ignored.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// WithLogger replaces the standard logrus logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New wraps engine. A nil persist keeps everything in memory.
func New(engine *challenge.Engine, persist Persister, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		persist:     persist,
		saveTimeout: DefaultSaveTimeout,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the wrapped engine for read-only callers.
func (s *Service) Engine() *challenge.Engine {
	return s.engine
}

// Now returns the engine clock's current instant.
func (s *Service) Now() time.Time {
	return s.engine.Now()
}

// Load restores persisted profiles into the engine. On failure the engine
// is left empty and the returned error wraps ErrPersistenceUnavailable.
func (s *Service) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	profiles, err := s.persist.Load(ctx)
	if err != nil {
		err = fmt.Errorf("%w: load: %v", ErrPersistenceUnavailable, err)
		s.log.WithError(err).Warn("starting with an empty store")
		s.engine.Restore(nil)
		return err
	}
	s.engine.Restore(profiles)
	s.log.WithField("users", len(profiles)).Debug("profiles loaded")
	return nil
}

// Close releases the persister.
func (s *Service) Close() error {
	if s.persist == nil {
		return nil
	}
	return s.persist.Close()
}

func (s *Service) save(ctx context.Context, userID string) {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()
	if err := s.persist.SaveProfile(ctx, s.engine.Snapshot(userID)); err != nil {
		s.log.WithFields(logrus.Fields{
			"user":  userID,
			"error": fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err),
		}).Error("failed to save profile")
	}
}

// CreateChallenge creates a challenge and persists the profile.
func (s *Service) CreateChallenge(ctx context.Context, userID string, exercise model.Exercise, totalReps, days int) (string, error) {
	id, err := s.engine.CreateChallenge(userID, exercise, totalReps, days)
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"user": userID, "challenge": id}).Info("challenge created")
	s.save(ctx, userID)
	return id, nil
}

// AddReps logs reps, persists the profile and returns the updated progress.
func (s *Service) AddReps(ctx context.Context, userID, challengeID string, reps int) (model.Progress, error) {
	if err := s.engine.AddReps(userID, challengeID, reps); err != nil {
		return model.Progress{}, err
	}
	s.save(ctx, userID)
	p, err := s.engine.Progress(userID, challengeID)
	if err != nil {
		return model.Progress{}, err
	}
	fields := logrus.Fields{"user": userID, "challenge": challengeID, "reps": reps}
	if p.Challenge.Status == model.StatusCompleted {
		s.log.WithFields(fields).Info("challenge completed")
	} else {
		s.log.WithFields(fields).Debug("reps logged")
	}
	return p, nil
}

// Progress returns the forecast for one challenge.
func (s *Service) Progress(userID, challengeID string) (model.Progress, error) {
	return s.engine.Progress(userID, challengeID)
}

// ListActiveProgress returns forecasts for all active challenges.
func (s *Service) ListActiveProgress(userID string) []model.Progress {
	return s.engine.ListActiveProgress(userID)
}

// ListChallenges returns every challenge of the user.
func (s *Service) ListChallenges(userID string) []model.Challenge {
	return s.engine.ListChallenges(userID)
}

// Profile returns a copy of the user's profile.
func (s *Service) Profile(userID string) *model.Profile {
	return s.engine.Snapshot(userID)
}

// SetTimezone updates and persists the user's timezone.
func (s *Service) SetTimezone(ctx context.Context, userID, tz string) error {
	if err := s.engine.SetTimezone(userID, tz); err != nil {
		return err
	}
	s.save(ctx, userID)
	return nil
}

// SetReminderTimes updates and persists the reminder times.
func (s *Service) SetReminderTimes(ctx context.Context, userID, morning, evening string) error {
	if err := s.engine.SetReminderTimes(userID, morning, evening); err != nil {
		return err
	}
	s.save(ctx, userID)
	return nil
}

// ToggleReminders flips and persists the reminder switch.
func (s *Service) ToggleReminders(ctx context.Context, userID string) bool {
	enabled := s.engine.ToggleReminders(userID)
	s.save(ctx, userID)
	return enabled
}

// SetRemindersEnabled turns reminders on or off and persists the choice.
func (s *Service) SetRemindersEnabled(ctx context.Context, userID string, enabled bool) {
	s.engine.SetRemindersEnabled(userID, enabled)
	s.save(ctx, userID)
}

// DueUsers returns the users with a reminder slot in (since, now]. Users
// whose reminder times do not parse are logged and skipped.
func (s *Service) DueUsers(since, now time.Time) []string {
	var due []string
	for _, userID := range s.engine.Users() {
		slots, err := reminder.DueSlots(*s.engine.Snapshot(userID), since, now)
		if err != nil {
			s.log.WithError(err).WithField("user", userID).Warn("bad reminder times")
			continue
		}
		if len(slots) > 0 {
			due = append(due, userID)
		}
	}
	return due
}

// Remind sends reminders to users through n. Users with nothing to say are
// skipped. It returns how many users were notified and every delivery error.
func (s *Service) Remind(ctx context.Context, n reminder.Notifier, users []string) (int, error) {
	now := s.engine.Now()
	var (
		sent int
		errs error
	)
	for _, userID := range users {
		if !s.engine.HasUser(userID) {
			continue
		}
		lines := reminder.BuildDecisions(*s.engine.Snapshot(userID), now)
		if len(lines) == 0 {
			continue
		}
		if err := n.Notify(ctx, userID, lines); err != nil {
			s.log.WithError(err).WithField("user", userID).Error("failed to send reminder")
			errs = multierr.Append(errs, fmt.Errorf("notify %s: %w", userID, err))
			continue
		}
		sent++
	}
	return sent, errs
}
