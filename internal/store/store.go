// Package store handles SQLite persistence of user profiles.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/reptrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for profile data.
type Store struct {
	db *sqlx.DB
}

type profileRow struct {
	UserID           string `db:"user_id"`
	Timezone         string `db:"timezone"`
	Morning          string `db:"morning"`
	Evening          string `db:"evening"`
	RemindersEnabled bool   `db:"reminders_enabled"`
}

type challengeRow struct {
	UserID         string         `db:"user_id"`
	ID             string         `db:"id"`
	Exercise       string         `db:"exercise"`
	TotalReps      int            `db:"total_reps"`
	TargetDays     int            `db:"target_days"`
	CurrentReps    int            `db:"current_reps"`
	StartDate      string         `db:"start_date"`
	TargetDate     string         `db:"target_date"`
	Status         string         `db:"status"`
	DailyTarget    float64        `db:"daily_target"`
	CompletionDate sql.NullString `db:"completion_date"`
}

type recordRow struct {
	UserID      string `db:"user_id"`
	ChallengeID string `db:"challenge_id"`
	Day         string `db:"day"`
	Reps        int    `db:"reps"`
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := migrate(db.DB); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads every stored profile keyed by user id.
func (s *Store) Load(ctx context.Context) (map[string]*model.Profile, error) {
	var profiles []profileRow
	if err := s.db.SelectContext(ctx, &profiles,
		`SELECT user_id, timezone, morning, evening, reminders_enabled FROM profiles`); err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	var challenges []challengeRow
	if err := s.db.SelectContext(ctx, &challenges,
		`SELECT user_id, id, exercise, total_reps, target_days, current_reps, start_date, target_date, status, daily_target, completion_date
		 FROM challenges`); err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	var records []recordRow
	if err := s.db.SelectContext(ctx, &records,
		`SELECT user_id, challenge_id, day, reps FROM daily_records`); err != nil {
		return nil, fmt.Errorf("load daily records: %w", err)
	}

	out := make(map[string]*model.Profile, len(profiles))
	for _, row := range profiles {
		out[row.UserID] = &model.Profile{
			UserID:     row.UserID,
			Challenges: map[string]*model.Challenge{},
			Timezone:   row.Timezone,
			ReminderTimes: model.ReminderTimes{
				Morning: row.Morning,
				Evening: row.Evening,
			},
			RemindersEnabled: row.RemindersEnabled,
		}
	}
	for _, row := range challenges {
		p, ok := out[row.UserID]
		if !ok {
			continue
		}
		c, err := row.challenge()
		if err != nil {
			return nil, fmt.Errorf("challenge %s: %w", row.ID, err)
		}
		p.Challenges[c.ID] = c
	}
	for _, row := range records {
		p, ok := out[row.UserID]
		if !ok {
			continue
		}
		c, ok := p.Challenges[row.ChallengeID]
		if !ok {
			continue
		}
		c.DailyRecords[row.Day] = row.Reps
	}
	return out, nil
}

// SaveProfile replaces the stored state of one profile in a single
// transaction.
func (s *Store) SaveProfile(ctx context.Context, p *model.Profile) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO profiles (user_id, timezone, morning, evening, reminders_enabled)
		 VALUES (:user_id, :timezone, :morning, :evening, :reminders_enabled)
		 ON CONFLICT(user_id) DO UPDATE SET
			timezone = excluded.timezone,
			morning = excluded.morning,
			evening = excluded.evening,
			reminders_enabled = excluded.reminders_enabled`,
		profileRow{
			UserID:           p.UserID,
			Timezone:         p.Timezone,
			Morning:          p.ReminderTimes.Morning,
			Evening:          p.ReminderTimes.Evening,
			RemindersEnabled: p.RemindersEnabled,
		}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	// Challenges are never deleted by the tracker, but records are
	// rewritten wholesale so a saved profile always matches memory.
	if _, err = tx.ExecContext(ctx, `DELETE FROM daily_records WHERE user_id = ?`, p.UserID); err != nil {
		return fmt.Errorf("clear daily records: %w", err)
	}
	for _, c := range p.Challenges {
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO challenges (user_id, id, exercise, total_reps, target_days, current_reps, start_date, target_date, status, daily_target, completion_date)
			 VALUES (:user_id, :id, :exercise, :total_reps, :target_days, :current_reps, :start_date, :target_date, :status, :daily_target, :completion_date)
			 ON CONFLICT(user_id, id) DO UPDATE SET
				current_reps = excluded.current_reps,
				status = excluded.status,
				completion_date = excluded.completion_date`,
			newChallengeRow(p.UserID, c)); err != nil {
			return fmt.Errorf("save challenge %s: %w", c.ID, err)
		}
		for day, reps := range c.DailyRecords {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO daily_records (user_id, challenge_id, day, reps) VALUES (?, ?, ?, ?)`,
				p.UserID, c.ID, day, reps); err != nil {
				return fmt.Errorf("save daily record %s/%s: %w", c.ID, day, err)
			}
		}
	}

	err = tx.Commit()
	return err
}

func newChallengeRow(userID string, c *model.Challenge) challengeRow {
	row := challengeRow{
		UserID:      userID,
		ID:          c.ID,
		Exercise:    string(c.Exercise),
		TotalReps:   c.TotalReps,
		TargetDays:  c.TargetDays,
		CurrentReps: c.CurrentReps,
		StartDate:   c.StartDate.Format(time.RFC3339Nano),
		TargetDate:  c.TargetDate.Format(time.RFC3339Nano),
		Status:      string(c.Status),
		DailyTarget: c.DailyTarget,
	}
	if c.CompletionDate != nil {
		row.CompletionDate = sql.NullString{String: c.CompletionDate.Format(time.RFC3339Nano), Valid: true}
	}
	return row
}

func (row challengeRow) challenge() (*model.Challenge, error) {
	start, err := time.Parse(time.RFC3339Nano, row.StartDate)
	if err != nil {
		return nil, err
	}
	target, err := time.Parse(time.RFC3339Nano, row.TargetDate)
	if err != nil {
		return nil, err
	}
	c := &model.Challenge{
		ID:           row.ID,
		Exercise:     model.Exercise(row.Exercise),
		TotalReps:    row.TotalReps,
		TargetDays:   row.TargetDays,
		CurrentReps:  row.CurrentReps,
		StartDate:    start,
		TargetDate:   target,
		Status:       model.Status(row.Status),
		DailyRecords: map[string]int{},
		DailyTarget:  row.DailyTarget,
	}
	if row.CompletionDate.Valid {
		done, err := time.Parse(time.RFC3339Nano, row.CompletionDate.String)
		if err != nil {
			return nil, err
		}
		c.CompletionDate = &done
	}
	return c, nil
}
