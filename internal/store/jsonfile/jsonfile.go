// Package jsonfile persists profiles to a single JSON document keyed by user
// id. Writes go to a temp file that is renamed over the target.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/reptrack/internal/model"
)

// Store keeps the last written document in memory so SaveProfile can
// rewrite the whole file without reading it back.
type Store struct {
	path string

	mu       sync.Mutex
	profiles map[string]*model.Profile
	// loadErr is set when the file exists but could not be read; saving
	// then would replace every other user's data with nothing.
	loadErr error
}

// Open returns a store backed by path. The file is created on first save.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("json store path is empty")
	}
	return &Store{path: path, profiles: map[string]*model.Profile{}}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty map.
func (s *Store) Load(ctx context.Context) (map[string]*model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*model.Profile{}, nil
		}
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return nil, err
	}
	doc := map[string]*profileDoc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		err = fmt.Errorf("parse %s: %w", s.path, err)
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return nil, err
	}
	out := make(map[string]*model.Profile, len(doc))
	for userID, d := range doc {
		if d == nil {
			continue
		}
		out[userID] = d.profile(userID)
	}

	s.mu.Lock()
	s.loadErr = nil
	s.profiles = make(map[string]*model.Profile, len(out))
	for userID, p := range out {
		s.profiles[userID] = p.Clone()
	}
	s.mu.Unlock()
	return out, nil
}

// SaveProfile stores p and rewrites the document.
func (s *Store) SaveProfile(ctx context.Context, p *model.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return fmt.Errorf("refusing to overwrite unreadable file: %w", s.loadErr)
	}
	s.profiles[p.UserID] = p.Clone()
	data, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

// Close is a no-op; every save is already flushed.
func (s *Store) Close() error {
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "reptrack-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() {
		if rerr := os.Remove(tmpPath); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			// Best-effort cleanup.
			_ = rerr
		}
	}
	if _, err := tmpFile.Write(append(data, '\n')); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// profileDoc decodes one stored profile. Challenge timestamps go through
// isoTime so documents written without a UTC offset still load.
type profileDoc struct {
	model.Profile
	Challenges map[string]*challengeDoc `json:"challenges"`
}

type challengeDoc struct {
	model.Challenge
	StartDate      isoTime  `json:"start_date"`
	TargetDate     isoTime  `json:"target_date"`
	CompletionDate *isoTime `json:"completion_date,omitempty"`
}

func (d *profileDoc) profile(userID string) *model.Profile {
	p := d.Profile
	p.UserID = userID
	p.Challenges = make(map[string]*model.Challenge, len(d.Challenges))
	for id, cd := range d.Challenges {
		if cd == nil {
			continue
		}
		c := cd.Challenge
		c.StartDate = cd.StartDate.Time
		c.TargetDate = cd.TargetDate.Time
		if cd.CompletionDate != nil {
			done := cd.CompletionDate.Time
			c.CompletionDate = &done
		}
		if c.DailyRecords == nil {
			c.DailyRecords = map[string]int{}
		}
		p.Challenges[id] = &c
	}
	return &p
}

// Offset-less ISO-8601 layouts, read as UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	model.DateLayout,
}

// isoTime accepts RFC 3339 and ISO-8601 timestamps without a UTC offset.
type isoTime struct {
	time.Time
}

func (t *isoTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
