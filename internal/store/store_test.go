package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/reptrack/internal/model"
)

func sampleProfile() *model.Profile {
	start := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	done := start.Add(72 * time.Hour)
	p := model.NewProfile("alice")
	p.Timezone = "Europe/Berlin"
	p.ReminderTimes.Evening = "21:15"
	p.Challenges["PUSHUPS_20240501_083000_abcd1234"] = &model.Challenge{
		ID:           "PUSHUPS_20240501_083000_abcd1234",
		Exercise:     model.PushUps,
		TotalReps:    100,
		TargetDays:   10,
		CurrentReps:  40,
		StartDate:    start,
		TargetDate:   start.AddDate(0, 0, 10),
		Status:       model.StatusActive,
		DailyRecords: map[string]int{"2024-05-01": 25, "2024-05-02": 15},
		DailyTarget:  10,
	}
	p.Challenges["PLANKS_20240501_083000_ffff0000"] = &model.Challenge{
		ID:             "PLANKS_20240501_083000_ffff0000",
		Exercise:       model.Planks,
		TotalReps:      60,
		TargetDays:     3,
		CurrentReps:    60,
		StartDate:      start,
		TargetDate:     start.AddDate(0, 0, 3),
		Status:         model.StatusCompleted,
		DailyRecords:   map[string]int{"2024-05-04": 60},
		DailyTarget:    20,
		CompletionDate: &done,
	}
	return p
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reptrack.db")
	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	p := sampleProfile()
	require.NoError(t, st.SaveProfile(ctx, p))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, "alice")
	got := loaded["alice"]
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.Equal(t, "21:15", got.ReminderTimes.Evening)
	assert.True(t, got.RemindersEnabled)
	require.Len(t, got.Challenges, 2)

	for id, want := range p.Challenges {
		have := got.Challenges[id]
		require.NotNil(t, have, id)
		assert.True(t, want.StartDate.Equal(have.StartDate))
		assert.True(t, want.TargetDate.Equal(have.TargetDate))
		assert.Equal(t, want.DailyRecords, have.DailyRecords)
		assert.Equal(t, want.CurrentReps, have.CurrentReps)
		assert.Equal(t, want.Status, have.Status)
		assert.InDelta(t, want.DailyTarget, have.DailyTarget, 1e-9)
	}
	completed := got.Challenges["PLANKS_20240501_083000_ffff0000"]
	require.NotNil(t, completed.CompletionDate)
	assert.True(t, p.Challenges["PLANKS_20240501_083000_ffff0000"].CompletionDate.Equal(*completed.CompletionDate))
	assert.Nil(t, got.Challenges["PUSHUPS_20240501_083000_abcd1234"].CompletionDate)
}

func TestSaveProfileOverwrites(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "reptrack.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	p := sampleProfile()
	require.NoError(t, st.SaveProfile(ctx, p))

	c := p.Challenges["PUSHUPS_20240501_083000_abcd1234"]
	c.CurrentReps = 55
	c.DailyRecords["2024-05-02"] = 30
	p.RemindersEnabled = false
	require.NoError(t, st.SaveProfile(ctx, p))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	got := loaded["alice"].Challenges["PUSHUPS_20240501_083000_abcd1234"]
	assert.Equal(t, 55, got.CurrentReps)
	assert.Equal(t, map[string]int{"2024-05-01": 25, "2024-05-02": 30}, got.DailyRecords)
	assert.False(t, loaded["alice"].RemindersEnabled)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reptrack.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.SaveProfile(context.Background(), sampleProfile()))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()
	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded["alice"].Challenges, 2)
}

func TestLoadEmpty(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "reptrack.db"))
	require.NoError(t, err)
	defer st.Close()

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
