package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/reptrack/internal/challenge"
	"github.com/verte-zerg/reptrack/internal/clock"
	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/tracker"
)

func newTestModel(t *testing.T) (*Model, *tracker.Service, string) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	svc := tracker.New(challenge.NewEngine(clk), nil)
	id, err := svc.CreateChallenge(context.Background(), "u1", model.PushUps, 100, 10)
	require.NoError(t, err)
	_, err = svc.CreateChallenge(context.Background(), "u1", model.Squats, 50, 5)
	require.NoError(t, err)

	m := NewModel(svc, "u1", 1000)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, svc, id
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestDashboardListsActiveChallenges(t *testing.T) {
	m, _, id := newTestModel(t)

	require.Len(t, m.items, 2)
	p, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, id, p.Challenge.ID)

	view := m.View()
	assert.Contains(t, view, "Push-Ups")
	assert.Contains(t, view, "Squats")
	assert.Contains(t, view, "Push-Ups Challenge Progress")
}

func TestDashboardLogsReps(t *testing.T) {
	m, svc, id := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.True(t, m.logMode)
	typeText(m, "25")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.logMode)
	assert.Empty(t, m.errMsg)
	assert.Contains(t, m.status, "Added 25 reps to Push-Ups")
	p, err := svc.Progress("u1", id)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Challenge.CurrentReps)
	assert.Equal(t, 25, m.items[0].Challenge.CurrentReps)
}

func TestDashboardRejectsBadInput(t *testing.T) {
	m, svc, id := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	typeText(m, "5000")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.logMode, "stays in input mode")
	assert.Contains(t, m.errMsg, "max 1,000")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.logMode)
	p, err := svc.Progress("u1", id)
	require.NoError(t, err)
	assert.Zero(t, p.Challenge.CurrentReps)
}

func TestDashboardCompletionLeavesList(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, model.Squats, p.Challenge.Exercise)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	typeText(m, "50")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, m.status, "Squats challenge completed!")
	require.Len(t, m.items, 1)
	p, ok = m.Selected()
	require.True(t, ok)
	assert.Equal(t, model.PushUps, p.Challenge.Exercise)
}

func TestDashboardHistoryTab(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	typeText(m, "12")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabHistory, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "2024-05-10")
	assert.True(t, strings.Contains(view, "Reps  Total"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboardEmpty(t *testing.T) {
	svc := tracker.New(challenge.NewEngine(clock.NewFixed(time.Now())), nil)
	m := NewModel(svc, "nobody", 0)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, m.View(), "No active challenges")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.False(t, m.logMode)
	assert.NotEmpty(t, m.errMsg)
}
