// Package dashboard provides the Bubble Tea view of a user's challenges.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/stats"
)

const (
	tabChallenges = iota
	tabHistory
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	detailStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Tracker is what the dashboard reads from and logs reps through.
type Tracker interface {
	ListActiveProgress(userID string) []model.Progress
	AddReps(ctx context.Context, userID, challengeID string, reps int) (model.Progress, error)
	Profile(userID string) *model.Profile
	Now() time.Time
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Log     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Log, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextTab: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/tab", "history")),
	PrevTab: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "back")),
	Log:     key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "log reps")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	tracker Tracker
	userID  string
	maxLog  int

	tabs      []string
	activeTab int
	items     []model.Progress
	table     table.Model
	bar       progress.Model
	history   viewport.Model
	help      help.Model

	logMode  bool
	logInput textinput.Model

	status string
	errMsg string

	width  int
	height int
}

// NewModel builds the dashboard for userID. maxLog caps a single entry;
// zero disables the cap.
func NewModel(t Tracker, userID string, maxLog int) *Model {
	m := &Model{
		tracker: t,
		userID:  userID,
		maxLog:  maxLog,
		tabs:    []string{"Challenges", "History"},
		bar:     progress.New(progress.WithDefaultGradient()),
		history: viewport.New(0, 0),
		help:    help.New(),
	}
	m.logInput = textinput.New()
	m.logInput.Placeholder = "reps"
	m.logInput.CharLimit = 6
	m.table = table.New(
		table.WithColumns(tableColumns()),
		table.WithFocused(true),
		table.WithHeight(5),
	)
	m.table.SetStyles(tableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.logMode {
			return m.updateLog(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.moveTab(1)
			return m, nil
		case key.Matches(msg, keys.PrevTab):
			m.moveTab(-1)
			return m, nil
		case key.Matches(msg, keys.Refresh):
			m.refresh()
			return m, nil
		case key.Matches(msg, keys.Log):
			return m.startLog()
		}
		if m.activeTab == tabHistory {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.renderHistory()
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return strings.Join([]string{header, fitLines(m.renderBody(), m.width, bodyHeight), footer}, "\n")
}

// Selected returns the highlighted challenge, if any.
func (m *Model) Selected() (model.Progress, bool) {
	if len(m.items) == 0 {
		return model.Progress{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.Progress{}, false
	}
	return m.items[i], true
}

func (m *Model) refresh() {
	m.items = m.tracker.ListActiveProgress(m.userID)
	rows := make([]table.Row, 0, len(m.items))
	for _, p := range m.items {
		c := p.Challenge
		rows = append(rows, table.Row{
			c.Exercise.Title(),
			stats.FormatInt(c.CurrentReps) + "/" + stats.FormatInt(c.TotalReps),
			fmt.Sprintf("%.1f%%", p.Percentage),
			strconv.Itoa(p.DaysRemaining),
			stats.PaceLabel(p),
		})
	}
	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
	m.renderHistory()
}

func (m *Model) renderHistory() {
	p, ok := m.Selected()
	if !ok {
		m.history.SetContent("No active challenges.")
		return
	}
	loc := m.tracker.Profile(m.userID).Location()
	days := stats.History(p.Challenge, loc, m.tracker.Now())
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := stats.WriteHistory(&buf, p.Challenge, days, width); err != nil {
		m.history.SetContent(err.Error())
		return
	}
	m.history.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) startLog() (tea.Model, tea.Cmd) {
	p, ok := m.Selected()
	if !ok {
		m.errMsg = "No active challenge to log reps to."
		return m, nil
	}
	m.logMode = true
	m.errMsg = ""
	m.status = ""
	m.logInput.Prompt = fmt.Sprintf("%s %s: ", p.Challenge.Exercise.Title(), p.Challenge.Exercise.Unit())
	m.logInput.SetValue("")
	return m, m.logInput.Focus()
}

func (m *Model) updateLog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.logMode = false
		m.logInput.Blur()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyLog(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.logMode = false
		m.logInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.logInput, cmd = m.logInput.Update(msg)
	return m, cmd
}

func (m *Model) applyLog() error {
	p, ok := m.Selected()
	if !ok {
		return errors.New("no challenge selected")
	}
	reps, err := strconv.Atoi(strings.TrimSpace(m.logInput.Value()))
	if err != nil || reps <= 0 {
		return errors.New("enter a positive number")
	}
	if m.maxLog > 0 && reps > m.maxLog {
		return fmt.Errorf("that seems like a lot, max %s per entry", stats.FormatInt(m.maxLog))
	}
	updated, err := m.tracker.AddReps(context.Background(), m.userID, p.Challenge.ID, reps)
	if err != nil {
		return err
	}
	m.errMsg = ""
	if updated.Challenge.Status == model.StatusCompleted {
		m.status = fmt.Sprintf("%s challenge completed!", updated.Challenge.Exercise.Title())
	} else {
		m.status = fmt.Sprintf("Added %d %s to %s (%.1f%%)", reps, updated.Challenge.Exercise.Unit(),
			updated.Challenge.Exercise.Title(), updated.Percentage)
	}
	m.refresh()
	return nil
}

func (m *Model) moveTab(delta int) {
	next := m.activeTab + delta
	if next < 0 {
		next = len(m.tabs) - 1
	}
	if next >= len(m.tabs) {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabChallenges {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(3, m.height/2-2))
	m.bar.Width = maxInt(10, m.width-4)
	m.history.Width = m.width
	m.history.Height = maxInt(1, m.height-lipgloss.Height(m.renderTabs())-2)
	m.logInput.Width = maxInt(10, m.width-lipgloss.Width(m.logInput.Prompt)-2)
	m.help.Width = m.width
	m.renderHistory()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabHistory {
		return m.history.View()
	}
	if len(m.items) == 0 {
		return "No active challenges. Start one with `reptrack new`."
	}
	p, _ := m.Selected()
	detail := []string{
		m.bar.ViewAs(p.Percentage / 100),
		"",
	}
	detail = append(detail, stats.ProgressLines(p, m.tracker.Profile(m.userID).Location())...)
	return m.table.View() + "\n" + detailStyle.Render(strings.Join(detail, "\n"))
}

func (m *Model) renderFooter() string {
	lines := make([]string, 0, 3)
	if m.logMode {
		lines = append(lines, m.logInput.View(), mutedStyle.Render("enter: save  esc: cancel"))
	} else {
		lines = append(lines, m.help.View(keys))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	} else if m.status != "" {
		lines = append(lines, okStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "Exercise", Width: 18},
		{Title: "Progress", Width: 17},
		{Title: "Done", Width: 7},
		{Title: "Days left", Width: 9},
		{Title: "Pace", Width: 11},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
