package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("REPTRACK_USER", "")
	t.Setenv("REPTRACK_DB", "")
	t.Setenv("REPTRACK_LOG_LEVEL", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--user", "tester", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var idPattern = regexp.MustCompile(`PUSHUPS_\d{8}_\d{6}_[0-9a-f]{8}`)

func TestChallengeFlow(t *testing.T) {
	isolate(t)

	out, err := run(t, "new", "pushups", "100", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily target:   10.0 reps/day")
	id := idPattern.FindString(out)
	require.NotEmpty(t, id)

	out, err = run(t, "log", "PUSHUPS", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Added:      40 reps")
	assert.Contains(t, out, "Total:      40/100")

	out, err = run(t, "progress", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Push-Ups Challenge Progress")
	assert.Contains(t, out, "Current:         40 reps (40.0%)")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "40/100")

	out, err = run(t, "history", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Day")
	assert.Contains(t, out, "│")

	out, err = run(t, "remind")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily Fitness Reminder!")
	assert.Contains(t, out, "Push-Ups: Daily goal achieved!")

	out, err = run(t, "log", id, "61")
	require.NoError(t, err)
	assert.Contains(t, out, "CHALLENGE COMPLETED!")

	_, err = run(t, "log", id, "1")
	assert.Error(t, err)

	out, err = run(t, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
}

func TestInputLimits(t *testing.T) {
	isolate(t)

	_, err := run(t, "new", "pushups", "100001", "10")
	assert.ErrorContains(t, err, "total must be at most 100,000")
	_, err = run(t, "new", "pushups", "100", "366")
	assert.ErrorContains(t, err, "days must be at most 365")
	_, err = run(t, "new", "yoga", "100", "10")
	assert.Error(t, err)

	_, err = run(t, "new", "squats", "1,000", "30")
	require.NoError(t, err)
	_, err = run(t, "log", "SQUATS", "10001")
	assert.ErrorContains(t, err, "reps must be at most 10,000")
	_, err = run(t, "log", "nothing-here", "5")
	assert.ErrorContains(t, err, "challenge not found")
}

func TestSettings(t *testing.T) {
	isolate(t)

	_, err := run(t, "settings", "timezone", "Europe/Berlin")
	require.NoError(t, err)
	_, err = run(t, "settings", "reminders", "07:15", "21:00")
	require.NoError(t, err)
	out, err := run(t, "settings", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminders turned off")

	out, err = run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Timezone:   Europe/Berlin")
	assert.Contains(t, out, "Morning:    07:15")
	assert.Contains(t, out, "Reminders:  off")

	out, err = run(t, "settings", "notify", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminders turned on")
	out, err = run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminders:  on")
	out, err = run(t, "settings", "notify", "OFF")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminders turned off")
	_, err = run(t, "settings", "notify", "maybe")
	assert.ErrorContains(t, err, "notify takes on or off")

	_, err = run(t, "settings", "timezone", "Nowhere/Special")
	assert.ErrorContains(t, err, "invalid setting")
	_, err = run(t, "settings", "reminders", "7am", "21:00")
	assert.Error(t, err)
}

func TestJSONStorage(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "data.json")

	_, err := run(t, "--storage", "json", "--json-path", path, "new", "planks", "600", "10")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err := run(t, "--storage", "json", "--json-path", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Planks (Seconds)")
}

func TestLogFileFlags(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "logs", "reptrack.log")

	_, err := run(t, "--log-level", "debug", "--log-file", logPath, "--log-stderr",
		"--storage", "json", "--json-path", filepath.Join(dir, "data.json"), "list")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "using json storage")
	assert.Contains(t, string(data), "data.json")
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config", "reptrack", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	body := "[profile]\ntimezone = \"Asia/Tokyo\"\nreminders = false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	out, err := run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Timezone:   Asia/Tokyo")
	assert.Contains(t, out, "Reminders:  off")
}

func TestGuide(t *testing.T) {
	out, err := run(t, "guide", "burpees")
	require.NoError(t, err)
	assert.Contains(t, out, "Burpees Guide")
	assert.Contains(t, out, "https://www.youtube.com/watch?v=TU8QYVW0gDU")

	_, err = run(t, "guide", "juggling")
	assert.Error(t, err)
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", "reptrack", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644))
	_, err := run(t, "settings", "show")
	require.NoError(t, err)
}
