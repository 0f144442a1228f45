package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Tracker.User)
	assert.Nil(t, cfg.Log.Level)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[tracker]
user = "alice"
storage = "json"
json-path = "/tmp/data.json"
save-timeout = "2s"

[profile]
timezone = "Europe/Berlin"
morning = "07:00"
reminders = false

[log]
level = "debug"
json = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Tracker.User)
	assert.Equal(t, "alice", *cfg.Tracker.User)
	assert.Equal(t, StorageJSON, *cfg.Tracker.Storage)
	assert.Equal(t, "/tmp/data.json", *cfg.Tracker.JSONPath)
	assert.Nil(t, cfg.Tracker.DBPath)
	assert.Equal(t, "Europe/Berlin", *cfg.Profile.Timezone)
	assert.Equal(t, "07:00", *cfg.Profile.Morning)
	assert.Nil(t, cfg.Profile.Evening)
	assert.False(t, *cfg.Profile.Reminders)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.True(t, *cfg.Log.JSON)

	d, err := cfg.SaveTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"storage":     "[tracker]\nstorage = \"postgres\"\n",
		"timeout":     "[tracker]\nsave-timeout = \"soon\"\n",
		"neg timeout": "[tracker]\nsave-timeout = \"-1s\"\n",
		"unknown key": "[tracker]\ncolour = \"red\"\n",
		"syntax":      "[tracker\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REPTRACK_USER=bob\nREPTRACK_DB=/tmp/bob.db\n"), 0o644))
	t.Setenv(EnvUser, "")
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "info")
	require.NoError(t, os.Unsetenv(EnvUser))
	require.NoError(t, os.Unsetenv(EnvDB))

	require.NoError(t, LoadEnv(path))
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	user := "alice"
	cfg := FileConfig{Tracker: TrackerConfig{User: &user}}
	cfg.ApplyEnv()
	assert.Equal(t, "bob", *cfg.Tracker.User)
	assert.Equal(t, "/tmp/bob.db", *cfg.Tracker.DBPath)
	assert.Equal(t, "info", *cfg.Log.Level)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, filepath.Join("/cfg", "reptrack", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "reptrack", "reptrack.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "reptrack", "fitness_challenge_data.json"), DefaultJSONPath())
	assert.Equal(t, filepath.Join("/state", "reptrack", "reptrack.log"), DefaultLogPath())
}
