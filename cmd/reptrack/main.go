// Package main provides the CLI entrypoint for reptrack.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/verte-zerg/reptrack/internal/challenge"
	"github.com/verte-zerg/reptrack/internal/config"
	"github.com/verte-zerg/reptrack/internal/logging"
	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/store"
	"github.com/verte-zerg/reptrack/internal/store/jsonfile"
	"github.com/verte-zerg/reptrack/internal/tracker"
)

const (
	defaultLogLevel = "warn"
	envFile         = ".env"
)

// Input limits for interactive entry. The engine itself accepts any
// positive value.
const (
	maxTotalReps = 100000
	maxDays      = 365
	maxLogReps   = 10000
)

var (
	flagUser     string
	flagStorage  string
	flagDBPath   string
	flagJSONPath string
	flagLogLevel string
	flagLogFile  string
	flagLogErr   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reptrack",
		Short:         "Track exercise challenges and forecast when you will finish",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagUser, "user", "u", config.DefaultUser(), "user whose challenges to use")
	flags.StringVar(&flagStorage, "storage", config.StorageSQLite, "storage backend (sqlite|json)")
	flags.StringVar(&flagDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&flagJSONPath, "json-path", config.DefaultJSONPath(), "JSON data file path")
	flags.StringVar(&flagLogLevel, "log-level", defaultLogLevel, "log level (trace|debug|info|warn|error)")
	flags.StringVar(&flagLogFile, "log-file", "", "write logs to a rotated file instead of stderr")
	flags.BoolVar(&flagLogErr, "log-stderr", false, "with --log-file, also copy logs to stderr")

	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRemindCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newGuideCmd())
	rootCmd.AddCommand(newDashCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app is the per-invocation wiring of config, logging and storage.
type app struct {
	svc  *tracker.Service
	user string
	log  io.Closer
}

type appOptions struct {
	// logToFile sends logs to a file even when none is configured, so a
	// full-screen UI is not disturbed.
	logToFile bool
}

func openApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg.ApplyEnv()

	applyStringConfig(cmd, "user", &flagUser, fileCfg.Tracker.User)
	applyStringConfig(cmd, "storage", &flagStorage, fileCfg.Tracker.Storage)
	applyStringConfig(cmd, "db", &flagDBPath, fileCfg.Tracker.DBPath)
	applyStringConfig(cmd, "json-path", &flagJSONPath, fileCfg.Tracker.JSONPath)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &flagLogFile, fileCfg.Log.File)

	if strings.TrimSpace(flagUser) == "" {
		return nil, fmt.Errorf("--user must not be empty")
	}

	logFile := flagLogFile
	if logFile == "" && opts.logToFile {
		logFile = config.DefaultLogPath()
	}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	logCloser := logging.Setup(logging.Params{
		FileName: logFile,
		// A full-screen UI owns the terminal.
		AlsoStderr: flagLogErr && !opts.logToFile,
		Level:      flagLogLevel,
		JSON:       fileCfg.Log.JSON != nil && *fileCfg.Log.JSON,
	})

	persist, err := openPersister(flagStorage)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	saveTimeout, err := fileCfg.SaveTimeout()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	engine := challenge.NewEngine(nil, challenge.WithProfileTemplate(profileTemplate(fileCfg.Profile)))
	svc := tracker.New(engine, persist, tracker.WithSaveTimeout(saveTimeout))
	if err := svc.Load(cmd.Context()); err != nil {
		logErrf("warning: %v; continuing without saved data\n", err)
	}
	logrus.WithFields(logrus.Fields{"user": flagUser, "storage": flagStorage}).Debug("tracker ready")
	return &app{svc: svc, user: flagUser, log: logCloser}, nil
}

func openPersister(storage string) (tracker.Persister, error) {
	switch storage {
	case config.StorageSQLite:
		st, err := store.Open(flagDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	case config.StorageJSON:
		st, err := jsonfile.Open(flagJSONPath)
		if err != nil {
			return nil, err
		}
		logrus.WithField("path", st.Path()).Debug("using json storage")
		return st, nil
	default:
		return nil, fmt.Errorf("--storage must be %q or %q", config.StorageSQLite, config.StorageJSON)
	}
}

func profileTemplate(cfg config.ProfileConfig) model.Profile {
	tmpl := model.Profile{RemindersEnabled: true}
	if cfg.Timezone != nil {
		tmpl.Timezone = *cfg.Timezone
	}
	if cfg.Morning != nil {
		tmpl.ReminderTimes.Morning = *cfg.Morning
	}
	if cfg.Evening != nil {
		tmpl.ReminderTimes.Evening = *cfg.Evening
	}
	if cfg.Reminders != nil {
		tmpl.RemindersEnabled = *cfg.Reminders
	}
	return tmpl
}

func (a *app) close() {
	err := multierr.Combine(a.svc.Close(), a.log.Close())
	if err != nil {
		logErrf("failed to close: %v\n", err)
	}
}

func withApp(opts appOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if cmd.Context() == nil {
			cmd.SetContext(context.Background())
		}
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.close()
		return run(cmd, a, args)
	}
}

// resolveChallenge accepts a full id or a unique prefix of one.
func resolveChallenge(a *app, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	var matches []string
	for _, c := range a.svc.ListChallenges(a.user) {
		if c.ID == arg {
			return c.ID, nil
		}
		if strings.HasPrefix(strings.ToUpper(c.ID), strings.ToUpper(arg)) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", arg, challenge.ErrChallengeNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d challenges: %s", arg, len(matches), strings.Join(matches, ", "))
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return errors.New("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# reptrack configuration
# Uncomment a value to enable it. CLI flags and REPTRACK_* variables override config values.

[tracker]
# user = "me"                 # Whose challenges to use (REPTRACK_USER)
# storage = %q            # sqlite or json
# db-path = %q
# json-path = %q
# save-timeout = "%s"          # Upper bound for one save

[profile]
# Defaults for profiles created from now on.
# timezone = %q              # IANA name used to decide what "today" is
# morning = %q             # Reminder times, HH:MM
# evening = %q
# reminders = true

[log]
# level = %q                # trace, debug, info, warn, error (REPTRACK_LOG_LEVEL)
# file = ""                   # Rotated log file; empty logs to stderr
# json = false
`,
		config.StorageSQLite,
		config.DefaultDBPath(),
		config.DefaultJSONPath(),
		tracker.DefaultSaveTimeout,
		model.DefaultTimezone,
		model.DefaultMorning,
		model.DefaultEvening,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func writeLines(w io.Writer, lines []string) error {
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("January 02, 2006")
}
