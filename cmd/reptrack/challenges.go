package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/reptrack/internal/dashboard"
	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/stats"
)

var listAll bool

func newNewCmd() *cobra.Command {
	names := make([]string, 0, len(model.Exercises))
	for _, ex := range model.Exercises {
		names = append(names, ex.Slug())
	}
	return &cobra.Command{
		Use:   "new <exercise> <total> <days>",
		Short: "Start a challenge",
		Long:  "Start a challenge to complete <total> units of an exercise within <days> days.\nExercises: " + strings.Join(names, ", "),
		Args:  cobra.ExactArgs(3),
		RunE:  withApp(appOptions{}, runNewCmd),
	}
}

func runNewCmd(cmd *cobra.Command, a *app, args []string) error {
	exercise, err := model.ParseExercise(args[0])
	if err != nil {
		return err
	}
	total, err := parsePositive("total", args[1], maxTotalReps)
	if err != nil {
		return err
	}
	days, err := parsePositive("days", args[2], maxDays)
	if err != nil {
		return err
	}

	id, err := a.svc.CreateChallenge(cmd.Context(), a.user, exercise, total, days)
	if err != nil {
		return err
	}
	p, err := a.svc.Progress(a.user, id)
	if err != nil {
		return err
	}
	loc := a.svc.Profile(a.user).Location()
	c := p.Challenge
	return writeLines(cmd.OutOrStdout(), []string{
		"Challenge created: " + c.ID,
		"",
		fmt.Sprintf("Exercise:       %s", c.Exercise.Title()),
		fmt.Sprintf("Goal:           %s %s in %d days", stats.FormatInt(c.TotalReps), c.Exercise.Unit(), c.TargetDays),
		fmt.Sprintf("Daily target:   %.1f %s/day", c.DailyTarget, c.Exercise.Unit()),
		fmt.Sprintf("Start date:     %s", formatDate(c.StartDate, loc)),
		fmt.Sprintf("Target finish:  %s", formatDate(c.TargetDate, loc)),
	})
}

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "log <challenge> <reps>",
		Aliases: []string{"add"},
		Short:   "Log reps (or seconds) against a challenge",
		Long:    "Log reps against a challenge. <challenge> is an id or a unique id prefix.",
		Args:    cobra.ExactArgs(2),
		RunE:    withApp(appOptions{}, runLogCmd),
	}
}

func runLogCmd(cmd *cobra.Command, a *app, args []string) error {
	id, err := resolveChallenge(a, args[0])
	if err != nil {
		return err
	}
	reps, err := parsePositive("reps", args[1], maxLogReps)
	if err != nil {
		return err
	}
	p, err := a.svc.AddReps(cmd.Context(), a.user, id, reps)
	if err != nil {
		return err
	}
	return writeLines(cmd.OutOrStdout(), stats.Feedback(p, reps))
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [challenge]",
		Short: "Show progress and forecast",
		Long:  "Show progress and forecast for one challenge, or for every active challenge.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(appOptions{}, runProgressCmd),
	}
}

func runProgressCmd(cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	loc := a.svc.Profile(a.user).Location()
	if len(args) == 1 {
		id, err := resolveChallenge(a, args[0])
		if err != nil {
			return err
		}
		p, err := a.svc.Progress(a.user, id)
		if err != nil {
			return err
		}
		return stats.WriteProgress(out, p, loc)
	}

	active := a.svc.ListActiveProgress(a.user)
	if len(active) == 0 {
		_, err := fmt.Fprintln(out, "No active challenges. Start one with `reptrack new`.")
		return err
	}
	for i, p := range active {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := stats.WriteProgress(out, p, loc); err != nil {
			return err
		}
	}
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active challenges",
		Args:    cobra.NoArgs,
		RunE:    withApp(appOptions{}, runListCmd),
	}
	cmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed challenges")
	return cmd
}

func runListCmd(cmd *cobra.Command, a *app, _ []string) error {
	if listAll {
		return stats.WriteChallengeList(cmd.OutOrStdout(), a.svc.ListChallenges(a.user), a.svc.Profile(a.user).Location())
	}
	return stats.WriteActiveList(cmd.OutOrStdout(), a.svc.ListActiveProgress(a.user))
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <challenge>",
		Short: "Show per-day totals of a challenge",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(appOptions{}, runHistoryCmd),
	}
}

func runHistoryCmd(cmd *cobra.Command, a *app, args []string) error {
	id, err := resolveChallenge(a, args[0])
	if err != nil {
		return err
	}
	p, err := a.svc.Progress(a.user, id)
	if err != nil {
		return err
	}
	loc := a.svc.Profile(a.user).Location()
	days := stats.History(p.Challenge, loc, a.svc.Now())
	return stats.WriteHistory(cmd.OutOrStdout(), p.Challenge, days, stats.TerminalWidth(os.Stdout))
}

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [exercise]",
		Short: "Show form tips and a tutorial video",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGuideCmd,
	}
}

func runGuideCmd(cmd *cobra.Command, args []string) error {
	exercises := model.Exercises
	if len(args) == 1 {
		ex, err := model.ParseExercise(args[0])
		if err != nil {
			return err
		}
		exercises = []model.Exercise{ex}
	}
	var lines []string
	for i, ex := range exercises {
		if i > 0 {
			lines = append(lines, "")
		}
		g := ex.Guide()
		lines = append(lines,
			ex.Title()+" Guide",
			"  Form:  "+g.Tips,
			"  Video: "+g.Video,
		)
	}
	if len(exercises) == 1 {
		lines = append(lines, "", "Quality over quantity. Perfect your form first!")
	}
	return writeLines(cmd.OutOrStdout(), lines)
}

func newDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE:  withApp(appOptions{logToFile: true}, runDashCmd),
	}
}

func runDashCmd(_ *cobra.Command, a *app, _ []string) error {
	m := dashboard.NewModel(a.svc, a.user, maxLogReps)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func parsePositive(name, value string, limit int) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(value), ",", ""))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	if n > limit {
		return 0, fmt.Errorf("%s must be at most %s", name, stats.FormatInt(limit))
	}
	return n, nil
}
