package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/reptrack/internal/reminder"
)

var (
	remindAll   bool
	remindDue   bool
	remindSince time.Duration
)

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print today's reminder",
		Long: `Print the daily reminder for the current user.

With --due, every user whose morning or evening reminder time fell within
the last --since interval is reminded. Run it from cron at that interval.`,
		Args: cobra.NoArgs,
		RunE: withApp(appOptions{}, runRemindCmd),
	}
	cmd.Flags().BoolVar(&remindAll, "all", false, "remind every user")
	cmd.Flags().BoolVar(&remindDue, "due", false, "remind users whose reminder time just passed")
	cmd.Flags().DurationVar(&remindSince, "since", 15*time.Minute, "window for --due")
	return cmd
}

func runRemindCmd(cmd *cobra.Command, a *app, _ []string) error {
	if remindSince <= 0 {
		return fmt.Errorf("--since must be positive")
	}
	var users []string
	switch {
	case remindDue:
		now := a.svc.Now()
		users = a.svc.DueUsers(now.Add(-remindSince), now)
	case remindAll:
		users = a.svc.Engine().Users()
	default:
		users = []string{a.user}
	}

	n := reminder.NewWriterNotifier(cmd.OutOrStdout())
	sent, err := a.svc.Remind(cmd.Context(), n, users)
	logrus.WithFields(logrus.Fields{"candidates": len(users), "sent": sent}).Info("reminders dispatched")
	if err != nil {
		return err
	}
	if sent == 0 && !remindDue {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remind about.")
		return err
	}
	return nil
}
