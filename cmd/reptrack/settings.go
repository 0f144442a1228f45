package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/reptrack/internal/reminder"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timezone and reminder settings",
		Args:  cobra.NoArgs,
		RunE:  withApp(appOptions{}, runSettingsShowCmd),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE:  withApp(appOptions{}, runSettingsShowCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "timezone <iana-name>",
		Short: "Set the timezone days are counted in (e.g. Europe/Berlin)",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(appOptions{}, runSettingsTimezoneCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reminders <morning> <evening>",
		Short: "Set reminder times (HH:MM)",
		Args:  cobra.ExactArgs(2),
		RunE:  withApp(appOptions{}, runSettingsRemindersCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "notify <on|off>",
		Short:     "Turn reminders on or off explicitly",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE:      withApp(appOptions{}, runSettingsNotifyCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Turn reminders on or off",
		Args:  cobra.NoArgs,
		RunE:  withApp(appOptions{}, runSettingsToggleCmd),
	})
	return cmd
}

func runSettingsShowCmd(cmd *cobra.Command, a *app, _ []string) error {
	p := a.svc.Profile(a.user)
	enabled := "off"
	if p.RemindersEnabled {
		enabled = "on"
	}
	lines := []string{
		"User:       " + a.user,
		"Timezone:   " + p.Timezone,
		"Morning:    " + p.ReminderTimes.Morning,
		"Evening:    " + p.ReminderTimes.Evening,
		"Reminders:  " + enabled,
	}
	if p.RemindersEnabled {
		slot, at, err := reminder.NextFiring(*p, a.svc.Now())
		if err != nil {
			lines = append(lines, "Next:       "+err.Error())
		} else {
			lines = append(lines, fmt.Sprintf("Next:       %s (%s)", slot.Name, at.Format("Mon Jan 2 15:04 MST")))
		}
	}
	return writeLines(cmd.OutOrStdout(), lines)
}

func runSettingsTimezoneCmd(cmd *cobra.Command, a *app, args []string) error {
	if err := a.svc.SetTimezone(cmd.Context(), a.user, args[0]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Timezone set to %s\n", args[0])
	return err
}

func runSettingsRemindersCmd(cmd *cobra.Command, a *app, args []string) error {
	if err := a.svc.SetReminderTimes(cmd.Context(), a.user, args[0], args[1]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Reminders at %s and %s\n", args[0], args[1])
	return err
}

func runSettingsToggleCmd(cmd *cobra.Command, a *app, _ []string) error {
	state := "off"
	if a.svc.ToggleReminders(cmd.Context(), a.user) {
		state = "on"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Reminders turned %s\n", state)
	return err
}

func runSettingsNotifyCmd(cmd *cobra.Command, a *app, args []string) error {
	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on":
		enabled = true
	case "off":
	default:
		return fmt.Errorf("notify takes on or off, got %q", args[0])
	}
	a.svc.SetRemindersEnabled(cmd.Context(), a.user, enabled)
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Reminders turned %s\n", strings.ToLower(args[0]))
	return err
}
