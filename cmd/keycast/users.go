package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/store"
)

var (
	activeMark = color.New(color.FgGreen, color.Bold)
	mutedMark  = color.New(color.FgHiBlack)

	clearUser    string
	clearHistory bool
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users and their lifetime presses",
		Args:  cobra.NoArgs,
		RunE:  runUsersListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a user and its key history",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersRemoveCmd,
	})
	return cmd
}

func runUsersListCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	current := model.GuestUser
	if fileCfg.App.User != nil {
		current = *fileCfg.App.User
	}
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	users, err := profiles.List()
	if err != nil {
		return err
	}
	return writeUsers(cmd.OutOrStdout(), profiles, users, current)
}

func writeUsers(w io.Writer, profiles *profile.Store, users []string, current string) error {
	for _, user := range users {
		p, err := profiles.Load(user)
		if err != nil {
			return err
		}
		presses := 0
		for _, n := range p.KeyCounts {
			presses += n
		}
		mark := "  "
		name := user
		if user == current {
			mark = activeMark.Sprint("* ")
			name = activeMark.Sprint(user)
		}
		line := fmt.Sprintf("%s%s %s", mark, name, mutedMark.Sprintf("(%d presses)", presses))
		if err := writeLines(w, line); err != nil {
			return err
		}
	}
	return nil
}

func runUsersAddCmd(cmd *cobra.Command, args []string) error {
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	if err := profiles.Add(args[0]); err != nil {
		return err
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("Added user %s", args[0]))
}

func runUsersRemoveCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	if err := profiles.Remove(name); err != nil {
		return err
	}
	if err := deleteHistory(name); err != nil {
		logErrf("removed %s but failed to delete key history: %v\n", name, err)
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("Removed user %s", name))
}

func deleteHistory(user string) error {
	st, err := store.Open(config.DefaultHistoryPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close after delete.
			_ = cerr
		}
	}()
	return st.DeleteUser(context.Background(), user)
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset the lifetime key counts of a user",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().StringVar(&clearUser, "user", model.GuestUser, "profile to clear")
	cmd.Flags().BoolVar(&clearHistory, "history", false, "also delete the daily key history")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	user, err := activeUser(cmd, clearUser)
	if err != nil {
		return err
	}
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	if !profiles.Exists(user) {
		return fmt.Errorf("%w: %s", profile.ErrUserNotFound, user)
	}
	prof, err := profiles.Load(user)
	if err != nil {
		return err
	}
	agg := stats.NewAggregator(user, prof.KeyCounts, profiles, nil)
	presses, _ := agg.Totals()
	if err := agg.Clear(); err != nil {
		return err
	}
	if clearHistory {
		if err := deleteHistory(user); err != nil {
			return fmt.Errorf("failed to delete key history: %w", err)
		}
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("Cleared %d presses for %s", presses, user))
}
