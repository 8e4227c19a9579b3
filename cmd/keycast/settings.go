package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
)

var settingsUser string

type setting struct {
	get func(model.Settings) string
	set func(*model.Settings, string) error
}

func intSetting(field func(*model.Settings) *int) setting {
	return setting{
		get: func(s model.Settings) string { return strconv.Itoa(*field(&s)) },
		set: func(s *model.Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected an integer, got %q", v)
			}
			*field(s) = n
			return nil
		},
	}
}

func boolSetting(field func(*model.Settings) *bool) setting {
	return setting{
		get: func(s model.Settings) string { return strconv.FormatBool(*field(&s)) },
		set: func(s *model.Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*field(s) = b
			return nil
		},
	}
}

// Names match the JSON keys of the profile document.
var settingsTable = map[string]setting{
	"max_consecutive_chars": intSetting(func(s *model.Settings) *int { return &s.MaxConsecutiveChars }),
	"fn_key_code":           intSetting(func(s *model.Settings) *int { return &s.FnKeyCode }),
	"fade_in":               intSetting(func(s *model.Settings) *int { return &s.FadeInMs }),
	"fade_out":              intSetting(func(s *model.Settings) *int { return &s.FadeOutMs }),
	"display_delay":         intSetting(func(s *model.Settings) *int { return &s.DisplayDelayMs }),
	"display_normal":        boolSetting(func(s *model.Settings) *bool { return &s.Normal }),
	"display_modifiers":     boolSetting(func(s *model.Settings) *bool { return &s.Modifiers }),
	"display_function":      boolSetting(func(s *model.Settings) *bool { return &s.Function }),
	"display_numpad":        boolSetting(func(s *model.Settings) *bool { return &s.Numpad }),
}

func settingNames() []string {
	names := make([]string, 0, len(settingsTable))
	for name := range settingsTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the display settings of a user",
	}
	cmd.PersistentFlags().StringVar(&settingsUser, "user", model.GuestUser, "profile to change")
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Change one setting (" + strings.Join(settingNames(), ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE:  runSettingsSetCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsResetCmd,
	})
	return cmd
}

func runSettingsShowCmd(cmd *cobra.Command, _ []string) error {
	user, err := activeUser(cmd, settingsUser)
	if err != nil {
		return err
	}
	p, err := profile.NewStore(config.DefaultProfilesDir(), nil).Load(user)
	if err != nil {
		return err
	}
	return writeSettings(cmd.OutOrStdout(), p.Settings)
}

func writeSettings(w io.Writer, s model.Settings) error {
	for _, name := range settingNames() {
		if err := writeLines(w, fmt.Sprintf("%-22s %s", name, settingsTable[name].get(s))); err != nil {
			return err
		}
	}
	return nil
}

func runSettingsSetCmd(cmd *cobra.Command, args []string) error {
	user, err := activeUser(cmd, settingsUser)
	if err != nil {
		return err
	}
	updated, err := applySetting(profile.NewStore(config.DefaultProfilesDir(), nil), user, args[0], args[1])
	if err != nil {
		return err
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", args[0], settingsTable[args[0]].get(updated)))
}

func applySetting(profiles *profile.Store, user, name, value string) (model.Settings, error) {
	entry, ok := settingsTable[name]
	if !ok {
		return model.Settings{}, fmt.Errorf("unknown setting %q (known: %s)", name, strings.Join(settingNames(), ", "))
	}
	if !profiles.Exists(user) {
		return model.Settings{}, fmt.Errorf("%w: %s", profile.ErrUserNotFound, user)
	}
	p, err := profiles.Load(user)
	if err != nil {
		return model.Settings{}, err
	}
	next := p.Settings
	if err := entry.set(&next, strings.TrimSpace(value)); err != nil {
		return model.Settings{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	if err := next.Validate(); err != nil {
		return model.Settings{}, err
	}
	p.Settings = next
	if err := profiles.Save(p); err != nil {
		return model.Settings{}, err
	}
	return next, nil
}

func runSettingsResetCmd(cmd *cobra.Command, _ []string) error {
	user, err := activeUser(cmd, settingsUser)
	if err != nil {
		return err
	}
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	if !profiles.Exists(user) {
		return fmt.Errorf("%w: %s", profile.ErrUserNotFound, user)
	}
	err = profiles.Update(user, func(p *model.Profile) {
		p.Settings = model.DefaultSettings()
	})
	if err != nil {
		return err
	}
	return writeSettings(cmd.OutOrStdout(), model.DefaultSettings())
}
