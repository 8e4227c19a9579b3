package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
	"github.com/verte-zerg/keycast/internal/style"
)

var stylesUser string

func newStylesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Manage overlay styles",
	}
	cmd.PersistentFlags().StringVar(&stylesUser, "user", model.GuestUser, "profile whose style is shown or changed")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available styles",
		Args:  cobra.NoArgs,
		RunE:  runStylesListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import DIR",
		Short: "Import a style directory containing style.json and fonts",
		Args:  cobra.ExactArgs(1),
		RunE:  runStylesImportCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use ID",
		Short: "Select the style of a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runStylesUseCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove ID",
		Short: "Delete an imported style",
		Args:  cobra.ExactArgs(1),
		RunE:  runStylesRemoveCmd,
	})
	return cmd
}

func runStylesListCmd(cmd *cobra.Command, _ []string) error {
	user, err := activeUser(cmd, stylesUser)
	if err != nil {
		return err
	}
	p, err := profile.NewStore(config.DefaultProfilesDir(), nil).Load(user)
	if err != nil {
		return err
	}
	styles, err := style.NewRegistry(config.DefaultStylesDir()).List()
	if err != nil {
		return err
	}
	return writeStyles(cmd.OutOrStdout(), styles, p.Style)
}

func writeStyles(w io.Writer, styles []style.Style, current string) error {
	if current == "" {
		current = style.DefaultID
	}
	for _, st := range styles {
		mark := "  "
		id := st.ID
		if st.ID == current {
			mark = activeMark.Sprint("* ")
			id = activeMark.Sprint(st.ID)
		}
		line := fmt.Sprintf("%s%s %s", mark, id, mutedMark.Sprint(st.Description))
		if err := writeLines(w, line); err != nil {
			return err
		}
	}
	return nil
}

func runStylesImportCmd(cmd *cobra.Command, args []string) error {
	user, err := activeUser(cmd, stylesUser)
	if err != nil {
		return err
	}
	st, err := style.NewRegistry(config.DefaultStylesDir()).Import(args[0])
	if err != nil {
		return err
	}
	err = profile.NewStore(config.DefaultProfilesDir(), nil).Update(user, func(p *model.Profile) {
		recordStyle(p, st)
	})
	if err != nil {
		return fmt.Errorf("imported %s but failed to update profile: %w", st.ID, err)
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("Imported style %s (%d fonts)", st.ID, len(st.Fonts)))
}

// recordStyle adds an imported style and its fonts to the profile lists.
func recordStyle(p *model.Profile, st style.Style) {
	if !slices.Contains(p.Styles, st.ID) {
		p.Styles = append(p.Styles, st.ID)
	}
	for _, f := range st.Fonts {
		if !slices.Contains(p.Fonts, f) {
			p.Fonts = append(p.Fonts, f)
		}
	}
}

func runStylesUseCmd(cmd *cobra.Command, args []string) error {
	user, err := activeUser(cmd, stylesUser)
	if err != nil {
		return err
	}
	id := args[0]
	if _, ok := style.NewRegistry(config.DefaultStylesDir()).Get(id); !ok {
		return fmt.Errorf("style %q not found", id)
	}
	profiles := profile.NewStore(config.DefaultProfilesDir(), nil)
	if !profiles.Exists(user) {
		return fmt.Errorf("%w: %s", profile.ErrUserNotFound, user)
	}
	if err := profiles.Update(user, func(p *model.Profile) { p.Style = id }); err != nil {
		return err
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("%s now uses style %s", user, id))
}

func runStylesRemoveCmd(cmd *cobra.Command, args []string) error {
	user, err := activeUser(cmd, stylesUser)
	if err != nil {
		return err
	}
	id := args[0]
	if err := style.NewRegistry(config.DefaultStylesDir()).Remove(id); err != nil {
		return err
	}
	err = profile.NewStore(config.DefaultProfilesDir(), nil).Update(user, func(p *model.Profile) {
		forgetStyle(p, id)
	})
	if err != nil {
		return fmt.Errorf("removed %s but failed to update profile: %w", id, err)
	}
	return writeLines(cmd.OutOrStdout(), fmt.Sprintf("Removed style %s", id))
}

// forgetStyle drops id from the profile and falls back to the default style
// when it was selected.
func forgetStyle(p *model.Profile, id string) {
	p.Styles = slices.DeleteFunc(p.Styles, func(s string) bool { return s == id })
	if p.Style == id {
		p.Style = ""
	}
}
