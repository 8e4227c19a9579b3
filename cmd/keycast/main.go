// Package main provides the CLI entrypoint for keycast.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/hook"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
	"github.com/verte-zerg/keycast/internal/stats"
	"github.com/verte-zerg/keycast/internal/store"
	"github.com/verte-zerg/keycast/internal/style"
	"github.com/verte-zerg/keycast/internal/tui"
	"github.com/verte-zerg/keycast/internal/wordlist"
)

const (
	defaultBackend     = hook.BackendGohook
	defaultCurveWindow = 7
	defaultTopKeys     = 10
)

var (
	runUser          string
	runBackend       string
	runDevice        string
	runStyle         string
	runWords         string
	runLogLevel      string
	runDemoInterval  string
	runFlushInterval string
	runMaxChars      int
	runFadeIn        int
	runFadeOut       int
	runDisplayDelay  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keycast",
		Short:         "Show pressed keys and count them per user",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadEnv(config.DefaultEnvPath())
		},
		RunE: runOverlayCmd,
	}

	rootCmd.Flags().StringVar(&runUser, "user", model.GuestUser, "profile to record keys for")
	rootCmd.Flags().StringVar(&runBackend, "backend", defaultBackend, "keyboard hook: "+strings.Join(hook.Backends(), ", "))
	rootCmd.Flags().StringVar(&runDevice, "device", "", "evdev device path (default: first keyboard)")
	rootCmd.Flags().StringVar(&runStyle, "style", "", "style id (default: the profile's style)")
	rootCmd.Flags().StringVar(&runWords, "words", "", "demo script: words and shortcuts such as ctrl+s, typed by the demo backend")
	rootCmd.Flags().StringVar(&runLogLevel, "log-level", config.DefaultLogLevel, "log level")
	rootCmd.Flags().StringVar(&runDemoInterval, "demo-interval", hook.DefaultDemoInterval.String(), "delay between demo key events")
	rootCmd.Flags().StringVar(&runFlushInterval, "flush-interval", tui.DefaultFlushInterval.String(), "how often counts are saved")
	rootCmd.Flags().IntVar(&runMaxChars, "max-chars", model.DefaultMaxConsecutiveChars, "phrase length shown (this run only)")
	rootCmd.Flags().IntVar(&runFadeIn, "fade-in", model.DefaultFadeInMs, "fade-in in ms (this run only)")
	rootCmd.Flags().IntVar(&runFadeOut, "fade-out", model.DefaultFadeOutMs, "fade-out in ms (this run only)")
	rootCmd.Flags().IntVar(&runDisplayDelay, "display-delay", model.DefaultDisplayDelayMs, "visible time after the last key in ms (this run only)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newStylesCmd())

	return rootCmd
}

func runOverlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "user", &runUser, fileCfg.App.User)
	applyStringConfig(cmd, "backend", &runBackend, fileCfg.App.Backend)
	applyStringConfig(cmd, "device", &runDevice, fileCfg.App.Device)
	applyStringConfig(cmd, "style", &runStyle, fileCfg.App.Style)
	applyStringConfig(cmd, "words", &runWords, fileCfg.App.Words)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.App.LogLevel)
	applyStringConfig(cmd, "demo-interval", &runDemoInterval, fileCfg.App.DemoInterval)
	applyStringConfig(cmd, "flush-interval", &runFlushInterval, fileCfg.App.FlushInterval)

	demoInterval, err := parsePositiveDuration("demo-interval", runDemoInterval)
	if err != nil {
		return err
	}
	flushInterval, err := parsePositiveDuration("flush-interval", runFlushInterval)
	if err != nil {
		return err
	}

	logger, logCloser, err := config.NewLogger(config.DefaultLogPath(), runLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()
	log := logger.WithField("user", runUser)

	profiles := profile.NewStore(config.DefaultProfilesDir(), logger)
	if !profile.ValidName(runUser) {
		return fmt.Errorf("invalid user name %q", runUser)
	}
	if !profiles.Exists(runUser) {
		return fmt.Errorf("unknown user %q (create it with: keycast users add %s)", runUser, runUser)
	}
	prof, err := profiles.Load(runUser)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	settings := prof.Settings
	applyRunSettings(cmd, &settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	styleID := prof.Style
	if runStyle != "" {
		styleID = runStyle
	}
	st, ok := style.NewRegistry(config.DefaultStylesDir()).Get(styleID)
	if !ok && styleID != "" {
		logErrf("style %q not found; using %s\n", styleID, style.DefaultID)
	}

	script, err := wordlist.Load(runWords)
	if err != nil {
		return err
	}

	agg := stats.NewAggregator(runUser, prof.KeyCounts, profiles, logger)
	history, err := store.Open(config.DefaultHistoryPath())
	if err != nil {
		log.WithError(err).Warn("key history unavailable, recording lifetime counts only")
	} else {
		agg.SetHistory(history)
		defer func() {
			if cerr := history.Close(); cerr != nil {
				logErrf("failed to close history db: %v\n", cerr)
			}
		}()
	}

	src, err := hook.New(hook.Options{
		Backend:  runBackend,
		Device:   runDevice,
		Script:   script,
		Interval: demoInterval,
		Log:      logger,
	})
	if err != nil {
		return err
	}

	overlay := tui.NewModel(tui.Options{
		User:          runUser,
		Settings:      settings,
		Style:         st,
		Aggregator:    agg,
		Source:        src,
		Log:           logger,
		FlushInterval: flushInterval,
	})
	log.WithFields(logrus.Fields{"backend": runBackend, "style": st.ID}).Info("overlay starting")
	program := tea.NewProgram(overlay, tea.WithAltScreen())
	_, runErr := program.Run()
	if err := overlay.Close(); err != nil {
		logErrf("failed to save stats: %v\n", err)
	}

	presses, distinct := agg.Totals()
	log.WithFields(logrus.Fields{
		"presses": presses,
		"keys":    distinct,
		"dropped": hook.Dropped(src),
	}).Info("overlay stopped")

	if runUser == model.GuestUser {
		if err := resetGuest(profiles, history); err != nil {
			logErrf("failed to reset guest profile: %v\n", err)
		} else if presses > 0 {
			logErrln("Guest stats are discarded on exit. Keep them with: keycast users add NAME")
		}
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// resetGuest discards everything recorded for the guest profile.
func resetGuest(profiles *profile.Store, history *store.Store) error {
	if err := profiles.ResetGuest(); err != nil {
		return err
	}
	if history == nil {
		return nil
	}
	return history.DeleteUser(context.Background(), model.GuestUser)
}

func applyRunSettings(cmd *cobra.Command, s *model.Settings) {
	if cmd.Flags().Changed("max-chars") {
		s.MaxConsecutiveChars = runMaxChars
	}
	if cmd.Flags().Changed("fade-in") {
		s.FadeInMs = runFadeIn
	}
	if cmd.Flags().Changed("fade-out") {
		s.FadeOutMs = runFadeOut
	}
	if cmd.Flags().Changed("display-delay") {
		s.DisplayDelayMs = runDisplayDelay
	}
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(&fileCfg)
	return fileCfg, nil
}

// activeUser resolves the profile a subcommand works on: the flag, then
// KEYCAST_USER or the config file, then guest.
func activeUser(cmd *cobra.Command, flagValue string) (string, error) {
	user := flagValue
	if !cmd.Flags().Changed("user") {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return "", err
		}
		user = model.GuestUser
		applyStringConfig(cmd, "user", &user, fileCfg.App.User)
	}
	if !profile.ValidName(user) {
		return "", fmt.Errorf("invalid user name %q", user)
	}
	return user, nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--%s must be > 0", name)
	}
	return d, nil
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keycast configuration
# Uncomment a value to enable it. CLI flags and KEYCAST_* variables override config values.

[app]
# user = %q               # Profile to record keys for
# backend = %q          # Keyboard hook: %s
# device = ""               # evdev device path (default: first keyboard)
# style = ""                # Style id (default: the profile's style)
# log-level = %q          # Log level (debug, info, warn, error)
# flush-interval = %q     # How often counts are saved
# words = ""                # Demo script: words and shortcuts like ctrl+s
# demo-interval = %q    # Delay between demo key events

[stats]
# curve-window = %d         # Moving average window in days
# top = %d                 # Keys in the top keys chart
`,
		model.GuestUser,
		defaultBackend,
		strings.Join(hook.Backends(), ", "),
		config.DefaultLogLevel,
		tui.DefaultFlushInterval.String(),
		hook.DefaultDemoInterval.String(),
		defaultCurveWindow,
		defaultTopKeys,
	)
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
