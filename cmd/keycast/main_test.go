package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycast/internal/config"
	"github.com/verte-zerg/keycast/internal/model"
	"github.com/verte-zerg/keycast/internal/profile"
	"github.com/verte-zerg/keycast/internal/store"
	"github.com/verte-zerg/keycast/internal/style"
)

func init() {
	color.NoColor = true
}

func TestConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var uncommented []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		uncommented = append(uncommented, line)
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(uncommented, "\n")), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.App.User)
	assert.Equal(t, model.GuestUser, *cfg.App.User)
	assert.Equal(t, defaultBackend, *cfg.App.Backend)
	require.NotNil(t, cfg.App.FlushInterval)
	d, err := parsePositiveDuration("flush-interval", *cfg.App.FlushInterval)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
	require.NotNil(t, cfg.Stats.CurveWindow)
	assert.Equal(t, defaultCurveWindow, *cfg.Stats.CurveWindow)
}

func TestParsePositiveDuration(t *testing.T) {
	d, err := parsePositiveDuration("demo-interval", " 250ms ")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = parsePositiveDuration("demo-interval", "0s")
	assert.Error(t, err)
	_, err = parsePositiveDuration("demo-interval", "soon")
	assert.Error(t, err)
}

func TestApplySetting(t *testing.T) {
	profiles := profile.NewStore(t.TempDir(), nil)
	require.NoError(t, profiles.Add("alice"))

	s, err := applySetting(profiles, "alice", "fade_in", "250")
	require.NoError(t, err)
	assert.Equal(t, 250, s.FadeInMs)

	_, err = applySetting(profiles, "alice", "display_numpad", "false")
	require.NoError(t, err)

	p, err := profiles.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, 250, p.Settings.FadeInMs)
	assert.False(t, p.Settings.Numpad)

	_, err = applySetting(profiles, "alice", "max_consecutive_chars", "0")
	assert.Error(t, err)
	_, err = applySetting(profiles, "alice", "fade_out", "slow")
	assert.Error(t, err)
	_, err = applySetting(profiles, "alice", "volume", "3")
	assert.Error(t, err)
	_, err = applySetting(profiles, "bob", "fade_in", "1")
	assert.ErrorIs(t, err, profile.ErrUserNotFound)

	p, err = profiles.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxConsecutiveChars, p.Settings.MaxConsecutiveChars)
}

func TestWriteSettingsListsEveryName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSettings(&buf, model.DefaultSettings()))
	out := buf.String()
	for _, name := range settingNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "display_normal         true")
}

func TestWriteUsersMarksCurrent(t *testing.T) {
	profiles := profile.NewStore(t.TempDir(), nil)
	require.NoError(t, profiles.Add("alice"))
	require.NoError(t, profiles.SaveCounts("alice", model.KeyCounts{"a": 2, "b": 3}))
	users, err := profiles.List()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeUsers(&buf, profiles, users, "alice"))
	assert.Equal(t, "* alice (5 presses)\n  guest (0 presses)\n", buf.String())
}

func TestWriteStylesMarksCurrent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStyles(&buf, []style.Style{style.Default(), style.Plain()}, ""))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* "+style.DefaultID))
	assert.True(t, strings.HasPrefix(lines[1], "  plain"))
}

func TestRecordAndForgetStyle(t *testing.T) {
	p := model.NewProfile("alice")
	st := style.Style{ID: "neon", Fonts: []string{"Neon.ttf"}}
	recordStyle(&p, st)
	recordStyle(&p, st)
	p.Style = "neon"
	assert.Equal(t, []string{"neon"}, p.Styles)
	assert.Equal(t, []string{"Neon.ttf"}, p.Fonts)

	forgetStyle(&p, "neon")
	assert.Empty(t, p.Styles)
	assert.Equal(t, "", p.Style)
}

func TestRenderTextReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	require.NoError(t, st.AddCounts(ctx, "alice", "2026-02-01", model.KeyCounts{"a": 5, "ctrl": 2}))
	require.NoError(t, st.AddCounts(ctx, "alice", "2026-02-02", model.KeyCounts{"a": 1, "space": 7}))

	cfg := model.StatsConfig{User: "alice", CurveWindow: 2, Keys: "a"}
	var buf bytes.Buffer
	require.NoError(t, renderTextReport(&buf, st, cfg, nil, 3))
	out := buf.String()
	assert.Contains(t, out, "Presses: 15")
	assert.Contains(t, out, "Distinct keys: 3")
	assert.Contains(t, out, "Top 3 Keys")
	assert.Contains(t, out, "Per-Key Curves")
	assert.Contains(t, out, "Key a")

	buf.Reset()
	cfg.User = "bob"
	require.NoError(t, renderTextReport(&buf, st, cfg, model.KeyCounts{"x": 4}, 3))
	assert.Contains(t, buf.String(), "Lifetime counts for bob")
	assert.Contains(t, buf.String(), "x")

	buf.Reset()
	require.NoError(t, renderTextReport(&buf, st, cfg, nil, 3))
	assert.Equal(t, "No key stats recorded for bob.\n", buf.String())
}
