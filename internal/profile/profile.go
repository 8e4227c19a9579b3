// Package profile persists one JSON document per user.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/model"
)

const ext = ".json"

var (
	// ErrInvalidName is returned for names that cannot be used as file names.
	ErrInvalidName = errors.New("invalid user name")
	// ErrUserExists is returned when adding a user twice.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when removing an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrReservedUser is returned when removing the guest user.
	ErrReservedUser = errors.New("the guest user cannot be removed")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,31}$`)

// Store reads and writes profiles under dir. Writes replace the whole file;
// the last writer wins.
type Store struct {
	dir string
	log logrus.FieldLogger
}

// NewStore returns a profile store rooted at dir.
func NewStore(dir string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Store{dir: dir, log: log}
}

// Dir returns the profiles directory.
func (s *Store) Dir() string { return s.dir }

// ValidName reports whether name can be used as a user name.
func ValidName(name string) bool {
	return validName.MatchString(name) && !strings.HasSuffix(name, ".")
}

func (s *Store) path(user string) string {
	return filepath.Join(s.dir, user+ext)
}

// Load reads the profile of user. A missing or unreadable document yields a
// default profile; fields absent from the file keep their defaults.
func (s *Store) Load(user string) (model.Profile, error) {
	if !ValidName(user) {
		return model.Profile{}, fmt.Errorf("%w: %q", ErrInvalidName, user)
	}
	p := model.NewProfile(user)
	log := s.log.WithField("user", user)

	raw, err := os.ReadFile(s.path(user))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("failed to read profile, using defaults")
		}
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		log.WithError(err).Warn("malformed profile, using defaults")
		return model.NewProfile(user), nil
	}
	p.Username = user
	if p.KeyCounts == nil {
		p.KeyCounts = model.KeyCounts{}
	}
	if err := p.Settings.Validate(); err != nil {
		log.WithError(err).Warn("invalid settings, using defaults")
		p.Settings = model.DefaultSettings()
	}
	return p, nil
}

// Save writes p atomically.
func (s *Store) Save(p model.Profile) error {
	if !ValidName(p.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidName, p.Username)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}
	if p.KeyCounts == nil {
		p.KeyCounts = model.KeyCounts{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, p.Username+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp profile: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
			// Best-effort cleanup of the temp file.
			_ = rerr
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		if cerr := tmp.Close(); cerr != nil {
			// Best-effort close after write failure.
			_ = cerr
		}
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmpName, s.path(p.Username)); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}

// SaveCounts replaces the key counts of user.
func (s *Store) SaveCounts(user string, counts model.KeyCounts) error {
	return s.Update(user, func(p *model.Profile) {
		p.KeyCounts = counts.Clone()
	})
}

// Update loads the profile of user, applies fn and saves it.
func (s *Store) Update(user string, fn func(*model.Profile)) error {
	p, err := s.Load(user)
	if err != nil {
		return err
	}
	fn(&p)
	return s.Save(p)
}

// Exists reports whether user has a stored profile. Guest always exists.
func (s *Store) Exists(user string) bool {
	if user == model.GuestUser {
		return true
	}
	_, err := os.Stat(s.path(user))
	return err == nil
}

// List returns the sorted user names, always including guest.
func (s *Store) List() ([]string, error) {
	users := map[string]struct{}{model.GuestUser: {}}
	entries, err := os.ReadDir(s.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		name = strings.TrimSuffix(name, ext)
		if ValidName(name) {
			users[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(users))
	for u := range users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// Add creates a default profile for name.
func (s *Store) Add(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s.Exists(name) {
		return fmt.Errorf("%w: %s", ErrUserExists, name)
	}
	return s.Save(model.NewProfile(name))
}

// Remove deletes the profile of name.
func (s *Store) Remove(name string) error {
	if name == model.GuestUser {
		return ErrReservedUser
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, name)
		}
		return fmt.Errorf("failed to remove profile: %w", err)
	}
	return nil
}

// ResetGuest replaces the guest profile with a fresh one.
func (s *Store) ResetGuest() error {
	return s.Save(model.NewProfile(model.GuestUser))
}
