package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const styleFile = "style.json"

var requiredKeys = []string{
	"name", "description", "key_display", "font", "font_size",
	"background_color", "text_color", "padding", "border_radius",
}

var (
	// ErrStyleExists is returned when importing a style whose id is taken.
	ErrStyleExists = errors.New("style already exists")
	// ErrBuiltinStyle is returned when removing a built-in style.
	ErrBuiltinStyle = errors.New("built-in styles cannot be removed")
	// ErrInvalidStyleID is returned for ids that are not a plain directory name.
	ErrInvalidStyleID = errors.New("invalid style id")
)

// Registry lists built-in styles and styles imported into dir.
type Registry struct {
	dir string
}

// NewRegistry returns a registry rooted at dir.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func builtins() []Style {
	return []Style{Default(), Plain()}
}

// List returns all styles sorted by id. Unreadable imported styles are skipped.
func (r *Registry) List() ([]Style, error) {
	styles := builtins()
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return styles, nil
		}
		return nil, fmt.Errorf("failed to read styles directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || isBuiltin(entry.Name()) {
			continue
		}
		st, err := loadStyle(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			continue
		}
		st.ID = entry.Name()
		styles = append(styles, st)
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].ID < styles[j].ID })
	return styles, nil
}

// Get returns the style with id, falling back to the default style.
func (r *Registry) Get(id string) (Style, bool) {
	if !validID(id) {
		return Default(), false
	}
	for _, st := range builtins() {
		if st.ID == id {
			return st, true
		}
	}
	st, err := loadStyle(filepath.Join(r.dir, id))
	if err != nil {
		return Default(), false
	}
	st.ID = id
	return st, true
}

// Import validates srcDir/style.json and copies it together with its font
// files into the registry.
func (r *Registry) Import(srcDir string) (st Style, err error) {
	raw, err := os.ReadFile(filepath.Join(srcDir, styleFile))
	if err != nil {
		return Style{}, fmt.Errorf("failed to read style: %w", err)
	}
	if err := Validate(raw); err != nil {
		return Style{}, err
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return Style{}, fmt.Errorf("failed to decode style: %w", err)
	}
	st.ID = styleID(gjson.GetBytes(raw, "id").String(), st.Name)
	if st.ID == "" {
		return Style{}, fmt.Errorf("style name is empty")
	}
	dst := filepath.Join(r.dir, st.ID)
	if isBuiltin(st.ID) {
		return Style{}, fmt.Errorf("%w: %s", ErrStyleExists, st.ID)
	}
	if _, err := os.Stat(dst); err == nil {
		return Style{}, fmt.Errorf("%w: %s", ErrStyleExists, st.ID)
	} else if !os.IsNotExist(err) {
		return Style{}, fmt.Errorf("failed to stat style: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return Style{}, fmt.Errorf("failed to create style directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dst)
		}
	}()
	// The stored document carries the resolved id.
	raw, err = sjson.SetBytes(raw, "id", st.ID)
	if err != nil {
		return Style{}, fmt.Errorf("failed to set style id: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dst, styleFile), raw, 0o644); err != nil {
		return Style{}, fmt.Errorf("failed to write style: %w", err)
	}
	fonts, err := copyFonts(srcDir, dst)
	if err != nil {
		return Style{}, err
	}
	st.Fonts = fonts
	return st, nil
}

// Remove deletes an imported style.
func (r *Registry) Remove(id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidStyleID, id)
	}
	if isBuiltin(id) {
		return ErrBuiltinStyle
	}
	path := filepath.Join(r.dir, id)
	if _, err := os.Stat(filepath.Join(path, styleFile)); err != nil {
		return fmt.Errorf("style %q not found", id)
	}
	return os.RemoveAll(path)
}

// Validate checks that raw is a JSON object with every required style key.
func Validate(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("style is not valid JSON")
	}
	results := gjson.GetManyBytes(raw, requiredKeys...)
	var missing []string
	for i, res := range results {
		if !res.Exists() {
			missing = append(missing, requiredKeys[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("style data missing required keys: %s", strings.Join(missing, ", "))
	}
	if !gjson.GetBytes(raw, "key_display").IsObject() {
		return fmt.Errorf("key_display must be an object")
	}
	return nil
}

func loadStyle(dir string) (Style, error) {
	raw, err := os.ReadFile(filepath.Join(dir, styleFile))
	if err != nil {
		return Style{}, err
	}
	if err := Validate(raw); err != nil {
		return Style{}, err
	}
	var st Style
	if err := json.Unmarshal(raw, &st); err != nil {
		return Style{}, err
	}
	st.Fonts = listFonts(dir)
	return st, nil
}

func copyFonts(srcDir, dstDir string) ([]string, error) {
	fonts := listFonts(srcDir)
	for _, name := range fonts {
		if err := copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
			return nil, fmt.Errorf("failed to copy font %s: %w", name, err)
		}
	}
	return fonts, nil
}

func listFonts(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var fonts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".ttf") {
			fonts = append(fonts, entry.Name())
		}
	}
	sort.Strings(fonts)
	return fonts
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}

func styleID(id, name string) string {
	if id = strings.TrimSpace(id); id == "" {
		id = name
	}
	id = strings.ToLower(strings.TrimSpace(id))
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// validID reports whether id is already in the normalized form Import stores.
func validID(id string) bool {
	return id != "" && styleID(id, "") == id
}

func isBuiltin(id string) bool {
	for _, st := range builtins() {
		if st.ID == id {
			return true
		}
	}
	return false
}
