// Package preset reads and writes blocking presets: plain text files with a
// [SITES] section and an [APPS] section, one file per preset.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/studywith/internal/constants"
)

const (
	sitesHeader = "[SITES]"
	appsHeader  = "[APPS]"
)

var (
	ErrNotFound    = errors.New("preset not found")
	ErrInvalidName = errors.New("invalid preset name")
	ErrEmpty       = errors.New("preset has no sites or apps")
)

// defaultPreset is written to an empty preset directory.
var defaultPreset = Preset{
	Name:  constants.DefaultPresetName,
	Sites: []string{"youtube.com", "instagram.com", "twitter.com", "netflix.com"},
	Apps:  []string{"discord", "steam", "kakaotalk"},
}

type Preset struct {
	Name  string   `json:"name"`
	Sites []string `json:"sites"`
	Apps  []string `json:"apps"`
}

// Parse reads preset text. Text after [SITES] up to [APPS] lists sites and
// the rest lists apps; a file with only [APPS] has no sites. Entries are
// separated by commas or newlines.
func Parse(name, content string) Preset {
	p := Preset{Name: name}
	switch {
	case strings.Contains(content, sitesHeader):
		rest := strings.SplitN(content, sitesHeader, 2)[1]
		sites, apps, _ := strings.Cut(rest, appsHeader)
		p.Sites = splitEntries(sites)
		p.Apps = splitEntries(apps)
	case strings.Contains(content, appsHeader):
		p.Apps = splitEntries(strings.SplitN(content, appsHeader, 2)[1])
	}
	return p
}

func splitEntries(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Format renders p in the file layout Parse reads.
func (p Preset) Format() string {
	var b strings.Builder
	b.WriteString(sitesHeader + "\n")
	b.WriteString(strings.Join(p.Sites, ", ") + "\n\n")
	b.WriteString(appsHeader + "\n")
	b.WriteString(strings.Join(p.Apps, ", ") + "\n")
	return b.String()
}

// Dir is a directory of preset files plus the file remembering the last
// preset loaded.
type Dir struct {
	path     string
	lastFile string
}

func NewDir(path, lastFile string) *Dir {
	return &Dir{path: path, lastFile: lastFile}
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) file(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), constants.PresetFileSuffix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.path, name+constants.PresetFileSuffix), nil
}

// EnsureDefault writes the default preset when the directory holds no
// preset files. It reports whether it wrote one.
func (d *Dir) EnsureDefault() (bool, error) {
	if err := os.MkdirAll(d.path, 0700); err != nil {
		return false, fmt.Errorf("failed to create preset directory: %w", err)
	}
	names, err := d.List()
	if err != nil || len(names) > 0 {
		return false, err
	}
	if _, err := d.Save(defaultPreset); err != nil {
		return false, err
	}
	return true, nil
}

// List returns preset names in alphabetical order.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), constants.PresetFileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Save writes p under its name, replacing any preset of the same name.
func (d *Dir) Save(p Preset) (string, error) {
	if len(p.Sites) == 0 && len(p.Apps) == 0 {
		return "", ErrEmpty
	}
	path, err := d.file(p.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.path, 0700); err != nil {
		return "", fmt.Errorf("failed to create preset directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(p.Format()), 0600); err != nil {
		return "", fmt.Errorf("failed to write preset: %w", err)
	}
	return path, nil
}

// Load reads the named preset and remembers it as the last one loaded.
func (d *Dir) Load(name string) (Preset, error) {
	path, err := d.file(name)
	if err != nil {
		return Preset{}, err
	}
	p, err := readFile(path)
	if err != nil {
		return Preset{}, err
	}
	if err := d.remember(path); err != nil {
		return p, err
	}
	return p, nil
}

func readFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read preset: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, string(data)), nil
}

func (d *Dir) remember(path string) error {
	if d.lastFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.lastFile), 0700); err != nil {
		return fmt.Errorf("failed to remember last preset: %w", err)
	}
	if err := os.WriteFile(d.lastFile, []byte(path), 0600); err != nil {
		return fmt.Errorf("failed to remember last preset: %w", err)
	}
	return nil
}

// Last returns the preset loaded most recently. It fails with ErrNotFound
// when none was recorded or the recorded file is gone.
func (d *Dir) Last() (Preset, error) {
	if d.lastFile == "" {
		return Preset{}, ErrNotFound
	}
	data, err := os.ReadFile(d.lastFile)
	if err != nil {
		return Preset{}, ErrNotFound
	}
	path := strings.TrimSpace(string(data))
	if path == "" {
		return Preset{}, ErrNotFound
	}
	return readFile(path)
}
