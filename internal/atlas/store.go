package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/afero"
)

const metadataFilename = "metadata.json"

// fullNameRegex splits a local atlas directory name into atlas name and version.
var fullNameRegex = regexp.MustCompile(`^(.+)_v(\d+(?:\.\d+)*)$`)

// FullName returns the directory name of an installed atlas version, e.g. allen_mouse_25um_v1.2.
func FullName(name string, v Version) string {
	return name + "_v" + v.String()
}

// SplitFullName parses a directory name produced by FullName.
func SplitFullName(fullName string) (string, Version, bool) {
	m := fullNameRegex.FindStringSubmatch(fullName)
	if m == nil {
		return "", Version{}, false
	}

	v, err := ParseVersion(m[2])
	if err != nil {
		return "", Version{}, false
	}
	return m[1], v, true
}

// Store is the local atlas home.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a store rooted at root on the given filesystem.
func NewStore(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: filepath.Clean(root)}
}

// Fs returns the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Root returns the atlas home directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the atlas home if it does not exist.
func (s *Store) EnsureRoot() error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create atlas directory %s: %w", s.root, err)
	}
	return nil
}

// entry is an installed atlas directory.
type entry struct {
	name     string
	fullName string
	version  Version
}

func (s *Store) entries() ([]entry, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read atlas directory %s: %w", s.root, err)
	}

	var out []entry
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		name, v, ok := SplitFullName(info.Name())
		if !ok {
			continue
		}
		out = append(out, entry{name: name, fullName: info.Name(), version: v})
	}

	return out, nil
}

// Downloaded returns the names of installed atlases, sorted.
func (s *Store) Downloaded() ([]string, error) {
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if seen[e.name] {
			continue
		}
		seen[e.name] = true
		names = append(names, e.name)
	}
	sort.Strings(names)

	return names, nil
}

// LocalFullName returns the directory name of an installed atlas.
// When several versions are present the newest wins.
func (s *Store) LocalFullName(name string) (string, error) {
	e, err := s.find(name)
	if err != nil {
		return "", err
	}
	return e.fullName, nil
}

// Path returns the full path of an installed atlas.
func (s *Store) Path(name string) (string, error) {
	fullName, err := s.LocalFullName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, fullName), nil
}

// LocalVersion returns the installed version of an atlas. The version recorded in
// metadata.json takes precedence over the directory suffix.
func (s *Store) LocalVersion(name string) (Version, error) {
	e, err := s.find(name)
	if err != nil {
		return Version{}, err
	}

	metaPath := filepath.Join(s.root, e.fullName, metadataFilename)
	data, err := afero.ReadFile(s.fs, metaPath)
	if err != nil {
		slog.Debug("Atlas metadata unreadable, using directory version", "atlas", name, "path", metaPath, "error", err)
		return e.version, nil
	}

	var meta struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &meta); err != nil || meta.Version == "" {
		slog.Debug("Atlas metadata has no version, using directory version", "atlas", name, "path", metaPath)
		return e.version, nil
	}

	v, err := ParseVersion(meta.Version)
	if err != nil {
		return Version{}, fmt.Errorf("atlas %s metadata: %w", name, err)
	}
	return v, nil
}

func (s *Store) find(name string) (entry, error) {
	entries, err := s.entries()
	if err != nil {
		return entry{}, err
	}

	var (
		best  entry
		found bool
	)
	for _, e := range entries {
		if e.name != name {
			continue
		}
		if !found || best.version.LessThan(e.version) {
			best, found = e, true
		}
	}
	if !found {
		return entry{}, fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	return best, nil
}
