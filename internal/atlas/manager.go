package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/LSeu-Open/bg-atlasapi/internal/config"
	"github.com/LSeu-Open/bg-atlasapi/internal/console"
	"github.com/spf13/afero"
)

// Manager orchestrates atlas lifecycle: install, version check and update.
type Manager struct {
	client   Client
	fs       afero.Fs
	printer  *console.Printer
	registry *Registry
	mu       sync.Mutex
}

// NewManager creates a manager. fsys must be the filesystem the client stores atlases on.
func NewManager(client Client, fsys afero.Fs, printer *console.Printer) *Manager {
	if printer == nil {
		printer = console.Discard()
	}
	return &Manager{
		client:   client,
		fs:       fsys,
		printer:  printer,
		registry: NewRegistry(),
	}
}

// Registry returns the registry populated by Sync.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Install downloads an atlas unless it is already installed. Installed atlases
// are left untouched whatever their version.
func (m *Manager) Install(ctx context.Context, name string, fn ProgressFunc) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	downloaded, err := m.client.Downloaded()
	if err != nil {
		return fmt.Errorf("failed to list downloaded atlases: %w", err)
	}
	if slices.Contains(downloaded, name) {
		m.printer.Printf("installing %s: atlas already installed!", name)
		return nil
	}

	if err := m.client.Ensure(ctx, name, fn); err != nil {
		return fmt.Errorf("failed to install atlas %s: %w", name, err)
	}

	slog.Info("Atlas installed", "atlas", name)
	return nil
}

// Update replaces an installed atlas with the latest remote version. Without
// force nothing happens when the local copy is already the latest. An atlas
// that is not installed yet is downloaded first. The installed copy is kept,
// even with force, when the remote version cannot be resolved.
func (m *Manager) Update(ctx context.Context, name string, force bool, fn ProgressFunc) error {
	_, err := m.update(ctx, name, force, fn)
	return err
}

func (m *Manager) update(ctx context.Context, name string, force bool, fn ProgressFunc) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	if err := m.client.Ensure(ctx, name, fn); err != nil {
		return false, fmt.Errorf("failed to open atlas %s: %w", name, err)
	}

	if !force {
		latest, err := m.client.IsLatest(ctx, name)
		if err != nil {
			return false, fmt.Errorf("failed to check latest version of %s: %w", name, err)
		}
		if latest {
			local, err := m.client.LocalVersion(name)
			if err != nil {
				return false, fmt.Errorf("failed to read local version of %s: %w", name, err)
			}
			m.printer.Printf("%s is already updated (version: %s)", name, local)
			return false, nil
		}
	}

	// Resolve the target version before anything is deleted.
	remote, err := m.client.RemoteVersion(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to resolve remote version of %s: %w", name, err)
	}

	m.printer.Printf("updating %s", name)

	dir, err := m.client.Path(name)
	if err != nil {
		return false, fmt.Errorf("failed to locate atlas %s: %w", name, err)
	}
	if err := m.fs.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", dir, err)
	}
	exists, err := afero.Exists(m.fs, dir)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if exists {
		return false, fmt.Errorf("%w: %s", ErrDeleteIncomplete, dir)
	}
	slog.Debug("Deleted old atlas version", "atlas", name, "path", dir)

	if err := m.client.DownloadExtract(ctx, name, fn); err != nil {
		return false, fmt.Errorf("failed to download atlas %s: %w", name, err)
	}

	m.printer.Printf("%s updated to version: %s", name, remote)
	return true, nil
}

// Summary describes an atlas for listing.
type Summary struct {
	Name          string
	Path          string
	LocalVersion  Version
	RemoteVersion Version
	Installed     bool
}

// UpToDate reports whether an installed atlas matches the remote version.
// The result is false when the remote version is unknown.
func (s Summary) UpToDate() bool {
	return s.Installed && !s.RemoteVersion.IsZero() && !s.LocalVersion.LessThan(s.RemoteVersion)
}

// List describes installed atlases. With remote set, remote versions are filled
// in and atlases available for download are included.
func (m *Manager) List(ctx context.Context, remote bool) ([]Summary, error) {
	downloaded, err := m.client.Downloaded()
	if err != nil {
		return nil, fmt.Errorf("failed to list downloaded atlases: %w", err)
	}

	byName := make(map[string]*Summary, len(downloaded))
	for _, name := range downloaded {
		s := &Summary{Name: name, Installed: true}
		if s.LocalVersion, err = m.client.LocalVersion(name); err != nil {
			return nil, fmt.Errorf("failed to read local version of %s: %w", name, err)
		}
		if s.Path, err = m.client.Path(name); err != nil {
			return nil, fmt.Errorf("failed to locate atlas %s: %w", name, err)
		}
		byName[name] = s
	}

	if remote {
		available, err := m.client.Available(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list remote atlases: %w", err)
		}
		for name, v := range available {
			s, ok := byName[name]
			if !ok {
				s = &Summary{Name: name}
				byName[name] = s
			}
			s.RemoteVersion = v
		}
	}

	out := make([]Summary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// Sync installs every atlas listed in the config and, when auto_update is set,
// updates the installed ones. Each outcome is recorded in the registry and
// atlases no longer listed are dropped from it. Failures do not stop the
// remaining atlases; they are joined into the returned error.
func (m *Manager) Sync(ctx context.Context, cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	listed := make(map[string]bool, len(cfg.Atlases))

	for _, name := range cfg.Atlases {
		if err := ctx.Err(); err != nil {
			return err
		}
		listed[name] = true

		instance := NewInstance(name)
		status, err := m.syncOne(ctx, name, cfg.AutoUpdate)
		if err != nil {
			instance.SetError(err)
			m.registry.Set(instance)
			slog.Error("Failed to sync atlas", "atlas", name, "error", err)
			errs = append(errs, err)
			continue
		}

		instance.SetStatus(status)
		if path, err := m.client.Path(name); err == nil {
			instance.Path = path
		}
		if v, err := m.client.LocalVersion(name); err == nil {
			instance.Version = v.String()
		}
		m.registry.Set(instance)

		slog.Info("Atlas synced", "atlas", name, "status", status, "version", instance.Version)
	}

	for _, instance := range m.registry.List() {
		if !listed[instance.Name] {
			m.registry.Delete(instance.Name)
			slog.Info("Atlas dropped from registry", "atlas", instance.Name)
		}
	}

	return errors.Join(errs...)
}

func (m *Manager) syncOne(ctx context.Context, name string, autoUpdate bool) (Status, error) {
	if err := ValidateName(name); err != nil {
		return StatusFailed, err
	}

	downloaded, err := m.client.Downloaded()
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to list downloaded atlases: %w", err)
	}
	if !slices.Contains(downloaded, name) {
		if err := m.Install(ctx, name, nil); err != nil {
			return StatusFailed, err
		}
		return StatusInstalled, nil
	}

	if !autoUpdate {
		return StatusCurrent, nil
	}

	updated, err := m.update(ctx, name, false, nil)
	if err != nil {
		return StatusFailed, err
	}
	if updated {
		return StatusUpdated, nil
	}
	return StatusCurrent, nil
}

// ValidateName rejects names that cannot denote an atlas directory. The rules
// match the atlas name pattern of the config schema.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case strings.ContainsFunc(name, unicode.IsSpace):
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsFunc(name, unicode.IsControl):
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
	}
	return nil
}
