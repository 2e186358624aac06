package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/afero"
)

// Client discovers, downloads and locates atlases. The Manager drives atlas
// lifecycle through it.
type Client interface {
	// Downloaded returns the names of installed atlases.
	Downloaded() ([]string, error)

	// Available returns the latest remote version of every atlas.
	Available(ctx context.Context) (map[string]Version, error)

	// Ensure makes an atlas available locally, downloading it when missing.
	// No version check is performed on an installed atlas.
	Ensure(ctx context.Context, name string, fn ProgressFunc) error

	// IsLatest reports whether the installed atlas is at the latest remote version.
	IsLatest(ctx context.Context, name string) (bool, error)

	// LocalVersion returns the installed version of an atlas.
	LocalVersion(name string) (Version, error)

	// RemoteVersion returns the latest remote version of an atlas.
	RemoteVersion(ctx context.Context, name string) (Version, error)

	// Path returns the directory holding an installed atlas.
	Path(name string) (string, error)

	// DownloadExtract downloads and extracts the latest version of an atlas.
	DownloadExtract(ctx context.Context, name string, fn ProgressFunc) error
}

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Catalog is the Client backed by a remote repository and a local store.
type Catalog struct {
	remote      *Remote
	store       *Store
	downloadDir string
	maxRetries  int
	retryDelay  time.Duration

	mu       sync.Mutex
	versions map[string]Version
}

var _ Client = (*Catalog)(nil)

// NewCatalog creates a catalog. Archives are downloaded to downloadDir, the
// atlas home is used when it is empty.
func NewCatalog(remote *Remote, store *Store, downloadDir string) *Catalog {
	if downloadDir == "" {
		downloadDir = store.Root()
	}
	return &Catalog{
		remote:      remote,
		store:       store,
		downloadDir: filepath.Clean(downloadDir),
		maxRetries:  defaultMaxRetries,
		retryDelay:  defaultRetryDelay,
	}
}

// Store returns the local atlas store.
func (c *Catalog) Store() *Store {
	return c.store
}

// Downloaded returns the names of installed atlases.
func (c *Catalog) Downloaded() ([]string, error) {
	return c.store.Downloaded()
}

// Available returns the latest remote version of every atlas. The listing is
// fetched once and cached until Refresh is called. Failed lookups are not cached.
func (c *Catalog) Available(ctx context.Context) (map[string]Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions == nil {
		versions, err := c.remote.LastVersions(ctx)
		if err != nil {
			return nil, err
		}
		c.versions = versions
		slog.Debug("Fetched remote atlas listing", "atlases", len(versions))
	}

	return maps.Clone(c.versions), nil
}

// Refresh drops the cached remote listing.
func (c *Catalog) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = nil
}

// Ensure downloads an atlas unless it is already installed. Names missing
// from the remote listing fail with ErrUnknownAtlas before any download.
func (c *Catalog) Ensure(ctx context.Context, name string, fn ProgressFunc) error {
	downloaded, err := c.store.Downloaded()
	if err != nil {
		return err
	}
	if slices.Contains(downloaded, name) {
		return nil
	}

	return c.DownloadExtract(ctx, name, fn)
}

// IsLatest reports whether the installed atlas is at least the remote version.
func (c *Catalog) IsLatest(ctx context.Context, name string) (bool, error) {
	local, err := c.store.LocalVersion(name)
	if err != nil {
		return false, err
	}
	remote, err := c.RemoteVersion(ctx, name)
	if err != nil {
		return false, err
	}

	slog.Debug("Compared atlas versions", "atlas", name, "local", local.String(), "remote", remote.String())
	return !local.LessThan(remote), nil
}

// LocalVersion returns the installed version of an atlas.
func (c *Catalog) LocalVersion(name string) (Version, error) {
	return c.store.LocalVersion(name)
}

// RemoteVersion returns the latest remote version of an atlas.
func (c *Catalog) RemoteVersion(ctx context.Context, name string) (Version, error) {
	available, err := c.Available(ctx)
	if err != nil {
		return Version{}, err
	}

	v, ok := available[name]
	if !ok {
		return Version{}, fmt.Errorf("%w: %s", ErrUnknownAtlas, name)
	}
	return v, nil
}

// Path returns the directory holding an installed atlas.
func (c *Catalog) Path(name string) (string, error) {
	return c.store.Path(name)
}

// DownloadExtract downloads the latest archive to the download directory,
// extracts it into the atlas home and removes the archive. Failed downloads are
// retried.
func (c *Catalog) DownloadExtract(ctx context.Context, name string, fn ProgressFunc) error {
	v, err := c.RemoteVersion(ctx, name)
	if err != nil {
		return err
	}

	fsys := c.store.Fs()
	if err := c.store.EnsureRoot(); err != nil {
		return err
	}
	if err := fsys.MkdirAll(c.downloadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory %s: %w", c.downloadDir, err)
	}

	archive := filepath.Join(c.downloadDir, ArchiveName(name, v))
	defer func() {
		if err := fsys.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove atlas archive", "path", archive, "error", err)
		}
	}()

	var (
		size    int64
		lastErr error
	)
	for attempt := range c.maxRetries {
		if attempt > 0 {
			slog.Info("Retrying download", "atlas", name, "attempt", attempt+1, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("download canceled: %w", ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		size, lastErr = c.download(ctx, name, v, archive, fn)
		if lastErr == nil {
			break
		}
		slog.Error("Failed to download atlas", "atlas", name, "path", archive, "attempt", attempt+1, "error", lastErr)

		if ctx.Err() != nil {
			return fmt.Errorf("download canceled: %w", lastErr)
		}
	}
	if lastErr != nil {
		return lastErr
	}

	if err := c.extract(archive); err != nil {
		return err
	}

	slog.Info("Atlas downloaded and extracted", "atlas", name, "version", v.String(), "size", units.HumanSize(float64(size)), "path", filepath.Join(c.store.Root(), FullName(name, v)))

	return nil
}

func (c *Catalog) download(ctx context.Context, name string, v Version, archive string, fn ProgressFunc) (int64, error) {
	f, err := c.store.Fs().Create(archive)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file %s: %w", archive, err)
	}

	size, err := c.remote.Download(ctx, name, v, f, fn)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return size, err
}

func (c *Catalog) extract(archive string) error {
	f, err := c.store.Fs().Open(archive)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrExtractionFailed, archive, err)
	}
	defer func() { _ = f.Close() }()

	return Extract(c.store.Fs(), f, c.store.Root())
}

// NewOsCatalog builds a catalog on the host filesystem.
func NewOsCatalog(remote *Remote, atlasDir, downloadDir string) *Catalog {
	return NewCatalog(remote, NewStore(afero.NewOsFs(), atlasDir), downloadDir)
}
