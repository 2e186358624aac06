package atlas

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/go-ini/ini"
)

const (
	// DefaultBaseURL is the repository serving atlas archives.
	DefaultBaseURL = "https://gin.g-node.org/brainglobe/atlases/raw/master"

	// DefaultTimeout bounds version lookups. Archive downloads are not bounded.
	DefaultTimeout = 30 * time.Second

	lastVersionsFile    = "last_versions.conf"
	lastVersionsSection = "atlases"
	userAgent           = "bgatlas"
)

// ProgressFunc receives the number of bytes downloaded so far and the total size.
// total is zero when the server does not announce a size.
type ProgressFunc func(completed, total int64)

// Remote talks to the remote atlas repository over HTTP.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		r.httpClient = client
	}
}

// WithBaseURL sets the repository base URL.
func WithBaseURL(baseURL string) RemoteOption {
	return func(r *Remote) {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the timeout used for version lookups.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(r *Remote) {
		r.timeout = timeout
	}
}

// NewRemote creates a client for the remote atlas repository.
func NewRemote(opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LastVersions fetches the latest version of every atlas the repository offers.
func (r *Remote) LastVersions(ctx context.Context) (map[string]Version, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.get(ctx, r.baseURL+"/"+lastVersionsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRemoteUnavailable, lastVersionsFile, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrRemoteUnavailable, lastVersionsFile, err)
	}

	return parseLastVersions(data)
}

// parseLastVersions reads the [atlases] section of last_versions.conf.
func parseLastVersions(data []byte) (map[string]Version, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lastVersionsFile, err)
	}

	section, err := file.GetSection(lastVersionsSection)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lastVersionsFile, err)
	}

	versions := make(map[string]Version, len(section.Keys()))
	for _, key := range section.Keys() {
		v, err := ParseVersion(key.Value())
		if err != nil {
			slog.Warn("Skipping atlas with invalid remote version", "atlas", key.Name(), "version", key.Value())
			continue
		}
		versions[key.Name()] = v
	}

	return versions, nil
}

// ArchiveName returns the archive file name of an atlas version.
func ArchiveName(name string, v Version) string {
	return FullName(name, v) + ".tar.gz"
}

// ArchiveURL returns the download URL of an atlas version.
func (r *Remote) ArchiveURL(name string, v Version) string {
	return r.baseURL + "/" + ArchiveName(name, v)
}

// Download streams an atlas archive into dst and returns the number of bytes written.
func (r *Remote) Download(ctx context.Context, name string, v Version, dst io.Writer, fn ProgressFunc) (int64, error) {
	url := r.ArchiveURL(name, v)

	resp, err := r.get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s returned status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	total := max(resp.ContentLength, 0)
	slog.Info("Downloading atlas", "atlas", name, "version", v.String(), "url", url, "size", units.HumanSize(float64(total)))

	n, err := io.Copy(&progressWriter{w: dst, total: total, fn: fn}, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if total > 0 && n != total {
		return n, fmt.Errorf("%w: got %d of %d bytes", ErrDownloadFailed, n, total)
	}

	return n, nil
}

func (r *Remote) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	return r.httpClient.Do(req)
}

// progressWriter reports the running byte count after every write.
type progressWriter struct {
	w         io.Writer
	fn        ProgressFunc
	total     int64
	completed int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.completed += int64(n)
	if p.fn != nil {
		p.fn(p.completed, p.total)
	}
	return n, err
}
