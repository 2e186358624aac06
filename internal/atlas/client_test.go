package atlas

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, versions map[string]string, dirs ...string) (*Catalog, *fakeRepository) {
	t.Helper()

	repo := newFakeRepository(t, versions)
	store := newTestStore(t, dirs...)
	return NewCatalog(NewRemote(WithBaseURL(repo.URL)), store, "/tmp/downloads"), repo
}

func TestCatalog_DownloadExtract(t *testing.T) {
	c, _ := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})

	var progressed bool
	err := c.DownloadExtract(context.Background(), "allen_mouse_25um", func(completed, total int64) {
		progressed = true
	})
	require.NoError(t, err)
	assert.True(t, progressed)

	path, err := c.Path("allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(testRoot, "allen_mouse_25um_v1.2"), path)

	v, err := c.LocalVersion("allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, "1.2", v.String())

	exists, err := afero.Exists(c.Store().Fs(), "/tmp/downloads/allen_mouse_25um_v1.2.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists, "archive is removed after extraction")
}

func TestCatalog_DownloadExtractUnknownAtlas(t *testing.T) {
	c, _ := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})

	err := c.DownloadExtract(context.Background(), "no_such_atlas", nil)
	assert.ErrorIs(t, err, ErrUnknownAtlas)
}

func TestCatalog_EnsureUnknownAtlas(t *testing.T) {
	c, _ := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})

	err := c.Ensure(context.Background(), "no_such_atlas", nil)
	assert.ErrorIs(t, err, ErrUnknownAtlas)

	exists, err := afero.DirExists(c.Store().Fs(), "/tmp/downloads")
	require.NoError(t, err)
	assert.False(t, exists, "nothing is downloaded for unknown atlases")
}

func TestCatalog_RemoteVersion(t *testing.T) {
	c, _ := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.10"})

	v, err := c.RemoteVersion(context.Background(), "allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, "1.10", v.String())

	_, err = c.RemoteVersion(context.Background(), "no_such_atlas")
	assert.ErrorIs(t, err, ErrUnknownAtlas)
}

func TestCatalog_Defaults(t *testing.T) {
	store := newTestStore(t)
	c := NewCatalog(NewRemote(), store, "")

	assert.Equal(t, 3, c.maxRetries)
	assert.Equal(t, 2*time.Second, c.retryDelay)
	assert.Equal(t, testRoot, c.downloadDir)
}

func TestCatalog_EnsureSkipsInstalled(t *testing.T) {
	c, repo := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.3"}, "allen_mouse_25um_v1.2")

	require.NoError(t, c.Ensure(context.Background(), "allen_mouse_25um", nil))
	assert.Zero(t, repo.listRequests.Load(), "installed atlases need no remote lookup")

	v, err := c.LocalVersion("allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, "1.2", v.String())
}

func TestCatalog_EnsureDownloadsMissing(t *testing.T) {
	c, _ := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})

	require.NoError(t, c.Ensure(context.Background(), "allen_mouse_25um", nil))

	names, err := c.Downloaded()
	require.NoError(t, err)
	assert.Equal(t, []string{"allen_mouse_25um"}, names)
}

func TestCatalog_IsLatest(t *testing.T) {
	c, _ := newTestCatalog(t,
		map[string]string{"allen_mouse_25um": "1.3", "example_mouse_100um": "1.0"},
		"allen_mouse_25um_v1.2", "example_mouse_100um_v1.0")

	latest, err := c.IsLatest(context.Background(), "allen_mouse_25um")
	require.NoError(t, err)
	assert.False(t, latest)

	latest, err = c.IsLatest(context.Background(), "example_mouse_100um")
	require.NoError(t, err)
	assert.True(t, latest)
}

func TestCatalog_IsLatestRemoteDown(t *testing.T) {
	c, repo := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.3"}, "allen_mouse_25um_v1.2")
	repo.down.Store(true)

	_, err := c.IsLatest(context.Background(), "allen_mouse_25um")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestCatalog_AvailableIsCached(t *testing.T) {
	c, repo := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})

	for range 3 {
		_, err := c.Available(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.listRequests.Load())

	c.Refresh()
	_, err := c.Available(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.listRequests.Load())
}

func TestCatalog_DownloadExtractRetries(t *testing.T) {
	c, repo := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})
	c.retryDelay = time.Millisecond
	repo.failArchives.Store(2)

	require.NoError(t, c.DownloadExtract(context.Background(), "allen_mouse_25um", nil))

	names, err := c.Downloaded()
	require.NoError(t, err)
	assert.Equal(t, []string{"allen_mouse_25um"}, names)
}

func TestCatalog_DownloadExtractGivesUp(t *testing.T) {
	c, repo := newTestCatalog(t, map[string]string{"allen_mouse_25um": "1.2"})
	c.retryDelay = time.Millisecond
	repo.failArchives.Store(int32(defaultMaxRetries))

	err := c.DownloadExtract(context.Background(), "allen_mouse_25um", nil)
	assert.ErrorIs(t, err, ErrDownloadFailed)

	names, err := c.Downloaded()
	require.NoError(t, err)
	assert.Empty(t, names)
}
