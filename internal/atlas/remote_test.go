package atlas

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLastVersions(t *testing.T) {
	data := []byte(`
[atlases]
allen_mouse_25um = 1.2
example_mouse_100um = 1.10
broken_atlas = not-a-version

[other]
ignored = 3.0
`)

	versions, err := parseLastVersions(data)
	require.NoError(t, err)

	assert.Len(t, versions, 2)
	assert.Equal(t, "1.2", versions["allen_mouse_25um"].String())
	assert.Equal(t, "1.10", versions["example_mouse_100um"].String())
}

func TestParseLastVersions_MissingSection(t *testing.T) {
	_, err := parseLastVersions([]byte("[something]\na = 1.0\n"))
	require.Error(t, err)
}

func TestRemote_LastVersions(t *testing.T) {
	repo := newFakeRepository(t, map[string]string{"allen_mouse_25um": "1.2"})
	r := NewRemote(WithBaseURL(repo.URL+"/"), WithHTTPClient(repo.Client()))

	versions, err := r.LastVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2", versions["allen_mouse_25um"].String())
}

func TestRemote_LastVersionsUnavailable(t *testing.T) {
	repo := newFakeRepository(t, nil)
	repo.down.Store(true)
	r := NewRemote(WithBaseURL(repo.URL))

	_, err := r.LastVersions(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestRemote_LastVersionsConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemote(WithBaseURL(url)).LastVersions(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestRemote_DownloadReportsProgress(t *testing.T) {
	repo := newFakeRepository(t, map[string]string{"allen_mouse_25um": "1.2"})
	r := NewRemote(WithBaseURL(repo.URL))

	var (
		buf       bytes.Buffer
		lastDone  int64
		lastTotal int64
		calls     int
	)
	n, err := r.Download(context.Background(), "allen_mouse_25um", MustParseVersion("1.2"), &buf, func(completed, total int64) {
		calls++
		lastDone, lastTotal = completed, total
	})
	require.NoError(t, err)

	want := repo.archive("allen_mouse_25um_v1.2.tar.gz")
	assert.Equal(t, int64(len(want)), n)
	assert.Equal(t, want, buf.Bytes())
	assert.Positive(t, calls)
	assert.Equal(t, n, lastDone)
	assert.Equal(t, n, lastTotal)
}

func TestRemote_DownloadNotFound(t *testing.T) {
	repo := newFakeRepository(t, nil)
	r := NewRemote(WithBaseURL(repo.URL))

	_, err := r.Download(context.Background(), "missing", MustParseVersion("1.0"), &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

func TestArchiveURL(t *testing.T) {
	r := NewRemote(WithBaseURL("https://example.org/atlases/"))
	assert.Equal(t, "https://example.org/atlases/allen_mouse_25um_v1.2.tar.gz", r.ArchiveURL("allen_mouse_25um", MustParseVersion("1.2")))
}
