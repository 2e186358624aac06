package atlas

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/home/user/.brainglobe"

func newTestStore(t *testing.T, dirs ...string) *Store {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fsys.MkdirAll(filepath.Join(testRoot, d), 0o755))
	}
	return NewStore(fsys, testRoot)
}

func TestSplitFullName(t *testing.T) {
	name, v, ok := SplitFullName("allen_mouse_25um_v1.2")
	require.True(t, ok)
	assert.Equal(t, "allen_mouse_25um", name)
	assert.Equal(t, "1.2", v.String())

	name, v, ok = SplitFullName("kim_dev_mouse_v_idisco_10um_v1.0")
	require.True(t, ok)
	assert.Equal(t, "kim_dev_mouse_v_idisco_10um", name)
	assert.Equal(t, "1.0", v.String())

	_, _, ok = SplitFullName("allen_mouse_25um")
	assert.False(t, ok)
	_, _, ok = SplitFullName("_v1.0")
	assert.False(t, ok)
}

func TestStore_Downloaded(t *testing.T) {
	s := newTestStore(t,
		"example_mouse_100um_v1.2",
		"allen_mouse_25um_v1.2",
		"allen_mouse_25um_v1.1",
		"not_an_atlas",
	)
	require.NoError(t, afero.WriteFile(s.Fs(), filepath.Join(testRoot, "stray_v1.0"), []byte("file"), 0o644))

	names, err := s.Downloaded()
	require.NoError(t, err)
	assert.Equal(t, []string{"allen_mouse_25um", "example_mouse_100um"}, names)
}

func TestStore_DownloadedMissingRoot(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "/nowhere")

	names, err := s.Downloaded()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_PathPicksNewest(t *testing.T) {
	s := newTestStore(t, "allen_mouse_25um_v1.2", "allen_mouse_25um_v1.10", "allen_mouse_25um_v1.9")

	path, err := s.Path("allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(testRoot, "allen_mouse_25um_v1.10"), path)
}

func TestStore_PathNotInstalled(t *testing.T) {
	s := newTestStore(t, "allen_mouse_25um_v1.2")

	_, err := s.Path("allen_mouse")
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestStore_LocalVersion(t *testing.T) {
	s := newTestStore(t, "allen_mouse_25um_v1.2", "example_mouse_100um_v0.3")
	require.NoError(t, afero.WriteFile(s.Fs(),
		filepath.Join(testRoot, "allen_mouse_25um_v1.2", metadataFilename),
		[]byte(`{"name": "allen_mouse_25um", "version": "1.3"}`), 0o644))

	v, err := s.LocalVersion("allen_mouse_25um")
	require.NoError(t, err)
	assert.Equal(t, "1.3", v.String(), "metadata.json wins over the directory name")

	v, err = s.LocalVersion("example_mouse_100um")
	require.NoError(t, err)
	assert.Equal(t, "0.3", v.String())

	_, err = s.LocalVersion("missing")
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestStore_LocalVersionInvalidMetadata(t *testing.T) {
	s := newTestStore(t, "allen_mouse_25um_v1.2")
	require.NoError(t, afero.WriteFile(s.Fs(),
		filepath.Join(testRoot, "allen_mouse_25um_v1.2", metadataFilename),
		[]byte(`{"version": "latest"}`), 0o644))

	_, err := s.LocalVersion("allen_mouse_25um")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}
