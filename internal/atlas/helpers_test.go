package atlas

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type archiveEntry struct {
	name    string
	body    string
	typ     byte
	symlink string
}

// buildArchive returns a .tar.gz containing entries.
func buildArchive(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	for _, e := range entries {
		typ := e.typ
		if typ == 0 {
			typ = tar.TypeReg
		}
		hdr := &tar.Header{Name: e.name, Typeflag: typ, Mode: 0o644, Linkname: e.symlink}
		if typ == tar.TypeDir {
			hdr.Mode = 0o755
		}
		if typ == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typ == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

// atlasArchive builds the archive the repository serves for name at version.
func atlasArchive(t *testing.T, name, version string) []byte {
	t.Helper()

	dir := name + "_v" + version
	return buildArchive(t,
		archiveEntry{name: dir + "/", typ: tar.TypeDir},
		archiveEntry{name: dir + "/metadata.json", body: fmt.Sprintf(`{"name": %q, "version": %q}`, name, version)},
		archiveEntry{name: dir + "/annotation.tiff", body: strings.Repeat("a", 256)},
	)
}

// fakeRepository serves last_versions.conf and atlas archives.
type fakeRepository struct {
	*httptest.Server
	mu           sync.Mutex
	versions     map[string]string
	archives     map[string][]byte
	listRequests atomic.Int32
	failArchives atomic.Int32
	down         atomic.Bool
}

func newFakeRepository(t *testing.T, versions map[string]string) *fakeRepository {
	t.Helper()

	repo := &fakeRepository{
		versions: versions,
		archives: make(map[string][]byte),
	}
	for name, v := range versions {
		repo.archives[name+"_v"+v+".tar.gz"] = atlasArchive(t, name, v)
	}

	repo.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if repo.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		repo.mu.Lock()
		defer repo.mu.Unlock()

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == lastVersionsFile {
			repo.listRequests.Add(1)
			_, _ = fmt.Fprintln(w, "[atlases]")
			for name, v := range repo.versions {
				_, _ = fmt.Fprintf(w, "%s = %s\n", name, v)
			}
			return
		}

		if repo.failArchives.Load() > 0 {
			repo.failArchives.Add(-1)
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		data, ok := repo.archives[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		_, _ = w.Write(data)
	}))
	t.Cleanup(repo.Close)

	return repo
}

// publish makes a new atlas version available.
func (r *fakeRepository) publish(t *testing.T, name, version string) {
	t.Helper()

	archive := atlasArchive(t, name, version)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[name] = version
	r.archives[name+"_v"+version+".tar.gz"] = archive
}

// archive returns the served archive bytes.
func (r *fakeRepository) archive(name string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.archives[name]
}
