package atlas

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LSeu-Open/bg-atlasapi/internal/xfs"
	"github.com/spf13/afero"
)

// Extract unpacks a .tar.gz stream into destDir on fsys.
// Entries resolving outside destDir are rejected; links and special files are skipped.
func Extract(fsys afero.Fs, r io.Reader, destDir string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: create gzip reader: %v", ErrExtractionFailed, err)
	}
	defer func() { _ = gzr.Close() }()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read tar: %v", ErrExtractionFailed, err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(header.Name))
		if !xfs.IsWithin(destDir, target) {
			return fmt.Errorf("%w: entry %q escapes %s", ErrExtractionFailed, header.Name, destDir)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}

		case tar.TypeReg:
			if err := writeFile(fsys, target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}

		default:
			slog.Debug("Skipping unsupported archive entry", "name", header.Name, "type", string(header.Typeflag))
		}
	}
}

func writeFile(fsys afero.Fs, path string, r io.Reader, perm os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	//nolint:gosec // G110: archives come from the configured atlas repository
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
