package geotable

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultSnapshotPath is a well-known location of the binary snapshot,
	// relative to a working directory.
	DefaultSnapshotPath = "data.snapshot"

	// DefaultSourcePath is a default location of the text source.
	DefaultSourcePath = "data.csv"

	// FsTempFilePrefix is a prefix of temporary files created during
	// snapshot writing. Such files are renamed into a target name after
	// everything is flushed so readers never see half-written snapshots.
	FsTempFilePrefix = ".tmp_snapshot_"
)

type gzipSource struct {
	*gzip.Reader

	file afero.File
}

func (g gzipSource) Close() error {
	g.Reader.Close()

	return g.file.Close()
}

// openSource opens a text source. Files with .gz extension are
// decompressed on the fly.
func openSource(fs afero.Fs, path string) (io.ReadCloser, error) {
	fp, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open a file: %w", err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		return fp, nil
	}

	gzipReader, err := gzip.NewReader(bufio.NewReader(fp))
	if err != nil {
		fp.Close()

		return nil, fmt.Errorf("incorrect gzip archive: %w", err)
	}

	return gzipSource{Reader: gzipReader, file: fp}, nil
}

func sourceFingerprint(fs afero.Fs, path string) (SourceFingerprint, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return SourceFingerprint{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}

	return SourceFingerprint{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

func writeFileAtomic(fs afero.Fs, path string, callback func(io.Writer) error) error {
	dir := filepath.Dir(path)

	if err := fs.MkdirAll(dir, 0777); err != nil {
		return fmt.Errorf("cannot create a directory %s: %w", dir, err)
	}

	tmpFile, err := afero.TempFile(fs, dir, FsTempFilePrefix)
	if err != nil {
		return fmt.Errorf("cannot create a temporary file: %w", err)
	}

	tmpName := tmpFile.Name()

	defer fs.Remove(tmpName) // nolint: errcheck

	buffered := bufio.NewWriter(tmpFile)

	if err := callback(buffered); err != nil {
		tmpFile.Close()

		return err
	}

	if err := buffered.Flush(); err != nil {
		tmpFile.Close()

		return fmt.Errorf("cannot flush a temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("cannot close a temporary file: %w", err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("cannot rename %s to %s: %w", tmpName, path, err)
	}

	return nil
}
