package files

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "engcli/internal/errors"
)

// Bundle is a read-only set of log files backed by a zip archive or a
// directory
type Bundle struct {
	path    string
	archive *zip.ReadCloser
	entries map[string]*zip.File
	files   []FileInfo
	skipped []string
}

// OpenBundle opens the logs at path. A directory is listed in place; any
// other file is read as a zip archive.
func OpenBundle(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("log bundle %s", path))
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}

	if info.IsDir() {
		logs, skipped, err := FindLogFiles(path)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to list log directory", err)
		}
		return &Bundle{path: path, files: logs, skipped: skipped}, nil
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open zip archive %s", path), err)
	}

	b := &Bundle{path: path, archive: archive, entries: make(map[string]*zip.File)}
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		serial, err := ExtractSerial(f.Name)
		if err != nil {
			b.skipped = append(b.skipped, f.Name)
			continue
		}
		b.entries[f.Name] = f
		b.files = append(b.files, FileInfo{
			Name:    f.Name,
			Serial:  serial,
			Size:    int64(f.UncompressedSize64),
			ModTime: f.Modified,
		})
	}
	sortFiles(b.files)
	sort.Strings(b.skipped)
	return b, nil
}

// Path returns the bundle location
func (b *Bundle) Path() string {
	return b.path
}

// Files returns the log files that carry a serial, sorted by name
func (b *Bundle) Files() []FileInfo {
	return b.files
}

// Skipped returns the names of files without a serial
func (b *Bundle) Skipped() []string {
	return b.skipped
}

// Open opens one log file of the bundle
func (b *Bundle) Open(f FileInfo) (io.ReadCloser, error) {
	if b.archive == nil {
		if strings.Contains(f.Name, "..") {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid log name %q", f.Name), nil)
		}
		file, err := os.Open(filepath.Join(b.path, f.Name))
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", f.Name), err)
		}
		return file, nil
	}

	entry, ok := b.entries[f.Name]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s in %s", f.Name, b.path))
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s in %s", f.Name, b.path), err)
	}
	return rc, nil
}

// Close releases the archive, if any
func (b *Bundle) Close() error {
	if b.archive == nil {
		return nil
	}
	return b.archive.Close()
}
