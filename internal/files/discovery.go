package files

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// ErrNoSerial is returned for file names that do not end in a serial
var ErrNoSerial = errors.New("no serial in file name")

var serialPattern = regexp.MustCompile(`(?i)([A-Z0-9]{8})\.csv$`)

// FileInfo represents one log file of a bundle
type FileInfo struct {
	// Name is the path of the file inside the bundle, slash separated
	Name    string
	Serial  string
	Size    int64
	ModTime time.Time
}

// ExtractSerial returns the serial encoded at the end of a log file name
func ExtractSerial(name string) (string, error) {
	m := serialPattern.FindStringSubmatch(path.Base(filepath.ToSlash(name)))
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrNoSerial, name)
	}
	return m[1], nil
}

// FindLogFiles lists the regular files of dir, non-recursively. Files with
// a serial are returned sorted by name; the names of the others are
// returned as skipped.
func FindLogFiles(dir string) (logs []FileInfo, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		serial, err := ExtractSerial(name)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, FileInfo{
			Name:    name,
			Serial:  serial,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortFiles(logs)
	sort.Strings(skipped)
	return logs, skipped, nil
}

func sortFiles(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
