// Package files resolves station identities to their backing workbook files.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "pqlens/internal/errors"
	"pqlens/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Locator maps each station to its fixed workbook location and answers
// availability queries without opening the file.
type Locator struct {
	workbooks map[domain.Station]string
}

// NewLocator creates a locator from the fixed station-to-path mapping.
func NewLocator(workbooks map[domain.Station]string) *Locator {
	return &Locator{workbooks: workbooks}
}

// WorkbookPath returns the backing workbook path for a station. It fails
// with a SOURCE_NOT_FOUND error when the file does not exist, so a load can
// never start against a missing source.
func (l *Locator) WorkbookPath(station domain.Station) (string, error) {
	path, ok := l.workbooks[station]
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("station %q", station))
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewSourceNotFoundError(
				fmt.Sprintf("workbook for station %q does not exist: %s", station, path), err)
		}
		return "", apperrors.NewSourceNotFoundError(
			fmt.Sprintf("workbook for station %q is not accessible: %s", station, path), err)
	}

	return path, nil
}

// Available reports whether the station's workbook currently exists.
func (l *Locator) Available(station domain.Station) bool {
	path, ok := l.workbooks[station]
	if !ok {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Workbook returns the configured (unresolved) workbook path for a station.
func (l *Locator) Workbook(station domain.Station) string {
	return l.workbooks[station]
}

// FindExcelFiles lists the Excel files in a directory, oldest first. Used at
// startup to log what exports are present next to the configured workbooks.
func FindExcelFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}
