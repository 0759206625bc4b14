// Package locate finds the sales spreadsheet to build a dashboard from.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ErrNoInput is returned when a directory holds no candidate spreadsheet.
var ErrNoInput = errors.New("no data file found")

// DefaultExtensions are the spreadsheet extensions excelize can open.
var DefaultExtensions = []string{".xlsx", ".xlsm"}

// DefaultLockPrefix marks the lock files Office leaves next to open documents.
const DefaultLockPrefix = "~$"

// Options configures candidate filtering.
type Options struct {
	Extensions []string // empty = DefaultExtensions
	LockPrefix string   // empty = DefaultLockPrefix
	Exclude    []string // base names never considered, e.g. the report output
}

// FileInfo describes a candidate spreadsheet.
type FileInfo struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Candidates lists the spreadsheets in dir (non-recursive) that pass the
// filter, in directory listing order (sorted by file name).
func Candidates(dir string, opts Options) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !opts.Match(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // vanished between listing and stat
		}
		files = append(files, FileInfo{
			Path:       filepath.Join(dir, e.Name()),
			Name:       e.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return files, nil
}

// Resolve returns the first candidate in dir, or ErrNoInput.
func Resolve(dir string, opts Options) (string, error) {
	files, err := Candidates(dir, opts)
	if err != nil {
		return "", err
	}
	first, ok := lo.First(files)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoInput, dir)
	}
	return first.Path, nil
}

// Match reports whether a file name is a candidate input.
func (o Options) Match(name string) bool {
	base := filepath.Base(name)

	prefix := o.LockPrefix
	if prefix == "" {
		prefix = DefaultLockPrefix
	}
	if strings.HasPrefix(base, prefix) {
		return false
	}

	if lo.ContainsBy(o.Exclude, func(ex string) bool { return filepath.Base(ex) == base }) {
		return false
	}

	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(base))
	return lo.ContainsBy(exts, func(e string) bool { return normalizeExt(e) == ext })
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// FormatSize returns a human-readable file size.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
