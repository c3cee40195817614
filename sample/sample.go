// Package sample finds the HTML samples in a directory and pulls out the little bit of metadata
// the generated pages need: name, modification time, size, title and description.
//
// Nothing is cached. Every call to Discover stats and reads the directory from scratch.
package sample

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Ext is the extension a file must have to count as a sample.
const Ext = ".html"

// ErrDirNotFound is returned by Discover when the samples directory does not exist.
var ErrDirNotFound = errors.New("samples directory not found")

// ErrMalformed marks a sample whose content is not valid UTF-8.
var ErrMalformed = errors.New("sample is not valid utf-8")

// File is one sample on disk.
type File struct {
	Name        string    // base name; unique within the directory.
	ModifiedAt  time.Time // all recency ordering comes from here.
	SizeBytes   int64
	Title       string
	Description string

	// Err is the read or extraction error, if any. Title and Description hold placeholders when it is set.
	Err error
}

// Discover returns every *.html file directly inside dir (no recursion), most recently modified first.
// A file that can't be stat'd is skipped; a file that can't be read or decoded keeps placeholder metadata.
// Both are logged to logger and never abort the scan.
func Discover(dir string, logger *zap.Logger) ([]File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
	} else if err != nil {
		return nil, fmt.Errorf("reading samples directory %s: %w", dir, err)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			logger.Warn("stat sample: skipping", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		f := File{Name: e.Name(), ModifiedAt: info.ModTime(), SizeBytes: info.Size()}
		if err := f.load(filepath.Join(dir, e.Name())); err != nil {
			logger.Warn("read sample: using placeholder metadata", zap.String("file", f.Name), zap.Error(err))
			f.Title, f.Description, f.Err = PlaceholderTitle, PlaceholderDescription, err
		}
		files = append(files, f)
	}
	SortByRecency(files)
	logger.Debug("discovered samples", zap.String("dir", dir), zap.Int("count", len(files)))
	return files, nil
}

func (f *File) load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !utf8.Valid(b) {
		return ErrMalformed
	}
	f.Title, f.Description = Extract(string(b))
	return nil
}

// SortByRecency sorts files by modification time, newest first. Ties are broken by name so the order is stable across runs.
func SortByRecency(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModifiedAt.Equal(files[j].ModifiedAt) {
			return files[i].ModifiedAt.After(files[j].ModifiedAt)
		}
		return files[i].Name < files[j].Name
	})
}

// Recent returns at most n files from the front of a recency-sorted slice.
func Recent(files []File, n int) []File {
	if n < 0 || len(files) <= n {
		return files
	}
	return files[:n]
}

// Newest returns the most recently modified file, or false if there are none.
// files need not be sorted.
func Newest(files []File) (File, bool) {
	if len(files) == 0 {
		return File{}, false
	}
	newest := files[0]
	for _, f := range files[1:] {
		if f.ModifiedAt.After(newest.ModifiedAt) || (f.ModifiedAt.Equal(newest.ModifiedAt) && f.Name < newest.Name) {
			newest = f
		}
	}
	return newest, true
}
