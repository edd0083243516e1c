package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists the regular files directly inside dir whose name ends
// with ext, compared case-insensitively, sorted by name.
//
// A missing dir is created and reported with created set to true and no
// files. The error is non-nil only when dir cannot be read or created.
func Discover(dir, ext string) (files []string, created bool, err error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ext = strings.ToLower(ext)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(dir, dirPerm); mkErr != nil {
			return nil, false, fmt.Errorf("create input directory %s: %w", dir, mkErr)
		}
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !e.Type().IsRegular() && e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, false, nil
}

// PrepareOutput creates the output directory if it does not exist.
func PrepareOutput(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}

// TargetPath returns where the optimized copy of name is written.
func TargetPath(outputDir, name string) string {
	return filepath.Join(outputDir, name)
}
