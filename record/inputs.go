package record

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandInputs resolves an input argument to the list of files to read. A
// plain path is returned as-is; a pattern containing glob metacharacters is
// matched with ** support and the regular-file matches are returned sorted.
func ExpandInputs(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input is a directory: %s", pattern)
		}
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Clean(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, match)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	sort.Strings(files)
	return files, nil
}
