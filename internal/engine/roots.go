package engine

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LoadRoots reads the filesystem-roots file: one absolute path per line,
// blank lines and lines starting with '#' ignored. Duplicates and
// non-absolute paths are logged and dropped.
func LoadRoots(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roots list %s: %w", path, err)
	}
	defer f.Close()

	var roots []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}
		if !filepath.IsAbs(line) {
			slog.Warn("ignoring non-absolute root", "path", line)
			continue
		}
		if slices.Contains(roots, line) {
			slog.Warn("duplicate root ignored", "path", line)
			continue
		}
		roots = append(roots, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roots list %s: %w", path, err)
	}
	return roots, nil
}
