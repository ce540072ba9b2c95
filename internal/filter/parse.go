package filter

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LoadFile reads an exclusion file: one basename per line, blank lines and
// lines starting with '#' ignored. Duplicates are logged and dropped.
func LoadFile(path string) (*Exclusions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclude list %s: %w", path, err)
	}
	defer f.Close()

	e := &Exclusions{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}
		if !e.Add(line) {
			slog.Warn("duplicate exclude entry ignored", "name", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read exclude list %s: %w", path, err)
	}
	return e, nil
}
