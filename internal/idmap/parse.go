package idmap

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ParseFile reads a mapping-list file. Each line is either empty, a comment
// starting with '#', or `u:<old> <new>` / `g:<old> <new>` with the tag
// recognized case-insensitively and ids separated by spaces, tabs or commas.
// Malformed lines and duplicate old ids are logged and skipped.
func ParseFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping list %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads mapping lines from r. See ParseFile for the grammar.
func Parse(r io.Reader) *Tables {
	tables := &Tables{}
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		tag, old, newID, ok := splitMapping(line)
		if !ok {
			slog.Warn("mangled mapping line skipped", "line", lineno, "text", line)
			continue
		}

		switch {
		case strings.EqualFold(tag, "u"):
			if !tables.UID.Add(old, newID) {
				slog.Warn("duplicate old uid, keeping first occurrence", "line", lineno, "uid", old)
			}
		case strings.EqualFold(tag, "g"):
			if !tables.GID.Add(old, newID) {
				slog.Warn("duplicate old gid, keeping first occurrence", "line", lineno, "gid", old)
			}
		default:
			slog.Warn("mangled mapping line skipped", "line", lineno, "text", line)
		}
	}
	return tables
}

// splitMapping breaks `<tag>:<old><sep><new>` into its parts. Separators are
// any run of spaces, tabs or commas.
func splitMapping(line string) (tag string, old, newID uint32, ok bool) {
	tag, rest, found := strings.Cut(line, ":")
	if !found {
		return "", 0, 0, false
	}
	fields := strings.FieldsFunc(rest, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) != 2 {
		return "", 0, 0, false
	}
	o, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return "", 0, 0, false
	}
	n, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return "", 0, 0, false
	}
	return strings.TrimSpace(tag), uint32(o), uint32(n), true
}
