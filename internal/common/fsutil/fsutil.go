package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/data/wmt16
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ReadLines reads newline-separated sentences from path, or from stdin when
// path is "-" or empty. Trailing '\r' is stripped; empty lines are kept so
// line numbers stay aligned with the source file.
func ReadLines(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "" && path != "-" {
		p, err := ExpandHome(path)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
