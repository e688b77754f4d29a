package fsutil

import (
	"fmt"
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
	// handle cases like ~/.config/authd/config.yaml
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// FirstExisting expands each candidate and returns the first regular file
// that exists. ok is false when none does.
func FirstExisting(candidates ...string) (path string, ok bool) {
	for _, c := range candidates {
		p, err := ExpandHome(c)
		if err != nil || p == "" {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
