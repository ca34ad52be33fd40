// Package filex provides small filesystem helpers shared by components that
// keep state on disk (the asset cache stores, the local database directory).
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubdDir creates (if needed) a subdirectory of the current working
// directory and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return EnsureDir(cwd, dirName)
}

// EnsureDir creates (if needed) dirName under base and returns the joined
// path. Fails if a regular file occupies the target path.
func EnsureDir(base, dirName string) (string, error) {
	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
