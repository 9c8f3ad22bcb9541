// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrInvalidPrefix = errors.New("scratch prefix contains path separator or null byte")
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ScratchDir creates a temporary directory named after prefix.
// The returned cleanup removes the directory and everything in it; removal
// errors are swallowed since they cannot affect the produced output.
func ScratchDir(prefix string) (dir string, cleanup func(), err error) {
	if strings.ContainsAny(prefix, "/\\\x00") {
		return "", nil, ErrInvalidPrefix
	}

	dir, err = os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// WriteFile writes data to path, creating missing parent directories.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil { // #nosec G306 -- artifacts are meant to be shared
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SiblingPath replaces the extension of path with suffix.
//
// Examples:
//   - ("/out/card.png", ".meta.json") -> "/out/card.meta.json"
//   - ("/out/report.pdf", ".html")    -> "/out/report.html"
//   - ("/out/noext", ".html")         -> "/out/noext.html"
func SiblingPath(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "card" -> false (name)
//   - "./pagepress.yaml" -> true (relative path)
//   - "/etc/pagepress.toml" -> true (absolute)
//   - "C:\config\pagepress.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like a remote URL.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
