package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}

// PathUtil joins dir and fileName, creating dir if needed. fileName must be a
// single path element so the result stays directly inside dir.
func PathUtil(dir string, fileName string) (string, error) {
	if fileName == "" || fileName == "." || fileName == ".." || strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("invalid file name %q: must be a single path element", fileName)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	return filepath.Join(dir, fileName), nil
}

// SplitName returns the base name of path without its extension, and the
// extension as written (dot included, case preserved). A leading dot belongs
// to the name, so ".png" has no extension.
func SplitName(path string) (string, string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if strings.Trim(name, ".") == "" {
		return base, ""
	}
	return name, ext
}
