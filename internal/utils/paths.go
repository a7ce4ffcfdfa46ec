package utils

import (
	"os"
	"path/filepath"
)

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir
func GetAbsolutePath(path, baseDir string) string {
	// Check if the path is already absolute
	if filepath.IsAbs(path) {
		return path
	}

	// Join the relative path with the base directory
	absolutePath := filepath.Join(baseDir, path)

	// Clean the resulting path
	absolutePath = filepath.Clean(absolutePath)

	return absolutePath
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
