package backup

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizePrefix turns a user supplied blob directory into an object name prefix:
// it always ends with "/" and never starts with one. The container root is "".
func NormalizePrefix(dir string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	return strings.TrimLeft(dir, "/")
}

// RemoteName maps a file below sourceDir to its object name under prefix.
// prefix is expected to be normalized already.
func RemoteName(sourceDir, filePath, prefix string) (string, error) {
	rel, err := filepath.Rel(sourceDir, filePath)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", filePath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not below %s", filePath, sourceDir)
	}

	return prefix + strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/"), nil
}
