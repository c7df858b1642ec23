// Package safety confines file writes made on behalf of tool calls to a data root.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the assistant as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool outputs small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// InitDataRoot resolves root to an absolute, symlink-free path. Empty means the working directory.
func InitDataRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(dataRoot): %w", err)
	}
	// Resolve symlinks where possible so boundary checks are reliable.
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateDataPath resolves relPath against absRoot and returns an absolute path
// inside the data root. It rejects absolute inputs, parent traversal, symlink
// escapes, the telemetry and VCS directories and SQLite database files.
func ValidateDataPath(absRoot, relPath string) (string, error) {
	if relPath == "" {
		return "", ToolError{Code: "ERR_EMPTY_PATH", Message: "path is empty"}
	}
	if filepath.IsAbs(relPath) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "absolute paths are not allowed"}
	}

	candidate := filepath.Join(absRoot, filepath.Clean(relPath))

	// Resolve the whole candidate if it exists, otherwise the parent so a
	// symlinked parent directory cannot smuggle a new file outside the root.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if resolvedParent, err2 := filepath.EvalSymlinks(filepath.Dir(candidate)); err2 == nil {
		candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_ROOT", Message: "requested path resolves outside the data root"}
	}

	relSlash := filepath.ToSlash(rel)
	for _, denied := range []string{".git", ".agent"} {
		if relSlash == denied || strings.HasPrefix(relSlash, denied+"/") {
			return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "writes under " + denied + "/ are not allowed"}
		}
	}
	switch strings.ToLower(filepath.Ext(relSlash)) {
	case ".db", ".sqlite", ".sqlite3":
		return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "database files cannot be used as answer sheets"}
	}

	return candidate, nil
}
