// Package fsops performs file I/O inside the data root validated by safety.
package fsops

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/petasbytes/support-bot/internal/safety"
)

// Root is an opened data root. All paths passed to its methods are relative to it.
type Root struct {
	abs string
}

// OpenRoot resolves dir (empty means the working directory) and creates it if needed.
func OpenRoot(dir string) (*Root, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	abs, err := safety.InitDataRoot(dir)
	if err != nil {
		return nil, err
	}
	return &Root{abs: abs}, nil
}

// Path returns the absolute root directory.
func (r *Root) Path() string { return r.abs }

// Exists reports whether relPath names an existing regular file.
func (r *Root) Exists(relPath string) (bool, error) {
	absPath, err := safety.ValidateDataPath(r.abs, relPath)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if fi.IsDir() {
		return false, safety.ToolError{Code: "ERR_NOT_A_FILE", Message: "path is a directory"}
	}
	return true, nil
}

// ReadFile reads a file under the root.
func (r *Root) ReadFile(relPath string) ([]byte, error) {
	absPath, err := safety.ValidateDataPath(r.abs, relPath)
	if err != nil {
		return nil, err // propagate ToolError unchanged
	}
	return os.ReadFile(absPath)
}

// AppendFile appends b to relPath, creating parent directories and the file as needed.
func (r *Root) AppendFile(relPath string, b []byte) error {
	absPath, err := safety.ValidateDataPath(r.abs, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(absPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
