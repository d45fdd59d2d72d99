package docstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Files stores each document as <dir>/<name>.
//
// Writes overwrite the file in place. A crash mid-write can leave a
// truncated document behind.
type Files struct {
	dir string
}

// NewFiles returns a backend rooted at dir. The directory is created on
// first write.
func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

// Dir returns the root directory.
func (f *Files) Dir() string { return f.dir }

func (f *Files) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

func (f *Files) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", f.dir)
	}
	return os.WriteFile(filepath.Join(f.dir, name), data, 0o644)
}
