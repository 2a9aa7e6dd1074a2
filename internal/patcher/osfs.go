package patcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OSFileSystem is the default FileSystem, backed by the os package. Missing
// files surface as errors satisfying errors.Is(err, fs.ErrNotExist), which
// is what ApplyToFile relies on to treat them as empty content.
type OSFileSystem struct{}

func (OSFileSystem) ReadTextFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (OSFileSystem) WriteTextFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func (OSFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o777)
}

func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// DirConfig is a Config rooted at a single absolute directory. Containment
// is decided lexically: a path is inside the workspace iff its relative form
// does not escape the root.
type DirConfig struct {
	root string
}

// NewDirConfig returns a DirConfig rooted at root, which must be absolute.
func NewDirConfig(root string) (*DirConfig, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("workspace root must be absolute: %q", root)
	}
	return &DirConfig{root: filepath.Clean(root)}, nil
}

func (c *DirConfig) TargetDir() string { return c.root }

func (c *DirConfig) IsPathWithinWorkspace(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
