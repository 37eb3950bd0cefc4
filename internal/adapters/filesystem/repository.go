package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"railio/internal/application"
	"railio/internal/ports"
)

// Repository implements ports.SourceRepository using the filesystem
type Repository struct {
	root string
}

var _ ports.SourceRepository = (*Repository)(nil)

// railML file extensions picked up by List
var sourceExtensions = map[string]bool{
	".xml":    true,
	".railml": true,
}

// NewRepository creates a repository resolving relative paths against root
func NewRepository(root string) *Repository {
	return &Repository{root: expandHome(root)}
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return path
}

func (r *Repository) resolve(path string) string {
	path = expandHome(path)
	if filepath.IsAbs(path) || r.root == "" {
		return path
	}
	return filepath.Join(r.root, path)
}

// Read returns the content of a source file
func (r *Repository) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(r.resolve(path))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", application.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write stores data through a temporary file renamed into place
func (r *Repository) Write(path string, data []byte) error {
	full := r.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// List walks dir and returns its railML files sorted, skipping hidden directories
func (r *Repository) List(dir string) ([]string, error) {
	root := r.resolve(dir)
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", application.ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Skip hidden directories
		if d.IsDir() && path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && sourceExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
