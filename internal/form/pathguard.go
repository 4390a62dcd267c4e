package form

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// pathGuard confines file access to the configured forms directory so MCP
// clients cannot read arbitrary paths
type pathGuard struct {
	root string
}

func newPathGuard(root string) (*pathGuard, error) {
	if root == "" {
		return nil, fmt.Errorf("forms directory cannot be empty")
	}
	return &pathGuard{root: root}, nil
}

// Root returns the configured forms directory
func (g *pathGuard) Root() string {
	return g.root
}

// CheckPath reports an error when path resolves outside the forms directory.
// A root that does not exist yet (placeholder paths) disables the check.
func (g *pathGuard) CheckPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(g.root); os.IsNotExist(err) {
		return nil
	}

	within, err := g.within(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside the forms directory: %s", path)
	}
	return nil
}

// CheckDirectory is CheckPath plus an is-a-directory check when the path
// exists
func (g *pathGuard) CheckDirectory(dir string) error {
	if err := g.CheckPath(dir); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}
	return nil
}

func (g *pathGuard) within(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absRoot, err := filepath.Abs(g.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve forms directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanRoot := filepath.Clean(absRoot)

	// Resolve symlinks on both sides; a symlinked file must not escape
	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}
	realRoot := cleanRoot
	if resolved, err := filepath.EvalSymlinks(cleanRoot); err == nil {
		realRoot = resolved
	}

	return (hasPrefixDir(cleanPath, cleanRoot) || hasPrefixDir(cleanPath, realRoot)) &&
		(hasPrefixDir(realPath, cleanRoot) || hasPrefixDir(realPath, realRoot)), nil
}

func hasPrefixDir(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
