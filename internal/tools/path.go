package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesWorkspace is returned when a path resolves outside the workspace root.
var ErrEscapesWorkspace = errors.New("path escapes workspace root")

// PathGuard ensures operations stay within a base directory.
type PathGuard struct {
	BaseDir string
}

// NewPathGuard constructs a guard rooted at baseDir (defaults to current working directory).
// The base directory is canonicalized once, so it must exist.
func NewPathGuard(baseDir string) (*PathGuard, error) {
	if baseDir == "" {
		var err error
		baseDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	canonical, err := canonicalize(baseDir)
	if err != nil {
		return nil, fmt.Errorf("canonicalize root %s: %w", baseDir, err)
	}
	return &PathGuard{BaseDir: canonical}, nil
}

// Resolve returns the canonical absolute form of p. Relative paths are joined to
// BaseDir; symlinks and ".." segments are resolved before the containment check.
func (g *PathGuard) Resolve(p string) (string, error) {
	if p == "" {
		p = "."
	}
	candidate := p
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(g.BaseDir, candidate)
	}
	resolved, err := canonicalize(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", candidate, err)
	}
	if !g.contains(resolved) {
		return "", fmt.Errorf("%s (root %s): %w", resolved, g.BaseDir, ErrEscapesWorkspace)
	}
	return resolved, nil
}

// Rel renders an absolute path relative to BaseDir, falling back to the input.
func (g *PathGuard) Rel(abs string) string {
	rel, err := filepath.Rel(g.BaseDir, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (g *PathGuard) contains(abs string) bool {
	rel, err := filepath.Rel(g.BaseDir, abs)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
