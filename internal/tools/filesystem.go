package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrRangeOutOfBounds is returned when a requested line range does not overlap the file.
var ErrRangeOutOfBounds = errors.New("requested range is outside the file")

// Entry kinds reported by ListDir.
const (
	KindFile      = "file"
	KindDirectory = "directory"
	KindSymlink   = "symlink"
	KindOther     = "other"
)

// Filesystem provides read-only file operations rooted at a base directory.
type Filesystem struct {
	guard *PathGuard
}

// NewFilesystem builds a filesystem tool rooted at baseDir.
func NewFilesystem(baseDir string) (*Filesystem, error) {
	guard, err := NewPathGuard(baseDir)
	if err != nil {
		return nil, err
	}
	return &Filesystem{guard: guard}, nil
}

// Root returns the canonical workspace root.
func (f *Filesystem) Root() string {
	return f.guard.BaseDir
}

// Resolve exposes the sandbox resolution used by every operation.
func (f *Filesystem) Resolve(path string) (string, error) {
	return f.guard.Resolve(path)
}

// DirEntry is a simplified view of a directory entry.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"`
	Size *int64 `json:"size"`
}

// ListDir lists the immediate entries of a directory, sorted by name.
func (f *Filesystem) ListDir(path string) ([]DirEntry, error) {
	resolved, err := f.guard.Resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, err
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		entry := DirEntry{
			Name: e.Name(),
			Path: f.guard.Rel(filepath.Join(resolved, e.Name())),
			Kind: entryKind(e.Type()),
		}
		if info, err := e.Info(); err == nil {
			size := info.Size()
			entry.Size = &size
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func entryKind(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// FileContent is a whole-file read.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ReadFile returns file contents decoded as UTF-8, replacing invalid sequences.
func (f *Filesystem) ReadFile(path string) (FileContent, error) {
	resolved, err := f.guard.Resolve(path)
	if err != nil {
		return FileContent{}, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return FileContent{}, err
	}
	return FileContent{
		Path:    f.guard.Rel(resolved),
		Content: lossyString(data),
	}, nil
}

// FileRange is an inclusive slice of a file's lines.
type FileRange struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// ReadRange reads lines [startLine, endLine] (1-based, inclusive). The returned
// bounds are the lines actually covered, which may be shorter than requested
// when the file ends early.
func (f *Filesystem) ReadRange(path string, startLine, endLine int) (FileRange, error) {
	if startLine < 1 {
		return FileRange{}, fmt.Errorf("start_line must be >= 1")
	}
	if endLine < startLine {
		return FileRange{}, fmt.Errorf("end_line must be >= start_line")
	}
	resolved, err := f.guard.Resolve(path)
	if err != nil {
		return FileRange{}, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return FileRange{}, err
	}

	lines := splitLines(lossyString(data))
	if startLine > len(lines) {
		return FileRange{}, fmt.Errorf("lines %d-%d of %s: %w", startLine, endLine, f.guard.Rel(resolved), ErrRangeOutOfBounds)
	}
	last := endLine
	if last > len(lines) {
		last = len(lines)
	}
	return FileRange{
		Path:      f.guard.Rel(resolved),
		StartLine: startLine,
		EndLine:   last,
		Content:   strings.Join(lines[startLine-1:last], "\n"),
	}, nil
}

// SearchResult represents a single pattern match.
type SearchResult struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

// Search walks root recursively and reports every line matching the regular
// expression. Symlinks are not followed and files containing NUL bytes are
// treated as binary and skipped.
func (f *Filesystem) Search(root string, pattern string) ([]SearchResult, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	resolved, err := f.guard.Resolve(root)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() && path != resolved {
				return filepath.SkipDir
			}
			if path == resolved {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.guard.Rel(path), err)
		}
		if bytes.IndexByte(data, 0) >= 0 {
			return nil
		}
		rel := f.guard.Rel(path)
		for idx, line := range splitLines(lossyString(data)) {
			if re.MatchString(line) {
				results = append(results, SearchResult{Path: rel, LineNumber: idx + 1, Line: line})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func lossyString(data []byte) string {
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

// splitLines splits on '\n', trims a trailing '\r' per line and drops the
// empty element produced by a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
