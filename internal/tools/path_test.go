package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPathGuardRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	fsTool, err := NewFilesystem(dir)
	requireNoError(t, err)

	if _, err := fsTool.ReadFile("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal error")
	}
	if _, err := fsTool.Resolve(".."); !errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestPathGuardRejectsAbsoluteOutside(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	guard, err := NewPathGuard(dir)
	requireNoError(t, err)

	if _, err := guard.Resolve(outside); !errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestPathGuardRejectsSymlinkEscape(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.txt", "top secret")
	if err := os.Symlink(outside, filepath.Join(dir, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	fsTool, err := NewFilesystem(dir)
	requireNoError(t, err)

	if _, err := fsTool.ReadFile("escape/secret.txt"); !errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected escape error, got %v", err)
	}
	if _, err := fsTool.ListDir("escape"); !errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestPathGuardAllowsInsideRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/b.txt", "x")
	guard, err := NewPathGuard(dir)
	requireNoError(t, err)

	got, err := guard.Resolve("a/../a/b.txt")
	requireNoError(t, err)
	if guard.Rel(got) != "a/b.txt" {
		t.Fatalf("unexpected rel %q", guard.Rel(got))
	}

	abs, err := guard.Resolve(filepath.Join(guard.BaseDir, "a"))
	requireNoError(t, err)
	if guard.Rel(abs) != "a" {
		t.Fatalf("unexpected rel %q", guard.Rel(abs))
	}

	root, err := guard.Resolve("")
	requireNoError(t, err)
	if root != guard.BaseDir {
		t.Fatalf("expected root, got %q", root)
	}
}

func TestPathGuardSiblingPrefixIsOutside(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "work")
	sibling := filepath.Join(parent, "workspace-other")
	requireNoError(t, os.Mkdir(root, 0o755))
	requireNoError(t, os.Mkdir(sibling, 0o755))

	guard, err := NewPathGuard(root)
	requireNoError(t, err)
	if _, err := guard.Resolve(sibling); !errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected sibling to be rejected, got %v", err)
	}
}

func TestPathGuardMissingPath(t *testing.T) {
	guard, err := NewPathGuard(t.TempDir())
	requireNoError(t, err)
	if _, err := guard.Resolve("missing.txt"); err == nil || errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPathGuardWhitespaceIsNotRoot(t *testing.T) {
	guard, err := NewPathGuard(t.TempDir())
	requireNoError(t, err)
	if _, err := guard.Resolve("  "); err == nil || errors.Is(err, ErrEscapesWorkspace) {
		t.Fatalf("expected not-found error for whitespace path, got %v", err)
	}

	fsTool, err := NewFilesystem(guard.BaseDir)
	requireNoError(t, err)
	if _, err := fsTool.ListDir(" "); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing path, got %v", err)
	}
}
