//go:build !windows

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireLock_Success(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "picker.lock")

	fd, err := acquireLock(lockPath)
	if err != nil {
		t.Fatalf("acquireLock failed: %v", err)
	}
	defer releaseLock(fd)

	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Fatal("lock file was not created")
	}
}

func TestAcquireLock_SecondInstanceFails(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "picker.lock")

	fd1, err := acquireLock(lockPath)
	if err != nil {
		t.Fatalf("first acquireLock failed: %v", err)
	}

	// flock locks belong to the open file description, so a second open in
	// the same process still conflicts.
	fd2, err := acquireLock(lockPath)
	if err == nil {
		releaseLock(fd2)
		releaseLock(fd1)
		t.Fatal("expected second acquireLock to fail, but it succeeded")
	}

	releaseLock(fd1)

	fd3, err := acquireLock(lockPath)
	if err != nil {
		t.Fatalf("third acquireLock (after release) failed: %v", err)
	}
	releaseLock(fd3)
}

func TestAcquireLock_MissingDirectory(t *testing.T) {
	if _, err := acquireLock(filepath.Join(t.TempDir(), "nope", "picker.lock")); err == nil {
		t.Fatal("expected error for missing lock directory")
	}
}

func TestReleaseLock_InvalidFd(t *testing.T) {
	// Releasing with -1 should not panic.
	releaseLock(-1)
}

func TestCheckTERM(t *testing.T) {
	t.Setenv("TERM", "dumb")
	if err := checkTERM(); err == nil {
		t.Error("checkTERM should reject TERM=dumb")
	}

	t.Setenv("TERM", "xterm-256color")
	if err := checkTERM(); err != nil {
		t.Errorf("checkTERM() = %v, want nil", err)
	}
}
