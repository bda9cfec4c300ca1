package cleaner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devkit-tools/devkit/internal/tools/cleaner"
)

// writeCacheFile creates a file of the given size inside a cache directory.
func writeCacheFile(testingHandle *testing.T, path string, size int) {
	testingHandle.Helper()
	if makeError := os.MkdirAll(filepath.Dir(path), 0o755); makeError != nil {
		testingHandle.Fatalf("mkdir: %v", makeError)
	}
	if writeError := os.WriteFile(path, make([]byte, size), 0o644); writeError != nil {
		testingHandle.Fatalf("write: %v", writeError)
	}
}

// TestCleanDryRunReportsWithoutDeleting verifies a dry run lists targets and
// sizes but leaves the tree untouched.
func TestCleanDryRunReportsWithoutDeleting(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	cacheDirectory := filepath.Join(rootDirectory, "pkg", "__pycache__")
	writeCacheFile(testingHandle, filepath.Join(cacheDirectory, "module.pyc"), 100)
	writeCacheFile(testingHandle, filepath.Join(rootDirectory, ".pytest_cache", "entry"), 50)

	report, cleanError := cleaner.Clean(cleaner.Options{Root: rootDirectory, DryRun: true})
	if cleanError != nil {
		testingHandle.Fatalf("Clean error: %v", cleanError)
	}
	if len(report.Targets) != 2 {
		testingHandle.Fatalf("expected 2 targets, got %d", len(report.Targets))
	}
	if report.FreedBytes != 150 {
		testingHandle.Fatalf("expected 150 freed bytes, got %d", report.FreedBytes)
	}
	if report.Removed {
		testingHandle.Fatalf("dry run must not mark targets removed")
	}
	if _, statError := os.Stat(cacheDirectory); statError != nil {
		testingHandle.Fatalf("dry run deleted the cache directory: %v", statError)
	}
}

// TestCleanRemovesDefaultCaches verifies removal deletes every default cache
// directory and nothing else.
func TestCleanRemovesDefaultCaches(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	cacheDirectory := filepath.Join(rootDirectory, "__pycache__")
	writeCacheFile(testingHandle, filepath.Join(cacheDirectory, "a.pyc"), 10)
	keptFile := filepath.Join(rootDirectory, "main.py")
	writeCacheFile(testingHandle, keptFile, 10)

	report, cleanError := cleaner.Clean(cleaner.Options{Root: rootDirectory})
	if cleanError != nil {
		testingHandle.Fatalf("Clean error: %v", cleanError)
	}
	if !report.Removed || len(report.Targets) != 1 {
		testingHandle.Fatalf("unexpected report: %+v", report)
	}
	if _, statError := os.Stat(cacheDirectory); !os.IsNotExist(statError) {
		testingHandle.Fatalf("cache directory still present")
	}
	if _, statError := os.Stat(keptFile); statError != nil {
		testingHandle.Fatalf("unrelated file removed: %v", statError)
	}
}

// TestCleanCustomDirectoryNames verifies custom names replace the defaults.
func TestCleanCustomDirectoryNames(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	customCache := filepath.Join(rootDirectory, ".custom_cache")
	defaultCache := filepath.Join(rootDirectory, "__pycache__")
	writeCacheFile(testingHandle, filepath.Join(customCache, "x"), 5)
	writeCacheFile(testingHandle, filepath.Join(defaultCache, "y"), 5)

	report, cleanError := cleaner.Clean(cleaner.Options{
		Root:           rootDirectory,
		DirectoryNames: []string{".custom_cache"},
	})
	if cleanError != nil {
		testingHandle.Fatalf("Clean error: %v", cleanError)
	}
	if len(report.Targets) != 1 || report.Targets[0].Path != customCache {
		testingHandle.Fatalf("expected only custom cache targeted: %+v", report.Targets)
	}
	if _, statError := os.Stat(defaultCache); statError != nil {
		testingHandle.Fatalf("default cache must be untouched: %v", statError)
	}
}
