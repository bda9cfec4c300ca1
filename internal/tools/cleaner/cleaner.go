// Package cleaner removes generated cache directories such as __pycache__
// from a project tree.
package cleaner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DefaultCacheDirectoryNames lists the cache directories removed when the
// caller does not name specific targets.
var DefaultCacheDirectoryNames = []string{
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
}

// Target describes one cache directory found during a scan.
type Target struct {
	// Path is the absolute path of the cache directory.
	Path string
	// SizeBytes is the total size of the directory's contents.
	SizeBytes int64
}

// Report summarizes a scan or removal pass.
type Report struct {
	// Targets are the cache directories found, sorted by path.
	Targets []Target
	// FreedBytes is the total size of all targets.
	FreedBytes int64
	// Removed indicates whether the targets were actually deleted.
	Removed bool
}

// Options controls a cleaning pass.
type Options struct {
	// Root is the directory to scan.
	Root string
	// DirectoryNames are the cache directory names to remove; empty means
	// DefaultCacheDirectoryNames.
	DirectoryNames []string
	// DryRun reports targets without deleting them.
	DryRun bool
}

// Clean scans Options.Root for cache directories and removes them unless
// DryRun is set. Matching directories are pruned from the walk so nested
// caches inside a removed cache are not reported twice.
func Clean(options Options) (Report, error) {
	directoryNames := options.DirectoryNames
	if len(directoryNames) == 0 {
		directoryNames = DefaultCacheDirectoryNames
	}
	nameSet := make(map[string]struct{}, len(directoryNames))
	for _, directoryName := range directoryNames {
		nameSet[directoryName] = struct{}{}
	}

	absoluteRoot, absoluteError := filepath.Abs(options.Root)
	if absoluteError != nil {
		return Report{}, fmt.Errorf("failed to resolve root %s: %w", options.Root, absoluteError)
	}

	var report Report
	walkError := filepath.WalkDir(absoluteRoot, func(path string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			// Unreadable subtrees are skipped rather than aborting the scan.
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if _, matches := nameSet[entry.Name()]; !matches {
			return nil
		}
		directorySize, sizeError := directorySizeBytes(path)
		if sizeError != nil {
			return sizeError
		}
		report.Targets = append(report.Targets, Target{Path: path, SizeBytes: directorySize})
		report.FreedBytes += directorySize
		return filepath.SkipDir
	})
	if walkError != nil {
		return Report{}, fmt.Errorf("failed to scan %s: %w", absoluteRoot, walkError)
	}

	sort.Slice(report.Targets, func(firstIndex, secondIndex int) bool {
		return report.Targets[firstIndex].Path < report.Targets[secondIndex].Path
	})

	if options.DryRun {
		return report, nil
	}

	for _, target := range report.Targets {
		if removeError := os.RemoveAll(target.Path); removeError != nil {
			return report, fmt.Errorf("failed to remove %s: %w", target.Path, removeError)
		}
	}
	report.Removed = true
	return report, nil
}

// directorySizeBytes sums the sizes of all regular files under path.
func directorySizeBytes(path string) (int64, error) {
	var totalBytes int64
	walkError := filepath.WalkDir(path, func(_ string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		fileInformation, informationError := entry.Info()
		if informationError != nil {
			return nil
		}
		totalBytes += fileInformation.Size()
		return nil
	})
	return totalBytes, walkError
}
