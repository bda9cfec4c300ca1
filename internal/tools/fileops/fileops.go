// Package fileops implements the basic file manipulation tools: listing,
// copying, moving, removing, inspecting, and creating files from templates.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one directory entry in a listing.
type Entry struct {
	// Name is the base name of the entry.
	Name string
	// IsDirectory reports whether the entry is a directory.
	IsDirectory bool
	// SizeBytes is the file size; zero for directories.
	SizeBytes int64
	// ModifiedAt is the entry's modification time.
	ModifiedAt time.Time
}

// Info describes a single file or directory for the info tool.
type Info struct {
	// Path is the absolute path of the inspected entry.
	Path string
	// Name is the base name.
	Name string
	// IsDirectory reports whether the entry is a directory.
	IsDirectory bool
	// SizeBytes is the file size; for directories the recursive content size.
	SizeBytes int64
	// Mode is the permission string, for example "-rw-r--r--".
	Mode string
	// ModifiedAt is the entry's modification time.
	ModifiedAt time.Time
}

// fileTemplatesByExtension maps extensions to starter content for New.
var fileTemplatesByExtension = map[string]string{
	".py":   "#!/usr/bin/env python3\n\"\"\"Module docstring.\"\"\"\n\n\ndef main():\n    pass\n\n\nif __name__ == \"__main__\":\n    main()\n",
	".html": "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <meta charset=\"UTF-8\">\n    <title>Document</title>\n</head>\n<body>\n\n</body>\n</html>\n",
	".js":   "\"use strict\";\n",
	".md":   "# Title\n\n",
	".json": "{}\n",
}

// List returns the entries of directoryPath sorted directories first, then
// by name. When includeHidden is false, dot-prefixed entries are skipped.
func List(directoryPath string, includeHidden bool) ([]Entry, error) {
	directoryEntries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		return nil, fmt.Errorf("failed to list %s: %w", directoryPath, readError)
	}

	entries := make([]Entry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !includeHidden && strings.HasPrefix(directoryEntry.Name(), ".") {
			continue
		}
		entry := Entry{Name: directoryEntry.Name(), IsDirectory: directoryEntry.IsDir()}
		if fileInformation, informationError := directoryEntry.Info(); informationError == nil {
			entry.ModifiedAt = fileInformation.ModTime()
			if !entry.IsDirectory {
				entry.SizeBytes = fileInformation.Size()
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(firstIndex, secondIndex int) bool {
		firstEntry := entries[firstIndex]
		secondEntry := entries[secondIndex]
		if firstEntry.IsDirectory != secondEntry.IsDirectory {
			return firstEntry.IsDirectory
		}
		return firstEntry.Name < secondEntry.Name
	})
	return entries, nil
}

// Copy duplicates a regular file from sourcePath to destinationPath,
// preserving the source's permission bits. Copying onto the source is an error.
func Copy(sourcePath string, destinationPath string) error {
	sourceInformation, statError := os.Stat(sourcePath)
	if statError != nil {
		return fmt.Errorf("failed to stat %s: %w", sourcePath, statError)
	}
	if sourceInformation.IsDir() {
		return fmt.Errorf("%s is a directory; only regular files can be copied", sourcePath)
	}
	resolvedDestination := destinationPath
	if destinationInformation, destinationStatError := os.Stat(destinationPath); destinationStatError == nil && destinationInformation.IsDir() {
		resolvedDestination = filepath.Join(destinationPath, filepath.Base(sourcePath))
	}
	if samePath(sourcePath, resolvedDestination) {
		return fmt.Errorf("source and destination are the same file: %s", sourcePath)
	}

	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return fmt.Errorf("failed to open %s: %w", sourcePath, openError)
	}
	defer func() { _ = sourceFile.Close() }()

	destinationFile, createError := os.OpenFile(resolvedDestination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInformation.Mode().Perm())
	if createError != nil {
		return fmt.Errorf("failed to create %s: %w", resolvedDestination, createError)
	}
	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		_ = destinationFile.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", sourcePath, resolvedDestination, copyError)
	}
	if closeError := destinationFile.Close(); closeError != nil {
		return fmt.Errorf("failed to finalize %s: %w", resolvedDestination, closeError)
	}
	return nil
}

// Move renames sourcePath to destinationPath. Moving into an existing
// directory keeps the source's base name.
func Move(sourcePath string, destinationPath string) error {
	resolvedDestination := destinationPath
	if destinationInformation, statError := os.Stat(destinationPath); statError == nil && destinationInformation.IsDir() {
		resolvedDestination = filepath.Join(destinationPath, filepath.Base(sourcePath))
	}
	if renameError := os.Rename(sourcePath, resolvedDestination); renameError != nil {
		return fmt.Errorf("failed to move %s to %s: %w", sourcePath, resolvedDestination, renameError)
	}
	return nil
}

// Remove deletes a file, or a directory when recursive is set. Removing a
// non-empty directory without recursive fails.
func Remove(targetPath string, recursive bool) error {
	targetInformation, statError := os.Stat(targetPath)
	if statError != nil {
		return fmt.Errorf("failed to stat %s: %w", targetPath, statError)
	}
	if targetInformation.IsDir() && !recursive {
		if removeError := os.Remove(targetPath); removeError != nil {
			return fmt.Errorf("failed to remove directory %s (use recursive removal for non-empty directories): %w", targetPath, removeError)
		}
		return nil
	}
	if recursive {
		if removeError := os.RemoveAll(targetPath); removeError != nil {
			return fmt.Errorf("failed to remove %s: %w", targetPath, removeError)
		}
		return nil
	}
	if removeError := os.Remove(targetPath); removeError != nil {
		return fmt.Errorf("failed to remove %s: %w", targetPath, removeError)
	}
	return nil
}

// Inspect returns metadata for targetPath. Directory sizes are computed
// recursively over regular files.
func Inspect(targetPath string) (Info, error) {
	absolutePath, absoluteError := filepath.Abs(targetPath)
	if absoluteError != nil {
		return Info{}, fmt.Errorf("failed to resolve %s: %w", targetPath, absoluteError)
	}
	targetInformation, statError := os.Stat(absolutePath)
	if statError != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", targetPath, statError)
	}

	information := Info{
		Path:        absolutePath,
		Name:        targetInformation.Name(),
		IsDirectory: targetInformation.IsDir(),
		Mode:        targetInformation.Mode().String(),
		ModifiedAt:  targetInformation.ModTime(),
	}
	if information.IsDirectory {
		information.SizeBytes = directoryContentSize(absolutePath)
	} else {
		information.SizeBytes = targetInformation.Size()
	}
	return information, nil
}

// MakeDirectory creates directoryPath and any missing parents.
func MakeDirectory(directoryPath string) error {
	if makeError := os.MkdirAll(directoryPath, 0o755); makeError != nil {
		return fmt.Errorf("failed to create directory %s: %w", directoryPath, makeError)
	}
	return nil
}

// New creates filePath with starter content chosen by its extension. An
// unrecognized extension yields an empty file. Existing files are never
// overwritten.
func New(filePath string) error {
	if _, statError := os.Stat(filePath); statError == nil {
		return fmt.Errorf("file already exists: %s", filePath)
	}
	templateContent := fileTemplatesByExtension[strings.ToLower(filepath.Ext(filePath))]
	if writeError := os.WriteFile(filePath, []byte(templateContent), 0o644); writeError != nil {
		return fmt.Errorf("failed to create %s: %w", filePath, writeError)
	}
	return nil
}

// samePath reports whether two paths resolve to the same cleaned absolute path.
func samePath(firstPath string, secondPath string) bool {
	firstAbsolute, firstError := filepath.Abs(firstPath)
	secondAbsolute, secondError := filepath.Abs(secondPath)
	if firstError != nil || secondError != nil {
		return false
	}
	return filepath.Clean(firstAbsolute) == filepath.Clean(secondAbsolute)
}

// directoryContentSize sums regular file sizes under directoryPath. Walk
// failures are ignored so info never fails on a partially readable tree.
func directoryContentSize(directoryPath string) int64 {
	var totalBytes int64
	_ = filepath.Walk(directoryPath, func(_ string, fileInformation os.FileInfo, walkError error) error {
		if walkError != nil || fileInformation == nil {
			return nil
		}
		if fileInformation.Mode().IsRegular() {
			totalBytes += fileInformation.Size()
		}
		return nil
	})
	return totalBytes
}
