// Package stats aggregates per-extension file counts and sizes for a
// project tree.
package stats

import (
	"sort"
	"strings"

	"github.com/devkit-tools/devkit/internal/extractor"
	"github.com/devkit-tools/devkit/internal/types"
)

// NoExtensionBucket labels files without an extension in the report.
const NoExtensionBucket = "[no extension]"

// ExtensionEntry holds the aggregate for one extension bucket.
type ExtensionEntry struct {
	// Extension is the lower-cased extension including the leading dot, or
	// NoExtensionBucket.
	Extension string
	// FileCount is the number of files with this extension.
	FileCount int
	// TotalBytes is the combined size of those files.
	TotalBytes int64
}

// Report summarizes the files of a project tree by extension.
type Report struct {
	// Entries are the extension buckets, largest file count first.
	Entries []ExtensionEntry
	// TotalFiles counts every file in the report.
	TotalFiles int
	// TotalBytes sums every file size in the report.
	TotalBytes int64
}

// Collect walks rootPath with the given ignore patterns and returns the
// per-extension aggregation. Excluded files are counted like any other file
// in the tree listing since statistics do not read file contents.
func Collect(rootPath string, ignorePatterns []string) (Report, error) {
	ruleSet := extractor.NewIgnoreRuleSet(ignorePatterns)
	projectTree, treeError := extractor.BuildProjectTree(rootPath, ruleSet)
	if treeError != nil {
		return Report{}, treeError
	}
	return Aggregate(extractor.CollectFiles(projectTree)), nil
}

// Aggregate buckets the given files by extension.
func Aggregate(files []*types.FileNode) Report {
	entriesByExtension := map[string]*ExtensionEntry{}
	var report Report

	for _, file := range files {
		bucketName := strings.ToLower(file.Extension)
		if bucketName == "" {
			bucketName = NoExtensionBucket
		}
		entry, exists := entriesByExtension[bucketName]
		if !exists {
			entry = &ExtensionEntry{Extension: bucketName}
			entriesByExtension[bucketName] = entry
		}
		entry.FileCount++
		entry.TotalBytes += file.SizeBytes
		report.TotalFiles++
		report.TotalBytes += file.SizeBytes
	}

	report.Entries = make([]ExtensionEntry, 0, len(entriesByExtension))
	for _, entry := range entriesByExtension {
		report.Entries = append(report.Entries, *entry)
	}
	sort.Slice(report.Entries, func(firstIndex, secondIndex int) bool {
		firstEntry := report.Entries[firstIndex]
		secondEntry := report.Entries[secondIndex]
		if firstEntry.FileCount != secondEntry.FileCount {
			return firstEntry.FileCount > secondEntry.FileCount
		}
		return firstEntry.Extension < secondEntry.Extension
	})
	return report
}
