// Package types defines the cross-package data structures used by the devkit CLI.
package types

const (
	NodeKindFile      = "file"
	NodeKindDirectory = "directory"
	NodeKindBinary    = "binary"

	SelectionModeSmart = "smart"
	SelectionModeAll   = "all"
)

// Content section states describe how much of a file made it into the artifact.
const (
	ContentStateComplete          = "complete"
	ContentStateTruncated         = "truncated"
	ContentStateOmittedBudget     = "omitted_budget"
	ContentStateOmittedBinary     = "omitted_binary"
	ContentStateOmittedUnreadable = "omitted_unreadable"
)

// FileNode describes a single file discovered during traversal.
type FileNode struct {
	AbsolutePath string
	RelativePath string
	Name         string
	Extension    string
	SizeBytes    int64
	Depth        int
	Excluded     bool
	Binary       bool
	MimeType     string
}

// DirectoryNode describes a directory and its ordered children. Directories
// precede files, each group sorted lexicographically by name.
type DirectoryNode struct {
	AbsolutePath string
	RelativePath string
	Name         string
	Depth        int
	Inaccessible bool
	Directories  []*DirectoryNode
	Files        []*FileNode
}

// ProjectTree is the read-only hierarchical snapshot built once per extraction.
type ProjectTree struct {
	RootPath string
	Root     *DirectoryNode
}

// ContentSection is one labeled file-content block of the rendered artifact.
type ContentSection struct {
	RelativePath  string
	State         string
	Content       string
	SizeBytes     int64
	IncludedBytes int64
	MimeType      string
}

// RenderedContext is the final extraction artifact: a tree view followed by
// content sections in priority order.
type RenderedContext struct {
	ProjectName   string
	Tree          *ProjectTree
	Sections      []ContentSection
	TotalFiles    int
	IncludedFiles int
	IncludedBytes int64
}

// OutputSummary captures aggregate information about a rendered artifact.
type OutputSummary struct {
	TotalFiles    int
	IncludedFiles int
	IncludedBytes int64
	Tokens        int
	Model         string
}
