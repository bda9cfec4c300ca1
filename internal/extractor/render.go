package extractor

import (
	"fmt"
	"strings"

	"github.com/devkit-tools/devkit/internal/types"
	"github.com/devkit-tools/devkit/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	separatorLine = "----------------------------------------"
	headingLine   = "========================================"

	projectLabel   = "Project: "
	structureLabel = "Project structure:"
	contentsLabel  = "File contents:"

	excludedSuffix     = ", excluded"
	inaccessibleSuffix = " (inaccessible)"

	mimeTypeLabel          = "Mime Type: "
	binaryContentOmitted   = "(binary content omitted)"
	budgetContentOmitted   = "(content omitted: total size budget exhausted)"
	unreadableContentMark  = "(content omitted: file unreadable)"
	truncationMarkerFormat = "[truncated: first %d bytes of %d]"
)

// RenderTree renders the project tree view: directories before files at every
// level, each group in lexicographic order, excluded files annotated with
// their size, pruned directories absent entirely.
func RenderTree(tree *types.ProjectTree) string {
	var builder strings.Builder
	if tree == nil || tree.Root == nil {
		return ""
	}
	builder.WriteString(tree.Root.Name + "/")
	if tree.Root.Inaccessible {
		builder.WriteString(inaccessibleSuffix)
	}
	builder.WriteString("\n")
	renderDirectoryChildren(&builder, tree.Root, "")
	return builder.String()
}

// renderDirectoryChildren writes the connector-prefixed lines for a directory's children.
func renderDirectoryChildren(builder *strings.Builder, node *types.DirectoryNode, prefix string) {
	totalChildren := len(node.Directories) + len(node.Files)
	childIndex := 0

	writeLine := func(line string, isDirectory bool, childDirectory *types.DirectoryNode) {
		isLast := childIndex == totalChildren-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		builder.WriteString(prefix + connector + line + "\n")
		if isDirectory {
			renderDirectoryChildren(builder, childDirectory, childPrefix)
		}
		childIndex++
	}

	for _, childDirectory := range node.Directories {
		line := childDirectory.Name + "/"
		if childDirectory.Inaccessible {
			line += inaccessibleSuffix
		}
		writeLine(line, true, childDirectory)
	}
	for _, childFile := range node.Files {
		annotation := utils.FormatFileSize(childFile.SizeBytes)
		if childFile.Excluded {
			annotation += excludedSuffix
		}
		writeLine(fmt.Sprintf("%s (%s)", childFile.Name, annotation), false, nil)
	}
}

// RenderHeader produces the artifact header: project name, tree view, and
// the opening of the contents block.
func RenderHeader(rendered *types.RenderedContext) string {
	var builder strings.Builder
	builder.WriteString(projectLabel + rendered.ProjectName + "\n")
	builder.WriteString(headingLine + "\n")
	builder.WriteString(structureLabel + "\n\n")
	builder.WriteString(RenderTree(rendered.Tree))
	builder.WriteString("\n" + headingLine + "\n")
	builder.WriteString(contentsLabel + "\n\n")
	return builder.String()
}

// RenderSection produces one file content section including its framing lines.
func RenderSection(section *types.ContentSection) string {
	var builder strings.Builder
	builder.WriteString("File: " + section.RelativePath + "\n")
	switch section.State {
	case types.ContentStateOmittedBudget:
		builder.WriteString(budgetContentOmitted + "\n")
	case types.ContentStateOmittedUnreadable:
		builder.WriteString(unreadableContentMark + "\n")
	case types.ContentStateOmittedBinary:
		if section.MimeType != "" {
			builder.WriteString(mimeTypeLabel + section.MimeType + "\n")
		}
		builder.WriteString(binaryContentOmitted + "\n")
	default:
		builder.WriteString(section.Content)
		if !strings.HasSuffix(section.Content, "\n") {
			builder.WriteString("\n")
		}
		if section.State == types.ContentStateTruncated {
			builder.WriteString(fmt.Sprintf(truncationMarkerFormat, section.IncludedBytes, section.SizeBytes) + "\n")
		}
	}
	builder.WriteString("End of file: " + section.RelativePath + "\n")
	builder.WriteString(separatorLine + "\n")
	return builder.String()
}

// Render produces the complete textual artifact: header, tree view, then the
// content sections in read order. The output carries no timestamps so repeated
// runs over an unchanged tree are byte-identical.
func Render(rendered *types.RenderedContext) string {
	var builder strings.Builder
	builder.WriteString(RenderHeader(rendered))
	for sectionIndex := range rendered.Sections {
		builder.WriteString(RenderSection(&rendered.Sections[sectionIndex]))
	}
	return builder.String()
}

// Summarize aggregates artifact statistics for the summary line.
func Summarize(rendered *types.RenderedContext) *types.OutputSummary {
	if rendered == nil {
		return &types.OutputSummary{}
	}
	return &types.OutputSummary{
		TotalFiles:    rendered.TotalFiles,
		IncludedFiles: rendered.IncludedFiles,
		IncludedBytes: rendered.IncludedBytes,
	}
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	label := "files"
	if summary.IncludedFiles == 1 {
		label = "file"
	}
	tokenSuffix := ""
	if summary.Tokens > 0 {
		tokenSuffix = fmt.Sprintf(", %d tokens", summary.Tokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d of %d %s included, %s%s%s",
		summary.IncludedFiles, summary.TotalFiles, label,
		utils.FormatFileSize(summary.IncludedBytes), tokenSuffix, modelSuffix)
}
