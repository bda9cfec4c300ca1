package extractor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devkit-tools/devkit/internal/types"
	"github.com/devkit-tools/devkit/internal/utils"
)

const (
	// errorStatRootFormat reports failure to stat the extraction root.
	errorStatRootFormat = "%w: %s"
	// errorRootNotDirectoryFormat reports a root path that is not a directory.
	errorRootNotDirectoryFormat = "%w: %s is not a directory"
	// errorRootUnreadableFormat reports a root directory that cannot be listed.
	errorRootUnreadableFormat = "%w: %s is not readable"
)

// BuildProjectTree traverses rootPath depth-first and returns the read-only
// project snapshot. Directories matching the rule set are pruned entirely;
// matching files are recorded with the Excluded flag set and are never read.
// Unreadable subdirectories are flagged Inaccessible and traversal continues;
// an unreadable root is fatal. Symbolic links are skipped to keep traversal
// cycle-free.
func BuildProjectTree(rootPath string, rules *IgnoreRuleSet) (*types.ProjectTree, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)

	rootInfo, rootStatError := os.Stat(cleanedRootPath)
	if rootStatError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, ErrRootNotFound, rootPath)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, ErrRootNotFound, rootPath)
	}
	if _, rootReadError := os.ReadDir(cleanedRootPath); rootReadError != nil {
		return nil, fmt.Errorf(errorRootUnreadableFormat, ErrRootNotFound, rootPath)
	}

	rootNode := &types.DirectoryNode{
		AbsolutePath: cleanedRootPath,
		RelativePath: ".",
		Name:         filepath.Base(cleanedRootPath),
		Depth:        0,
	}
	buildDirectoryChildren(rootNode, cleanedRootPath, rules)

	return &types.ProjectTree{RootPath: cleanedRootPath, Root: rootNode}, nil
}

// buildDirectoryChildren populates the ordered children of directoryNode.
// A directory that cannot be listed is flagged Inaccessible and left empty.
func buildDirectoryChildren(directoryNode *types.DirectoryNode, rootPath string, rules *IgnoreRuleSet) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryNode.AbsolutePath)
	if readDirectoryError != nil {
		directoryNode.Inaccessible = true
		return
	}

	var childDirectories []*types.DirectoryNode
	var childFiles []*types.FileNode

	for _, directoryEntry := range directoryEntries {
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		childPath := filepath.Join(directoryNode.AbsolutePath, directoryEntry.Name())

		if directoryEntry.IsDir() {
			if rules.MatchesDirectory(directoryEntry.Name()) {
				continue
			}
			childDirectory := &types.DirectoryNode{
				AbsolutePath: childPath,
				RelativePath: utils.RelativePathOrSelf(childPath, rootPath),
				Name:         directoryEntry.Name(),
				Depth:        directoryNode.Depth + 1,
			}
			buildDirectoryChildren(childDirectory, rootPath, rules)
			childDirectories = append(childDirectories, childDirectory)
			continue
		}

		childFile := &types.FileNode{
			AbsolutePath: childPath,
			RelativePath: utils.RelativePathOrSelf(childPath, rootPath),
			Name:         directoryEntry.Name(),
			Extension:    strings.ToLower(filepath.Ext(directoryEntry.Name())),
			Depth:        directoryNode.Depth + 1,
			Excluded:     rules.MatchesFile(directoryEntry.Name()),
		}
		if entryInfo, infoError := directoryEntry.Info(); infoError == nil {
			childFile.SizeBytes = entryInfo.Size()
		}
		childFiles = append(childFiles, childFile)
	}

	sort.Slice(childDirectories, func(first, second int) bool {
		return childDirectories[first].Name < childDirectories[second].Name
	})
	sort.Slice(childFiles, func(first, second int) bool {
		return childFiles[first].Name < childFiles[second].Name
	})

	directoryNode.Directories = childDirectories
	directoryNode.Files = childFiles
}

// CollectFiles returns every file of the tree in canonical traversal order:
// depth-first, directories before files, each group sorted by name.
func CollectFiles(tree *types.ProjectTree) []*types.FileNode {
	var collected []*types.FileNode
	var walk func(node *types.DirectoryNode)
	walk = func(node *types.DirectoryNode) {
		for _, childDirectory := range node.Directories {
			walk(childDirectory)
		}
		collected = append(collected, node.Files...)
	}
	if tree != nil && tree.Root != nil {
		walk(tree.Root)
	}
	return collected
}
