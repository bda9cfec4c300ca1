package extractor_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devkit-tools/devkit/internal/extractor"
)

// TestBuildProjectTreePrunesIgnoredDirectories verifies ignored directories
// are absent from the snapshot along with all of their contents.
func TestBuildProjectTreePrunesIgnoredDirectories(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("node_modules", "lib.js"), []byte("x"))
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("src", "main.py"), []byte("y"))

	projectTree, treeError := extractor.BuildProjectTree(rootDirectory, extractor.NewIgnoreRuleSet(nil))
	if treeError != nil {
		testingHandle.Fatalf("BuildProjectTree error: %v", treeError)
	}

	if len(projectTree.Root.Directories) != 1 || projectTree.Root.Directories[0].Name != "src" {
		testingHandle.Fatalf("expected only src directory, got %+v", projectTree.Root.Directories)
	}
	collectedFiles := extractor.CollectFiles(projectTree)
	if len(collectedFiles) != 1 || collectedFiles[0].RelativePath != "src/main.py" {
		testingHandle.Fatalf("expected only src/main.py, got %+v", collectedFiles)
	}
}

// TestBuildProjectTreeOrdersChildren verifies directories precede files and
// each group is sorted by name.
func TestBuildProjectTreeOrdersChildren(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "zebra.py", []byte("z"))
	writeProjectFile(testingHandle, rootDirectory, "alpha.py", []byte("a"))
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("beta", "inner.py"), []byte("b"))

	projectTree, treeError := extractor.BuildProjectTree(rootDirectory, extractor.NewIgnoreRuleSet(nil))
	if treeError != nil {
		testingHandle.Fatalf("BuildProjectTree error: %v", treeError)
	}

	rendered := extractor.RenderTree(projectTree)
	betaIndex := strings.Index(rendered, "beta/")
	alphaIndex := strings.Index(rendered, "alpha.py")
	zebraIndex := strings.Index(rendered, "zebra.py")
	if betaIndex < 0 || alphaIndex < 0 || zebraIndex < 0 {
		testingHandle.Fatalf("rendered tree missing entries:\n%s", rendered)
	}
	if !(betaIndex < alphaIndex && alphaIndex < zebraIndex) {
		testingHandle.Fatalf("unexpected ordering in tree:\n%s", rendered)
	}
}

// TestBuildProjectTreeSkipsSymlinks verifies symbolic links are ignored so
// traversal cannot cycle.
func TestBuildProjectTreeSkipsSymlinks(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("real", "a.py"), []byte("a"))
	linkPath := filepath.Join(rootDirectory, "loop")
	if symlinkError := os.Symlink(rootDirectory, linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	projectTree, treeError := extractor.BuildProjectTree(rootDirectory, extractor.NewIgnoreRuleSet(nil))
	if treeError != nil {
		testingHandle.Fatalf("BuildProjectTree error: %v", treeError)
	}
	for _, childDirectory := range projectTree.Root.Directories {
		if childDirectory.Name == "loop" {
			testingHandle.Fatalf("symlinked directory must be skipped")
		}
	}
}

// TestBuildProjectTreeFlagsInaccessibleDirectory verifies an unreadable
// subdirectory is flagged in the tree while extraction continues.
func TestBuildProjectTreeFlagsInaccessibleDirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks are bypassed when running as root")
	}
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "readable.py", []byte("r"))
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	if makeError := os.Mkdir(lockedDirectory, 0o755); makeError != nil {
		testingHandle.Fatalf("mkdir: %v", makeError)
	}
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	projectTree, treeError := extractor.BuildProjectTree(rootDirectory, extractor.NewIgnoreRuleSet(nil))
	if treeError != nil {
		testingHandle.Fatalf("BuildProjectTree error: %v", treeError)
	}

	if len(projectTree.Root.Directories) != 1 || !projectTree.Root.Directories[0].Inaccessible {
		testingHandle.Fatalf("expected locked directory flagged inaccessible, got %+v", projectTree.Root.Directories)
	}
	rendered := extractor.RenderTree(projectTree)
	if !strings.Contains(rendered, "locked/ (inaccessible)") {
		testingHandle.Fatalf("tree missing inaccessible annotation:\n%s", rendered)
	}
	collectedFiles := extractor.CollectFiles(projectTree)
	if len(collectedFiles) != 1 || collectedFiles[0].Name != "readable.py" {
		testingHandle.Fatalf("expected readable.py still collected, got %+v", collectedFiles)
	}
}

// TestBuildProjectTreeUnreadableRootFatal verifies an unreadable root
// directory aborts the snapshot instead of producing an empty tree.
func TestBuildProjectTreeUnreadableRootFatal(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission checks are bypassed when running as root")
	}
	parentDirectory := testingHandle.TempDir()
	lockedRoot := filepath.Join(parentDirectory, "project")
	if makeError := os.Mkdir(lockedRoot, 0o755); makeError != nil {
		testingHandle.Fatalf("mkdir: %v", makeError)
	}
	if chmodError := os.Chmod(lockedRoot, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedRoot, 0o755) })

	_, treeError := extractor.BuildProjectTree(lockedRoot, extractor.NewIgnoreRuleSet(nil))
	if treeError == nil {
		testingHandle.Fatal("expected error for unreadable root, got nil")
	}
	if !errors.Is(treeError, extractor.ErrRootNotFound) {
		testingHandle.Fatalf("expected ErrRootNotFound, got %v", treeError)
	}
}
