package extractor_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devkit-tools/devkit/internal/extractor"
	"github.com/devkit-tools/devkit/internal/types"
)

const (
	largeFileName      = "large.py"
	largeFileSize      = 1000
	perFileLimit       = 100
	generousTotalLimit = 100_000

	equalFileSize   = 60_000
	equalFileCount  = 10
	equalFileFormat = "module_%d.py"
	equalTotalLimit = 500_000
	equalFileLimit  = 100_000
)

// writeProjectFile creates a file under rootDirectory, failing the test on error.
func writeProjectFile(testingHandle *testing.T, rootDirectory string, relativePath string, content []byte) string {
	testingHandle.Helper()
	fullPath := filepath.Join(rootDirectory, relativePath)
	if makeError := os.MkdirAll(filepath.Dir(fullPath), 0o755); makeError != nil {
		testingHandle.Fatalf("mkdir for %s: %v", relativePath, makeError)
	}
	if writeError := os.WriteFile(fullPath, content, 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", relativePath, writeError)
	}
	return fullPath
}

// repeatedContent returns printable content of exactly the requested size.
func repeatedContent(size int) []byte {
	return []byte(strings.Repeat("a", size))
}

// findSection returns the section for the given relative path.
func findSection(testingHandle *testing.T, rendered *types.RenderedContext, relativePath string) types.ContentSection {
	testingHandle.Helper()
	for _, section := range rendered.Sections {
		if section.RelativePath == relativePath {
			return section
		}
	}
	testingHandle.Fatalf("no section for %s", relativePath)
	return types.ContentSection{}
}

// TestExtractTruncatesOversizedFile verifies a file larger than the per-file
// limit is included as a truncated prefix with an explicit marker.
func TestExtractTruncatesOversizedFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, largeFileName, repeatedContent(largeFileSize))

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	section := findSection(testingHandle, rendered, largeFileName)
	if section.State != types.ContentStateTruncated {
		testingHandle.Fatalf("expected truncated state, got %s", section.State)
	}
	if section.IncludedBytes != perFileLimit {
		testingHandle.Fatalf("expected %d included bytes, got %d", perFileLimit, section.IncludedBytes)
	}
	if len(section.Content) != perFileLimit {
		testingHandle.Fatalf("expected %d content bytes, got %d", perFileLimit, len(section.Content))
	}

	artifact := extractor.Render(rendered)
	expectedMarker := fmt.Sprintf("[truncated: first %d bytes of %d]", perFileLimit, largeFileSize)
	if !strings.Contains(artifact, expectedMarker) {
		testingHandle.Fatalf("artifact missing truncation marker %q", expectedMarker)
	}
}

// TestExtractBudgetExhaustionIsMonotonic verifies that with ten equally sized
// files only the first eight fit the total budget and every later file is
// omitted, including files that would individually still fit.
func TestExtractBudgetExhaustionIsMonotonic(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	for fileIndex := 0; fileIndex < equalFileCount; fileIndex++ {
		fileName := fmt.Sprintf(equalFileFormat, fileIndex)
		writeProjectFile(testingHandle, rootDirectory, fileName, repeatedContent(equalFileSize))
	}

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: equalFileLimit, TotalLimit: equalTotalLimit},
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	if rendered.IncludedFiles != 8 {
		testingHandle.Fatalf("expected 8 included files, got %d", rendered.IncludedFiles)
	}
	if rendered.IncludedBytes != 8*equalFileSize {
		testingHandle.Fatalf("expected %d included bytes, got %d", 8*equalFileSize, rendered.IncludedBytes)
	}
	if len(rendered.Sections) != equalFileCount {
		testingHandle.Fatalf("expected %d sections, got %d", equalFileCount, len(rendered.Sections))
	}
	for sectionIndex, section := range rendered.Sections {
		expectedState := types.ContentStateComplete
		if sectionIndex >= 8 {
			expectedState = types.ContentStateOmittedBudget
		}
		if section.State != expectedState {
			testingHandle.Fatalf("section %d: expected state %s, got %s", sectionIndex, expectedState, section.State)
		}
	}
}

// TestExtractOmittedSmallFileStaysOmitted verifies exhaustion does not reopen
// for a later file small enough to fit the leftover budget.
func TestExtractOmittedSmallFileStaysOmitted(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "a_first.py", repeatedContent(90))
	writeProjectFile(testingHandle, rootDirectory, "b_second.py", repeatedContent(50))
	writeProjectFile(testingHandle, rootDirectory, "c_tiny.py", repeatedContent(5))

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: 100, TotalLimit: 100},
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	if findSection(testingHandle, rendered, "a_first.py").State != types.ContentStateComplete {
		testingHandle.Fatalf("expected a_first.py included")
	}
	if findSection(testingHandle, rendered, "b_second.py").State != types.ContentStateOmittedBudget {
		testingHandle.Fatalf("expected b_second.py omitted")
	}
	if findSection(testingHandle, rendered, "c_tiny.py").State != types.ContentStateOmittedBudget {
		testingHandle.Fatalf("expected c_tiny.py omitted after exhaustion")
	}
}

// TestExtractEmptyRoot verifies an empty directory yields a valid artifact
// with no sections.
func TestExtractEmptyRoot(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}
	if rendered.TotalFiles != 0 || len(rendered.Sections) != 0 {
		testingHandle.Fatalf("expected empty artifact, got %d files and %d sections", rendered.TotalFiles, len(rendered.Sections))
	}
	artifact := extractor.Render(rendered)
	if !strings.Contains(artifact, "Project structure:") {
		testingHandle.Fatalf("artifact missing structure block: %q", artifact)
	}
}

// TestExtractMissingRoot verifies a nonexistent root is a fatal error.
func TestExtractMissingRoot(testingHandle *testing.T) {
	missingRoot := filepath.Join(testingHandle.TempDir(), "does-not-exist")

	_, extractError := extractor.Extract(extractor.Options{
		Root:   missingRoot,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	})
	if !errors.Is(extractError, extractor.ErrRootNotFound) {
		testingHandle.Fatalf("expected ErrRootNotFound, got %v", extractError)
	}
}

// TestExtractInvalidBudget verifies non-positive limits fail before traversal.
func TestExtractInvalidBudget(testingHandle *testing.T) {
	budgetCases := []extractor.Budget{
		{FileLimit: 0, TotalLimit: 100},
		{FileLimit: 100, TotalLimit: 0},
		{FileLimit: -1, TotalLimit: 100},
	}
	for _, budget := range budgetCases {
		_, extractError := extractor.Extract(extractor.Options{Root: ".", Budget: budget})
		if !errors.Is(extractError, extractor.ErrInvalidBudget) {
			testingHandle.Fatalf("budget %+v: expected ErrInvalidBudget, got %v", budget, extractError)
		}
	}
}

// TestExtractBinaryFileOmitted verifies binary content is never inlined and
// charges nothing against the budget.
func TestExtractBinaryFileOmitted(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "data.dat", []byte{0x00, 0xff, 0x10, 0x00})
	writeProjectFile(testingHandle, rootDirectory, "main.py", repeatedContent(40))

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:          rootDirectory,
		Budget:        extractor.Budget{FileLimit: perFileLimit, TotalLimit: 40},
		SelectionMode: types.SelectionModeAll,
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	binarySection := findSection(testingHandle, rendered, "data.dat")
	if binarySection.State != types.ContentStateOmittedBinary {
		testingHandle.Fatalf("expected binary omission, got %s", binarySection.State)
	}
	if binarySection.Content != "" {
		testingHandle.Fatalf("binary content must not be inlined")
	}
	textSection := findSection(testingHandle, rendered, "main.py")
	if textSection.State != types.ContentStateComplete {
		testingHandle.Fatalf("binary file must not consume budget; got state %s", textSection.State)
	}
}

// TestExtractBinaryKeepsMarkerAfterBudgetExhaustion verifies a binary file
// ranked past the exhaustion point is still labeled as a binary omission,
// not a budget omission, since binary files never charge the budget.
func TestExtractBinaryKeepsMarkerAfterBudgetExhaustion(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "main.py", repeatedContent(40))
	writeProjectFile(testingHandle, rootDirectory, "zz_more.py", repeatedContent(10))
	writeProjectFile(testingHandle, rootDirectory, "zz_blob.dat", []byte{0x00, 0xff, 0x10, 0x00})

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:          rootDirectory,
		Budget:        extractor.Budget{FileLimit: perFileLimit, TotalLimit: 40},
		SelectionMode: types.SelectionModeAll,
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	if findSection(testingHandle, rendered, "main.py").State != types.ContentStateComplete {
		testingHandle.Fatalf("expected main.py included")
	}
	if findSection(testingHandle, rendered, "zz_more.py").State != types.ContentStateOmittedBudget {
		testingHandle.Fatalf("expected zz_more.py omitted by budget")
	}
	if findSection(testingHandle, rendered, "zz_blob.dat").State != types.ContentStateOmittedBinary {
		testingHandle.Fatalf("expected zz_blob.dat labeled binary after exhaustion, got %s",
			findSection(testingHandle, rendered, "zz_blob.dat").State)
	}
}

// TestExtractSmartModeSkipsUnrecognizedExtensions verifies smart selection
// excludes unknown file types from content while the all mode reads them.
func TestExtractSmartModeSkipsUnrecognizedExtensions(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "main.py", repeatedContent(10))
	writeProjectFile(testingHandle, rootDirectory, "notes.xyz", repeatedContent(10))

	smartRendered, smartError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	})
	if smartError != nil {
		testingHandle.Fatalf("Extract smart error: %v", smartError)
	}
	if len(smartRendered.Sections) != 1 || smartRendered.Sections[0].RelativePath != "main.py" {
		testingHandle.Fatalf("smart mode expected only main.py, got %+v", smartRendered.Sections)
	}
	if smartRendered.TotalFiles != 2 {
		testingHandle.Fatalf("smart mode must still count listed files, got %d", smartRendered.TotalFiles)
	}

	allRendered, allError := extractor.Extract(extractor.Options{
		Root:          rootDirectory,
		Budget:        extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
		SelectionMode: types.SelectionModeAll,
	})
	if allError != nil {
		testingHandle.Fatalf("Extract all error: %v", allError)
	}
	if len(allRendered.Sections) != 2 {
		testingHandle.Fatalf("all mode expected 2 sections, got %d", len(allRendered.Sections))
	}
}

// TestExtractExcludedFileNeverRead verifies excluded files appear in the tree
// with their size but produce no content section.
func TestExtractExcludedFileNeverRead(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "app.log", repeatedContent(30))
	writeProjectFile(testingHandle, rootDirectory, "main.py", repeatedContent(10))

	rendered, extractError := extractor.Extract(extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	})
	if extractError != nil {
		testingHandle.Fatalf("Extract error: %v", extractError)
	}

	for _, section := range rendered.Sections {
		if section.RelativePath == "app.log" {
			testingHandle.Fatalf("excluded file must not have a content section")
		}
	}
	artifact := extractor.Render(rendered)
	if !strings.Contains(artifact, "app.log (30b, excluded)") {
		testingHandle.Fatalf("tree missing excluded annotation:\n%s", artifact)
	}
}

// TestExtractDeterministicOutput verifies repeated runs over an unchanged
// tree produce byte-identical artifacts.
func TestExtractDeterministicOutput(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeProjectFile(testingHandle, rootDirectory, "README.md", repeatedContent(20))
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("pkg", "module.py"), repeatedContent(35))
	writeProjectFile(testingHandle, rootDirectory, filepath.Join("pkg", "helper.py"), repeatedContent(15))

	options := extractor.Options{
		Root:   rootDirectory,
		Budget: extractor.Budget{FileLimit: perFileLimit, TotalLimit: generousTotalLimit},
	}
	firstRendered, firstError := extractor.Extract(options)
	if firstError != nil {
		testingHandle.Fatalf("first Extract error: %v", firstError)
	}
	secondRendered, secondError := extractor.Extract(options)
	if secondError != nil {
		testingHandle.Fatalf("second Extract error: %v", secondError)
	}
	if extractor.Render(firstRendered) != extractor.Render(secondRendered) {
		testingHandle.Fatalf("artifacts differ between identical runs")
	}
}
