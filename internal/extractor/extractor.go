// Package extractor produces a deterministic textual context artifact for a
// project directory: a tree view of included and excluded paths followed by
// file contents ranked by importance and bounded by byte budgets.
package extractor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/devkit-tools/devkit/internal/types"
	"github.com/devkit-tools/devkit/internal/utils"
)

const (
	// errorFileLimitFormat reports a non-positive per-file byte limit.
	errorFileLimitFormat = "%w: per-file limit %d must be positive"
	// errorTotalLimitFormat reports a non-positive total byte limit.
	errorTotalLimitFormat = "%w: total limit %d must be positive"
)

// Budget bounds how many bytes a single extraction may read. Both limits are
// fixed for the duration of one run.
type Budget struct {
	FileLimit  int64
	TotalLimit int64
}

// Options configures a single extraction run. The zero SelectionMode means smart.
type Options struct {
	Root           string
	IgnorePatterns []string
	Budget         Budget
	SelectionMode  string
}

// Validate reports whether the budget limits are usable.
func (budget Budget) Validate() error {
	if budget.FileLimit <= 0 {
		return fmt.Errorf(errorFileLimitFormat, ErrInvalidBudget, budget.FileLimit)
	}
	if budget.TotalLimit <= 0 {
		return fmt.Errorf(errorTotalLimitFormat, ErrInvalidBudget, budget.TotalLimit)
	}
	return nil
}

// Extract walks the project at options.Root and returns the rendered context
// artifact. The result is a pure function of the filesystem snapshot and the
// options: repeated runs over an unchanged tree yield identical artifacts.
func Extract(options Options) (*types.RenderedContext, error) {
	if validationError := options.Budget.Validate(); validationError != nil {
		return nil, validationError
	}
	selectionMode := options.SelectionMode
	if selectionMode == "" {
		selectionMode = types.SelectionModeSmart
	}

	rules := NewIgnoreRuleSet(options.IgnorePatterns)
	projectTree, buildError := BuildProjectTree(options.Root, rules)
	if buildError != nil {
		return nil, buildError
	}

	allFiles := CollectFiles(projectTree)
	var candidates []*types.FileNode
	totalListed := 0
	for _, file := range allFiles {
		if file.Excluded {
			continue
		}
		totalListed++
		if selectionMode == types.SelectionModeSmart && priorityTier(file) > tierRecognizedText {
			continue
		}
		candidates = append(candidates, file)
	}

	rankedFiles := RankFiles(candidates)
	sections, includedFiles, includedBytes := readRankedFiles(rankedFiles, options.Budget)

	return &types.RenderedContext{
		ProjectName:   filepath.Base(projectTree.RootPath),
		Tree:          projectTree,
		Sections:      sections,
		TotalFiles:    totalListed,
		IncludedFiles: includedFiles,
		IncludedBytes: includedBytes,
	}, nil
}

// readRankedFiles reads candidate contents in priority order under the budget.
// Binary files are classified before the budget check since they never charge
// the budget, so a binary candidate keeps its marker even after exhaustion.
// Exhaustion is monotonic: once a read would exceed the remaining total budget,
// that file and every later candidate are recorded as omitted regardless of
// their individual sizes.
func readRankedFiles(rankedFiles []*types.FileNode, budget Budget) ([]types.ContentSection, int, int64) {
	sections := make([]types.ContentSection, 0, len(rankedFiles))
	remainingBudget := budget.TotalLimit
	budgetExhausted := false
	includedFiles := 0
	var includedBytes int64

	markBinary := func(file *types.FileNode, section *types.ContentSection) {
		file.Binary = true
		file.MimeType = utils.DetectMimeType(file.AbsolutePath)
		section.State = types.ContentStateOmittedBinary
		section.MimeType = file.MimeType
	}

	for _, file := range rankedFiles {
		section := types.ContentSection{
			RelativePath: file.RelativePath,
			SizeBytes:    file.SizeBytes,
		}

		if utils.IsFileBinary(file.AbsolutePath) {
			markBinary(file, &section)
			sections = append(sections, section)
			continue
		}

		expectedCharge := file.SizeBytes
		if expectedCharge > budget.FileLimit {
			expectedCharge = budget.FileLimit
		}
		if budgetExhausted || expectedCharge > remainingBudget {
			budgetExhausted = true
			section.State = types.ContentStateOmittedBudget
			sections = append(sections, section)
			continue
		}

		contentBytes, readError := readLimited(file.AbsolutePath, budget.FileLimit)
		if readError != nil {
			section.State = types.ContentStateOmittedUnreadable
			sections = append(sections, section)
			continue
		}

		// The sniff covers a bounded prefix; a NUL past it still disqualifies.
		if utils.IsBinary(contentBytes) {
			markBinary(file, &section)
			sections = append(sections, section)
			continue
		}

		section.Content = string(contentBytes)
		section.IncludedBytes = int64(len(contentBytes))
		if file.SizeBytes > budget.FileLimit {
			section.State = types.ContentStateTruncated
		} else {
			section.State = types.ContentStateComplete
		}
		remainingBudget -= section.IncludedBytes
		includedFiles++
		includedBytes += section.IncludedBytes
		sections = append(sections, section)
	}

	return sections, includedFiles, includedBytes
}

// readLimited reads at most limit bytes from the file at path.
func readLimited(path string, limit int64) ([]byte, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()
	return io.ReadAll(io.LimitReader(fileHandle, limit))
}
