package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkit-tools/devkit/internal/extractor"
	"github.com/devkit-tools/devkit/internal/services/stream"
	"github.com/devkit-tools/devkit/internal/tokenizer"
	"github.com/devkit-tools/devkit/internal/tools/stats"
	"github.com/devkit-tools/devkit/internal/types"
	"github.com/devkit-tools/devkit/internal/utils"
)

const (
	defaultPath = "."

	exclusionFlagName         = "e"
	exclusionFlagDescription  = "exclude path pattern"
	modeFlagName              = "mode"
	modeFlagDescription       = "file selection mode: smart or all"
	fileLimitFlagName         = "file-limit"
	fileLimitFlagDescription  = "maximum bytes read from a single file"
	totalLimitFlagName        = "total-limit"
	totalLimitFlagDescription = "cumulative content byte budget"
	outputFlagName            = "output"
	outputFlagDescription     = "write the artifact to a file instead of stdout"
	copyFlagName              = "copy"
	copyFlagDescription       = "copy the artifact to the clipboard"
	tokensFlagName            = "tokens"
	tokensFlagDescription     = "include token counts in the summary"
	modelFlagName             = "model"
	modelFlagDescription      = "tokenizer model to use for token counting"

	contextUse              = "context [path]"
	contextAlias            = "x"
	contextShortDescription = "generate AI-ready project context (" + contextAlias + ")"
	contextLongDescription  = `Render a project tree and ranked file contents into a single artifact
suited for pasting into an AI prompt. Files are ordered by importance and
read under per-file and total byte budgets. Repeated runs over an unchanged
tree produce byte-identical output.`
	contextUsageExample = `  # Write context for the current project to stdout
  devkit context

  # Include every text file and copy the artifact to the clipboard
  devkit context --mode all --copy

  # Tighter budgets, excluding generated code
  devkit context --file-limit 20000 --total-limit 200000 -e generated`

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display the project tree (" + treeAlias + ")"
	treeLongDescription  = `List the project's directories and files with sizes, applying the same
ignore rules as context generation.`

	statsUse              = "stats [path]"
	statsAlias            = "s"
	statsShortDescription = "report file statistics by extension (" + statsAlias + ")"
	statsLongDescription  = `Count files and aggregate sizes grouped by extension.`

	invalidModeMessage        = "invalid mode value '%s'"
	statsTableLineFormat      = "%-18s %8d %12s\n"
	statsTableHeaderFormat    = "%-18s %8s %12s\n"
	statsTableHeaderExtension = "extension"
	statsTableHeaderCount     = "files"
	statsTableHeaderSize      = "size"
	treeSummaryLineFormat     = "Summary: %d files, %s\n"
)

// isSupportedSelectionMode reports whether the provided mode is recognized.
func isSupportedSelectionMode(mode string) bool {
	switch mode {
	case types.SelectionModeSmart, types.SelectionModeAll:
		return true
	default:
		return false
	}
}

// contextOptions stores the flag values of the context command.
type contextOptions struct {
	exclusionPatterns []string
	selectionMode     string
	fileLimit         int64
	totalLimit        int64
	outputPath        string
	copyEnabled       bool
	tokensEnabled     bool
	tokenModel        string
}

// createContextCommand returns the context subcommand.
func createContextCommand(dependencies toolDependencies) *cobra.Command {
	options := contextOptions{
		selectionMode: types.SelectionModeSmart,
		fileLimit:     dependencies.configuration.FileLimit,
		totalLimit:    dependencies.configuration.TotalLimit,
	}

	contextCommand := &cobra.Command{
		Use:     contextUse,
		Aliases: []string{contextAlias},
		Short:   contextShortDescription,
		Long:    contextLongDescription,
		Example: contextUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			selectionMode := strings.ToLower(options.selectionMode)
			if !isSupportedSelectionMode(selectionMode) {
				return fmt.Errorf(invalidModeMessage, options.selectionMode)
			}
			options.selectionMode = selectionMode
			return runContextExtraction(command.Context(), dependencies, rootPath, options)
		},
	}

	contextCommand.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	contextCommand.Flags().StringVar(&options.selectionMode, modeFlagName, types.SelectionModeSmart, modeFlagDescription)
	contextCommand.Flags().Int64Var(&options.fileLimit, fileLimitFlagName, dependencies.configuration.FileLimit, fileLimitFlagDescription)
	contextCommand.Flags().Int64Var(&options.totalLimit, totalLimitFlagName, dependencies.configuration.TotalLimit, totalLimitFlagDescription)
	contextCommand.Flags().StringVar(&options.outputPath, outputFlagName, "", outputFlagDescription)
	contextCommand.Flags().BoolVar(&options.copyEnabled, copyFlagName, false, copyFlagDescription)
	contextCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	contextCommand.Flags().StringVar(&options.tokenModel, modelFlagName, "", modelFlagDescription)
	return contextCommand
}

// runContextExtraction streams the extraction into the selected destination,
// then applies token counting and clipboard copying over the finished artifact.
func runContextExtraction(ctx context.Context, dependencies toolDependencies, rootPath string, options contextOptions) error {
	extractionOptions := extractor.Options{
		Root:           rootPath,
		IgnorePatterns: append(dependencies.configuration.ExtraIgnorePatterns(), options.exclusionPatterns...),
		Budget:         extractor.Budget{FileLimit: options.fileLimit, TotalLimit: options.totalLimit},
		SelectionMode:  options.selectionMode,
	}

	// The artifact is staged in a temporary file and renamed into place only
	// after the extraction succeeds, so a fatal run leaves no partial output.
	var destination io.Writer = os.Stdout
	var stagedFile *os.File
	var stagedPath string
	if options.outputPath != "" {
		temporaryFile, createError := os.CreateTemp(filepath.Dir(options.outputPath), ".devkit-output-*")
		if createError != nil {
			return fmt.Errorf("failed to create output file %s: %w", options.outputPath, createError)
		}
		stagedFile = temporaryFile
		stagedPath = temporaryFile.Name()
		destination = temporaryFile
		defer func() {
			if stagedFile != nil {
				_ = stagedFile.Close()
				_ = os.Remove(stagedPath)
			}
		}()
	}

	var tokenCounter tokenizer.Counter
	var resolvedModel string
	if options.tokensEnabled {
		counter, modelName, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return counterError
		}
		tokenCounter = counter
		resolvedModel = modelName
	}

	var artifact strings.Builder
	captureArtifact := options.copyEnabled || options.tokensEnabled

	producer := func(streamCtx context.Context, events chan<- stream.Event) error {
		_, extractionError := stream.StreamExtraction(streamCtx, extractionOptions, events)
		return extractionError
	}

	consumer := func(event stream.Event) error {
		if event.Kind == stream.EventKindSummary {
			summary := event.Summary
			if tokenCounter != nil {
				tokenCount, countError := tokenCounter.CountString(artifact.String())
				if countError != nil {
					dependencies.logger.Warn("token counting failed", zap.Error(countError))
				} else {
					summary.Tokens = tokenCount
					summary.Model = resolvedModel
				}
			}
			summaryLine := extractor.FormatSummaryLine(summary) + "\n"
			if captureArtifact {
				artifact.WriteString(summaryLine)
			}
			_, writeError := io.WriteString(destination, summaryLine)
			return writeError
		}
		if captureArtifact {
			artifact.WriteString(event.Text)
		}
		_, writeError := io.WriteString(destination, event.Text)
		return writeError
	}

	if dispatchError := dispatchStream(ctx, producer, consumer); dispatchError != nil {
		return dispatchError
	}

	if stagedFile != nil {
		if closeError := stagedFile.Close(); closeError != nil {
			return fmt.Errorf("failed to finalize output file %s: %w", options.outputPath, closeError)
		}
		if renameError := os.Rename(stagedPath, options.outputPath); renameError != nil {
			return fmt.Errorf("failed to finalize output file %s: %w", options.outputPath, renameError)
		}
		stagedFile = nil
	}

	if options.copyEnabled {
		if copyError := dependencies.clipboard.Copy(artifact.String()); copyError != nil {
			return fmt.Errorf("failed to copy artifact to clipboard: %w", copyError)
		}
	}
	return nil
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(dependencies toolDependencies) *cobra.Command {
	var exclusionPatterns []string

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			ignorePatterns := append(dependencies.configuration.ExtraIgnorePatterns(), exclusionPatterns...)
			ruleSet := extractor.NewIgnoreRuleSet(ignorePatterns)
			projectTree, treeError := extractor.BuildProjectTree(rootPath, ruleSet)
			if treeError != nil {
				return treeError
			}
			writer := command.OutOrStdout()
			fmt.Fprint(writer, extractor.RenderTree(projectTree))

			treeFiles := extractor.CollectFiles(projectTree)
			var totalBytes int64
			for _, file := range treeFiles {
				totalBytes += file.SizeBytes
			}
			fmt.Fprintf(writer, treeSummaryLineFormat, len(treeFiles), utils.FormatFileSize(totalBytes))
			return nil
		},
	}

	treeCommand.Flags().StringArrayVarP(&exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	return treeCommand
}

// createStatsCommand returns the stats subcommand.
func createStatsCommand(dependencies toolDependencies) *cobra.Command {
	var exclusionPatterns []string

	statsCommand := &cobra.Command{
		Use:     statsUse,
		Aliases: []string{statsAlias},
		Short:   statsShortDescription,
		Long:    statsLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			ignorePatterns := append(dependencies.configuration.ExtraIgnorePatterns(), exclusionPatterns...)
			report, collectError := stats.Collect(rootPath, ignorePatterns)
			if collectError != nil {
				return collectError
			}

			writer := command.OutOrStdout()
			fmt.Fprintf(writer, statsTableHeaderFormat, statsTableHeaderExtension, statsTableHeaderCount, statsTableHeaderSize)
			for _, entry := range report.Entries {
				fmt.Fprintf(writer, statsTableLineFormat, entry.Extension, entry.FileCount, utils.FormatFileSize(entry.TotalBytes))
			}
			fmt.Fprintf(writer, statsTableLineFormat, "total", report.TotalFiles, utils.FormatFileSize(report.TotalBytes))
			return nil
		},
	}

	statsCommand.Flags().StringArrayVarP(&exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	return statsCommand
}
