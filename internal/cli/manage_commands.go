package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkit-tools/devkit/internal/tools/cleaner"
	"github.com/devkit-tools/devkit/internal/tools/envfile"
	"github.com/devkit-tools/devkit/internal/tools/fileops"
	"github.com/devkit-tools/devkit/internal/tools/scaffold"
	"github.com/devkit-tools/devkit/internal/utils"
)

const (
	cleanUse              = "clean [path]"
	cleanShortDescription = "remove cache directories"
	cleanLongDescription  = `Find and delete generated cache directories such as __pycache__ and
.pytest_cache. Use --dry-run to preview what would be removed.`
	cleanNameFlagName           = "name"
	cleanNameFlagDescription    = "additional cache directory name to remove (repeatable)"
	dryRunFlagName              = "dry-run"
	dryRunFlagDescription       = "list targets without deleting them"
	assumeYesFlagName           = "yes"
	assumeYesFlagDescription    = "delete without asking for confirmation"
	cleanTargetLineFormat       = "%s (%s)\n"
	cleanNothingFoundMessage    = "no cache directories found"
	cleanDryRunSummaryFormat    = "would remove %d directories, freeing %s\n"
	cleanSummaryFormat          = "removed %d directories, freed %s\n"
	cleanConfirmationPrompt     = "Delete these directories? [y/N]: "
	cleanAbortedMessage         = "aborted"
	confirmationAffirmative     = "y"
	confirmationAffirmativeLong = "yes"

	filesUse                  = "files"
	filesShortDescription     = "basic file operations"
	filesListUse              = "list [path]"
	filesCopyUse              = "copy <source> <destination>"
	filesMoveUse              = "move <source> <destination>"
	filesRemoveUse            = "remove <path>"
	filesInfoUse              = "info <path>"
	filesMkdirUse             = "mkdir <path>"
	filesNewUse               = "new <path>"
	allFlagName               = "all"
	allFlagDescription        = "include hidden entries"
	recursiveFlagName         = "recursive"
	recursiveFlagDescription  = "remove directories and their contents"
	copyPathFlagName          = "copy-path"
	copyPathFlagDescription   = "copy the absolute path to the clipboard"
	filesListDirectoryFormat  = "%s/\n"
	filesListFileFormat       = "%-40s %10s\n"
	filesInfoFormat           = "Path: %s\nName: %s\nType: %s\nSize: %s\nMode: %s\nModified: %s\n"
	filesInfoTypeDirectory    = "directory"
	filesInfoTypeFile         = "file"
	modifiedTimeLayout        = "2006-01-02 15:04:05"

	envUse              = "env"
	envShortDescription = "manage Python environments"
	envVenvUse          = "venv [name]"
	envRemoveVenvUse    = "rmvenv [name]"
	envInitUse          = "init"
	envCheckUse         = "check"

	djangoUse               = "django"
	djangoShortDescription  = "manage Django projects"
	djangoProjectUse        = "project <name>"
	djangoAppUse            = "app <name>"
	djangoMakeMigrationsUse = "makemigrations [app]"
	djangoMigrateUse        = "migrate"
	djangoServeUse          = "serve"
	djangoCheckUse          = "check"
	addressFlagName         = "address"
	addressFlagDescription  = "development server bind address"
)

// createCleanCommand returns the clean subcommand.
func createCleanCommand(dependencies toolDependencies) *cobra.Command {
	var directoryNames []string
	var dryRun bool
	var assumeYes bool

	cleanCommand := &cobra.Command{
		Use:   cleanUse,
		Short: cleanShortDescription,
		Long:  cleanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			writer := command.OutOrStdout()

			targetNames := append(append([]string(nil), cleaner.DefaultCacheDirectoryNames...), directoryNames...)
			preview, previewError := cleaner.Clean(cleaner.Options{Root: rootPath, DirectoryNames: targetNames, DryRun: true})
			if previewError != nil {
				return previewError
			}
			if len(preview.Targets) == 0 {
				fmt.Fprintln(writer, cleanNothingFoundMessage)
				return nil
			}
			for _, target := range preview.Targets {
				fmt.Fprintf(writer, cleanTargetLineFormat, target.Path, utils.FormatFileSize(target.SizeBytes))
			}
			if dryRun {
				fmt.Fprintf(writer, cleanDryRunSummaryFormat, len(preview.Targets), utils.FormatFileSize(preview.FreedBytes))
				return nil
			}
			if !assumeYes && !confirm(command, cleanConfirmationPrompt) {
				fmt.Fprintln(writer, cleanAbortedMessage)
				return nil
			}

			report, cleanError := cleaner.Clean(cleaner.Options{Root: rootPath, DirectoryNames: targetNames})
			if cleanError != nil {
				return cleanError
			}
			dependencies.logger.Info("cache directories removed",
				zap.Int("directories", len(report.Targets)),
				zap.Int64("freed_bytes", report.FreedBytes))
			fmt.Fprintf(writer, cleanSummaryFormat, len(report.Targets), utils.FormatFileSize(report.FreedBytes))
			return nil
		},
	}

	cleanCommand.Flags().StringArrayVar(&directoryNames, cleanNameFlagName, nil, cleanNameFlagDescription)
	cleanCommand.Flags().BoolVar(&dryRun, dryRunFlagName, false, dryRunFlagDescription)
	cleanCommand.Flags().BoolVar(&assumeYes, assumeYesFlagName, false, assumeYesFlagDescription)
	return cleanCommand
}

// confirm reads a yes/no answer from the command's input stream.
func confirm(command *cobra.Command, prompt string) bool {
	fmt.Fprint(command.OutOrStdout(), prompt)
	reader := bufio.NewReader(command.InOrStdin())
	answer, readError := reader.ReadString('\n')
	if readError != nil {
		return false
	}
	normalized := strings.ToLower(strings.TrimSpace(answer))
	return normalized == confirmationAffirmative || normalized == confirmationAffirmativeLong
}

// createFilesCommand returns the files subcommand group.
func createFilesCommand(dependencies toolDependencies) *cobra.Command {
	filesCommand := &cobra.Command{
		Use:   filesUse,
		Short: filesShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	filesCommand.AddCommand(
		createFilesListCommand(),
		createFilesCopyCommand(),
		createFilesMoveCommand(),
		createFilesRemoveCommand(),
		createFilesInfoCommand(dependencies),
		createFilesMkdirCommand(),
		createFilesNewCommand(),
	)
	return filesCommand
}

func createFilesListCommand() *cobra.Command {
	var includeHidden bool

	listCommand := &cobra.Command{
		Use:   filesListUse,
		Short: "list directory entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			directoryPath := defaultPath
			if len(arguments) == 1 {
				directoryPath = arguments[0]
			}
			entries, listError := fileops.List(directoryPath, includeHidden)
			if listError != nil {
				return listError
			}
			writer := command.OutOrStdout()
			for _, entry := range entries {
				if entry.IsDirectory {
					fmt.Fprintf(writer, filesListDirectoryFormat, entry.Name)
					continue
				}
				fmt.Fprintf(writer, filesListFileFormat, entry.Name, utils.FormatFileSize(entry.SizeBytes))
			}
			return nil
		},
	}
	listCommand.Flags().BoolVar(&includeHidden, allFlagName, false, allFlagDescription)
	return listCommand
}

func createFilesCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   filesCopyUse,
		Short: "copy a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return fileops.Copy(arguments[0], arguments[1])
		},
	}
}

func createFilesMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   filesMoveUse,
		Short: "move or rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return fileops.Move(arguments[0], arguments[1])
		},
	}
}

func createFilesRemoveCommand() *cobra.Command {
	var recursive bool

	removeCommand := &cobra.Command{
		Use:   filesRemoveUse,
		Short: "remove a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return fileops.Remove(arguments[0], recursive)
		},
	}
	removeCommand.Flags().BoolVarP(&recursive, recursiveFlagName, "r", false, recursiveFlagDescription)
	return removeCommand
}

func createFilesInfoCommand(dependencies toolDependencies) *cobra.Command {
	var copyPath bool

	infoCommand := &cobra.Command{
		Use:   filesInfoUse,
		Short: "show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			information, inspectError := fileops.Inspect(arguments[0])
			if inspectError != nil {
				return inspectError
			}
			entryType := filesInfoTypeFile
			if information.IsDirectory {
				entryType = filesInfoTypeDirectory
			}
			fmt.Fprintf(command.OutOrStdout(), filesInfoFormat,
				information.Path,
				information.Name,
				entryType,
				utils.FormatFileSize(information.SizeBytes),
				information.Mode,
				information.ModifiedAt.Format(modifiedTimeLayout))
			if copyPath {
				if copyError := dependencies.clipboard.Copy(information.Path); copyError != nil {
					return fmt.Errorf("failed to copy path to clipboard: %w", copyError)
				}
			}
			return nil
		},
	}
	infoCommand.Flags().BoolVar(&copyPath, copyPathFlagName, false, copyPathFlagDescription)
	return infoCommand
}

func createFilesMkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   filesMkdirUse,
		Short: "create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return fileops.MakeDirectory(arguments[0])
		},
	}
}

func createFilesNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   filesNewUse,
		Short: "create a file from a starter template",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return fileops.New(arguments[0])
		},
	}
}

// createEnvCommand returns the env subcommand group.
func createEnvCommand(dependencies toolDependencies) *cobra.Command {
	envCommand := &cobra.Command{
		Use:   envUse,
		Short: envShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	venvCommand := &cobra.Command{
		Use:   envVenvUse,
		Short: "create a Python virtual environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentName := ""
			if len(arguments) == 1 {
				environmentName = arguments[0]
			}
			environmentPath, createError := envfile.CreateVirtualEnvironment(command.Context(), defaultPath, environmentName)
			if createError != nil {
				return createError
			}
			dependencies.logger.Info("virtual environment created", zap.String("path", environmentPath))
			fmt.Fprintln(command.OutOrStdout(), environmentPath)
			return nil
		},
	}

	removeVenvCommand := &cobra.Command{
		Use:   envRemoveVenvUse,
		Short: "remove a Python virtual environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentName := ""
			if len(arguments) == 1 {
				environmentName = arguments[0]
			}
			return envfile.RemoveVirtualEnvironment(defaultPath, environmentName)
		},
	}

	initCommand := &cobra.Command{
		Use:   envInitUse,
		Short: "write a starter .env file",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			environmentFilePath, writeError := envfile.WriteTemplate(defaultPath)
			if writeError != nil {
				return writeError
			}
			fmt.Fprintln(command.OutOrStdout(), environmentFilePath)
			return nil
		},
	}

	checkCommand := &cobra.Command{
		Use:   envCheckUse,
		Short: "check the local Python toolchain",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			result, checkError := envfile.Check(command.Context(), defaultPath)
			if checkError != nil {
				return checkError
			}
			writer := command.OutOrStdout()
			fmt.Fprintf(writer, "Python: %s (%s)\n", result.PythonVersion, result.PythonPath)
			if result.PipVersion != "" {
				fmt.Fprintf(writer, "Pip: %s\n", result.PipVersion)
			} else {
				fmt.Fprintln(writer, "Pip: not available")
			}
			fmt.Fprintf(writer, "Virtual environment present: %t\n", result.VirtualEnvironmentPresent)
			return nil
		},
	}

	envCommand.AddCommand(venvCommand, removeVenvCommand, initCommand, checkCommand)
	return envCommand
}

// createDjangoCommand returns the django subcommand group.
func createDjangoCommand(dependencies toolDependencies) *cobra.Command {
	djangoCommand := &cobra.Command{
		Use:   djangoUse,
		Short: djangoShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	projectCommand := &cobra.Command{
		Use:   djangoProjectUse,
		Short: "create a new Django project",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return scaffold.StartProject(command.Context(), defaultPath, arguments[0])
		},
	}

	appCommand := &cobra.Command{
		Use:   djangoAppUse,
		Short: "create a new Django app",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return scaffold.StartApp(command.Context(), defaultPath, arguments[0])
		},
	}

	makeMigrationsCommand := &cobra.Command{
		Use:   djangoMakeMigrationsUse,
		Short: "generate database migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			appName := ""
			if len(arguments) == 1 {
				appName = arguments[0]
			}
			return scaffold.MakeMigrations(command.Context(), defaultPath, appName)
		},
	}

	migrateCommand := &cobra.Command{
		Use:   djangoMigrateUse,
		Short: "apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return scaffold.Migrate(command.Context(), defaultPath)
		},
	}

	var serveAddress string
	serveCommand := &cobra.Command{
		Use:   djangoServeUse,
		Short: "run the development server",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			dependencies.logger.Info("starting development server", zap.String("address", serveAddress))
			return scaffold.Serve(command.Context(), defaultPath, serveAddress)
		},
	}
	serveCommand.Flags().StringVar(&serveAddress, addressFlagName, scaffold.DefaultServeAddress, addressFlagDescription)

	checkCommand := &cobra.Command{
		Use:   djangoCheckUse,
		Short: "run Django system checks",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return scaffold.Check(command.Context(), defaultPath)
		},
	}

	djangoCommand.AddCommand(projectCommand, appCommand, makeMigrationsCommand, migrateCommand, serveCommand, checkCommand)
	return djangoCommand
}
