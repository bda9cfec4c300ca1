// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devkit-tools/devkit/internal/config"
	"github.com/devkit-tools/devkit/internal/registry"
	"github.com/devkit-tools/devkit/internal/services/clipboard"
	"github.com/devkit-tools/devkit/internal/services/stream"
	"github.com/devkit-tools/devkit/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	rootUse              = "devkit"
	rootShortDescription = "devkit command line interface"
	rootLongDescription  = `devkit bundles everyday development tools.
It generates AI-ready project context, reports file statistics, cleans cache
directories, manipulates files, and manages Python and Django environments.
Use --version to print the application version.`
	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = "devkit version: %s\n"

	toolsUse              = "tools"
	toolsShortDescription = "list available tools"
	toolsListLineFormat   = "%-10s %s\n"
)

// toolDependencies carries the shared services handed to every tool command.
// Configuration is resolved once at startup and passed by value; no tool
// re-reads settings mid-run.
type toolDependencies struct {
	logger        *zap.Logger
	configuration config.Configuration
	clipboard     clipboard.Copier
}

// Execute runs the devkit application with the resolved configuration.
func Execute(ctx context.Context, logger *zap.Logger, configuration config.Configuration) error {
	dependencies := toolDependencies{
		logger:        logger,
		configuration: configuration,
		clipboard:     clipboard.NewService(),
	}
	rootCommand, buildError := createRootCommand(dependencies)
	if buildError != nil {
		return buildError
	}
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command and attaches every tool
// from the manifest in registration order.
func createRootCommand(dependencies toolDependencies) (*cobra.Command, error) {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	toolRegistry, registryError := newToolRegistry(dependencies)
	if registryError != nil {
		return nil, registryError
	}
	for _, tool := range toolRegistry.Tools() {
		rootCommand.AddCommand(tool.NewCommand())
	}
	rootCommand.AddCommand(createToolsCommand(toolRegistry))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand, nil
}

// newToolRegistry assembles the fixed tool manifest.
func newToolRegistry(dependencies toolDependencies) (*registry.Registry, error) {
	toolRegistry := registry.NewRegistry()
	manifest := []registry.Tool{
		{Name: "context", Summary: contextShortDescription, NewCommand: func() *cobra.Command { return createContextCommand(dependencies) }},
		{Name: "tree", Summary: treeShortDescription, NewCommand: func() *cobra.Command { return createTreeCommand(dependencies) }},
		{Name: "stats", Summary: statsShortDescription, NewCommand: func() *cobra.Command { return createStatsCommand(dependencies) }},
		{Name: "clean", Summary: cleanShortDescription, NewCommand: func() *cobra.Command { return createCleanCommand(dependencies) }},
		{Name: "files", Summary: filesShortDescription, NewCommand: func() *cobra.Command { return createFilesCommand(dependencies) }},
		{Name: "env", Summary: envShortDescription, NewCommand: func() *cobra.Command { return createEnvCommand(dependencies) }},
		{Name: "django", Summary: djangoShortDescription, NewCommand: func() *cobra.Command { return createDjangoCommand(dependencies) }},
	}
	for _, tool := range manifest {
		if registrationError := toolRegistry.Register(tool); registrationError != nil {
			return nil, registrationError
		}
	}
	return toolRegistry, nil
}

// createToolsCommand returns the tools listing command.
func createToolsCommand(toolRegistry *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   toolsUse,
		Short: toolsShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			for _, tool := range toolRegistry.Tools() {
				fmt.Fprintf(command.OutOrStdout(), toolsListLineFormat, tool.Name, tool.Summary)
			}
			return nil
		},
	}
}

// dispatchStream runs a producer and consumer concurrently over an event
// channel, propagating the first failure from either side.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if consumeError := consume(event); consumeError != nil {
					return consumeError
				}
			}
		}
	})

	if waitError := group.Wait(); waitError != nil && !errors.Is(waitError, context.Canceled) {
		return waitError
	}
	return nil
}
