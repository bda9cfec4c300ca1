// Package registry holds the fixed manifest of devkit tools. Tools are
// declared explicitly at startup; there is no runtime discovery.
package registry

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// duplicateToolMessageFormat reports a manifest collision during registration.
	duplicateToolMessageFormat = "tool %q registered twice"
)

// Tool describes a single devkit tool: its manifest entry and the factory
// producing its cobra command.
type Tool struct {
	// Name is the manifest key and the CLI subcommand name.
	Name string
	// Summary is the one-line description shown by the tools listing.
	Summary string
	// NewCommand builds the cobra command implementing the tool.
	NewCommand func() *cobra.Command
}

// Registry maps tool names to their descriptors while preserving
// registration order.
type Registry struct {
	toolsByName       map[string]Tool
	registrationOrder []string
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{toolsByName: map[string]Tool{}}
}

// Register adds a tool to the manifest. Registering the same name twice is a
// configuration mistake and fails.
func (toolRegistry *Registry) Register(tool Tool) error {
	if _, alreadyRegistered := toolRegistry.toolsByName[tool.Name]; alreadyRegistered {
		return fmt.Errorf(duplicateToolMessageFormat, tool.Name)
	}
	toolRegistry.toolsByName[tool.Name] = tool
	toolRegistry.registrationOrder = append(toolRegistry.registrationOrder, tool.Name)
	return nil
}

// Tools returns all registered tools in registration order.
func (toolRegistry *Registry) Tools() []Tool {
	orderedTools := make([]Tool, 0, len(toolRegistry.registrationOrder))
	for _, toolName := range toolRegistry.registrationOrder {
		orderedTools = append(orderedTools, toolRegistry.toolsByName[toolName])
	}
	return orderedTools
}
