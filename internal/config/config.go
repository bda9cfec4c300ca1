// Package config loads devkit settings from configuration files and
// environment variables. The resolved configuration is an explicit value
// handed to the tools; nothing reads settings mid-run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory and per-user settings file.
	ConfigFileName = ".devkit.yaml"
	// EnvironmentPrefix namespaces devkit environment variables, e.g. DEVKIT_FILE_LIMIT.
	EnvironmentPrefix = "DEVKIT"

	// DefaultFileLimit is the default maximum number of bytes read from one file.
	DefaultFileLimit int64 = 100_000
	// DefaultTotalLimit is the default cumulative content budget per extraction.
	DefaultTotalLimit int64 = 500_000
	// DefaultLogLevel is the default logger verbosity.
	DefaultLogLevel = "info"

	fileLimitKey   = "file_limit"
	totalLimitKey  = "total_limit"
	logLevelKey    = "log_level"
	ignoreDirsKey  = "ignore_dirs"
	ignoreFilesKey = "ignore_files"
)

// ErrInvalidConfiguration indicates settings that cannot be used for a run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration holds the resolved devkit settings.
type Configuration struct {
	FileLimit   int64    `mapstructure:"file_limit"`
	TotalLimit  int64    `mapstructure:"total_limit"`
	LogLevel    string   `mapstructure:"log_level"`
	IgnoreDirs  []string `mapstructure:"ignore_dirs"`
	IgnoreFiles []string `mapstructure:"ignore_files"`
}

// LoadOptions controls how configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Load resolves configuration by merging, in increasing precedence: built-in
// defaults, the user-wide file in the home directory, the working-directory
// file (or an explicitly provided file), and DEVKIT_* environment variables.
func Load(options LoadOptions) (Configuration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Configuration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	reader := viper.New()
	reader.SetDefault(fileLimitKey, DefaultFileLimit)
	reader.SetDefault(totalLimitKey, DefaultTotalLimit)
	reader.SetDefault(logLevelKey, DefaultLogLevel)
	reader.SetDefault(ignoreDirsKey, []string{})
	reader.SetDefault(ignoreFilesKey, []string{})
	reader.SetEnvPrefix(EnvironmentPrefix)
	reader.AutomaticEnv()

	var candidateFiles []string
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		candidateFiles = append(candidateFiles, filepath.Join(homeDirectory, ConfigFileName))
	}
	if options.ExplicitFilePath != "" {
		candidateFiles = append(candidateFiles, resolveExplicitPath(workingDirectory, options.ExplicitFilePath))
	} else {
		candidateFiles = append(candidateFiles, filepath.Join(workingDirectory, ConfigFileName))
	}

	for _, candidatePath := range candidateFiles {
		fileInfo, statError := os.Stat(candidatePath)
		if statError != nil || fileInfo.IsDir() {
			continue
		}
		reader.SetConfigFile(candidatePath)
		if mergeError := reader.MergeInConfig(); mergeError != nil {
			return Configuration{}, fmt.Errorf("read configuration from %s: %w", candidatePath, mergeError)
		}
	}

	var resolved Configuration
	if decodeError := reader.Unmarshal(&resolved); decodeError != nil {
		return Configuration{}, fmt.Errorf("decode configuration: %w", decodeError)
	}
	return resolved, nil
}

// resolveExplicitPath anchors a relative explicit configuration path at the working directory.
func resolveExplicitPath(workingDirectory, explicitPath string) string {
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// Validate rejects limits that would make an extraction run meaningless.
// The check runs before any traversal starts.
func (configuration Configuration) Validate() error {
	if configuration.FileLimit <= 0 {
		return fmt.Errorf("%w: file limit %d must be positive", ErrInvalidConfiguration, configuration.FileLimit)
	}
	if configuration.TotalLimit <= 0 {
		return fmt.Errorf("%w: total limit %d must be positive", ErrInvalidConfiguration, configuration.TotalLimit)
	}
	return nil
}

// ExtraIgnorePatterns converts configured ignore entries into rule-set
// patterns: directory names gain a trailing slash, file globs pass through.
func (configuration Configuration) ExtraIgnorePatterns() []string {
	patterns := make([]string, 0, len(configuration.IgnoreDirs)+len(configuration.IgnoreFiles))
	for _, directoryName := range configuration.IgnoreDirs {
		trimmedName := strings.TrimSpace(directoryName)
		if trimmedName == "" {
			continue
		}
		if !strings.HasSuffix(trimmedName, "/") {
			trimmedName += "/"
		}
		patterns = append(patterns, trimmedName)
	}
	for _, filePattern := range configuration.IgnoreFiles {
		trimmedPattern := strings.TrimSpace(filePattern)
		if trimmedPattern == "" {
			continue
		}
		patterns = append(patterns, trimmedPattern)
	}
	return patterns
}
