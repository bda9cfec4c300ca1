// Package runner wraps the external processes devkit drives: python,
// django-admin, and project manage.py scripts.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ManageScriptName is the Django management entry point searched for upward
// from the working directory.
const ManageScriptName = "manage.py"

// maximumUpwardSearchDepth bounds the manage.py discovery walk.
const maximumUpwardSearchDepth = 5

// PythonOverrideVariable names the environment variable that pins the interpreter.
const PythonOverrideVariable = "DEVKIT_PYTHON"

// Run executes the named command with the provided arguments in dir (empty
// means the current directory) and returns its trimmed standard output.
// On failure the returned error carries the trimmed standard error.
func Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = dir

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError

	if runError := command.Run(); runError != nil {
		message := strings.TrimSpace(standardError.String())
		if message == "" {
			message = strings.TrimSpace(standardOutput.String())
		}
		if message == "" {
			return "", fmt.Errorf("%s failed: %w", name, runError)
		}
		return "", fmt.Errorf("%s failed: %s", name, message)
	}
	return strings.TrimSpace(standardOutput.String()), nil
}

// RunInteractive executes the named command attached to the caller's standard
// streams, for long-running child processes such as development servers.
func RunInteractive(ctx context.Context, dir string, name string, args ...string) error {
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = dir
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

// DetectPythonExecutable locates a usable Python 3 interpreter. The
// DEVKIT_PYTHON environment variable takes precedence over PATH lookup.
func DetectPythonExecutable(ctx context.Context) (string, error) {
	if explicit := strings.TrimSpace(os.Getenv(PythonOverrideVariable)); explicit != "" {
		if _, statError := os.Stat(explicit); statError == nil {
			if compatibilityError := verifyPythonCompatibility(ctx, explicit); compatibilityError != nil {
				return "", fmt.Errorf("python specified via %s (%s) is not compatible: %w", PythonOverrideVariable, explicit, compatibilityError)
			}
			return explicit, nil
		}
		if resolvedPath, lookupError := exec.LookPath(explicit); lookupError == nil {
			if compatibilityError := verifyPythonCompatibility(ctx, resolvedPath); compatibilityError != nil {
				return "", fmt.Errorf("python specified via %s (%s) is not compatible: %w", PythonOverrideVariable, resolvedPath, compatibilityError)
			}
			return resolvedPath, nil
		}
		return "", fmt.Errorf("python executable specified via %s (%s) not found", PythonOverrideVariable, explicit)
	}

	candidates := []string{"python3", "python"}
	for _, candidate := range candidates {
		resolvedPath, lookupError := exec.LookPath(candidate)
		if lookupError != nil {
			continue
		}
		if compatibilityError := verifyPythonCompatibility(ctx, resolvedPath); compatibilityError != nil {
			continue
		}
		return resolvedPath, nil
	}
	return "", fmt.Errorf("python 3 not found; install Python or set %s to a compatible interpreter", PythonOverrideVariable)
}

// verifyPythonCompatibility checks the interpreter reports Python 3.8 or newer.
func verifyPythonCompatibility(ctx context.Context, pythonPath string) error {
	command := exec.CommandContext(ctx, pythonPath, "-c", "import sys; sys.exit(0 if sys.version_info >= (3, 8) else 1)")
	if runError := command.Run(); runError != nil {
		return fmt.Errorf("python interpreter %s must be version 3.8 or newer", pythonPath)
	}
	return nil
}

// FindManageScript searches upward from startDirectory for a directory
// containing manage.py and returns that directory.
func FindManageScript(startDirectory string) (string, error) {
	absoluteStartDirectory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, absoluteError)
	}

	currentDirectory := absoluteStartDirectory
	for searchDepth := 0; searchDepth < maximumUpwardSearchDepth; searchDepth++ {
		managePath := filepath.Join(currentDirectory, ManageScriptName)
		if fileInformation, statError := os.Stat(managePath); statError == nil && !fileInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}
	return "", errors.New("manage.py not found in or above " + absoluteStartDirectory)
}
