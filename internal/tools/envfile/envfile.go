// Package envfile manages Python virtual environments and .env files for a
// project directory.
package envfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devkit-tools/devkit/internal/runner"
)

const (
	// DefaultVirtualEnvironmentName is the directory created for new
	// virtual environments.
	DefaultVirtualEnvironmentName = "venv"
	// EnvironmentFileName is the dotenv file written by WriteTemplate.
	EnvironmentFileName = ".env"
)

// environmentFileTemplate is the starter .env content.
const environmentFileTemplate = `# Environment variables
# Copy this file and fill in real values. Never commit secrets.

DEBUG=True
SECRET_KEY=change-me
DATABASE_URL=sqlite:///db.sqlite3
ALLOWED_HOSTS=localhost,127.0.0.1
`

// CheckResult reports the state of the local Python toolchain.
type CheckResult struct {
	// PythonPath is the interpreter used for the check.
	PythonPath string
	// PythonVersion is the interpreter's reported version string.
	PythonVersion string
	// PipVersion is pip's reported version string; empty when pip is missing.
	PipVersion string
	// VirtualEnvironmentPresent reports whether a venv directory exists in
	// the inspected project directory.
	VirtualEnvironmentPresent bool
}

// CreateVirtualEnvironment runs python -m venv in projectDirectory. An
// existing environment directory is an error rather than silently reused.
func CreateVirtualEnvironment(ctx context.Context, projectDirectory string, environmentName string) (string, error) {
	if environmentName == "" {
		environmentName = DefaultVirtualEnvironmentName
	}
	environmentPath := filepath.Join(projectDirectory, environmentName)
	if _, statError := os.Stat(environmentPath); statError == nil {
		return "", fmt.Errorf("virtual environment already exists: %s", environmentPath)
	}

	pythonExecutable, detectionError := runner.DetectPythonExecutable(ctx)
	if detectionError != nil {
		return "", detectionError
	}
	if _, runError := runner.Run(ctx, projectDirectory, pythonExecutable, "-m", "venv", environmentName); runError != nil {
		return "", fmt.Errorf("failed to create virtual environment: %w", runError)
	}
	return environmentPath, nil
}

// RemoveVirtualEnvironment deletes the named environment directory. Refuses
// to remove a directory that does not look like a virtual environment.
func RemoveVirtualEnvironment(projectDirectory string, environmentName string) error {
	if environmentName == "" {
		environmentName = DefaultVirtualEnvironmentName
	}
	environmentPath := filepath.Join(projectDirectory, environmentName)
	if _, statError := os.Stat(environmentPath); statError != nil {
		return fmt.Errorf("virtual environment not found: %s", environmentPath)
	}
	if !looksLikeVirtualEnvironment(environmentPath) {
		return fmt.Errorf("%s does not look like a virtual environment; refusing to remove", environmentPath)
	}
	if removeError := os.RemoveAll(environmentPath); removeError != nil {
		return fmt.Errorf("failed to remove %s: %w", environmentPath, removeError)
	}
	return nil
}

// looksLikeVirtualEnvironment checks for the pyvenv.cfg marker that
// python -m venv writes.
func looksLikeVirtualEnvironment(environmentPath string) bool {
	_, statError := os.Stat(filepath.Join(environmentPath, "pyvenv.cfg"))
	return statError == nil
}

// WriteTemplate writes the starter .env file into projectDirectory. An
// existing .env is never overwritten.
func WriteTemplate(projectDirectory string) (string, error) {
	environmentFilePath := filepath.Join(projectDirectory, EnvironmentFileName)
	if _, statError := os.Stat(environmentFilePath); statError == nil {
		return "", fmt.Errorf("environment file already exists: %s", environmentFilePath)
	}
	if writeError := os.WriteFile(environmentFilePath, []byte(environmentFileTemplate), 0o600); writeError != nil {
		return "", fmt.Errorf("failed to write %s: %w", environmentFilePath, writeError)
	}
	return environmentFilePath, nil
}

// Check inspects the local Python toolchain and the project directory.
func Check(ctx context.Context, projectDirectory string) (CheckResult, error) {
	pythonExecutable, detectionError := runner.DetectPythonExecutable(ctx)
	if detectionError != nil {
		return CheckResult{}, detectionError
	}

	result := CheckResult{PythonPath: pythonExecutable}

	pythonVersion, versionError := runner.Run(ctx, projectDirectory, pythonExecutable, "--version")
	if versionError != nil {
		return CheckResult{}, fmt.Errorf("failed to query python version: %w", versionError)
	}
	result.PythonVersion = pythonVersion

	if pipVersion, pipError := runner.Run(ctx, projectDirectory, pythonExecutable, "-m", "pip", "--version"); pipError == nil {
		result.PipVersion = pipVersion
	}

	result.VirtualEnvironmentPresent = looksLikeVirtualEnvironment(filepath.Join(projectDirectory, DefaultVirtualEnvironmentName)) ||
		looksLikeVirtualEnvironment(filepath.Join(projectDirectory, ".venv"))
	return result, nil
}
