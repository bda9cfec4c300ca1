// Package scaffold drives Django project management: bootstrapping projects
// and apps, running migrations, and serving the development server.
package scaffold

import (
	"context"
	"fmt"

	"github.com/devkit-tools/devkit/internal/runner"
)

// DefaultServeAddress is the bind address used by Serve when none is given.
const DefaultServeAddress = "127.0.0.1:8000"

// djangoAdminExecutable is the command used to bootstrap new projects before
// a manage.py exists.
const djangoAdminExecutable = "django-admin"

// StartProject creates a new Django project named projectName in
// workingDirectory via django-admin.
func StartProject(ctx context.Context, workingDirectory string, projectName string) error {
	if projectName == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if _, runError := runner.Run(ctx, workingDirectory, djangoAdminExecutable, "startproject", projectName); runError != nil {
		return fmt.Errorf("failed to start project %s: %w", projectName, runError)
	}
	return nil
}

// StartApp creates a new Django app inside the nearest project containing a
// manage.py above workingDirectory.
func StartApp(ctx context.Context, workingDirectory string, appName string) error {
	if appName == "" {
		return fmt.Errorf("app name must not be empty")
	}
	return runManage(ctx, workingDirectory, "startapp", appName)
}

// MakeMigrations generates migrations, optionally limited to a single app.
func MakeMigrations(ctx context.Context, workingDirectory string, appName string) error {
	manageArguments := []string{"makemigrations"}
	if appName != "" {
		manageArguments = append(manageArguments, appName)
	}
	return runManage(ctx, workingDirectory, manageArguments...)
}

// Migrate applies pending migrations.
func Migrate(ctx context.Context, workingDirectory string) error {
	return runManage(ctx, workingDirectory, "migrate")
}

// Serve runs the development server attached to the caller's terminal until
// the context is cancelled or the server exits.
func Serve(ctx context.Context, workingDirectory string, address string) error {
	if address == "" {
		address = DefaultServeAddress
	}
	projectDirectory, pythonExecutable, resolveError := resolveProject(ctx, workingDirectory)
	if resolveError != nil {
		return resolveError
	}
	return runner.RunInteractive(ctx, projectDirectory, pythonExecutable, runner.ManageScriptName, "runserver", address)
}

// Check runs Django's system check framework.
func Check(ctx context.Context, workingDirectory string) error {
	return runManage(ctx, workingDirectory, "check")
}

// runManage executes manage.py with the given arguments in the nearest
// project directory above workingDirectory.
func runManage(ctx context.Context, workingDirectory string, manageArguments ...string) error {
	projectDirectory, pythonExecutable, resolveError := resolveProject(ctx, workingDirectory)
	if resolveError != nil {
		return resolveError
	}
	commandArguments := append([]string{runner.ManageScriptName}, manageArguments...)
	if _, runError := runner.Run(ctx, projectDirectory, pythonExecutable, commandArguments...); runError != nil {
		return fmt.Errorf("manage.py %s failed: %w", manageArguments[0], runError)
	}
	return nil
}

// resolveProject locates the Django project directory and a compatible
// Python interpreter.
func resolveProject(ctx context.Context, workingDirectory string) (string, string, error) {
	projectDirectory, findError := runner.FindManageScript(workingDirectory)
	if findError != nil {
		return "", "", findError
	}
	pythonExecutable, detectionError := runner.DetectPythonExecutable(ctx)
	if detectionError != nil {
		return "", "", detectionError
	}
	return projectDirectory, pythonExecutable, nil
}
