package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/devkit-tools/devkit/internal/cli"
	"github.com/devkit-tools/devkit/internal/config"
	"github.com/devkit-tools/devkit/internal/utils"
)

// main is the entry point for the devkit command.
func main() {
	configuration, configurationError := config.Load(config.LoadOptions{})
	if configurationError != nil {
		panic(fmt.Errorf("failed to load configuration: %w", configurationError))
	}
	if validationError := configuration.Validate(); validationError != nil {
		panic(validationError)
	}

	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(configuration.LogLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if applicationExecutionError := cli.Execute(ctx, loggerInstance, configuration); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
