// Package main is the entry point for the taskdeck CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/taskdeck/internal/app"
	"github.com/runoshun/taskdeck/internal/cli"
	"github.com/runoshun/taskdeck/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	home, err := domain.HomeDir()
	if err != nil {
		return err
	}

	container, err := app.New(home)
	if err != nil {
		// A broken config file must not hide help and version output.
		if canRunWithoutContainer(args) {
			rootCmd := cli.NewRootCommand(nil, version)
			rootCmd.SetArgs(args)
			return rootCmd.Execute()
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func canRunWithoutContainer(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" || strings.HasPrefix(arg, "--help=") {
			return true
		}
	}
	return false
}
