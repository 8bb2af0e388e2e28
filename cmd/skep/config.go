package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/config"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and manage skeptic configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SKEPTIC_*)
  3. Project config (.skeptic/config.yaml)
  4. Home config (~/.skeptic/config.yaml)
  5. Defaults

Environment variables:
  SKEPTIC_CONFIG          - Explicit config file path
  SKEPTIC_OUTPUT          - Default output format (table, json, markdown)
  SKEPTIC_BASE_DIR        - Data directory path
  SKEPTIC_VERBOSE         - Enable verbose output (true/1)
  SKEPTIC_PYTEST_COMMAND  - Command for pytest cases (default: pytest)
  SKEPTIC_GO_COMMAND      - Command for gotest cases (default: go)
  SKEPTIC_PYTHON_COMMAND  - Python interpreter (default: python3)
  SKEPTIC_SHELL           - Shell for command cases (default: sh)
  SKEPTIC_PARALLELISM     - Concurrent cases
  SKEPTIC_DEFAULT_TIMEOUT - Per-case timeout when unset (default: 5m)
  SKEPTIC_WATCH_DEBOUNCE  - Watch-mode debounce (default: 500ms)

Examples:
  skep config --show           # Show resolved configuration
  skep config --show -o json   # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	flagOutput := ""
	if rootCmd.PersistentFlags().Changed("output") {
		flagOutput = GetOutput()
	}
	flagBaseDir := ""
	if rootCmd.PersistentFlags().Changed("base-dir") {
		flagBaseDir = baseDir
	}
	resolved := config.Resolve(flagOutput, flagBaseDir, GetVerbose())

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Skeptic Configuration")
	fmt.Println("=====================")
	fmt.Println()

	fmt.Println("Config files:")
	homeConfig := filepath.Join(os.Getenv("HOME"), ".skeptic", "config.yaml")
	if _, err := os.Stat(homeConfig); err == nil {
		fmt.Printf("  ✓ Home:    %s\n", homeConfig)
	} else {
		fmt.Printf("  ✗ Home:    %s (not found)\n", homeConfig)
	}

	cwd, _ := os.Getwd()
	projectConfig := filepath.Join(cwd, ".skeptic", "config.yaml")
	if _, err := os.Stat(projectConfig); err == nil {
		fmt.Printf("  ✓ Project: %s\n", projectConfig)
	} else {
		fmt.Printf("  ✗ Project: %s (not found)\n", projectConfig)
	}

	fmt.Println()
	fmt.Println("Resolved values:")
	fmt.Printf("  output:          %v  (from %s)\n", resolved.Output.Value, resolved.Output.Source)
	fmt.Printf("  base_dir:        %v  (from %s)\n", resolved.BaseDir.Value, resolved.BaseDir.Source)
	fmt.Printf("  verbose:         %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Printf("  pytest_command:  %v  (from %s)\n", resolved.PytestCommand.Value, resolved.PytestCommand.Source)
	fmt.Printf("  go_command:      %v  (from %s)\n", resolved.GoCommand.Value, resolved.GoCommand.Source)
	fmt.Printf("  python_command:  %v  (from %s)\n", resolved.PythonCommand.Value, resolved.PythonCommand.Source)
	fmt.Printf("  shell:           %v  (from %s)\n", resolved.Shell.Value, resolved.Shell.Source)
	fmt.Printf("  default_timeout: %v  (from %s)\n", resolved.DefaultTimeout.Value, resolved.DefaultTimeout.Source)

	fmt.Println()
	fmt.Println("Environment variables (if set):")
	envVars := []string{
		"SKEPTIC_CONFIG",
		"SKEPTIC_OUTPUT",
		"SKEPTIC_BASE_DIR",
		"SKEPTIC_VERBOSE",
		"SKEPTIC_PYTEST_COMMAND",
		"SKEPTIC_GO_COMMAND",
		"SKEPTIC_PYTHON_COMMAND",
		"SKEPTIC_SHELL",
		"SKEPTIC_PARALLELISM",
		"SKEPTIC_DEFAULT_TIMEOUT",
		"SKEPTIC_WATCH_DEBOUNCE",
	}
	anySet := false
	for _, env := range envVars {
		if v := os.Getenv(env); v != "" {
			fmt.Printf("  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Println("  (none set)")
	}

	return nil
}
