package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/config"
	"github.com/boshu2/skeptic/internal/logging"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	baseDir string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "skep",
	Short: "Skeptical test-result verification CLI",
	Long: `skep verifies that test results are real.

"A green checkmark is a claim, not a fact."

Core Commands:
  run      Run a suite and skeptically verify the evidence
  verify   Verify a single evidence file against expectations
  hunt     Scan a source tree for fabrication smells
  fixup    Apply regex rewrite rules (mock removal, banner scrubbing)
  ledger   Inspect the tamper-evident run history
  watch    Re-run a suite when source files change

Every run appends to a hash-chained ledger under .skeptic/ so the
history itself can be audited with 'skep ledger verify'.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json, markdown)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Skeptic data directory (default: .skeptic)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.skeptic/config.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("SKEPTIC_CONFIG", path)
}

// loadConfig resolves the effective configuration with global flag overrides.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{Verbose: verbose}
	if rootCmd.PersistentFlags().Changed("output") {
		overrides.Output = output
	}
	if rootCmd.PersistentFlags().Changed("base-dir") {
		overrides.BaseDir = baseDir
	}
	return config.Load(overrides)
}

// newLogger builds the command logger from resolved config.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Options{Verbose: cfg.Verbose})
}
