package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/config"
	"github.com/boshu2/skeptic/internal/ledger"
	"github.com/boshu2/skeptic/internal/report"
	"github.com/boshu2/skeptic/internal/runner"
	"github.com/boshu2/skeptic/internal/scenario"
	"github.com/boshu2/skeptic/internal/store"
	"github.com/boshu2/skeptic/internal/verify"
)

var (
	runParallelism int
	runNoSave      bool
	runPytestCmd   string
	runGoCmd       string
	runPythonCmd   string
	runShell       string
)

var runCmd = &cobra.Command{
	Use:   "run <suite.yaml>",
	Short: "Run a suite and skeptically verify the evidence",
	Long: `Execute every case in a suite definition, collect the evidence
(exit codes, output, durations, parsed test counts), and cross-examine it:

  - tests that finish faster than any real test could are suspicious
  - honeypot cases that pass prove the harness lies
  - exit code 0 with failures in the output is fabrication
  - required output fields must actually appear

Each run gets a UUID, is appended to the hash-chained ledger, and its
report is stored under the skeptic data directory.

Examples:
  skep run suites/unit.yaml
  skep run suites/unit.yaml -o json
  skep run suites/unit.yaml --parallelism 4 --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runParallelism, "parallelism", 0, "Concurrent cases (0 = suite setting or CPU count)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Skip report storage and ledger append")
	runCmd.Flags().StringVar(&runPytestCmd, "pytest-cmd", "", "Override the pytest command")
	runCmd.Flags().StringVar(&runGoCmd, "go-cmd", "", "Override the go command")
	runCmd.Flags().StringVar(&runPythonCmd, "python-cmd", "", "Override the python command")
	runCmd.Flags().StringVar(&runShell, "shell", "", "Override the shell for command cases")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would run and verify suite: %s\n", args[0])
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg)
	rep, err := executeSuite(ctx, cfg, log, cmd, args[0])
	if err != nil {
		return err
	}

	if err := writeReportOutput(cfg, rep); err != nil {
		return err
	}

	if fakes := rep.Verdicts[verify.VerdictFake]; fakes > 0 {
		return fmt.Errorf("%d case(s) judged FAKE", fakes)
	}
	return nil
}

// executeSuite runs, verifies, reports, and records one suite. Shared with
// the watch command.
func executeSuite(ctx context.Context, cfg *config.Config, log zerolog.Logger, cmd *cobra.Command, suitePath string) (*report.Report, error) {
	suite, err := scenario.Load(suitePath)
	if err != nil {
		return nil, err
	}

	tc, err := resolveToolchain(cfg, cmd)
	if err != nil {
		return nil, err
	}

	defaultTimeout, err := time.ParseDuration(cfg.Runner.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid default_timeout %q: %w", cfg.Runner.DefaultTimeout, err)
	}

	specs := make([]runner.Spec, len(suite.Cases))
	for i := range suite.Cases {
		spec := suite.Spec(&suite.Cases[i])
		if spec.Timeout == 0 {
			spec.Timeout = defaultTimeout
		}
		specs[i] = spec
	}

	parallelism := runParallelism
	if parallelism == 0 {
		parallelism = suite.Parallelism
	}
	if parallelism == 0 {
		parallelism = cfg.Runner.Parallelism
	}

	runID := uuid.NewString()
	log.Info().Str("run_id", runID).Str("suite", suite.Name).Int("cases", len(suite.Cases)).Msg("run started")

	if !runNoSave {
		_, err = ledger.Append(cfg.BaseDir, ledger.AppendInput{
			RunID:   runID,
			Suite:   suite.Name,
			Action:  "run.started",
			Details: map[string]any{"cases": len(suite.Cases), "suite_file": suitePath},
		})
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
	}

	results, errs := runner.RunAll(ctx, tc, specs, parallelism)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("run cases: %w", err)
	}

	verifications := make([]*verify.Verification, len(results))
	for i, ev := range results {
		v, err := verify.Verify(ev, suite.Cases[i].Expectation())
		if err != nil {
			return nil, fmt.Errorf("verify case %q: %w", ev.Case, err)
		}
		verifications[i] = v
		log.Debug().Str("case", v.Case).Str("verdict", v.Verdict).Float64("confidence", v.Confidence).Msg("case verified")
	}

	result := verify.Summarize(verifications)
	rep := report.New(runID, suite.Name, result)

	if !runNoSave {
		_, err = ledger.Append(cfg.BaseDir, ledger.AppendInput{
			RunID:  runID,
			Suite:  suite.Name,
			Action: "run.finished",
			Details: map[string]any{
				"score":    result.Score,
				"grade":    result.Grade,
				"health":   result.Health,
				"verdicts": result.Verdicts,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}

		st := store.New(
			store.WithBaseDir(cfg.BaseDir),
			store.WithFormatters(formattersFor(cfg.Report.Formats)...),
		)
		if err := st.Init(); err != nil {
			return nil, err
		}
		path, err := st.WriteReport(rep)
		if err != nil {
			return nil, fmt.Errorf("store report: %w", err)
		}
		log.Info().Str("run_id", runID).Str("report", path).Msg("report stored")
	}

	log.Info().
		Str("run_id", runID).
		Float64("score", result.Score).
		Str("grade", result.Grade).
		Str("health", result.Health).
		Msg("run finished")

	return rep, nil
}

// resolveToolchain applies flags > env > config > defaults.
func resolveToolchain(cfg *config.Config, cmd *cobra.Command) (runner.Toolchain, error) {
	opts := runner.ResolveToolchainOptions{
		Config: runner.Toolchain{
			PytestCommand: cfg.Runner.PytestCommand,
			GoCommand:     cfg.Runner.GoCommand,
			PythonCommand: cfg.Runner.PythonCommand,
			Shell:         cfg.Runner.Shell,
		},
	}
	if cmd != nil && cmd.Flags().Lookup("pytest-cmd") != nil {
		opts.FlagValues = runner.Toolchain{
			PytestCommand: runPytestCmd,
			GoCommand:     runGoCmd,
			PythonCommand: runPythonCmd,
			Shell:         runShell,
		}
		opts.FlagSet = runner.ToolchainFlagSet{
			PytestCommand: cmd.Flags().Changed("pytest-cmd"),
			GoCommand:     cmd.Flags().Changed("go-cmd"),
			PythonCommand: cmd.Flags().Changed("python-cmd"),
			Shell:         cmd.Flags().Changed("shell"),
		}
	}
	return runner.ResolveToolchain(opts)
}

// formattersFor maps config format names to report formatters. Unknown
// names are ignored; an empty result falls back to JSON.
func formattersFor(formats []string) []report.Formatter {
	var fs []report.Formatter
	for _, f := range formats {
		switch f {
		case "json":
			fs = append(fs, &report.JSONFormatter{})
		case "markdown", "md":
			fs = append(fs, &report.MarkdownFormatter{})
		}
	}
	if len(fs) == 0 {
		fs = append(fs, &report.JSONFormatter{})
	}
	return fs
}

// writeReportOutput renders a report to stdout in the selected format.
func writeReportOutput(cfg *config.Config, rep *report.Report) error {
	switch cfg.Output {
	case "json":
		return (&report.JSONFormatter{}).Format(os.Stdout, rep)
	case "markdown", "md":
		return (&report.MarkdownFormatter{}).Format(os.Stdout, rep)
	default:
		return report.WriteTable(os.Stdout, rep)
	}
}
