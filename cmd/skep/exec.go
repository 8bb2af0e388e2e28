package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/runner"
	"github.com/boshu2/skeptic/internal/verify"
)

var (
	execKind    string
	execTimeout string
	execWorkdir string
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <args...>",
	Short: "Run one command, scrape it, and verify the evidence",
	Long: `One-off verification without a suite file: execute a single test
command, scrape its output for pass/fail counts, and score the evidence
against expectations given as flags. The verify flags (--honeypot,
--min-duration, --require-output, ...) apply here too.

Examples:
  skep exec --kind pytest -- tests/ -q
  skep exec --kind gotest --min-tests 10 -- ./...
  skep exec --min-duration 200ms -- make test`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVar(&execKind, "kind", "command", "Runner kind (pytest, gotest, command)")
	execCmd.Flags().StringVar(&execTimeout, "timeout", "", "Timeout for the command (default: config default_timeout)")
	execCmd.Flags().StringVar(&execWorkdir, "workdir", "", "Working directory for the command")

	execCmd.Flags().BoolVar(&verifyHoneypot, "honeypot", false, "The command is a honeypot (must fail)")
	execCmd.Flags().BoolVar(&verifyExpectFail, "expect-fail", false, "The command is expected to fail")
	execCmd.Flags().StringVar(&verifyMinDuration, "min-duration", "", "Minimum believable duration (e.g. 100ms)")
	execCmd.Flags().StringVar(&verifyMaxDuration, "max-duration", "", "Maximum believable duration (e.g. 10m)")
	execCmd.Flags().StringArrayVar(&verifyRequireOutput, "require-output", nil, "Substring that must appear in the output (repeatable)")
	execCmd.Flags().StringArrayVar(&verifyForbidOutput, "forbid-output", nil, "Regex that must not match the output (repeatable)")
	execCmd.Flags().IntVar(&verifyMinTests, "min-tests", 0, "Minimum number of tests the run must report")
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := runner.ValidateKind(execKind); err != nil {
		return err
	}

	timeout := cfg.Runner.DefaultTimeout
	if execTimeout != "" {
		timeout = execTimeout
	}
	parsedTimeout, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", timeout, err)
	}

	exp, err := verifyExpectation()
	if err != nil {
		return err
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would execute %s case: %v\n", execKind, args)
		return nil
	}

	tc, err := resolveToolchain(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg)
	spec := runner.Spec{
		Case:    "exec",
		Kind:    execKind,
		Args:    args,
		Workdir: execWorkdir,
		Timeout: parsedTimeout,
	}

	ev, err := runner.Run(ctx, tc, spec)
	if err != nil {
		return err
	}
	log.Debug().Str("command", ev.Command).Int("exit", ev.ExitCode).Dur("duration", ev.Duration).Msg("command finished")

	v, err := verify.Verify(ev, exp)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
	} else {
		fmt.Print(verify.FormatChecksSummary(v))
	}

	if v.Verdict == verify.VerdictFake {
		return fmt.Errorf("verdict: FAKE")
	}
	return nil
}
