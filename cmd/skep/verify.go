package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/evidence"
	"github.com/boshu2/skeptic/internal/verify"
)

var (
	verifyHoneypot      bool
	verifyExpectFail    bool
	verifyMinDuration   string
	verifyMaxDuration   string
	verifyRequireOutput []string
	verifyForbidOutput  []string
	verifyMinTests      int
)

var verifyCmd = &cobra.Command{
	Use:   "verify <evidence.json>",
	Short: "Verify a single evidence file against expectations",
	Long: `Score one piece of captured evidence without re-running anything.

The evidence file is the JSON produced by 'skep run' (the "evidence"
field of a case), or any JSON matching that shape. Expectations are
given as flags.

Examples:
  skep verify evidence.json --min-duration 100ms --min-tests 5
  skep verify evidence.json --honeypot
  skep verify evidence.json --require-output "10 passed" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&verifyHoneypot, "honeypot", false, "Evidence comes from a honeypot case (must fail)")
	verifyCmd.Flags().BoolVar(&verifyExpectFail, "expect-fail", false, "The case is expected to fail")
	verifyCmd.Flags().StringVar(&verifyMinDuration, "min-duration", "", "Minimum believable duration (e.g. 100ms)")
	verifyCmd.Flags().StringVar(&verifyMaxDuration, "max-duration", "", "Maximum believable duration (e.g. 10m)")
	verifyCmd.Flags().StringArrayVar(&verifyRequireOutput, "require-output", nil, "Substring that must appear in the output (repeatable)")
	verifyCmd.Flags().StringArrayVar(&verifyForbidOutput, "forbid-output", nil, "Regex that must not match the output (repeatable)")
	verifyCmd.Flags().IntVar(&verifyMinTests, "min-tests", 0, "Minimum number of tests the run must report")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read evidence: %w", err)
	}

	var ev evidence.Evidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("parse evidence: %w", err)
	}

	exp, err := verifyExpectation()
	if err != nil {
		return err
	}

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

func verifyExpectation() (evidence.Expectation, error) {
	exp := evidence.Expectation{
		Honeypot:      verifyHoneypot,
		ExpectFail:    verifyExpectFail,
		RequireOutput: verifyRequireOutput,
		ForbidOutput:  verifyForbidOutput,
		MinTests:      verifyMinTests,
	}

	var err error
	if verifyMinDuration != "" {
		if exp.MinDuration, err = time.ParseDuration(verifyMinDuration); err != nil {
			return exp, fmt.Errorf("min-duration: %w", err)
		}
	}
	if verifyMaxDuration != "" {
		if exp.MaxDuration, err = time.ParseDuration(verifyMaxDuration); err != nil {
			return exp, fmt.Errorf("max-duration: %w", err)
		}
	}
	return exp, nil
}
