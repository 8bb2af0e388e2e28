package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/fixup"
	"github.com/boshu2/skeptic/internal/report"
)

var (
	fixupRulesFile   string
	fixupBackup      bool
	fixupConcurrency int
)

var fixupCmd = &cobra.Command{
	Use:   "fixup [root]",
	Short: "Apply regex rewrite rules to a source tree",
	Long: `Apply a YAML rule set of regex rewrites: strip mock imports,
scrub success banners, normalize assertions. Files are rewritten
atomically; use --dry-run to preview and --backup to keep .bak copies.

Rules file:
  rules:
    - name: strip-magicmock
      glob: "*.py"
      pattern: '^from unittest\.mock import .*$'
      replace: ""

Examples:
  skep fixup --rules rules.yaml --dry-run
  skep fixup ./src --rules rules.yaml --backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFixup,
}

func init() {
	rootCmd.AddCommand(fixupCmd)
	fixupCmd.Flags().StringVar(&fixupRulesFile, "rules", "", "YAML rules file (required)")
	fixupCmd.Flags().BoolVar(&fixupBackup, "backup", false, "Write <file>.bak beside each modified file")
	fixupCmd.Flags().IntVar(&fixupConcurrency, "concurrency", 0, "Parallel file processing (0 = CPU count)")
	_ = fixupCmd.MarkFlagRequired("rules")
}

func runFixup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rules, err := fixup.LoadRules(fixupRulesFile)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	log := newLogger(cfg)
	log.Debug().Str("root", absRoot).Int("rules", len(rules.Rules)).Bool("dry_run", GetDryRun()).Msg("fixup started")

	summary, err := rules.Apply(fixup.ApplyOptions{
		Root:        absRoot,
		DryRun:      GetDryRun(),
		Backup:      fixupBackup,
		Concurrency: fixupConcurrency,
	})
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return writeFixupTable(summary)
}

func writeFixupTable(summary *fixup.Summary) error {
	if len(summary.Changes) > 0 {
		table := report.NewTable(os.Stdout, "FILE", "RULE", "REPLACEMENTS")
		for _, c := range summary.Changes {
			table.AddRow(c.File, c.Rule, strconv.Itoa(c.Replacements))
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Println()
	}

	mode := ""
	if summary.DryRun {
		mode = " (dry-run)"
	}
	fmt.Printf("Examined %d files, changed %d%s\n", summary.FilesExamined, summary.FilesChanged, mode)
	return nil
}
