package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/hunter"
	"github.com/boshu2/skeptic/internal/report"
)

var (
	huntExcludes    []string
	huntConcurrency int
)

var huntCmd = &cobra.Command{
	Use:   "hunt [root]",
	Short: "Scan a source tree for fabrication smells",
	Long: `Walk a source tree and flag the patterns fabricated test suites
hide behind:

  - mocks leaking into non-test code
  - assertion-free test functions
  - trivially true assertions (assert True, require.True(t, true))
  - sleep/random calls simulating work
  - hardcoded success banners

Examples:
  skep hunt
  skep hunt ./services/api --exclude generated
  skep hunt -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHunt,
}

func init() {
	rootCmd.AddCommand(huntCmd)
	huntCmd.Flags().StringArrayVar(&huntExcludes, "exclude", nil, "Directory name to skip (repeatable)")
	huntCmd.Flags().IntVar(&huntConcurrency, "concurrency", 0, "Parallel file scans (0 = CPU count)")
}

func runHunt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	if GetDryRun() {
		fmt.Printf("[dry-run] Would hunt for fabrication smells under: %s\n", absRoot)
		return nil
	}

	excludes := append([]string{}, cfg.Hunt.Excludes...)
	excludes = append(excludes, huntExcludes...)

	concurrency := huntConcurrency
	if concurrency == 0 {
		concurrency = cfg.Hunt.Concurrency
	}

	log := newLogger(cfg)
	log.Debug().Str("root", absRoot).Strs("excludes", excludes).Msg("hunt started")

	result, err := hunter.Scan(hunter.ScanOptions{
		Root:        absRoot,
		Excludes:    excludes,
		Concurrency: concurrency,
	})
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if err := writeHuntTable(result); err != nil {
		return err
	}

	if result.Health == hunter.HealthCritical {
		return fmt.Errorf("critical findings detected")
	}
	return nil
}

func writeHuntTable(result *hunter.ScanResult) error {
	if len(result.Findings) > 0 {
		table := report.NewTable(os.Stdout, "FILE", "LINE", "SEVERITY", "CATEGORY", "MESSAGE")
		table.SetMaxWidth(4, 60)
		for _, f := range result.Findings {
			table.AddRow(f.File, strconv.Itoa(f.Line), f.Severity, f.Category, f.Message)
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Println()
	}

	categories := make([]string, 0, len(result.ByCategory))
	for c := range result.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("  %-24s %d\n", c, result.ByCategory[c])
	}

	fmt.Printf("Scanned %d files: %d finding(s), health %s\n",
		result.FilesScanned, len(result.Findings), result.Health)
	return nil
}
