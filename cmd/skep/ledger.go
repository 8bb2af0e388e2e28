package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/ledger"
	"github.com/boshu2/skeptic/internal/report"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the tamper-evident run history",
	Long: `The ledger is an append-only, hash-chained JSONL file recording
every verification run. Each record chains to the previous record's
hash, so edits to history are detectable.

Subcommands:
  list    Show all ledger events
  verify  Check the hash chain end to end
  show    Show the events of one run`,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all ledger events",
	RunE:  runLedgerList,
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the hash chain end to end",
	RunE:  runLedgerVerify,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the events of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerVerifyCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	records, err := ledger.Load(cfg.BaseDir)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("Ledger is empty.")
		return nil
	}
	return writeLedgerTable(records)
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	result, err := ledger.Verify(cfg.BaseDir)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Pass {
		fmt.Printf("Ledger chain intact: %d record(s)\n", result.RecordCount)
		return nil
	}
	fmt.Printf("Ledger chain BROKEN at record %d of %d: %s\n",
		result.FirstBrokenIndex, result.RecordCount, result.Message)
	return nil
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	records, err := ledger.RunRecords(cfg.BaseDir, args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("run not found: %s", args[0])
		}
		return err
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeLedgerTable(records)
}

func writeLedgerTable(records []ledger.Record) error {
	table := report.NewTable(os.Stdout, "TS", "RUN", "SUITE", "ACTION")
	table.SetMaxWidth(1, 12)
	for _, r := range records {
		table.AddRow(r.TS, r.RunID, r.Suite, r.Action)
	}
	return table.Render()
}
