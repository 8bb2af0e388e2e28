package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/config"
	"github.com/boshu2/skeptic/internal/runner"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check skeptic health",
	Long: `Run health checks on the skeptic installation.

Validates that the configured toolchain commands exist and the data
directory is writable. Optional tools are reported as warnings but do
not cause failure.

Examples:
  skep doctor
  skep doctor -o json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "DEGRADED", "UNHEALTHY"
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tc, err := resolveToolchain(cfg, nil)
	if err != nil {
		return err
	}

	out := summarizeDoctor(gatherDoctorChecks(cfg, tc))

	if cfg.Output == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		renderDoctorTable(os.Stdout, out)
	}

	if out.Result == "UNHEALTHY" {
		return fmt.Errorf("health checks failed")
	}
	return nil
}

func gatherDoctorChecks(cfg *config.Config, tc runner.Toolchain) []doctorCheck {
	return []doctorCheck{
		{Name: "skep CLI", Status: "pass", Detail: fmt.Sprintf("v%s", version), Required: true},
		checkCommand("shell", tc.Shell, true),
		checkCommand("pytest", tc.PytestCommand, false),
		checkCommand("go", tc.GoCommand, false),
		checkCommand("python", tc.PythonCommand, false),
		checkBaseDir(cfg.BaseDir),
	}
}

// checkCommand verifies a toolchain command is on PATH.
func checkCommand(name, command string, required bool) doctorCheck {
	check := doctorCheck{Name: name, Required: required}
	path, err := exec.LookPath(command)
	if err != nil {
		check.Detail = fmt.Sprintf("%q not found on PATH", command)
		if required {
			check.Status = "fail"
		} else {
			check.Status = "warn"
		}
		return check
	}
	check.Status = "pass"
	check.Detail = path
	return check
}

// checkBaseDir verifies the data directory exists or can be created.
func checkBaseDir(dir string) doctorCheck {
	check := doctorCheck{Name: "data dir", Required: true, Detail: dir}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.MkdirAll(dir, 0700); err != nil {
		check.Status = "fail"
		check.Detail = fmt.Sprintf("%s: %v", dir, err)
		return check
	}
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		check.Status = "fail"
		check.Detail = fmt.Sprintf("%s not writable: %v", dir, err)
		return check
	}
	_ = os.Remove(probe)
	check.Status = "pass"
	return check
}

func summarizeDoctor(checks []doctorCheck) doctorOutput {
	out := doctorOutput{Checks: checks, Result: "HEALTHY"}
	failed, warned := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			failed++
		case "warn":
			warned++
		}
	}
	switch {
	case failed > 0:
		out.Result = "UNHEALTHY"
		out.Summary = fmt.Sprintf("%d check(s) failed", failed)
	case warned > 0:
		out.Result = "DEGRADED"
		out.Summary = fmt.Sprintf("%d optional tool(s) missing", warned)
	default:
		out.Summary = "all checks passed"
	}
	return out
}

func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

func renderDoctorTable(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "skep doctor")
	fmt.Fprintln(w, "───────────")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}
	for _, c := range output.Checks {
		fmt.Fprintf(w, "%s %-*s  %s\n", doctorStatusIcon(c.Status), maxName, c.Name, c.Detail)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", output.Result, output.Summary)
}
