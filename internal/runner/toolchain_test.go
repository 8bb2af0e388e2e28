package runner

import "testing"

func TestResolveToolchain_Defaults(t *testing.T) {
	tc, err := ResolveToolchain(ResolveToolchainOptions{
		EnvLookup: func(string) string { return "" },
	})
	if err != nil {
		t.Fatalf("ResolveToolchain: %v", err)
	}
	if tc.PytestCommand != DefaultPytestCommand {
		t.Errorf("pytest = %q, want %q", tc.PytestCommand, DefaultPytestCommand)
	}
	if tc.GoCommand != DefaultGoCommand {
		t.Errorf("go = %q, want %q", tc.GoCommand, DefaultGoCommand)
	}
	if tc.Shell != DefaultShell {
		t.Errorf("shell = %q, want %q", tc.Shell, DefaultShell)
	}
}

func TestResolveToolchain_Precedence(t *testing.T) {
	env := map[string]string{
		"SKEPTIC_PYTEST_COMMAND": "env-pytest",
		"SKEPTIC_GO_COMMAND":     "env-go",
	}

	tc, err := ResolveToolchain(ResolveToolchainOptions{
		Config: Toolchain{
			PytestCommand: "cfg-pytest",
			GoCommand:     "cfg-go",
			PythonCommand: "cfg-python",
		},
		FlagValues: Toolchain{PytestCommand: "flag-pytest"},
		FlagSet:    ToolchainFlagSet{PytestCommand: true},
		EnvLookup:  func(k string) string { return env[k] },
	})
	if err != nil {
		t.Fatalf("ResolveToolchain: %v", err)
	}

	// flag > env > config > default
	if tc.PytestCommand != "flag-pytest" {
		t.Errorf("pytest = %q, want flag value", tc.PytestCommand)
	}
	if tc.GoCommand != "env-go" {
		t.Errorf("go = %q, want env value", tc.GoCommand)
	}
	if tc.PythonCommand != "cfg-python" {
		t.Errorf("python = %q, want config value", tc.PythonCommand)
	}
	if tc.Shell != DefaultShell {
		t.Errorf("shell = %q, want default", tc.Shell)
	}
}

func TestResolveToolchain_WhitespaceFallsBack(t *testing.T) {
	tc, err := ResolveToolchain(ResolveToolchainOptions{
		Config:    Toolchain{PytestCommand: "   "},
		EnvLookup: func(string) string { return "" },
	})
	if err != nil {
		t.Fatalf("ResolveToolchain: %v", err)
	}
	if tc.PytestCommand != DefaultPytestCommand {
		t.Errorf("blank config value should fall back to default, got %q", tc.PytestCommand)
	}
}

func TestValidateKind(t *testing.T) {
	for _, kind := range []string{"pytest", "GOTEST", " command ", ""} {
		if err := ValidateKind(kind); err != nil {
			t.Errorf("ValidateKind(%q) = %v, want nil", kind, err)
		}
	}
	if err := ValidateKind("jest"); err == nil {
		t.Error("ValidateKind(jest) should fail")
	}
}

func TestCommandFor_Unknown(t *testing.T) {
	tc := Toolchain{}
	if _, err := tc.CommandFor("mocha"); err == nil {
		t.Error("expected error for unknown runner kind")
	}
}
