// Package config provides configuration management for skeptic.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (SKEPTIC_*)
// 3. Project config (.skeptic/config.yaml in cwd)
// 4. Home config (~/.skeptic/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all skeptic configuration.
type Config struct {
	// Output controls the default output format (table, json, markdown).
	Output string `yaml:"output" json:"output"`

	// BaseDir is the skeptic data directory (default: .skeptic).
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Runner settings
	Runner RunnerConfig `yaml:"runner" json:"runner"`

	// Hunt settings
	Hunt HuntConfig `yaml:"hunt" json:"hunt"`

	// Report settings
	Report ReportConfig `yaml:"report" json:"report"`

	// Watch settings
	Watch WatchConfig `yaml:"watch" json:"watch"`
}

// RunnerConfig holds test execution settings.
type RunnerConfig struct {
	// PytestCommand is the command used for pytest cases. Default: "pytest".
	PytestCommand string `yaml:"pytest_command" json:"pytest_command"`
	// GoCommand is the command used for gotest cases. Default: "go".
	GoCommand string `yaml:"go_command" json:"go_command"`
	// PythonCommand is the python interpreter. Default: "python3".
	PythonCommand string `yaml:"python_command" json:"python_command"`
	// Shell runs raw command cases. Default: "sh".
	Shell string `yaml:"shell" json:"shell"`
	// Parallelism caps concurrent cases (0 = number of CPUs).
	Parallelism int `yaml:"parallelism" json:"parallelism"`
	// DefaultTimeout is the per-case timeout when a case sets none.
	// Default: "5m".
	DefaultTimeout string `yaml:"default_timeout" json:"default_timeout"`
}

// HuntConfig holds bug-hunt scan settings.
type HuntConfig struct {
	// Excludes are extra directory names skipped during scans.
	Excludes []string `yaml:"excludes" json:"excludes"`
	// Concurrency caps parallel file scans (0 = number of CPUs).
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	// Formats lists the report files written per run (json, markdown).
	Formats []string `yaml:"formats" json:"formats"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Debounce is how long to wait after the last file event before
	// re-running. Default: "500ms".
	Debounce string `yaml:"debounce" json:"debounce"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput         = "table"
	defaultBaseDir        = ".skeptic"
	defaultDefaultTimeout = "5m"
	defaultDebounce       = "500ms"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		BaseDir: defaultBaseDir,
		Verbose: false,
		Runner: RunnerConfig{
			PytestCommand:  "pytest",
			GoCommand:      "go",
			PythonCommand:  "python3",
			Shell:          "sh",
			Parallelism:    0,
			DefaultTimeout: defaultDefaultTimeout,
		},
		Hunt: HuntConfig{
			Excludes:    nil,
			Concurrency: 0,
		},
		Report: ReportConfig{
			Formats: []string{"json", "markdown"},
		},
		Watch: WatchConfig{
			Debounce: defaultDebounce,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skeptic", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("SKEPTIC_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".skeptic", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("SKEPTIC_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("SKEPTIC_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if os.Getenv("SKEPTIC_VERBOSE") == "true" || os.Getenv("SKEPTIC_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("SKEPTIC_PYTEST_COMMAND"); v != "" {
		cfg.Runner.PytestCommand = v
	}
	if v := os.Getenv("SKEPTIC_GO_COMMAND"); v != "" {
		cfg.Runner.GoCommand = v
	}
	if v := os.Getenv("SKEPTIC_PYTHON_COMMAND"); v != "" {
		cfg.Runner.PythonCommand = v
	}
	if v := os.Getenv("SKEPTIC_SHELL"); v != "" {
		cfg.Runner.Shell = v
	}
	if v := os.Getenv("SKEPTIC_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Runner.Parallelism = n
		}
	}
	if v := os.Getenv("SKEPTIC_DEFAULT_TIMEOUT"); v != "" {
		cfg.Runner.DefaultTimeout = v
	}
	if v := os.Getenv("SKEPTIC_WATCH_DEBOUNCE"); v != "" {
		cfg.Watch.Debounce = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Zero values in src never override dst.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.BaseDir, src.BaseDir)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeRunner(&dst.Runner, &src.Runner)
	mergeHunt(&dst.Hunt, &src.Hunt)
	mergeReport(&dst.Report, &src.Report)
	mergeWatch(&dst.Watch, &src.Watch)

	return dst
}

func mergeRunner(dst, src *RunnerConfig) {
	mergeStr(&dst.PytestCommand, src.PytestCommand)
	mergeStr(&dst.GoCommand, src.GoCommand)
	mergeStr(&dst.PythonCommand, src.PythonCommand)
	mergeStr(&dst.Shell, src.Shell)
	mergeInt(&dst.Parallelism, src.Parallelism)
	mergeStr(&dst.DefaultTimeout, src.DefaultTimeout)
}

func mergeHunt(dst, src *HuntConfig) {
	if len(src.Excludes) > 0 {
		dst.Excludes = src.Excludes
	}
	mergeInt(&dst.Concurrency, src.Concurrency)
}

func mergeReport(dst, src *ReportConfig) {
	if len(src.Formats) > 0 {
		dst.Formats = src.Formats
	}
}

func mergeWatch(dst, src *WatchConfig) {
	mergeStr(&dst.Debounce, src.Debounce)
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.skeptic/config.yaml"
	SourceProject Source = ".skeptic/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}

	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}

	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output         resolved `json:"output"`
	BaseDir        resolved `json:"base_dir"`
	Verbose        resolved `json:"verbose"`
	PytestCommand  resolved `json:"pytest_command"`
	GoCommand      resolved `json:"go_command"`
	PythonCommand  resolved `json:"python_command"`
	Shell          resolved `json:"shell"`
	DefaultTimeout resolved `json:"default_timeout"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput, flagBaseDir string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeOutput, homeBaseDir string
	var homeVerbose bool
	var homePytest, homeGo, homePython, homeShell, homeTimeout string
	if homeConfig != nil {
		homeOutput = homeConfig.Output
		homeBaseDir = homeConfig.BaseDir
		homeVerbose = homeConfig.Verbose
		homePytest = homeConfig.Runner.PytestCommand
		homeGo = homeConfig.Runner.GoCommand
		homePython = homeConfig.Runner.PythonCommand
		homeShell = homeConfig.Runner.Shell
		homeTimeout = homeConfig.Runner.DefaultTimeout
	}

	var projectOutput, projectBaseDir string
	var projectVerbose bool
	var projectPytest, projectGo, projectPython, projectShell, projectTimeout string
	if projectConfig != nil {
		projectOutput = projectConfig.Output
		projectBaseDir = projectConfig.BaseDir
		projectVerbose = projectConfig.Verbose
		projectPytest = projectConfig.Runner.PytestCommand
		projectGo = projectConfig.Runner.GoCommand
		projectPython = projectConfig.Runner.PythonCommand
		projectShell = projectConfig.Runner.Shell
		projectTimeout = projectConfig.Runner.DefaultTimeout
	}

	envOutput, _ := getEnvString("SKEPTIC_OUTPUT")
	envBaseDir, _ := getEnvString("SKEPTIC_BASE_DIR")
	envVerbose, envVerboseSet := getEnvBool("SKEPTIC_VERBOSE")
	envPytest, _ := getEnvString("SKEPTIC_PYTEST_COMMAND")
	envGo, _ := getEnvString("SKEPTIC_GO_COMMAND")
	envPython, _ := getEnvString("SKEPTIC_PYTHON_COMMAND")
	envShell, _ := getEnvString("SKEPTIC_SHELL")
	envTimeout, _ := getEnvString("SKEPTIC_DEFAULT_TIMEOUT")

	rc := &ResolvedConfig{
		Output:         resolveStringField(homeOutput, projectOutput, envOutput, flagOutput, defaultOutput),
		BaseDir:        resolveStringField(homeBaseDir, projectBaseDir, envBaseDir, flagBaseDir, defaultBaseDir),
		Verbose:        resolved{Value: false, Source: SourceDefault},
		PytestCommand:  resolveStringField(homePytest, projectPytest, envPytest, "", "pytest"),
		GoCommand:      resolveStringField(homeGo, projectGo, envGo, "", "go"),
		PythonCommand:  resolveStringField(homePython, projectPython, envPython, "", "python3"),
		Shell:          resolveStringField(homeShell, projectShell, envShell, "", "sh"),
		DefaultTimeout: resolveStringField(homeTimeout, projectTimeout, envTimeout, "", defaultDefaultTimeout),
	}

	if homeVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if projectVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
