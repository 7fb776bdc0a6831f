// Package config provides configuration loading for the preprocessor.
// Supports YAML files, environment variables, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a preprocessing run.
type Config struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Budget     BudgetConfig     `yaml:"budget"`
	Validation ValidationConfig `yaml:"validation"`
	Mapping    MappingConfig    `yaml:"mapping"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SourcesConfig holds the input directories, one per document family.
// Positions are extracted from the budget PDFs themselves.
type SourcesConfig struct {
	BudgetDir  string `yaml:"budget_dir"`
	RevenueDir string `yaml:"revenue_dir"`
}

// OutputConfig holds the artifact output layout.
type OutputConfig struct {
	Root string `yaml:"root"`
}

// BudgetConfig holds per-period extraction tuning for the budget family.
type BudgetConfig struct {
	// EndPages maps a period ("2024-2025") to the last headline-table page.
	EndPages map[string]int `yaml:"end_pages"`
	// DefaultEndPage applies when a period has no entry in EndPages.
	DefaultEndPage int `yaml:"default_end_page"`
}

// EndPage returns the headline-table end page for a period.
func (b BudgetConfig) EndPage(period string) int {
	if p, ok := b.EndPages[period]; ok {
		return p
	}
	return b.DefaultEndPage
}

// ValidationConfig holds aggregate comparison tolerances.
type ValidationConfig struct {
	// SumTolerance is the allowed absolute deviation between a recomputed
	// sum and the transformed table's sum, in reporting units. Kept as a
	// decimal string so the cent-level default survives YAML round trips.
	SumTolerance string `yaml:"sum_tolerance"`
}

// Tolerance parses the configured sum tolerance.
func (v ValidationConfig) Tolerance() decimal.Decimal {
	d, err := decimal.NewFromString(v.SumTolerance)
	if err != nil {
		return decimal.New(1, -2)
	}
	return d
}

// MappingConfig holds the department category mapping source.
type MappingConfig struct {
	DepartmentCSV string `yaml:"department_csv"`
}

// HistoryConfig holds the optional run-history store location.
type HistoryConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns the configuration matching the conventional repo layout.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			BudgetDir:  "z_Data/ME",
			RevenueDir: "z_Data/ME General Fund Sources",
		},
		Output: OutputConfig{
			Root: "preprocessed_data",
		},
		Budget: BudgetConfig{
			EndPages: map[string]int{
				"2026-2027": 8,
				"2024-2025": 9,
				"2022-2023": 8,
				"2020-2021": 8,
				"2018-2019": 8,
				"2016-2017": 8,
			},
			DefaultEndPage: 8,
		},
		Validation: ValidationConfig{
			SumTolerance: "0.01", // one cent
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from an optional YAML file layered over defaults,
// then applies environment overrides. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PREPROCESSOR_BUDGET_DIR"); v != "" {
		cfg.Sources.BudgetDir = v
	}
	if v := os.Getenv("PREPROCESSOR_REVENUE_DIR"); v != "" {
		cfg.Sources.RevenueDir = v
	}
	if v := os.Getenv("PREPROCESSOR_OUTPUT_ROOT"); v != "" {
		cfg.Output.Root = v
	}
	if v := os.Getenv("PREPROCESSOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PREPROCESSOR_SUM_TOLERANCE"); v != "" {
		cfg.Validation.SumTolerance = v
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Root) == "" {
		return fmt.Errorf("output.root must not be empty")
	}
	if c.Budget.DefaultEndPage < 2 {
		return fmt.Errorf("budget.default_end_page must be at least 2, got %d", c.Budget.DefaultEndPage)
	}
	if tol, err := decimal.NewFromString(c.Validation.SumTolerance); err != nil {
		return fmt.Errorf("validation.sum_tolerance %q is not a number", c.Validation.SumTolerance)
	} else if tol.IsNegative() {
		return fmt.Errorf("validation.sum_tolerance must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// BudgetOutputDir returns the directory holding budget artifacts.
func (c *Config) BudgetOutputDir() string {
	return filepath.Join(c.Output.Root, "budgets")
}

// RevenueOutputDir returns the directory holding revenue artifacts.
func (c *Config) RevenueOutputDir() string {
	return filepath.Join(c.Output.Root, "revenue")
}

// PositionsOutputDir returns the directory holding positions artifacts.
func (c *Config) PositionsOutputDir() string {
	return filepath.Join(c.Output.Root, "positions")
}
