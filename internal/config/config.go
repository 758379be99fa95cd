package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the audit configuration
type Config struct {
	// Walk settings
	Workers int      `mapstructure:"workers"` // number of hashing and scanning goroutines
	Exclude []string `mapstructure:"exclude"` // directory names to skip

	// Duplicate settings
	HashAlgorithm  string   `mapstructure:"hash_algorithm"`  // sha256, xxhash (report only)
	BackupSuffixes []string `mapstructure:"backup_suffixes"` // backup file suffixes

	// Scan settings
	MaxContentSize string   `mapstructure:"max_content_size"` // largest file whose content is read
	ContentDirs    []string `mapstructure:"content_dirs"`     // directories where scripts are suspicious
	Checks         []string `mapstructure:"checks"`           // enabled checks, empty means all
	RulesPath      string   `mapstructure:"rules_path"`       // extra YAML rule file or directory

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // json, text, markdown
	OutputFile   string `mapstructure:"output_file"`   // output file path

	// AI settings
	AI AIConfig `mapstructure:"ai"` // optional triage of findings
}

// AIConfig holds AI triage configuration
type AIConfig struct {
	Enabled     bool   `mapstructure:"enabled"`      // Enable AI triage
	Model       string `mapstructure:"model"`        // Model: haiku, sonnet, opus
	APIToken    string `mapstructure:"token"`        // Anthropic API token
	MaxFindings int    `mapstructure:"max_findings"` // Cost control limit
	Timeout     int    `mapstructure:"timeout"`      // Seconds per request
	Language    string `mapstructure:"language"`     // Report language: en, ru, es
}

// Valid enum values
var (
	ReportFormats = []string{"json", "text", "txt", "markdown", "md"}
	CheckNames    = []string{"filename", "mime", "content", "permission"}
	AIModels      = []string{"haiku", "sonnet", "opus"}
)

// LoadConfig loads configuration from defaults, an optional YAML file and
// RAYZGYPROC_* environment variables
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", runtime.NumCPU()*2)
	v.SetDefault("exclude", []string{".git", "node_modules", "vendor", ".svn", ".hg", "wp-admin", "wp-includes"})
	v.SetDefault("hash_algorithm", "sha256")
	v.SetDefault("backup_suffixes", []string{".bak"})
	v.SetDefault("max_content_size", "10M")
	v.SetDefault("content_dirs", []string{"uploads"})
	v.SetDefault("checks", []string{})
	v.SetDefault("rules_path", "")
	v.SetDefault("report_format", "")
	v.SetDefault("output_file", "")

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "sonnet")
	v.SetDefault("ai.token", "")
	v.SetDefault("ai.max_findings", 50)
	v.SetDefault("ai.timeout", 30)
	v.SetDefault("ai.language", "en")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	// RAYZGYPROC_AI_TOKEN maps to ai.token
	v.SetEnvPrefix("RAYZGYPROC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enum settings
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ReportFormat != "" && !contains(ReportFormats, c.ReportFormat) {
		return fmt.Errorf("invalid report format %q: must be one of %s", c.ReportFormat, strings.Join(ReportFormats, ", "))
	}
	for _, check := range c.Checks {
		if !contains(CheckNames, check) {
			return fmt.Errorf("invalid check %q: must be one of %s", check, strings.Join(CheckNames, ", "))
		}
	}
	if c.AI.Enabled && !contains(AIModels, c.AI.Model) {
		return fmt.Errorf("invalid AI model %q: must be one of %s", c.AI.Model, strings.Join(AIModels, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
