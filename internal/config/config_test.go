package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.HashAlgorithm != "sha256" {
		t.Errorf("HashAlgorithm = %v, want sha256", cfg.HashAlgorithm)
	}
	if cfg.MaxContentSize != "10M" {
		t.Errorf("MaxContentSize = %v, want 10M", cfg.MaxContentSize)
	}
	if len(cfg.BackupSuffixes) != 1 || cfg.BackupSuffixes[0] != ".bak" {
		t.Errorf("BackupSuffixes = %v, want [.bak]", cfg.BackupSuffixes)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want at least 1", cfg.Workers)
	}
	if cfg.AI.Enabled {
		t.Error("AI.Enabled = true, want false")
	}
	if cfg.AI.Model != "sonnet" {
		t.Errorf("AI.Model = %v, want sonnet", cfg.AI.Model)
	}

	for _, dir := range []string{".git", "wp-admin", "wp-includes"} {
		if !contains(cfg.Exclude, dir) {
			t.Errorf("Exclude = %v, missing %s", cfg.Exclude, dir)
		}
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("RAYZGYPROC_HASH_ALGORITHM", "xxhash")
	t.Setenv("RAYZGYPROC_AI_TOKEN", "sk-test")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.HashAlgorithm != "xxhash" {
		t.Errorf("HashAlgorithm = %v, want xxhash", cfg.HashAlgorithm)
	}
	if cfg.AI.APIToken != "sk-test" {
		t.Errorf("AI.APIToken = %v, want sk-test", cfg.AI.APIToken)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rayzgyproc.yaml")
	data := "workers: 3\ncontent_dirs: [uploads, media]\nreport_format: json\nai:\n  model: haiku\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if len(cfg.ContentDirs) != 2 || cfg.ContentDirs[1] != "media" {
		t.Errorf("ContentDirs = %v, want [uploads media]", cfg.ContentDirs)
	}
	if cfg.ReportFormat != "json" {
		t.Errorf("ReportFormat = %v, want json", cfg.ReportFormat)
	}
	if cfg.AI.Model != "haiku" {
		t.Errorf("AI.Model = %v, want haiku", cfg.AI.Model)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Workers: 4, AI: AIConfig{Model: "sonnet"}}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"Zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"Markdown format", func(c *Config) { c.ReportFormat = "md" }, false},
		{"Unknown format", func(c *Config) { c.ReportFormat = "xml" }, true},
		{"Known checks", func(c *Config) { c.Checks = []string{"mime", "permission"} }, false},
		{"Unknown check", func(c *Config) { c.Checks = []string{"entropy"} }, true},
		{"Unknown model ignored when disabled", func(c *Config) { c.AI.Model = "gpt" }, false},
		{"Unknown model", func(c *Config) { c.AI.Enabled = true; c.AI.Model = "gpt" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
