package signatures

import (
	"testing"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
)

const customRules = `
disable:
  - FN-HIDDEN
rules:
  - id: CUSTOM-MINER
    name: coinhive miner
    pattern: 'coinhive\.min\.js'
    severity: high
  - id: FN-STRAY-CONFIG
    name: stray settings file
    check: filename
    pattern: '(?i)^settings\.php$'
`

func TestLoader_DefaultsOnly(t *testing.T) {
	rs, err := NewLoader(afero.NewMemMapFs(), "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.Rules) != len(DefaultRules()) {
		t.Errorf("Load() rules = %d, want %d", len(rs.Rules), len(DefaultRules()))
	}
	if len(rs.Decoded) == 0 {
		t.Error("Load() has no decoded-payload rules")
	}
}

func TestLoader_CustomFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/etc/rules.yaml", []byte(customRules), 0644); err != nil {
		t.Fatal(err)
	}

	rs, err := NewLoader(fs, "/etc/rules.yaml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, ok := rs.ByID["FN-HIDDEN"]; ok {
		t.Error("FN-HIDDEN should be disabled")
	}

	custom, ok := rs.ByID["CUSTOM-MINER"]
	if !ok {
		t.Fatal("CUSTOM-MINER not loaded")
	}
	if custom.Check != models.CheckContent {
		t.Errorf("CUSTOM-MINER check = %s, want content", custom.Check)
	}
	if custom.Severity != models.SeverityHigh {
		t.Errorf("CUSTOM-MINER severity = %s, want high", custom.Severity)
	}

	override := rs.ByID["FN-STRAY-CONFIG"]
	if override.Name != "stray settings file" {
		t.Errorf("FN-STRAY-CONFIG not replaced, name = %q", override.Name)
	}
	count := 0
	for _, r := range rs.GetByCheck(models.CheckFilename) {
		if r.ID == "FN-STRAY-CONFIG" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("FN-STRAY-CONFIG present %d times, want 1", count)
	}
}

func TestLoader_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/rules/a.yml", []byte(customRules), 0644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/rules/README.md", []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	rs, err := NewLoader(fs, "/rules").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := rs.ByID["CUSTOM-MINER"]; !ok {
		t.Error("CUSTOM-MINER not loaded from directory")
	}
}

func TestLoader_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/bad.yaml", []byte("rules:\n  - id: X\n    pattern: '[oops'\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/badcheck.yaml", []byte("rules:\n  - id: X\n    check: mime\n    pattern: 'a'\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader(fs, "/bad.yaml").Load(); err == nil {
		t.Error("Load() expected error for invalid regex")
	}
	if _, err := NewLoader(fs, "/badcheck.yaml").Load(); err == nil {
		t.Error("Load() expected error for unsupported check")
	}
	if _, err := NewLoader(fs, "/missing.yaml").Load(); err == nil {
		t.Error("Load() expected error for missing path")
	}
}
