package signatures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader builds a rule set from the built-in tables and optional YAML files
type Loader struct {
	fs        afero.Fs
	rulesPath string
}

// NewLoader creates a new rule loader. rulesPath may be a single YAML
// file, a directory of YAML files, or empty.
func NewLoader(fs afero.Fs, rulesPath string) *Loader {
	return &Loader{
		fs:        fs,
		rulesPath: rulesPath,
	}
}

// RuleFile represents a YAML rule file
type RuleFile struct {
	Rules   []*models.Rule `yaml:"rules"`
	Disable []string       `yaml:"disable"`
}

// Load returns the default rules extended by any YAML rule files. A rule
// whose ID matches a built-in rule replaces it.
func (l *Loader) Load() (*models.RuleSet, error) {
	rs := models.NewRuleSet()
	for _, rule := range DefaultRules() {
		if err := rs.AddRule(rule); err != nil {
			return nil, fmt.Errorf("built-in rule: %w", err)
		}
	}

	if l.rulesPath == "" {
		return rs, nil
	}

	info, err := l.fs.Stat(l.rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rules path %s does not exist", l.rulesPath)
		}
		return nil, err
	}

	if !info.IsDir() {
		if err := l.loadFile(l.rulesPath, rs); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.rulesPath, err)
		}
		return rs, nil
	}

	// Walk rules directory
	err = afero.Walk(l.fs, l.rulesPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-YAML files
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}

		if err := l.loadFile(path, rs); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rs, nil
}

// loadFile loads rules from a single YAML file
func (l *Loader) loadFile(path string, rs *models.RuleSet) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return err
	}

	var ruleFile RuleFile
	if err := yaml.Unmarshal(data, &ruleFile); err != nil {
		return err
	}

	for _, id := range ruleFile.Disable {
		rs.Disable(id)
	}

	for _, rule := range ruleFile.Rules {
		if rule.Check == "" {
			rule.Check = models.CheckContent
		}
		if rule.Category == "" {
			rule.Category = "custom"
		}

		if err := rs.AddRule(rule); err != nil {
			return fmt.Errorf("failed to add rule %s: %w", rule.ID, err)
		}
	}

	return nil
}
