package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one entry of a heuristic pattern table
type Rule struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Check       CheckKind `yaml:"check" json:"check"`
	Category    string    `yaml:"category" json:"category"`
	Severity    Severity  `yaml:"severity" json:"severity"`
	Pattern     string    `yaml:"pattern" json:"pattern"`
	Except      string    `yaml:"except" json:"except,omitempty"` // Base names the rule never applies to
	Extensions  []string  `yaml:"extensions" json:"extensions"`   // "*" matches every extension
	Decoded     bool      `yaml:"decoded" json:"decoded"`         // Match against decoded base64 payloads

	CompiledRe *regexp.Regexp `yaml:"-" json:"-"`
	ExceptRe   *regexp.Regexp `yaml:"-" json:"-"`
}

// Compile compiles the rule patterns
func (r *Rule) Compile() error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	r.CompiledRe = re

	if r.Except != "" {
		ex, err := regexp.Compile(r.Except)
		if err != nil {
			return fmt.Errorf("rule %s except: %w", r.ID, err)
		}
		r.ExceptRe = ex
	}
	return nil
}

// AppliesTo reports whether the rule targets a file with the given base name and extension
func (r *Rule) AppliesTo(name, ext string) bool {
	if r.ExceptRe != nil && r.ExceptRe.MatchString(name) {
		return false
	}
	if len(r.Extensions) == 0 {
		return true
	}
	for _, e := range r.Extensions {
		if e == "*" || strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// RuleSet holds the compiled pattern tables. It is filled once at
// construction and only read afterwards.
type RuleSet struct {
	Rules   []*Rule
	ByID    map[string]*Rule
	ByCheck map[CheckKind][]*Rule
	Decoded []*Rule
}

// NewRuleSet creates an empty rule set
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Rules:   make([]*Rule, 0),
		ByID:    make(map[string]*Rule),
		ByCheck: make(map[CheckKind][]*Rule),
	}
}

// AddRule compiles a rule and adds it to the set. A rule with an ID
// already present replaces the earlier definition.
func (rs *RuleSet) AddRule(r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule %q has no id", r.Name)
	}
	switch r.Check {
	case CheckFilename, CheckContent:
	default:
		return fmt.Errorf("rule %s: unsupported check %q", r.ID, r.Check)
	}
	if err := r.Compile(); err != nil {
		return err
	}
	if r.Severity == "" {
		r.Severity = SeverityMedium
	}

	rs.Disable(r.ID)

	rs.Rules = append(rs.Rules, r)
	rs.ByID[r.ID] = r
	if r.Decoded {
		rs.Decoded = append(rs.Decoded, r)
	} else {
		rs.ByCheck[r.Check] = append(rs.ByCheck[r.Check], r)
	}
	return nil
}

// GetByCheck returns the rules evaluated by one check
func (rs *RuleSet) GetByCheck(check CheckKind) []*Rule {
	return rs.ByCheck[check]
}

// Disable removes a rule from the set. Unknown IDs are ignored.
func (rs *RuleSet) Disable(id string) {
	old, ok := rs.ByID[id]
	if !ok {
		return
	}
	drop := func(list []*Rule) []*Rule {
		out := list[:0]
		for _, r := range list {
			if r.ID != id {
				out = append(out, r)
			}
		}
		return out
	}
	rs.Rules = drop(rs.Rules)
	if old.Decoded {
		rs.Decoded = drop(rs.Decoded)
	} else {
		rs.ByCheck[old.Check] = drop(rs.ByCheck[old.Check])
	}
	delete(rs.ByID, id)
}
