package signatures

import (
	"bytes"
	"strings"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// Matcher matches names and content against a rule set
type Matcher struct {
	rules *models.RuleSet
}

// NewMatcher creates a new rule matcher
func NewMatcher(rules *models.RuleSet) *Matcher {
	return &Matcher{rules: rules}
}

// Rules returns the rule set in use
func (m *Matcher) Rules() *models.RuleSet {
	return m.rules
}

// MatchResult represents a rule match
type MatchResult struct {
	Rule     *models.Rule
	Position int
	Length   int
	Matched  string
}

// MatchName matches a base name against every filename rule
func (m *Matcher) MatchName(name, extension string) []*MatchResult {
	return match(m.rules.GetByCheck(models.CheckFilename), []byte(name), name, extension)
}

// MatchContent matches file content against every applicable content rule
func (m *Matcher) MatchContent(content []byte, name, extension string) []*MatchResult {
	return match(m.rules.GetByCheck(models.CheckContent), content, name, extension)
}

// MatchDecoded matches a decoded payload against the decoded-payload rules
func (m *Matcher) MatchDecoded(payload []byte) []*MatchResult {
	return match(m.rules.Decoded, payload, "", "")
}

// match returns the first occurrence of every matching rule, in table order
func match(rules []*models.Rule, subject []byte, name, extension string) []*MatchResult {
	var results []*MatchResult

	for _, rule := range rules {
		if name != "" && !rule.AppliesTo(name, extension) {
			continue
		}

		loc := rule.CompiledRe.FindIndex(subject)
		if loc == nil {
			continue
		}
		results = append(results, &MatchResult{
			Rule:     rule,
			Position: loc[0],
			Length:   loc[1] - loc[0],
			Matched:  string(subject[loc[0]:loc[1]]),
		})
	}

	return results
}

// GetFragment extracts a code fragment around the match
func GetFragment(content []byte, position int, maxLen int) (fragment string, lineNumber int) {
	if maxLen <= 0 {
		maxLen = 100
	}

	// Calculate line number
	lineNumber = 1 + bytes.Count(content[:position], []byte("\n"))

	// Extract fragment
	start := position - maxLen
	if start < 0 {
		start = 0
	}

	end := position + maxLen
	if end > len(content) {
		end = len(content)
	}

	// The marker goes between the raw halves so stripped bytes do not shift it
	before := cleanFragment(content[start:position])
	after := cleanFragment(content[position:end])
	if before != "" && after != "" {
		return before + ">>>" + after, lineNumber
	}
	fragment = before + after

	return fragment, lineNumber
}

func cleanFragment(raw []byte) string {
	s := strings.ReplaceAll(string(raw), "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\t", " ")
}
