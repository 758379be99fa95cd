package detectors

import (
	"context"
	"fmt"

	"github.com/jessifoo/rayzgyproc/internal/deobfuscator"
	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

const fragmentLen = 60

// ContentDetector matches file text and decoded base64 payloads against
// the content rule tables
type ContentDetector struct {
	*BaseDetector
	matcher *signatures.Matcher
	deobf   *deobfuscator.Manager
}

// NewContentDetector creates a new content detector
func NewContentDetector(matcher *signatures.Matcher, deobf *deobfuscator.Manager) *ContentDetector {
	return &ContentDetector{
		BaseDetector: NewBaseDetector("content", models.CheckContent, 200),
		matcher:      matcher,
		deobf:        deobf,
	}
}

// Detect inspects loaded content. Files without content are skipped.
func (d *ContentDetector) Detect(ctx context.Context, file *models.File) ([]models.Issue, error) {
	if file.Content == nil {
		return nil, nil
	}

	var issues []models.Issue

	// Hidden payloads first; a marker is reported once however often it appears
	seen := make(map[string]bool)
	for _, payload := range d.deobf.Payloads(file.Content) {
		for _, match := range d.matcher.MatchDecoded(payload) {
			if seen[match.Rule.ID] {
				continue
			}
			seen[match.Rule.ID] = true

			fragment, _ := signatures.GetFragment(payload, match.Position, fragmentLen)
			issues = append(issues, models.Issue{
				Check:    models.CheckContent,
				RuleID:   match.Rule.ID,
				Severity: match.Rule.Severity,
				Message:  fmt.Sprintf("Contains suspicious base64-encoded pattern: %s", match.Rule.Name),
				Fragment: fragment,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return issues, err
	}

	for _, match := range d.matcher.MatchContent(file.Content, file.Name, file.Extension) {
		fragment, line := signatures.GetFragment(file.Content, match.Position, fragmentLen)
		issues = append(issues, models.Issue{
			Check:    models.CheckContent,
			RuleID:   match.Rule.ID,
			Severity: match.Rule.Severity,
			Message:  fmt.Sprintf("Contains suspicious %s pattern: %s (line %d)", match.Rule.Category, match.Rule.Name, line),
			Fragment: fragment,
		})
	}

	if entropyExtensions[file.Extension] && len(file.Content) >= minEntropySize {
		if analysis := AnalyzeEntropy(file.Content); analysis.IsObfuscated {
			msg := fmt.Sprintf("Body looks packed or encoded (entropy %.2f, peak %.2f, confidence %d%%)",
				analysis.Overall, analysis.Max, analysis.Confidence)
			issues = append(issues, models.Issue{
				Check:    models.CheckContent,
				RuleID:   "high-entropy",
				Severity: models.SeverityMedium,
				Message:  msg,
			})
		}
	}

	return issues, nil
}
