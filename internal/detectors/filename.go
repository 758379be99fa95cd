package detectors

import (
	"context"
	"fmt"

	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// FilenameDetector matches base names against the filename rule table
type FilenameDetector struct {
	*BaseDetector
	matcher *signatures.Matcher
}

// NewFilenameDetector creates a new filename detector
func NewFilenameDetector(matcher *signatures.Matcher) *FilenameDetector {
	return &FilenameDetector{
		BaseDetector: NewBaseDetector("filename", models.CheckFilename, 400),
		matcher:      matcher,
	}
}

// Detect reports one issue per matching filename rule
func (d *FilenameDetector) Detect(ctx context.Context, file *models.File) ([]models.Issue, error) {
	var issues []models.Issue

	for _, match := range d.matcher.MatchName(file.Name, file.Extension) {
		issues = append(issues, models.Issue{
			Check:    models.CheckFilename,
			RuleID:   match.Rule.ID,
			Severity: match.Rule.Severity,
			Message:  fmt.Sprintf("Suspicious filename pattern: %s", match.Rule.Name),
		})
	}

	return issues, nil
}
