package ai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"go.uber.org/zap"
)

const fragmentLimit = 2000

// AIProgressCallback is called to report AI analysis progress
type AIProgressCallback func(current, total int, message string)

// Analyzer triages suspicious findings with an LLM
type Analyzer struct {
	backend          Backend
	config           *config.AIConfig
	logger           *zap.Logger
	progressCallback AIProgressCallback
}

// NewAnalyzer creates an analyzer backed by the Anthropic API
func NewAnalyzer(cfg *config.AIConfig, logger *zap.Logger) (*Analyzer, error) {
	client, err := NewClient(cfg.Model, cfg.APIToken, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewAnalyzerWithBackend(client, cfg, logger), nil
}

// NewAnalyzerWithBackend creates an analyzer over any backend
func NewAnalyzerWithBackend(backend Backend, cfg *config.AIConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}
}

// SetProgressCallback sets the progress callback function
func (a *Analyzer) SetProgressCallback(cb AIProgressCallback) {
	a.progressCallback = cb
}

func (a *Analyzer) reportProgress(current, total int, message string) {
	if a.progressCallback != nil {
		a.progressCallback(current, total, message)
	}
}

// Select returns the findings that will be sent, most severe first and
// capped at MaxFindings
func (a *Analyzer) Select(findings []*models.Finding) []*models.Finding {
	selected := make([]*models.Finding, len(findings))
	copy(selected, findings)
	sort.SliceStable(selected, func(i, j int) bool {
		return models.GetSeverityPriority(selected[i].MaxSeverity()) > models.GetSeverityPriority(selected[j].MaxSeverity())
	})

	if a.config.MaxFindings > 0 && len(selected) > a.config.MaxFindings {
		a.logger.Info("Limiting findings for AI analysis",
			zap.Int("total", len(selected)),
			zap.Int("limit", a.config.MaxFindings))
		selected = selected[:a.config.MaxFindings]
	}
	return selected
}

// AnalyzeFindings triages the selected findings and records each verdict
// on its Finding. Failures are collected in the report and do not stop
// the run.
func (a *Analyzer) AnalyzeFindings(ctx context.Context, findings []*models.Finding) (*AIReport, error) {
	report := &AIReport{
		Model:     a.backend.GetModel(),
		Language:  a.config.Language,
		StartTime: time.Now(),
		Results:   make([]*AnalysisResponse, 0),
	}

	selected := a.Select(findings)
	a.logger.Info("Running AI triage", zap.Int("findings", len(selected)))

	for i, finding := range selected {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("Analysis cancelled", zap.Int("analyzed", i))
			break
		}

		req := buildAnalysisRequest(finding, i)
		a.reportProgress(i+1, len(selected), fmt.Sprintf("Analyzing: %s", finding.File.RelativePath))

		result, err := a.backend.Analyze(ctx, req, a.config.Language)
		if err != nil {
			a.logger.Warn("Analysis failed for finding",
				zap.String("finding_id", req.FindingID),
				zap.Error(err))
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", req.FilePath, err))
			continue
		}

		finding.Verdict = string(result.Verdict)
		finding.Explanation = result.Explanation

		report.Results = append(report.Results, result)
		report.TotalTokensUsed += result.TokensUsed
		report.AnalyzedCount++
		updateCounts(report, result.Verdict)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	a.logger.Info("AI analysis complete",
		zap.Int("analyzed", report.AnalyzedCount),
		zap.Int("malicious", report.MaliciousCount),
		zap.Int("suspicious", report.SuspiciousCount),
		zap.Int("false_positives", report.FalsePositiveCount),
		zap.Int("tokens_used", report.TotalTokensUsed),
		zap.Duration("duration", report.Duration))

	return report, ctx.Err()
}

func updateCounts(report *AIReport, verdict Verdict) {
	switch verdict {
	case VerdictMalicious:
		report.MaliciousCount++
	case VerdictSuspicious:
		report.SuspiciousCount++
	case VerdictFalsePositive:
		report.FalsePositiveCount++
	case VerdictBenign:
		report.BenignCount++
	default:
		report.UnknownCount++
	}
}

// buildAnalysisRequest creates an AnalysisRequest from a Finding
func buildAnalysisRequest(finding *models.Finding, index int) *AnalysisRequest {
	req := &AnalysisRequest{
		FindingID: fmt.Sprintf("finding-%d", index),
		FilePath:  finding.File.RelativePath,
		MIMEType:  finding.MIMEType,
		Size:      finding.File.Size,
		Mode:      fmt.Sprintf("%04o", uint32(finding.File.Perm())),
		Severity:  string(finding.MaxSeverity()),
		Issues:    finding.Messages(),
	}

	for _, issue := range finding.Issues {
		if issue.Fragment == "" {
			continue
		}
		if len(req.CodeFragment)+len(issue.Fragment) > fragmentLimit {
			break
		}
		if req.CodeFragment != "" {
			req.CodeFragment += "\n...\n"
		}
		req.CodeFragment += issue.Fragment
	}

	return req
}
