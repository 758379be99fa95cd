package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorWhite   = "\033[37m"
	colorOrange  = "\033[38;5;208m"
	colorGray    = "\033[38;5;245m"
)

const separator = "───────────────────────────────────────────────────────────────"

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator renders scan, duplicate and cleanup results to the console or a file
type Generator struct {
	config *config.Config
	logger *zap.Logger
	out    io.Writer
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	return &Generator{
		config: cfg,
		logger: logger,
		out:    os.Stdout,
	}, nil
}

// SetOutput redirects console output
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// renderers produce the file body for each format
type renderers struct {
	json     func() ([]byte, error)
	text     func() []byte
	markdown func() []byte
}

// GenerateScan reports a suspicious-file scan
func (g *Generator) GenerateScan(results *models.ScanResults, aiReport *ai.AIReport) (string, error) {
	if g.config.ReportFormat == "" {
		g.printScan(results, aiReport)
		return "", nil
	}
	return g.writeFile("SCAN", renderers{
		json:     func() ([]byte, error) { return scanJSON(results, aiReport) },
		text:     func() []byte { return scanText(results, aiReport) },
		markdown: func() []byte { return scanMarkdown(results, aiReport) },
	})
}

// GenerateDuplicates reports a duplicate and backup listing
func (g *Generator) GenerateDuplicates(results *models.DedupResults) (string, error) {
	if g.config.ReportFormat == "" {
		g.printDuplicates(results)
		return "", nil
	}
	return g.writeFile("DUPLICATES", renderers{
		json:     func() ([]byte, error) { return toJSON(results) },
		text:     func() []byte { return dedupText(results) },
		markdown: func() []byte { return dedupMarkdown(results) },
	})
}

// GenerateCleanup reports the outcome of a cleanup
func (g *Generator) GenerateCleanup(results *models.CleanupResults) (string, error) {
	if g.config.ReportFormat == "" {
		g.printCleanup(results)
		return "", nil
	}
	return g.writeFile("CLEANUP", renderers{
		json:     func() ([]byte, error) { return toJSON(results) },
		text:     func() []byte { return cleanupText(results) },
		markdown: func() []byte { return cleanupMarkdown(results) },
	})
}

func (g *Generator) writeFile(kind string, r renderers) (string, error) {
	format := g.config.ReportFormat
	outputFile := g.config.OutputFile

	var ext string
	switch format {
	case "json":
		ext = "json"
	case "txt", "text":
		ext = "txt"
	case "md", "markdown":
		ext = "md"
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	// Generate default filename if not specified
	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputFile = fmt.Sprintf("RAYZGYPROC-%s-%s.%s", kind, timestamp, ext)
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var data []byte
	var err error
	switch ext {
	case "json":
		data, err = r.json()
	case "txt":
		data = r.text()
	case "md":
		data = r.markdown()
	}
	if err == nil {
		err = os.WriteFile(outputFile, data, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// getSeverityColor returns ANSI color for severity level
func getSeverityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return colorRed + colorBold
	case models.SeverityHigh:
		return colorOrange
	case models.SeverityMedium:
		return colorYellow
	case models.SeverityLow:
		return colorGreen
	case models.SeverityInfo:
		return colorBlue
	default:
		return colorWhite
	}
}

// getVerdictColor returns ANSI color for AI verdict
func getVerdictColor(verdict string) string {
	switch ai.Verdict(verdict) {
	case ai.VerdictMalicious:
		return colorRed + colorBold
	case ai.VerdictSuspicious:
		return colorOrange
	case ai.VerdictFalsePositive, ai.VerdictBenign:
		return colorGreen
	default:
		return colorYellow
	}
}

// cleanFragment cleans and truncates code fragment for console output
func cleanFragment(fragment string, maxLen int) string {
	fragment = strings.ReplaceAll(fragment, "\n", " ")
	fragment = strings.ReplaceAll(fragment, "\r", "")
	fragment = strings.ReplaceAll(fragment, "\t", " ")

	for strings.Contains(fragment, "  ") {
		fragment = strings.ReplaceAll(fragment, "  ", " ")
	}

	fragment = strings.TrimSpace(fragment)

	if len(fragment) > maxLen {
		fragment = fragment[:maxLen] + "..."
	}

	return fragment
}

// severityOrder lists severities from most to least severe
var severityOrder = []models.Severity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
	models.SeverityInfo,
}

// countBySeverity counts findings by their most severe issue
func countBySeverity(findings []*models.Finding) map[models.Severity]int {
	counts := make(map[models.Severity]int)
	for _, f := range findings {
		counts[f.MaxSeverity()]++
	}
	return counts
}

// checkOrder lists checks in evaluation order
var checkOrder = []models.CheckKind{
	models.CheckFilename,
	models.CheckMIME,
	models.CheckContent,
	models.CheckPermission,
}

// cleanupSummary returns the labelled counts of a cleanup. A dry run
// reports what would be removed.
func cleanupSummary(results *models.CleanupResults) [][2]string {
	if results.DryRun {
		return [][2]string{
			{"Backups to remove", fmt.Sprintf("%d", results.WouldRemoveBackups)},
			{"Duplicates to remove", fmt.Sprintf("%d", results.WouldRemoveDuplicates)},
			{"Space to free", filesystem.FormatSize(results.WouldFreeBytes)},
		}
	}
	return [][2]string{
		{"Backups removed", fmt.Sprintf("%d%s", results.BackupsRemoved, declined(results.BackupsConfirmed))},
		{"Duplicates removed", fmt.Sprintf("%d%s", results.DuplicatesRemoved, declined(results.DupesConfirmed))},
		{"Space freed", filesystem.FormatSize(results.FreedBytes)},
	}
}
