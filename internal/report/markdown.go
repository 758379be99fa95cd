package report

import (
	"fmt"
	"strings"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// getSeverityEmoji returns emoji for severity level
func getSeverityEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityHigh:
		return "🟠"
	case models.SeverityMedium:
		return "🟡"
	case models.SeverityLow:
		return "🟢"
	default:
		return "🔵"
	}
}

// escapeMarkdownTable keeps pipes and newlines from breaking table rows
func escapeMarkdownTable(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func mdSkipped(sb *strings.Builder, skipped []models.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	sb.WriteString("## Files Skipped Due to Error\n\n")
	sb.WriteString("| Stage | File | Error |\n")
	sb.WriteString("|-------|------|-------|\n")
	for _, s := range skipped {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s |\n", s.Stage, s.Path, escapeMarkdownTable(s.Error)))
	}
	sb.WriteString("\n")
}

func mdDisk(sb *strings.Builder, label string, disk *models.DiskUsage) {
	if disk == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("| %s | %s free of %s (%.1f%% used) |\n", label,
		filesystem.FormatSize(int64(disk.Free)), filesystem.FormatSize(int64(disk.Total)), disk.UsedPercent))
}

// scanMarkdown renders a suspicious-file scan as Markdown
func scanMarkdown(results *models.ScanResults, aiReport *ai.AIReport) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Rayzgyproc Suspicious File Report v%s\n\n", results.Version))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan ID | `%s` |\n", results.ID))
	sb.WriteString(fmt.Sprintf("| Scan Path | `%s` |\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", results.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Scanned Files | %d |\n", results.ScannedFiles))
	sb.WriteString(fmt.Sprintf("| Skipped Files | %d |\n", len(results.Skipped)))
	sb.WriteString(fmt.Sprintf("| **Suspicious Files** | **%d** |\n", len(results.Findings)))
	sb.WriteString("\n")

	if len(results.Findings) == 0 {
		sb.WriteString("> ✅ **No suspicious files**\n\n")
	} else {
		sb.WriteString("## Files by Severity\n\n")
		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")
		counts := countBySeverity(results.Findings)
		for _, severity := range severityOrder {
			if counts[severity] > 0 {
				sb.WriteString(fmt.Sprintf("| %s %s | %d |\n", getSeverityEmoji(severity), strings.ToUpper(string(severity)), counts[severity]))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("## Findings\n\n")
		for i, finding := range results.Findings {
			sev := finding.MaxSeverity()
			sb.WriteString(fmt.Sprintf("### %d. %s `%s`\n\n", i+1, getSeverityEmoji(sev), finding.File.RelativePath))
			sb.WriteString(fmt.Sprintf("- **Severity:** %s\n", strings.ToUpper(string(sev))))
			sb.WriteString(fmt.Sprintf("- **Size:** %s\n", filesystem.FormatSize(finding.File.Size)))
			sb.WriteString(fmt.Sprintf("- **Modified:** %s\n", finding.File.ModTime.Format("2006-01-02 15:04:05")))
			sb.WriteString(fmt.Sprintf("- **MIME:** %s\n", finding.MIMEType))
			sb.WriteString(fmt.Sprintf("- **Mode:** %04o\n\n", uint32(finding.File.Perm())))

			sb.WriteString("| Check | Rule | Issue |\n")
			sb.WriteString("|-------|------|-------|\n")
			for _, issue := range finding.Issues {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", issue.Check, issue.RuleID, escapeMarkdownTable(issue.Message)))
			}
			sb.WriteString("\n")

			if finding.Verdict != "" {
				sb.WriteString(fmt.Sprintf("> **AI:** %s. %s\n\n", strings.ToUpper(finding.Verdict), finding.Explanation))
			}
		}
	}

	mdSkipped(&sb, results.Skipped)

	if aiReport != nil && len(aiReport.Results) > 0 {
		sb.WriteString("## AI Analysis\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Model | %s |\n", aiReport.Model))
		sb.WriteString(fmt.Sprintf("| Analyzed | %d |\n", aiReport.AnalyzedCount))
		sb.WriteString(fmt.Sprintf("| Malicious | %d |\n", aiReport.MaliciousCount))
		sb.WriteString(fmt.Sprintf("| Suspicious | %d |\n", aiReport.SuspiciousCount))
		sb.WriteString(fmt.Sprintf("| False Positives | %d |\n", aiReport.FalsePositiveCount))
		sb.WriteString(fmt.Sprintf("| Tokens Used | %d |\n\n", aiReport.TotalTokensUsed))
	}

	sb.WriteString("---\n\n*Generated by Rayzgyproc*\n")
	return []byte(sb.String())
}

// dedupMarkdown renders a duplicate listing as Markdown
func dedupMarkdown(results *models.DedupResults) []byte {
	var sb strings.Builder

	sb.WriteString("# Rayzgyproc Duplicate Report\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | `%s` |\n", results.ID))
	sb.WriteString(fmt.Sprintf("| Scan Path | `%s` |\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("| Algorithm | %s |\n", results.Algorithm))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", results.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Hashed Files | %d |\n", results.HashedFiles))
	sb.WriteString(fmt.Sprintf("| Sized Variants Preserved | %d |\n", results.Preserved))
	sb.WriteString(fmt.Sprintf("| **Duplicate Sets** | **%d** |\n", len(results.Groups)))
	sb.WriteString(fmt.Sprintf("| Redundant Copies | %d |\n", results.DuplicateCount()))
	sb.WriteString(fmt.Sprintf("| Reclaimable | %s |\n", filesystem.FormatSize(results.WastedBytes())))
	sb.WriteString(fmt.Sprintf("| Backup Files | %d |\n", len(results.Backups)))
	mdDisk(&sb, "Disk", results.Disk)
	sb.WriteString("\n")

	if len(results.Backups) > 0 {
		sb.WriteString("## Backup Files\n\n")
		for _, path := range results.Backups {
			sb.WriteString(fmt.Sprintf("- `%s`\n", path))
		}
		sb.WriteString("\n")
	}

	if len(results.Groups) == 0 {
		sb.WriteString("> ✅ **No duplicates found**\n\n")
	} else {
		sb.WriteString("## Duplicate Sets\n\n")
		for i, group := range results.Groups {
			sb.WriteString(fmt.Sprintf("### %d. `%s` (%s each)\n\n", i+1, group.Fingerprint, filesystem.FormatSize(group.Size)))
			sb.WriteString(fmt.Sprintf("- keep `%s`\n", group.Keep()))
			for _, path := range group.Redundant() {
				sb.WriteString(fmt.Sprintf("- remove `%s`\n", path))
			}
			sb.WriteString("\n")
		}
	}

	mdSkipped(&sb, results.Skipped)
	sb.WriteString("---\n\n*Generated by Rayzgyproc*\n")
	return []byte(sb.String())
}

// cleanupMarkdown renders a cleanup summary as Markdown
func cleanupMarkdown(results *models.CleanupResults) []byte {
	var sb strings.Builder

	sb.WriteString("# Rayzgyproc Cleanup Report\n\n")
	if results.DryRun {
		sb.WriteString("> Dry run: nothing was deleted.\n\n")
	}

	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	for _, row := range cleanupSummary(results) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	mdDisk(&sb, "Disk After", results.DiskAfter)
	sb.WriteString("\n")

	if len(results.Errors) > 0 {
		sb.WriteString("## Failed Deletions\n\n")
		for _, e := range results.Errors {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", e.Path, e.Error))
		}
		sb.WriteString("\n")
	}

	if results.Dedup != nil {
		mdSkipped(&sb, results.Dedup.Skipped)
	}
	sb.WriteString("---\n\n*Generated by Rayzgyproc*\n")
	return []byte(sb.String())
}
