package report

import (
	"fmt"
	"strings"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

func textHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("  " + title + "\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n\n")
}

func textSection(sb *strings.Builder, title string) {
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
}

func textFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("End of Report\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n")
}

func textSkipped(sb *strings.Builder, skipped []models.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	textSection(sb, "FILES SKIPPED DUE TO ERROR")
	for _, s := range skipped {
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", s.Stage, s.Path, s.Error))
	}
	sb.WriteString("\n")
}

func textDisk(sb *strings.Builder, label string, disk *models.DiskUsage) {
	if disk == nil {
		return
	}
	sb.WriteString(fmt.Sprintf("%-18s%s free of %s (%.1f%% used)\n", label+":",
		filesystem.FormatSize(int64(disk.Free)), filesystem.FormatSize(int64(disk.Total)), disk.UsedPercent))
}

// scanText renders a suspicious-file scan as plain text
func scanText(results *models.ScanResults, aiReport *ai.AIReport) []byte {
	var sb strings.Builder

	textHeader(&sb, fmt.Sprintf("RAYZGYPROC SUSPICIOUS FILE REPORT v%s", results.Version))

	textSection(&sb, "SUMMARY")
	sb.WriteString(fmt.Sprintf("Scan ID:          %s\n", results.ID))
	sb.WriteString(fmt.Sprintf("Scan Path:        %s\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("Total Files:      %d\n", results.TotalFiles))
	sb.WriteString(fmt.Sprintf("Scanned Files:    %d\n", results.ScannedFiles))
	sb.WriteString(fmt.Sprintf("Skipped Files:    %d\n", len(results.Skipped)))
	sb.WriteString(fmt.Sprintf("SUSPICIOUS FILES: %d\n", len(results.Findings)))
	sb.WriteString(fmt.Sprintf("ISSUES:           %d\n\n", results.IssuesFound))

	if len(results.Findings) > 0 {
		textSection(&sb, "FILES BY SEVERITY")
		counts := countBySeverity(results.Findings)
		for _, severity := range severityOrder {
			if counts[severity] > 0 {
				sb.WriteString(fmt.Sprintf("  %-10s: %d\n", strings.ToUpper(string(severity)), counts[severity]))
			}
		}
		sb.WriteString("\n")

		textSection(&sb, "ISSUES BY CHECK")
		for _, check := range checkOrder {
			if results.ByCheck[check] > 0 {
				sb.WriteString(fmt.Sprintf("  %-10s: %d\n", check, results.ByCheck[check]))
			}
		}
		sb.WriteString("\n")

		sb.WriteString("DETAILED FINDINGS\n")
		sb.WriteString(strings.Repeat("=", 79) + "\n\n")

		for i, finding := range results.Findings {
			sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, finding.File.RelativePath))
			sb.WriteString(strings.Repeat("-", 79) + "\n")
			sb.WriteString(fmt.Sprintf("Severity:    %s\n", strings.ToUpper(string(finding.MaxSeverity()))))
			sb.WriteString(fmt.Sprintf("Size:        %s\n", filesystem.FormatSize(finding.File.Size)))
			sb.WriteString(fmt.Sprintf("Modified:    %s\n", finding.File.ModTime.Format("2006-01-02 15:04:05")))
			sb.WriteString(fmt.Sprintf("MIME:        %s\n", finding.MIMEType))
			sb.WriteString(fmt.Sprintf("Mode:        %04o\n", uint32(finding.File.Perm())))
			sb.WriteString("Issues:\n")
			for _, issue := range finding.Issues {
				sb.WriteString(fmt.Sprintf("  - [%s] %s\n", issue.RuleID, issue.Message))
				if issue.Fragment != "" {
					sb.WriteString(fmt.Sprintf("      %s\n", cleanFragment(issue.Fragment, 160)))
				}
			}
			if finding.Verdict != "" {
				sb.WriteString(fmt.Sprintf("AI Verdict:  %s\n", strings.ToUpper(finding.Verdict)))
				sb.WriteString(fmt.Sprintf("AI Reason:   %s\n", finding.Explanation))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No suspicious files.\n\n")
	}

	textSkipped(&sb, results.Skipped)

	if aiReport != nil && len(aiReport.Results) > 0 {
		textSection(&sb, "AI ANALYSIS")
		sb.WriteString(fmt.Sprintf("Model:            %s\n", aiReport.Model))
		sb.WriteString(fmt.Sprintf("Findings Analyzed:%d\n", aiReport.AnalyzedCount))
		sb.WriteString(fmt.Sprintf("Malicious:        %d\n", aiReport.MaliciousCount))
		sb.WriteString(fmt.Sprintf("Suspicious:       %d\n", aiReport.SuspiciousCount))
		sb.WriteString(fmt.Sprintf("False Positives:  %d\n", aiReport.FalsePositiveCount))
		sb.WriteString(fmt.Sprintf("Benign:           %d\n", aiReport.BenignCount))
		sb.WriteString(fmt.Sprintf("Tokens Used:      %d\n", aiReport.TotalTokensUsed))
		sb.WriteString(fmt.Sprintf("Duration:         %s\n\n", FormatDuration(aiReport.Duration)))
	}

	if results.Stats != nil {
		textSection(&sb, "PERFORMANCE")
		sb.WriteString(fmt.Sprintf("Total Size:       %s\n", filesystem.FormatSize(results.Stats.TotalSize)))
		sb.WriteString(fmt.Sprintf("Content Scanned:  %d\n", results.Stats.ContentScanned))
		sb.WriteString(fmt.Sprintf("Too Large:        %d\n", results.Stats.TooLarge))
		sb.WriteString(fmt.Sprintf("Binary Skipped:   %d\n", results.Stats.BinarySkipped))
		sb.WriteString(fmt.Sprintf("Files/Second:     %.2f\n", results.Stats.FilesPerSecond))
		sb.WriteString(fmt.Sprintf("Workers Used:     %d\n\n", results.Stats.WorkersUsed))
	}

	textFooter(&sb)
	return []byte(sb.String())
}

// dedupText renders a duplicate listing as plain text
func dedupText(results *models.DedupResults) []byte {
	var sb strings.Builder

	textHeader(&sb, "RAYZGYPROC DUPLICATE REPORT")

	textSection(&sb, "SUMMARY")
	sb.WriteString(fmt.Sprintf("Run ID:           %s\n", results.ID))
	sb.WriteString(fmt.Sprintf("Scan Path:        %s\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("Algorithm:        %s\n", results.Algorithm))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("Total Files:      %d\n", results.TotalFiles))
	sb.WriteString(fmt.Sprintf("Hashed Files:     %d\n", results.HashedFiles))
	sb.WriteString(fmt.Sprintf("Unique Contents:  %d\n", results.UniqueFiles))
	sb.WriteString(fmt.Sprintf("Sized Variants:   %d\n", results.Preserved))
	sb.WriteString(fmt.Sprintf("Duplicate Sets:   %d\n", len(results.Groups)))
	sb.WriteString(fmt.Sprintf("Redundant Copies: %d\n", results.DuplicateCount()))
	sb.WriteString(fmt.Sprintf("Reclaimable:      %s\n", filesystem.FormatSize(results.WastedBytes())))
	sb.WriteString(fmt.Sprintf("Backup Files:     %d\n", len(results.Backups)))
	textDisk(&sb, "Disk", results.Disk)
	sb.WriteString("\n")

	if len(results.Backups) > 0 {
		textSection(&sb, "BACKUP FILES")
		for _, path := range results.Backups {
			sb.WriteString("  " + path + "\n")
		}
		sb.WriteString("\n")
	}

	if len(results.Groups) > 0 {
		textSection(&sb, "DUPLICATE SETS")
		for i, group := range results.Groups {
			sb.WriteString(fmt.Sprintf("[%d] %s (%s each)\n", i+1, group.Fingerprint, filesystem.FormatSize(group.Size)))
			sb.WriteString("  keep    " + group.Keep() + "\n")
			for _, path := range group.Redundant() {
				sb.WriteString("  remove  " + path + "\n")
			}
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No duplicates found.\n\n")
	}

	textSkipped(&sb, results.Skipped)
	textFooter(&sb)
	return []byte(sb.String())
}

// cleanupText renders a cleanup summary as plain text
func cleanupText(results *models.CleanupResults) []byte {
	var sb strings.Builder

	title := "RAYZGYPROC CLEANUP REPORT"
	if results.DryRun {
		title += " (DRY RUN)"
	}
	textHeader(&sb, title)

	textSection(&sb, "SUMMARY")
	for _, row := range cleanupSummary(results) {
		sb.WriteString(fmt.Sprintf("%-22s%s\n", row[0]+":", row[1]))
	}
	sb.WriteString(fmt.Sprintf("%-22s%s\n", "Duration:", FormatDuration(results.Duration)))
	textDisk(&sb, "Disk After", results.DiskAfter)
	sb.WriteString("\n")

	if len(results.Errors) > 0 {
		textSection(&sb, "FAILED DELETIONS")
		for _, e := range results.Errors {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", e.Path, e.Error))
		}
		sb.WriteString("\n")
	}

	if results.Dedup != nil {
		textSkipped(&sb, results.Dedup.Skipped)
	}
	textFooter(&sb)
	return []byte(sb.String())
}
