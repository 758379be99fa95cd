package report

import (
	"fmt"
	"strings"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

func (g *Generator) printf(format string, args ...interface{}) {
	fmt.Fprintf(g.out, format, args...)
}

func (g *Generator) rule() {
	g.printf("%s%s%s\n", colorGray, separator, colorReset)
}

// printScan prints suspicious files with their ordered issues
func (g *Generator) printScan(results *models.ScanResults, aiReport *ai.AIReport) {
	g.printf("\n%s%sSCAN COMPLETE%s\n\n", colorBold, colorOrange, colorReset)

	g.printf("  %sPath:%s      %s\n", colorGray, colorReset, results.ScanPath)
	g.printf("  %sFiles:%s     %d\n", colorGray, colorReset, results.ScannedFiles)
	g.printf("  %sDuration:%s  %s\n\n", colorGray, colorReset, FormatDuration(results.Duration))

	if len(results.Findings) == 0 {
		g.printf("  %s%s✓ No suspicious files%s\n\n", colorBold, colorGreen, colorReset)
	} else {
		g.printf("  %s%s⚠ SUSPICIOUS FILES: %d (%d issues)%s\n\n", colorBold, colorRed, len(results.Findings), results.IssuesFound, colorReset)
		g.rule()

		for i, finding := range results.Findings {
			sev := finding.MaxSeverity()
			g.printf("\n  %s%s[%d]%s %s%s%s\n", colorBold, colorWhite, i+1, colorReset, colorOrange, finding.File.RelativePath, colorReset)
			g.printf("      %sSeverity:%s  %s%s%s\n", colorGray, colorReset, getSeverityColor(sev), strings.ToUpper(string(sev)), colorReset)
			g.printf("      %sSize:%s      %s\n", colorGray, colorReset, filesystem.FormatSize(finding.File.Size))
			g.printf("      %sModified:%s  %s\n", colorGray, colorReset, finding.File.ModTime.Format("2006-01-02 15:04:05"))
			if finding.MIMEType != "" {
				g.printf("      %sMIME:%s      %s\n", colorGray, colorReset, finding.MIMEType)
			}

			for _, issue := range finding.Issues {
				g.printf("      %s- %s%s%s\n", colorGray, getSeverityColor(issue.Severity), issue.Message, colorReset)
				if issue.Fragment != "" {
					g.printf("          %s%s%s\n", colorDim, cleanFragment(issue.Fragment, 100), colorReset)
				}
			}

			if finding.Verdict != "" {
				g.printf("      %sAI:%s        %s%s%s\n", colorGray, colorReset, getVerdictColor(finding.Verdict), strings.ToUpper(finding.Verdict), colorReset)
				if finding.Explanation != "" {
					g.printf("      %sReason:%s    %s%s%s\n", colorGray, colorReset, colorDim, cleanFragment(finding.Explanation, 100), colorReset)
				}
			}
		}

		g.printf("\n")
		g.rule()
	}

	g.printSkipped(results.Skipped)

	if aiReport != nil && len(aiReport.Results) > 0 {
		g.printf("\n%s%sAI ANALYSIS SUMMARY%s\n\n", colorBold, colorMagenta, colorReset)
		g.printf("  %sModel:%s       %s\n", colorGray, colorReset, aiReport.Model)
		g.printf("  %sAnalyzed:%s    %d findings\n", colorGray, colorReset, aiReport.AnalyzedCount)
		g.printf("  %sMalicious:%s   %s%d%s\n", colorGray, colorReset, colorRed, aiReport.MaliciousCount, colorReset)
		g.printf("  %sSuspicious:%s  %s%d%s\n", colorGray, colorReset, colorOrange, aiReport.SuspiciousCount, colorReset)
		g.printf("  %sFalse Pos:%s   %s%d%s\n", colorGray, colorReset, colorGreen, aiReport.FalsePositiveCount, colorReset)
		g.printf("  %sTokens:%s      %d\n\n", colorGray, colorReset, aiReport.TotalTokensUsed)
		g.rule()
	}

	g.printf("\n")
}

// printDuplicates lists backups and duplicate sets, keeper first
func (g *Generator) printDuplicates(results *models.DedupResults) {
	g.printf("\n%s%sDUPLICATE SEARCH COMPLETE%s\n\n", colorBold, colorOrange, colorReset)

	g.printf("  %sPath:%s       %s\n", colorGray, colorReset, results.ScanPath)
	g.printf("  %sFiles:%s      %d (%d hashed, %d sized variants preserved)\n", colorGray, colorReset, results.TotalFiles, results.HashedFiles, results.Preserved)
	g.printf("  %sAlgorithm:%s  %s\n", colorGray, colorReset, results.Algorithm)
	g.printf("  %sDuration:%s   %s\n\n", colorGray, colorReset, FormatDuration(results.Duration))

	if len(results.Backups) > 0 {
		g.printf("  %s%sBACKUP FILES: %d%s\n", colorBold, colorYellow, len(results.Backups), colorReset)
		for _, path := range results.Backups {
			g.printf("      %s\n", path)
		}
		g.printf("\n")
	}

	if len(results.Groups) == 0 {
		g.printf("  %s%s✓ No duplicates found%s\n", colorBold, colorGreen, colorReset)
	} else {
		g.printf("  %s%sDUPLICATE SETS: %d (%d redundant copies, %s)%s\n\n", colorBold, colorRed,
			len(results.Groups), results.DuplicateCount(), filesystem.FormatSize(results.WastedBytes()), colorReset)
		g.rule()
		for i, group := range results.Groups {
			g.printf("\n  %s%s[%d]%s %s%s%s  %s\n", colorBold, colorWhite, i+1, colorReset, colorGray, group.Fingerprint, colorReset, filesystem.FormatSize(group.Size))
			g.printf("      %skeep%s    %s\n", colorGreen, colorReset, group.Keep())
			for _, path := range group.Redundant() {
				g.printf("      %sremove%s  %s\n", colorRed, colorReset, path)
			}
		}
		g.printf("\n")
		g.rule()
	}

	g.printSkipped(results.Skipped)
	g.printDisk("Disk", results.Disk)
	g.printf("\n")
}

// printCleanup prints the deletion summary
func (g *Generator) printCleanup(results *models.CleanupResults) {
	title := "CLEANUP COMPLETE"
	if results.DryRun {
		title = "CLEANUP DRY RUN"
	}
	g.printf("\n%s%s%s%s\n\n", colorBold, colorOrange, title, colorReset)

	for _, row := range cleanupSummary(results) {
		g.printf("  %s%-21s%s %s\n", colorGray, row[0]+":", colorReset, row[1])
	}
	g.printf("  %s%-21s%s %s\n", colorGray, "Duration:", colorReset, FormatDuration(results.Duration))

	if len(results.Errors) > 0 {
		g.printf("\n  %s%sFAILED DELETIONS: %d%s\n", colorBold, colorRed, len(results.Errors), colorReset)
		for _, e := range results.Errors {
			g.printf("      %s: %s%s%s\n", e.Path, colorDim, e.Error, colorReset)
		}
	}

	if results.Dedup != nil {
		g.printSkipped(results.Dedup.Skipped)
	}
	g.printDisk("Disk after", results.DiskAfter)
	g.printf("\n")
}

func declined(confirmed bool) string {
	if confirmed {
		return ""
	}
	return " (not confirmed)"
}

// printSkipped lists files that could not be processed, apart from findings
func (g *Generator) printSkipped(skipped []models.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	g.printf("\n  %s%sFILES SKIPPED DUE TO ERROR: %d%s\n", colorBold, colorYellow, len(skipped), colorReset)
	for _, s := range skipped {
		g.printf("      [%s] %s: %s%s%s\n", s.Stage, s.Path, colorDim, s.Error, colorReset)
	}
}

func (g *Generator) printDisk(label string, disk *models.DiskUsage) {
	if disk == nil {
		return
	}
	g.printf("\n  %s%s:%s  %s free of %s (%.1f%% used)\n", colorGray, label, colorReset,
		filesystem.FormatSize(int64(disk.Free)), filesystem.FormatSize(int64(disk.Total)), disk.UsedPercent)
}
