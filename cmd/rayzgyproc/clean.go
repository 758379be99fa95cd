package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jessifoo/rayzgyproc/internal/cleanup"
	"github.com/jessifoo/rayzgyproc/internal/core"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/internal/report"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanCmd creates the clean command
func cleanCmd() *cobra.Command {
	var (
		assumeYes bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "clean <path>",
		Short: "Remove backup files and duplicate copies after confirmation",
		Long: `List .bak files and duplicate sets under a directory, then ask separately
before removing the backups and the redundant copies. The first path of each
duplicate set and every sized image variant are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}

			printBanner("Cleaning", path)

			reporter, err := report.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}

			cleaner := core.NewCleaner(cfg, afero.NewOsFs(), logger)
			cleaner.SetDryRun(dryRun)
			cleaner.SetProgressCallback(progressPrinter())
			cleaner.SetCallbacks(cleanup.Callbacks{
				OnError: func(info cleanup.ErrorInfo) {
					fmt.Printf("  %s✗ %s:%s %v\n", colorRed, info.Path, colorReset, info.Error)
				},
			})

			ctx, cancel := signalContext()
			defer cancel()

			plan, err := cleaner.Plan(ctx, path)
			if err != nil {
				logger.Error("Cleanup planning failed", zap.Error(err))
				return err
			}

			if plan.Plan.Empty() {
				fmt.Printf("\n  %s✓ No backup files or duplicates found%s\n\n", colorOrange, colorReset)
				return nil
			}

			confirm := newPromptConfirmer(os.Stdin, os.Stdout, assumeYes)
			results := cleaner.Execute(ctx, plan, confirm.Confirm)

			return reportCleanup(reporter, results)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Remove without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without deleting")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "", "Hash algorithm, must be sha256 for removal")

	return cmd
}

// reportCleanup writes the cleanup report. Failed removals are listed in
// the report and do not fail the command.
func reportCleanup(reporter *report.Generator, results *models.CleanupResults) error {
	reportPath, err := reporter.GenerateCleanup(results)
	if err != nil {
		return err
	}
	printReportPath(reportPath)

	if len(results.Errors) > 0 {
		logger.Warn("Some files could not be removed", zap.Int("failed", len(results.Errors)))
	}
	return nil
}

// promptConfirmer lists the targets of a category and asks y/N on a terminal
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPromptConfirmer(in io.Reader, out io.Writer, assumeYes bool) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm implements cleanup.Confirmer
func (p *promptConfirmer) Confirm(category cleanup.Category, targets []cleanup.Target) bool {
	var total int64
	for _, t := range targets {
		total += t.Size
	}

	switch category {
	case cleanup.CategoryBackup:
		fmt.Fprintf(p.out, "\n  %s%sBACKUP FILES (%d, %s)%s\n", colorBold, colorOrange, len(targets), filesystem.FormatSize(total), colorReset)
		for _, t := range targets {
			fmt.Fprintf(p.out, "    %s\n", t.Path)
		}
	case cleanup.CategoryDuplicate:
		fmt.Fprintf(p.out, "\n  %s%sDUPLICATE COPIES (%d, %s)%s\n", colorBold, colorOrange, len(targets), filesystem.FormatSize(total), colorReset)
		for _, t := range targets {
			fmt.Fprintf(p.out, "    %s %s(copy of %s)%s\n", t.Path, colorGray, t.Keep, colorReset)
		}
	}
	fmt.Fprintln(p.out)

	if p.assumeYes {
		return true
	}

	fmt.Fprintf(p.out, "  %sDelete these %d %s files? [y/N]:%s ", colorBold, len(targets), category, colorReset)
	return readYes(p.in)
}

// readYes reads one answer; only y or yes confirms
func readYes(reader *bufio.Reader) bool {
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	switch normalizeAnswer(input) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
