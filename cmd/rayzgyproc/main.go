package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/internal/core"
	"github.com/jessifoo/rayzgyproc/internal/deobfuscator"
	"github.com/jessifoo/rayzgyproc/internal/report"
	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version = "0.1.0"
	logger  *zap.Logger
	verbose bool
	opts    commonOptions
)

// commonOptions are the flags shared by every command that walks a tree
type commonOptions struct {
	configFile   string
	workers      int
	exclude      []string
	reportFormat string
	outputFile   string
	algorithm    string
}

func main() {
	core.Version = version

	rootCmd := &cobra.Command{
		Use:   "rayzgyproc",
		Short: "rayzgyproc - duplicate cleanup and suspicious file audit for web content",
		Long: `Audits a web-content tree: finds and removes duplicate files while keeping
sized image variants, removes .bak files, and flags suspicious files by name,
type, content and permissions.`,
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner()
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Number of worker goroutines (default: CPU cores * 2)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.exclude, "exclude", nil, "Directory names to exclude (comma-separated)")
	rootCmd.PersistentFlags().StringVarP(&opts.reportFormat, "report", "r", "", "Report format: text, json, md (default: console output)")
	rootCmd.PersistentFlags().StringVarP(&opts.outputFile, "output", "o", "", "Output file path")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(duplicatesCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(decodeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogger builds a development logger in verbose mode and an
// error-only JSON logger otherwise
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	return err
}

// loadConfig loads the config file and applies the shared flag overrides
func loadConfig(apply func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}

	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if len(opts.exclude) > 0 {
		cfg.Exclude = opts.exclude
	}
	if opts.reportFormat != "" {
		cfg.ReportFormat = opts.reportFormat
	}
	if opts.outputFile != "" {
		cfg.OutputFile = opts.outputFile
	}
	if opts.algorithm != "" {
		cfg.HashAlgorithm = opts.algorithm
	}
	if apply != nil {
		apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printMainBanner prints the main banner
func printMainBanner() {
	fmt.Println()
	fmt.Printf("%s%srayzgyproc%s %sv%s%s\n", colorBold, colorOrange, colorReset, colorGray, version, colorReset)
	fmt.Printf("%sWeb content audit%s\n", colorGray, colorReset)
	fmt.Println()
}

// printBanner prints the startup banner for a command
func printBanner(action, path string) {
	printMainBanner()
	fmt.Printf("  %s%s:%s %s\n", colorGray, action, colorReset, path)
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		maxSize     string
		contentDirs []string
		checks      []string
		rulesPath   string
		aiEnabled   bool
		aiModel     string
		aiToken     string
		aiLang      string
		aiMax       int
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Flag suspicious files by name, type, content and permissions",
		Long:  `Recursively inspect a directory and report files that look like web shells, disguised executables or injected scripts. Nothing is modified.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := loadConfig(func(cfg *config.Config) {
				if maxSize != "" {
					cfg.MaxContentSize = maxSize
				}
				if len(contentDirs) > 0 {
					cfg.ContentDirs = contentDirs
				}
				if len(checks) > 0 {
					cfg.Checks = checks
				}
				if rulesPath != "" {
					cfg.RulesPath = rulesPath
				}
				if aiEnabled {
					cfg.AI.Enabled = true
				}
				if aiModel != "" {
					cfg.AI.Model = aiModel
				}
				if aiToken != "" {
					cfg.AI.APIToken = aiToken
				}
				if aiLang != "" {
					cfg.AI.Language = aiLang
				}
				if aiMax > 0 {
					cfg.AI.MaxFindings = aiMax
				}
			})
			if err != nil {
				return err
			}

			printBanner("Scanning", path)

			scanner, err := core.NewScanner(cfg, afero.NewOsFs(), logger)
			if err != nil {
				return err
			}
			scanner.SetProgressCallback(progressPrinter())
			scanner.SetAIConfirmCallback(confirmAI)

			ctx, cancel := signalContext()
			defer cancel()

			results, err := scanner.Scan(ctx, path)
			if err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			printReportPath(results.ReportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&maxSize, "max-size", "", "Largest file whose content is inspected (default: 10M)")
	cmd.Flags().StringSliceVar(&contentDirs, "content-dirs", nil, "Directories where scripts are suspicious (default: uploads)")
	cmd.Flags().StringSliceVar(&checks, "checks", nil, "Enabled checks: filename, mime, content, permission (default: all)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Extra YAML rule file or directory")

	cmd.Flags().BoolVar(&aiEnabled, "ai", false, "Triage findings with an AI model")
	cmd.Flags().StringVar(&aiModel, "ai-model", "", "AI model: haiku, sonnet, opus (default: sonnet)")
	cmd.Flags().StringVar(&aiToken, "ai-token", "", "Anthropic API token (or set ANTHROPIC_API_KEY)")
	cmd.Flags().StringVar(&aiLang, "ai-lang", "", "AI explanation language: en, ru, es, de (default: en)")
	cmd.Flags().IntVar(&aiMax, "ai-max", 0, "Most findings sent to the AI model (default: 50)")

	return cmd
}

// duplicatesCmd creates the duplicates command
func duplicatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicates <path>",
		Short: "List duplicate files and backup files",
		Long:  `Hash every file under a directory and list sets of identical files and .bak files. Nothing is deleted.`,
		Args:  cobra.ExactArgs(1),
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

			printBanner("Searching", path)

			reporter, err := report.NewGenerator(cfg, logger)
			if err != nil {
				return err
			}

			deduper := core.NewDeduper(cfg, afero.NewOsFs(), logger)
			deduper.SetProgressCallback(progressPrinter())

			ctx, cancel := signalContext()
			defer cancel()

			results, err := deduper.Find(ctx, path)
			if err != nil {
				logger.Error("Duplicate search failed", zap.Error(err))
				return err
			}

			reportPath, err := reporter.GenerateDuplicates(results)
			if err != nil {
				return err
			}
			printReportPath(reportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "", "Hash algorithm: sha256, xxhash (default: sha256)")

	return cmd
}

// rulesCmd creates the rules command
func rulesCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active detection rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesPath == "" {
				cfg, err := config.LoadConfig(opts.configFile)
				if err != nil {
					return err
				}
				rulesPath = cfg.RulesPath
			}

			rules, err := signatures.NewLoader(afero.NewOsFs(), rulesPath).Load()
			if err != nil {
				return err
			}

			for _, check := range []models.CheckKind{models.CheckFilename, models.CheckContent} {
				fmt.Printf("%s%s%s RULES:%s\n", colorBold, colorOrange, strings.ToUpper(string(check)), colorReset)
				for _, r := range rules.ByCheck[check] {
					fmt.Printf("  %s%-8s%s %-28s %s\n", severityColor(r.Severity), r.Severity, colorReset, r.ID, r.Name)
				}
				fmt.Println()
			}

			if len(rules.Decoded) > 0 {
				fmt.Printf("%s%sDECODED PAYLOAD RULES:%s\n", colorBold, colorOrange, colorReset)
				for _, r := range rules.Decoded {
					fmt.Printf("  %s%-8s%s %-28s %s\n", severityColor(r.Severity), r.Severity, colorReset, r.ID, r.Name)
				}
				fmt.Println()
			}

			fmt.Printf("%sMIME and permission checks are built in and not rule driven.%s\n", colorGray, colorReset)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "Extra YAML rule file or directory")

	return cmd
}

// decodeCmd creates the decode command
func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Print base64 payloads hidden in a file",
		Long:  `Apply the payload decoders used by the content check to a file and print every recovered payload to stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := afero.ReadFile(afero.NewOsFs(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			payloads := deobfuscator.NewDefaultManager().Payloads(content)
			if len(payloads) == 0 {
				fmt.Fprintf(os.Stderr, "%s⚠ No encoded payload found%s\n", colorYellow, colorReset)
				return nil
			}

			for i, payload := range payloads {
				fmt.Fprintf(os.Stderr, "%s✓ Payload %d (%d bytes)%s\n", colorOrange, i+1, len(payload), colorReset)
				fmt.Println(string(payload))
			}
			return nil
		},
	}
}

// progressPrinter renders progress callbacks of every command
func progressPrinter() core.ProgressCallback {
	lastPhase := ""
	return func(phase string, current, total int, message string) {
		// Redraw the line while a phase is ongoing
		if lastPhase == phase && phase != "counting" && phase != "walking" {
			fmt.Print("\033[1A\033[K")
		}
		lastPhase = phase

		switch phase {
		case "counting", "walking":
			if current == 0 && total == 0 {
				fmt.Printf("\n  %s%s%s\n", colorGray, message, colorReset)
			} else if total > 0 {
				fmt.Printf("  %sFiles:%s      %s\n", colorGray, colorReset, message)
			}
		case "scanning":
			printBar("Scanning:", colorOrange, current, total, "")
		case "hashing":
			printBar("Hashing:", colorOrange, current, total, "")
		case "ai_analysis":
			msg := message
			if len(msg) > 40 {
				msg = msg[:37] + "..."
			}
			printBar("Analyzing:", colorRed, current, total, msg)
		case "ai_complete":
			if current > 0 {
				fmt.Printf("  %s✓ AI complete%s %s(%d tokens used)%s\n\n", colorRed, colorReset, colorGray, current, colorReset)
			} else {
				fmt.Printf("  %s✓ AI analysis complete%s\n\n", colorRed, colorReset)
			}
		case "ai_skipped":
			fmt.Printf("  %s⊘ AI analysis skipped%s\n\n", colorGray, colorReset)
		case "ai_error":
			fmt.Printf("  %s⚠ %s%s\n\n", colorYellow, message, colorReset)
		}
	}
}

func printBar(label, color string, current, total int, suffix string) {
	if total <= 0 {
		return
	}
	pct := float64(current) / float64(total) * 100
	barWidth := 30
	filled := barWidth * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Printf("  %s%-11s%s[%s%s%s] %s%.1f%%%s (%d/%d) %s%s%s\n",
		colorGray, label, colorReset, color, bar, colorReset, color, pct, colorReset, current, total, colorGray, suffix, colorReset)
}

// confirmAI shows the cost estimate and asks before sending findings out
func confirmAI(estimate *ai.CostEstimate) bool {
	fmt.Printf("\n  %s%sAI Triage Cost Estimate%s\n", colorBold, colorRed, colorReset)
	fmt.Printf("  %sFindings:%s      %d\n", colorGray, colorReset, estimate.FindingsCount)
	fmt.Printf("  %sModel:%s         %s\n", colorGray, colorReset, estimate.Model)
	fmt.Printf("  %sEst. Tokens:%s   ~%dk\n", colorGray, colorReset, estimate.EstimatedTokens/1000)
	fmt.Printf("  %sEst. Cost:%s     %s$%.2f%s\n", colorGray, colorReset, colorYellow, estimate.EstimatedCostUSD, colorReset)
	fmt.Println()

	return askYesNo(bufio.NewReader(os.Stdin), fmt.Sprintf("  %sProceed with AI triage? [Y/n]:%s ", colorBold, colorReset), true)
}

// askYesNo prints prompt and reads one answer. An empty answer returns def;
// a read error returns false.
func askYesNo(reader *bufio.Reader, prompt string, def bool) bool {
	fmt.Print(prompt)

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		fmt.Println()
		return false
	}

	switch normalizeAnswer(input) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

func normalizeAnswer(input string) string {
	return strings.TrimSpace(strings.ToLower(input))
}

func printReportPath(path string) {
	if path == "" {
		return
	}
	fmt.Printf("  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorOrange, path, colorReset)
	fmt.Println()
}

func severityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return colorRed
	case models.SeverityHigh:
		return colorOrange
	case models.SeverityMedium:
		return colorYellow
	case models.SeverityLow:
		return colorCyan
	default:
		return colorGray
	}
}
