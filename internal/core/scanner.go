package core

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/internal/config"
	"github.com/jessifoo/rayzgyproc/internal/detectors"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/internal/report"
	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Version is reported in results and overridden at build time
var Version = "dev"

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// AIConfirmCallback is called before AI triage with the cost estimate.
// Returns true to proceed, false to skip AI analysis.
type AIConfirmCallback func(estimate *ai.CostEstimate) bool

// Scanner runs the suspicious-file heuristics over a tree
type Scanner struct {
	config            *config.Config
	fs                afero.Fs
	logger            *zap.Logger
	engine            *detectors.Engine
	walker            *filesystem.Walker
	reporter          *report.Generator
	results           *models.ScanResults
	aiReport          *ai.AIReport
	analyzer          *ai.Analyzer
	progressCallback  ProgressCallback
	aiConfirmCallback AIConfirmCallback
	mu                sync.Mutex
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, fs afero.Fs, logger *zap.Logger) (*Scanner, error) {
	reporter, err := report.NewGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report generator: %w", err)
	}

	return &Scanner{
		config:   cfg,
		fs:       fs,
		logger:   logger,
		reporter: reporter,
	}, nil
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// SetAIConfirmCallback sets the AI confirmation callback function
func (s *Scanner) SetAIConfirmCallback(cb AIConfirmCallback) {
	s.aiConfirmCallback = cb
}

// SetAnalyzer overrides the AI analyzer built from the config
func (s *Scanner) SetAnalyzer(a *ai.Analyzer) {
	s.analyzer = a
}

// Reporter returns the report generator
func (s *Scanner) Reporter() *report.Generator {
	return s.reporter
}

func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// Scan walks path, inspects every regular file and reports suspicious ones
func (s *Scanner) Scan(ctx context.Context, path string) (*models.ScanResults, error) {
	s.logger.Info("Starting scan", zap.String("path", path))

	s.results = &models.ScanResults{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
		ScanPath:  path,
		Version:   Version,
		ByCheck:   make(map[models.CheckKind]int),
		Stats:     &models.ScanStatistics{},
	}
	s.aiReport = nil

	s.walker = filesystem.NewWalker(s.fs, s.config.Exclude, s.logger)
	s.walker.OnError = func(p string, err error) {
		s.mu.Lock()
		s.results.AddSkipped(p, models.StageWalk, err)
		s.mu.Unlock()
	}
	if err := s.walker.CheckRoot(path); err != nil {
		return nil, err
	}

	if err := s.initEngine(); err != nil {
		return nil, fmt.Errorf("failed to initialize detectors: %w", err)
	}

	// Count files first
	s.reportProgress("counting", 0, 0, "Counting files...")
	totalFiles := s.countFiles(ctx, path)
	s.reportProgress("counting", totalFiles, totalFiles, fmt.Sprintf("Found %d files to scan", totalFiles))

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	s.results.Stats.WorkersUsed = workers

	if err := s.scanFiles(ctx, path, workers, totalFiles); err != nil {
		return nil, err
	}

	// Worker completion order is not deterministic
	sort.Slice(s.results.Findings, func(i, j int) bool {
		return s.results.Findings[i].File.Path < s.results.Findings[j].File.Path
	})
	sort.Slice(s.results.Skipped, func(i, j int) bool {
		return s.results.Skipped[i].Path < s.results.Skipped[j].Path
	})

	if s.config.AI.Enabled && len(s.results.Findings) > 0 {
		s.runAI(ctx)
	}

	s.results.EndTime = time.Now()
	s.results.Duration = s.results.EndTime.Sub(s.results.StartTime)
	s.calculateStats()

	reportPath, err := s.reporter.GenerateScan(s.results, s.aiReport)
	if err != nil {
		s.logger.Error("Failed to generate report", zap.Error(err))
		return s.results, err
	}
	s.results.ReportPath = reportPath

	s.logger.Info("Scan completed",
		zap.Duration("duration", s.results.Duration),
		zap.Int("suspicious_files", len(s.results.Findings)),
		zap.Int("files_scanned", s.results.ScannedFiles))

	return s.results, nil
}

// AIReport returns the triage report of the last scan, if any
func (s *Scanner) AIReport() *ai.AIReport {
	return s.aiReport
}

func (s *Scanner) initEngine() error {
	rules, err := signatures.NewLoader(s.fs, s.config.RulesPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	s.logger.Info("Loaded rules", zap.Int("count", len(rules.Rules)))

	s.engine = detectors.NewEngine(s.fs, rules, detectors.Options{
		MaxContentSize: filesystem.ParseSize(s.config.MaxContentSize),
		ContentDirs:    s.config.ContentDirs,
		Checks:         s.config.Checks,
	}, s.logger)
	return nil
}

// countFiles counts regular files under path
func (s *Scanner) countFiles(ctx context.Context, path string) int {
	count := 0
	counter := filesystem.NewWalker(s.fs, s.config.Exclude, zap.NewNop())
	_ = counter.Walk(ctx, path, func(*models.FileInfo) error {
		count++
		return nil
	})
	return count
}

// ScanResult represents the result of inspecting a single file
type ScanResult struct {
	FileInfo   *models.FileInfo
	Inspection detectors.Inspection
}

// scanFiles inspects all files using a worker pool
func (s *Scanner) scanFiles(ctx context.Context, path string, workers int, totalFiles int) error {
	fileChan := make(chan *models.FileInfo, workers*2)
	resultsChan := make(chan *ScanResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, fileChan, resultsChan)
	}

	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go s.collectResults(&collectWg, resultsChan, totalFiles)

	walkErr := s.walker.Walk(ctx, path, func(fileInfo *models.FileInfo) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fileChan <- fileInfo:
			s.mu.Lock()
			s.results.TotalFiles++
			s.mu.Unlock()
			return nil
		}
	})

	close(fileChan)
	wg.Wait()
	close(resultsChan)
	collectWg.Wait()

	return walkErr
}

// worker processes files from the channel
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, fileChan <-chan *models.FileInfo, resultsChan chan<- *ScanResult) {
	defer wg.Done()

	for fileInfo := range fileChan {
		select {
		case <-ctx.Done():
			return
		default:
			resultsChan <- &ScanResult{
				FileInfo:   fileInfo,
				Inspection: s.engine.Inspect(ctx, fileInfo),
			}
		}
	}
}

// collectResults folds worker output into the scan results
func (s *Scanner) collectResults(wg *sync.WaitGroup, resultsChan <-chan *ScanResult, totalFiles int) {
	defer wg.Done()

	processed := 0
	lastReport := time.Now()

	for result := range resultsChan {
		s.mu.Lock()

		fi := result.FileInfo
		insp := result.Inspection
		processed++
		s.results.ScannedFiles++
		s.results.Stats.TotalSize += fi.Size
		if fi.Size > s.results.Stats.LargestFileSize {
			s.results.Stats.LargestFileSize = fi.Size
			s.results.Stats.LargestFile = fi.RelativePath
		}

		switch insp.Content {
		case detectors.ContentScanned:
			s.results.Stats.ContentScanned++
		case detectors.ContentTooLarge:
			s.results.Stats.TooLarge++
		case detectors.ContentBinary:
			s.results.Stats.BinarySkipped++
		}

		// Unreadable files are still listed when other checks flagged them
		if insp.Err != nil {
			s.results.AddSkipped(fi.Path, models.StageRead, insp.Err)
		}
		if insp.Finding != nil {
			s.results.AddFinding(insp.Finding)
		}

		if time.Since(lastReport) > 100*time.Millisecond || processed%100 == 0 {
			s.reportProgress("scanning", processed, totalFiles, fi.Path)
			lastReport = time.Now()
		}

		s.mu.Unlock()
	}

	s.reportProgress("scanning", processed, totalFiles, "Scan complete")
}

// runAI triages findings. Failures degrade to a report without verdicts.
func (s *Scanner) runAI(ctx context.Context) {
	analyzer := s.analyzer
	if analyzer == nil {
		var err error
		analyzer, err = ai.NewAnalyzer(&s.config.AI, s.logger)
		if err != nil {
			s.reportProgress("ai_error", 0, 0, fmt.Sprintf("AI skipped: %s", err.Error()))
			s.logger.Debug("Failed to initialize AI analyzer", zap.Error(err))
			return
		}
	}

	selected := analyzer.Select(s.results.Findings)
	estimate := ai.EstimateCost(s.config.AI.Model, len(selected))
	if s.aiConfirmCallback != nil && !s.aiConfirmCallback(estimate) {
		s.reportProgress("ai_skipped", 0, 0, "AI analysis skipped by user")
		s.logger.Info("AI analysis skipped by user")
		return
	}

	analyzer.SetProgressCallback(func(current, total int, message string) {
		s.reportProgress("ai_analysis", current, total, message)
	})

	aiReport, err := analyzer.AnalyzeFindings(ctx, s.results.Findings)
	if err != nil {
		s.reportProgress("ai_error", 0, 0, fmt.Sprintf("AI failed: %s", err.Error()))
		s.logger.Debug("AI analysis failed", zap.Error(err))
	}
	s.aiReport = aiReport
	s.reportProgress("ai_complete", aiReport.TotalTokensUsed, aiReport.AnalyzedCount, "AI analysis complete")
}

// calculateStats calculates final statistics
func (s *Scanner) calculateStats() {
	if s.results.ScannedFiles > 0 {
		s.results.Stats.AverageFileSize = s.results.Stats.TotalSize / int64(s.results.ScannedFiles)
	}

	duration := s.results.Duration.Seconds()
	if duration > 0 {
		s.results.Stats.FilesPerSecond = float64(s.results.ScannedFiles) / duration
	}
}
