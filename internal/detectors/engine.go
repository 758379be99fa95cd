package detectors

import (
	"context"
	"sort"
	"time"

	"github.com/jessifoo/rayzgyproc/internal/deobfuscator"
	"github.com/jessifoo/rayzgyproc/internal/filesystem"
	"github.com/jessifoo/rayzgyproc/internal/signatures"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultTextExtensions are scanned for content even when they contain NUL bytes
var DefaultTextExtensions = []string{"php", "phtml", "php3", "php4", "php5", "php7", "inc", "js", "txt"}

// ContentStatus tells whether and why content was or was not scanned
type ContentStatus int

const (
	ContentScanned ContentStatus = iota
	ContentTooLarge
	ContentBinary
	ContentUnreadable
	ContentDisabled // content check turned off, the body was not read
)

// Options configures the engine
type Options struct {
	MaxContentSize   int64
	TextExtensions   []string
	ContentDirs      []string
	ScriptExtensions []string
	Checks           []string // Enabled checks, empty means all
}

// Inspection is the outcome of inspecting one file
type Inspection struct {
	Finding *models.Finding // nil when the file is clean
	Content ContentStatus
	Err     error // read failure, the other checks still ran
}

// Engine runs every enabled detector over a file. It holds no per-file
// state and is safe for concurrent use.
type Engine struct {
	fs             afero.Fs
	logger         *zap.Logger
	detectors      []Detector
	maxContentSize int64
	textExts       map[string]bool
}

// NewEngine creates the detector chain over an immutable rule set
func NewEngine(fs afero.Fs, rules *models.RuleSet, opts Options, logger *zap.Logger) *Engine {
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = 10 * 1024 * 1024
	}
	if opts.TextExtensions == nil {
		opts.TextExtensions = DefaultTextExtensions
	}
	if opts.ScriptExtensions == nil {
		opts.ScriptExtensions = DefaultScriptExtensions
	}

	textExts := make(map[string]bool)
	for _, e := range opts.TextExtensions {
		textExts[e] = true
	}

	matcher := signatures.NewMatcher(rules)
	e := &Engine{
		fs:             fs,
		logger:         logger,
		maxContentSize: opts.MaxContentSize,
		textExts:       textExts,
	}
	e.register(NewFilenameDetector(matcher))
	e.register(NewMIMEDetector(opts.ContentDirs))
	e.register(NewContentDetector(matcher, deobfuscator.NewDefaultManager()))
	e.register(NewPermissionDetector(opts.ScriptExtensions))

	if len(opts.Checks) > 0 {
		enabled := make(map[string]bool)
		for _, c := range opts.Checks {
			enabled[c] = true
		}
		for _, d := range e.detectors {
			d.SetEnabled(enabled[string(d.Kind())])
		}
	}

	return e
}

func (e *Engine) register(d Detector) {
	e.detectors = append(e.detectors, d)
	sort.SliceStable(e.detectors, func(i, j int) bool {
		return e.detectors[i].Priority() > e.detectors[j].Priority()
	})
	e.logger.Debug("Registered detector", zap.String("name", d.Name()), zap.Int("priority", d.Priority()))
}

// Detectors returns the registered detectors in execution order
func (e *Engine) Detectors() []Detector {
	return e.detectors
}

// contentEnabled reports whether any enabled detector inspects file bodies
func (e *Engine) contentEnabled() bool {
	for _, d := range e.detectors {
		if d.Kind() == models.CheckContent && d.IsEnabled() {
			return true
		}
	}
	return false
}

// Inspect runs the checks for one file in order filename, mime, content,
// permission and unions their issues
func (e *Engine) Inspect(ctx context.Context, fi *models.FileInfo) Inspection {
	var result Inspection
	file := filesystem.NewFile(fi)

	if fi.Size > 0 {
		header, err := filesystem.ReadHeader(e.fs, fi.Path, filesystem.HeaderSize)
		if err != nil {
			result.Err = err
			result.Content = ContentUnreadable
		}
		file.Header = header
	}

	if result.Err == nil {
		switch {
		case !e.contentEnabled():
			result.Content = ContentDisabled
		case fi.Size > e.maxContentSize:
			result.Content = ContentTooLarge
		case filesystem.IsBinary(file.Header) && !e.textExts[file.Extension]:
			result.Content = ContentBinary
		default:
			loaded, err := filesystem.ReadFile(e.fs, fi)
			if err != nil {
				result.Err = err
				result.Content = ContentUnreadable
			} else {
				file.Content = loaded.Content
				result.Content = ContentScanned
			}
		}
	}

	var issues []models.Issue
	for _, d := range e.detectors {
		if !d.IsEnabled() {
			continue
		}
		found, err := d.Detect(ctx, file)
		if err != nil {
			e.logger.Warn("Detector failed",
				zap.String("detector", d.Name()),
				zap.String("file", fi.Path),
				zap.Error(err))
		}
		issues = append(issues, found...)
	}

	if len(issues) > 0 {
		info := *fi
		result.Finding = &models.Finding{
			File:      &info,
			MIMEType:  DetectMIME(file.Extension, file.Header),
			Issues:    issues,
			Timestamp: time.Now(),
		}
	}

	return result
}
