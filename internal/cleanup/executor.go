package cleanup

import (
	"context"
	"fmt"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Confirmer is asked once per non-empty category before anything in it is
// removed. Returning false leaves the category untouched.
type Confirmer func(category Category, targets []Target) bool

// Result contains the outcome of Execute
type Result struct {
	Confirmed  map[Category]bool
	Removed    map[Category]int
	FreedBytes int64
	Errors     []models.SkippedFile
}

// Executor removes the files of a confirmed plan
type Executor struct {
	fs        afero.Fs
	logger    *zap.Logger
	callbacks Callbacks
}

// NewExecutor creates an executor deleting through fs
func NewExecutor(fs afero.Fs, logger *zap.Logger, callbacks Callbacks) *Executor {
	return &Executor{fs: fs, logger: logger, callbacks: callbacks}
}

// Execute asks confirm once for backups and once for duplicates, then
// removes the confirmed targets. A nil confirmer removes nothing. A failed
// removal is recorded and the batch continues.
func (e *Executor) Execute(ctx context.Context, plan *Plan, confirm Confirmer) *Result {
	result := &Result{
		Confirmed: make(map[Category]bool),
		Removed:   make(map[Category]int),
	}

	for _, category := range []Category{CategoryBackup, CategoryDuplicate} {
		targets := plan.Targets(category)
		if len(targets) == 0 {
			continue
		}

		if confirm == nil || !confirm(category, targets) {
			e.logger.Info("Deletion declined", zap.String("category", string(category)), zap.Int("files", len(targets)))
			callSafe(e.callbacks.OnDeclined, DeclinedInfo{Category: category, Files: len(targets)})
			continue
		}
		result.Confirmed[category] = true

		for _, target := range targets {
			if err := ctx.Err(); err != nil {
				e.logger.Warn("Deletion interrupted", zap.Error(err))
				return result
			}
			e.remove(category, target, result)
		}
	}

	return result
}

func (e *Executor) remove(category Category, target Target, result *Result) {
	if category == CategoryDuplicate {
		// Never drop the last copy
		if _, err := e.fs.Stat(target.Keep); err != nil {
			e.fail(category, target.Path, fmt.Errorf("retained copy %s unavailable: %w", target.Keep, err), result)
			return
		}
	}

	if err := e.fs.Remove(target.Path); err != nil {
		e.fail(category, target.Path, err, result)
		return
	}

	result.Removed[category]++
	result.FreedBytes += target.Size
	e.logger.Debug("File deleted", zap.String("category", string(category)), zap.String("path", target.Path))
	callSafe(e.callbacks.OnFileDeleted, FileDeletedInfo{Category: category, Path: target.Path, Size: target.Size})
}

func (e *Executor) fail(category Category, path string, err error, result *Result) {
	e.logger.Warn("Failed to delete file", zap.String("path", path), zap.Error(err))
	result.Errors = append(result.Errors, models.SkippedFile{
		Path:  path,
		Stage: models.StageDelete,
		Error: err.Error(),
	})
	callSafe(e.callbacks.OnError, ErrorInfo{Category: category, Path: path, Error: err})
}
