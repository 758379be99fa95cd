package dedup

import (
	"context"
	"sort"

	"github.com/jessifoo/rayzgyproc/internal/hasher"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"go.uber.org/zap"
)

// Builder fills an Index from walked files
type Builder struct {
	pool   *hasher.Pool
	logger *zap.Logger
}

// NewBuilder creates a builder hashing through pool
func NewBuilder(pool *hasher.Pool, logger *zap.Logger) *Builder {
	return &Builder{pool: pool, logger: logger}
}

// Build hashes every file that is not a sized variant and indexes it.
// Files are processed in lexical path order.
func (b *Builder) Build(ctx context.Context, files []*models.FileInfo) (*Index, error) {
	idx := NewIndex()

	sorted := append([]*models.FileInfo(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	tasks := make([]hasher.Task, 0, len(sorted))
	for _, fi := range sorted {
		if IsSizedVariant(fi.Path) {
			b.logger.Debug("Preserving sized variant", zap.String("path", fi.Path))
			idx.Preserve()
			continue
		}
		tasks = append(tasks, hasher.Task{Path: fi.Path, Size: fi.Size})
	}

	results, err := b.pool.HashAll(ctx, tasks)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Err != nil {
			b.logger.Warn("Skipping file", zap.String("path", r.Path), zap.Error(r.Err))
			idx.Skip(r.Path, r.Err)
			continue
		}
		idx.Add(r.Path, r.Size, r.Fingerprint)
	}

	return idx, nil
}
