package hasher

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Task is a file waiting to be hashed
type Task struct {
	Path string
	Size int64
}

// Result is the outcome of one task
type Result struct {
	Path        string
	Size        int64
	Fingerprint models.Fingerprint
	Err         error
}

// Pool hashes files in parallel on an ants goroutine pool
type Pool struct {
	hasher  *Hasher
	workers int
	logger  *zap.Logger

	// OnHashed is called after each file, from worker goroutines
	OnHashed func(done, total int)
}

// NewPool creates a hashing pool. workers <= 0 uses the CPU count.
func NewPool(h *Hasher, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{hasher: h, workers: workers, logger: logger}
}

// HashAll hashes every task. Results are returned in task order, so the
// output does not depend on scheduling. Per-file failures are reported in
// Result.Err; only cancellation fails the whole call.
func (p *Pool) HashAll(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create goroutine pool: %w", err)
	}
	defer pool.Release()

	p.logger.Debug("Hashing files", zap.Int("files", len(tasks)), zap.Int("workers", p.workers))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for i := range tasks {
		if ctx.Err() != nil {
			break
		}

		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			task := tasks[i]
			results[i] = Result{Path: task.Path, Size: task.Size}

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}

			results[i].Fingerprint, results[i].Err = p.hasher.HashFile(task.Path)

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if p.OnHashed != nil {
				p.OnHashed(n, len(tasks))
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{Path: tasks[i].Path, Size: tasks[i].Size, Err: submitErr}
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
