package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrRootNotFound is returned when the scan root does not exist
	ErrRootNotFound = errors.New("scan root not found")

	// ErrRootNotDirectory is returned when the scan root is not a directory
	ErrRootNotDirectory = errors.New("scan root is not a directory")
)

// Walker walks a directory tree and yields regular files
type Walker struct {
	fs      afero.Fs
	logger  *zap.Logger
	exclude map[string]bool

	// OnError is called for entries that could not be read. The walk continues.
	OnError func(path string, err error)
}

// NewWalker creates a new filesystem walker
func NewWalker(fs afero.Fs, exclude []string, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	ex := make(map[string]bool)
	for _, name := range exclude {
		ex[name] = true
	}

	return &Walker{
		fs:      fs,
		logger:  logger,
		exclude: ex,
	}
}

// CheckRoot verifies that root exists and is a readable directory
func (w *Walker) CheckRoot(root string) error {
	info, err := w.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	f, err := w.fs.Open(root)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", root, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("cannot list %s: %w", root, err)
	}
	return nil
}

// maxRootLinks bounds the chain of links followed to reach the root
const maxRootLinks = 40

// resolveRoot returns the directory root points to when root itself is a
// symbolic link. Links below the root are never followed.
func (w *Walker) resolveRoot(root string) (string, error) {
	lstater, ok := w.fs.(afero.Lstater)
	if !ok {
		return root, nil
	}
	reader, ok := w.fs.(afero.LinkReader)
	if !ok {
		return root, nil
	}

	resolved := root
	for i := 0; i < maxRootLinks; i++ {
		info, lstatCalled, err := lstater.LstatIfPossible(resolved)
		if err != nil || !lstatCalled || info.Mode()&os.ModeSymlink == 0 {
			return resolved, nil
		}

		target, err := reader.ReadlinkIfPossible(resolved)
		if err != nil {
			return "", fmt.Errorf("cannot resolve %s: %w", root, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(resolved), target)
		}
		resolved = target
	}
	return "", fmt.Errorf("cannot resolve %s: too many levels of symbolic links", root)
}

// Walk recursively walks root and calls callback for every regular file.
// A root that is a symbolic link is resolved first; symbolic links inside
// the tree are never followed. Reported paths stay under root as given.
func (w *Walker) Walk(ctx context.Context, root string, callback func(*models.FileInfo) error) error {
	if err := w.CheckRoot(root); err != nil {
		return err
	}

	walkRoot, err := w.resolveRoot(root)
	if err != nil {
		return err
	}
	if walkRoot != root {
		w.logger.Debug("Scan root is a symbolic link", zap.String("root", root), zap.String("target", walkRoot))
	}

	return afero.Walk(w.fs, walkRoot, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			if w.OnError != nil {
				w.OnError(path, err)
			}
			return nil // Continue walking
		}

		// Get relative path
		relPath, err := filepath.Rel(walkRoot, path)
		if err != nil {
			relPath = path
		}

		if info.IsDir() {
			if path != walkRoot && w.shouldExclude(relPath) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", relPath))
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			w.logger.Debug("Skipping symlink", zap.String("path", relPath))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if w.shouldExclude(relPath) {
			return nil
		}

		if walkRoot != root {
			path = filepath.Join(root, relPath)
		}

		fileInfo := &models.FileInfo{
			Path:         path,
			RelativePath: relPath,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Mode:         info.Mode(),
			IsHidden:     isHidden(info.Name()),
		}

		// Get change time (platform-dependent)
		fileInfo.ChangeTime = getChangeTime(info)

		return callback(fileInfo)
	})
}

// Collect walks root and returns every regular file found
func (w *Walker) Collect(ctx context.Context, root string) ([]*models.FileInfo, error) {
	var files []*models.FileInfo
	err := w.Walk(ctx, root, func(fi *models.FileInfo) error {
		files = append(files, fi)
		return nil
	})
	return files, err
}

// shouldExclude checks if any component of the relative path is excluded
func (w *Walker) shouldExclude(relPath string) bool {
	parts := strings.Split(relPath, string(os.PathSeparator))
	for _, part := range parts {
		if w.exclude[part] {
			return true
		}
	}
	return false
}

// isHidden checks if a file is hidden
func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// GetExtension returns the file extension without dot
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
