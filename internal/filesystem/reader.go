package filesystem

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
)

// HeaderSize is the number of leading bytes used for binary and type sniffing
const HeaderSize = 1024

// NewFile builds a File model without reading any content
func NewFile(fileInfo *models.FileInfo) *models.File {
	return &models.File{
		FileInfo:  *fileInfo,
		Name:      filepath.Base(fileInfo.Path),
		Extension: strings.ToLower(GetExtension(fileInfo.Path)),
	}
}

// ReadHeader reads up to n leading bytes of a file
func ReadHeader(fs afero.Fs, path string, n int) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return buf[:read], nil
}

// ReadFile reads a file and returns a File model with content and header filled in
func ReadFile(fs afero.Fs, fileInfo *models.FileInfo) (*models.File, error) {
	content, err := afero.ReadFile(fs, fileInfo.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	file := NewFile(fileInfo)
	file.Content = content
	file.Header = content
	if len(content) > HeaderSize {
		file.Header = content[:HeaderSize]
	}
	return file, nil
}

// IsBinary reports whether the header contains a NUL byte
func IsBinary(header []byte) bool {
	for _, b := range header {
		if b == 0 {
			return true
		}
	}
	return false
}

// ParseSize parses size string (e.g., "650K", "1M") to bytes
func ParseSize(sizeStr string) int64 {
	if len(sizeStr) == 0 {
		return 0
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	// Parse number
	var size int64
	fmt.Sscanf(sizeStr, "%d", &size)

	return size * multiplier
}

// FormatSize renders a byte count with a binary unit
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
