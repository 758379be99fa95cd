package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ChunkSize is the read size used when streaming a file into the hash
const ChunkSize = 64 * 1024

// Algorithm selects the content digest
type Algorithm string

const (
	// SHA256 is collision resistant and required for any deletion
	SHA256 Algorithm = "sha256"
	// XXHash is a fast non-cryptographic digest for report-only runs
	XXHash Algorithm = "xxhash"
)

// ParseAlgorithm validates an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case SHA256, "":
		return SHA256, nil
	case XXHash:
		return XXHash, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q (use sha256 or xxhash)", name)
}

// Safe reports whether fingerprints from the algorithm may drive deletion
func (a Algorithm) Safe() bool {
	return a == SHA256
}

func (a Algorithm) newHash() hash.Hash {
	if a == XXHash {
		return xxhash.New()
	}
	return sha256.New()
}

// HashReader streams r into a SHA-256 accumulator chunkSize bytes at a time
// and returns the lowercase hex digest
func HashReader(r io.Reader, chunkSize int) (string, error) {
	return sumReader(sha256.New(), r, chunkSize)
}

func sumReader(h hash.Hash, r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Hasher computes file fingerprints
type Hasher struct {
	fs        afero.Fs
	algorithm Algorithm
	logger    *zap.Logger
}

// New creates a hasher reading through fs
func New(fs afero.Fs, algorithm Algorithm, logger *zap.Logger) *Hasher {
	if algorithm == "" {
		algorithm = SHA256
	}
	return &Hasher{fs: fs, algorithm: algorithm, logger: logger}
}

// Algorithm returns the digest in use
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// HashFile returns the fingerprint of the file at path
func (h *Hasher) HashFile(path string) (models.Fingerprint, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := sumReader(h.algorithm.newHash(), f, ChunkSize)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	h.logger.Debug("File hashed", zap.String("path", path), zap.String("hash", sum))
	return models.Fingerprint(sum), nil
}
