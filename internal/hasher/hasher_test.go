package hasher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHashReader_ChunkSizeIndependent(t *testing.T) {
	data := make([]byte, 200*1024+17)
	rand.New(rand.NewSource(42)).Read(data)

	sum := sha256.Sum256(data)
	want := hex.EncodeToString(sum[:])

	for _, size := range []int{1, 7, 4096, ChunkSize, ChunkSize + 1, 1 << 20} {
		got, err := HashReader(bytes.NewReader(data), size)
		require.NoError(t, err)
		assert.Equal(t, want, got, "chunk size %d", size)
	}
}

func TestHashReader_Empty(t *testing.T) {
	got, err := HashReader(bytes.NewReader(nil), ChunkSize)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
	assert.Len(t, got, 64)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device error") }

func TestHashReader_ReadError(t *testing.T) {
	_, err := HashReader(failingReader{}, ChunkSize)
	assert.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, alg)
	assert.True(t, alg.Safe())

	alg, err = ParseAlgorithm("xxhash")
	require.NoError(t, err)
	assert.Equal(t, XXHash, alg)
	assert.False(t, alg.Safe())

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)
}

func TestHasher_HashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.txt", []byte("X"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b.txt", []byte("X"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/c.txt", []byte("Y"), 0644))

	for _, alg := range []Algorithm{SHA256, XXHash} {
		h := New(fs, alg, zap.NewNop())

		a, err := h.HashFile("/a.txt")
		require.NoError(t, err)
		b, err := h.HashFile("/b.txt")
		require.NoError(t, err)
		c, err := h.HashFile("/c.txt")
		require.NoError(t, err)

		assert.Equal(t, a, b, alg)
		assert.NotEqual(t, a, c, alg)
	}
}

func TestHasher_HashFile_Missing(t *testing.T) {
	h := New(afero.NewMemMapFs(), SHA256, zap.NewNop())
	_, err := h.HashFile("/gone.txt")
	assert.Error(t, err)
}

func TestPool_HashAll_OrderAndErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	var tasks []Task
	for i := 0; i < 50; i++ {
		path := fmt.Sprintf("/files/%02d.txt", i)
		content := []byte(fmt.Sprintf("content-%d", i%5))
		require.NoError(t, afero.WriteFile(fs, path, content, 0644))
		tasks = append(tasks, Task{Path: path, Size: int64(len(content))})
	}
	tasks = append(tasks, Task{Path: "/files/missing.txt"})

	var calls int32
	pool := NewPool(New(fs, SHA256, zap.NewNop()), 4, zap.NewNop())
	pool.OnHashed = func(done, total int) { atomic.AddInt32(&calls, 1) }

	results, err := pool.HashAll(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, results, len(tasks))

	for i, r := range results[:50] {
		assert.Equal(t, tasks[i].Path, r.Path)
		assert.NoError(t, r.Err)
		assert.Equal(t, results[i%5].Fingerprint, r.Fingerprint)
	}
	assert.Error(t, results[50].Err)
	assert.Equal(t, int32(len(tasks)), atomic.LoadInt32(&calls))
}

func TestPool_HashAll_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.txt", []byte("a"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(New(fs, SHA256, zap.NewNop()), 2, zap.NewNop())
	_, err := pool.HashAll(ctx, []Task{{Path: "/a.txt"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_HashAll_Empty(t *testing.T) {
	pool := NewPool(New(afero.NewMemMapFs(), SHA256, zap.NewNop()), 0, zap.NewNop())
	results, err := pool.HashAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
