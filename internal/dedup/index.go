package dedup

import (
	"sort"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// Index maps fingerprints to the paths that share them
type Index struct {
	groups    map[models.Fingerprint]*models.DuplicateGroup
	skipped   []models.SkippedFile
	hashed    int
	preserved int
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		groups: make(map[models.Fingerprint]*models.DuplicateGroup),
	}
}

// Add records a hashed file
func (idx *Index) Add(path string, size int64, fp models.Fingerprint) {
	g, ok := idx.groups[fp]
	if !ok {
		g = &models.DuplicateGroup{Fingerprint: fp, Size: size}
		idx.groups[fp] = g
	}
	g.Paths = append(g.Paths, path)
	idx.hashed++
}

// Skip records a file that could not be fingerprinted
func (idx *Index) Skip(path string, err error) {
	idx.skipped = append(idx.skipped, models.SkippedFile{
		Path:  path,
		Stage: models.StageHash,
		Error: err.Error(),
	})
}

// Preserve counts a file exempt from deduplication
func (idx *Index) Preserve() {
	idx.preserved++
}

// GroupsWithDuplicates returns every group with two or more members. Paths
// inside a group are sorted so the first one is the copy to keep, and
// groups are ordered by that first path.
func (idx *Index) GroupsWithDuplicates() []models.DuplicateGroup {
	var out []models.DuplicateGroup
	for _, g := range idx.groups {
		if len(g.Paths) < 2 {
			continue
		}
		paths := append([]string(nil), g.Paths...)
		sort.Strings(paths)
		out = append(out, models.DuplicateGroup{
			Fingerprint: g.Fingerprint,
			Size:        g.Size,
			Paths:       paths,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Paths[0] < out[j].Paths[0]
	})
	return out
}

// UniqueCount returns the number of distinct fingerprints
func (idx *Index) UniqueCount() int {
	return len(idx.groups)
}

// HashedCount returns the number of files added to the index
func (idx *Index) HashedCount() int {
	return idx.hashed
}

// PreservedCount returns the number of sized variants left out
func (idx *Index) PreservedCount() int {
	return idx.preserved
}

// SkippedFiles returns files that failed to hash, sorted by path
func (idx *Index) SkippedFiles() []models.SkippedFile {
	out := append([]models.SkippedFile(nil), idx.skipped...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
