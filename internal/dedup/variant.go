package dedup

import (
	"path/filepath"
	"regexp"
)

// sizedVariantRe matches the "-<width>x<height>.<ext>" suffix that image
// pipelines append to generated thumbnails
var sizedVariantRe = regexp.MustCompile(`-\d+x\d+\.[a-zA-Z]+$`)

// IsSizedVariant reports whether filename looks like a generated size
// variant such as "photo-300x200.jpg". Only the base name is inspected.
//
// Known limitation: this is a naming heuristic. Variants named any other
// way are not recognized, and an unrelated file that happens to end in
// "-<digits>x<digits>.<ext>" (e.g. "report-2020x2021.pdf") is treated as a
// variant and exempt from deduplication.
func IsSizedVariant(filename string) bool {
	return sizedVariantRe.MatchString(filepath.Base(filename))
}
