package deobfuscator

import (
	"bytes"
	"encoding/base64"
	"regexp"
)

// MinPayloadSize is the smallest trimmed file treated as a possible base64 payload
const MinPayloadSize = 100

// Base64PayloadDeobfuscator decodes files whose whole content is base64
type Base64PayloadDeobfuscator struct {
	minSize int
}

// NewBase64PayloadDeobfuscator creates a whole-content base64 deobfuscator
func NewBase64PayloadDeobfuscator(minSize int) *Base64PayloadDeobfuscator {
	return &Base64PayloadDeobfuscator{minSize: minSize}
}

// Name returns the deobfuscator name
func (d *Base64PayloadDeobfuscator) Name() string {
	return "base64_payload"
}

// CanDeobfuscate checks the size threshold
func (d *Base64PayloadDeobfuscator) CanDeobfuscate(content []byte) bool {
	return len(bytes.TrimSpace(content)) > d.minSize
}

// Deobfuscate strictly decodes the content with line breaks removed.
// Content that is not valid base64 yields no payload.
func (d *Base64PayloadDeobfuscator) Deobfuscate(content []byte) [][]byte {
	compact := stripWhitespace(content)

	decoded, err := base64.StdEncoding.Strict().DecodeString(string(compact))
	if err != nil {
		decoded, err = base64.RawStdEncoding.Strict().DecodeString(string(compact))
		if err != nil {
			return nil
		}
	}
	return [][]byte{decoded}
}

func stripWhitespace(content []byte) []byte {
	out := make([]byte, 0, len(content))
	for _, b := range content {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		out = append(out, b)
	}
	return out
}

var base64LiteralRe = regexp.MustCompile(`base64_decode\s*\(\s*['"]([A-Za-z0-9+/=]{20,})['"]`)

// Base64LiteralDeobfuscator decodes string literals passed to base64_decode
type Base64LiteralDeobfuscator struct{}

// NewBase64LiteralDeobfuscator creates a new base64 literal deobfuscator
func NewBase64LiteralDeobfuscator() *Base64LiteralDeobfuscator {
	return &Base64LiteralDeobfuscator{}
}

// Name returns the deobfuscator name
func (d *Base64LiteralDeobfuscator) Name() string {
	return "base64_literal"
}

// CanDeobfuscate checks for base64_decode calls with a long literal argument
func (d *Base64LiteralDeobfuscator) CanDeobfuscate(content []byte) bool {
	return base64LiteralRe.Match(content)
}

// Deobfuscate returns the decoded literals. Literals that fail to decode are skipped.
func (d *Base64LiteralDeobfuscator) Deobfuscate(content []byte) [][]byte {
	var payloads [][]byte
	for _, m := range base64LiteralRe.FindAllSubmatch(content, -1) {
		decoded, err := base64.StdEncoding.DecodeString(string(m[1]))
		if err != nil {
			continue
		}
		payloads = append(payloads, decoded)
	}
	return payloads
}
