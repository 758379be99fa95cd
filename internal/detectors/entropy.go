package detectors

import (
	"math"
)

// Entropy thresholds in bits per byte
const (
	EntropyObfuscated    = 5.5 // Likely packed or encoded
	EntropyHighlyEncoded = 6.0 // Base64 or encrypted blob

	entropyChunkSize = 512
	// Short files say nothing about their byte distribution
	minEntropySize = 1024
)

// entropyExtensions are the script types where a packed body is suspicious.
// Images, archives and fonts are expected to be dense.
var entropyExtensions = map[string]bool{
	"php": true, "phtml": true, "php3": true, "php4": true, "php5": true, "php7": true,
	"inc": true, "js": true, "pl": true, "py": true, "cgi": true, "sh": true,
	"asp": true, "aspx": true, "jsp": true,
}

// CalculateEntropy returns the Shannon entropy of data, 0 to 8
func CalculateEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	length := float64(len(data))
	var entropy float64
	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}

// MaxChunkEntropy returns the highest entropy among chunkSize slices of data
func MaxChunkEntropy(data []byte, chunkSize int) float64 {
	if len(data) == 0 || chunkSize <= 0 {
		return 0
	}

	var max float64
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if e := CalculateEntropy(data[i:end]); e > max {
			max = e
		}
	}
	return max
}

// EntropyAnalysis is the entropy profile of a file body
type EntropyAnalysis struct {
	Overall      float64
	Max          float64 // Highest chunk entropy
	IsObfuscated bool
	Confidence   int // 0-100
}

// AnalyzeEntropy profiles data. A packed file is either dense throughout
// or carries one dense region in otherwise normal code.
func AnalyzeEntropy(data []byte) *EntropyAnalysis {
	analysis := &EntropyAnalysis{
		Overall: CalculateEntropy(data),
		Max:     MaxChunkEntropy(data, entropyChunkSize),
	}

	switch {
	case analysis.Overall > EntropyHighlyEncoded:
		analysis.IsObfuscated = true
		analysis.Confidence = 95
	case analysis.Overall > EntropyObfuscated:
		analysis.IsObfuscated = true
		analysis.Confidence = 75
	case analysis.Max > EntropyHighlyEncoded:
		analysis.IsObfuscated = true
		analysis.Confidence = 60
	}

	return analysis
}
