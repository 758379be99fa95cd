package detectors

import (
	"testing"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

func TestBaseDetector_Accessors(t *testing.T) {
	detector := NewBaseDetector("test_detector", models.CheckContent, 10)

	if got := detector.Name(); got != "test_detector" {
		t.Errorf("Name() = %v, want %v", got, "test_detector")
	}
	if got := detector.Kind(); got != models.CheckContent {
		t.Errorf("Kind() = %v, want %v", got, models.CheckContent)
	}
	if got := detector.Priority(); got != 10 {
		t.Errorf("Priority() = %v, want %v", got, 10)
	}
}

func TestBaseDetector_SetEnabled(t *testing.T) {
	detector := NewBaseDetector("test_detector", models.CheckFilename, 10)

	// Should be enabled by default
	if !detector.IsEnabled() {
		t.Error("IsEnabled() = false, want true (default)")
	}

	detector.SetEnabled(false)
	if detector.IsEnabled() {
		t.Error("After SetEnabled(false), IsEnabled() = true, want false")
	}

	detector.SetEnabled(true)
	if !detector.IsEnabled() {
		t.Error("After SetEnabled(true), IsEnabled() = false, want true")
	}
}

func TestDetectMIME(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	tests := []struct {
		name     string
		ext      string
		header   []byte
		expected string
	}{
		{"PHP", "php", nil, "application/x-httpd-php"},
		{"Uppercase PHTML", "PHTML", nil, "application/x-httpd-php"},
		{"Shell", "sh", nil, "application/x-sh"},
		{"JPEG", "jpg", nil, "image/jpeg"},
		{"Unknown extension sniffed", "dat", png, "image/png"},
		{"Unknown extension, unknown bytes", "dat", []byte("hello"), "application/octet-stream"},
		{"No extension", "", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIME(tt.ext, tt.header); got != tt.expected {
				t.Errorf("DetectMIME(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}
