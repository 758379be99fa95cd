package filesystem

import (
	"testing"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/spf13/afero"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"Bytes", "100", 100},
		{"Kilobytes", "1K", 1024},
		{"Kilobytes lowercase", "1k", 1024},
		{"Megabytes", "1M", 1024 * 1024},
		{"Megabytes lowercase", "1m", 1024 * 1024},
		{"Gigabytes", "1G", 1024 * 1024 * 1024},
		{"Multiple KB", "650K", 650 * 1024},
		{"Multiple MB", "10M", 10 * 1024 * 1024},
		{"Invalid format", "abc", 0},
		{"Empty string", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{10 * 1024 * 1024, "10.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.input); got != tt.expected {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/path/to/file.php", "php"},
		{"/path/to/file.PHP", "PHP"}, // Extension preserves case
		{"/path/to/file.js", "js"},
		{"/path/to/.htaccess", "htaccess"},
		{"/path/to/file", ""},
		{"/path/to/file.tar.gz", "gz"},
		{"file.php", "php"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := GetExtension(tt.path); got != tt.expected {
				t.Errorf("GetExtension(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestNewFile_LowercasesExtension(t *testing.T) {
	file := NewFile(&models.FileInfo{Path: "/site/uploads/Photo.JPG"})

	if file.Name != "Photo.JPG" {
		t.Errorf("Name = %q, want %q", file.Name, "Photo.JPG")
	}
	if file.Extension != "jpg" {
		t.Errorf("Extension = %q, want %q", file.Extension, "jpg")
	}
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	testContent := "<?php echo 'hello'; ?>"
	if err := afero.WriteFile(fs, "/site/test.php", []byte(testContent), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	fileInfo := &models.FileInfo{
		Path: "/site/test.php",
		Size: int64(len(testContent)),
	}

	file, err := ReadFile(fs, fileInfo)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(file.Content) != testContent {
		t.Errorf("File content = %q, want %q", string(file.Content), testContent)
	}
	if string(file.Header) != testContent {
		t.Errorf("File header = %q, want %q", string(file.Header), testContent)
	}
	if file.Extension != "php" {
		t.Errorf("File extension = %q, want %q", file.Extension, "php")
	}
}

func TestReadFile_NonExistent(t *testing.T) {
	fs := afero.NewMemMapFs()
	fileInfo := &models.FileInfo{Path: "/nonexistent/file.php"}

	if _, err := ReadFile(fs, fileInfo); err == nil {
		t.Error("ReadFile() expected error for non-existent file, got nil")
	}
}

func TestReadFile_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/site/empty.txt", nil, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	file, err := ReadFile(fs, &models.FileInfo{Path: "/site/empty.txt"})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(file.Content) != 0 {
		t.Errorf("Empty file content length = %d, want 0", len(file.Content))
	}
}

func TestReadHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := make([]byte, 3000)
	for i := range data {
		data[i] = 'a'
	}
	if err := afero.WriteFile(fs, "/big.txt", data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/small.txt", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	header, err := ReadHeader(fs, "/big.txt", HeaderSize)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if len(header) != HeaderSize {
		t.Errorf("len(header) = %d, want %d", len(header), HeaderSize)
	}

	header, err = ReadHeader(fs, "/small.txt", HeaderSize)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if string(header) != "abc" {
		t.Errorf("header = %q, want %q", header, "abc")
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text")) {
		t.Error("IsBinary(text) = true, want false")
	}
	if !IsBinary([]byte{'G', 'I', 'F', 0x00, 0x01}) {
		t.Error("IsBinary(NUL) = false, want true")
	}
	if IsBinary(nil) {
		t.Error("IsBinary(nil) = true, want false")
	}
}
