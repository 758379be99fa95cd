package detectors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// mimeByExtension maps lowercase extensions to MIME types
var mimeByExtension = map[string]string{
	"php": "application/x-httpd-php", "php3": "application/x-httpd-php",
	"php4": "application/x-httpd-php", "php5": "application/x-httpd-php",
	"php7": "application/x-httpd-php", "phtml": "application/x-httpd-php",
	"pht": "application/x-httpd-php", "phar": "application/x-httpd-php",
	"phps": "text/x-php", "inc": "text/x-php",
	"sh": "application/x-sh", "bash": "application/x-sh",
	"pl": "text/x-perl", "pm": "text/x-perl",
	"py": "text/x-python",
	"cgi": "application/x-httpd-cgi",
	"exe": "application/x-msdownload", "dll": "application/x-msdownload",
	"so": "application/x-sharedlib",
	"js": "application/javascript", "mjs": "application/javascript",
	"html": "text/html", "htm": "text/html",
	"css": "text/css", "txt": "text/plain", "json": "application/json",
	"xml": "application/xml", "svg": "image/svg+xml",
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "webp": "image/webp", "bmp": "image/bmp",
	"ico": "image/x-icon", "pdf": "application/pdf", "zip": "application/zip",
	"mp3": "audio/mpeg", "mp4": "video/mp4",
	"woff": "font/woff", "woff2": "font/woff2",
}

// scriptMIMETypes are types a web server may execute
var scriptMIMETypes = map[string]bool{
	"application/x-httpd-php":  true,
	"text/x-php":               true,
	"application/x-sh":         true,
	"text/x-perl":              true,
	"text/x-python":            true,
	"application/x-httpd-cgi":  true,
	"application/x-msdownload": true,
	"application/x-sharedlib":  true,
	"application/x-executable": true,
}

// imageExtensions must carry image bytes
var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "bmp": true, "ico": true,
}

// binaryExtensions may legitimately hold executable code
var binaryExtensions = map[string]bool{
	"exe": true, "dll": true, "so": true, "bin": true, "o": true,
}

// DetectMIME infers the MIME type from the extension, falling back to
// sniffing the header bytes for unknown extensions
func DetectMIME(extension string, header []byte) string {
	if mime, ok := mimeByExtension[strings.ToLower(extension)]; ok {
		return mime
	}
	if len(header) > 0 {
		if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown {
			return kind.MIME.Value
		}
	}
	return "application/octet-stream"
}

// MIMEDetector flags executable types in content directories and files
// whose bytes contradict their extension
type MIMEDetector struct {
	*BaseDetector
	contentDirs map[string]bool
}

// NewMIMEDetector creates a new MIME detector. With no content directories
// every location counts as one.
func NewMIMEDetector(contentDirs []string) *MIMEDetector {
	dirs := make(map[string]bool)
	for _, d := range contentDirs {
		dirs[d] = true
	}
	return &MIMEDetector{
		BaseDetector: NewBaseDetector("mime", models.CheckMIME, 300),
		contentDirs:  dirs,
	}
}

// Detect checks the declared and sniffed types of a file
func (d *MIMEDetector) Detect(ctx context.Context, file *models.File) ([]models.Issue, error) {
	var issues []models.Issue

	mime := DetectMIME(file.Extension, file.Header)
	if scriptMIMETypes[mime] && d.inContentDir(file) {
		issues = append(issues, models.Issue{
			Check:    models.CheckMIME,
			RuleID:   "MIME-SCRIPT",
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("Suspicious MIME type: %s", mime),
		})
	}

	if len(file.Header) == 0 {
		return issues, nil
	}

	kind, _ := filetype.Match(file.Header)

	if imageExtensions[file.Extension] && !filetype.IsImage(file.Header) {
		detected := "unknown"
		if kind != filetype.Unknown {
			detected = kind.MIME.Value
		}
		issues = append(issues, models.Issue{
			Check:    models.CheckMIME,
			RuleID:   "MIME-MISMATCH",
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("Content does not match .%s extension (detected %s)", file.Extension, detected),
		})
	}

	if (kind.Extension == "exe" || kind.Extension == "elf") && !binaryExtensions[file.Extension] {
		issues = append(issues, models.Issue{
			Check:    models.CheckMIME,
			RuleID:   "MIME-EXECUTABLE",
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Executable binary content (%s) behind .%s extension", kind.MIME.Value, file.Extension),
		})
	}

	return issues, nil
}

// inContentDir checks whether any parent directory is a content directory
func (d *MIMEDetector) inContentDir(file *models.File) bool {
	if len(d.contentDirs) == 0 {
		return true
	}

	rel := file.RelativePath
	if rel == "" {
		rel = file.Path
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(os.PathSeparator)) {
		if d.contentDirs[part] {
			return true
		}
	}
	return false
}
