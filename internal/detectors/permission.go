package detectors

import (
	"context"
	"fmt"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// DefaultScriptExtensions may carry execute bits without being flagged
var DefaultScriptExtensions = []string{"sh", "bash", "py", "pl", "cgi"}

// PermissionDetector inspects POSIX permission bits
type PermissionDetector struct {
	*BaseDetector
	scriptExts map[string]bool
}

// NewPermissionDetector creates a new permission detector
func NewPermissionDetector(scriptExtensions []string) *PermissionDetector {
	exts := make(map[string]bool)
	for _, e := range scriptExtensions {
		exts[e] = true
	}
	return &PermissionDetector{
		BaseDetector: NewBaseDetector("permission", models.CheckPermission, 100),
		scriptExts:   exts,
	}
}

// Detect flags world-writable files and execute bits outside the script allow-list
func (d *PermissionDetector) Detect(ctx context.Context, file *models.File) ([]models.Issue, error) {
	var issues []models.Issue
	perm := file.Perm()

	if perm&0o002 != 0 {
		issues = append(issues, models.Issue{
			Check:    models.CheckPermission,
			RuleID:   "PERM-WORLD-WRITABLE",
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("World-writable permissions (%04o)", uint32(perm)),
		})
	}

	if perm&0o111 != 0 && !d.scriptExts[file.Extension] {
		issues = append(issues, models.Issue{
			Check:    models.CheckPermission,
			RuleID:   "PERM-EXECUTABLE",
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("Executable permissions on non-script file (%04o)", uint32(perm)),
		})
	}

	return issues, nil
}
