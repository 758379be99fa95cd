package detectors

import (
	"context"

	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// Detector is the interface that all heuristic checks must implement
type Detector interface {
	// Name returns the detector name
	Name() string

	// Kind returns the check this detector implements
	Kind() models.CheckKind

	// Priority returns the detector priority (higher = earlier execution)
	Priority() int

	// Detect inspects a file and returns the issues found
	Detect(ctx context.Context, file *models.File) ([]models.Issue, error)

	// IsEnabled returns whether this detector is enabled
	IsEnabled() bool

	// SetEnabled enables or disables this detector
	SetEnabled(enabled bool)
}

// BaseDetector provides common functionality for detectors
type BaseDetector struct {
	name     string
	kind     models.CheckKind
	priority int
	enabled  bool
}

// NewBaseDetector creates a new base detector
func NewBaseDetector(name string, kind models.CheckKind, priority int) *BaseDetector {
	return &BaseDetector{
		name:     name,
		kind:     kind,
		priority: priority,
		enabled:  true,
	}
}

// Name returns the detector name
func (d *BaseDetector) Name() string {
	return d.name
}

// Kind returns the check kind
func (d *BaseDetector) Kind() models.CheckKind {
	return d.kind
}

// Priority returns the detector priority
func (d *BaseDetector) Priority() int {
	return d.priority
}

// IsEnabled returns whether this detector is enabled
func (d *BaseDetector) IsEnabled() bool {
	return d.enabled
}

// SetEnabled enables or disables this detector
func (d *BaseDetector) SetEnabled(enabled bool) {
	d.enabled = enabled
}
