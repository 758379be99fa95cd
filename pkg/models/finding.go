package models

import "time"

// CheckKind names the heuristic check that produced an issue
type CheckKind string

const (
	CheckFilename   CheckKind = "filename"
	CheckMIME       CheckKind = "mime"
	CheckContent    CheckKind = "content"
	CheckPermission CheckKind = "permission"
)

// Issue is a single reason why a file looks suspicious
type Issue struct {
	Check    CheckKind `json:"check"`
	RuleID   string    `json:"rule_id"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Fragment string    `json:"fragment,omitempty"` // Code excerpt around the match
}

// Finding groups every issue raised for one file
type Finding struct {
	File      *FileInfo `json:"file"`
	MIMEType  string    `json:"mime_type,omitempty"`
	Issues    []Issue   `json:"issues"`
	Timestamp time.Time `json:"timestamp"`

	// Set by the optional AI triage
	Verdict     string `json:"ai_verdict,omitempty"`
	Explanation string `json:"ai_explanation,omitempty"`
}

// Messages returns the ordered issue descriptions of the finding
func (f *Finding) Messages() []string {
	msgs := make([]string, 0, len(f.Issues))
	for _, issue := range f.Issues {
		msgs = append(msgs, issue.Message)
	}
	return msgs
}

// MaxSeverity returns the most severe level among the issues
func (f *Finding) MaxSeverity() Severity {
	max := SeverityInfo
	for _, issue := range f.Issues {
		if GetSeverityPriority(issue.Severity) > GetSeverityPriority(max) {
			max = issue.Severity
		}
	}
	return max
}

// Severity represents the severity level of an issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// GetSeverityPriority returns numeric priority for severity (higher = more severe)
func GetSeverityPriority(s Severity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}
