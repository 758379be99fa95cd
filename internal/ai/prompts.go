package ai

import (
	"fmt"
	"strings"
)

// LanguageInstruction returns the language instruction for prompts
func LanguageInstruction(lang string) string {
	switch lang {
	case "ru":
		return "\n\nIMPORTANT: Respond in Russian (Русский). All text fields (explanation, remediation, indicators) must be in Russian."
	case "es":
		return "\n\nIMPORTANT: Respond in Spanish (Español). All text fields (explanation, remediation, indicators) must be in Spanish."
	case "de":
		return "\n\nIMPORTANT: Respond in German (Deutsch). All text fields (explanation, remediation, indicators) must be in German."
	default:
		return ""
	}
}

// TriageSystemPrompt frames the model as a reviewer of web-content findings
const TriageSystemPrompt = `You are a security analyst reviewing files flagged in a website's content tree (uploads, media, themes).
The scanner raised heuristic issues based on filename, MIME type, content patterns and permissions.
Decide whether the file is a real threat.

OUTPUT: Valid JSON only, no markdown.
{
  "verdict": "malicious|suspicious|false_positive|benign",
  "confidence": 0-100,
  "explanation": "short technical reasoning that cites the issues and code",
  "remediation": "delete file, fix permissions, restore from backup, etc.",
  "indicators": ["specific indicators found"]
}

GUIDANCE:
- Executable scripts inside upload directories are almost never legitimate.
- Images whose bytes are not images, or double extensions like .php.jpg, indicate disguised payloads.
- Encoded payloads that decode to PHP tags or eval are malicious.
- World-writable files are a hardening problem, not malware by themselves.
- Minified JavaScript from well-known libraries commonly trips document.write and fromCharCode rules.

When uncertain choose "suspicious".`

// BuildTriagePrompt renders the user message for one finding
func BuildTriagePrompt(req *AnalysisRequest, lang string) string {
	var sb strings.Builder

	sb.WriteString("## Flagged file\n")
	sb.WriteString(fmt.Sprintf("- Path: %s\n", req.FilePath))
	sb.WriteString(fmt.Sprintf("- MIME type: %s\n", req.MIMEType))
	sb.WriteString(fmt.Sprintf("- Size: %d bytes\n", req.Size))
	sb.WriteString(fmt.Sprintf("- Mode: %s\n", req.Mode))
	sb.WriteString(fmt.Sprintf("- Highest severity: %s\n", req.Severity))

	sb.WriteString("\n## Issues\n")
	for _, issue := range req.Issues {
		sb.WriteString("- " + issue + "\n")
	}

	if req.CodeFragment != "" {
		sb.WriteString("\n## Code\n```\n")
		sb.WriteString(req.CodeFragment)
		sb.WriteString("\n```\n")
	}

	sb.WriteString(LanguageInstruction(lang))
	return sb.String()
}
