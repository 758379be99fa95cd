package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Backend answers triage requests
type Backend interface {
	Analyze(ctx context.Context, req *AnalysisRequest, lang string) (*AnalysisResponse, error)
	GetModel() string
}

// Client wraps the Anthropic API client
type Client struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new AI client
func NewClient(model string, apiToken string, timeoutSeconds int) (*Client, error) {
	// Resolve API token: parameter > environment variable
	token := apiToken
	if token == "" {
		token = os.Getenv("ANTHROPIC_API_KEY")
	}
	if token == "" {
		return nil, errors.New("no API token provided: set --ai-token flag or ANTHROPIC_API_KEY environment variable")
	}

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  anthropic.NewClient(option.WithAPIKey(token)),
		model:   mapModelName(model),
		timeout: timeout,
	}, nil
}

// mapModelName converts friendly model names to model IDs
func mapModelName(name string) string {
	switch strings.ToLower(name) {
	case "haiku":
		return "claude-3-5-haiku-latest"
	case "opus":
		return "claude-opus-4-20250514"
	default:
		return "claude-sonnet-4-20250514"
	}
}

// Analyze sends one finding for triage
func (c *Client) Analyze(ctx context.Context, req *AnalysisRequest, lang string) (*AnalysisResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(1024)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(TriageSystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildTriagePrompt(req, lang))),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	responseText := extractTextContent(message)
	if responseText == "" {
		return nil, errors.New("empty response from API")
	}

	response, err := parseAnalysisResponse(responseText, req.FindingID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	response.TokensUsed = int(message.Usage.InputTokens + message.Usage.OutputTokens)

	return response, nil
}

// GetModel returns the model ID in use
func (c *Client) GetModel() string {
	return c.model
}

func extractTextContent(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

// parseAnalysisResponse parses the JSON response into AnalysisResponse.
// Unrecognised verdicts become VerdictUnknown.
func parseAnalysisResponse(text string, findingID string) (*AnalysisResponse, error) {
	var raw struct {
		Verdict     string   `json:"verdict"`
		Confidence  int      `json:"confidence"`
		Explanation string   `json:"explanation"`
		Remediation string   `json:"remediation"`
		Indicators  []string `json:"indicators"`
	}

	if err := json.Unmarshal([]byte(extractJSON(text)), &raw); err != nil {
		return nil, err
	}

	verdict := Verdict(strings.ToLower(raw.Verdict))
	switch verdict {
	case VerdictMalicious, VerdictSuspicious, VerdictFalsePositive, VerdictBenign:
	default:
		verdict = VerdictUnknown
	}

	return &AnalysisResponse{
		FindingID:   findingID,
		Verdict:     verdict,
		Confidence:  raw.Confidence,
		Explanation: raw.Explanation,
		Remediation: raw.Remediation,
		Indicators:  raw.Indicators,
	}, nil
}

// extractJSON extracts JSON from text that might contain markdown code blocks
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.Contains(text, "```") {
		start := strings.Index(text, "```json")
		if start == -1 {
			start = strings.Index(text, "```")
		}
		if nl := strings.Index(text[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.LastIndex(text, "```"); end > start {
			text = text[start:end]
		}
	}

	text = strings.TrimSpace(text)
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart != -1 && jsonEnd > jsonStart {
		text = text[jsonStart : jsonEnd+1]
	}

	return strings.TrimSpace(text)
}
