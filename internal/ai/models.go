package ai

import "time"

// Verdict represents the AI's classification of a finding
type Verdict string

const (
	VerdictMalicious     Verdict = "malicious"
	VerdictSuspicious    Verdict = "suspicious"
	VerdictFalsePositive Verdict = "false_positive"
	VerdictBenign        Verdict = "benign"
	VerdictUnknown       Verdict = "unknown"
)

// AnalysisRequest contains data sent to the AI for one suspicious file
type AnalysisRequest struct {
	FindingID    string   `json:"finding_id"`
	FilePath     string   `json:"file_path"`
	MIMEType     string   `json:"mime_type"`
	Size         int64    `json:"size"`
	Mode         string   `json:"mode"`
	Severity     string   `json:"severity"`
	Issues       []string `json:"issues"`
	CodeFragment string   `json:"code_fragment,omitempty"`
}

// AnalysisResponse contains the AI's analysis result
type AnalysisResponse struct {
	FindingID   string   `json:"finding_id"`
	Verdict     Verdict  `json:"verdict"`
	Confidence  int      `json:"confidence"` // 0-100
	Explanation string   `json:"explanation"`
	Remediation string   `json:"remediation,omitempty"`
	Indicators  []string `json:"indicators,omitempty"`
	TokensUsed  int      `json:"tokens_used"`
}

// AIReport contains aggregated triage results
type AIReport struct {
	Model           string              `json:"model"`
	Language        string              `json:"language"`
	AnalyzedCount   int                 `json:"analyzed_count"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         time.Time           `json:"end_time"`
	Duration        time.Duration       `json:"duration"`
	TotalTokensUsed int                 `json:"total_tokens_used"`
	Results         []*AnalysisResponse `json:"results"`

	// Verdict statistics
	MaliciousCount     int `json:"malicious_count"`
	SuspiciousCount    int `json:"suspicious_count"`
	FalsePositiveCount int `json:"false_positive_count"`
	BenignCount        int `json:"benign_count"`
	UnknownCount       int `json:"unknown_count"`

	Errors []string `json:"errors,omitempty"`
}

// CostEstimate represents estimated API costs for a triage run
type CostEstimate struct {
	Model            string
	FindingsCount    int
	EstimatedTokens  int
	EstimatedCostUSD float64
}

// TokenPricing contains pricing per million tokens for each model
type TokenPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// ModelPricing returns pricing for a model
func ModelPricing(model string) TokenPricing {
	switch model {
	case "haiku", "claude-3-5-haiku-latest":
		return TokenPricing{InputPerMillion: 0.25, OutputPerMillion: 1.25}
	case "opus":
		return TokenPricing{InputPerMillion: 15.0, OutputPerMillion: 75.0}
	default: // sonnet
		return TokenPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}
	}
}

// EstimateCost calculates estimated cost for triaging findingsCount files
func EstimateCost(model string, findingsCount int) *CostEstimate {
	// Average tokens per finding (system + user prompt, response)
	const (
		inputTokens  = 1400
		outputTokens = 300
	)

	pricing := ModelPricing(model)
	inputTotal := float64(findingsCount * inputTokens)
	outputTotal := float64(findingsCount * outputTokens)

	return &CostEstimate{
		Model:           model,
		FindingsCount:   findingsCount,
		EstimatedTokens: int(inputTotal + outputTotal),
		EstimatedCostUSD: (inputTotal/1_000_000)*pricing.InputPerMillion +
			(outputTotal/1_000_000)*pricing.OutputPerMillion,
	}
}
