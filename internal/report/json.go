package report

import (
	"encoding/json"

	"github.com/jessifoo/rayzgyproc/internal/ai"
	"github.com/jessifoo/rayzgyproc/pkg/models"
)

// JSONReport combines scan results with AI analysis for JSON output
type JSONReport struct {
	*models.ScanResults
	AIAnalysis *ai.AIReport `json:"ai_analysis,omitempty"`
}

func scanJSON(results *models.ScanResults, aiReport *ai.AIReport) ([]byte, error) {
	return toJSON(&JSONReport{
		ScanResults: results,
		AIAnalysis:  aiReport,
	})
}

func toJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
