package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AnalysisMode string

const (
	ModeQuickScan        AnalysisMode = "quick_scan"
	ModeDetailedAnalysis AnalysisMode = "detailed_analysis"
	ModeATSOptimization  AnalysisMode = "ats_optimization"
	ModeCustomQuestion   AnalysisMode = "custom_question"
)

var modeLabels = map[AnalysisMode]string{
	ModeQuickScan:        "Quick Scan",
	ModeDetailedAnalysis: "Detailed Analysis",
	ModeATSOptimization:  "ATS Optimization",
	ModeCustomQuestion:   "Custom Question",
}

// AnalysisModes lists the modes in the order the UI offers them.
var AnalysisModes = []AnalysisMode{
	ModeQuickScan,
	ModeDetailedAnalysis,
	ModeATSOptimization,
	ModeCustomQuestion,
}

// Label returns the human readable name embedded in prompts.
func (m AnalysisMode) Label() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return string(m)
}

// ParseAnalysisMode accepts a mode key ("quick_scan") or its label
// ("Quick Scan"), case-insensitively.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	s = strings.TrimSpace(s)
	for mode, label := range modeLabels {
		if strings.EqualFold(s, string(mode)) || strings.EqualFold(s, label) {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown analysis mode: %q", s)
}

// Analysis is an archived model response. Rows are written only when the
// archive is enabled and are never read back into a session.
type Analysis struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID    string       `gorm:"type:text;index" json:"session_id"`
	Mode         AnalysisMode `gorm:"type:text;not null" json:"mode"`
	DocumentName string       `gorm:"type:text" json:"document_name"`
	Question     *string      `gorm:"type:text" json:"question,omitempty"`
	Response     string       `gorm:"type:text;not null" json:"response"`
	CreatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
