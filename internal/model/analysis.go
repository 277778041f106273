package model

import "strings"

// Confidence is the language model's self-reported certainty.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ParseConfidence normalizes a model-supplied confidence. Anything outside
// the known values becomes ConfidenceLow.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return c
	default:
		return ConfidenceLow
	}
}

// AnalysisResult is the owner and contact inference for one site.
type AnalysisResult struct {
	OwnerName           string            `json:"owner_name"`
	OwnerTitle          string            `json:"owner_title"`
	Confidence          Confidence        `json:"confidence"`
	ConfidenceReasoning string            `json:"confidence_reasoning"`
	KeyFacts            []string          `json:"key_facts"`
	ContactPatterns     map[string]string `json:"contact_patterns"`
	Err                 error             `json:"-"`
}
