// Package analyze asks a language model to identify a business owner from
// fetched website content.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/llm"
)

// fetchFailedReason is used when a failed fetch carries no error.
const fetchFailedReason = "Failed to fetch content"

// Analyzer infers owner identity and contact patterns.
type Analyzer struct {
	client llm.Client
}

// New creates an Analyzer.
func New(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

type reply struct {
	OwnerName           *string        `json:"owner_name"`
	OwnerTitle          *string        `json:"owner_title"`
	Confidence          *string        `json:"confidence"`
	ConfidenceReasoning *string        `json:"confidence_reasoning"`
	KeyFacts            []any          `json:"key_facts"`
	ContactMethods      map[string]any `json:"contact_methods"`
}

// Analyze never fails; a failed fetch or model call is reported through the
// result's Confidence, ConfidenceReasoning and Err.
func (a *Analyzer) Analyze(ctx context.Context, fetched *model.FetchResult) model.AnalysisResult {
	if fetched == nil || !fetched.Success {
		reason := fetched.ErrorMessage()
		if reason == "" {
			reason = fetchFailedReason
		}
		return model.AnalysisResult{
			Confidence:          model.ConfidenceNone,
			ConfidenceReasoning: reason,
			KeyFacts:            []string{},
			ContactPatterns:     map[string]string{},
		}
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		System:    systemPrompt,
		User:      userPrefix + llm.Truncate(fetched.Content, contentLimit),
		MaxTokens: maxTokens,
		JSON:      true,
	})
	if err != nil {
		return failed(eris.Wrap(err, "analyze: complete"))
	}
	resp.Usage.Log(resp.Model, "owner_analysis")

	var r reply
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Text)), &r); err != nil {
		return failed(eris.Wrap(err, "analyze: parse reply"))
	}

	return model.AnalysisResult{
		OwnerName:           nullable(r.OwnerName),
		OwnerTitle:          nullable(r.OwnerTitle),
		Confidence:          confidence(r.Confidence),
		ConfidenceReasoning: deref(r.ConfidenceReasoning),
		KeyFacts:            stringList(r.KeyFacts),
		ContactPatterns:     stringMap(r.ContactMethods),
	}
}

func failed(err error) model.AnalysisResult {
	zap.L().Warn("analyze: analysis failed", zap.Error(err))
	return model.AnalysisResult{
		Confidence:          model.ConfidenceNone,
		ConfidenceReasoning: "Error in analysis: " + err.Error(),
		KeyFacts:            []string{},
		ContactPatterns:     map[string]string{},
		Err:                 err,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// nullable treats JSON null and the literal string "null" as absent.
func nullable(s *string) string {
	v := deref(s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

func confidence(s *string) model.Confidence {
	if s == nil {
		return model.ConfidenceLow
	}
	return model.ParseConfidence(*s)
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

func stringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, raw := range m {
		switch v := raw.(type) {
		case nil:
		case string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}
