// Package llm defines the provider-neutral completion interface used by the
// analyzer and the email discoverer.
package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Client performs a single-turn completion.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is one system + user exchange.
type Request struct {
	System      string
	User        string
	MaxTokens   int64
	Temperature float64
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// Response is the provider's text reply.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Log records token usage for one call.
func (u Usage) Log(model, phase string) {
	zap.L().Info("llm usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
	)
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from a model reply.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
