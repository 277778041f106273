// Package anthropic implements llm.Client on the Anthropic Messages API.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/pkg/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// jsonHint is appended to the system prompt when a JSON reply is requested;
// the Messages API has no response-format switch.
const jsonHint = "\n\nRespond with a single JSON object only."

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD. Returns 0 for unknown models.
func EstimateCost(u llm.Usage, model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(u.InputTokens)/1e6)*pricing[0] + (float64(u.OutputTokens)/1e6)*pricing[1]
}

// Option configures a Client.
type Option func(*config)

type config struct {
	model   string
	baseURL string
}

// WithModel overrides DefaultModel.
func WithModel(m string) Option {
	return func(c *config) {
		if m != "" {
			c.model = m
		}
	}
}

// WithBaseURL points the client at another endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// Client implements llm.Client using the official anthropic-sdk-go.
type Client struct {
	client sdk.Client
	model  string
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a new Anthropic client backed by the SDK. SDK retries
// are disabled.
func NewClient(apiKey string, opts ...Option) *Client {
	cfg := config{model: DefaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Client{
		client: sdk.NewClient(sdkOpts...),
		model:  cfg.model,
	}
}

// Complete sends one system + user message pair.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	system := req.System
	if req.JSON {
		system += jsonHint
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   req.MaxTokens,
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.User))},
		Temperature: sdk.Float(req.Temperature),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	var text strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}

	usage := llm.Usage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	zap.L().Debug("anthropic: message complete",
		zap.String("model", string(msg.Model)),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Float64("estimated_cost_usd", EstimateCost(usage, c.model)),
	)

	return &llm.Response{
		Text:  text.String(),
		Model: string(msg.Model),
		Usage: usage,
	}, nil
}
