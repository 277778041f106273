// Package openai implements llm.Client on the OpenAI chat completions API.
package openai

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/leadgen-cli/pkg/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-3.5-turbo"

// Option configures a Client.
type Option func(*Client)

// WithModel overrides DefaultModel.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithBaseURL points the client at another endpoint. The URL should include
// the API version path, e.g. "https://api.openai.com/v1".
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// Client implements llm.Client using go-openai.
type Client struct {
	api     *goopenai.Client
	model   string
	baseURL string
}

var _ llm.Client = (*Client)(nil)

// NewClient creates an OpenAI client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{model: DefaultModel}
	for _, o := range opts {
		o(c)
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.api = goopenai.NewClientWithConfig(cfg)
	return c
}

// temperature maps 0 to the smallest positive float32; go-openai drops a
// literal zero from the request body.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// Complete sends one system + user chat completion.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.User,
	})

	creq := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   int(req.MaxTokens),
		Temperature: temperature(req.Temperature),
	}
	if req.JSON {
		creq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: response has no choices")
	}

	return &llm.Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: llm.Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}, nil
}
