package email

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/pkg/llm"
)

const discoverSystemPrompt = `Analyze the text and extract:
1. Any email addresses mentioned
2. Any patterns that could be email addresses
3. Any contact information that might suggest email formats

Return JSON with:
{
    "discovered_emails": ["list of found emails"],
    "potential_patterns": ["list of likely email patterns"],
    "confidence": "high/medium/low"
}`

const (
	discoverContentLimit = 2000
	discoverMaxTokens    = 200
)

type discoverReply struct {
	DiscoveredEmails  []string `json:"discovered_emails"`
	PotentialPatterns []string `json:"potential_patterns"`
	Confidence        string   `json:"confidence"`
}

// Discoverer asks a language model to find addresses and address patterns
// in page content.
type Discoverer struct {
	client llm.Client
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(client llm.Client) *Discoverer {
	return &Discoverer{client: client}
}

// Discover returns discovered addresses followed by potential patterns. Any
// failure yields an empty list and the error.
func (d *Discoverer) Discover(ctx context.Context, content string) ([]string, error) {
	resp, err := d.client.Complete(ctx, llm.Request{
		System:    discoverSystemPrompt,
		User:      "Find email addresses in this content:\n\n" + llm.Truncate(content, discoverContentLimit),
		MaxTokens: discoverMaxTokens,
		JSON:      true,
	})
	if err != nil {
		zap.L().Warn("email: llm discovery failed", zap.Error(err))
		return []string{}, eris.Wrap(err, "email: llm discovery")
	}
	resp.Usage.Log(resp.Model, "email_discovery")

	var reply discoverReply
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Text)), &reply); err != nil {
		zap.L().Warn("email: llm discovery reply not json", zap.Error(err))
		return []string{}, eris.Wrap(err, "email: parse llm discovery reply")
	}

	out := make([]string, 0, len(reply.DiscoveredEmails)+len(reply.PotentialPatterns))
	out = append(out, reply.DiscoveredEmails...)
	out = append(out, reply.PotentialPatterns...)
	return out, nil
}
