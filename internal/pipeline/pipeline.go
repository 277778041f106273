// Package pipeline enriches leads: fetch the website, collect literal
// emails, infer the owner, and guess owner addresses.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/internal/table"
	"github.com/sells-group/leadgen-cli/internal/throttle"
)

const defaultLeadDelay = 500 * time.Millisecond

// Fetcher retrieves and formats a website.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *model.FetchResult
}

// Analyzer infers owner identity from fetched content.
type Analyzer interface {
	Analyze(ctx context.Context, fetched *model.FetchResult) model.AnalysisResult
}

// EmailDiscoverer asks a language model for addresses in page content.
type EmailDiscoverer interface {
	Discover(ctx context.Context, content string) ([]string, error)
}

// EnrichmentCache stores processed leads between runs.
type EnrichmentCache interface {
	GetEnriched(ctx context.Context, lead model.Lead) (*model.EnrichedLead, bool, error)
	SetEnriched(ctx context.Context, e model.EnrichedLead) error
}

// Progress is reported after each lead finishes.
type Progress struct {
	Index   int // position in the deduplicated input
	Done    int
	Total   int
	Company string
	Result  model.EnrichedLead
}

// Option configures a Processor.
type Option func(*Processor)

// WithDiscoverer adds LLM email discovery on top of literal extraction.
func WithDiscoverer(d EmailDiscoverer) Option {
	return func(p *Processor) { p.discoverer = d }
}

// WithSleeper replaces the wall-clock delay between leads.
func WithSleeper(s throttle.Sleeper) Option {
	return func(p *Processor) { p.sleeper = s }
}

// WithLeadDelay overrides the spacing between leads.
func WithLeadDelay(d time.Duration) Option {
	return func(p *Processor) { p.leadDelay = d }
}

// WithConcurrency sets how many leads are processed at once.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithCache serves previously processed leads from c.
func WithCache(c EnrichmentCache) Option {
	return func(p *Processor) { p.cache = c }
}

// Processor runs the enrichment for single leads and batches.
type Processor struct {
	fetcher     Fetcher
	analyzer    Analyzer
	discoverer  EmailDiscoverer
	cache       EnrichmentCache
	sleeper     throttle.Sleeper
	leadDelay   time.Duration
	concurrency int
}

// New creates a Processor.
func New(f Fetcher, a Analyzer, opts ...Option) *Processor {
	p := &Processor{
		fetcher:     f,
		analyzer:    a,
		sleeper:     throttle.Clock,
		leadDelay:   defaultLeadDelay,
		concurrency: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessOne enriches a single lead. It never fails; problems are recorded
// on the returned row.
func (p *Processor) ProcessOne(ctx context.Context, lead model.Lead) model.EnrichedLead {
	lead = model.CleanLead(lead)
	if !lead.HasWebsite() {
		return model.Unprocessed(lead, "")
	}
	log := zap.L().With(zap.String("company", lead.CompanyName), zap.String("url", lead.Website))

	if p.cache != nil {
		cached, ok, err := p.cache.GetEnriched(ctx, lead)
		switch {
		case err != nil:
			log.Warn("pipeline: cache read failed", zap.Error(err))
		case ok:
			log.Debug("pipeline: served from cache")
			r := *cached
			r.Lead = lead
			return r
		}
	}

	fetched := p.fetcher.Fetch(ctx, lead.Website)
	if fetched == nil || !fetched.Success {
		msg := fetched.ErrorMessage()
		log.Warn("pipeline: fetch failed", zap.String("error", msg))
		return model.Unprocessed(lead, msg)
	}

	emails := email.Extract(fetched.Content)
	if p.discoverer != nil {
		found, err := p.discoverer.Discover(ctx, fetched.Content)
		if err != nil {
			log.Warn("pipeline: email discovery failed", zap.Error(err))
		}
		emails = email.Merge(emails, found)
	}

	analysis := p.analyzer.Analyze(ctx, fetched)
	if analysis.Err != nil {
		log.Warn("pipeline: analysis failed", zap.Error(analysis.Err))
	}

	var potential []string
	if analysis.OwnerName != "" {
		potential = email.Candidates(scrape.Domain(lead.Website), analysis.OwnerName)
	}

	result := model.EnrichedLead{
		Lead:                lead,
		Processed:           true,
		OwnerName:           analysis.OwnerName,
		OwnerTitle:          analysis.OwnerTitle,
		Confidence:          analysis.Confidence,
		ConfidenceReasoning: analysis.ConfidenceReasoning,
		DiscoveredEmails:    emails,
		PotentialEmails:     potential,
		KeyFacts:            analysis.KeyFacts,
	}

	if p.cache != nil && analysis.Err == nil {
		if err := p.cache.SetEnriched(ctx, result); err != nil {
			log.Warn("pipeline: cache write failed", zap.Error(err))
		}
	}
	log.Info("pipeline: lead processed",
		zap.String("owner", result.OwnerName),
		zap.String("confidence", string(result.Confidence)),
	)
	return result
}

// ProcessBatch deduplicates leads, enriches them in input order and returns
// the fixed-column result table.
func (p *Processor) ProcessBatch(ctx context.Context, leads []model.Lead, progress func(Progress)) table.Table {
	return table.FromEnriched(p.Enrich(ctx, leads, progress))
}

// Enrich is ProcessBatch returning records instead of a table. When ctx is
// cancelled no further leads are started and the finished rows are returned.
func (p *Processor) Enrich(ctx context.Context, leads []model.Lead, progress func(Progress)) []model.EnrichedLead {
	leads = Dedupe(leads)
	total := len(leads)
	results := make([]model.EnrichedLead, total)
	finished := make([]bool, total)

	var mu sync.Mutex
	done := 0
	report := func(i int, r model.EnrichedLead) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = r
		finished[i] = true
		done++
		if progress != nil {
			progress(Progress{Index: i, Done: done, Total: total, Company: r.CompanyName, Result: r})
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)

	for i, lead := range leads {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := p.sleeper.Sleep(ctx, p.leadDelay); err != nil {
				break
			}
		}
		if p.concurrency == 1 {
			report(i, p.ProcessOne(ctx, lead))
			continue
		}
		g.Go(func() error {
			report(i, p.ProcessOne(ctx, lead))
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.EnrichedLead, 0, total)
	for i, r := range results {
		if finished[i] {
			out = append(out, r)
		}
	}
	if len(out) < total {
		zap.L().Warn("pipeline: batch stopped early",
			zap.Int("finished", len(out)),
			zap.Int("total", total),
			zap.Error(ctx.Err()),
		)
	}
	return out
}
