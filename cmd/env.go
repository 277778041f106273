package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/analyze"
	"github.com/sells-group/leadgen-cli/internal/cache"
	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/email"
	"github.com/sells-group/leadgen-cli/internal/leadsource"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/internal/throttle"
	anthropicpkg "github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
	"github.com/sells-group/leadgen-cli/pkg/google"
	"github.com/sells-group/leadgen-cli/pkg/llm"
	openaipkg "github.com/sells-group/leadgen-cli/pkg/openai"
)

// appEnv holds the initialized store, cache and services used by the
// enrich, generate and serve commands.
type appEnv struct {
	Store     store.Store         // nil when store.driver is "none"
	Cache     *cache.Client       // nil when redis.addr is empty or unreachable
	Processor *pipeline.Processor // nil unless an LLM was requested
	Source    *leadsource.Source  // nil unless Google was requested
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv builds the services a command needs. Callers should defer
// env.Close().
func initEnv(ctx context.Context, needLLM, needGoogle bool) (*appEnv, error) {
	env := &appEnv{}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	env.Store = st
	env.Cache = initCache(ctx, cfg.Redis)

	if needLLM {
		client, err := newLLMClient(ctx, cfg)
		if err != nil {
			env.Close()
			return nil, err
		}
		client = resilience.LLM(client, cfg.LLM.Provider, retryPolicy(cfg.Retry))
		env.Processor = newProcessor(cfg, client, env.Cache)
	}
	if needGoogle {
		env.Source = newSource(cfg, env.Cache)
	}
	return env, nil
}

// openStore opens the run store for the runs commands.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if st == nil {
		return nil, eris.New("run store is disabled (store.driver = none)")
	}
	return st, nil
}

func initCache(ctx context.Context, rc config.RedisConfig) *cache.Client {
	if strings.TrimSpace(rc.Addr) == "" {
		return nil
	}
	c := cache.New(rc.Addr, rc.Password, rc.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		zap.L().Warn("redis unavailable, caching disabled", zap.String("addr", rc.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	zap.L().Info("redis cache enabled", zap.String("addr", rc.Addr))
	return c
}

// newLLMClient returns the client selected by llm.provider.
func newLLMClient(ctx context.Context, c *config.Config) (llm.Client, error) {
	switch strings.ToLower(c.LLM.Provider) {
	case config.ProviderAnthropic:
		return anthropicpkg.NewClient(c.Anthropic.Key,
			anthropicpkg.WithModel(c.Anthropic.Model),
			anthropicpkg.WithBaseURL(c.Anthropic.BaseURL),
		), nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  c.Gemini.Key,
			Model:   c.Gemini.Model,
			BaseURL: c.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI, "":
		return openaipkg.NewClient(c.OpenAI.Key,
			openaipkg.WithModel(c.OpenAI.Model),
			openaipkg.WithBaseURL(c.OpenAI.BaseURL),
		), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
}

func newFetcher(c *config.Config) *scrape.SiteFetcher {
	opts := []scrape.Option{
		scrape.WithUserAgent(c.Fetch.UserAgent),
		scrape.WithMaxBodyBytes(c.Fetch.MaxBodyBytes),
		scrape.WithMaxSecondaryPages(c.Fetch.MaxSecondary),
		scrape.WithWaiter(throttle.NewHostLimiter(millis(c.Fetch.HostSpacingMS))),
	}
	if len(c.Fetch.RelevantPaths) > 0 {
		opts = append(opts, scrape.WithRelevantPaths(c.Fetch.RelevantPaths))
	}
	if c.Fetch.TimeoutSecs > 0 {
		opts = append(opts, scrape.WithTimeout(time.Duration(c.Fetch.TimeoutSecs)*time.Second))
	}
	return scrape.NewSiteFetcher(opts...)
}

func newProcessor(c *config.Config, client llm.Client, ch *cache.Client) *pipeline.Processor {
	opts := []pipeline.Option{
		pipeline.WithConcurrency(c.Pipeline.Concurrency),
		pipeline.WithLeadDelay(millis(c.Pipeline.LeadDelayMS)),
	}
	if c.LLM.DiscoverEmail {
		opts = append(opts, pipeline.WithDiscoverer(email.NewDiscoverer(client)))
	}
	if ch != nil {
		opts = append(opts, pipeline.WithCache(ch))
	}
	return pipeline.New(newFetcher(c), analyze.New(client), opts...)
}

func newSource(c *config.Config, ch *cache.Client) *leadsource.Source {
	var gopts []google.Option
	if c.Google.BaseURL != "" {
		gopts = append(gopts, google.WithBaseURL(c.Google.BaseURL))
	}
	if c.Google.TimeoutSecs > 0 {
		gopts = append(gopts, google.WithHTTPClient(&http.Client{
			Timeout: time.Duration(c.Google.TimeoutSecs) * time.Second,
		}))
	}
	opts := []leadsource.Option{
		leadsource.WithDelays(millis(c.Source.PageDelayMS), millis(c.Source.DetailDelayMS)),
	}
	if ch != nil {
		opts = append(opts, leadsource.WithCache(ch))
	}
	places := resilience.Places(google.NewClient(c.Google.Key, gopts...), retryPolicy(c.Retry))
	return leadsource.NewSource(places, opts...)
}

// recordRun stores a finished batch. A nil store records nothing.
func recordRun(ctx context.Context, st store.Store, source model.RunSource, label string, rows []model.EnrichedLead) (*model.Run, error) {
	if st == nil {
		return nil, nil
	}
	run, err := st.CreateRun(ctx, source, label, len(rows))
	if err != nil {
		return nil, eris.Wrap(err, "record run")
	}
	if err := st.SaveResults(ctx, run.ID, rows); err != nil {
		return run, eris.Wrap(err, "record run results")
	}
	processed, failed := store.Counts(rows)
	if err := st.FinishRun(ctx, run.ID, processed, failed); err != nil {
		return run, eris.Wrap(err, "finish run")
	}
	run.Processed, run.Failed = processed, failed
	return run, nil
}

func retryPolicy(rc config.RetryConfig) resilience.Policy {
	// One attempt unless retries are configured.
	p := resilience.DefaultPolicy()
	p.MaxAttempts = 1
	if rc.MaxAttempts > 0 {
		p.MaxAttempts = rc.MaxAttempts
	}
	if rc.InitialBackoffMS > 0 {
		p.InitialBackoff = millis(rc.InitialBackoffMS)
	}
	if rc.MaxBackoffMS > 0 {
		p.MaxBackoff = millis(rc.MaxBackoffMS)
	}
	return p
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
