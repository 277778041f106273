// Package scrape fetches a business website and turns it into a scored,
// context-tagged text document for the analyzer.
package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/throttle"
)

// ErrInvalidURL is returned for empty or placeholder websites.
var ErrInvalidURL = eris.New("Invalid URL")

const (
	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	defaultTimeout      = 10 * time.Second
	defaultMaxBody      = 2 << 20
	defaultMaxSecondary = 3
	defaultHostSpacing  = time.Second
)

// Option configures a SiteFetcher.
type Option func(*SiteFetcher)

// WithHTTPClient sets the HTTP client used for page requests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *SiteFetcher) { f.client = c }
}

// WithTimeout sets the request, dial and TLS handshake timeouts of the
// default client. d <= 0 keeps the defaults.
func WithTimeout(d time.Duration) Option {
	return func(f *SiteFetcher) {
		if d > 0 {
			f.client = newHTTPClient(d)
		}
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
		},
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *SiteFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of each response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *SiteFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithMaxSecondaryPages sets how many linked pages are followed.
func WithMaxSecondaryPages(n int) Option {
	return func(f *SiteFetcher) {
		if n >= 0 {
			f.maxSecondary = n
		}
	}
}

// WithWaiter sets the per-host spacing between requests.
func WithWaiter(w throttle.Waiter) Option {
	return func(f *SiteFetcher) { f.waiter = w }
}

// WithRelevantPaths overrides DefaultRelevantPaths.
func WithRelevantPaths(paths []string) Option {
	return func(f *SiteFetcher) { f.links = NewLinkMatcher(paths) }
}

// SiteFetcher retrieves a site's root page and up to a few relevant linked
// pages on the same host.
type SiteFetcher struct {
	client       *http.Client
	userAgent    string
	maxBody      int64
	maxSecondary int
	waiter       throttle.Waiter
	links        *LinkMatcher
}

// NewSiteFetcher creates a SiteFetcher with a 10s timeout and one second of
// spacing between requests to the same host.
func NewSiteFetcher(opts ...Option) *SiteFetcher {
	f := &SiteFetcher{
		client:       newHTTPClient(defaultTimeout),
		userAgent:    DefaultUserAgent,
		maxBody:      defaultMaxBody,
		maxSecondary: defaultMaxSecondary,
		waiter:       throttle.NewHostLimiter(defaultHostSpacing),
		links:        NewLinkMatcher(nil),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

type page struct {
	status int
	header http.Header
	body   []byte
	doc    *goquery.Document
}

// Fetch retrieves rawURL and its relevant secondary pages. It never returns
// an error; failures are reported through FetchResult.Err.
func (f *SiteFetcher) Fetch(ctx context.Context, rawURL string) *model.FetchResult {
	target, ok := NormalizeURL(rawURL)
	if !ok {
		return &model.FetchResult{Err: ErrInvalidURL}
	}
	base, err := url.Parse(target)
	if err != nil {
		return &model.FetchResult{Err: eris.Wrapf(err, "scrape: parse url %s", target)}
	}
	if base.Host == "" {
		return &model.FetchResult{Err: ErrInvalidURL}
	}

	root, err := f.get(ctx, base.Host, target)
	if err != nil {
		return &model.FetchResult{Err: err}
	}

	metadata := extractMetadata(root.doc)
	schema := extractStructuredData(root.doc)
	frags := extractFragments(root.doc, model.SectionGeneral)
	scraped := []string{target}
	seen := map[string]bool{target: true}

	for _, link := range f.links.Discover(root.doc, base, f.maxSecondary) {
		if seen[link] {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p, err := f.get(ctx, base.Host, link)
		if err != nil {
			zap.L().Warn("scrape: secondary page failed", zap.String("url", link), zap.Error(err))
			continue
		}
		if p.status < 200 || p.status > 299 {
			zap.L().Warn("scrape: secondary page status", zap.String("url", link), zap.Int("status", p.status))
			continue
		}
		// Only a Cloudflare challenge drops the page; captcha widgets and
		// refresh shells on small pages are logged and parsed anyway.
		if blocked, bt := DetectBlock(p.status, p.header, p.body); blocked {
			if bt == BlockCloudflare {
				zap.L().Warn("scrape: secondary page blocked", zap.String("url", link), zap.String("block_type", string(bt)))
				continue
			}
			zap.L().Info("scrape: secondary page looks blocked, keeping", zap.String("url", link), zap.String("block_type", string(bt)))
		}

		frags = append(frags, extractFragments(p.doc, SectionForURL(link))...)
		schema = append(schema, extractStructuredData(p.doc)...)
		scraped = append(scraped, link)
		seen[link] = true
	}

	sortFragments(frags)

	zap.L().Debug("scrape: site fetched",
		zap.String("url", target),
		zap.Int("pages", len(scraped)),
		zap.Int("fragments", len(frags)),
	)

	return &model.FetchResult{
		Success:        true,
		Content:        formatContent(frags, metadata, schema),
		StructuredData: schema,
		Metadata:       metadata,
		ScrapedURLs:    scraped,
	}
}

// get waits for the host's turn, then fetches and parses one page.
func (f *SiteFetcher) get(ctx context.Context, host, target string) (*page, error) {
	if f.waiter != nil {
		if err := f.waiter.Wait(ctx, host); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", target)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body %s", target)
	}

	r, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		r = bytes.NewReader(body)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse html %s", target)
	}

	return &page{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
		doc:    doc,
	}, nil
}
