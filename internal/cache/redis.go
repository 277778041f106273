// Package cache provides a Redis-backed cache for lead searches and
// per-lead enrichment results.
//
// Key strategy:
//   - Search results:      leadgen:search:v1:{sha256(search params)} → TTL 24 h
//   - Per-lead enrichment: leadgen:enrich:v1:{sha256(company+website)} → TTL 7 d
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	SearchTTL     = 24 * time.Hour
	EnrichmentTTL = 7 * 24 * time.Hour

	searchPrefix     = "leadgen:search:v1:"
	enrichmentPrefix = "leadgen:enrich:v1:"
)

// Client wraps redis.Client with lead-aware helpers.
type Client struct {
	rdb *redis.Client
}

// New creates a cache Client. addr example: "localhost:6379".
func New(addr, password string, db int) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
	return &Client{rdb: rdb}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return eris.Wrap(err, "cache: ping")
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error { return c.rdb.Close() }

func hashKey(prefix, raw string) string {
	h := sha256.Sum256([]byte(raw))
	return prefix + fmt.Sprintf("%x", h)
}

// SearchKey maps a raw search identity to its Redis key.
func SearchKey(raw string) string {
	return hashKey(searchPrefix, raw)
}

// EnrichmentKey returns the cache key for one lead's enrichment. Company
// and website are trimmed and otherwise compared exactly, matching
// pipeline.Dedupe.
func EnrichmentKey(company, website string) string {
	raw := strings.TrimSpace(company) + "|" + strings.TrimSpace(website)
	return hashKey(enrichmentPrefix, raw)
}

// getJSON reports a miss as ok=false with a nil error.
func (c *Client) getJSON(ctx context.Context, key string, v any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "cache: get")
	}
	if err := json.Unmarshal(val, v); err != nil {
		return false, eris.Wrap(err, "cache: decode")
	}
	return true, nil
}

func (c *Client) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "cache: encode")
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return eris.Wrap(err, "cache: set")
	}
	return nil
}

// ─── Search cache ──────────────────────────────────────────────────────────────

// GetLeads returns the cached leads for a search identity.
func (c *Client) GetLeads(ctx context.Context, raw string) ([]model.Lead, bool, error) {
	var leads []model.Lead
	ok, err := c.getJSON(ctx, SearchKey(raw), &leads)
	return leads, ok, err
}

// SetLeads stores leads with SearchTTL.
func (c *Client) SetLeads(ctx context.Context, raw string, leads []model.Lead) error {
	return c.setJSON(ctx, SearchKey(raw), leads, SearchTTL)
}

// DeleteLeads removes a search cache entry.
func (c *Client) DeleteLeads(ctx context.Context, raw string) error {
	if err := c.rdb.Del(ctx, SearchKey(raw)).Err(); err != nil {
		return eris.Wrap(err, "cache: delete")
	}
	return nil
}

// ─── Enrichment cache ─────────────────────────────────────────────────────────

// GetEnriched returns the cached enrichment for a lead.
func (c *Client) GetEnriched(ctx context.Context, lead model.Lead) (*model.EnrichedLead, bool, error) {
	var e model.EnrichedLead
	ok, err := c.getJSON(ctx, EnrichmentKey(lead.CompanyName, lead.Website), &e)
	if !ok || err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

// SetEnriched stores a processed lead with EnrichmentTTL.
func (c *Client) SetEnriched(ctx context.Context, e model.EnrichedLead) error {
	return c.setJSON(ctx, EnrichmentKey(e.CompanyName, e.Website), e, EnrichmentTTL)
}
