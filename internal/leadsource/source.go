// Package leadsource discovers businesses near a location through the Google
// Places web services.
package leadsource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/throttle"
	"github.com/sells-group/leadgen-cli/pkg/google"
)

// MetersPerMile converts the search radius.
const MetersPerMile = 1609.34

const (
	DefaultRadiusMiles = 20
	DefaultMaxResults  = 25

	defaultPageDelay   = 2 * time.Second
	defaultDetailDelay = 500 * time.Millisecond
)

var (
	// ErrGeocode is returned when the location cannot be resolved.
	ErrGeocode = eris.New("could not geocode location")
	// ErrLocationFormat is returned for a location without a "City, State" comma.
	ErrLocationFormat = eris.New("location must be in City, State format")
)

// Query describes one lead search. Keyword wins over Category; a Category
// matching a preset label supplies both the keyword and the lead business
// type, otherwise it is used as the keyword itself.
type Query struct {
	Category    string `json:"category"`
	Keyword     string `json:"keyword,omitempty"`
	Location    string `json:"location"`
	RadiusMiles int    `json:"radius_miles"`
	MaxResults  int    `json:"max_results"`
}

// ValidateLocation requires a "City, State" style location.
func ValidateLocation(location string) error {
	if strings.TrimSpace(location) == "" || !strings.Contains(location, ",") {
		return ErrLocationFormat
	}
	return nil
}

// resolved is a Query with defaults applied and the keyword settled.
type resolved struct {
	keyword      string
	businessType string
	location     string
	radiusMiles  int
	maxResults   int
}

func (q Query) resolve() resolved {
	r := resolved{
		keyword:     strings.TrimSpace(q.Keyword),
		location:    strings.TrimSpace(q.Location),
		radiusMiles: q.RadiusMiles,
		maxResults:  q.MaxResults,
	}
	if r.radiusMiles <= 0 {
		r.radiusMiles = DefaultRadiusMiles
	}
	if r.maxResults <= 0 {
		r.maxResults = DefaultMaxResults
	}
	if c, ok := LookupCategory(q.Category); ok {
		r.businessType = c.Label
		if r.keyword == "" {
			r.keyword = c.Keyword
		}
	} else if r.keyword == "" {
		r.keyword = strings.TrimSpace(q.Category)
	}
	return r
}

// cacheKey is the identity of a search for caching.
func (r resolved) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", r.keyword, r.businessType, strings.ToLower(r.location), r.radiusMiles, r.maxResults)
}

// SearchCache stores search results between runs.
type SearchCache interface {
	GetLeads(ctx context.Context, key string) ([]model.Lead, bool, error)
	SetLeads(ctx context.Context, key string, leads []model.Lead) error
}

// Option configures a Source.
type Option func(*Source)

// WithSleeper replaces the wall-clock delays.
func WithSleeper(s throttle.Sleeper) Option {
	return func(src *Source) { src.sleeper = s }
}

// WithCache enables result caching.
func WithCache(c SearchCache) Option {
	return func(src *Source) { src.cache = c }
}

// WithDelays overrides the page-token and per-detail delays.
func WithDelays(page, detail time.Duration) Option {
	return func(src *Source) {
		src.pageDelay = page
		src.detailDelay = detail
	}
}

// Source finds leads through geocoding, paged nearby search and per-place
// details lookups.
type Source struct {
	client      google.Client
	sleeper     throttle.Sleeper
	cache       SearchCache
	pageDelay   time.Duration
	detailDelay time.Duration
}

// NewSource creates a Source.
func NewSource(client google.Client, opts ...Option) *Source {
	s := &Source{
		client:      client,
		sleeper:     throttle.Clock,
		pageDelay:   defaultPageDelay,
		detailDelay: defaultDetailDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindLeads runs the search. On a transport failure after the search has
// started it returns the leads collected so far together with the error.
func (s *Source) FindLeads(ctx context.Context, q Query) ([]model.Lead, error) {
	r := q.resolve()
	if r.keyword == "" {
		return nil, eris.New("leadsource: a category or keyword is required")
	}
	log := zap.L().With(zap.String("keyword", r.keyword), zap.String("location", r.location))

	if s.cache != nil {
		leads, ok, err := s.cache.GetLeads(ctx, r.cacheKey())
		switch {
		case err != nil:
			log.Warn("leadsource: cache read failed", zap.Error(err))
		case ok:
			log.Info("leadsource: served from cache", zap.Int("leads", len(leads)))
			return leads, nil
		}
	}

	geo, err := s.client.Geocode(ctx, r.location)
	if err != nil {
		return nil, eris.Wrap(err, "leadsource: geocode")
	}
	if geo.Status != google.StatusOK || len(geo.Results) == 0 {
		return nil, eris.Wrapf(ErrGeocode, "leadsource: %s (status %s)", r.location, geo.Status)
	}
	center := geo.Results[0].Geometry.Location

	leads, err := s.collect(ctx, r, center, log)
	if err != nil {
		return leads, err
	}

	if s.cache != nil {
		if err := s.cache.SetLeads(ctx, r.cacheKey(), leads); err != nil {
			log.Warn("leadsource: cache write failed", zap.Error(err))
		}
	}
	log.Info("leadsource: search complete", zap.Int("leads", len(leads)))
	return leads, nil
}

func (s *Source) collect(ctx context.Context, r resolved, center google.LatLng, log *zap.Logger) ([]model.Lead, error) {
	leads := make([]model.Lead, 0, r.maxResults)
	token := ""

	for len(leads) < r.maxResults {
		if token != "" {
			if err := s.sleeper.Sleep(ctx, s.pageDelay); err != nil {
				return leads, eris.Wrap(err, "leadsource: page delay")
			}
		}

		page, err := s.client.NearbySearch(ctx, google.NearbyRequest{
			Location:     center,
			RadiusMeters: float64(r.radiusMiles) * MetersPerMile,
			Keyword:      r.keyword,
			PageToken:    token,
		})
		if err != nil {
			return leads, eris.Wrap(err, "leadsource: nearby search")
		}
		if page.Status != google.StatusOK {
			log.Debug("leadsource: search ended", zap.String("status", page.Status))
			break
		}

		for _, place := range page.Results {
			if len(leads) >= r.maxResults {
				break
			}
			details, err := s.client.PlaceDetails(ctx, place.PlaceID, google.DetailFields)
			if err != nil {
				return leads, eris.Wrap(err, "leadsource: place details")
			}
			if details.Status == google.StatusOK {
				lead := leadFromPlace(details.Result, place, r.businessType)
				leads = append(leads, lead)
				log.Info("leadsource: found", zap.String("company", lead.CompanyName))
			} else {
				log.Warn("leadsource: skipping place",
					zap.String("place_id", place.PlaceID),
					zap.String("status", details.Status),
				)
			}
			if err := s.sleeper.Sleep(ctx, s.detailDelay); err != nil {
				return leads, eris.Wrap(err, "leadsource: detail delay")
			}
		}

		token = page.NextPageToken
		if token == "" {
			break
		}
	}
	return leads, nil
}

func leadFromPlace(d google.PlaceDetails, p google.PlaceResult, businessType string) model.Lead {
	lead := model.Lead{
		CompanyName:  d.Name,
		FullAddress:  d.FormattedAddress,
		Town:         townFromVicinity(p.Vicinity),
		Phone:        d.FormattedPhoneNumber,
		Website:      d.Website,
		BusinessType: businessType,
	}
	if lead.Phone == "" {
		lead.Phone = model.Placeholder
	}
	if lead.Website == "" {
		lead.Website = model.Placeholder
	}
	return lead
}

// townFromVicinity takes the last comma-separated part of a Nearby Search
// vicinity ("12 Main St, Boston" → "Boston").
func townFromVicinity(v string) string {
	i := strings.LastIndex(v, ",")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(v[i+1:])
}
