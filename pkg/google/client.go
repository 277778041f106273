// Package google is a client for the Google Maps geocoding and Places web
// services (legacy JSON endpoints).
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Status values reported by the web services.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// DetailFields are the place detail fields needed to build a lead.
var DetailFields = []string{"name", "formatted_address", "formatted_phone_number", "website"}

// Client performs Google Maps web service operations. A non-OK status is
// returned in the response, not as an error.
type Client interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*DetailsResponse, error)
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResponse is the response from the Geocoding API.
type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

// GeocodeResult is one geocoding match.
type GeocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

// NearbyRequest parameterizes a Nearby Search call. When PageToken is set
// the other fields still accompany it, matching the web service usage.
type NearbyRequest struct {
	Location     LatLng
	RadiusMeters float64
	Keyword      string
	PageToken    string
}

// NearbyResponse is one page of Nearby Search results.
type NearbyResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	Results       []PlaceResult `json:"results"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// PlaceResult is a place summary from Nearby Search.
type PlaceResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
}

// DetailsResponse is the response from Place Details.
type DetailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       PlaceDetails `json:"result"`
}

// PlaceDetails holds the requested detail fields. Absent fields are empty.
type PlaceDetails struct {
	Name                 string `json:"name"`
	FormattedAddress     string `json:"formatted_address"`
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Maps web service client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	var out GeocodeResponse
	if err := c.get(ctx, "/geocode/json", url.Values{"address": {address}}, &out); err != nil {
		return nil, eris.Wrap(err, "google: geocode")
	}
	return &out, nil
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	params := url.Values{
		"location": {formatFloat(req.Location.Lat) + "," + formatFloat(req.Location.Lng)},
		"radius":   {formatFloat(req.RadiusMeters)},
		"keyword":  {req.Keyword},
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	var out NearbyResponse
	if err := c.get(ctx, "/place/nearbysearch/json", params, &out); err != nil {
		return nil, eris.Wrap(err, "google: nearby search")
	}
	return &out, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string, fields []string) (*DetailsResponse, error) {
	if len(fields) == 0 {
		fields = DetailFields
	}
	params := url.Values{
		"place_id": {placeID},
		"fields":   {strings.Join(fields, ",")},
	}

	var out DetailsResponse
	if err := c.get(ctx, "/place/details/json", params, &out); err != nil {
		return nil, eris.Wrapf(err, "google: place details %s", placeID)
	}
	return &out, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "google: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "google: unmarshal response")
	}
	return nil
}

// StatusError is returned for a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("google: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
