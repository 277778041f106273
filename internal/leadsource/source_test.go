package leadsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/google"
	"github.com/sells-group/leadgen-cli/pkg/google/mocks"
)

type recordingSleeper struct {
	calls []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func okGeocode() *google.GeocodeResponse {
	res := google.GeocodeResult{}
	res.Geometry.Location = google.LatLng{Lat: 42.36, Lng: -71.06}
	return &google.GeocodeResponse{Status: google.StatusOK, Results: []google.GeocodeResult{res}}
}

func details(name, website string) *google.DetailsResponse {
	return &google.DetailsResponse{
		Status: google.StatusOK,
		Result: google.PlaceDetails{
			Name:                 name,
			FormattedAddress:     "1 Main St, Boston, MA 02110, USA",
			FormattedPhoneNumber: "(617) 555-0100",
			Website:              website,
		},
	}
}

func TestFindLeads_PagesAndDelays(t *testing.T) {
	miles := float64(DefaultRadiusMiles)
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, "Boston, MA").Return(okGeocode(), nil)
	client.On("NearbySearch", mock.Anything, mock.MatchedBy(func(r google.NearbyRequest) bool {
		return r.PageToken == "" && r.Keyword == "dentist OR dental practice" &&
			r.RadiusMeters == miles*MetersPerMile && r.Location.Lat == 42.36
	})).Return(&google.NearbyResponse{
		Status: google.StatusOK,
		Results: []google.PlaceResult{
			{PlaceID: "p1", Vicinity: "1 Main St, Boston"},
			{PlaceID: "p2", Vicinity: "2 Main St, Boston"},
		},
		NextPageToken: "tok",
	}, nil).Once()
	client.On("NearbySearch", mock.Anything, mock.MatchedBy(func(r google.NearbyRequest) bool {
		return r.PageToken == "tok"
	})).Return(&google.NearbyResponse{
		Status:  google.StatusOK,
		Results: []google.PlaceResult{{PlaceID: "p3", Vicinity: "Cambridge"}},
	}, nil).Once()
	client.On("PlaceDetails", mock.Anything, "p1", google.DetailFields).Return(details("Smile Dental", "https://smile.example"), nil)
	client.On("PlaceDetails", mock.Anything, "p2", google.DetailFields).Return(&google.DetailsResponse{Status: "NOT_FOUND"}, nil)
	client.On("PlaceDetails", mock.Anything, "p3", google.DetailFields).Return(details("Bright Teeth", ""), nil)

	sleeper := &recordingSleeper{}
	src := NewSource(client, WithSleeper(sleeper))
	leads, err := src.FindLeads(context.Background(), Query{Category: "dentist", Location: "  Boston, MA "})

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, model.Lead{
		CompanyName:  "Smile Dental",
		FullAddress:  "1 Main St, Boston, MA 02110, USA",
		Town:         "Boston",
		Phone:        "(617) 555-0100",
		Website:      "https://smile.example",
		BusinessType: "Dentist",
	}, leads[0])
	assert.Equal(t, "Bright Teeth", leads[1].CompanyName)
	assert.Equal(t, "N/A", leads[1].Website)
	assert.Equal(t, "", leads[1].Town)

	// One detail delay per place (including the skipped one), plus the
	// page-token delay before the second page.
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		500 * time.Millisecond,
		2 * time.Second,
		500 * time.Millisecond,
	}, sleeper.calls)
}

func TestFindLeads_StopsAtMaxResults(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, "Austin, TX").Return(okGeocode(), nil)
	client.On("NearbySearch", mock.Anything, mock.Anything).Return(&google.NearbyResponse{
		Status:        google.StatusOK,
		Results:       []google.PlaceResult{{PlaceID: "a"}, {PlaceID: "b"}, {PlaceID: "c"}},
		NextPageToken: "more",
	}, nil).Once()
	client.On("PlaceDetails", mock.Anything, "a", mock.Anything).Return(details("A", "a.com"), nil)
	client.On("PlaceDetails", mock.Anything, "b", mock.Anything).Return(details("B", "b.com"), nil)

	src := NewSource(client, WithSleeper(&recordingSleeper{}))
	leads, err := src.FindLeads(context.Background(), Query{Keyword: "plumber", Location: "Austin, TX", MaxResults: 2})

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Empty(t, leads[0].BusinessType)
	client.AssertNotCalled(t, "PlaceDetails", mock.Anything, "c", mock.Anything)
}

func TestFindLeads_SearchStatusStopsPaging(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, mock.Anything).Return(okGeocode(), nil)
	client.On("NearbySearch", mock.Anything, mock.Anything).Return(&google.NearbyResponse{Status: google.StatusZeroResults}, nil).Once()

	leads, err := NewSource(client, WithSleeper(&recordingSleeper{})).
		FindLeads(context.Background(), Query{Category: "Weddings", Location: "Reno, NV"})
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestFindLeads_GeocodeFailure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, "Atlantis, XX").Return(&google.GeocodeResponse{Status: google.StatusZeroResults}, nil)

	leads, err := NewSource(client).FindLeads(context.Background(), Query{Category: "Lawyer", Location: "Atlantis, XX"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeocode)
	assert.Contains(t, err.Error(), "Atlantis, XX")
	assert.Empty(t, leads)
	client.AssertNotCalled(t, "NearbySearch", mock.Anything, mock.Anything)
}

func TestFindLeads_GeocodeTransportError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewSource(client).FindLeads(context.Background(), Query{Category: "Lawyer", Location: "Reno, NV"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFindLeads_PartialOnTransportError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, mock.Anything).Return(okGeocode(), nil)
	client.On("NearbySearch", mock.Anything, mock.Anything).Return(&google.NearbyResponse{
		Status:  google.StatusOK,
		Results: []google.PlaceResult{{PlaceID: "a"}, {PlaceID: "b"}},
	}, nil)
	client.On("PlaceDetails", mock.Anything, "a", mock.Anything).Return(details("A", "a.com"), nil)
	client.On("PlaceDetails", mock.Anything, "b", mock.Anything).Return(nil, errors.New("timeout"))

	leads, err := NewSource(client, WithSleeper(&recordingSleeper{})).
		FindLeads(context.Background(), Query{Keyword: "x", Location: "Reno, NV"})
	require.Error(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "A", leads[0].CompanyName)
}

func TestFindLeads_RequiresKeyword(t *testing.T) {
	client := mocks.NewMockClient(t)
	_, err := NewSource(client).FindLeads(context.Background(), Query{Location: "Reno, NV"})
	require.Error(t, err)
}

type memCache struct {
	data map[string][]model.Lead
	sets int
}

func (m *memCache) GetLeads(_ context.Context, key string) ([]model.Lead, bool, error) {
	l, ok := m.data[key]
	return l, ok, nil
}

func (m *memCache) SetLeads(_ context.Context, key string, leads []model.Lead) error {
	m.sets++
	m.data[key] = leads
	return nil
}

func TestFindLeads_Cache(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Geocode", mock.Anything, mock.Anything).Return(okGeocode(), nil).Once()
	client.On("NearbySearch", mock.Anything, mock.Anything).Return(&google.NearbyResponse{
		Status:  google.StatusOK,
		Results: []google.PlaceResult{{PlaceID: "a"}},
	}, nil).Once()
	client.On("PlaceDetails", mock.Anything, "a", mock.Anything).Return(details("A", "a.com"), nil).Once()

	cache := &memCache{data: map[string][]model.Lead{}}
	src := NewSource(client, WithSleeper(&recordingSleeper{}), WithCache(cache))
	q := Query{Category: "Pet Services", Location: "Reno, NV"}

	first, err := src.FindLeads(context.Background(), q)
	require.NoError(t, err)
	second, err := src.FindLeads(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

func TestQueryResolve(t *testing.T) {
	r := Query{Category: " real estate ", Location: " Boston, MA "}.resolve()
	assert.Equal(t, "real estate agent OR realtor", r.keyword)
	assert.Equal(t, "Real Estate", r.businessType)
	assert.Equal(t, "Boston, MA", r.location)
	assert.Equal(t, DefaultRadiusMiles, r.radiusMiles)
	assert.Equal(t, DefaultMaxResults, r.maxResults)

	r = Query{Category: "Dentist", Keyword: "orthodontist", RadiusMiles: 5, MaxResults: 10}.resolve()
	assert.Equal(t, "orthodontist", r.keyword)
	assert.Equal(t, "Dentist", r.businessType)

	r = Query{Category: "food trucks"}.resolve()
	assert.Equal(t, "food trucks", r.keyword)
	assert.Empty(t, r.businessType)
}

func TestValidateLocation(t *testing.T) {
	assert.NoError(t, ValidateLocation("Boston, MA"))
	assert.ErrorIs(t, ValidateLocation("Boston"), ErrLocationFormat)
	assert.ErrorIs(t, ValidateLocation(""), ErrLocationFormat)
}

func TestTownFromVicinity(t *testing.T) {
	assert.Equal(t, "Boston", townFromVicinity("12 Main St, Boston"))
	assert.Equal(t, "", townFromVicinity("Boston"))
	assert.Equal(t, "", townFromVicinity(""))
}
