package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/throttle"
	"github.com/sells-group/leadgen-cli/pkg/google"
	googlemocks "github.com/sells-group/leadgen-cli/pkg/google/mocks"
	"github.com/sells-group/leadgen-cli/pkg/llm"
	llmmocks "github.com/sells-group/leadgen-cli/pkg/llm/mocks"
)

func instant() Policy {
	return Policy{MaxAttempts: 3, Sleeper: throttle.NoDelay}
}

func TestLLM_RetriesTransient(t *testing.T) {
	m := llmmocks.NewMockClient(t)
	req := llm.Request{User: "hi"}
	m.On("Complete", mock.Anything, req).Return(nil, NewTransientError(errors.New("busy"), 529)).Once()
	m.On("Complete", mock.Anything, req).Return(&llm.Response{Text: "ok"}, nil).Once()

	resp, err := LLM(m, "anthropic", instant()).Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestLLM_PermanentErrorNotRetried(t *testing.T) {
	m := llmmocks.NewMockClient(t)
	m.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("invalid api key")).Once()

	_, err := LLM(m, "openai", instant()).Complete(context.Background(), llm.Request{})
	assert.EqualError(t, err, "invalid api key")
}

func TestPlaces_Retries(t *testing.T) {
	m := googlemocks.NewMockClient(t)
	m.On("Geocode", mock.Anything, "Austin, TX").Return(nil, &google.StatusError{StatusCode: 503}).Once()
	m.On("Geocode", mock.Anything, "Austin, TX").Return(&google.GeocodeResponse{Status: google.StatusOK}, nil).Once()
	m.On("NearbySearch", mock.Anything, mock.Anything).Return(&google.NearbyResponse{Status: google.StatusOK}, nil).Once()
	m.On("PlaceDetails", mock.Anything, "p1", google.DetailFields).Return(nil, &google.StatusError{StatusCode: 400}).Once()

	c := Places(m, instant())
	geo, err := c.Geocode(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.Equal(t, google.StatusOK, geo.Status)

	_, err = c.NearbySearch(context.Background(), google.NearbyRequest{Keyword: "dentist"})
	require.NoError(t, err)

	_, err = c.PlaceDetails(context.Background(), "p1", google.DetailFields)
	assert.Error(t, err)
}
