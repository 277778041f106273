package resilience

import (
	"context"

	"github.com/sells-group/leadgen-cli/pkg/google"
	"github.com/sells-group/leadgen-cli/pkg/llm"
)

type retryingLLM struct {
	next   llm.Client
	policy Policy
}

// LLM wraps an llm.Client so transient failures are retried.
func LLM(next llm.Client, service string, p Policy) llm.Client {
	return &retryingLLM{next: next, policy: p.logged(service, "complete")}
}

func (r *retryingLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return Do(ctx, r.policy, func(ctx context.Context) (*llm.Response, error) {
		return r.next.Complete(ctx, req)
	})
}

type retryingPlaces struct {
	next   google.Client
	policy Policy
}

// Places wraps a google.Client so transient failures are retried.
func Places(next google.Client, p Policy) google.Client {
	return &retryingPlaces{next: next, policy: p}
}

func (r *retryingPlaces) Geocode(ctx context.Context, address string) (*google.GeocodeResponse, error) {
	return Do(ctx, r.policy.logged("google", "geocode"), func(ctx context.Context) (*google.GeocodeResponse, error) {
		return r.next.Geocode(ctx, address)
	})
}

func (r *retryingPlaces) NearbySearch(ctx context.Context, req google.NearbyRequest) (*google.NearbyResponse, error) {
	return Do(ctx, r.policy.logged("google", "nearby_search"), func(ctx context.Context) (*google.NearbyResponse, error) {
		return r.next.NearbySearch(ctx, req)
	})
}

func (r *retryingPlaces) PlaceDetails(ctx context.Context, placeID string, fields []string) (*google.DetailsResponse, error) {
	return Do(ctx, r.policy.logged("google", "place_details"), func(ctx context.Context) (*google.DetailsResponse, error) {
		return r.next.PlaceDetails(ctx, placeID, fields)
	})
}
