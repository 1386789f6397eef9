package httpx

import (
	"context"

	"github.com/kksliderdl/kk-downloader/internal/retry"
)

// Fetcher retrieves documents as text, retrying transient failures.
//
// Both transport errors and non-success statuses count against the retry
// budget; after exhaustion the caller receives a *retry.ExhaustedError
// with every attempt's error. No caching is performed, every call is a
// network round trip.
type Fetcher struct {
	client *Client
	policy retry.Policy
}

// NewFetcher creates a Fetcher over the shared client.
func NewFetcher(client *Client, policy retry.Policy) *Fetcher {
	return &Fetcher{client: client, policy: policy}
}

// Document fetches url and returns the response body as text.
func (f *Fetcher) Document(ctx context.Context, url string) (string, error) {
	return retry.Do(ctx, f.policy, func(ctx context.Context) (string, error) {
		resp, err := f.client.Fetch(ctx, url)
		if err != nil {
			return "", err
		}
		if !resp.IsSuccess() {
			resp.Body.Close()
			return "", resp.StatusError()
		}
		return resp.Text()
	})
}
