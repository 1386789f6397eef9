package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps HTTP operations for the wiki.
//
// One Client is created at startup and shared by every concurrent task;
// the underlying http.Client and its connection pool are safe for
// concurrent use, so no further synchronization is needed.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client whose individual requests time out after the
// given duration. A timeout of zero disables the limit.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "kk-downloader",
	}
}

// Response is the outcome of one GET. A Response is returned even for
// non-success statuses; callers decide whether to treat those as errors
// via IsSuccess or StatusError.
//
// The Body must be consumed through Text or by the caller, and closed
// exactly once.
type Response struct {
	// URL is the request URL, kept for error reporting.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	status string

	// Body streams the payload. io.Reader delivers the body as a lazy
	// sequence of chunks, so large files never need to be buffered whole.
	Body io.ReadCloser
}

// StatusError reports a non-success HTTP status, carrying the code and
// the URL that produced it.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s for %s", e.Status, e.URL)
}

// IsSuccess reports whether the response has a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError returns a typed error for a non-success response, or nil if
// the response succeeded.
func (r *Response) StatusError() error {
	if r.IsSuccess() {
		return nil
	}
	return &StatusError{URL: r.URL, StatusCode: r.StatusCode, Status: r.status}
}

// Text reads the whole body as a string and closes it.
func (r *Response) Text() (string, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", r.URL, err)
	}
	return string(data), nil
}

// Fetch performs one GET against url.
//
// An error is returned only for transport-level failures (connection
// errors, timeouts, malformed URLs). Any HTTP status, success or not,
// yields a Response; callers must check IsSuccess themselves.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		status:     resp.Status,
		Body:       resp.Body,
	}, nil
}
