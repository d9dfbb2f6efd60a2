package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Process_Insights/internal/models"
)

const (
	maxBodySize  = 1024 * 1024
	maxRedirects = 5
	userAgent    = "Process-Insights/1.0"
)

// StatusError is returned for any non-200 upstream response.
// The retrying fetch client reads the status through HTTPStatus.
type StatusError struct {
	StatusCode int
	URL        string
	err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.StatusCode, e.URL)
}

// HTTPStatus exposes the upstream status code
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

func (e *StatusError) Unwrap() error {
	return e.err
}

// HTTPFetcher implements Service using HTTP requests against a base URL
type HTTPFetcher struct {
	client  *http.Client
	baseURL *url.URL
	timeout time.Duration
}

// NewHTTPFetcher creates a new HTTP-based dataset fetcher
func NewHTTPFetcher(baseURL string, timeout time.Duration) (Service, error) {
	c, err := newHTTPFetcher(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newHTTPFetcher creates the concrete implementation
func newHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream URL %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid upstream URL %q: missing host", baseURL)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: checkRedirect,
		},
		baseURL: parsed,
		timeout: timeout,
	}, nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("too many redirects")
	}
	return nil
}

// Fetch GETs baseURL+path and returns the response body
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	target := f.resolve(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", models.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: target}
		if resp.StatusCode == http.StatusNotFound {
			statusErr.err = models.ErrDatasetNotFound
		}
		return nil, statusErr
	}

	body, err := readBodyWithLimit(resp.Body, maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// resolve joins path onto the base URL, keeping any base path prefix
func (f *HTTPFetcher) resolve(path string) string {
	u := *f.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readBodyWithLimit reads the response body with a size limit
func readBodyWithLimit(body io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("payload too large (exceeds %d bytes)", maxSize)
	}

	return data, nil
}
