package fetchclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"Process_Insights/internal/models"
)

// RetryPolicy bounds how often and how patiently a fetch is retried
type RetryPolicy struct {
	MaxAttempts   int
	BackoffFactor time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 300ms backoff factor
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BackoffFactor: 300 * time.Millisecond,
	}
}

// Validate checks that the policy can be executed
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", models.ErrInvalidRetryPolicy, p.MaxAttempts)
	}
	if p.BackoffFactor < 0 {
		return fmt.Errorf("%w: backoff factor must not be negative, got %v", models.ErrInvalidRetryPolicy, p.BackoffFactor)
	}
	return nil
}

// Backoff returns the wait after a failed attempt (0-indexed): factor * 2^attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.BackoffFactor) * math.Pow(2, float64(attempt))
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// statusCoder is implemented by failures that carry an HTTP status
type statusCoder interface {
	HTTPStatus() int
}

// Client implements Service with bounded exponential backoff
type Client struct {
	policy RetryPolicy
	sleep  func(time.Duration)
}

// Option configures a Client
type Option func(*Client)

// WithSleeper replaces time.Sleep for the inter-attempt wait
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient creates a new retrying fetch client
func NewClient(policy RetryPolicy, opts ...Option) (Service, error) {
	c, err := newClient(policy, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newClient creates the concrete implementation
func newClient(policy RetryPolicy, opts ...Option) (*Client, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		policy: policy,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Policy returns the client's retry policy
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Execute runs thunk until it succeeds or the policy's attempts are used up.
// Only the last failure is reported, as a *models.APIError. The wait between
// attempts is not interrupted by ctx; ctx is handed to the thunk.
func (c *Client) Execute(ctx context.Context, thunk Thunk) (interface{}, error) {
	if thunk == nil {
		return nil, models.NewAPIError("nil fetch operation", nil)
	}

	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		value, err := c.attempt(ctx, thunk)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt < c.policy.MaxAttempts-1 {
			c.sleep(c.policy.Backoff(attempt))
		}
	}

	return nil, normalize(lastErr)
}

// attempt invokes thunk once, turning a panic into an ordinary failure
func (c *Client) attempt(ctx context.Context, thunk Thunk) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return thunk(ctx)
}

// normalize converts the last underlying failure into an APIError.
// The failure stays reachable through errors.Is for callers that classify it.
func normalize(err error) *models.APIError {
	if err == nil {
		return models.NewAPIError("", nil)
	}

	var statusCode *int
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatus()
		statusCode = &code
	}

	return models.WrapAPIError(err, statusCode)
}

// Do is the typed form of Service.Execute
func Do[T any](ctx context.Context, s Service, thunk func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	value, err := s.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		v, err := thunk(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, models.NewAPIError(fmt.Sprintf("unexpected result type %T", value), nil)
	}
	return typed, nil
}
