package httpx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ClientConfig bundles the HTTP client and resilience settings.
type ClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoClient      = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// NewBreaker returns a circuit breaker with the settings every outbound
// boundary in this service uses.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// DefaultBackoff is the retry schedule shared by the feed, settings and
// notification adapters.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Do executes the request with retries, exponential backoff, and a circuit
// breaker. 429 and 5xx responses are retried; anything below 500 (other than
// 429) is handed back to the caller, which owns status interpretation — a
// 404 or 409 carries meaning for the settings store and must not be eaten
// here. The caller closes the response body.
func Do(
	ctx context.Context,
	cfg ClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}
