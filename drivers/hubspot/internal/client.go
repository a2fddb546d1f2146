package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	requestTimeout       = 60 * time.Second
	maxErrorBody         = 512
	initialRetryInterval = 500 * time.Millisecond
)

// HTTPError is a non-2xx response from HubSpot.
type HTTPError struct {
	Operation     string
	Status        int
	Category      string
	CorrelationID string
	Message       string
	Body          string
	RetryAfter    time.Duration
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s returned status %d", e.Operation, e.Status)
	if e.Category != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Category)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	} else if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.CorrelationID != "" {
		msg = fmt.Sprintf("%s (correlationId=%s)", msg, e.CorrelationID)
	}
	return msg
}

// Retryable reports rate limiting and server side failures.
func (e *HTTPError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Client sends rate limited, retried requests to the HubSpot API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	retries int
	// first backoff interval, doubled on each retry
	retryInterval time.Duration
}

func NewClient(ctx context.Context, config *Config) *Client {
	var source oauth2.TokenSource
	if config.usesOAuth() {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		source = oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken})
	} else {
		source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.AccessToken, TokenType: "Bearer"})
	}

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = requestTimeout

	burst := int(config.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http:    httpClient,
		baseURL: config.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst),
		retries: config.RetryCount,

		retryInterval: initialRetryInterval,
	}
}

// Get requests path with the query parameters and decodes the JSON response.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post sends body as JSON to path and decodes the JSON response.
func (c *Client) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %s", err)
		}
	}

	var response map[string]any
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %s", err))
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%s %s: %s", method, path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			httpErr := readHTTPError(fmt.Sprintf("%s %s", method, path), resp)
			if !httpErr.Retryable() {
				return backoff.Permanent(fmt.Errorf("%w: %w", constants.ErrNonRetryable, httpErr))
			}
			if httpErr.RetryAfter > 0 {
				logger.Debugf("rate limited on %s %s, waiting %s", method, path, httpErr.RetryAfter)
				select {
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				case <-time.After(httpErr.RetryAfter):
				}
			}
			return httpErr
		}

		response = map[string]any{}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode response of %s %s: %s", method, path, err)
		}
		return nil
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(c.retries)), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		logger.Warnf("retrying %s %s in %s: %s", method, path, wait, err)
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func readHTTPError(operation string, resp *http.Response) *HTTPError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	httpErr := &HTTPError{
		Operation: operation,
		Status:    resp.StatusCode,
		Body:      string(raw),
	}

	details := struct {
		Message       string `json:"message"`
		Category      string `json:"category"`
		CorrelationID string `json:"correlationId"`
	}{}
	if json.Unmarshal(raw, &details) == nil {
		httpErr.Message = details.Message
		httpErr.Category = details.Category
		httpErr.CorrelationID = details.CorrelationID
	}

	if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
		httpErr.RetryAfter = time.Duration(seconds) * time.Second
	}
	return httpErr
}
