package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	defaultTimeout         = 30 * time.Second
	defaultMaxElapsed      = 2 * time.Minute
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
)

// Client sends JSON or form-encoded requests and retries transport failures
// and 5xx responses with exponential backoff.
type Client struct {
	maxTries   uint
	httpClient *http.Client
	logger     *zap.Logger
}

// RequestOptions describes one logical request. Zero retry fields fall back
// to the client defaults.
type RequestOptions struct {
	Context context.Context
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{}

	MaxTries        uint
	MaxElapsed      time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// errServerStatus marks a 5xx response as retryable.
var errServerStatus = errors.New("server error")

func NewClient() *Client {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return NewClientWithLogger(logger)
}

// NewClientWithLogger returns a client that makes a single attempt per
// request unless WithMaxTries says otherwise.
func NewClientWithLogger(logger *zap.Logger) *Client {
	c := &Client{logger: logger, maxTries: 1}
	c.httpClient = &http.Client{Timeout: defaultTimeout}
	return c
}

// WithTimeout sets the per-request timeout of the underlying net/http client.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithMaxTries sets how many attempts Do makes when RequestOptions leaves MaxTries unset.
func (c *Client) WithMaxTries(tries uint) *Client {
	if tries > 0 {
		c.maxTries = tries
	}
	return c
}

// Do executes the request and returns the response for every HTTP status.
// Only transport failures are returned as errors. Transport failures and 5xx
// responses are retried while attempts remain; once they run out the last
// 5xx response is returned as is.
func (c *Client) Do(opts RequestOptions) (*Response, error) {
	opts = c.withDefaults(opts)

	var lastServerError *Response
	resp, err := backoff.Retry(opts.Context, func() (*Response, error) {
		r, attemptErr := c.attempt(opts.Context, opts)
		switch {
		case attemptErr != nil:
			return nil, attemptErr
		case r.StatusCode >= http.StatusInternalServerError:
			lastServerError = r
			return nil, fmt.Errorf("%w: %d", errServerStatus, r.StatusCode)
		}
		return r, nil
	},
		backoff.WithBackOff(newBackOff(opts)),
		backoff.WithMaxElapsedTime(opts.MaxElapsed),
		backoff.WithMaxTries(opts.MaxTries),
	)
	if err != nil {
		if errors.Is(err, errServerStatus) && lastServerError != nil {
			c.logger.Warn("Giving up on server error",
				zap.String("url", opts.URL),
				zap.Int("status", lastServerError.StatusCode),
				zap.Uint("tries", opts.MaxTries))
			return lastServerError, nil
		}
		c.logger.Error("Request failed", zap.String("url", opts.URL), zap.Uint("tries", opts.MaxTries), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Response received", zap.String("url", opts.URL), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (c *Client) withDefaults(opts RequestOptions) RequestOptions {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = c.maxTries
	}
	opts.MaxElapsed = orDuration(opts.MaxElapsed, defaultMaxElapsed)
	opts.InitialInterval = orDuration(opts.InitialInterval, defaultInitialInterval)
	opts.MaxInterval = orDuration(opts.MaxInterval, defaultMaxInterval)
	return opts
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func newBackOff(opts RequestOptions) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval
	b.Reset()
	return b
}

// attempt performs one round trip. Request build and body read failures are
// permanent; transport failures may be retried.
func (c *Client) attempt(ctx context.Context, opts RequestOptions) (*Response, error) {
	req, buildErr := c.buildRequest(ctx, opts)
	if buildErr != nil {
		return nil, backoff.Permanent(buildErr)
	}

	c.logger.Debug("Sending request", zap.String("method", opts.Method), zap.String("url", opts.URL))

	raw, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Transport error", zap.Error(err), zap.String("url", opts.URL))
		return nil, err
	}
	defer raw.Body.Close()

	payload, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("could not read body of %s: %w", opts.URL, err))
	}
	return &Response{StatusCode: raw.StatusCode, Headers: raw.Header, Body: payload}, nil
}

func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	payload, contentType, err := encodeBody(opts.Body, opts.Headers)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("could not create %s request: %w", opts.Method, err)
	}

	req.Header.Set("Accept", ContentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}
	return req, nil
}

// encodeBody serializes body as a form when the caller asked for
// form-urlencoded and as JSON otherwise. Raw bytes pass through. The returned
// content type is empty when the caller already set one.
func encodeBody(body interface{}, headers map[string]string) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}

	contentType := headerValue(headers, "Content-Type")
	if raw, ok := body.([]byte); ok {
		return bytes.NewReader(raw), "", nil
	}

	if strings.HasPrefix(strings.ToLower(contentType), ContentTypeForm) {
		form, err := toForm(body)
		if err != nil {
			return nil, "", err
		}
		return strings.NewReader(form.Encode()), "", nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("could not encode JSON body: %w", err)
	}
	if contentType != "" {
		return bytes.NewReader(encoded), "", nil
	}
	return bytes.NewReader(encoded), ContentTypeJSON, nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func toForm(body interface{}) (url.Values, error) {
	switch typed := body.(type) {
	case url.Values:
		return typed, nil
	case map[string]string:
		nested := make(map[string]interface{}, len(typed))
		for k, v := range typed {
			nested[k] = v
		}
		return EncodeForm(nested), nil
	case map[string]interface{}:
		return EncodeForm(typed), nil
	}

	// Anything else goes through JSON to get a generic map.
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not encode form body: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return nil, fmt.Errorf("form body must be an object: %w", err)
	}
	return EncodeForm(generic), nil
}

// Get issues a GET with the client's default retry policy.
func (c *Client) Get(ctx context.Context, target string, headers map[string]string) (*Response, error) {
	return c.Do(RequestOptions{Context: ctx, Method: http.MethodGet, URL: target, Headers: headers})
}

// Post issues a POST. body is encoded according to the Content-Type header.
func (c *Client) Post(ctx context.Context, target string, headers map[string]string, body interface{}) (*Response, error) {
	return c.Do(RequestOptions{Context: ctx, Method: http.MethodPost, URL: target, Headers: headers, Body: body})
}
