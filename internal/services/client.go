package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/cinex/internal/shared"
)

const (
	DefaultBaseURL  = "http://localhost:5000"
	RequestIDHeader = "X-Request-ID"
)

// ClientOpts configures a [Client]. Zero values select defaults.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	Logger     *log.Logger

	// RequestsPerSecond of zero disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the movie API.
type Client struct {
	baseURL string
	base    *http.Client
	limiter *rate.Limiter
	logger  *log.Logger

	mu     sync.RWMutex
	token  string
	authed *http.Client
}

// NewClient creates a new movie API client.
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	c := &Client{
		baseURL: baseURL,
		base:    base,
		logger:  shared.WithLogger(logger, "component", "api"),
	}

	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(opts.Burst, 1))
	}

	c.SetToken(opts.Token)
	return c
}

// NewClientFromConfig builds a client from the [api] section of the config.
func NewClientFromConfig(cfg shared.APIConfig, token string, logger *log.Logger) *Client {
	return NewClient(ClientOpts{
		BaseURL:           cfg.BaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.Timeout()},
		Token:             token,
		Logger:            logger,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken attaches token as a bearer credential to subsequent requests. An empty token logs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	if token == "" {
		c.authed = nil
		return
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	c.authed = oauth2.NewClient(ctx, src)
}

// Authenticated reports whether a bearer token is attached.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) httpClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authed != nil {
		return c.authed
	}
	return c.base
}

func (c *Client) requireAuth() error {
	if !c.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	return nil
}

// send performs one request and returns the status and body. The rate limiter is honoured first.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte) (int, http.Header, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return 0, nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))
	return resp.StatusCode, resp.Header, data, nil
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = data
	}

	status, _, data, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		return newAPIError(status, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an arbitrary request against the API and returns the undecoded response.
//
// Non-2xx statuses are returned as a response, not an error.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) (*APIResponse, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var query url.Values
	if p, q, ok := strings.Cut(path, "?"); ok {
		parsed, err := url.ParseQuery(q)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		path, query = p, parsed
	}

	status, headers, data, err := c.send(ctx, strings.ToUpper(method), path, query, body)
	if err != nil {
		return nil, err
	}

	resp := &APIResponse{StatusCode: status, Headers: headers, Body: data}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		resp.IsJSON = true
		resp.JSONData = jsonData
	}
	return resp, nil
}
