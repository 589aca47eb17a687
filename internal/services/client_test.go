package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/cinex/internal/shared"
	tu "github.com/desertthunder/cinex/internal/testing"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := NewClient(ClientOpts{BaseURL: "http://example.com/", HTTPClient: customClient, Logger: quietLogger()})

			if c.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
			}
			if c.httpClient() != customClient {
				t.Error("expected custom client to be used")
			}
			if c.limiter != nil {
				t.Error("expected no limiter without requests_per_second")
			}
		})

		t.Run("With Defaults", func(t *testing.T) {
			c := NewClient(ClientOpts{Logger: quietLogger()})

			if c.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, c.BaseURL())
			}
			if c.httpClient() != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.Authenticated() {
				t.Error("expected unauthenticated client")
			}
		})

		t.Run("From Config", func(t *testing.T) {
			cfg := shared.DefaultConfig().API
			c := NewClientFromConfig(cfg, "tok", quietLogger())

			if !c.Authenticated() {
				t.Error("expected token to be attached")
			}
			if c.limiter == nil {
				t.Fatal("expected limiter from config")
			}
			if c.limiter.Burst() != cfg.Burst {
				t.Errorf("expected burst %d, got %d", cfg.Burst, c.limiter.Burst())
			}
		})
	})

	t.Run("Headers", func(t *testing.T) {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": {}}`))
		}))
		defer server.Close()

		t.Run("Bearer Token And Request ID", func(t *testing.T) {
			c := NewClient(ClientOpts{BaseURL: server.URL, Token: "secret", Logger: quietLogger()})
			if _, err := c.WatchlistStatus(context.Background(), []int{1}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if auth := got.Get("Authorization"); auth != "Bearer secret" {
				t.Errorf("expected bearer authorization, got %q", auth)
			}
			if _, err := uuid.Parse(got.Get(RequestIDHeader)); err != nil {
				t.Errorf("expected uuid request id, got %q", got.Get(RequestIDHeader))
			}
		})

		t.Run("SetToken Empty Logs Out", func(t *testing.T) {
			c := NewClient(ClientOpts{BaseURL: server.URL, Token: "secret", Logger: quietLogger()})
			c.SetToken("")

			if _, err := c.ListMovies(context.Background(), modelsDefault(), 0); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if auth := got.Get("Authorization"); auth != "" {
				t.Errorf("expected no authorization header, got %q", auth)
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
			c := NewClient(ClientOpts{BaseURL: "http://example.com", HTTPClient: client, Logger: quietLogger()})

			_, err := c.GetMovie(context.Background(), 1)
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected request failed error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)}
			c := NewClient(ClientOpts{BaseURL: "http://example.com", HTTPClient: client, Logger: quietLogger()})

			_, err := c.GetMovie(context.Background(), 1)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			}))
			defer server.Close()

			c := NewClient(ClientOpts{BaseURL: server.URL, Logger: quietLogger()})
			_, err := c.GetMovie(context.Background(), 1)
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(100 * time.Millisecond)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			c := NewClient(ClientOpts{BaseURL: server.URL, Logger: quietLogger()})
			_, err := c.ListMovies(ctx, modelsDefault(), 0)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("Unauthenticated Calls Fail Fast", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("should not be called"))
			c := NewClient(ClientOpts{HTTPClient: &http.Client{Transport: rt}, Logger: quietLogger()})

			if _, err := c.AddToWatchlist(context.Background(), 1); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if err := c.Like(context.Background(), 1); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if len(rt.Requests) != 0 {
				t.Errorf("expected no requests, got %d", len(rt.Requests))
			}
		})
	})

	t.Run("Rate Limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"movies": []}`))
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL, RequestsPerSecond: 20, Burst: 1, Logger: quietLogger()})

		start := time.Now()
		for range 3 {
			if _, err := c.ListMovies(context.Background(), modelsDefault(), 0); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected limiter to space requests, took %v", elapsed)
		}
	})

	t.Run("Raw", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/movies" || r.URL.Query().Get("genre") != "Drama" {
				t.Errorf("unexpected request %s", r.URL.String())
			}
			w.Header().Set("X-Test", "yes")
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte(`{"message": "short and stout"}`))
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL, Logger: quietLogger()})
		resp, err := c.Raw(context.Background(), "get", "movies?genre=Drama", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if resp.StatusCode != http.StatusTeapot {
			t.Errorf("expected status 418, got %d", resp.StatusCode)
		}
		if !resp.IsJSON || resp.JSONData == nil {
			t.Error("expected JSON response")
		}
		if resp.Headers.Get("X-Test") != "yes" {
			t.Error("expected headers to be preserved")
		}
	})
}

func TestAPIError(t *testing.T) {
	tc := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"unauthorized jwt", 401, `{"msg": "Missing Authorization Header"}`, shared.ErrNotAuthenticated, "Missing Authorization Header"},
		{"malformed token", 422, `{"msg": "Not enough segments"}`, shared.ErrNotAuthenticated, "Not enough segments"},
		{"movie missing", 404, `{"success": false, "message": "Movie not found"}`, shared.ErrMovieNotFound, "Movie not found"},
		{"not in watchlist", 404, `{"success": false, "message": "Movie not in watchlist"}`, shared.ErrNotInWatchlist, "Movie not in watchlist"},
		{"conflict", 409, `{"message": "User already exists"}`, shared.ErrUserExists, "User already exists"},
		{"bad ids", 400, `{"error": "Invalid movie_ids format"}`, shared.ErrInvalidInput, "Invalid movie_ids format"},
		{"server down", 503, `upstream unavailable`, shared.ErrServiceUnavailable, ""},
		{"other", 418, `{}`, shared.ErrAPIRequest, ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(tt.status, []byte(tt.body))

			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err.Unwrap())
			}
			if err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, err.Message)
			}
			if !strings.Contains(err.Error(), "status") {
				t.Errorf("expected status in error string, got %q", err.Error())
			}
		})
	}

	t.Run("ErrorMessage", func(t *testing.T) {
		if got := ErrorMessage(newAPIError(500, []byte(`{"message": "db down"}`)), "failed to fetch movies"); got != "db down" {
			t.Errorf("expected API message, got %q", got)
		}
		if got := ErrorMessage(newAPIError(500, nil), "failed to fetch movies"); got != "failed to fetch movies" {
			t.Errorf("expected fallback, got %q", got)
		}
		if got := ErrorMessage(errors.New("dial tcp: refused"), "failed to fetch movies"); got != "failed to fetch movies" {
			t.Errorf("expected fallback for transport errors, got %q", got)
		}
	})

	t.Run("Predicates", func(t *testing.T) {
		if !(&APIError{StatusCode: 404}).IsNotFound() {
			t.Error("expected 404 to be not found")
		}
		if !(&APIError{StatusCode: 403}).IsUnauthorized() {
			t.Error("expected 403 to be unauthorized")
		}
	})
}
