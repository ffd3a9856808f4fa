// Package feed provides a client for the ExLibris cloud status feed.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the ExLibris cloud status endpoint.
	DefaultBaseURL = "https://status.exlibrisgroup.com/?page_id=5511"

	// ProviderName identifies this provider.
	ProviderName = "exlibris-status"
)

// ClientConfig holds configuration for the feed client.
type ClientConfig struct {
	// BaseURL is the feed URL (defaults to DefaultBaseURL).
	BaseURL string

	// Env is the hosted environment identifier posted in the request,
	// e.g. the institution's Primo instance code.
	Env string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches raw status documents from the vendor feed.
type Client struct {
	baseURL    string
	env        string
	httpClient HTTPDoer
}

// NewClient creates a new feed client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		baseURL:    baseURL,
		env:        cfg.Env,
		httpClient: httpClient,
	}
}

// FetchStatus retrieves the raw status document for the configured
// environment. The body is returned verbatim; normalization and parsing are
// the classifier's concern.
func (c *Client) FetchStatus(ctx context.Context) (string, error) {
	form := url.Values{
		"act":    {"get_status"},
		"client": {"xml"},
		"envs":   {c.env},
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from status feed", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read status body: %w", err)
	}

	return string(body), nil
}
