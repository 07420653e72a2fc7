package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.firecrawl.dev"

var ErrDiscovery = errors.New("discovery failed")

// SearchResult is one raw hit from the search backend.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int, country string) ([]SearchResult, error)
}

// FirecrawlClient calls the Firecrawl web search endpoint.
type FirecrawlClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type ClientOption func(*FirecrawlClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(f *FirecrawlClient) { f.httpClient = c }
}

func WithBaseURL(u string) ClientOption {
	return func(f *FirecrawlClient) {
		if u != "" {
			f.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func NewFirecrawlClient(apiKey string, opts ...ClientOption) *FirecrawlClient {
	c := &FirecrawlClient{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	Country string `json:"country,omitempty"`
}

type searchResponse struct {
	Success bool           `json:"success"`
	Data    []SearchResult `json:"data"`
	Error   string         `json:"error,omitempty"`
}

func (c *FirecrawlClient) Search(ctx context.Context, query string, limit int, country string) ([]SearchResult, error) {
	body, err := json.Marshal(searchRequest{Query: query, Limit: limit, Country: country})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrDiscovery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrDiscovery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrDiscovery, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrDiscovery, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out searchResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrDiscovery, err)
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: %s", ErrDiscovery, out.Error)
	}
	return out.Data, nil
}
