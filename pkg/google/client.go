// Package google wraps the Google Custom Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// maxResultsPerCall is the API's hard cap on the num parameter.
const maxResultsPerCall = 10

// Client performs Custom Search API operations.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the parameters for one search call.
type SearchRequest struct {
	Query string
	// Country is a gl country code biasing results, e.g. "us".
	Country string
	// Language is a language code for the lr restriction, e.g. "en".
	Language string
	// Num is the requested result count, clamped to [1,10].
	Num int
}

// SearchResponse is the subset of the Custom Search response the
// service consumes.
type SearchResponse struct {
	Items []Item `json:"items"`
}

// Item is one organic search result.
type Item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// apiError mirrors the error envelope Google returns on non-200s.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	cseID   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Custom Search client for the given API key and
// programmable search engine ID.
func NewClient(apiKey, cseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		cseID:   cseID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.cseID)
	q.Set("q", sr.Query)
	q.Set("num", strconv.Itoa(clampNum(sr.Num)))
	q.Set("safe", "off")
	if sr.Country != "" {
		q.Set("gl", sr.Country)
	}
	if sr.Language != "" {
		q.Set("lr", "lang_"+sr.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, eris.Errorf("google: search failed: %s (status %d)", apiErr.Error.Message, resp.StatusCode)
		}
		return nil, eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}

func clampNum(n int) int {
	if n < 1 {
		return maxResultsPerCall
	}
	if n > maxResultsPerCall {
		return maxResultsPerCall
	}
	return n
}
