// Package fetcher turns business queries into raw Facebook search
// results and handles the batch input/output file formats.
package fetcher

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/pkg/google"
)

// BuildQuery constructs the search query for one business. Scoping to
// site:facebook.com keeps the engine from wandering off-domain.
func BuildQuery(q model.BusinessQuery) string {
	return fmt.Sprintf("site:facebook.com %s %s", q.Name, q.Location)
}

// GoogleFetcher retrieves candidates via the Custom Search API.
type GoogleFetcher struct {
	client google.Client
	cfg    config.GoogleConfig
}

// NewGoogle creates a fetcher backed by the given search client.
func NewGoogle(client google.Client, cfg config.GoogleConfig) *GoogleFetcher {
	return &GoogleFetcher{client: client, cfg: cfg}
}

// Fetch runs one search and maps the response to raw results.
func (f *GoogleFetcher) Fetch(ctx context.Context, q model.BusinessQuery) ([]model.RawResult, error) {
	resp, err := f.client.Search(ctx, google.SearchRequest{
		Query:    BuildQuery(q),
		Country:  f.cfg.Country,
		Language: f.cfg.Language,
		Num:      f.cfg.NumResults,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: search for %q", q.Name)
	}

	results := make([]model.RawResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, model.RawResult{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// Stub serves canned results keyed by business name. Used by the
// offline CLI mode and tests.
type Stub struct {
	Results map[string][]model.RawResult
	Err     error
}

// Fetch returns the canned results for the query's business name.
func (s *Stub) Fetch(_ context.Context, q model.BusinessQuery) ([]model.RawResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results[q.Name], nil
}
