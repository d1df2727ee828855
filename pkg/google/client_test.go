package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "site:facebook.com Riviera Country Club Coral Gables, FL", q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))
		assert.Equal(t, "us", q.Get("gl"))
		assert.Equal(t, "lang_en", q.Get("lr"))
		assert.Equal(t, "off", q.Get("safe"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{
			Items: []Item{
				{
					Title:   "Riviera Country Club | Coral Gables FL",
					Link:    "https://www.facebook.com/RivieraCC/",
					Snippet: "Riviera Country Club, Coral Gables. Private golf and tennis club.",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), SearchRequest{
		Query:    "site:facebook.com Riviera Country Club Coral Gables, FL",
		Country:  "us",
		Language: "en",
		Num:      10,
	})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "https://www.facebook.com/RivieraCC/", resp.Items[0].Link)
	assert.Equal(t, "Riviera Country Club | Coral Gables FL", resp.Items[0].Title)
}

func TestSearch_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind": "customsearch#search"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), SearchRequest{Query: "site:facebook.com Nonexistent Corp"})

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestSearch_OmitsLocaleWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("gl"))
		assert.False(t, q.Has("lr"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{Query: "site:facebook.com Acme"})
	require.NoError(t, err)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded for quota metric 'Queries'"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{Query: "site:facebook.com Acme"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quota exceeded")
}

func TestSearch_MalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("backend unavailable"))
	}))
	defer srv.Close()

	client := NewClient("test-key", "test-cx", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{Query: "site:facebook.com Acme"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClampNum(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 10},
		{-1, 10},
		{1, 1},
		{10, 10},
		{20, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampNum(tt.in), "clampNum(%d)", tt.in)
	}
}
