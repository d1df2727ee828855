// Package model defines the core data types shared across the search pipeline.
package model

import "strings"

// Category classifies a Facebook URL by its path shape.
type Category string

const (
	CategoryPage  Category = "page"
	CategoryGroup Category = "group"
	CategoryOther Category = "other"
	// CategoryNone marks a row with no viable match. It renders as an
	// empty Type column in the output CSV.
	CategoryNone Category = ""
)

// BusinessQuery is one input row: a business name plus an optional location.
type BusinessQuery struct {
	Name     string `json:"business_name"`
	Location string `json:"location"`
}

// Valid reports whether the query has a non-empty name after trimming.
func (q BusinessQuery) Valid() bool {
	return strings.TrimSpace(q.Name) != ""
}

// RawResult is a single search-backend hit, in backend relevance order.
type RawResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Candidate is a scored, categorized interpretation of one RawResult.
// It exists only while one query is being evaluated.
type Candidate struct {
	URL            string   `json:"url"` // normalized
	Category       Category `json:"category"`
	BadPath        bool     `json:"bad_path"`
	QualityScore   float64  `json:"quality_score"`
	NameMatchScore float64  `json:"name_match_score"`
	Confidence     float64  `json:"confidence"`
}

// MatchResult is the terminal per-query artifact. FacebookURL is empty
// and Confidence 0.0 when no candidate cleared the viability bar.
type MatchResult struct {
	BusinessName string   `json:"business_name"`
	Location     string   `json:"location"`
	FacebookURL  string   `json:"facebook_url"`
	Type         Category `json:"type"`
	Confidence   float64  `json:"confidence"`
	Notes        string   `json:"notes"`
}

// Found reports whether the result carries a usable Facebook URL.
func (r MatchResult) Found() bool {
	return r.FacebookURL != ""
}
