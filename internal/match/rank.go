package match

import (
	"fmt"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// categoryRank orders categories for tie-breaking: Page > Group > Other.
func categoryRank(c model.Category) int {
	switch c {
	case model.CategoryPage:
		return 2
	case model.CategoryGroup:
		return 1
	default:
		return 0
	}
}

// BuildCandidates scores every raw result for a query. Invalid URLs
// (unparseable, empty) are dropped; everything else yields a candidate.
func BuildCandidates(q model.BusinessQuery, results []model.RawResult, cfg config.MatchConfig) []model.Candidate {
	candidates := make([]model.Candidate, 0, len(results))
	for _, r := range results {
		cls := Categorize(r.URL)
		if cls.URL == "" {
			continue
		}
		quality := QualityScore(cls.Category, cls.BadPath, cfg)
		nameScore := NameScore(q.Name, cls.Slug, r.Title, r.Snippet)
		candidates = append(candidates, model.Candidate{
			URL:            cls.URL,
			Category:       cls.Category,
			BadPath:        cls.BadPath,
			QualityScore:   quality,
			NameMatchScore: nameScore,
			Confidence:     Confidence(quality, nameScore, cfg),
		})
	}
	return candidates
}

// Rank selects the best candidate for a query. Ties break by category
// (Page > Group > Other), then by input order. Empty input or nothing
// above the viability threshold yields a no-match result with an
// explanatory note. This is the rule-based path, always available.
func Rank(q model.BusinessQuery, results []model.RawResult, cfg config.MatchConfig) model.MatchResult {
	if len(results) == 0 {
		return noMatch(q, "no search results")
	}

	candidates := BuildCandidates(q, results, cfg)
	if len(candidates) == 0 {
		return noMatch(q, "no valid candidate URLs in search results")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
			continue
		}
		if c.Confidence == best.Confidence && categoryRank(c.Category) > categoryRank(best.Category) {
			best = c
		}
	}

	if best.Confidence < cfg.ViabilityThreshold {
		return noMatch(q, fmt.Sprintf("all %d candidates below viability threshold %.2f", len(candidates), cfg.ViabilityThreshold))
	}

	return model.MatchResult{
		BusinessName: q.Name,
		Location:     q.Location,
		FacebookURL:  best.URL,
		Type:         best.Category,
		Confidence:   best.Confidence,
		Notes:        ruleNote(best),
	}
}

// ruleNote describes which heuristics fired for the selected candidate.
func ruleNote(c model.Candidate) string {
	var shape string
	switch c.Category {
	case model.CategoryPage:
		shape = "matched page slug"
	case model.CategoryGroup:
		shape = "matched group"
	default:
		shape = "unrecognized URL shape"
	}
	path := "no bad path"
	if c.BadPath {
		path = "non-canonical sub-path"
	}
	return fmt.Sprintf("%s, %s (quality %.2f, name match %.2f)", shape, path, c.QualityScore, c.NameMatchScore)
}

func noMatch(q model.BusinessQuery, reason string) model.MatchResult {
	return model.MatchResult{
		BusinessName: q.Name,
		Location:     q.Location,
		Type:         model.CategoryNone,
		Confidence:   0.0,
		Notes:        reason,
	}
}
