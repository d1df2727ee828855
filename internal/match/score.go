package match

import (
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// QualityScore rates a categorized URL in [0,1]. Clean page URLs score
// 1.0; groups, personal-profile shapes, and non-canonical sub-paths
// each subtract a configured penalty. Pure function of its inputs.
func QualityScore(category model.Category, badPath bool, cfg config.MatchConfig) float64 {
	score := 1.0
	if badPath {
		score -= cfg.BadPathPenalty
	}
	switch category {
	case model.CategoryGroup:
		score -= cfg.GroupPenalty
	case model.CategoryOther:
		score -= cfg.OtherPenalty
	}
	return clamp01(score)
}

// Confidence fuses URL quality and name match into the final score.
func Confidence(quality, nameMatch float64, cfg config.MatchConfig) float64 {
	return clamp01(cfg.QualityWeight*quality + cfg.NameWeight*nameMatch)
}
