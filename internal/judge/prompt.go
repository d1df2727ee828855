package judge

import (
	"fmt"
	"strings"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// systemPrompt is the shared system instruction for both rerank and
// agent modes.
const systemPrompt = `You are an expert at analyzing Facebook URLs to find official business pages.

URL CLASSIFICATION RULES:

1. BUSINESS PAGES (best, target these):
   - Clean vanity URL: facebook.com/TennisClubOvada/
   - Modern /p/ URL: facebook.com/p/Tennis-Club-Le-Colline-61566371468729/
   - Legacy pages URL: facebook.com/pages/Tennis-Club/123456789012345/
   - Type: "page"

2. GROUPS (acceptable when no business page exists):
   - Contains /groups/: facebook.com/groups/miamitennisplayers/
   - Type: "group"

3. PERSONAL PROFILES (avoid, these are not businesses):
   - Contains profile.php?id=
   - Or a personal-name slug: facebook.com/john.smith.123/
   - Type: "other"

Never select sub-page paths such as /about, /posts, /photos, /reviews,
/events or /videos; only the clean main URL counts.

SELECTION PRIORITY: page first, then group, never a personal profile.

NAME MATCHING: match the business name against the URL slug, the page
title and the result description. Account for abbreviations ("NYC" for
"New York City"), brand variations ("Starbucks" vs "Starbucks Coffee"),
word-order changes and missing spaces ("TennisClub" vs "Tennis Club").`

// responseFormat is appended to every user message so the model
// returns strict JSON the parser can consume.
const responseFormat = `Return ONLY valid JSON, no markdown formatting:

{
  "facebook_url": "the best URL or 'Not found'",
  "type": "page" or "group" or "other" or "not_found",
  "confidence": 0.0 to 1.0,
  "reasoning": "why this URL matches the business, and why over the alternatives"
}`

// rerankPrompt builds the user message for rerank mode, where
// candidates come from a prior search.
func rerankPrompt(q model.BusinessQuery, results []model.RawResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BUSINESS NAME: %s\nLOCATION: %s\n\n", q.Name, q.Location)
	b.WriteString("SEARCH RESULTS (site:facebook.com):\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\nResult %d:\nURL: %s\nTitle: %s\nDescription: %s\n", i+1, r.URL, r.Title, r.Snippet)
	}
	b.WriteString("\nSelect the best official Facebook page for this business from the results above.\n\n")
	b.WriteString(responseFormat)
	return b.String()
}

// agentPrompt builds the user message for agent mode, where the model
// searches the web itself.
func agentPrompt(q model.BusinessQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BUSINESS NAME: %s\nLOCATION: %s\n\n", q.Name, q.Location)
	b.WriteString("Search the web for this business's official Facebook presence and select the best URL. ")
	b.WriteString("Restrict your answer to facebook.com URLs; if nothing credible exists, say 'Not found'.\n\n")
	b.WriteString(responseFormat)
	return b.String()
}
