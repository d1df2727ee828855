package judge

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/match"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// ParseVerdict extracts a structured verdict from raw model output.
// Anything short of a well-formed facebook.com URL is an error; callers
// treat every parse error as ErrUnavailable.
func ParseVerdict(text string) (*Verdict, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		FacebookURL string  `json:"facebook_url"`
		Type        string  `json:"type"`
		Confidence  float64 `json:"confidence"`
		Reasoning   string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "judge: parse verdict JSON")
	}

	url := strings.TrimSpace(raw.FacebookURL)
	if url == "" || strings.EqualFold(url, "not found") || strings.EqualFold(url, "none") {
		return nil, eris.New("judge: verdict reports no URL")
	}
	if !match.IsFacebookURL(url) {
		return nil, eris.Errorf("judge: verdict URL %q is not a facebook.com URL", url)
	}

	return &Verdict{
		URL:        url,
		Type:       verdictCategory(raw.Type, url),
		Confidence: clampConfidence(raw.Confidence),
		Reasoning:  strings.TrimSpace(raw.Reasoning),
	}, nil
}

// verdictCategory trusts the model's type field when it names a known
// category and re-derives it from the URL otherwise.
func verdictCategory(typ, url string) model.Category {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case string(model.CategoryPage):
		return model.CategoryPage
	case string(model.CategoryGroup):
		return model.CategoryGroup
	case string(model.CategoryOther):
		return model.CategoryOther
	}
	return match.Categorize(url).Category
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
