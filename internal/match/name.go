package match

import (
	"regexp"
	"strings"
)

// suffixPattern matches common business entity suffixes stripped before
// name comparison.
var suffixPattern = regexp.MustCompile(`(?i),?\s*(inc\.?|llc\.?|ltd\.?|co\.?|corp\.?|corporation|company|llp|lp|pllc|pc|p\.?c\.?)$`)

// punctPattern folds everything that is not a letter or digit to space.
var punctPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NameScore computes a similarity score in [0,1] between a business
// name and the candidate's slug, title, and snippet. Deterministic and
// tolerant of case, punctuation, word order, and missing spaces
// ("TennisClub" vs "Tennis Club"). Returns 0 when nothing overlaps.
func NameScore(businessName, slug, title, snippet string) float64 {
	name := tokenize(businessName)
	if len(name) == 0 {
		return 0
	}

	score := tokenSimilarity(name, tokenize(slug))
	if s := tokenSimilarity(name, tokenize(title)); s > score {
		score = s
	}

	// Snippet mention is weaker evidence than slug or title identity.
	if score < 0.5 && containsJoined(tokenize(snippet), name) {
		score = 0.5
	}

	return clamp01(score)
}

// tokenSimilarity compares two token lists by set overlap, containment,
// and an acronym heuristic.
func tokenSimilarity(name, text []string) float64 {
	if len(name) == 0 || len(text) == 0 {
		return 0
	}

	nameSet := toSet(name)
	textSet := toSet(text)

	overlap := 0
	for tok := range nameSet {
		if textSet[tok] {
			overlap++
		}
	}

	switch {
	case overlap == len(nameSet) && overlap == len(textSet):
		return 1.0
	case overlap == len(nameSet) || overlap == len(textSet):
		// One side fully contained in the other.
		return 0.9
	}

	larger := len(nameSet)
	if len(textSet) > larger {
		larger = len(textSet)
	}
	score := float64(overlap) / float64(larger)

	// Concatenated containment catches slugs written without
	// separators, where token overlap sees nothing.
	if containsJoined(text, name) || containsJoined(name, text) {
		joinedEqual := strings.Join(name, "") == strings.Join(text, "")
		if joinedEqual {
			return 1.0
		}
		if score < 0.9 {
			score = 0.9
		}
	}

	// Acronym bonus: "NYC" for "New York City".
	if overlap == 0 {
		if acronym(name) != "" && textSet[acronym(name)] {
			return 0.7
		}
		if acronym(text) != "" && nameSet[acronym(text)] {
			return 0.7
		}
	}

	return score
}

// containsJoined reports whether the space-free concatenation of
// haystack tokens contains the space-free concatenation of needle.
func containsJoined(haystack, needle []string) bool {
	if len(haystack) == 0 || len(needle) == 0 {
		return false
	}
	return strings.Contains(strings.Join(haystack, ""), strings.Join(needle, ""))
}

// acronym returns the initial letters of multi-token input, or "" for
// fewer than two tokens.
func acronym(tokens []string) string {
	if len(tokens) < 2 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte(tok[0])
	}
	return b.String()
}

// tokenize lowercases, strips entity suffixes and punctuation, and
// splits into tokens.
func tokenize(s string) []string {
	s = strings.TrimSpace(s)
	s = suffixPattern.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = punctPattern.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
