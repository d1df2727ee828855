package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameScore(t *testing.T) {
	tests := []struct {
		name     string
		business string
		slug     string
		title    string
		snippet  string
		want     float64
	}{
		{
			name:     "exact slug match",
			business: "Starbucks Coffee",
			slug:     "starbucks coffee",
			want:     1.0,
		},
		{
			name:     "exact title match different case",
			business: "STARBUCKS COFFEE!",
			title:    "Starbucks Coffee",
			want:     1.0,
		},
		{
			name:     "word order independent",
			business: "Coffee Starbucks",
			title:    "Starbucks Coffee",
			want:     1.0,
		},
		{
			name:     "business suffix stripped",
			business: "Starbucks Coffee, Inc.",
			slug:     "starbucks coffee",
			want:     1.0,
		},
		{
			name:     "camelcase slug with no separators",
			business: "Riviera Country Club",
			slug:     "RivieraCountryClub",
			want:     1.0,
		},
		{
			name:     "name contained in longer title",
			business: "Starbucks",
			title:    "Starbucks Coffee Company - Official Page",
			want:     0.9,
		},
		{
			name:     "acronym in slug",
			business: "New York City Tennis",
			slug:     "nyct",
			want:     0.7,
		},
		{
			name:     "snippet mention only",
			business: "Tennis Club Ovada",
			snippet:  "Welcome to the Tennis Club Ovada community",
			want:     0.5,
		},
		{
			name:     "no overlap",
			business: "Starbucks Coffee",
			slug:     "miami plumbing",
			title:    "Miami Plumbing Experts",
			want:     0.0,
		},
		{
			name:     "empty business name",
			business: "",
			slug:     "starbucks coffee",
			want:     0.0,
		},
		{
			name:     "all inputs empty",
			business: "Starbucks",
			want:     0.0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NameScore(tc.business, tc.slug, tc.title, tc.snippet)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestNameScoreCaseAndPunctuationSymmetry(t *testing.T) {
	a := NameScore("Starbucks Coffee", "starbucks-coffee", "", "")
	b := NameScore("STARBUCKS COFFEE!", "", "Starbucks Coffee", "")
	assert.InDelta(t, a, b, 1e-9)
}

func TestNameScorePartialOverlap(t *testing.T) {
	// Two of three tokens overlap; score is proportional, not zero.
	got := NameScore("Riviera Country Club", "riviera club", "", "")
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestNameScoreRange(t *testing.T) {
	inputs := [][4]string{
		{"A B C D E F", "a", "b c", "d"},
		{"Café München", "cafe munchen", "", ""},
		{"X", "x", "x", "x"},
	}
	for _, in := range inputs {
		got := NameScore(in[0], in[1], in[2], in[3])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"ABC Construction, Inc.", []string{"abc", "construction"}},
		{"Starbucks-Coffee", []string{"starbucks", "coffee"}},
		{"  Spaces, LLC ", []string{"spaces"}},
		{"", nil},
	}
	for _, tc := range tests {
		got := tokenize(tc.input)
		assert.Equal(t, tc.want, got, "tokenize(%q)", tc.input)
	}
}
