// Package match implements the rule-based candidate pipeline: URL
// categorization, name similarity, quality scoring, and ranking.
package match

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// badPathSegments are non-canonical sub-pages of a page or group. A URL
// pointing at one of these is still classifiable but is penalized.
var badPathSegments = map[string]bool{
	"about": true, "posts": true, "mentions": true, "reviews": true,
	"photos": true, "media": true, "reel": true, "videos": true,
	"events": true, "live_videos": true, "followers": true, "music": true,
	"map": true, "sports": true, "movies": true, "tv": true,
	"books": true, "likes": true, "reviews_given": true,
}

// personalSlugPattern matches vanity profile slugs shaped like personal
// names: lowercase words separated by dots, optionally ending in digits
// (e.g. "john.smith.123").
var personalSlugPattern = regexp.MustCompile(`^[a-z]+(\.[a-z]+)+(\.\d+)?$`)

// trailingIDPattern matches the numeric ID suffix on /p/ share-link
// slugs (e.g. "Tennis-Club-Le-Colline-61566371468729").
var trailingIDPattern = regexp.MustCompile(`[-_]\d{5,}$`)

// Classification is the outcome of categorizing one raw URL.
type Classification struct {
	URL      string // normalized
	Slug     string // identity slug, decoded, separators folded to spaces
	Category model.Category
	BadPath  bool
}

// Categorize normalizes a raw URL and classifies it by path shape.
// Malformed input never fails: it yields CategoryOther with no bad-path
// flag so that categorization cannot abort a batch.
func Categorize(raw string) Classification {
	other := Classification{URL: strings.TrimSpace(raw), Category: model.CategoryOther}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return other
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if !IsFacebookHost(u.Host) {
		other.URL = rebuild(u, "")
		return other
	}

	segments := splitPath(u.Path)
	if len(segments) == 0 {
		other.URL = rebuild(u, "")
		return other
	}

	var (
		category model.Category
		slug     string
		identity int // path segments that name the entity
	)

	switch {
	case strings.EqualFold(segments[0], "groups") && len(segments) >= 2:
		category = model.CategoryGroup
		slug = segments[1]
		identity = 2
	case segments[0] == "p" && len(segments) >= 2:
		category = model.CategoryPage
		slug = segments[1]
		identity = 2
	case strings.EqualFold(segments[0], "pages") && len(segments) >= 2:
		// Legacy shape: /pages/<Name>/<numeric id>.
		category = model.CategoryPage
		slug = segments[1]
		identity = len(segments)
		if len(segments) > 3 {
			identity = 3
		}
	case segments[0] == "profile.php":
		// Personal profile by numeric ID. The id parameter is the
		// identity, so it survives normalization.
		other.URL = rebuild(u, u.Query().Get("id"))
		return other
	default:
		slug = segments[0]
		identity = 1
		if personalSlugPattern.MatchString(segments[0]) {
			category = model.CategoryOther
		} else {
			category = model.CategoryPage
		}
	}

	badPath := false
	for _, seg := range segments[identity:] {
		if badPathSegments[strings.ToLower(seg)] {
			badPath = true
			break
		}
	}

	return Classification{
		URL:      rebuild(u, ""),
		Slug:     decodeSlug(slug),
		Category: category,
		BadPath:  badPath,
	}
}

// IsFacebookHost reports whether the host is facebook.com or one of its
// subdomains (www., m., web., locale prefixes).
func IsFacebookHost(host string) bool {
	host = strings.ToLower(host)
	return host == "facebook.com" || strings.HasSuffix(host, ".facebook.com")
}

// IsFacebookURL reports whether a raw URL points at facebook.com.
func IsFacebookURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return IsFacebookHost(u.Host)
}

// FilterFacebook keeps only results whose URL points at facebook.com.
func FilterFacebook(results []model.RawResult) []model.RawResult {
	var out []model.RawResult
	for _, r := range results {
		if IsFacebookURL(r.URL) {
			out = append(out, r)
		}
	}
	return out
}

// rebuild renders the URL with tracking query parameters stripped. Only
// a profile id survives, passed explicitly by the caller.
func rebuild(u *url.URL, profileID string) string {
	u.RawQuery = ""
	if profileID != "" {
		q := url.Values{}
		q.Set("id", profileID)
		u.RawQuery = q.Encode()
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// splitPath returns the non-empty path segments.
func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// decodeSlug turns a URL slug into comparable text: percent-decoding,
// separator folding, and trailing share-link ID removal.
func decodeSlug(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	slug = trailingIDPattern.ReplaceAllString(slug, "")
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")
	return strings.TrimSpace(slug)
}
