package relevance

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"postsync-curator/internal/model"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the normalized, hashed identity of a candidate, used to
// detect duplicates across batches and time windows.
type Fingerprint string

// NewFingerprint derives the fingerprint for a candidate from its normalized
// title and source URL. Same input always yields the same output. When the
// title normalizes to empty the URL alone identifies the candidate; when both
// are empty there is nothing to fingerprint and the candidate is invalid.
func NewFingerprint(c model.ContentCandidate) (Fingerprint, error) {
	title := normalizeTitle(c.Title)
	loc := normalizeURL(c.SourceURL)
	if title == "" && loc == "" {
		return "", &model.InvalidCandidateError{ID: c.ID, Reason: "no title or source_url to fingerprint"}
	}
	key := loc
	if title != "" {
		key = title + "\n" + loc
	}
	return Fingerprint(fmt.Sprintf("%016x", xxhash.Sum64String(key))), nil
}

// normalizeTitle lowercases, collapses internal whitespace, and strips
// leading/trailing whitespace and punctuation.
func normalizeTitle(title string) string {
	s := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// normalizeURL reduces a URL to lowercase host plus path, dropping the query
// string, fragment, and any trailing slash.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// not parseable as an absolute URL; fall back to the raw string
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	return strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
}
