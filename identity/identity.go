// Package identity computes stable record identities and removes duplicates
// before records reach the sync layer, which treats identity as a primary
// key. A duplicate surviving into the same batch would race against itself.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"propsync/models"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// Key returns the stable identity "domain:canonical" for a property.
// fallbackDomain (usually the broker website's host) is used when the
// property has no detail URL of its own.
func Key(p *models.Property, fallbackDomain string) string {
	return SourceDomain(p, fallbackDomain) + ":" + CanonicalID(p)
}

// CanonicalID is the last non-empty path segment of the detail URL when one
// exists, otherwise a hash of the normalized title and location.
func CanonicalID(p *models.Property) string {
	if seg := urlSlug(p.DetailURL); seg != "" {
		return seg
	}

	input := normalizeText(p.Title) + "|" + normalizeText(p.Location.Raw)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// SourceDomain is the detail URL's host when absolute, else fallbackDomain.
func SourceDomain(p *models.Property, fallbackDomain string) string {
	if p.DetailURL != "" {
		if u, err := url.Parse(p.DetailURL); err == nil && u.Host != "" {
			return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		}
	}
	return strings.TrimPrefix(strings.ToLower(fallbackDomain), "www.")
}

// Dedup assigns identities and keeps the first occurrence of each key,
// dropping later duplicates silently. Order of survivors matches input.
func Dedup(properties []models.Property, fallbackDomain string) []models.Property {
	seen := make(map[string]bool, len(properties))
	out := make([]models.Property, 0, len(properties))

	for _, p := range properties {
		key := Key(&p, fallbackDomain)
		if seen[key] {
			continue
		}
		seen[key] = true
		p.ID = key
		out = append(out, p)
	}

	return out
}

// urlSlug extracts the path segment preceding a trailing slash (or the last
// segment when there is none).
func urlSlug(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return multiSpaceRe.ReplaceAllString(s, " ")
}
