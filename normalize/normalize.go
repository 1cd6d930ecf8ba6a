// Package normalize converts loose candidate text into typed canonical
// values. Every coercion fails soft: an unparseable value becomes zero with
// a warning, and normalization never aborts a batch.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"propsync/models"
)

const minYearBuilt = 1800

var (
	unitsRe      = regexp.MustCompile(`(?i)\b([\d,]+)[\s-]*units?\b`)
	yearAfterRe  = regexp.MustCompile(`(?i)\b(?:built|year)\b\D{0,40}?(\d{4})`)
	yearBeforeRe = regexp.MustCompile(`(?i)(\d{4})\D{0,40}?\b(?:built|year)\b`)
	priceRe      = regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d+)?)\s*(m\b|million)?`)
	sqftRe       = regexp.MustCompile(`(?i)\b([\d,]+)\s*(?:sq\.?\s?ft\.?|sf\b|square\s+feet)`)
)

// Normalize converts one RawCandidate into a canonical Property. The
// returned warnings describe fields that were present but unparseable; the
// corresponding Property fields hold their zero "unknown" value.
func Normalize(c models.RawCandidate) (models.Property, []string) {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	p := models.Property{
		Title:       strings.TrimSpace(c.Title),
		Description: strings.TrimSpace(c.Description),
		DetailURL:   strings.TrimSpace(c.Link),
		ImageURL:    strings.TrimSpace(c.ImageURL),
		Source:      c.SourceStrategy,
		ScrapedAt:   time.Now(),
	}

	p.Units = normalizeUnits(c, warn)
	p.YearBuilt = normalizeYearBuilt(c, time.Now().Year(), warn)
	p.PriceRaw, p.PriceCents = normalizePrice(c, warn)
	p.SquareFeet = normalizeSqFt(c, warn)
	p.Location = SplitLocation(c.Location)
	p.Status = normalizeStatus(c)

	p.Warnings = warnings
	return p, warnings
}

// normalizeUnits: dedicated field first (strip non-digits), then the
// "N unit(s)" / "N-unit" pattern against description, then title. First
// match wins; absence means 0.
func normalizeUnits(c models.RawCandidate, warn func(string, ...interface{})) int {
	if raw := strings.TrimSpace(c.Units); raw != "" {
		if digits := digitsJoined(raw); digits != "" {
			if n, err := strconv.Atoi(digits); err == nil && n >= 0 {
				return n
			}
		}
		warn("units: unparseable value %q", raw)
	}

	for _, text := range []string{c.Description, c.Title} {
		if m := unitsRe.FindStringSubmatch(text); m != nil {
			digits := strings.ReplaceAll(m[1], ",", "")
			if n, err := strconv.Atoi(digits); err == nil {
				return n
			}
		}
	}
	return 0
}

// normalizeYearBuilt accepts a 4-digit year near a "built"/"year" token,
// only within [1800, current year]. Out-of-range years are discarded as
// not-found, never clamped.
func normalizeYearBuilt(c models.RawCandidate, maxYear int, warn func(string, ...interface{})) int {
	if raw := strings.TrimSpace(c.YearBuilt); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			if y >= minYearBuilt && y <= maxYear {
				return y
			}
			warn("year_built: %d outside plausible range", y)
			return 0
		}
		if y := extractYearBuilt(raw, maxYear); y != 0 {
			return y
		}
		warn("year_built: unparseable value %q", raw)
	}

	for _, text := range []string{c.Description, c.Title} {
		if y := extractYearBuilt(text, maxYear); y != 0 {
			return y
		}
	}
	return 0
}

func extractYearBuilt(text string, maxYear int) int {
	for _, re := range []*regexp.Regexp{yearAfterRe, yearBeforeRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			y, err := strconv.Atoi(m[1])
			if err == nil && y >= minYearBuilt && y <= maxYear {
				return y
			}
		}
	}
	return 0
}

// normalizePrice keeps the literal matched text and computes best-effort
// cents from the digits alone. An "M"/"million" suffix stays in PriceRaw and
// is deliberately NOT multiplied out, since broker formatting is too
// inconsistent to trust.
func normalizePrice(c models.RawCandidate, warn func(string, ...interface{})) (string, int64) {
	for _, text := range []string{c.Price, c.Description, c.Title} {
		m := priceRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[0])
		num := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || v < 0 {
			warn("price: unparseable value %q", raw)
			return raw, 0
		}
		return raw, int64(v*100 + 0.5)
	}

	if raw := strings.TrimSpace(c.Price); raw != "" {
		warn("price: unparseable value %q", raw)
	}
	return "", 0
}

// normalizeSqFt: digits immediately preceding a square-footage token,
// commas stripped.
func normalizeSqFt(c models.RawCandidate, warn func(string, ...interface{})) int {
	if raw := strings.TrimSpace(c.SqFt); raw != "" {
		digits := strings.ReplaceAll(digitsJoined(raw), ",", "")
		if digits != "" {
			if n, err := strconv.Atoi(digits); err == nil {
				return n
			}
		}
		warn("sq_ft: unparseable value %q", raw)
	}

	for _, text := range []string{c.Description, c.Title} {
		if m := sqftRe.FindStringSubmatch(text); m != nil {
			digits := strings.ReplaceAll(m[1], ",", "")
			if n, err := strconv.Atoi(digits); err == nil {
				return n
			}
		}
	}
	return 0
}

// digitsJoined concatenates all digit runs, so "12,500" and "12,500 sqft"
// both become "12500".
func digitsJoined(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitLocation decomposes a raw location string on commas. The heuristic is
// deliberately forgiving: anything ambiguous degrades to raw-only with the
// structured fields left empty.
func SplitLocation(raw string) models.Location {
	loc := models.Location{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return loc
	}

	var segments []string
	for _, seg := range strings.Split(trimmed, ",") {
		if s := strings.TrimSpace(seg); s != "" {
			segments = append(segments, s)
		}
	}

	switch {
	case len(segments) >= 3:
		// "street, city, STATE ZIP"
		loc.City = segments[len(segments)-2]
		loc.State, loc.Zip = splitStateZip(segments[len(segments)-1])
	case len(segments) == 2:
		// "street, city STATE ZIP" — last two tokens are state/zip,
		// the rest of the segment is the city
		tokens := strings.Fields(segments[1])
		if len(tokens) >= 3 {
			loc.City = strings.Join(tokens[:len(tokens)-2], " ")
			loc.State = tokens[len(tokens)-2]
			loc.Zip = tokens[len(tokens)-1]
		} else if len(tokens) == 2 {
			loc.State = tokens[0]
			loc.Zip = tokens[1]
		}
	}

	return loc
}

func splitStateZip(segment string) (state, zip string) {
	tokens := strings.Fields(segment)
	switch {
	case len(tokens) == 1:
		return tokens[0], ""
	case len(tokens) >= 2:
		return tokens[len(tokens)-2], tokens[len(tokens)-1]
	}
	return "", ""
}

// normalizeStatus maps direct status text onto the closed enum; when the tag
// is missing or defaulted to Available, a free-text scan for sold/under
// contract overrides it.
func normalizeStatus(c models.RawCandidate) string {
	status := mapStatus(c.Status)
	if status == "" {
		status = models.StatusAvailable
	}

	if status == models.StatusAvailable {
		text := strings.ToLower(c.Description + " " + c.Title)
		switch {
		case strings.Contains(text, "under contract"):
			status = models.StatusUnderContract
		case strings.Contains(text, "sold"):
			status = models.StatusSold
		}
	}

	return status
}

func mapStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ""
	case "available", "active", "for sale":
		return models.StatusAvailable
	case "under contract", "pending", "contingent":
		return models.StatusUnderContract
	case "sold", "closed":
		return models.StatusSold
	default:
		return models.StatusUnknown
	}
}
