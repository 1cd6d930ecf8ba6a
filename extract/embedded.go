package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"propsync/models"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	// JS variable assignments holding object/array literals, e.g.
	// "var listings = [{...}];" or "window.__DATA__ = {...};"
	jsAssignRe = regexp.MustCompile(`(?:var|let|const|window\.\w+|\w+)\s*=\s*([\[{])`)
)

// fieldAliases maps each canonical candidate field to the loose JSON keys
// broker sites use for it, in try order. New aliases are additive here.
var fieldAliases = []struct {
	field string
	keys  []string
}{
	{"title", []string{"title", "name", "propertyName", "listingTitle", "property_name"}},
	{"description", []string{"description", "summary", "remarks", "details", "publicRemarks"}},
	{"link", []string{"link", "url", "detailUrl", "href", "permalink", "detail_url"}},
	{"location", []string{"location", "address", "propertyAddress", "fullAddress", "full_address"}},
	{"units", []string{"units", "numberOfUnits", "unitCount", "unit_count", "totalUnits"}},
	{"price", []string{"price", "listPrice", "askingPrice", "list_price", "asking_price"}},
	{"sq_ft", []string{"sq_ft", "sqft", "squareFeet", "square_feet", "buildingSize", "building_size"}},
	{"year_built", []string{"year_built", "yearBuilt", "built", "yearConstructed", "constructionYear"}},
	{"status", []string{"status", "listingStatus", "availability", "listing_status"}},
	{"image_url", []string{"image_url", "image", "imageUrl", "photo", "thumbnail", "photoUrl"}},
}

// identityKeys: an object counts as a candidate only if it carries at least
// one of these.
var identityKeys = []string{"name", "title", "address", "location"}

// EmbeddedStrategy harvests candidates from JSON embedded in script tags,
// either as plain JSON blocks (JSON-LD and friends) or as JS variable
// assignments found via bracket matching.
type EmbeddedStrategy struct{}

func NewEmbeddedStrategy() *EmbeddedStrategy { return &EmbeddedStrategy{} }

func (s *EmbeddedStrategy) Name() string { return models.StrategyEmbedded }

func (s *EmbeddedStrategy) Extract(content string) ([]models.RawCandidate, bool) {
	var candidates []models.RawCandidate

	// The page itself may be a bare JSON document (API responses saved to
	// disk) rather than HTML wrapping script tags.
	if parsed := parseJSONValue(content); parsed != nil {
		candidates = collectCandidates(parsed)
		return candidates, len(candidates) > 0
	}

	for _, m := range scriptBlockRe.FindAllStringSubmatch(content, -1) {
		block := strings.TrimSpace(m[1])
		if block == "" {
			continue
		}
		lower := strings.ToLower(block)
		if !strings.Contains(lower, "property") && !strings.Contains(lower, "listing") {
			continue
		}

		// Strict parse first: the whole block is a JSON value
		if parsed := parseJSONValue(block); parsed != nil {
			candidates = append(candidates, collectCandidates(parsed)...)
			continue
		}

		// Fallback: bracket-match literals out of JS assignments
		for _, loc := range jsAssignRe.FindAllStringSubmatchIndex(block, -1) {
			start := loc[2] // position of the opening bracket
			literal, ok := matchBrackets(block[start:])
			if !ok {
				continue
			}
			if parsed := parseJSONValue(literal); parsed != nil {
				candidates = append(candidates, collectCandidates(parsed)...)
			}
		}
	}

	return candidates, len(candidates) > 0
}

func parseJSONValue(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}

// collectCandidates walks a decoded JSON value: a qualifying object becomes
// one candidate, an array of them fans out.
func collectCandidates(v interface{}) []models.RawCandidate {
	switch val := v.(type) {
	case map[string]interface{}:
		if c, ok := objectToCandidate(val); ok {
			return []models.RawCandidate{c}
		}
	case []interface{}:
		var out []models.RawCandidate
		for _, item := range val {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if c, ok := objectToCandidate(obj); ok {
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

func objectToCandidate(obj map[string]interface{}) (models.RawCandidate, bool) {
	// Case-insensitive key index
	keys := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		keys[strings.ToLower(k)] = v
	}

	hasIdentity := false
	for _, k := range identityKeys {
		if _, ok := keys[k]; ok {
			hasIdentity = true
			break
		}
	}
	if !hasIdentity {
		return models.RawCandidate{}, false
	}

	c := models.RawCandidate{SourceStrategy: models.StrategyEmbedded}
	for _, alias := range fieldAliases {
		for _, key := range alias.keys {
			if v, ok := keys[strings.ToLower(key)]; ok {
				if s := stringify(v); s != "" {
					c.Set(alias.field, s)
					break
				}
			}
		}
	}

	return c, !c.Empty()
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

// matchBrackets returns the balanced object/array literal starting at s[0],
// skipping brackets inside string literals.
func matchBrackets(s string) (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	open := s[0]
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
