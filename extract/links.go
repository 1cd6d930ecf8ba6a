package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propsync/models"
)

// maxImageAncestors bounds how far up the tree the strategy looks for a
// sibling image around a matched anchor.
const maxImageAncestors = 3

var listingKeywords = []string{"property", "listing", "apartment", "unit", "view", "details"}

// structuralKeywords mark anchors that are navigation, not listings.
var structuralKeywords = []string{
	"search", "browse", "contact", "page", "pagination",
	"login", "signup", "about", "privacy", "terms",
}

// LinkStrategy is the last-resort harvester: any anchor that looks like a
// listing link becomes a minimal candidate.
type LinkStrategy struct{}

func NewLinkStrategy() *LinkStrategy { return &LinkStrategy{} }

func (s *LinkStrategy) Name() string { return models.StrategyLinks }

func (s *LinkStrategy) Extract(content string) ([]models.RawCandidate, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, false
	}

	var candidates []models.RawCandidate
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		text := strings.TrimSpace(a.Text())

		if href == "" || seen[href] {
			return
		}
		if !looksLikeListing(href, text) || looksStructural(href) {
			return
		}
		seen[href] = true

		c := models.RawCandidate{
			Title:          text,
			Link:           href,
			ImageURL:       nearbyImage(a),
			SourceStrategy: models.StrategyLinks,
		}
		if !c.Empty() {
			candidates = append(candidates, c)
		}
	})

	return candidates, len(candidates) > 0
}

func looksLikeListing(href, text string) bool {
	h := strings.ToLower(href)
	t := strings.ToLower(text)
	for _, kw := range listingKeywords {
		if strings.Contains(h, kw) || strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func looksStructural(href string) bool {
	h := strings.ToLower(href)
	for _, kw := range structuralKeywords {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

// nearbyImage climbs the anchor's ancestors looking for the closest image.
func nearbyImage(a *goquery.Selection) string {
	if src, ok := a.Find("img[src]").First().Attr("src"); ok {
		return strings.TrimSpace(src)
	}

	node := a
	for i := 0; i < maxImageAncestors; i++ {
		node = node.Parent()
		if node.Length() == 0 {
			break
		}
		if src, ok := node.Find("img[src]").First().Attr("src"); ok {
			return strings.TrimSpace(src)
		}
	}
	return ""
}
