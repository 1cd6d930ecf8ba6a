package extract

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propsync/config"
	"propsync/models"
)

// defaultGroups covers the card markup seen across most broker sites. Used
// when a site config supplies no selector groups of its own.
var defaultGroups = []config.SelectorGroup{
	{
		Card: ".property-card",
		Fields: map[string]string{
			"title":       ".property-title, .title, h2, h3",
			"description": ".property-description, .description, p",
			"location":    ".property-location, .location, .address",
			"price":       ".property-price, .price",
			"units":       ".property-units, .units",
			"sq_ft":       ".property-sqft, .sqft",
			"status":      ".property-status, .status",
		},
	},
	{
		Card: ".listing-card, .listing, article.property",
		Fields: map[string]string{
			"title":       "h2, h3, .title",
			"description": ".description, .summary, p",
			"location":    ".location, .address",
			"price":       ".price",
			"status":      ".status",
		},
	},
}

// MarkupStrategy extracts candidates from structured card markup. Selector
// groups are tried in order; the first group whose card selector matches at
// least one element is used for the whole page.
type MarkupStrategy struct {
	groups []config.SelectorGroup
}

func NewMarkupStrategy(groups []config.SelectorGroup) *MarkupStrategy {
	if len(groups) == 0 {
		groups = defaultGroups
	}
	return &MarkupStrategy{groups: groups}
}

func (s *MarkupStrategy) Name() string { return models.StrategyMarkup }

func (s *MarkupStrategy) Extract(content string) ([]models.RawCandidate, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// Unparseable content is a miss, not a failure
		log.Printf("markup: unparseable content: %v", err)
		return nil, false
	}

	for _, group := range s.groups {
		cards := doc.Find(group.Card)
		if cards.Length() == 0 {
			continue
		}

		var candidates []models.RawCandidate
		cards.Each(func(_ int, card *goquery.Selection) {
			c := s.extractCard(card, group)
			if !c.Empty() {
				candidates = append(candidates, c)
			}
		})

		if len(candidates) > 0 {
			return candidates, true
		}
	}

	return nil, false
}

// extractCard pulls each configured field from one card element. A missing
// or broken sub-selector yields a partial candidate, never an abort.
func (s *MarkupStrategy) extractCard(card *goquery.Selection, group config.SelectorGroup) models.RawCandidate {
	c := models.RawCandidate{SourceStrategy: models.StrategyMarkup}

	for field, selector := range group.Fields {
		if selector == "" {
			continue
		}
		text := strings.TrimSpace(card.Find(selector).First().Text())
		if text != "" {
			c.Set(field, text)
		}
	}

	if c.Link == "" {
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			c.Link = strings.TrimSpace(href)
		}
	}
	if c.ImageURL == "" {
		if src, ok := card.Find("img[src]").First().Attr("src"); ok {
			c.ImageURL = strings.TrimSpace(src)
		}
	}
	if c.Status == "" {
		c.Status = "Available"
	}

	return c
}
