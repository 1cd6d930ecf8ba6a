// Package extract turns raw page content into loose listing candidates.
// Strategies are tried in fixed priority order; the first one that yields
// anything wins.
package extract

import (
	"log"

	"propsync/config"
	"propsync/models"
)

// Strategy is one extraction approach. ok=false (or an empty slice) means
// the strategy found nothing usable on this page. Absence of data is not an
// error; strategies never fail.
type Strategy interface {
	Name() string
	Extract(content string) ([]models.RawCandidate, bool)
}

// Chain runs strategies in priority order and short-circuits on the first
// non-empty result. Later strategies are fallbacks for when earlier ones
// produce nothing, not supplements.
type Chain struct {
	strategies []Strategy
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// DefaultChain builds the standard markup → embedded → links chain for one
// broker site. groups may be nil to use the built-in generic selectors.
func DefaultChain(groups []config.SelectorGroup) *Chain {
	return NewChain(
		NewMarkupStrategy(groups),
		NewEmbeddedStrategy(),
		NewLinkStrategy(),
	)
}

// Run returns the first strategy's non-empty output, or an empty slice when
// every strategy comes up dry. Callers treat zero candidates as a
// reportable, non-fatal outcome.
func (c *Chain) Run(content string) []models.RawCandidate {
	for _, s := range c.strategies {
		candidates, ok := s.Extract(content)
		if !ok || len(candidates) == 0 {
			continue
		}
		log.Printf("extract: strategy %s produced %d candidates", s.Name(), len(candidates))
		return candidates
	}
	return nil
}
