// Package pipeline wires extraction, normalization, deduplication and the
// dual-store sync into one call per page.
package pipeline

import (
	"context"
	"log"
	"net/url"
	"strings"

	"propsync/extract"
	"propsync/identity"
	"propsync/models"
	"propsync/normalize"
	"propsync/syncer"
)

// Pipeline processes one broker site's fetched pages. Safe for concurrent
// use; stats aggregation is internally synchronized.
type Pipeline struct {
	chain  *extract.Chain
	engine *syncer.Engine
	stats  Stats
}

func New(chain *extract.Chain, engine *syncer.Engine) *Pipeline {
	return &Pipeline{chain: chain, engine: engine}
}

// ProcessPage runs the full chain → normalize → dedup → sync sequence for
// one page of raw content. Zero extracted candidates yields an empty report,
// not an error; only store unavailability fails the call.
func (p *Pipeline) ProcessPage(ctx context.Context, content string, broker models.BrokerMeta) (*models.SyncReport, error) {
	candidates := p.chain.Run(content)
	if len(candidates) == 0 {
		log.Printf("pipeline: no candidates extracted for %s", broker.Name)
		p.stats.record(0, 0, &models.SyncReport{})
		return &models.SyncReport{}, nil
	}

	properties := make([]models.Property, 0, len(candidates))
	for _, c := range candidates {
		prop, warnings := normalize.Normalize(c)
		for _, w := range warnings {
			log.Printf("pipeline: %s: normalize warning: %s", broker.Name, w)
		}
		properties = append(properties, prop)
	}

	properties = identity.Dedup(properties, hostOf(broker.Website))

	report, err := p.engine.Sync(ctx, properties, broker)
	if err != nil {
		p.stats.recordFatal(len(candidates))
		return nil, err
	}

	p.stats.record(len(candidates), len(candidates)-len(properties), report)
	return report, nil
}

// Stats returns a snapshot of aggregate counters across processed pages.
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.snapshot()
}

// ResetStats clears the aggregate counters, typically at run boundaries.
func (p *Pipeline) ResetStats() {
	p.stats.reset()
}

func hostOf(website string) string {
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(website)
	}
	return u.Host
}
