package extract

import (
	"testing"

	"propsync/models"
)

// stubStrategy is a canned strategy that records whether it ran.
type stubStrategy struct {
	name   string
	result []models.RawCandidate
	called bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(content string) ([]models.RawCandidate, bool) {
	s.called = true
	return s.result, len(s.result) > 0
}

func TestChain_ShortCircuitsOnFirstHit(t *testing.T) {
	first := &stubStrategy{name: "first", result: []models.RawCandidate{{Title: "A"}}}
	second := &stubStrategy{name: "second", result: []models.RawCandidate{{Title: "B"}}}

	candidates := NewChain(first, second).Run("<html></html>")
	if len(candidates) != 1 || candidates[0].Title != "A" {
		t.Fatalf("expected first strategy's candidate, got %+v", candidates)
	}
	if second.called {
		t.Fatalf("second strategy should not run after a hit")
	}
}

func TestChain_FallsThroughOnMiss(t *testing.T) {
	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second", result: []models.RawCandidate{{Title: "B"}}}

	candidates := NewChain(first, second).Run("<html></html>")
	if len(candidates) != 1 || candidates[0].Title != "B" {
		t.Fatalf("expected fallback candidate, got %+v", candidates)
	}
	if !first.called {
		t.Fatalf("first strategy should have been tried")
	}
}

func TestChain_AllMiss(t *testing.T) {
	first := &stubStrategy{name: "first"}
	second := &stubStrategy{name: "second"}

	candidates := NewChain(first, second).Run("<html></html>")
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestDefaultChain_BareJSONFallsThroughToEmbedded(t *testing.T) {
	content := `[{"name": "Cedar Ridge Apartments", "address": "900 Cedar Rd, Dallas, TX 75201"}]`

	candidates := DefaultChain(nil).Run(content)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate from raw JSON input, got %d", len(candidates))
	}
	if candidates[0].Title != "Cedar Ridge Apartments" {
		t.Fatalf("unexpected title %q", candidates[0].Title)
	}
	if candidates[0].SourceStrategy != models.StrategyEmbedded {
		t.Fatalf("expected embedded strategy, got %q", candidates[0].SourceStrategy)
	}
}

func TestDefaultChain_OrderIsMarkupEmbeddedLinks(t *testing.T) {
	// A page with both card markup and embedded JSON must resolve through
	// the markup strategy alone.
	html := `<html><head>
		<script type="application/ld+json">[{"name": "Shadow Listing", "address": "1 Nowhere Ln"}]</script>
	</head><body>
		<div class="property-card">
			<h2 class="property-title">Visible Property</h2>
			<div class="property-location">2 Somewhere Ave, Denver, CO 80202</div>
		</div>
	</body></html>`

	candidates := DefaultChain(nil).Run(html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "Visible Property" {
		t.Fatalf("unexpected title %q", candidates[0].Title)
	}
	if candidates[0].SourceStrategy != models.StrategyMarkup {
		t.Fatalf("expected markup strategy, got %q", candidates[0].SourceStrategy)
	}
}
