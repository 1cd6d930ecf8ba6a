package extract

import (
	"os"
	"path/filepath"
	"testing"

	"propsync/config"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestMarkupStrategy_Cards(t *testing.T) {
	s := NewMarkupStrategy(nil)
	candidates, ok := s.Extract(loadFixture(t, "markup_cards.html"))
	if !ok {
		t.Fatalf("expected markup strategy to match")
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Maple Court Apartments" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Description != "A well maintained 24 units building near downtown." {
		t.Fatalf("unexpected description %q", first.Description)
	}
	if first.Location != "450 Maple Ave, Austin, TX 78701" {
		t.Fatalf("unexpected location %q", first.Location)
	}
	if first.Price != "$3,200,000" {
		t.Fatalf("unexpected price %q", first.Price)
	}
	if first.Link != "/properties/maple-court-apartments" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.ImageURL != "/img/maple-court.jpg" {
		t.Fatalf("unexpected image %q", first.ImageURL)
	}
	if first.Status != "Available" {
		t.Fatalf("expected default status Available, got %q", first.Status)
	}
	if first.SourceStrategy != "markup" {
		t.Fatalf("unexpected strategy %q", first.SourceStrategy)
	}

	second := candidates[1]
	if second.Title != "Cedar Ridge Complex" {
		t.Fatalf("unexpected title %q", second.Title)
	}
	if second.Price != "$5.4M" {
		t.Fatalf("unexpected price %q", second.Price)
	}
	if second.Status != "Under Contract" {
		t.Fatalf("unexpected status %q", second.Status)
	}
}

func TestMarkupStrategy_NoCards(t *testing.T) {
	s := NewMarkupStrategy(nil)
	candidates, ok := s.Extract("<html><body><p>Nothing to see.</p></body></html>")
	if ok || len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d (ok=%v)", len(candidates), ok)
	}
}

func TestMarkupStrategy_CustomGroups(t *testing.T) {
	groups := []config.SelectorGroup{
		{
			Card: "li.result",
			Fields: map[string]string{
				"title":    ".name",
				"location": ".addr",
			},
		},
	}
	s := NewMarkupStrategy(groups)

	html := `<ul>
		<li class="result"><span class="name">Dockside Warehouse</span><span class="addr">5 Wharf Rd, Portland, ME 04101</span></li>
	</ul>`
	candidates, ok := s.Extract(html)
	if !ok || len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d (ok=%v)", len(candidates), ok)
	}
	if candidates[0].Title != "Dockside Warehouse" {
		t.Fatalf("unexpected title %q", candidates[0].Title)
	}
	if candidates[0].Location != "5 Wharf Rd, Portland, ME 04101" {
		t.Fatalf("unexpected location %q", candidates[0].Location)
	}
}
