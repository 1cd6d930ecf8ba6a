package extract

import "testing"

func TestLinkStrategy_HarvestsListingAnchors(t *testing.T) {
	s := NewLinkStrategy()
	candidates, ok := s.Extract(loadFixture(t, "links_page.html"))
	if !ok {
		t.Fatalf("expected link strategy to match")
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Link != "/listings/oak-plaza" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.Title != "Oak Plaza" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.ImageURL != "/img/oak-plaza.jpg" {
		t.Fatalf("expected nearby image, got %q", first.ImageURL)
	}
	if first.SourceStrategy != "links" {
		t.Fatalf("unexpected strategy %q", first.SourceStrategy)
	}

	second := candidates[1]
	if second.Link != "/listings/504-pine" {
		t.Fatalf("unexpected link %q", second.Link)
	}
	if second.ImageURL != "" {
		t.Fatalf("expected no image, got %q", second.ImageURL)
	}
}

func TestLinkStrategy_SkipsStructuralAnchors(t *testing.T) {
	s := NewLinkStrategy()
	html := `<html><body>
		<a href="/search/listing?page=3">More listings</a>
		<a href="/contact">Contact</a>
	</body></html>`

	candidates, ok := s.Extract(html)
	if ok || len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d (ok=%v)", len(candidates), ok)
	}
}
