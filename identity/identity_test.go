package identity

import (
	"strings"
	"testing"

	"propsync/models"
)

func TestCanonicalID_FromURLSlug(t *testing.T) {
	p := &models.Property{
		Title:     "Maple Court",
		DetailURL: "https://www.example.com/listings/maple-court-apartments",
	}
	if got := CanonicalID(p); got != "maple-court-apartments" {
		t.Fatalf("unexpected canonical id %q", got)
	}

	// Trailing slash doesn't change the slug
	p.DetailURL = "https://www.example.com/listings/maple-court-apartments/"
	if got := CanonicalID(p); got != "maple-court-apartments" {
		t.Fatalf("unexpected canonical id with trailing slash %q", got)
	}
}

func TestCanonicalID_HashFallback(t *testing.T) {
	a := &models.Property{
		Title:    "Maple Court Apartments",
		Location: models.Location{Raw: "450 Maple Ave, Austin, TX"},
	}
	b := &models.Property{
		Title:    "  maple   court APARTMENTS ",
		Location: models.Location{Raw: "450 maple ave, austin, tx"},
	}

	idA, idB := CanonicalID(a), CanonicalID(b)
	if idA == "" || idA != idB {
		t.Fatalf("expected whitespace/case variants to collapse: %q vs %q", idA, idB)
	}
	if len(idA) != 32 {
		t.Fatalf("expected 16-byte hex hash, got %q", idA)
	}

	c := &models.Property{
		Title:    "Cedar Ridge Complex",
		Location: models.Location{Raw: "900 Cedar Rd, Dallas, TX"},
	}
	if CanonicalID(c) == idA {
		t.Fatalf("distinct properties must not share an id")
	}
}

func TestSourceDomain(t *testing.T) {
	p := &models.Property{DetailURL: "https://WWW.Example.com/listings/x"}
	if got := SourceDomain(p, "fallback.com"); got != "example.com" {
		t.Fatalf("unexpected domain %q", got)
	}

	// Relative detail URL falls back to the broker's domain
	p = &models.Property{DetailURL: "/listings/x"}
	if got := SourceDomain(p, "www.Broker.com"); got != "broker.com" {
		t.Fatalf("unexpected fallback domain %q", got)
	}

	p = &models.Property{}
	if got := SourceDomain(p, "broker.com"); got != "broker.com" {
		t.Fatalf("unexpected fallback domain %q", got)
	}
}

func TestDedup(t *testing.T) {
	batch := []models.Property{
		{Title: "First", DetailURL: "https://example.com/listings/oak-plaza"},
		{Title: "Second", DetailURL: "https://example.com/listings/pine-row"},
		{Title: "First again", DetailURL: "https://example.com/listings/oak-plaza"},
	}

	out := Dedup(batch, "example.com")
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0].Title != "First" || out[1].Title != "Second" {
		t.Fatalf("expected first occurrence kept in order, got %+v", out)
	}
	for _, p := range out {
		if p.ID == "" || !strings.HasPrefix(p.ID, "example.com:") {
			t.Fatalf("expected assigned id with domain prefix, got %q", p.ID)
		}
	}
	if out[0].ID != "example.com:oak-plaza" {
		t.Fatalf("unexpected id %q", out[0].ID)
	}
}

func TestDedup_HashVariantsCollapse(t *testing.T) {
	batch := []models.Property{
		{Title: "Maple Court", Location: models.Location{Raw: "450 Maple Ave"}},
		{Title: " maple  COURT ", Location: models.Location{Raw: "450 maple ave"}},
	}

	out := Dedup(batch, "broker.com")
	if len(out) != 1 {
		t.Fatalf("expected variants to collapse to 1, got %d", len(out))
	}
	if out[0].Title != "Maple Court" {
		t.Fatalf("expected first occurrence kept, got %q", out[0].Title)
	}
}
