package domain

import "testing"

func TestCacheKeyIgnoresCaseAndWhitespace(t *testing.T) {
	base := Request{Destination: "Jaipur, India", Dates: "2025-12-10 to 2025-12-15", Budget: "50000", Mood: "adventure"}

	variants := []Request{
		{Destination: "  jaipur, india ", Dates: "2025-12-10 to 2025-12-15", Budget: "50000", Mood: "ADVENTURE"},
		{Destination: "JAIPUR, INDIA", Dates: " 2025-12-10 to 2025-12-15 ", Budget: "50000", Mood: " Adventure\t"},
		{Destination: "\tJaipur, India\n", Dates: "2025-12-10 to 2025-12-15", Budget: " 50000", Mood: "adventure"},
	}

	want := base.CacheKey()
	for i, v := range variants {
		if got := v.CacheKey(); got != want {
			t.Errorf("variant %d: CacheKey() = %q, want %q", i, got, want)
		}
	}
}

func TestCacheKeyFormat(t *testing.T) {
	r := Request{Destination: " Goa ", Dates: "", Budget: "1200", Mood: "Relax"}
	if got, want := r.CacheKey(), "goa||1200|relax"; got != want {
		t.Errorf("CacheKey() = %q, want %q", got, want)
	}
}

func TestCacheKeyDistinguishesRequests(t *testing.T) {
	a := Request{Destination: "Goa", Dates: "", Budget: "1200", Mood: "relax"}
	b := Request{Destination: "Goa", Dates: "", Budget: "1300", Mood: "relax"}
	c := Request{Destination: "Goa", Dates: "2025-01-01 to 2025-01-02", Budget: "1200", Mood: "relax"}

	if a.CacheKey() == b.CacheKey() {
		t.Error("different budgets should produce different keys")
	}
	if a.CacheKey() == c.CacheKey() {
		t.Error("different dates should produce different keys")
	}
}

func TestNormalize(t *testing.T) {
	r := Request{Destination: "  Lisbon ", Dates: " 2025-05-01 to 2025-05-03 ", Budget: " 900 ", Mood: "  "}
	n := r.Normalize()

	if n.Destination != "Lisbon" {
		t.Errorf("Destination = %q, want %q", n.Destination, "Lisbon")
	}
	if n.Dates != "2025-05-01 to 2025-05-03" {
		t.Errorf("Dates = %q", n.Dates)
	}
	if n.Budget != "900" {
		t.Errorf("Budget = %q, want %q", n.Budget, "900")
	}
	if n.Mood != DefaultMood {
		t.Errorf("Mood = %q, want %q", n.Mood, DefaultMood)
	}
	if r.Destination != "  Lisbon " {
		t.Error("Normalize must not modify the receiver")
	}
}
