package infra

import (
	"context"
	"testing"
)

func TestStaticCountries_ByCode(t *testing.T) {
	s := NewStaticCountries()

	c, found, err := s.ByCode(context.Background(), "us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || c.Name != "United States" || c.Code != "US" {
		t.Fatalf("unexpected country: %+v found=%v", c, found)
	}

	_, found, err = s.ByCode(context.Background(), "zz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected zz to be unknown")
	}
}

func TestStaticCountries_AllSortedAndUnique(t *testing.T) {
	s := NewStaticCountries()

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) < 240 {
		t.Fatalf("expected full ISO table, got %d entries", len(all))
	}

	seen := make(map[string]bool, len(all))
	for i, c := range all {
		if len(c.Code) != 2 {
			t.Fatalf("bad code %q", c.Code)
		}
		if seen[c.Code] {
			t.Fatalf("duplicate code %q", c.Code)
		}
		seen[c.Code] = true
		if i > 0 && all[i-1].Code >= c.Code {
			t.Fatalf("table not sorted: %q before %q", all[i-1].Code, c.Code)
		}
	}
}
