package infra

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryCounterStore_ConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	store := NewMemoryCounterStore()

	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Increment(context.Background(), "fr"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	counts, err := store.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["fr"] != n {
		t.Fatalf("expected %d after %d concurrent increments, got %d", n, n, counts["fr"])
	}
}

func TestMemoryCounterStore_ClearOne(t *testing.T) {
	store := NewMemoryCounterStore()

	for i := 0; i < 2; i++ {
		if _, err := store.Increment(context.Background(), "fr"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := store.ClearOne(context.Background(), "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Fatalf("expected removed=true")
	}

	counts, err := store.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := counts["fr"]; ok {
		t.Fatalf("expected fr key gone, got %v", counts)
	}

	removed, err = store.ClearOne(context.Background(), "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Fatalf("expected removed=false for absent key")
	}
}

func TestMemoryCounterStore_ClearAll(t *testing.T) {
	store := NewMemoryCounterStore()

	for _, code := range []string{"fr", "us", "br"} {
		if _, err := store.Increment(context.Background(), code); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	n, err := store.ClearAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 keys removed, got %d", n)
	}

	counts, err := store.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected empty store, got %v", counts)
	}
}
