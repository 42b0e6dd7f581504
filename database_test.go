package main

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordObservationOverwritesSameDate(t *testing.T) {
	db := newTestDatabase(t)

	product, err := db.RecordObservation(SourceAmazon, "Widget", "https://amazon.example/widget", "", "₹1,000", "2026-08-30")
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if _, err := db.RecordObservation(SourceAmazon, "Widget", "https://amazon.example/widget", "", "₹900", "2026-08-30"); err != nil {
		t.Fatalf("second record failed: %v", err)
	}

	history, err := db.GetHistory(product.ID)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 (overwrite, not duplicate)", len(history))
	}
	if history[0].Price == nil || *history[0].Price != 900 {
		t.Errorf("price = %v, want 900", history[0].Price)
	}
}

func TestGetHistoryOrderedByDate(t *testing.T) {
	db := newTestDatabase(t)

	link := "https://amazon.example/ordered"
	dates := []string{"2026-08-03", "2026-08-01", "2026-08-02"}
	for _, date := range dates {
		if _, err := db.RecordObservation(SourceAmazon, "Ordered", link, "", "100", date); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	product, err := db.GetProductByLink(link)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	history, err := db.GetHistory(product.ID)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}

	want := []string{"2026-08-01", "2026-08-02", "2026-08-03"}
	for i, obs := range history {
		if obs.Date != want[i] {
			t.Errorf("history[%d].Date = %s, want %s", i, obs.Date, want[i])
		}
	}
}

func TestRecordObservationUnparseablePriceIsAbsent(t *testing.T) {
	db := newTestDatabase(t)

	product, err := db.RecordObservation(SourceFlipkart, "Gadget", "https://flipkart.example/gadget", "", "N/A", "2026-08-30")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	history, err := db.GetHistory(product.ID)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Price != nil {
		t.Errorf("price = %v, want nil (absent, not zero)", *history[0].Price)
	}
}

func TestWatchlistAddIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)

	user, err := db.CreateUser("alice@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	product, err := db.RecordObservation(SourceAmazon, "Widget", "https://amazon.example/w1", "", "100", "2026-08-30")
	if err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.AddWatch(user.ID, SourceAmazon, product.ID); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}

	watched, err := db.Watchlist(user.ID, SourceAmazon)
	if err != nil {
		t.Fatalf("failed to read watchlist: %v", err)
	}
	if len(watched) != 1 {
		t.Errorf("watchlist length = %d, want 1", len(watched))
	}
}

func TestWatchlistRemoveAbsentMember(t *testing.T) {
	db := newTestDatabase(t)

	user, err := db.CreateUser("bob@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	err = db.RemoveWatch(user.ID, SourceFlipkart, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}

	// State untouched
	watched, err := db.Watchlist(user.ID, SourceFlipkart)
	if err != nil {
		t.Fatalf("failed to read watchlist: %v", err)
	}
	if len(watched) != 0 {
		t.Errorf("watchlist length = %d, want 0", len(watched))
	}
}

func TestWatchlistConcurrentAddRemove(t *testing.T) {
	db := newTestDatabase(t)

	user, err := db.CreateUser("carol@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	product, err := db.RecordObservation(SourceAmazon, "Widget", "https://amazon.example/w2", "", "100", "2026-08-30")
	if err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	// Interleaved adds and removes of the same member must never leave
	// the list with a duplicate, whatever the final outcome is.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = db.AddWatch(user.ID, SourceAmazon, product.ID)
		}()
		go func() {
			defer wg.Done()
			_ = db.RemoveWatch(user.ID, SourceAmazon, product.ID)
		}()
	}
	wg.Wait()

	watched, err := db.Watchlist(user.ID, SourceAmazon)
	if err != nil {
		t.Fatalf("failed to read watchlist: %v", err)
	}
	if len(watched) > 1 {
		t.Errorf("watchlist length = %d, membership duplicated", len(watched))
	}
}

func TestTrainingCorpusSkipsThinHistories(t *testing.T) {
	db := newTestDatabase(t)

	if _, err := db.RecordObservation(SourceAmazon, "Thin", "https://amazon.example/thin", "", "100", "2026-08-01"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	for i, raw := range []string{"100", "80", "120"} {
		date := []string{"2026-08-01", "2026-08-02", "2026-08-03"}[i]
		if _, err := db.RecordObservation(SourceAmazon, "Full", "https://amazon.example/full", "", raw, date); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	samples, err := db.TrainingCorpus()
	if err != nil {
		t.Fatalf("TrainingCorpus failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("corpus size = %d, want 1 (thin product excluded)", len(samples))
	}
	// (max-min)/max = 40/120 > 0.05, so the label is the percentage spread
	if samples[0].Label <= 0 {
		t.Errorf("label = %v, want > 0", samples[0].Label)
	}
}
