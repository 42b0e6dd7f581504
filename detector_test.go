package main

import (
	"fmt"
	"testing"
)

func TestHistoryHasDrop(t *testing.T) {
	cases := []struct {
		raws []string
		want bool
	}{
		{[]string{"100", "90", "110"}, true},   // 100 -> 90 decreases
		{[]string{"100", "110", "120"}, false}, // strictly rising
		{[]string{"100", "100", "100"}, false}, // flat
		{[]string{"100"}, false},               // too short
		{[]string{"100", "N/A", "90"}, true},   // gap skipped, 100 -> 90
		{[]string{"N/A", "garbage"}, false},    // nothing valid
		{[]string{"120", "110"}, true},
	}

	for i, tc := range cases {
		if got := historyHasDrop(historyFromRaw(tc.raws...)); got != tc.want {
			t.Errorf("case %d (%v): got %v, want %v", i, tc.raws, got, tc.want)
		}
	}
}

func TestFindDrops(t *testing.T) {
	db := newTestDatabase(t)

	seedHistory := func(link string, raws []string) uint {
		var product *Product
		for i, raw := range raws {
			date := fmt.Sprintf("2026-08-%02d", i+1)
			p, err := db.RecordObservation(SourceAmazon, "Product "+link, "https://amazon.example/"+link, "", raw, date)
			if err != nil {
				t.Fatalf("failed to record observation: %v", err)
			}
			product = p
		}
		return product.ID
	}

	dropped := seedHistory("dropped", []string{"100", "90", "110"})
	rising := seedHistory("rising", []string{"100", "110", "120"})
	thin := seedHistory("thin", []string{"100"})

	drops, err := FindDrops(db, SourceAmazon)
	if err != nil {
		t.Fatalf("FindDrops failed: %v", err)
	}

	if !drops.Contains(dropped) {
		t.Errorf("expected product %d in drop set", dropped)
	}
	if drops.Contains(rising) {
		t.Errorf("did not expect rising product %d in drop set", rising)
	}
	if drops.Contains(thin) {
		t.Errorf("did not expect single-observation product %d in drop set", thin)
	}
}
