package main

import (
	"errors"
	"math"
	"testing"
)

func historyFromRaw(raws ...string) []PriceObservation {
	history := make([]PriceObservation, len(raws))
	for i, raw := range raws {
		history[i] = PriceObservation{
			Date:  "2026-08-01",
			Raw:   raw,
			Price: normalizedPrice(raw),
		}
	}
	return history
}

func TestExtractFeaturesInsufficientData(t *testing.T) {
	cases := [][]PriceObservation{
		nil,
		historyFromRaw(),
		historyFromRaw("100"),
		historyFromRaw("N/A", "N/A"),
		// Unparseable values are excluded before the minimum-count check
		historyFromRaw("100", "N/A", "garbage"),
	}

	for i, history := range cases {
		if _, err := ExtractFeatures(history); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("case %d: got err %v, want ErrInsufficientData", i, err)
		}
	}
}

func TestExtractFeaturesValues(t *testing.T) {
	features, err := ExtractFeatures(historyFromRaw("100", "80", "120"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Population std of [100, 80, 120]
	wantStd := math.Sqrt(800.0 / 3.0)
	if math.Abs(features.Std-wantStd) > 1e-9 {
		t.Errorf("Std = %v, want %v", features.Std, wantStd)
	}

	wantRatio := (120.0 - 80.0) / 120.0
	if math.Abs(features.ChangeRatio-wantRatio) > 1e-9 {
		t.Errorf("ChangeRatio = %v, want %v", features.ChangeRatio, wantRatio)
	}
}

func TestExtractFeaturesSkipsUnparseable(t *testing.T) {
	withNoise, err := ExtractFeatures(historyFromRaw("100", "N/A", "80", "", "120"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clean, err := ExtractFeatures(historyFromRaw("100", "80", "120"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withNoise != clean {
		t.Errorf("features with noise = %+v, want %+v", withNoise, clean)
	}
}

func TestFeaturesFromAllZeroPrices(t *testing.T) {
	// Pathological all-zero history: range ratio defined as 0, no
	// division by zero
	features, err := featuresFromPrices([]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if features.ChangeRatio != 0 {
		t.Errorf("ChangeRatio = %v, want 0", features.ChangeRatio)
	}
	if features.Std != 0 {
		t.Errorf("Std = %v, want 0", features.Std)
	}
}

func TestDropLabel(t *testing.T) {
	cases := []struct {
		ratio float64
		want  float64
	}{
		{0, 0},
		{0.05, 0},  // at the threshold, not above it
		{0.04, 0},
		{0.10, 10},
		{0.333333, 33.3333},
	}

	for _, tc := range cases {
		got := dropLabel(PriceFeatures{Std: 5, ChangeRatio: tc.ratio})
		if math.Abs(got-tc.want) > 1e-3 {
			t.Errorf("dropLabel(ratio=%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}
}
