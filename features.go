package main

import "math"

// PriceFeatures is the two-feature summary of a product's price history
// used as the regression input.
type PriceFeatures struct {
	Std         float64 `json:"priceStd"`    // population standard deviation
	ChangeRatio float64 `json:"priceChange"` // (max - min) / max
}

// minValidObservations is the smallest history that yields features.
const minValidObservations = 2

// dropThreshold is the relative spread above which the training label
// counts a history as a price-drop candidate.
const dropThreshold = 0.05

// ExtractFeatures computes the feature vector from a product's history.
// Unparseable observations are excluded before the minimum-count check.
// Returns ErrInsufficientData with fewer than two valid observations.
func ExtractFeatures(history []PriceObservation) (PriceFeatures, error) {
	return featuresFromPrices(validPrices(history))
}

func featuresFromPrices(prices []float64) (PriceFeatures, error) {
	if len(prices) < minValidObservations {
		return PriceFeatures{}, ErrInsufficientData
	}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	// Population variance: divide by N, matching how features were
	// derived when the model's training corpus was built.
	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))

	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	ratio := 0.0
	if max > 0 {
		ratio = (max - min) / max
	}

	return PriceFeatures{
		Std:         math.Sqrt(variance),
		ChangeRatio: ratio,
	}, nil
}

// dropLabel derives the regression target for training: the percentage
// spread when it exceeds the drop threshold, otherwise zero.
func dropLabel(f PriceFeatures) float64 {
	if f.ChangeRatio > dropThreshold {
		return f.ChangeRatio * 100
	}
	return 0
}
