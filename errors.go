package main

import "errors"

// Error taxonomy for the tracking core. None of these are fatal to a
// request; handlers map them to soft failures or sentinel responses.
var (
	// ErrInsufficientData means a product has fewer than two valid
	// (parseable) observations, so no features can be computed.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrPredictionUnavailable means the model was never successfully
	// trained, e.g. the training corpus had no qualifying rows.
	ErrPredictionUnavailable = errors.New("prediction model unavailable")

	// ErrNotFound covers missing products, users and watchlist members.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps persistent-store failures, the only
	// condition callers may treat as unrecoverable.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PredictionSentinel signals "no prediction" to API callers. It is
// outside the legitimate [0,100] score range so a 0% drop likelihood
// stays distinguishable from a missing one.
const PredictionSentinel = -1
