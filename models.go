package main

// API request/response models

type ObserveRequest struct {
	Source string `json:"source" binding:"required"`
	Link   string `json:"link" binding:"required"`
}

// SuppliedObservationRequest carries an observation produced by an
// external collaborator. Price text may be empty or unparseable; it is
// recorded as absent, never rejected.
type SuppliedObservationRequest struct {
	Source string `json:"source" binding:"required"`
	Link   string `json:"link" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Price  string `json:"price"`
	Date   string `json:"date,omitempty"` // ISO date, defaults to today
}

// DiscoverRequest asks for a product to be found on Flipkart by name
// and observed.
type DiscoverRequest struct {
	Name string `json:"name" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type WatchlistRequest struct {
	Email     string `json:"email" binding:"required"`
	Source    string `json:"source" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
}

type PredictionResponse struct {
	ProductID  uint   `json:"productId"`
	Name       string `json:"name"`
	Prediction int    `json:"prediction"`
	Note       string `json:"note,omitempty"`
}

type SweepResponse struct {
	Success           bool `json:"success"`
	NotificationsSent int  `json:"notificationsSent"`
}
