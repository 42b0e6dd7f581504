package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GORM models for the database

// Retail sources a product can be tracked on.
const (
	SourceAmazon   = "amazon"
	SourceFlipkart = "flipkart"
)

var allSources = []string{SourceAmazon, SourceFlipkart}

func isValidSource(source string) bool {
	for _, s := range allSources {
		if s == source {
			return true
		}
	}
	return false
}

// Product represents a tracked retail product, identified by its link
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Source    string    `gorm:"index:idx_products_source;not null" json:"source"`
	Name      string    `gorm:"not null" json:"name"`
	Link      string    `gorm:"uniqueIndex;not null" json:"link"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// PriceObservation is a single (product, date, price) data point.
// Price is nil when the scrape returned nothing parseable, which is
// distinct from a genuine zero price.
type PriceObservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index:idx_observations_product;not null" json:"productId"`
	Date      string    `gorm:"not null" json:"date"` // ISO date, e.g. 2026-08-31
	Raw       string    `json:"raw"`
	Price     *float64  `json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for PriceObservation
func (PriceObservation) TableName() string {
	return "price_observations"
}

// AddIndexes creates additional indexes after auto migration
func (p *PriceObservation) AddIndexes(db *gorm.DB) error {
	// One observation per (product, date); re-recording overwrites
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_product_date_unique ON price_observations(product_id, date)").Error; err != nil {
		return fmt.Errorf("failed to create unique index: %v", err)
	}
	return nil
}

// User represents a registered user, identified by lowercased email
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// WatchlistEntry records that a user tracks a product on a source.
// The unique (user, source, product) index gives the watchlist set
// semantics at the schema level: adds are insert-or-ignore, removes
// are plain deletes, so interleaved writers cannot lose each other's
// updates the way a read-then-overwrite JSON column would.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_watchlist_user;not null" json:"userId"`
	Source    string    `gorm:"not null" json:"source"`
	ProductID uint      `gorm:"not null" json:"productId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for WatchlistEntry
func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// AddIndexes creates additional indexes after auto migration
func (w *WatchlistEntry) AddIndexes(db *gorm.DB) error {
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_watchlist_member_unique ON watchlist_entries(user_id, source, product_id)").Error; err != nil {
		return fmt.Errorf("failed to create unique index: %v", err)
	}
	return nil
}

// Get all model types for auto migration
var allModels = []interface{}{
	&Product{},
	&PriceObservation{},
	&User{},
	&WatchlistEntry{},
}
