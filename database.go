package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStoreUnavailable, err)
	}

	// Auto migrate tables
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("%w: failed to auto migrate: %v", ErrStoreUnavailable, err)
	}

	database := &Database{db: db}

	// Create additional indexes that are not covered by GORM tags
	if err := database.createAdditionalIndexes(); err != nil {
		return nil, fmt.Errorf("%w: failed to create additional indexes: %v", ErrStoreUnavailable, err)
	}

	return database, nil
}

// createAdditionalIndexes creates indexes that are not easily covered by GORM tags
func (d *Database) createAdditionalIndexes() error {
	if err := (&PriceObservation{}).AddIndexes(d.db); err != nil {
		return err
	}
	if err := (&WatchlistEntry{}).AddIndexes(d.db); err != nil {
		return err
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %v", err)
	}
	return sqlDB.Close()
}

// Price store operations

// RecordObservation appends a price point for the product identified by
// link, creating the product on first sight. Re-recording the same
// (product, date) overwrites rather than duplicating. The raw price
// text is normalized here; unparseable text is stored with a nil price.
func (d *Database) RecordObservation(source, name, link, imageURL, raw, date string) (*Product, error) {
	product := Product{
		Source:   source,
		Name:     name,
		Link:     link,
		ImageURL: imageURL,
	}
	result := d.db.Where("link = ?", link).FirstOrCreate(&product)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to upsert product: %v", result.Error)
	}

	obs := PriceObservation{
		ProductID: product.ID,
		Date:      date,
		Raw:       raw,
		Price:     normalizedPrice(raw),
	}
	result = d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"raw", "price", "updated_at"}),
	}).Create(&obs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to record observation: %v", result.Error)
	}

	return &product, nil
}

// GetHistory returns all observations for a product, ordered by date
// ascending. Pure read, safe to repeat.
func (d *Database) GetHistory(productID uint) ([]PriceObservation, error) {
	var history []PriceObservation
	result := d.db.Where("product_id = ?", productID).
		Order("date ASC").
		Find(&history)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query history: %v", result.Error)
	}
	return history, nil
}

func (d *Database) GetProduct(id uint) (*Product, error) {
	var product Product
	result := d.db.First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %v", result.Error)
	}
	return &product, nil
}

func (d *Database) GetProductByLink(link string) (*Product, error) {
	var product Product
	result := d.db.Where("link = ?", link).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %v", result.Error)
	}
	return &product, nil
}

func (d *Database) GetProductByName(source, name string) (*Product, error) {
	var product Product
	result := d.db.Where("source = ? AND name = ?", source, name).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query product: %v", result.Error)
	}
	return &product, nil
}

// GetProducts lists tracked products, optionally filtered by source.
func (d *Database) GetProducts(source string) ([]Product, error) {
	var products []Product
	query := d.db.Order("id ASC")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	result := query.Find(&products)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query products: %v", result.Error)
	}
	return products, nil
}

// SearchProducts matches tracked products by name substring.
func (d *Database) SearchProducts(query string, limit int) ([]Product, error) {
	var products []Product
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	result := d.db.Where("LOWER(name) LIKE ?", pattern).
		Order("id ASC").
		Limit(limit).
		Find(&products)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search products: %v", result.Error)
	}
	return products, nil
}

// TrainingCorpus extracts (features, label) pairs from the full history
// of every tracked product. Products with fewer than two valid
// observations contribute nothing.
func (d *Database) TrainingCorpus() ([]TrainingSample, error) {
	products, err := d.GetProducts("")
	if err != nil {
		return nil, err
	}

	var samples []TrainingSample
	for _, product := range products {
		history, err := d.GetHistory(product.ID)
		if err != nil {
			return nil, err
		}
		features, err := ExtractFeatures(history)
		if err != nil {
			continue // not enough data for this product
		}
		samples = append(samples, TrainingSample{
			Features: features,
			Label:    dropLabel(features),
		})
	}
	return samples, nil
}

// User operations

func (d *Database) CreateUser(email, passwordHash string) (*User, error) {
	user := User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	}
	result := d.db.Create(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create user: %v", result.Error)
	}
	return &user, nil
}

func (d *Database) GetUserByEmail(email string) (*User, error) {
	var user User
	result := d.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %v", result.Error)
	}
	return &user, nil
}

func (d *Database) GetUsers() ([]User, error) {
	var users []User
	result := d.db.Order("id ASC").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query users: %v", result.Error)
	}
	return users, nil
}

// Watchlist operations. Membership is a row per (user, source, product)
// guarded by a unique index, so add and remove are single atomic
// statements with no read-modify-write window.

// AddWatch adds a product to the user's watchlist for a source. Adding
// an existing member is a no-op.
func (d *Database) AddWatch(userID uint, source string, productID uint) error {
	entry := WatchlistEntry{
		UserID:    userID,
		Source:    source,
		ProductID: productID,
	}
	result := d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to add watchlist entry: %v", result.Error)
	}
	return nil
}

// RemoveWatch removes a product from the user's watchlist. Removing an
// absent member reports ErrNotFound; callers treat it as a soft failure.
func (d *Database) RemoveWatch(userID uint, source string, productID uint) error {
	result := d.db.Where("user_id = ? AND source = ? AND product_id = ?", userID, source, productID).
		Delete(&WatchlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove watchlist entry: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Watchlist returns the products a user watches on a source.
func (d *Database) Watchlist(userID uint, source string) ([]Product, error) {
	var products []Product
	result := d.db.
		Joins("JOIN watchlist_entries ON watchlist_entries.product_id = products.id").
		Where("watchlist_entries.user_id = ? AND watchlist_entries.source = ?", userID, source).
		Order("products.id ASC").
		Find(&products)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query watchlist: %v", result.Error)
	}
	return products, nil
}

// WatchlistSnapshot captures every user's watchlists in one read so a
// notification sweep works from a consistent view; edits made during
// the sweep surface on the next run.
func (d *Database) WatchlistSnapshot() (map[uint]map[string][]uint, error) {
	var entries []WatchlistEntry
	result := d.db.Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query watchlist entries: %v", result.Error)
	}

	snapshot := make(map[uint]map[string][]uint)
	for _, e := range entries {
		if snapshot[e.UserID] == nil {
			snapshot[e.UserID] = make(map[string][]uint)
		}
		snapshot[e.UserID][e.Source] = append(snapshot[e.UserID][e.Source], e.ProductID)
	}
	return snapshot, nil
}
