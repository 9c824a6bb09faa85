package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
	"gorm.io/gorm"
)

// PriceFeed resolves the current price per gram for a metal. A price must
// always be resolvable: implementations fall back to configured defaults
// rather than failing a reconciliation over a missing quote.
type PriceFeed interface {
	GetCurrentPrice(ctx context.Context, metalType string) (float64, error)
}

// DBPriceFeed reads the latest stored metal price and falls back to the
// configured defaults when no row exists or the lookup fails.
type DBPriceFeed struct {
	db       *gorm.DB
	defaults map[string]float64
}

// NewDBPriceFeed builds a price feed over the metal_prices table.
// defaults maps metal type to fallback price per gram.
func NewDBPriceFeed(db *gorm.DB, defaults map[string]float64) *DBPriceFeed {
	return &DBPriceFeed{db: db, defaults: defaults}
}

func (f *DBPriceFeed) GetCurrentPrice(ctx context.Context, metalType string) (float64, error) {
	var price models.MetalPrice
	err := f.db.WithContext(ctx).
		Where("type = ?", metalType).
		Order("updated_at DESC").
		First(&price).Error
	if err == nil && price.PricePerGram > 0 {
		return price.PricePerGram, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogError("Price lookup failed for %s, using fallback: %v", metalType, err)
	}

	fallback, ok := f.defaults[metalType]
	if !ok || fallback <= 0 {
		return 0, fmt.Errorf("no price available for metal type %q", metalType)
	}
	return fallback, nil
}

// StaticPriceFeed serves fixed prices. Used in tests and as a last-resort
// feed when the database is not configured.
type StaticPriceFeed map[string]float64

func (f StaticPriceFeed) GetCurrentPrice(_ context.Context, metalType string) (float64, error) {
	price, ok := f[metalType]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("no price available for metal type %q", metalType)
	}
	return price, nil
}
