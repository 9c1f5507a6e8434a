package repository

import (
	"context"
	"errors"
	"fmt"

	"pollopollo/internal/domain"

	"gorm.io/gorm"
)

// exchangeRateID is the id of the single rate row
const exchangeRateID = 1

// ExchangeRateRepository reads and writes the GBYTE to USD rate
type ExchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Get returns the stored rate, or 0 when none has been stored yet
func (r *ExchangeRateRepository) Get(ctx context.Context) (float64, error) {
	var rate domain.ByteExchangeRate
	err := r.db.WithContext(ctx).First(&rate, exchangeRateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read exchange rate: %w", err)
	}
	return rate.GBYTEUSD, nil
}

// Set overwrites the stored rate
func (r *ExchangeRateRepository) Set(ctx context.Context, gbyteUSD float64) error {
	if gbyteUSD < 0 {
		return fmt.Errorf("negative exchange rate %v", gbyteUSD)
	}
	rate := domain.ByteExchangeRate{ID: exchangeRateID, GBYTEUSD: gbyteUSD}
	if err := r.db.WithContext(ctx).Save(&rate).Error; err != nil {
		return fmt.Errorf("store exchange rate: %w", err)
	}
	return nil
}
