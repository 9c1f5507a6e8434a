package repository

import (
	"context"
	"errors"
	"fmt"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"
	"pollopollo/internal/utils"

	"gorm.io/gorm"
)

// BalanceClient fetches the byte balance of a donor account from the chat bot. The
// returned status is the bot's HTTP status.
type BalanceClient interface {
	DonorBalance(ctx context.Context, aaAccount string) (int64, int, error)
}

// DonorRepository manages donors registered through autonomous agent deposits
type DonorRepository struct {
	db     *gorm.DB
	bridge BalanceClient
	rates  *ExchangeRateRepository
}

func NewDonorRepository(db *gorm.DB, bridge BalanceClient, rates *ExchangeRateRepository) *DonorRepository {
	return &DonorRepository{db: db, bridge: bridge, rates: rates}
}

func (r *DonorRepository) CheckAccountExists(ctx context.Context, aaAccount string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Donor{}).Where("aa_account = ?", aaAccount).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check donor %s: %w", aaAccount, err)
	}
	return n > 0, nil
}

// CreateAccountIfNotExists registers the donor unless it is already known. It reports
// whether the account existed before the call and whether it was created by it.
func (r *DonorRepository) CreateAccountIfNotExists(ctx context.Context, in *dto.DonorFromAaDepositDTO) (bool, bool, error) {
	if in == nil || in.AccountID == "" {
		return false, false, nil
	}
	exists, err := r.CheckAccountExists(ctx, in.AccountID)
	if err != nil {
		return false, false, err
	}
	if exists {
		return true, false, nil
	}
	donor := domain.Donor{AaAccount: in.AccountID, WalletAddress: in.WalletAddress}
	if err := r.db.WithContext(ctx).Create(&donor).Error; err != nil {
		return false, false, fmt.Errorf("create donor %s: %w", in.AccountID, err)
	}
	return false, true, nil
}

// GetBalance asks the chat bot for the donor balance and converts it to USD at the
// stored rate. ok is false when the bot answered with a non-success status, which is
// returned as is.
func (r *DonorRepository) GetBalance(ctx context.Context, aaAccount string) (bool, int, *dto.DonorBalanceDTO, error) {
	bytes, status, err := r.bridge.DonorBalance(ctx, aaAccount)
	if err != nil {
		return false, status, nil, err
	}
	if status < 200 || status > 299 {
		return false, status, nil, nil
	}
	rate, err := r.rates.Get(ctx)
	if err != nil {
		return false, status, nil, err
	}
	return true, status, &dto.DonorBalanceDTO{
		BalanceInBytes: bytes,
		BalanceInUSD:   utils.BytesToUSD(bytes, rate),
	}, nil
}

// Delete removes a donor. It returns false when the donor does not exist.
func (r *DonorRepository) Delete(ctx context.Context, aaAccount string) (bool, error) {
	var donor domain.Donor
	err := r.db.WithContext(ctx).Where("aa_account = ?", aaAccount).First(&donor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find donor %s: %w", aaAccount, err)
	}
	if err := r.db.WithContext(ctx).Delete(&donor).Error; err != nil {
		return false, fmt.Errorf("delete donor %s: %w", aaAccount, err)
	}
	return true, nil
}
