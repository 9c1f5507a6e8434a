package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"

	"gorm.io/gorm"
)

// ContractRepository stores the escrow contracts reported by the chat bot
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create stores the contract of an existing application and records the donation unit
// on the application. It returns false when the application is unknown or already has
// a contract.
func (r *ContractRepository) Create(ctx context.Context, in *dto.ContractCreateDTO) (bool, error) {
	if in == nil {
		return false, nil
	}
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app domain.Application
		err := tx.Select("id").First(&app, in.ApplicationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&domain.Contract{}).Where("application_id = ?", app.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		now := time.Now().UTC()
		contract := domain.Contract{
			ApplicationID:  app.ID,
			Bytes:          in.Bytes,
			Price:          in.Price,
			ConfirmKey:     in.ConfirmKey,
			CreationTime:   &now,
			DonorDevice:    in.DonorDevice,
			DonorWallet:    in.DonorWallet,
			ProducerDevice: in.ProducerDevice,
			ProducerWallet: in.ProducerWallet,
			SharedAddress:  in.SharedAddress,
		}
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}
		if in.UnitID != "" {
			if err := tx.Model(&app).Update("unit_id", in.UnitID).Error; err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create contract for %d: %w", in.ApplicationID, err)
	}
	return created, nil
}

// Find returns the contract of an application, or nil
func (r *ContractRepository) Find(ctx context.Context, applicationID uint) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contract %d: %w", applicationID, err)
	}
	return &contract, nil
}
