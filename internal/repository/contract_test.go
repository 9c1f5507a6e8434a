package repository

import (
	"context"
	"testing"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractCreateAndFind(t *testing.T) {
	f := newApplicationFixture(t)
	repo := NewContractRepository(f.db)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusPending)

	price := 20
	in := &dto.ContractCreateDTO{
		ApplicationID: app.ID,
		Bytes:         1000,
		Price:         &price,
		SharedAddress: "SHARED",
		DonorWallet:   "DONOR",
		UnitID:        "UNIT",
	}
	ok, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, ok, "an application has at most one contract")

	ok, err = repo.Create(ctx, &dto.ContractCreateDTO{ApplicationID: 999})
	require.NoError(t, err)
	assert.False(t, ok)

	contract, err := repo.Find(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, int64(1000), contract.Bytes)
	assert.Equal(t, "SHARED", contract.SharedAddress)
	require.NotNil(t, contract.CreationTime)

	var stored domain.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, "UNIT", stored.UnitID)

	missing, err := repo.Find(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestContractDeletedWithApplication(t *testing.T) {
	f := newApplicationFixture(t)
	repo := NewContractRepository(f.db)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	ok, err := repo.Create(ctx, &dto.ContractCreateDTO{ApplicationID: app.ID, Bytes: 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.repo.Delete(ctx, f.receiver.ID, app.ID)
	require.NoError(t, err)
	require.True(t, ok)

	contract, err := repo.Find(ctx, app.ID)
	require.NoError(t, err)
	assert.Nil(t, contract)
}
