package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type applicationFixture struct {
	db       *gorm.DB
	sender   *fakeSender
	repo     *ApplicationRepository
	producer domain.User
	receiver domain.User
	product  domain.Product
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	gdb := newTestDB(t)
	sender := &fakeSender{}
	producer := seedUser(t, gdb, "p@example.com", domain.RoleProducer)
	receiver := seedUser(t, gdb, "r@example.com", domain.RoleReceiver)
	return &applicationFixture{
		db:       gdb,
		sender:   sender,
		repo:     NewApplicationRepository(gdb, sender, "static"),
		producer: producer,
		receiver: receiver,
		product:  seedProduct(t, gdb, producer, "Chickens", 20),
	}
}

func TestApplicationCreate(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, &dto.ApplicationCreateDTO{
		UserID:     f.receiver.ID,
		ProductID:  f.product.ID,
		Motivation: "For my family",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.StatusOpen, created.Status)
	assert.Equal(t, "Test User", created.ReceiverName)
	assert.Equal(t, "Chickens", created.ProductTitle)
	assert.Equal(t, 20, created.ProductPrice)
	assert.Equal(t, f.producer.ID, created.ProducerID)
	assert.Equal(t, "For my family", created.Motivation)
	assert.Empty(t, created.DateOfDonation)
	assert.NotEmpty(t, created.CreationDate)

	for _, in := range []*dto.ApplicationCreateDTO{
		nil,
		{UserID: 999, ProductID: f.product.ID},
		{UserID: f.receiver.ID, ProductID: 999},
	} {
		created, err := f.repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Nil(t, created)
	}

	found, err := f.repo.Find(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestApplicationUpdatePendingSendsPickupAddress(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	ok, email, err := f.repo.Update(ctx, &dto.ApplicationUpdateDTO{ApplicationID: app.ID, Status: domain.StatusPending})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, email.Sent)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "r@example.com", f.sender.sent[0].To)
	assert.Contains(t, f.sender.sent[0].Body, "Main 1, 2300 Copenhagen")

	var stored domain.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, domain.StatusPending, stored.Status)
	require.NotNil(t, stored.DateOfDonation)
	assert.WithinDuration(t, time.Now(), *stored.DateOfDonation, time.Minute)
}

func TestApplicationUpdateReopenClearsDonationDate(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	ok, _, err := f.repo.Update(ctx, &dto.ApplicationUpdateDTO{ApplicationID: app.ID, Status: domain.StatusPending})
	require.NoError(t, err)
	require.True(t, ok)

	ok, email, err := f.repo.Update(ctx, &dto.ApplicationUpdateDTO{ApplicationID: app.ID, Status: domain.StatusOpen})
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, email.Sent)
	assert.Empty(t, email.Error)

	found, err := f.repo.Find(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, found.Status)
	assert.Empty(t, found.DateOfDonation)
}

func TestApplicationUpdateCompleted(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusPending)

	// Without a contract only the receiver is thanked
	ok, email, err := f.repo.Update(ctx, &dto.ApplicationUpdateDTO{ApplicationID: app.ID, Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, email.Sent)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "Thank you for using PolloPollo", f.sender.sent[0].Subject)

	other := seedApplication(t, f.db, f.receiver, f.product, domain.StatusPending)
	require.NoError(t, f.db.Create(&domain.Contract{ApplicationID: other.ID, Bytes: 5000, SharedAddress: "SHARED"}).Error)

	ok, _, err = f.repo.Update(ctx, &dto.ApplicationUpdateDTO{ApplicationID: other.ID, Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, f.sender.sent, 3)
	producerMail := f.sender.sent[2]
	assert.Equal(t, "p@example.com", producerMail.To)
	assert.Contains(t, producerMail.Body, "contains 5000 bytes which is roughly 20 USD")
	assert.Contains(t, producerMail.Body, "starting with SHAR.")
}

func TestApplicationUpdateEmailFailureKeepsTransition(t *testing.T) {
	f := newApplicationFixture(t)
	f.sender.err = errors.New("smtp down")
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	ok, email, err := f.repo.Update(context.Background(), &dto.ApplicationUpdateDTO{ApplicationID: app.ID, Status: domain.StatusPending})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, email.Sent)
	assert.Equal(t, "smtp down", email.Error)

	var stored domain.Application
	require.NoError(t, f.db.First(&stored, app.ID).Error)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestApplicationUpdateRejects(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	for _, in := range []*dto.ApplicationUpdateDTO{
		nil,
		{ApplicationID: 999, Status: domain.StatusPending},
		{ApplicationID: app.ID, Status: "Cancelled"},
	} {
		ok, _, err := f.repo.Update(ctx, in)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Empty(t, f.sender.sent)
}

func TestApplicationDelete(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	open := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)
	pending := seedApplication(t, f.db, f.receiver, f.product, domain.StatusPending)

	ok, err := f.repo.Delete(ctx, f.producer.ID, open.ID)
	require.NoError(t, err)
	assert.False(t, ok, "only the owner may delete")

	ok, err = f.repo.Delete(ctx, f.receiver.ID, pending.ID)
	require.NoError(t, err)
	assert.False(t, ok, "only open applications can be deleted")

	ok, err = f.repo.Delete(ctx, f.receiver.ID, open.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := f.repo.Find(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestApplicationReads(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	second := seedUser(t, f.db, "p2@example.com", domain.RoleProducer)
	require.NoError(t, f.db.Model(&second).Update("country", "Kenya").Error)
	require.NoError(t, f.db.Model(&domain.Producer{}).Where("user_id = ?", second.ID).Update("city", "Nairobi").Error)
	second.Country = "Kenya"
	goat := seedProduct(t, f.db, second, "Goat", 50)

	first := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)
	latest := seedApplication(t, f.db, f.receiver, goat, domain.StatusOpen)
	done := seedApplication(t, f.db, f.receiver, goat, domain.StatusCompleted)
	donated := time.Now().UTC()
	require.NoError(t, f.db.Model(&done).Update("date_of_donation", donated).Error)

	open, err := f.repo.ReadOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, latest.ID, open[0].ApplicationID)
	assert.Equal(t, first.ID, open[1].ApplicationID)

	all, err := f.repo.ReadFiltered(ctx, FilterAll, FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	kenya, err := f.repo.ReadFiltered(ctx, "Kenya", FilterAll)
	require.NoError(t, err)
	require.Len(t, kenya, 1)
	assert.Equal(t, latest.ID, kenya[0].ApplicationID)

	city, err := f.repo.ReadFiltered(ctx, FilterAll, "Copenhagen")
	require.NoError(t, err)
	require.Len(t, city, 1)
	assert.Equal(t, first.ID, city[0].ApplicationID)

	none, err := f.repo.ReadFiltered(ctx, "Kenya", "Copenhagen")
	require.NoError(t, err)
	assert.Empty(t, none)

	completed, err := f.repo.ReadCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, donated.Format("2006-01-02"), completed[0].DateOfDonation)

	mine, err := f.repo.ReadByReceiver(ctx, f.receiver.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	countries, err := f.repo.GetCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Denmark", "Kenya"}, countries)

	cities, err := f.repo.GetCities(ctx, "Kenya")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nairobi"}, cities)

	empty, err := f.repo.GetCities(ctx, "Peru")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestApplicationContractInformation(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Model(&domain.Producer{}).Where("user_id = ?", f.producer.ID).
		Updates(map[string]any{"device_address": "DEV", "wallet_address": "WAL"}).Error)
	app := seedApplication(t, f.db, f.receiver, f.product, domain.StatusOpen)

	info, err := f.repo.GetContractInformation(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, dto.ContractInformationDTO{ProducerDevice: "DEV", ProducerWallet: "WAL", Price: 20}, *info)

	info, err = f.repo.GetContractInformation(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, info)
}
