package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"pollopollo/internal/config"
	store "pollopollo/internal/db"
	"pollopollo/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSecurity = config.Security{
	JWTSecret:     "test-secret",
	TokenTTL:      time.Hour,
	DeviceAddress: "0DEVICE",
	ObyteHub:      "obyte.org/bb",
}

// newTestDB returns a migrated in-memory database with foreign keys enforced
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // One connection keeps the memory database alive and shared
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.AutoMigrate(gdb))
	return gdb
}

// seedUser inserts a user with its role link and role sub-entity
func seedUser(t *testing.T, gdb *gorm.DB, email string, role domain.Role) domain.User {
	t.Helper()
	user := domain.User{FirstName: "Test", SurName: "User", Email: email, Password: "unused", Country: "Denmark"}
	require.NoError(t, gdb.Create(&user).Error)
	require.NoError(t, gdb.Create(&domain.UserRole{UserID: user.ID, Role: role}).Error)
	if role == domain.RoleProducer {
		require.NoError(t, gdb.Create(&domain.Producer{
			UserID:        user.ID,
			Street:        "Main",
			StreetNumber:  "1",
			Zipcode:       "2300",
			City:          "Copenhagen",
			PairingSecret: "secret-" + email,
		}).Error)
	} else {
		require.NoError(t, gdb.Create(&domain.Receiver{UserID: user.ID}).Error)
	}
	return user
}

func seedProduct(t *testing.T, gdb *gorm.DB, owner domain.User, title string, price int) domain.Product {
	t.Helper()
	p := domain.Product{UserID: owner.ID, Title: title, Price: price, Country: owner.Country, Available: true}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func seedApplication(t *testing.T, gdb *gorm.DB, receiver domain.User, product domain.Product, status domain.ApplicationStatus) domain.Application {
	t.Helper()
	now := time.Now().UTC()
	app := domain.Application{
		UserID:       receiver.ID,
		ProductID:    product.ID,
		Motivation:   "I need it",
		Status:       status,
		CreatedAt:    now,
		LastModified: now,
	}
	require.NoError(t, gdb.Create(&app).Error)
	return app
}

type sentEmail struct {
	To, Subject, Body string
}

// fakeSender records emails and fails with err when set
type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeSender) SendEmail(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeImages keeps uploads in memory
type fakeImages struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeImages) UploadImage(_ context.Context, _ string, originalName string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	name := "img-" + originalName
	f.uploaded = append(f.uploaded, name)
	return name, nil
}

func (f *fakeImages) DeleteImage(_ context.Context, _ string, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}
