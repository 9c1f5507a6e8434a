package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"pollopollo/internal/config"
	"pollopollo/internal/domain"
	"pollopollo/internal/dto"
	"pollopollo/internal/storage"
	"pollopollo/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository creates, authenticates and updates users together with their role
// sub-entity
type UserRepository struct {
	db       *gorm.DB
	security config.Security
	images   storage.ImageWriter
	static   string
}

func NewUserRepository(db *gorm.DB, security config.Security, images storage.ImageWriter, staticBaseURL string) *UserRepository {
	return &UserRepository{db: db, security: security, images: images, static: staticBaseURL}
}

// Create validates the registration, stores the user with its role, and logs the new
// user in. The returned error is only set together with CreateUnknownFailure.
func (r *UserRepository) Create(ctx context.Context, in *dto.UserCreateDTO) (dto.UserCreateStatus, *dto.TokenDTO, error) {
	if in == nil {
		return dto.CreateNullInput, nil, nil
	}
	if in.FirstName == "" || in.SurName == "" {
		return dto.CreateMissingName, nil, nil
	}
	if in.Email == "" {
		return dto.CreateMissingEmail, nil, nil
	}
	var taken int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return dto.CreateUnknownFailure, nil, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return dto.CreateEmailTaken, nil, nil
	}
	if in.Password == "" {
		return dto.CreateMissingPassword, nil, nil
	}
	if len(in.Password) < utils.MinPasswordLength {
		return dto.CreatePasswordTooShort, nil, nil
	}
	if in.Country == "" {
		return dto.CreateMissingCountry, nil, nil
	}
	role := domain.Role(in.UserRole)
	if !role.Valid() {
		return dto.CreateInvalidRole, nil, nil
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return dto.CreateUnknownFailure, nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		FirstName: in.FirstName,
		SurName:   in.SurName,
		Email:     in.Email,
		Password:  hash,
		Country:   in.Country,
	}
	// User, role link and role sub-entity are stored atomically
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.UserRole{UserID: user.ID, Role: role}).Error; err != nil {
			return err
		}
		switch role {
		case domain.RoleProducer:
			return tx.Create(&domain.Producer{
				UserID:        user.ID,
				Street:        in.Street,
				StreetNumber:  in.StreetNumber,
				Zipcode:       in.Zipcode,
				City:          in.City,
				PairingSecret: newPairingSecret(),
			}).Error
		default:
			return tx.Create(&domain.Receiver{UserID: user.ID}).Error
		}
	})
	if err != nil {
		return dto.CreateUnknownFailure, nil, fmt.Errorf("create user: %w", err)
	}

	status, profile, token, err := r.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return dto.CreateUnknownFailure, nil, err
	}
	if status != dto.AuthSuccess {
		return dto.CreateUnknownFailure, nil, fmt.Errorf("authenticate new user: %s", status)
	}
	return dto.CreateSuccess, &dto.TokenDTO{Token: token, UserDTO: profile}, nil
}

// Find loads the role tagged profile of a user. It returns nil when the user or its
// role link does not exist.
func (r *UserRepository) Find(ctx context.Context, userID uint) (*dto.DetailedUserDTO, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Preload("UserRole").Preload("Producer").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	if user.UserRole == nil {
		return nil, nil
	}

	profile := &dto.DetailedUserDTO{
		UserID:      user.ID,
		FirstName:   user.FirstName,
		SurName:     user.SurName,
		Email:       user.Email,
		Country:     user.Country,
		Description: user.Description,
		Thumbnail:   imagePath(r.static, user.Thumbnail),
		UserRole:    string(user.UserRole.Role),
	}
	switch user.UserRole.Role {
	case domain.RoleProducer:
		stats, err := r.donationStats(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		details := &dto.ProducerDetails{DonationStats: stats}
		if p := user.Producer; p != nil {
			details.Wallet = p.WalletAddress
			details.Device = p.DeviceAddress
			details.PairingLink = r.pairingLink(p.PairingSecret)
			details.Street = p.Street
			details.StreetNumber = p.StreetNumber
			details.Zipcode = p.Zipcode
			details.City = p.City
		}
		profile.ProducerDetails = details
	case domain.RoleReceiver:
	default:
		return nil, nil
	}
	return profile, nil
}

// FindByRole is Find restricted to users holding role
func (r *UserRepository) FindByRole(ctx context.Context, userID uint, role domain.Role) (*dto.DetailedUserDTO, error) {
	profile, err := r.Find(ctx, userID)
	if err != nil || profile == nil || profile.UserRole != string(role) {
		return nil, err
	}
	return profile, nil
}

type userSummaryRow struct {
	ID            uint
	FirstName     string
	SurName       string
	Email         string
	Country       string
	Description   string
	Thumbnail     string
	City          string
	WalletAddress string
}

// ReadByRole lists the users holding role ordered by id. The slice is empty, not nil,
// when there are none.
func (r *UserRepository) ReadByRole(ctx context.Context, role domain.Role) ([]dto.UserSummaryDTO, error) {
	var rows []userSummaryRow
	err := r.db.WithContext(ctx).Table("users").
		Select("users.id, users.first_name, users.sur_name, users.email, users.country, users.description, users.thumbnail, COALESCE(producers.city, '') AS city, COALESCE(producers.wallet_address, '') AS wallet_address").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("LEFT JOIN producers ON producers.user_id = users.id").
		Where("user_roles.role = ?", role).
		Order("users.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	users := make([]dto.UserSummaryDTO, 0, len(rows))
	for _, row := range rows {
		users = append(users, dto.UserSummaryDTO{
			UserID:      row.ID,
			FirstName:   row.FirstName,
			SurName:     row.SurName,
			Email:       row.Email,
			Country:     row.Country,
			Description: row.Description,
			Thumbnail:   imagePath(r.static, row.Thumbnail),
			City:        row.City,
			Wallet:      row.WalletAddress,
		})
	}
	return users, nil
}

type donationRow struct {
	Price        int
	Status       domain.ApplicationStatus
	LastModified time.Time
}

// donationStats counts the Pending and Completed applications for a producer's
// products over the past week, the past month and all time
func (r *UserRepository) donationStats(ctx context.Context, producerID uint) (dto.DonationStats, error) {
	var rows []donationRow
	err := r.db.WithContext(ctx).Table("applications").
		Select("products.price AS price, applications.status AS status, applications.last_modified AS last_modified").
		Joins("JOIN products ON products.id = applications.product_id").
		Where("products.user_id = ? AND applications.status IN ?", producerID,
			[]domain.ApplicationStatus{domain.StatusPending, domain.StatusCompleted}).
		Scan(&rows).Error
	if err != nil {
		return dto.DonationStats{}, fmt.Errorf("donation stats for %d: %w", producerID, err)
	}

	now := time.Now()
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)
	var s dto.DonationStats
	for _, row := range rows {
		inWeek := !row.LastModified.Before(week)
		inMonth := !row.LastModified.Before(month)
		switch row.Status {
		case domain.StatusCompleted:
			s.CompletedDonationsAllTimeNo++
			s.CompletedDonationsAllTimePrice += row.Price
			if inMonth {
				s.CompletedDonationsPastMonthNo++
				s.CompletedDonationsPastMonthPrice += row.Price
			}
			if inWeek {
				s.CompletedDonationsPastWeekNo++
				s.CompletedDonationsPastWeekPrice += row.Price
			}
		case domain.StatusPending:
			s.PendingDonationsAllTimeNo++
			s.PendingDonationsAllTimePrice += row.Price
			if inMonth {
				s.PendingDonationsPastMonthNo++
				s.PendingDonationsPastMonthPrice += row.Price
			}
			if inWeek {
				s.PendingDonationsPastWeekNo++
				s.PendingDonationsPastWeekPrice += row.Price
			}
		}
	}
	return s, nil
}

// Update applies a profile edit after verifying the current password. It returns
// false without changes when the user is unknown, the password is wrong, the new
// password is too short or the role is not recognised.
func (r *UserRepository) Update(ctx context.Context, in *dto.UserUpdateDTO) (bool, error) {
	if in == nil {
		return false, nil
	}
	var user domain.User
	err := r.db.WithContext(ctx).Preload("UserRole").Preload("Producer").
		Where("id = ? AND email = ?", in.UserID, in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user %d: %w", in.UserID, err)
	}
	if !utils.VerifyPassword(user.Password, in.Password) {
		return false, nil
	}
	role := domain.Role(in.UserRole)
	if !role.Valid() {
		return false, nil
	}

	user.FirstName = in.FirstName
	user.SurName = in.SurName
	user.Country = in.Country
	user.Description = in.Description
	if in.NewPassword != "" {
		if len(in.NewPassword) < utils.MinPasswordLength {
			return false, nil
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}

	producer := user.Producer
	if role == domain.RoleProducer && producer != nil {
		if in.Wallet != "" {
			producer.WalletAddress = in.Wallet
		}
		producer.Street = in.Street
		producer.StreetNumber = in.StreetNumber
		producer.City = in.City
		if in.Zipcode != "" {
			producer.Zipcode = in.Zipcode
		}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&user).Error; err != nil {
			return err
		}
		if role == domain.RoleProducer && producer != nil {
			return tx.Save(producer).Error
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": in.UserID, "error": err.Error()}).Error("User update failed")
		return false, fmt.Errorf("update user %d: %w", in.UserID, err)
	}
	return true, nil
}

// UpdateDeviceAddress completes the wallet pairing of a producer identified by its
// pairing secret
func (r *UserRepository) UpdateDeviceAddress(ctx context.Context, in *dto.UserPairingDTO) (bool, error) {
	if in == nil || in.PairingSecret == "" {
		return false, nil
	}
	var producer domain.Producer
	err := r.db.WithContext(ctx).Where("pairing_secret = ?", in.PairingSecret).First(&producer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find producer by secret: %w", err)
	}
	var role domain.UserRole
	err = r.db.WithContext(ctx).Where("user_id = ?", producer.UserID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find role of %d: %w", producer.UserID, err)
	}
	if role.Role != domain.RoleProducer {
		return false, nil
	}
	err = r.db.WithContext(ctx).Model(&producer).Updates(map[string]any{
		"device_address": in.DeviceAddress,
		"wallet_address": in.WalletAddress,
	}).Error
	if err != nil {
		return false, fmt.Errorf("pair producer %d: %w", producer.UserID, err)
	}
	return true, nil
}

// UpdateImage stores a new profile picture and removes the previous one. It returns
// the public path of the new image, or "" when the user does not exist. Storage
// errors are returned unchanged.
func (r *UserRepository) UpdateImage(ctx context.Context, userID uint, originalName string, image io.Reader) (string, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find user %d: %w", userID, err)
	}
	name, err := replaceImage(ctx, r.db, r.images, &user, user.Thumbnail, originalName, image)
	if err != nil {
		return "", err
	}
	return imagePath(r.static, name), nil
}

// Authenticate checks the credentials and issues a signed token carrying the user id,
// display name and role
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (dto.UserAuthStatus, *dto.DetailedUserDTO, string, error) {
	if email == "" {
		return dto.AuthMissingEmail, nil, "", nil
	}
	if password == "" {
		return dto.AuthMissingPassword, nil, "", nil
	}
	var user domain.User
	err := r.db.WithContext(ctx).Select("id", "password").Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthNoUser, nil, "", nil
	}
	if err != nil {
		return "", nil, "", fmt.Errorf("find user by email: %w", err)
	}
	if !utils.VerifyPassword(user.Password, password) {
		return dto.AuthWrongPassword, nil, "", nil
	}
	profile, err := r.Find(ctx, user.ID)
	if err != nil {
		return "", nil, "", err
	}
	if profile == nil {
		return dto.AuthNoUser, nil, "", nil
	}
	token, err := utils.GenerateJWT(user.ID, profile.FirstName+" "+profile.SurName, profile.UserRole,
		r.security.JWTSecret, r.security.TokenTTL)
	if err != nil {
		return "", nil, "", fmt.Errorf("sign token: %w", err)
	}
	return dto.AuthSuccess, profile, token, nil
}

func (r *UserRepository) CountProducers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Producer{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) CountReceivers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Receiver{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) pairingLink(secret string) string {
	if secret == "" {
		return ""
	}
	return "byteball:" + r.security.DeviceAddress + "@" + r.security.ObyteHub + "#" + secret
}

func newPairingSecret() string {
	return uuid.NewString() + "_" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
