package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"
	"pollopollo/internal/notify"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilterAll disables the country or city filter of ReadFiltered
const FilterAll = "ALL"

const (
	creationDateLayout = "2006-01-02 15:04:05"
	donationDateLayout = "2006-01-02"
)

// ApplicationRepository runs the application workflow and sends the emails that go with
// its transitions
type ApplicationRepository struct {
	db     *gorm.DB
	sender notify.Sender
	static string
}

func NewApplicationRepository(db *gorm.DB, sender notify.Sender, staticBaseURL string) *ApplicationRepository {
	return &ApplicationRepository{db: db, sender: sender, static: staticBaseURL}
}

// applicationRow is the joined projection of an application, its receiver and product
type applicationRow struct {
	ID             uint
	UserID         uint
	ProductID      uint
	Motivation     string
	Status         domain.ApplicationStatus
	CreatedAt      time.Time
	DateOfDonation *time.Time
	FirstName      string
	SurName        string
	Country        string
	Thumbnail      string
	ProductTitle   string
	ProductPrice   int
	ProducerID     uint
}

// projection selects the joined application rows
func (r *ApplicationRepository) projection(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("applications").
		Select("applications.id, applications.user_id, applications.product_id, applications.motivation, " +
			"applications.status, applications.created_at, applications.date_of_donation, " +
			"users.first_name, users.sur_name, users.country, users.thumbnail, " +
			"products.title AS product_title, products.price AS product_price, products.user_id AS producer_id").
		Joins("JOIN users ON users.id = applications.user_id").
		Joins("JOIN products ON products.id = applications.product_id")
}

// Create opens a new application. It returns nil when the input is missing or the
// receiver or product does not exist.
func (r *ApplicationRepository) Create(ctx context.Context, in *dto.ApplicationCreateDTO) (*dto.ApplicationDTO, error) {
	if in == nil {
		return nil, nil
	}
	ok, err := r.exists(ctx, &domain.User{}, in.UserID)
	if err != nil || !ok {
		return nil, err
	}
	ok, err = r.exists(ctx, &domain.Product{}, in.ProductID)
	if err != nil || !ok {
		return nil, err
	}

	now := time.Now().UTC()
	app := domain.Application{
		UserID:       in.UserID,
		ProductID:    in.ProductID,
		Motivation:   in.Motivation,
		Status:       domain.StatusOpen,
		CreatedAt:    now,
		LastModified: now,
	}
	if err := r.db.WithContext(ctx).Create(&app).Error; err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return r.Find(ctx, app.ID)
}

// Find returns the projection of one application, or nil
func (r *ApplicationRepository) Find(ctx context.Context, applicationID uint) (*dto.ApplicationDTO, error) {
	var rows []applicationRow
	err := r.projection(ctx).Where("applications.id = ?", applicationID).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find application %d: %w", applicationID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := r.toDTO(rows[0])
	return &out, nil
}

// Update moves an application to a new status and notifies the people involved. The
// email outcome of the receiver notification is reported but never undoes the
// transition.
func (r *ApplicationRepository) Update(ctx context.Context, in *dto.ApplicationUpdateDTO) (bool, dto.EmailResult, error) {
	var result dto.EmailResult
	if in == nil || !in.Status.Valid() {
		return false, result, nil
	}
	var app domain.Application
	err := r.db.WithContext(ctx).First(&app, in.ApplicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, result, nil
	}
	if err != nil {
		return false, result, fmt.Errorf("find application %d: %w", in.ApplicationID, err)
	}

	now := time.Now().UTC()
	app.Status = in.Status
	app.LastModified = now
	switch in.Status {
	case domain.StatusPending:
		app.DateOfDonation = &now
	case domain.StatusOpen:
		app.DateOfDonation = nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(&app).Error; err != nil {
		return false, result, fmt.Errorf("update application %d: %w", app.ID, err)
	}

	logrus.WithFields(logrus.Fields{"application_id": app.ID, "status": app.Status}).Info("Application status changed")

	switch in.Status {
	case domain.StatusPending:
		result = r.notifyDonation(ctx, app)
	case domain.StatusCompleted:
		result = r.notifyCompletion(ctx, app)
	}
	return true, result, nil
}

// notifyDonation sends the receiver the pickup address of the donated product
func (r *ApplicationRepository) notifyDonation(ctx context.Context, app domain.Application) dto.EmailResult {
	var row struct {
		Email        string
		Title        string
		Street       string
		StreetNumber string
		Zipcode      string
		City         string
	}
	res := r.db.WithContext(ctx).Table("applications").
		Select("users.email, products.title, producers.street, producers.street_number, producers.zipcode, producers.city").
		Joins("JOIN users ON users.id = applications.user_id").
		Joins("JOIN products ON products.id = applications.product_id").
		Joins("JOIN producers ON producers.user_id = products.user_id").
		Where("applications.id = ?", app.ID).Limit(1).Scan(&row)
	if res.Error != nil {
		return failedEmail(app.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return failedEmail(app.ID, fmt.Errorf("no pickup address for application %d", app.ID))
	}
	address := notify.PickupAddress(row.Street, row.StreetNumber, row.Zipcode, row.City)
	return r.send(ctx, app.ID, row.Email, notify.DonationMessage(row.Title, address))
}

// notifyCompletion thanks the receiver and tells the producer about the escrowed funds.
// The producer email is skipped when no contract exists, and its outcome is only
// logged.
func (r *ApplicationRepository) notifyCompletion(ctx context.Context, app domain.Application) dto.EmailResult {
	var row struct {
		ReceiverEmail string
		FirstName     string
		SurName       string
		Title         string
		Price         int
		ProducerEmail string
	}
	res := r.db.WithContext(ctx).Table("applications").
		Select("users.email AS receiver_email, users.first_name, users.sur_name, products.title, products.price, producer_users.email AS producer_email").
		Joins("JOIN users ON users.id = applications.user_id").
		Joins("JOIN products ON products.id = applications.product_id").
		Joins("JOIN users AS producer_users ON producer_users.id = products.user_id").
		Where("applications.id = ?", app.ID).Limit(1).Scan(&row)
	if res.Error != nil {
		return failedEmail(app.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return failedEmail(app.ID, fmt.Errorf("no receiver for application %d", app.ID))
	}
	result := r.send(ctx, app.ID, row.ReceiverEmail, notify.ThankYouMessage())

	var contract domain.Contract
	err := r.db.WithContext(ctx).Where("application_id = ?", app.ID).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{"application_id": app.ID, "error": err.Error()}).Warn("Could not load contract")
		return result
	}
	price := row.Price
	if contract.Price != nil {
		price = *contract.Price
	}
	msg := notify.ProducerConfirmationMessage(row.FirstName+" "+row.SurName, app.ID, row.Title,
		contract.Bytes, price, contract.SharedAddress)
	r.send(ctx, app.ID, row.ProducerEmail, msg)
	return result
}

func (r *ApplicationRepository) send(ctx context.Context, applicationID uint, to string, m notify.Message) dto.EmailResult {
	if err := r.sender.SendEmail(ctx, to, m.Subject, m.Body); err != nil {
		return failedEmail(applicationID, err)
	}
	return dto.EmailResult{Sent: true}
}

func failedEmail(applicationID uint, err error) dto.EmailResult {
	logrus.WithFields(logrus.Fields{"application_id": applicationID, "error": err.Error()}).Warn("Email not sent")
	return dto.EmailResult{Sent: false, Error: err.Error()}
}

// Delete removes an application owned by userID while it is still open
func (r *ApplicationRepository) Delete(ctx context.Context, userID, applicationID uint) (bool, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).First(&app, applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find application %d: %w", applicationID, err)
	}
	if app.UserID != userID || app.Status != domain.StatusOpen {
		return false, nil
	}
	if err := r.db.WithContext(ctx).Delete(&app).Error; err != nil {
		return false, fmt.Errorf("delete application %d: %w", applicationID, err)
	}
	return true, nil
}

// ReadOpen lists open applications, newest first
func (r *ApplicationRepository) ReadOpen(ctx context.Context) ([]dto.ApplicationDTO, error) {
	return r.read(ctx, r.projection(ctx).
		Where("applications.status = ?", domain.StatusOpen).
		Order("applications.created_at desc").Order("applications.id desc"))
}

// ReadFiltered lists open applications whose producer is in the given country and city.
// FilterAll or an empty value disables a filter.
func (r *ApplicationRepository) ReadFiltered(ctx context.Context, country, city string) ([]dto.ApplicationDTO, error) {
	q := r.projection(ctx).
		Joins("JOIN users AS producer_users ON producer_users.id = products.user_id").
		Joins("LEFT JOIN producers ON producers.user_id = products.user_id").
		Where("applications.status = ?", domain.StatusOpen)
	if country != "" && country != FilterAll {
		q = q.Where("producer_users.country = ?", country)
	}
	if city != "" && city != FilterAll {
		q = q.Where("producers.city = ?", city)
	}
	return r.read(ctx, q.Order("applications.created_at desc").Order("applications.id desc"))
}

// ReadCompleted lists completed applications, latest donation first
func (r *ApplicationRepository) ReadCompleted(ctx context.Context) ([]dto.ApplicationDTO, error) {
	return r.read(ctx, r.projection(ctx).
		Where("applications.status = ?", domain.StatusCompleted).
		Order("applications.date_of_donation desc").Order("applications.id desc"))
}

// ReadByReceiver lists every application of a receiver, newest first
func (r *ApplicationRepository) ReadByReceiver(ctx context.Context, receiverID uint) ([]dto.ApplicationDTO, error) {
	return r.read(ctx, r.projection(ctx).
		Where("applications.user_id = ?", receiverID).
		Order("applications.created_at desc").Order("applications.id desc"))
}

func (r *ApplicationRepository) read(_ context.Context, q *gorm.DB) ([]dto.ApplicationDTO, error) {
	var rows []applicationRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("read applications: %w", err)
	}
	out := make([]dto.ApplicationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toDTO(row))
	}
	return out, nil
}

// GetContractInformation returns what the chat bot needs to set up an escrow, or nil
// when the application or its producer does not exist
func (r *ApplicationRepository) GetContractInformation(ctx context.Context, applicationID uint) (*dto.ContractInformationDTO, error) {
	var info dto.ContractInformationDTO
	res := r.db.WithContext(ctx).Table("applications").
		Select("producers.device_address AS producer_device, producers.wallet_address AS producer_wallet, products.price").
		Joins("JOIN products ON products.id = applications.product_id").
		Joins("JOIN producers ON producers.user_id = products.user_id").
		Where("applications.id = ?", applicationID).Limit(1).Scan(&info)
	if res.Error != nil {
		return nil, fmt.Errorf("contract information for %d: %w", applicationID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &info, nil
}

// GetCountries lists the countries of producers with at least one open application
func (r *ApplicationRepository) GetCountries(ctx context.Context) ([]string, error) {
	countries := []string{}
	err := r.db.WithContext(ctx).Table("applications").
		Joins("JOIN products ON products.id = applications.product_id").
		Joins("JOIN users AS producer_users ON producer_users.id = products.user_id").
		Where("applications.status = ?", domain.StatusOpen).
		Distinct().Order("producer_users.country").Pluck("producer_users.country", &countries).Error
	if err != nil {
		return nil, fmt.Errorf("read countries: %w", err)
	}
	return countries, nil
}

// GetCities lists the producer cities with open applications for products in country
func (r *ApplicationRepository) GetCities(ctx context.Context, country string) ([]string, error) {
	cities := []string{}
	err := r.db.WithContext(ctx).Table("applications").
		Joins("JOIN products ON products.id = applications.product_id").
		Joins("JOIN producers ON producers.user_id = products.user_id").
		Where("applications.status = ? AND products.country = ?", domain.StatusOpen, country).
		Distinct().Order("producers.city").Pluck("producers.city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("read cities: %w", err)
	}
	return cities, nil
}

func (r *ApplicationRepository) exists(ctx context.Context, model any, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check %T %d: %w", model, id, err)
	}
	return n > 0, nil
}

func (r *ApplicationRepository) toDTO(row applicationRow) dto.ApplicationDTO {
	out := dto.ApplicationDTO{
		ApplicationID: row.ID,
		ReceiverID:    row.UserID,
		ReceiverName:  row.FirstName + " " + row.SurName,
		Country:       row.Country,
		Thumbnail:     imagePath(r.static, row.Thumbnail),
		ProductID:     row.ProductID,
		ProductTitle:  row.ProductTitle,
		ProductPrice:  row.ProductPrice,
		ProducerID:    row.ProducerID,
		Motivation:    row.Motivation,
		Status:        row.Status,
		CreationDate:  row.CreatedAt.Format(creationDateLayout),
	}
	if row.DateOfDonation != nil {
		out.DateOfDonation = row.DateOfDonation.Format(donationDateLayout)
	}
	return out
}
