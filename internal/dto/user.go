// Package dto holds the request and response shapes shared by repositories and handlers.
package dto

// UserCreateStatus is the outcome of a user registration
type UserCreateStatus string

const (
	CreateSuccess          UserCreateStatus = "SUCCESS"
	CreateNullInput        UserCreateStatus = "NULL_INPUT"
	CreateMissingName      UserCreateStatus = "MISSING_NAME"
	CreateMissingEmail     UserCreateStatus = "MISSING_EMAIL"
	CreateEmailTaken       UserCreateStatus = "EMAIL_TAKEN"
	CreateMissingPassword  UserCreateStatus = "MISSING_PASSWORD"
	CreatePasswordTooShort UserCreateStatus = "PASSWORD_TOO_SHORT"
	CreateMissingCountry   UserCreateStatus = "MISSING_COUNTRY"
	CreateInvalidRole      UserCreateStatus = "INVALID_ROLE"
	CreateUnknownFailure   UserCreateStatus = "UNKNOWN_FAILURE"
)

// UserAuthStatus is the outcome of an authentication attempt
type UserAuthStatus string

const (
	AuthSuccess         UserAuthStatus = "SUCCESS"
	AuthMissingEmail    UserAuthStatus = "MISSING_EMAIL"
	AuthMissingPassword UserAuthStatus = "MISSING_PASSWORD"
	AuthNoUser          UserAuthStatus = "NO_USER"
	AuthWrongPassword   UserAuthStatus = "WRONG_PASSWORD"
)

// UserCreateDTO is the registration request
type UserCreateDTO struct {
	FirstName    string `json:"firstName"`
	SurName      string `json:"surName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Country      string `json:"country"`
	UserRole     string `json:"userRole"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`
}

// UserUpdateDTO carries a profile edit. Password must be the current password.
type UserUpdateDTO struct {
	UserID       uint   `json:"userId"`
	FirstName    string `json:"firstName"`
	SurName      string `json:"surName"`
	Email        string `json:"email"`
	Country      string `json:"country"`
	Description  string `json:"description"`
	Password     string `json:"password"`
	NewPassword  string `json:"newPassword"`
	UserRole     string `json:"userRole"`
	Wallet       string `json:"wallet"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`
}

// UserPairingDTO is posted by the wallet chat bot after a producer pairs a device
type UserPairingDTO struct {
	PairingSecret string `json:"pairingSecret"`
	DeviceAddress string `json:"deviceAddress"`
	WalletAddress string `json:"walletAddress"`
}

// AuthenticateDTO is the login request
type AuthenticateDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DetailedUserDTO is the role tagged profile. ProducerDetails is nil for receivers.
type DetailedUserDTO struct {
	UserID      uint   `json:"userId"`
	FirstName   string `json:"firstName"`
	SurName     string `json:"surName"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	UserRole    string `json:"userRole"`

	*ProducerDetails
}

// UserSummaryDTO is one entry of the producer and receiver listings
type UserSummaryDTO struct {
	UserID      uint   `json:"userId"`
	FirstName   string `json:"firstName"`
	SurName     string `json:"surName"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	City        string `json:"city,omitempty"`   // Producers only
	Wallet      string `json:"wallet,omitempty"` // Producers only
}

// ProducerDetails is the producer part of a profile
type ProducerDetails struct {
	Wallet       string `json:"wallet"`
	Device       string `json:"device"`
	PairingLink  string `json:"pairingLink"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Zipcode      string `json:"zipcode"`
	City         string `json:"city"`

	DonationStats
}

// DonationStats aggregates the applications of a producer's products
type DonationStats struct {
	CompletedDonationsPastWeekNo     int `json:"completedDonationsPastWeekNo"`
	CompletedDonationsPastWeekPrice  int `json:"completedDonationsPastWeekPrice"`
	CompletedDonationsPastMonthNo    int `json:"completedDonationsPastMonthNo"`
	CompletedDonationsPastMonthPrice int `json:"completedDonationsPastMonthPrice"`
	CompletedDonationsAllTimeNo      int `json:"completedDonationsAllTimeNo"`
	CompletedDonationsAllTimePrice   int `json:"completedDonationsAllTimePrice"`
	PendingDonationsPastWeekNo       int `json:"pendingDonationsPastWeekNo"`
	PendingDonationsPastWeekPrice    int `json:"pendingDonationsPastWeekPrice"`
	PendingDonationsPastMonthNo      int `json:"pendingDonationsPastMonthNo"`
	PendingDonationsPastMonthPrice   int `json:"pendingDonationsPastMonthPrice"`
	PendingDonationsAllTimeNo        int `json:"pendingDonationsAllTimeNo"`
	PendingDonationsAllTimePrice     int `json:"pendingDonationsAllTimePrice"`
}

// TokenDTO is returned after registration and login
type TokenDTO struct {
	Token   string           `json:"token"`
	UserDTO *DetailedUserDTO `json:"userDTO"`
}
