package domain

import "time"

// Role is the role enumeration stored in the user_roles table
type Role string

const (
	RoleProducer Role = "Producer"
	RoleReceiver Role = "Receiver"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleProducer || r == RoleReceiver
}

// User Model
type User struct {
	ID          uint      `gorm:"primaryKey"`                    // Primary key
	FirstName   string    `gorm:"size:255;not null"`             // First name
	SurName     string    `gorm:"size:255;not null"`             // Surname
	Email       string    `gorm:"size:191;uniqueIndex;not null"` // Unique email
	Password    string    `gorm:"size:255;not null"`             // Hashed password
	Country     string    `gorm:"size:255;not null"`             // Country
	Description string    `gorm:"type:text"`                     // Free text profile description
	Thumbnail   string    `gorm:"size:255"`                      // Image file name
	CreatedAt   time.Time // Timestamp of creation

	UserRole     *UserRole     `gorm:"constraint:OnDelete:CASCADE;"` // One-to-one role link
	Producer     *Producer     `gorm:"constraint:OnDelete:CASCADE;"` // Set when role is Producer
	Receiver     *Receiver     `gorm:"constraint:OnDelete:CASCADE;"` // Set when role is Receiver
	Products     []Product     `gorm:"constraint:OnDelete:CASCADE;"` // Products owned by a producer
	Applications []Application `gorm:"constraint:OnDelete:CASCADE;"` // Applications made by a receiver
}

// UserRole Model
type UserRole struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false;uniqueIndex"` // Part of composite key, unique per user
	Role   Role `gorm:"primaryKey;size:16"`                         // Part of composite key
}

// Producer Model
type Producer struct {
	ID            uint   `gorm:"primaryKey"`                    // Primary key
	UserID        uint   `gorm:"uniqueIndex;not null"`          // Foreign key to User
	Street        string `gorm:"size:255;not null"`             // Street name
	StreetNumber  string `gorm:"size:255;not null"`             // Street number
	Zipcode       string `gorm:"size:255"`                      // Optional zipcode
	City          string `gorm:"size:255;not null"`             // City
	PairingSecret string `gorm:"size:255;uniqueIndex;not null"` // Secret used to pair the wallet device
	DeviceAddress string `gorm:"size:255"`                      // Paired device address
	WalletAddress string `gorm:"size:255"`                      // Paired wallet address
}

// Receiver Model
type Receiver struct {
	ID     uint `gorm:"primaryKey"`           // Primary key
	UserID uint `gorm:"uniqueIndex;not null"` // Foreign key to User
}
