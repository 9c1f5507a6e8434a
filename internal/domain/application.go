package domain

import "time"

// ApplicationStatus is the workflow state of an application
type ApplicationStatus string

const (
	StatusOpen      ApplicationStatus = "Open"
	StatusPending   ApplicationStatus = "Pending"
	StatusCompleted ApplicationStatus = "Completed"
)

// Valid reports whether s is one of the known states
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// Application Model
type Application struct {
	ID             uint              `gorm:"primaryKey"`         // Primary key
	UserID         uint              `gorm:"index;not null"`     // Foreign key to the receiving User
	ProductID      uint              `gorm:"index;not null"`     // Foreign key to Product
	Motivation     string            `gorm:"type:text;not null"` // Why the receiver needs the product
	Status         ApplicationStatus `gorm:"size:16;index;not null"`
	CreatedAt      time.Time         // Timestamp of creation
	LastModified   time.Time         // Timestamp of the last status change
	DateOfDonation *time.Time        // Set when a donation is made, cleared on reopen
	UnitID         string            `gorm:"size:44"` // Obyte unit of the donation

	Contract *Contract `gorm:"constraint:OnDelete:CASCADE;"` // Escrow contract, if any
}

// Contract Model
type Contract struct {
	ApplicationID  uint       `gorm:"primaryKey;autoIncrement:false"` // One-to-one with Application
	Bytes          int64      // Amount held in escrow
	Price          *int       // Product price at contract time
	ConfirmKey     string     `gorm:"size:255"`
	Completed      bool       // Set when the escrow has been released
	CreationTime   *time.Time // When the contract was established
	DonorDevice    string     `gorm:"size:255"`
	DonorWallet    string     `gorm:"size:255"`
	ProducerDevice string     `gorm:"size:255"`
	ProducerWallet string     `gorm:"size:255"`
	SharedAddress  string     `gorm:"size:255"` // Shared smart wallet address
}
