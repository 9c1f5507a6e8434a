package domain

import "time"

// Product Model
type Product struct {
	ID          uint      `gorm:"primaryKey"`         // Primary key
	UserID      uint      `gorm:"index;not null"`     // Foreign key to the producing User
	Title       string    `gorm:"size:255;not null"`  // Product title
	Price       int       `gorm:"not null;default:0"` // Price in smallest currency unit
	Description string    `gorm:"type:text"`          // Optional description
	Country     string    `gorm:"size:255"`           // Copied from the producer
	Location    string    `gorm:"size:255"`           // Optional location
	Available   bool      `gorm:"index"`              // Listed for receivers
	Rank        int       `gorm:"default:0"`          // Sort order, highest first
	Thumbnail   string    `gorm:"size:255"`           // Image file name
	CreatedAt   time.Time // Timestamp of creation

	Applications []Application `gorm:"constraint:OnDelete:CASCADE;"` // Applications for this product
}
