package domain

// Donor Model
type Donor struct {
	ID            uint   `gorm:"primaryKey"`                    // Primary key
	AaAccount     string `gorm:"size:128;uniqueIndex;not null"` // Account id in the autonomous agent
	WalletAddress string `gorm:"size:34;not null"`              // Donor wallet
	DeviceAddress string `gorm:"size:34"`                       // Donor device, if known
	Email         string `gorm:"size:256"`                      // Optional contact email
}

// ByteExchangeRate Model, a single row
type ByteExchangeRate struct {
	ID       uint    `gorm:"primaryKey"`                          // Primary key
	GBYTEUSD float64 `gorm:"column:gbyte_usd;not null;default:0"` // USD per GBYTE
}

// TableName keeps the singular table name
func (ByteExchangeRate) TableName() string {
	return "byte_exchange_rate"
}
