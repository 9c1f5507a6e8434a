package dto

// DonorFromAaDepositDTO identifies a donor account created by a deposit to the autonomous agent
type DonorFromAaDepositDTO struct {
	AccountID     string `json:"accountId"`
	WalletAddress string `json:"walletAddress"`
}

// DonorBalanceDTO is a donor's balance in bytes and USD
type DonorBalanceDTO struct {
	BalanceInBytes int64   `json:"balanceInBytes"`
	BalanceInUSD   float64 `json:"balanceInUSD"`
}

// ExchangeRateDTO carries the current GBYTE/USD rate
type ExchangeRateDTO struct {
	GBYTEUSD float64 `json:"gbyteUsd"`
}
