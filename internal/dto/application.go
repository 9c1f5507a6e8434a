package dto

import (
	"time"

	"pollopollo/internal/domain"
)

// ApplicationCreateDTO is a receiver's request for a product
type ApplicationCreateDTO struct {
	UserID     uint   `json:"userId"`
	ProductID  uint   `json:"productId"`
	Motivation string `json:"motivation"`
}

// ApplicationUpdateDTO moves an application to a new status
type ApplicationUpdateDTO struct {
	ApplicationID uint                     `json:"applicationId"`
	ReceiverID    uint                     `json:"receiverId"`
	Status        domain.ApplicationStatus `json:"status"`
}

// ApplicationDTO is the read projection of an application
type ApplicationDTO struct {
	ApplicationID  uint                     `json:"applicationId"`
	ReceiverID     uint                     `json:"receiverId"`
	ReceiverName   string                   `json:"receiverName"`
	Country        string                   `json:"country"`
	Thumbnail      string                   `json:"thumbnail"`
	ProductID      uint                     `json:"productId"`
	ProductTitle   string                   `json:"productTitle"`
	ProductPrice   int                      `json:"productPrice"`
	ProducerID     uint                     `json:"producerId"`
	Motivation     string                   `json:"motivation"`
	Status         domain.ApplicationStatus `json:"status"`
	CreationDate   string                   `json:"creationDate"`
	DateOfDonation string                   `json:"dateOfDonation,omitempty"`
}

// EmailResult reports whether the notification of a transition went out
type EmailResult struct {
	Sent  bool   `json:"emailSent"`
	Error string `json:"emailError,omitempty"`
}

// ContractInformationDTO seeds a new escrow contract
type ContractInformationDTO struct {
	ProducerDevice string `json:"producerDevice"`
	ProducerWallet string `json:"producerWallet"`
	Price          int    `json:"price"`
}

// ContractCreateDTO is posted by the chat bot once an escrow is established
type ContractCreateDTO struct {
	ApplicationID  uint   `json:"applicationId"`
	Bytes          int64  `json:"bytes"`
	Price          *int   `json:"price"`
	ConfirmKey     string `json:"confirmKey"`
	DonorDevice    string `json:"donorDevice"`
	DonorWallet    string `json:"donorWallet"`
	ProducerDevice string `json:"producerDevice"`
	ProducerWallet string `json:"producerWallet"`
	SharedAddress  string `json:"sharedAddress"`
	UnitID         string `json:"unitId"`
}

// ApplicationListDTO is one page of open applications and the total count
type ApplicationListDTO struct {
	Count int              `json:"count"`
	List  []ApplicationDTO `json:"list"`
}

// ContractDTO is the read projection of an escrow contract
type ContractDTO struct {
	ApplicationID  uint       `json:"applicationId"`
	Bytes          int64      `json:"bytes"`
	Price          *int       `json:"price"`
	ConfirmKey     string     `json:"confirmKey"`
	Completed      bool       `json:"completed"`
	CreationTime   *time.Time `json:"creationTime"`
	DonorDevice    string     `json:"donorDevice"`
	DonorWallet    string     `json:"donorWallet"`
	ProducerDevice string     `json:"producerDevice"`
	ProducerWallet string     `json:"producerWallet"`
	SharedAddress  string     `json:"sharedAddress"`
}

// NewContractDTO projects a stored contract
func NewContractDTO(c *domain.Contract) ContractDTO {
	return ContractDTO{
		ApplicationID:  c.ApplicationID,
		Bytes:          c.Bytes,
		Price:          c.Price,
		ConfirmKey:     c.ConfirmKey,
		Completed:      c.Completed,
		CreationTime:   c.CreationTime,
		DonorDevice:    c.DonorDevice,
		DonorWallet:    c.DonorWallet,
		ProducerDevice: c.ProducerDevice,
		ProducerWallet: c.ProducerWallet,
		SharedAddress:  c.SharedAddress,
	}
}
