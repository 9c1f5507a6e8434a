package api

import (
	"net/http" // HTTP status codes

	"pollopollo/internal/dto"        // Request and response shapes
	"pollopollo/internal/repository" // Persistence layer

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// CreateContractHandler stores an escrow contract reported by the chat bot
func CreateContractHandler(contracts *repository.ContractRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ContractCreateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		created, err := contracts.Create(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to create contract", err, logrus.Fields{"application_id": req.ApplicationID})
			return
		}
		if !created {
			c.JSON(http.StatusConflict, gin.H{"error": "Contract not created"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"application_id": req.ApplicationID, // Application the escrow belongs to
			"bytes":          req.Bytes,         // Escrowed amount
		}).Info("Contract created")
		c.JSON(http.StatusCreated, gin.H{"message": "Contract created"})
	}
}

// GetContractHandler returns the escrow contract of an application
func GetContractHandler(contracts *repository.ContractRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "applicationId")
		if !ok {
			return
		}
		contract, err := contracts.Find(c.Request.Context(), id)
		if err != nil {
			internalError(c, "Failed to load contract", err, logrus.Fields{"application_id": id})
			return
		}
		if contract == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusOK, dto.NewContractDTO(contract))
	}
}

// CreateDonorHandler registers a donor after a deposit to the autonomous agent
func CreateDonorHandler(donors *repository.DonorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.DonorFromAaDepositDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.AccountID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		exists, created, err := donors.CreateAccountIfNotExists(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to create donor", err, logrus.Fields{"aa_account": req.AccountID})
			return
		}
		code := http.StatusOK // Already known
		if created {
			code = http.StatusCreated
		}
		c.JSON(code, gin.H{"exists": exists, "created": created})
	}
}

// DeleteDonorHandler removes a donor account
func DeleteDonorHandler(donors *repository.DonorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Param("aaAccount")
		deleted, err := donors.Delete(c.Request.Context(), account)
		if err != nil {
			internalError(c, "Failed to delete donor", err, logrus.Fields{"aa_account": account})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DonorBalanceHandler relays the donor balance from the chat bot, converted to USD
func DonorBalanceHandler(donors *repository.DonorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Param("aaAccount")
		ok, status, balance, err := donors.GetBalance(c.Request.Context(), account)
		if err != nil {
			logrus.WithFields(logrus.Fields{"aa_account": account, "error": err.Error()}).Error("Balance lookup failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Balance lookup failed"})
			return
		}
		if !ok {
			c.JSON(status, gin.H{"error": "Balance not available"}) // Relay the bot's status
			return
		}
		c.JSON(http.StatusOK, balance)
	}
}

// GetExchangeRateHandler returns the stored GBYTE/USD rate
func GetExchangeRateHandler(rates *repository.ExchangeRateRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rate, err := rates.Get(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to load exchange rate", err, nil)
			return
		}
		c.JSON(http.StatusOK, dto.ExchangeRateDTO{GBYTEUSD: rate})
	}
}

// SetExchangeRateHandler overwrites the GBYTE/USD rate
func SetExchangeRateHandler(rates *repository.ExchangeRateRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ExchangeRateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.GBYTEUSD <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate"})
			return
		}
		if err := rates.Set(c.Request.Context(), req.GBYTEUSD); err != nil {
			internalError(c, "Failed to store exchange rate", err, nil)
			return
		}
		logrus.WithField("gbyte_usd", req.GBYTEUSD).Info("Exchange rate updated")
		c.Status(http.StatusNoContent)
	}
}
