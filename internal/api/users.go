package api

import (
	"errors"   // Sentinel comparison
	"net/http" // HTTP status codes

	"pollopollo/internal/domain"     // Roles
	"pollopollo/internal/dto"        // Request and response shapes
	"pollopollo/internal/repository" // Persistence layer
	"pollopollo/internal/storage"    // Image errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// createStatusCodes maps registration outcomes to HTTP status codes
var createStatusCodes = map[dto.UserCreateStatus]int{
	dto.CreateSuccess:        http.StatusCreated,
	dto.CreateEmailTaken:     http.StatusConflict,
	dto.CreateUnknownFailure: http.StatusInternalServerError,
}

// RegisterHandler creates a producer or receiver account and logs it in
func RegisterHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UserCreateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		status, token, err := users.Create(c.Request.Context(), &req)
		if err != nil {
			// Persistence failures collapse into UNKNOWN_FAILURE
			logrus.WithFields(logrus.Fields{"email": req.Email, "error": err.Error()}).Error("User creation failed")
		}
		code, mapped := createStatusCodes[status]
		if !mapped {
			code = http.StatusBadRequest // Every other status is a validation failure
		}
		if status != dto.CreateSuccess {
			c.JSON(code, gin.H{"error": string(status)})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": token.UserDTO.UserID, "role": token.UserDTO.UserRole}).Info("User registered")
		c.JSON(code, token)
	}
}

// AuthenticateHandler exchanges credentials for a signed token
func AuthenticateHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AuthenticateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		status, profile, token, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			internalError(c, "Authentication failed", err, nil)
			return
		}
		switch status {
		case dto.AuthSuccess:
			c.JSON(http.StatusOK, dto.TokenDTO{Token: token, UserDTO: profile}) // Return the token in the response
		case dto.AuthMissingEmail, dto.AuthMissingPassword:
			c.JSON(http.StatusBadRequest, gin.H{"error": string(status)})
		default:
			// Unknown user and wrong password look the same to the caller
			c.JSON(http.StatusUnauthorized, gin.H{"error": string(status)})
		}
	}
}

// MeHandler returns the profile of the authenticated user
func MeHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c) // Get userID from context
		if !ok {
			return
		}
		writeProfile(c, users, userID)
	}
}

// GetUserHandler returns the public profile of a user
func GetUserHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := uintParam(c, "id")
		if !ok {
			return
		}
		writeProfile(c, users, userID)
	}
}

func writeProfile(c *gin.Context, users *repository.UserRepository, userID uint) {
	profile, err := users.Find(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to load user", err, logrus.Fields{"user_id": userID})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateUserHandler edits the authenticated user's own profile
func UpdateUserHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req dto.UserUpdateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Users may only edit themselves
		if req.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot update another user"})
			return
		}
		updated, err := users.Update(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to update user", err, logrus.Fields{"user_id": userID})
			return
		}
		if !updated {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User not updated"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// UpdateUserImageHandler replaces the authenticated user's profile picture
func UpdateUserImageHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		file, err := c.FormFile("file") // Multipart upload
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
			return
		}
		defer src.Close()

		path, err := users.UpdateImage(c.Request.Context(), userID, file.Filename, src)
		writeImageResult(c, path, err, "User not found")
	}
}

// writeImageResult answers an image update. Storage errors keep their message.
func writeImageResult(c *gin.Context, path string, err error, notFound string) {
	switch {
	case errors.Is(err, storage.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		internalError(c, err.Error(), err, nil)
	case path == "":
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		c.JSON(http.StatusOK, gin.H{"thumbnail": path})
	}
}

// PairDeviceHandler stores the wallet and device the chat bot paired with a producer
func PairDeviceHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UserPairingDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		paired, err := users.UpdateDeviceAddress(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to pair device", err, nil)
			return
		}
		if !paired {
			c.JSON(http.StatusNotFound, gin.H{"error": "Producer not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// UsersByRoleHandler lists every producer or every receiver
func UsersByRoleHandler(users *repository.UserRepository, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.ReadByRole(c.Request.Context(), role)
		if err != nil {
			internalError(c, "Failed to list users", err, logrus.Fields{"role": role})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// UserByRoleHandler returns a profile when the user holds role, 404 otherwise
func UserByRoleHandler(users *repository.UserRepository, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := uintParam(c, "id")
		if !ok {
			return
		}
		profile, err := users.FindByRole(c.Request.Context(), userID, role)
		if err != nil {
			internalError(c, "Failed to load user", err, logrus.Fields{"user_id": userID, "role": role})
			return
		}
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": string(role) + " not found"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// CountProducersHandler returns the number of producers
func CountProducersHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := users.CountProducers(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to count producers", err, nil)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// CountReceiversHandler returns the number of receivers
func CountReceiversHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := users.CountReceivers(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to count receivers", err, nil)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}
