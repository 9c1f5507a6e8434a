package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Time durations

	"pollopollo/internal/dto"        // Request and response shapes
	"pollopollo/internal/repository" // Persistence layer
	"pollopollo/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Cached country and city lists live under filterCachePrefix
const (
	filterCachePrefix = "applications:filter:"
	filterCacheTTL    = 60 * time.Second
	countriesCacheKey = filterCachePrefix + "countries"
)

// invalidateFilters drops cached filter lists after an application write
func invalidateFilters(ctx context.Context, rdb *redis.Client) {
	if err := utils.DeleteCachePrefix(ctx, rdb, filterCachePrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate filter cache")
	}
}

// CreateApplicationHandler opens an application for the authenticated receiver
func CreateApplicationHandler(apps *repository.ApplicationRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c) // Get userID from context
		if !ok {
			return
		}
		var req dto.ApplicationCreateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Receivers can only apply for themselves
		if req.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot apply for another user"})
			return
		}
		created, err := apps.Create(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to create application", err, logrus.Fields{"user_id": userID})
			return
		}
		if created == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Application not created"})
			return
		}
		invalidateFilters(c.Request.Context(), rdb) // New open application may add a country or city
		logrus.WithFields(logrus.Fields{"user_id": userID, "application_id": created.ApplicationID}).Info("Application created")
		c.JSON(http.StatusCreated, created)
	}
}

// ListOpenApplicationsHandler returns a page of open applications
func ListOpenApplicationsHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		first, ok := intQuery(c, "first") // Offset
		if !ok {
			return
		}
		last, ok := intQuery(c, "last") // Page size, 0 for all
		if !ok {
			return
		}
		list, err := apps.ReadOpen(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to list applications", err, nil)
			return
		}
		from, to := pageBounds(len(list), first, last)
		c.JSON(http.StatusOK, dto.ApplicationListDTO{Count: len(list), List: list[from:to]})
	}
}

// FilteredApplicationsHandler returns open applications by producer country and city
func FilteredApplicationsHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.DefaultQuery("country", repository.FilterAll)
		city := c.DefaultQuery("city", repository.FilterAll)
		list, err := apps.ReadFiltered(c.Request.Context(), country, city)
		if err != nil {
			internalError(c, "Failed to list applications", err, logrus.Fields{"country": country, "city": city})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CompletedApplicationsHandler returns completed applications, latest donation first
func CompletedApplicationsHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := apps.ReadCompleted(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to list applications", err, nil)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ReceiverApplicationsHandler returns every application of a receiver
func ReceiverApplicationsHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		receiverID, ok := uintParam(c, "receiverId")
		if !ok {
			return
		}
		list, err := apps.ReadByReceiver(c.Request.Context(), receiverID)
		if err != nil {
			internalError(c, "Failed to list applications", err, logrus.Fields{"receiver_id": receiverID})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetApplicationHandler returns a single application
func GetApplicationHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		app, err := apps.Find(c.Request.Context(), id)
		if err != nil {
			internalError(c, "Failed to load application", err, logrus.Fields{"application_id": id})
			return
		}
		if app == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusOK, app)
	}
}

// CountriesHandler returns producer countries with open applications, cached for a minute
func CountriesHandler(apps *repository.ApplicationRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var countries []string
		if found, err := utils.GetCache(ctx, rdb, countriesCacheKey, &countries); err == nil && found {
			c.JSON(http.StatusOK, countries) // Serve from cache
			return
		}
		countries, err := apps.GetCountries(ctx)
		if err != nil {
			internalError(c, "Failed to list countries", err, nil)
			return
		}
		_ = utils.SetCache(ctx, rdb, countriesCacheKey, countries, filterCacheTTL) // Cache for 60 seconds
		c.JSON(http.StatusOK, countries)
	}
}

// CitiesHandler returns producer cities with open applications in a country
func CitiesHandler(apps *repository.ApplicationRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		country := c.Query("country")
		if country == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing country"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := filterCachePrefix + "cities:" + country // Cache key per country
		var cities []string
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cities); err == nil && found {
			c.JSON(http.StatusOK, cities)
			return
		}
		cities, err := apps.GetCities(ctx, country)
		if err != nil {
			internalError(c, "Failed to list cities", err, logrus.Fields{"country": country})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, cities, filterCacheTTL)
		c.JSON(http.StatusOK, cities)
	}
}

// UpdateApplicationHandler moves an application to a new status. Called by the chat bot.
func UpdateApplicationHandler(apps *repository.ApplicationRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ApplicationUpdateDTO // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updated, email, err := apps.Update(c.Request.Context(), &req)
		if err != nil {
			internalError(c, "Failed to update application", err, logrus.Fields{"application_id": req.ApplicationID})
			return
		}
		if !updated {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not updated"})
			return
		}
		invalidateFilters(c.Request.Context(), rdb) // Status change may empty a country or city
		c.JSON(http.StatusOK, email)
	}
}

// DeleteApplicationHandler withdraws an open application of the authenticated receiver
func DeleteApplicationHandler(apps *repository.ApplicationRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := currentUser(c)
		if !ok {
			return
		}
		userID, ok := uintParam(c, "userId")
		if !ok {
			return
		}
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		if userID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete another user's application"})
			return
		}
		deleted, err := apps.Delete(c.Request.Context(), userID, id)
		if err != nil {
			internalError(c, "Failed to delete application", err, logrus.Fields{"application_id": id})
			return
		}
		if !deleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Application not deleted"})
			return
		}
		invalidateFilters(c.Request.Context(), rdb)
		c.Status(http.StatusNoContent)
	}
}

// ContractInformationHandler returns the data the chat bot needs to set up an escrow
func ContractInformationHandler(apps *repository.ApplicationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		info, err := apps.GetContractInformation(c.Request.Context(), id)
		if err != nil {
			internalError(c, "Failed to load contract information", err, logrus.Fields{"application_id": id})
			return
		}
		if info == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
