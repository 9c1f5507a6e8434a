package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"pollopollo/internal/middleware" // Context accessors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// uintParam parses a positive numeric path parameter and answers 400 when it is not one
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// intQuery parses an optional non-negative query parameter
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return v, true
}

// currentUser returns the caller's id and answers 401 when the token did not carry one
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}

// internalError logs err with the request context and answers 500
func internalError(c *gin.Context, msg string, err error, fields logrus.Fields) {
	entry := logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(), // Route template
		"error": err.Error(),  // Error message
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// pageBounds clamps an offset and count to a list of n items. A count of zero means
// the rest of the list.
func pageBounds(n, first, last int) (int, int) {
	if first > n {
		first = n
	}
	end := n
	if last > 0 && last < n-first {
		end = first + last
	}
	return first, end
}
