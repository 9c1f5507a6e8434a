package middleware

import (
	"net/http"                   // HTTP status codes
	"pollopollo/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RoleMiddleware checks the user's role from the database on each request and only lets
// the given roles through
func RoleMiddleware(db *gorm.DB, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := UserID(c) // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var link domain.UserRole // Fetch role link from database
		if err := db.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&link).Error; err != nil {
			// If role not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not permitted"})
			return
		}
		// Check if the stored role is one of the allowed roles
		for _, role := range roles {
			if link.Role == role {
				c.Set(ContextUserRole, string(link.Role)) // Refresh role in context
				c.Next()                                  // Proceed to the next handler
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not permitted"})
	}
}
