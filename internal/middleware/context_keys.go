package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = contextKey("userID")
	clinicIDKey = contextKey("clinicID")
)

// WithIdentity returns a copy of ctx carrying the authenticated user and clinic.
func WithIdentity(ctx context.Context, userID, clinicID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, clinicIDKey, clinicID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetClinicIDFromContext retrieves the tenant of the authenticated user.
func GetClinicIDFromContext(c *gin.Context) (string, bool) {
	clinicID, ok := c.Request.Context().Value(clinicIDKey).(string)
	return clinicID, ok && clinicID != ""
}
