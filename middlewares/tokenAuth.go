package middlewares

import (
	"MediBook/utils"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKey defines a custom context key type to store doctor details in the context.
type contextKey string

const (
	doctorIDKey contextKey = "doctorID"
	regNoKey    contextKey = "regNo"
)

// DoctorAuthMiddleware validates the doctor's access token and adds the
// resolved doctor identity to the request context. Every tenant-scoped
// handler downstream reads the doctor id from here, never from the
// request payload.
func DoctorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		doctorID, err := claims.DoctorIDValue()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), doctorIDKey, doctorID)
		ctx = context.WithValue(ctx, regNoKey, claims.RegNo)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractAccessToken pulls the token from the X-Access-Token header,
// falling back to the accessToken query parameter.
func extractAccessToken(c *gin.Context) string {
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return c.DefaultQuery("accessToken", "")
}

// ExtractDoctorIDFromContext retrieves the doctor id from the context.
func ExtractDoctorIDFromContext(ctx context.Context) (uint, error) {
	doctorID, ok := ctx.Value(doctorIDKey).(uint)
	if !ok {
		return 0, errors.New("doctor ID not found in context")
	}
	return doctorID, nil
}

// ExtractRegNoFromContext retrieves the doctor's registration number from the context.
func ExtractRegNoFromContext(ctx context.Context) (string, error) {
	regNo, ok := ctx.Value(regNoKey).(string)
	if !ok {
		return "", errors.New("registration number not found in context")
	}
	return regNo, nil
}
