package middleware

import (
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/gin-gonic/gin"
)

// HasRole checks that the admin identity set by AdminSession carries the required role
func HasRole(requiredRole string) Validator {
	return func(c *gin.Context) *models.AppError {
		identity, ok := CurrentAdmin(c)
		if !ok {
			return models.NewUnauthorized(models.MsgInvalidToken)
		}
		if identity.Role != requiredRole {
			return models.NewForbidden("Insufficient permissions")
		}
		return nil
	}
}

// RequireRole is a middleware that checks if the admin has the required role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return Chain(HasRole(requiredRole))
}
