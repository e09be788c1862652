package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-coins-api/internal/auth"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// APIKeyHeader carries the shared key every non-health request must present
const APIKeyHeader = "x-api-key"

const identityKey = "adminIdentity"

// Validator checks one capability of a request.
// A non-nil error stops the chain and becomes the response.
type Validator func(c *gin.Context) *models.AppError

// SessionVerifier validates an admin session token
type SessionVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Chain runs the validators in order and aborts on the first rejection
func Chain(validators ...Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, validate := range validators {
			if appErr := validate(c); appErr != nil {
				AbortWithError(c, appErr)
				return
			}
		}
		c.Next()
	}
}

// AbortWithError writes the error response for appErr and stops the handler chain.
// Server-side failures are logged with their cause, which never reaches the client.
func AbortWithError(c *gin.Context, appErr *models.AppError) {
	status := appErr.Status()
	if status >= 500 {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}).WithError(appErr).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: appErr.PublicMessage()})
}

// APIKey validates the shared key header against the configured value.
// An empty expected key fails closed with a server configuration error.
func APIKey(expected string) Validator {
	return func(c *gin.Context) *models.AppError {
		if expected == "" {
			return models.NewServerConfig(errors.New("API_KEY is not configured"))
		}
		given := c.GetHeader(APIKeyHeader)
		if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
			return models.NewUnauthorized(models.MsgInvalidAPIKey)
		}
		return nil
	}
}

// AdminSession validates the Bearer session token and stores the admin identity in the context.
// Every token problem yields the same 401 message.
func AdminSession(verifier SessionVerifier) Validator {
	return func(c *gin.Context) *models.AppError {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			return models.NewUnauthorized(models.MsgInvalidToken)
		}

		identity, err := verifier.Verify(token)
		if errors.Is(err, auth.ErrNotConfigured) {
			return models.NewServerConfig(err)
		}
		if err != nil {
			log.WithError(err).Debug("Rejected admin session token")
			return models.NewUnauthorized(models.MsgInvalidToken)
		}

		c.Set(identityKey, identity)
		return nil
	}
}

// CurrentAdmin returns the identity stored by AdminSession
func CurrentAdmin(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok && identity != nil
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
