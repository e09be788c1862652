package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-coins-api/internal/auth"
	"github.com/franciscosanchezn/gin-coins-api/internal/middleware"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/gin-gonic/gin"
)

// LoginRequest is the body of an admin login
type LoginRequest struct {
	Email    string `json:"email" example:"admin@example.com"`
	Password string `json:"password" example:"secret"`
}

// LoginResponse carries a new admin session token
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Authenticator checks admin credentials and issues session tokens
type Authenticator interface {
	Login(email, password string) (token string, adminEmail string, err error)
}

type AuthController struct {
	authenticator Authenticator
}

func NewAuthController(authenticator Authenticator) *AuthController {
	return &AuthController{authenticator: authenticator}
}

// Login godoc
// @Summary Admin login
// @Description Exchanges the admin credentials for a session token
// @Tags admin
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	fields := bindFields(c)
	email, _ := fields.str("email")
	password, _ := fields.str("password")

	if strings.TrimSpace(email) == "" || password == "" {
		respondWithError(c, models.NewBadRequest("Email and password are required"))
		return
	}

	token, adminEmail, err := ac.authenticator.Login(email, password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, LoginResponse{Token: token, Email: adminEmail})
	case errors.Is(err, auth.ErrMissingCredentials):
		respondWithError(c, models.NewBadRequest("Email and password are required"))
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondWithError(c, models.NewUnauthorized(models.MsgInvalidCreds))
	case errors.Is(err, auth.ErrNotConfigured):
		respondWithError(c, models.NewServerConfig(err))
	default:
		respondWithError(c, models.NewInternal("issue session token", err))
	}
}

// Me godoc
// @Summary Current admin
// @Description Returns the identity carried by the session token
// @Tags admin
// @Produce json
// @Success 200 {object} auth.Identity
// @Failure 401 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := middleware.CurrentAdmin(c)
	if !ok {
		respondWithError(c, models.NewUnauthorized(models.MsgInvalidToken))
		return
	}
	c.JSON(http.StatusOK, identity)
}
