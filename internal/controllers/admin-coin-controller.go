package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-coins-api/internal/middleware"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/franciscosanchezn/gin-coins-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CreateCoinRequest is the body of a record creation
type CreateCoinRequest struct {
	Name  string `json:"name" example:"Ana"`
	Email string `json:"email" example:"ana@example.com"`
	Coins int64  `json:"coins,omitempty" example:"10"`
}

// UpdateCoinRequest is the body of a partial update. Coins wins over CoinsDelta.
type UpdateCoinRequest struct {
	Email        string        `json:"email" example:"ana@example.com"`
	Coins        *int64        `json:"coins,omitempty" example:"10"`
	CoinsDelta   *int64        `json:"coinsDelta,omitempty" example:"-5"`
	Name         *string       `json:"name,omitempty" example:"Ana Maria"`
	SpendHistory []interface{} `json:"spend_history,omitempty"`
}

// DeleteCoinRequest is the body of a record deletion
type DeleteCoinRequest struct {
	Email string `json:"email" example:"ana@example.com"`
}

// ListCoinsResponse wraps the records returned by the admin listing
type ListCoinsResponse struct {
	Items []models.Coin `json:"items"`
	Count int           `json:"count"`
}

// AdminCoinController handles the admin record management endpoints
type AdminCoinController interface {
	// ListCoins returns the records matching the optional name and email filters
	ListCoins(c *gin.Context)
	// CreateCoin creates a record
	CreateCoin(c *gin.Context)
	// UpdateCoin applies a partial update to a record
	UpdateCoin(c *gin.Context)
	// DeleteCoin removes a record
	DeleteCoin(c *gin.Context)
}

type adminCoinController struct {
	service services.CoinService
}

// NewAdminCoinController creates a new instance of AdminCoinController
func NewAdminCoinController(service services.CoinService) AdminCoinController {
	return &adminCoinController{service: service}
}

// ListCoins godoc
// @Summary List records
// @Description Lists coin records, newest first, with optional case-insensitive substring filters
// @Tags admin
// @Produce json
// @Param name query string false "Filter by name (partial match)"
// @Param email query string false "Filter by email (partial match)"
// @Success 200 {object} ListCoinsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/coins [get]
func (ac *adminCoinController) ListCoins(c *gin.Context) {
	filter := services.CoinFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
	}

	coins, err := ac.service.List(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListCoinsResponse{Items: coins, Count: len(coins)})
}

// CreateCoin godoc
// @Summary Create a record
// @Description Creates a coin record. coins defaults to 0 when omitted; null or a non-numeric value is rejected
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateCoinRequest true "New record"
// @Success 201 {object} models.Coin
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/coins [post]
func (ac *adminCoinController) CreateCoin(c *gin.Context) {
	fields := bindFields(c)

	name, ok := fields.str("name")
	if !ok || strings.TrimSpace(name) == "" {
		respondWithError(c, models.NewBadRequest(services.MsgNameRequired))
		return
	}
	email, ok := fields.str("email")
	if !ok || strings.TrimSpace(email) == "" {
		respondWithError(c, models.NewBadRequest(models.MsgEmailRequired))
		return
	}

	input := services.CreateCoinInput{Name: name, Email: email}
	if fields.has("coins") {
		coins, ok := fields.integer("coins")
		if !ok {
			respondWithError(c, models.NewBadRequest(services.MsgCoinsNonNegative))
			return
		}
		input.Coins = &coins
	}

	coin, err := ac.service.Create(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log.WithFields(log.Fields{"email": coin.Email, "admin": adminEmail(c)}).Info("Coin record created")
	c.JSON(http.StatusCreated, coin)
}

// UpdateCoin godoc
// @Summary Update a record
// @Description Sets the balance (coins) or adjusts it atomically (coinsDelta), and updates name or spend history. A delta that would make the balance negative is rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body UpdateCoinRequest true "Fields to update"
// @Success 200 {object} models.Coin
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/coins [patch]
func (ac *adminCoinController) UpdateCoin(c *gin.Context) {
	fields := bindFields(c)

	email, ok := fields.str("email")
	if !ok || strings.TrimSpace(email) == "" {
		respondWithError(c, models.NewBadRequest(models.MsgEmailRequired))
		return
	}
	if !fields.has("coins") && !fields.has("coinsDelta") && !fields.has("name") && !fields.has("spend_history") {
		respondWithError(c, models.NewBadRequest(services.MsgUpdateFieldMissing))
		return
	}

	input := services.UpdateCoinInput{Email: email}
	if fields.has("name") {
		name, ok := fields.str("name")
		if !ok {
			respondWithError(c, models.NewBadRequest("Name must be a string"))
			return
		}
		input.Name = &name
	}
	if fields.has("spend_history") {
		history, ok := fields.spendHistory("spend_history")
		if !ok {
			respondWithError(c, models.NewBadRequest("spend_history must be an array"))
			return
		}
		input.SpendHistory = &history
	}
	if fields.has("coins") {
		coins, ok := fields.integer("coins")
		if !ok || coins < 0 {
			respondWithError(c, models.NewBadRequest(models.MsgCoinsNegative))
			return
		}
		input.Coins = &coins
	} else if fields.has("coinsDelta") {
		delta, ok := fields.integer("coinsDelta")
		if !ok {
			respondWithError(c, models.NewBadRequest("coinsDelta must be a valid number"))
			return
		}
		input.CoinsDelta = &delta
	}

	coin, err := ac.service.Update(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log.WithFields(log.Fields{"email": coin.Email, "coins": coin.Coins, "admin": adminEmail(c)}).Info("Coin record updated")
	c.JSON(http.StatusOK, coin)
}

// DeleteCoin godoc
// @Summary Delete a record
// @Description Deletes the coin record of an email
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DeleteCoinRequest true "Record to delete"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/coins [delete]
func (ac *adminCoinController) DeleteCoin(c *gin.Context) {
	fields := bindFields(c)

	email, ok := fields.str("email")
	if !ok || strings.TrimSpace(email) == "" {
		respondWithError(c, models.NewBadRequest(models.MsgEmailRequired))
		return
	}

	if err := ac.service.Delete(c.Request.Context(), email); err != nil {
		respondWithError(c, err)
		return
	}

	log.WithFields(log.Fields{"email": services.NormalizeEmail(email), "admin": adminEmail(c)}).Info("Coin record deleted")
	c.JSON(http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}

func adminEmail(c *gin.Context) string {
	if identity, ok := middleware.CurrentAdmin(c); ok {
		return identity.Email
	}
	return ""
}
