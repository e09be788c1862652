package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-coins-api/internal/config"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/franciscosanchezn/gin-coins-api/internal/services"
	"github.com/gin-gonic/gin"
)

// BalanceRequest is the body of a public balance lookup
type BalanceRequest struct {
	Email       string `json:"email" example:"user@example.com"`
	ConsultType string `json:"consultType,omitempty" example:"statement"`
}

// BalanceResponse is the public view of a coin record.
// SpendHistory is only present in the detailed lookup mode.
type BalanceResponse struct {
	Email        string               `json:"email"`
	Coins        int64                `json:"coins"`
	SpendHistory *models.SpendHistory `json:"spend_history,omitempty" swaggertype:"array,object"`
}

// CoinController serves the public balance lookup
type CoinController struct {
	service         services.CoinService
	lookupMode      string
	notFoundMessage string
}

// NewCoinController creates the public lookup handler for the given lookup mode.
// An empty notFoundMessage selects the default message of the mode.
func NewCoinController(service services.CoinService, lookupMode, notFoundMessage string) *CoinController {
	if notFoundMessage == "" {
		notFoundMessage = models.MsgFriendlyNotFound
		if lookupMode == config.LookupModeBasic {
			notFoundMessage = models.MsgEmailNotFound
		}
	}
	return &CoinController{
		service:         service,
		lookupMode:      lookupMode,
		notFoundMessage: notFoundMessage,
	}
}

// GetBalance godoc
// @Summary Look up a balance
// @Description Returns the coin balance of a user. In detailed mode the lookup is counted and the spend history is included.
// @Tags coins
// @Accept json
// @Produce json
// @Param request body BalanceRequest true "Lookup request"
// @Success 200 {object} BalanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /coins [post]
func (cc *CoinController) GetBalance(c *gin.Context) {
	fields := bindFields(c)
	email, _ := fields.str("email")

	if cc.lookupMode == config.LookupModeBasic {
		coin, err := cc.service.Balance(c.Request.Context(), email)
		if err != nil {
			cc.respondWithLookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, BalanceResponse{Email: coin.Email, Coins: coin.Coins})
		return
	}

	consultType, _ := fields.str("consultType")
	coin, err := cc.service.Lookup(c.Request.Context(), email, consultType)
	if err != nil {
		cc.respondWithLookupError(c, err)
		return
	}
	history := coin.SpendHistory
	if history == nil {
		history = models.SpendHistory{}
	}
	c.JSON(http.StatusOK, BalanceResponse{Email: coin.Email, Coins: coin.Coins, SpendHistory: &history})
}

func (cc *CoinController) respondWithLookupError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.Kind == models.KindNotFound {
		appErr = models.NewNotFound(cc.notFoundMessage)
	}
	respondWithError(c, appErr)
}
