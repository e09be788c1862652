package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsultTypeStatement marks a lookup made to display the spend statement
const ConsultTypeStatement = "statement"

// Validation messages of the admin operations
const (
	MsgNameRequired       = "Name is required"
	MsgCoinsNonNegative   = "Coins must be a non-negative number"
	MsgUpdateFieldMissing = `At least one of "coins", "coinsDelta", "name", or "spend_history" is required`
	MsgCoinsOutOfRange    = "Coins value is out of range"
)

// CoinFilter narrows List with case-insensitive substring matches; empty fields are ignored
type CoinFilter struct {
	Name  string
	Email string
}

// CreateCoinInput is the payload of a new record. Coins defaults to 0 when nil
type CreateCoinInput struct {
	Name  string
	Email string
	Coins *int64
}

// UpdateCoinInput is a partial update; nil fields are left untouched.
// Coins wins over CoinsDelta when both are set.
type UpdateCoinInput struct {
	Email        string
	Coins        *int64
	CoinsDelta   *int64
	Name         *string
	SpendHistory *models.SpendHistory
}

// CoinService provides access to the coins table.
// Errors are *models.AppError values carrying the HTTP-facing classification.
type CoinService interface {
	// Lookup returns the record of a user and bumps the matching consult counter
	Lookup(ctx context.Context, email, consultType string) (*models.Coin, error)
	// Balance returns the record of a user without side effects
	Balance(ctx context.Context, email string) (*models.Coin, error)
	// List returns the records matching the filter, most recently created first
	List(ctx context.Context, filter CoinFilter) ([]models.Coin, error)
	// Create inserts a new record; a duplicate email is a conflict
	Create(ctx context.Context, input CreateCoinInput) (*models.Coin, error)
	// Update applies a partial update and returns the updated record
	Update(ctx context.Context, input UpdateCoinInput) (*models.Coin, error)
	// Delete removes the record of a user
	Delete(ctx context.Context, email string) error
}

// coinService is the gorm implementation of CoinService
type coinService struct {
	db           *gorm.DB
	queryTimeout time.Duration
	now          func() time.Time
}

// NewCoinService creates a CoinService on a shared connection pool.
// queryTimeout bounds every call; zero disables the bound.
func NewCoinService(db *gorm.DB, queryTimeout time.Duration) CoinService {
	return &coinService{db: db, queryTimeout: queryTimeout, now: time.Now}
}

func (s *coinService) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.queryTimeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		return s.db.WithContext(ctx), cancel
	}
	return s.db.WithContext(ctx), func() {}
}

// validatedEmail normalizes a public lookup email and checks its shape
func validatedEmail(email string) (string, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return "", models.NewBadRequest(models.MsgEmailRequired)
	}
	if !IsValidEmail(normalized) {
		return "", models.NewBadRequest(models.MsgEmailInvalid)
	}
	return normalized, nil
}

func (s *coinService) findByEmail(db *gorm.DB, email string) (*models.Coin, error) {
	var coin models.Coin
	if err := db.Where("email = ?", email).First(&coin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound(models.MsgEmailNotFound)
		}
		return nil, models.NewInternal("find coin by email", err)
	}
	return &coin, nil
}

func (s *coinService) Balance(ctx context.Context, email string) (*models.Coin, error) {
	normalized, err := validatedEmail(email)
	if err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()
	return s.findByEmail(db, normalized)
}

func (s *coinService) Lookup(ctx context.Context, email, consultType string) (*models.Coin, error) {
	normalized, err := validatedEmail(email)
	if err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()

	coin, err := s.findByEmail(db, normalized)
	if err != nil {
		return nil, err
	}

	counter := "user_consults_quantity"
	if consultType == ConsultTypeStatement {
		counter = "statement_consults_quantity"
	}
	now := s.now()
	bump := db.Model(&models.Coin{}).Where("email = ?", normalized).UpdateColumns(map[string]interface{}{
		counter:             gorm.Expr(counter + " + 1"),
		"user_consulted_at": now,
		"updated_at":        now,
	})
	if bump.Error != nil {
		// The lookup already succeeded; a lost counter bump is not worth failing it
		log.WithError(bump.Error).WithFields(log.Fields{
			"email":   normalized,
			"counter": counter,
		}).Warn("Failed to record balance consult")
	}

	return coin, nil
}

func (s *coinService) List(ctx context.Context, filter CoinFilter) ([]models.Coin, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	query := db.Model(&models.Coin{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	coins := []models.Coin{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&coins).Error; err != nil {
		return nil, models.NewInternal("list coins", err)
	}
	return coins, nil
}

func (s *coinService) Create(ctx context.Context, input CreateCoinInput) (*models.Coin, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.NewBadRequest(MsgNameRequired)
	}
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, models.NewBadRequest(models.MsgEmailRequired)
	}
	var balance int64
	if input.Coins != nil {
		balance = *input.Coins
	}
	if balance < 0 {
		return nil, models.NewBadRequest(MsgCoinsNonNegative)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	coin := &models.Coin{
		Name:         name,
		Email:        email,
		Coins:        balance,
		SpendHistory: models.SpendHistory{},
	}
	if err := db.Create(coin).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, models.NewConflict(models.MsgEmailExists)
		}
		return nil, models.NewInternal("create coin", err)
	}
	return coin, nil
}

func (s *coinService) Update(ctx context.Context, input UpdateCoinInput) (*models.Coin, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, models.NewBadRequest(models.MsgEmailRequired)
	}
	if input.Coins == nil && input.CoinsDelta == nil && input.Name == nil && input.SpendHistory == nil {
		return nil, models.NewBadRequest(MsgUpdateFieldMissing)
	}
	if input.Coins != nil && *input.Coins < 0 {
		return nil, models.NewBadRequest(models.MsgCoinsNegative)
	}

	now := s.now()
	updates := map[string]interface{}{
		"admin_consulted_at": now,
		"updated_at":         now,
	}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.SpendHistory != nil {
		history := *input.SpendHistory
		if history == nil {
			history = models.SpendHistory{}
		}
		updates["spend_history"] = history
	}

	var delta *int64
	if input.Coins != nil {
		updates["coins"] = *input.Coins
	} else if input.CoinsDelta != nil {
		delta = input.CoinsDelta
		updates["coins"] = gorm.Expr("coins + ?", *delta)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	var updated models.Coin
	err := db.Transaction(func(tx *gorm.DB) error {
		// The bounds check lives in the same statement as the write so concurrent deltas cannot overdraw
		query := tx.Model(&models.Coin{}).Where("email = ?", email)
		if delta != nil {
			query = query.Where(deltaBounds(*delta))
		}
		result := query.Updates(updates)
		if result.Error != nil {
			return models.NewInternal("update coin", result.Error)
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Coin{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return models.NewInternal("count coin", err)
			}
			if count == 0 {
				return models.NewNotFound(models.MsgEmailNotFound)
			}
			if delta != nil && *delta > 0 {
				return models.NewBadRequest(MsgCoinsOutOfRange)
			}
			return models.NewBadRequest(models.MsgCoinsNegative)
		}

		if err := tx.Where("email = ?", email).First(&updated).Error; err != nil {
			return models.NewInternal("reload coin", err)
		}
		return nil
	})
	if err != nil {
		return nil, models.AsAppError(err)
	}
	return &updated, nil
}

func (s *coinService) Delete(ctx context.Context, email string) error {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return models.NewBadRequest(models.MsgEmailRequired)
	}

	db, cancel := s.session(ctx)
	defer cancel()

	result := db.Where("email = ?", normalized).Delete(&models.Coin{})
	if result.Error != nil {
		return models.NewInternal("delete coin", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound(models.MsgEmailNotFound)
	}
	return nil
}

// deltaBounds keeps coins + delta within [0, MaxInt64] without computing the sum in the store
func deltaBounds(delta int64) clause.Expr {
	if delta > 0 {
		return gorm.Expr("coins <= ?", math.MaxInt64-delta)
	}
	// coins + delta >= 0  <=>  coins > -(delta+1), which cannot overflow for delta == MinInt64
	return gorm.Expr("coins > ?", -(delta + 1))
}

// isDuplicateKey recognizes unique violations, translated or raw
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}
