package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the only role a session token can carry
const RoleAdmin = "admin"

// DefaultSessionTTL is used when no expiry is configured
const DefaultSessionTTL = 8 * time.Hour

// Session errors
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotConfigured      = errors.New("session authentication not configured")
)

// Identity is the admin identity asserted by a valid session token
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Claims is the JWT payload of a session token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SessionConfig holds the secrets a SessionManager needs
type SessionConfig struct {
	Secret    string
	ExpiresIn time.Duration

	AdminEmail string
	// AdminPassword is compared byte for byte; AdminPasswordHash, when set, is a bcrypt hash and wins
	AdminPassword     string
	AdminPasswordHash string
}

// SessionManager verifies the admin credentials, issues session tokens and validates them
type SessionManager struct {
	cfg SessionConfig
	now func() time.Time
}

// NewSessionManager creates a SessionManager. Missing secrets are reported per call with ErrNotConfigured
func NewSessionManager(cfg SessionConfig) *SessionManager {
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = DefaultSessionTTL
	}
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	return &SessionManager{cfg: cfg, now: time.Now}
}

// Login checks the admin credentials and returns a signed token plus the canonical admin email.
// Wrong email and wrong password are indistinguishable to the caller.
func (m *SessionManager) Login(email, password string) (string, string, error) {
	if email == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	if m.cfg.AdminEmail == "" || (m.cfg.AdminPassword == "" && m.cfg.AdminPasswordHash == "") {
		return "", "", fmt.Errorf("%w: admin credentials missing", ErrNotConfigured)
	}
	if m.cfg.Secret == "" {
		return "", "", fmt.Errorf("%w: signing secret missing", ErrNotConfigured)
	}

	given := strings.ToLower(strings.TrimSpace(email))
	expected := strings.ToLower(m.cfg.AdminEmail)
	emailMatch := subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
	passwordMatch := m.checkPassword(password)

	if !emailMatch || !passwordMatch {
		return "", "", ErrInvalidCredentials
	}

	token, err := m.Issue(m.cfg.AdminEmail)
	if err != nil {
		return "", "", err
	}
	return token, m.cfg.AdminEmail, nil
}

func (m *SessionManager) checkPassword(password string) bool {
	if m.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(m.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(m.cfg.AdminPassword)) == 1
}

// Issue signs a session token for the given admin email
func (m *SessionManager) Issue(email string) (string, error) {
	if m.cfg.Secret == "" {
		return "", fmt.Errorf("%w: signing secret missing", ErrNotConfigured)
	}

	now := m.now()
	claims := &Claims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

// Verify validates signature, algorithm and expiry and returns the identity the token asserts.
// Every failure is reported as ErrInvalidToken, wrapped with the detail for logs.
func (m *SessionManager) Verify(tokenString string) (*Identity, error) {
	if m.cfg.Secret == "" {
		return nil, fmt.Errorf("%w: signing secret missing", ErrNotConfigured)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing email or role claim", ErrInvalidToken)
	}

	return &Identity{Email: claims.Email, Role: claims.Role}, nil
}
