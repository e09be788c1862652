package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-jwt-secret-key-32-characters"

func newTestManager() *SessionManager {
	return NewSessionManager(SessionConfig{
		Secret:        testSecret,
		ExpiresIn:     time.Hour,
		AdminEmail:    " Admin@Example.com ",
		AdminPassword: "correct-horse",
	})
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	manager := newTestManager()

	token, email, err := manager.Login("  ADMIN@example.COM", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Admin@Example.com", email)
	assert.Contains(t, token, ".")

	identity, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Admin@Example.com", identity.Email)
	assert.Equal(t, RoleAdmin, identity.Role)
}

func TestLoginRejectsWrongCredentialsGenerically(t *testing.T) {
	manager := newTestManager()

	_, _, errEmail := manager.Login("other@example.com", "correct-horse")
	_, _, errPassword := manager.Login("admin@example.com", "wrong")

	assert.ErrorIs(t, errEmail, ErrInvalidCredentials)
	assert.ErrorIs(t, errPassword, ErrInvalidCredentials)
	assert.Equal(t, errEmail.Error(), errPassword.Error())
}

func TestLoginRequiresBothFields(t *testing.T) {
	manager := newTestManager()

	_, _, err := manager.Login("", "correct-horse")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, _, err = manager.Login("admin@example.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoginWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	manager := NewSessionManager(SessionConfig{
		Secret:            testSecret,
		AdminEmail:        "admin@example.com",
		AdminPassword:     "ignored-when-hash-set",
		AdminPasswordHash: string(hash),
	})

	_, _, err = manager.Login("admin@example.com", "hashed-secret")
	assert.NoError(t, err)

	_, _, err = manager.Login("admin@example.com", "ignored-when-hash-set")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMissingConfiguration(t *testing.T) {
	noCreds := NewSessionManager(SessionConfig{Secret: testSecret})
	_, _, err := noCreds.Login("admin@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)

	noSecret := NewSessionManager(SessionConfig{AdminEmail: "admin@example.com", AdminPassword: "pw"})
	_, _, err = noSecret.Login("admin@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = noSecret.Verify("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDefaultExpiry(t *testing.T) {
	manager := NewSessionManager(SessionConfig{Secret: testSecret, AdminEmail: "a@b.com", AdminPassword: "pw"})
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.Issue("a@b.com")
	require.NoError(t, err)

	manager.now = func() time.Time { return issuedAt.Add(8*time.Hour - time.Minute) }
	_, err = manager.Verify(token)
	assert.NoError(t, err)

	manager.now = func() time.Time { return issuedAt.Add(8*time.Hour + time.Minute) }
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestManager()
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := manager.Issue("admin@example.com")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsEverySingleBitMutation(t *testing.T) {
	manager := newTestManager()
	token, err := manager.Issue("admin@example.com")
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		for bit := 0; bit < 8; bit++ {
			mutated := []byte(token)
			mutated[i] ^= 1 << bit
			_, err := manager.Verify(string(mutated))
			require.ErrorIsf(t, err, ErrInvalidToken, "mutation at byte %d bit %d was accepted", i, bit)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewSessionManager(SessionConfig{Secret: "another-secret"})
	token, err := other.Issue("admin@example.com")
	require.NoError(t, err)

	_, err = newTestManager().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		Email: "admin@example.com",
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestManager().Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiryAndClaims(t *testing.T) {
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "a@b.com", Role: RoleAdmin}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = newTestManager().Verify(noExpiry)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = newTestManager().Verify(noEmail)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
