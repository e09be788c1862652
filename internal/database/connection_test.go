package database

import (
	"testing"

	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "discrete postgres settings",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "coins", Password: "pw", Name: "coins"},
			expected: "host=db user=coins password=pw dbname=coins port=5432 sslmode=disable",
		},
		{
			name:     "discrete postgres settings with ssl mode",
			cfg:      DatabaseConfig{Driver: "postgresql", Host: "db", Port: "5432", User: "coins", Password: "pw", Name: "coins", SSLMode: "require"},
			expected: "host=db user=coins password=pw dbname=coins port=5432 sslmode=require",
		},
		{
			name:     "local url disables ssl",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://coins:pw@localhost:5432/coins"},
			expected: "postgres://coins:pw@localhost:5432/coins?sslmode=disable",
		},
		{
			name:     "remote url requires ssl",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://coins:pw@db.example.com:5432/coins"},
			expected: "postgres://coins:pw@db.example.com:5432/coins?sslmode=require",
		},
		{
			name:     "explicit url ssl mode is kept",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://coins:pw@db.example.com/coins?sslmode=verify-full"},
			expected: "postgres://coins:pw@db.example.com/coins?sslmode=verify-full",
		},
		{
			name:     "sqlite path",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "coins.sqlite"},
			expected: "coins.sqlite",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", URL: "postgres://coins:topsecret@db/coins", Password: "othersecret"}

	out := cfg.String()

	assert.NotContains(t, out, "topsecret")
	assert.NotContains(t, out, "othersecret")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "oracle"})

	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.Coin{}))
	assert.True(t, db.Migrator().HasIndex(&models.Coin{}, "idx_coins_email"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
