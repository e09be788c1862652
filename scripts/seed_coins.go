package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/franciscosanchezn/gin-coins-api/internal/config"
	"github.com/franciscosanchezn/gin-coins-api/internal/database"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/franciscosanchezn/gin-coins-api/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Parse command line flags
	name := flag.String("name", "Dev User", "Name of the record owner")
	email := flag.String("email", "dev@example.com", "Email of the record owner")
	coins := flag.Int64("coins", 100, "Initial balance")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of this password for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash password:", err)
		}
		fmt.Println(string(hash))
		return
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	service := services.NewCoinService(db, conf.QueryTimeout)
	coin, err := service.Create(ctx, services.CreateCoinInput{Name: *name, Email: *email, Coins: coins})
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Kind == models.KindConflict {
		fmt.Printf("Record already exists for '%s'\n", services.NormalizeEmail(*email))
		return
	}
	if err != nil {
		log.Fatal("Failed to create record:", err)
	}

	fmt.Printf("✓ Coin record created for '%s' with %d coins (ID: %d)\n", coin.Email, coin.Coins, coin.ID)
	fmt.Println("\nLook it up with:")
	fmt.Printf("curl -X POST http://localhost:%d/coins \\\n", conf.Port)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -H 'x-api-key: $API_KEY' \\\n")
	fmt.Printf("  -d '{\"email\":\"%s\"}'\n", coin.Email)
}
