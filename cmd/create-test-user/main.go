package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"proposalforge-backend/auth"
	"proposalforge-backend/config"
	"proposalforge-backend/db"
	"proposalforge-backend/models"
	"proposalforge-backend/repository"
	"proposalforge-backend/service"
)

func main() {
	email := flag.String("email", "test@example.com", "account email")
	password := flag.String("password", "testpassword123", "account password")
	company := flag.String("company", "Test Agency", "company name")
	flag.Parse()

	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	if existing, err := users.GetByEmail(ctx, *email); err == nil {
		log.Printf("User with email %s already exists (ID: %s)", *email, existing.ID)
		return
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        *email,
		PasswordHash: hash,
		CompanyName:  company,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, service.ErrUserExists) {
			log.Printf("User with email %s already exists", *email)
			return
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Test user created\n")
	fmt.Printf("   ID: %s\n", user.ID)
	fmt.Printf("   Email: %s\n", user.Email)
	fmt.Printf("   Password: %s\n", *password)
	fmt.Printf("   Company: %s\n", *company)
}
