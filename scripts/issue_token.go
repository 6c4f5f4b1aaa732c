package main

import (
	"fmt"
	"log"
	"os"

	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/auth"
)

// Prints a bearer token for the email in OWNER_EMAIL, signed with the
// configured JWT secret.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set, auth is disabled")
	}

	email := os.Getenv("OWNER_EMAIL")
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if email == "" {
		log.Fatal("usage: go run ./scripts/issue_token.go <email> (or set OWNER_EMAIL)")
	}

	token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan).GenerateToken(email)
	if err != nil {
		log.Fatalf("cannot issue token: %v", err)
	}
	fmt.Println(token)
}
