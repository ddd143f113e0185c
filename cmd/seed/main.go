package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/devlinkhq/devlink/config"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// Seeds a demo account with a filled-in profile for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@devlink.local"
	password := "password123"
	name := "Demo Developer"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name, helpers.GravatarURL(email)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	if _, err := db.Exec(`
		INSERT INTO profiles (user_id, status, bio, skills)
		VALUES ($1, 'Developer', 'Seeded demo profile', ARRAY['Go','PostgreSQL','Redis'])
		ON CONFLICT (user_id) DO NOTHING
	`, id); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Println("seeded demo profile (if not already present)")
}
