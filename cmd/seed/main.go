// Command seed provisions the user roster. The task core treats users as
// read-only reference data, so this is the only writer of the users table.
package main

import (
	"log"
	"os"

	"github.com/mizunoha/task-board-api/internal/config"
	"github.com/mizunoha/task-board-api/internal/database"
	"github.com/mizunoha/task-board-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

type seedUser struct {
	email       string
	displayName string
	role        models.UserRole
}

var roster = []seedUser{
	{"boss@example.com", "社長", models.RoleAdmin},
	{"tanaka@example.com", "田中", models.RoleUser},
	{"suzuki@example.com", "鈴木", models.RoleUser},
	{"sato@example.com", "佐藤", models.RoleUser},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal("SEED_PASSWORD environment variable is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, su := range roster {
		user := models.User{
			Email:        su.email,
			DisplayName:  su.displayName,
			Role:         su.role,
			PasswordHash: string(hash),
		}

		// Re-running the seeder refreshes names and roles without
		// disturbing existing tasks.
		err := database.GetDB().
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoUpdates: clause.AssignmentColumns([]string{"display_name", "role", "password_hash"}),
			}).
			Create(&user).Error
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", su.email, err)
		}
		log.Printf("Seeded user %s (%s)", su.email, su.role)
	}
}
