package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/courseflow/api/database"
	"github.com/courseflow/api/model"
	"github.com/courseflow/api/utils/auth"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := database.EnsureDatabase(); err != nil {
		log.Fatalf("Failed to ensure database exists: %v", err)
	}

	// Initialize database connection using GORM
	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	gormDB := store.GetDB()

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Courseflow - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	if err := database.SeedCourses(gormDB); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := seedAdminUser(gormDB); err != nil {
		log.Fatalf("Admin user creation failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Seeding completed successfully!")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Admin user created from ADMIN_EMAIL and ADMIN_PASSWORD environment variables.")
	fmt.Println("If not set, admin user creation is skipped.")
	fmt.Println()
}

// seedAdminUser creates the admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
// The register endpoint only ever creates students, so this is the one way
// an admin account comes into existence.
func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("Admin user %s already exists, skipping", email)
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	if !auth.IsPasswordValid(password) {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters long")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         "admin",
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", email)
	return nil
}
