package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/courseflow/api/config"
	_ "github.com/lib/pq"
)

// EnsureDatabase connects to the postgres maintenance database and creates
// the application database if it does not exist yet. GORM's AutoMigrate can
// create tables but not the database itself.
func EnsureDatabase() error {
	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_PORT,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", getEnv.DB_NAME).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not support bind parameters; the name comes from
	// trusted configuration, not user input.
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", getEnv.DB_NAME)); err != nil {
		return err
	}

	log.Printf("Created database %s", getEnv.DB_NAME)
	return nil
}
