package app

import (
	"fmt"
	"log"
	"os"

	"github.com/courseflow/api/api"
	"github.com/courseflow/api/config"
	"github.com/courseflow/api/database"
	"github.com/courseflow/api/router"
	"github.com/courseflow/api/services/cron"
)

// SetupAndRunServer boots the whole service: config, database, cron, routes.
func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Create the database if it does not exist yet
	if err := database.EnsureDatabase(); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run database migrations")
		return err
	}

	// Seed the course catalog on first boot
	if err := database.SeedCourses(store.GetDB()); err != nil {
		log.Printf("Warning: course seeding failed: %v", err)
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(store.GetDB())
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Printf("Warning: failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (security middleware is attached inside)
	router.SetupRoutes(app, store, getEnv)

	// Start the Server
	return server.Run()
}
