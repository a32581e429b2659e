package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/openspace/seating-engine/internal/api"
	"github.com/openspace/seating-engine/internal/db"
	"github.com/openspace/seating-engine/internal/solver"
)

func main() {
	log.Println("Starting Openspace Seating Engine...")

	// Persistence is optional: without DATABASE_URL the engine still solves
	// and returns plans, it just cannot store or re-serve them.
	var dbConn *db.PostgresStore
	if dbUrl := os.Getenv("DATABASE_URL"); dbUrl == "" {
		log.Println("Warning: DATABASE_URL not set, continuing without session persistence")
	} else {
		var err error
		dbConn, err = db.Connect(dbUrl)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, continuing without session persistence. Error: %v", err)
			dbConn = nil
		} else {
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	}

	budget := solver.Options{
		MaxNodes: getEnvInt("SOLVER_MAX_NODES", solver.DefaultOptions.MaxNodes),
		Timeout:  time.Duration(getEnvInt("SOLVER_TIMEOUT_MS", int(solver.DefaultOptions.Timeout.Milliseconds()))) * time.Millisecond,
	}

	// Setup WebSocket Hub for arrangement events
	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(dbConn, wsHub, budget)

	port := getEnvOrDefault("PORT", "8000")

	log.Printf("Engine running on :%s (solver budget: %d nodes / %s)\n", port, budget.MaxNodes, budget.Timeout)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt parses an integer env var, exiting on malformed values so a
// typo never silently runs with the wrong solver budget.
func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("FATAL: %s must be an integer, got %q", key, val)
	}
	return n
}
