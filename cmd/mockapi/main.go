// Command mockapi runs the development backend the dashboard talks to
package main

import (
	"log"
	"os"

	"restaurant-dashboard/config"
	"restaurant-dashboard/mockapi"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	dbCfg := cfg.Database
	if dsn := os.Getenv("MOCKAPI_DB_DSN"); dsn != "" {
		dbCfg.DSN = dsn
	} else if dbCfg.Driver == "" || dbCfg.Driver == "sqlite" {
		dbCfg.DSN = "restaurant_api.db"
	}
	db, err := config.OpenDB(dbCfg, mockapi.Models...)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	srv := mockapi.NewServer(db, mockapi.Options{
		Secret:    cfg.JWTSecret,
		UploadDir: getEnv("MOCKAPI_UPLOAD_DIR", "uploads"),
	})
	if err := srv.Seed(getEnv("SEED_ADMIN_EMAIL", "admin@restaurant.local"), getEnv("SEED_ADMIN_PASSWORD", "admin123")); err != nil {
		log.Fatal("Failed to seed admin account:", err)
	}

	port := getEnv("MOCKAPI_PORT", "8081")
	log.Printf("🚀 Mock API running on http://localhost:%s/api", port)
	if err := srv.Router().Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
