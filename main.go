package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := openDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("database connection failed: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.AnonymousCustomer{},
		&models.Table{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.WaitlistEntry{},
		&models.GameResult{},
		&models.Reservation{},
		&models.Notification{},
	); err != nil {
		utils.ErrorLogger.Fatalf("migration failed: %v", err)
	}

	// Expired reservation holds are also swept lazily on every list; the
	// ticker just keeps the table clean during quiet hours.
	go sweepReservations(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := router.SetupRouter(db)
	utils.InfoLogger.Printf("comanda-app listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}

func openDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		envOr("DB_USER", "root"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_HOST", "127.0.0.1"),
		envOr("DB_PORT", "3306"),
		envOr("DB_NAME", "comanda"),
	)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sweepReservations(db *gorm.DB) {
	reservations := services.NewReservationService(db, services.NewNotifier(db))
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		expired, err := reservations.Sweep(context.Background(), time.Now())
		if err != nil {
			utils.ErrorLogger.Printf("reservation sweep: %v", err)
			continue
		}
		if len(expired) > 0 {
			utils.InfoLogger.Printf("reservation sweep: %d hold(s) expired", len(expired))
		}
	}
}
