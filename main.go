package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/routes"
	"glowdesk-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.Client{},
		&models.Service{},
		&models.Appointment{},
		&models.ReminderLog{},
	)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	reminderService := services.NewReminderService(
		config.DB,
		services.NewResendEmailSender(),
		services.NewTwilioSMSSender(),
	)
	scheduler := services.NewReminderScheduler(reminderService)
	scheduler.Start()

	r := routes.SetupRouter(reminderService, scheduler)
	printRoutes(r)

	go func() {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Stop the scheduler cleanly on termination so an in-flight reminder
	// pass can finish its ledger writes.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	scheduler.Stop()
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
