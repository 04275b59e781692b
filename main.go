package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/feed"
	"github.com/rpupo63/portfolio-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()
	settings := config.FromEnv(cfg)

	if !settings.DatabaseConfigured() {
		fmt.Println("DATABASE_DSN is not set: server is not configured. Exiting...")
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  settings.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	if settings.ReplicaConfigured() {
		if err := database.UseReplica(db, settings.ReplicaDSN); err != nil {
			fmt.Printf("Error registering read replica: %v\n", err)
			os.Exit(1)
		}
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Error applying migrations: %v\n", err)
		os.Exit(1)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("Error testing database connection: %v\n", err)
		os.Exit(1)
	}

	hub := feed.NewHub()
	currentDB := database.New(db, hub)

	// Bridge remote mutations into the in-process change feed
	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	go feed.NewPgListener(settings.DatabaseDSN, hub, database.ProjectsCollection).Run(listenerCtx)

	deps := api.Dependencies{
		Hub:      hub,
		Contact:  services.NewContactService(settings.ContactEmail, settings.ResendAPIKey, settings.ResendFromEmail),
		Settings: settings,
	}

	if settings.AuthConfigured() {
		deps.Auth = services.NewAuthenticator(currentDB.UserRepo(), settings.JWTSecret, settings.JWTIssuer, 24*time.Hour)
	} else {
		fmt.Println("JWT_SECRET not set: authentication disabled")
	}

	if settings.StorageConfigured() {
		covers, err := services.NewCoverStore(context.Background(), settings.S3Bucket, settings.S3Region, settings.PublicBaseURL)
		if err != nil {
			fmt.Printf("Error initializing cover storage: %v\n", err)
			os.Exit(1)
		}
		deps.Covers = covers
	} else {
		fmt.Println("S3_BUCKET not set: cover uploads disabled")
	}

	if settings.ChatConfigured() {
		chat, err := services.NewChatService(context.Background(), settings.GeminiAPIKey, settings.GeminiModel)
		if err != nil {
			fmt.Printf("Error initializing chat service: %v\n", err)
			os.Exit(1)
		}
		deps.Chat = chat
	} else {
		fmt.Println("GEMINI_API_KEY not set: chat disabled")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, deps)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	stopListener()
	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
