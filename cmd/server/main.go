package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/database"
	"github.com/igreja-retiro/retiro-api/internal/handlers"
	"github.com/igreja-retiro/retiro-api/internal/metrics"
	"github.com/igreja-retiro/retiro-api/internal/notifier"
	"github.com/igreja-retiro/retiro-api/internal/registration"
	"github.com/igreja-retiro/retiro-api/internal/store"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)
	st := store.NewGormStore(db)

	// Discord bot session, used for notifications and the admin role check.
	// REST calls work without opening the gateway connection.
	var session *discordgo.Session
	if cfg.DiscordBotToken != "" {
		s, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord session not initialized: %v", err)
		} else {
			session = s
		}
	}

	var registrationNotifier notifier.Notifier
	if session != nil && cfg.DiscordNotificationsChannelID != "" {
		registrationNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
	} else {
		log.Printf("Discord notifier not initialized: bot token or channel missing")
	}

	m := metrics.New()
	validator := registration.NewValidator(cfg.EventDays)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, st, session)
	registrationHandler := handlers.NewRegistrationHandler(cfg, st, registrationNotifier, m)
	churchHandler := handlers.NewChurchHandler(st, authHandler, validator)
	registrantHandler := handlers.NewRegistrantHandler(st, authHandler, validator)
	apiKeyHandler := handlers.NewAPIKeyHandler(st, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, m, authHandler, registrationHandler, churchHandler, registrantHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
