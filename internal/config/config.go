package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabaseDriver                string   `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	DatabaseDSN                   string   `mapstructure:"DATABASE_DSN"`
	DiscordClientID               string   `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string   `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string   `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string   `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	DiscordAdminRoleID            string   `mapstructure:"DISCORD_ADMIN_ROLE_ID"`
	AdminDiscordIDs               []string `mapstructure:"ADMIN_DISCORD_IDS"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	EventName                     string   `mapstructure:"EVENT_NAME"`
	EventDays                     []string `mapstructure:"EVENT_DAYS"`
}

// DefaultEventDays are the retreat days offered to registrants who do not sleep over.
var DefaultEventDays = []string{"2024-11-15", "2024-11-16", "2024-11-17"}

func LoadConfig() *Config {
	// A missing .env is fine; the environment alone is enough.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("Failed to load .env: %v", err)
		}
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "retiro.db")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000")
	viper.SetDefault("EVENT_NAME", "Retiro")
	viper.SetDefault("EVENT_DAYS", DefaultEventDays)

	viper.BindEnv("DATABASE_DSN")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_GUILD_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("DISCORD_ADMIN_ROLE_ID")
	viper.BindEnv("ADMIN_DISCORD_IDS")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.JWTSecret == "" {
		log.Printf("JWT_SECRET is empty; admin sessions will not be secure")
	}

	return &config
}

// IsAdminDiscordID reports whether id is listed in ADMIN_DISCORD_IDS.
func (c *Config) IsAdminDiscordID(id string) bool {
	for _, admin := range c.AdminDiscordIDs {
		if admin == id {
			return true
		}
	}
	return false
}
