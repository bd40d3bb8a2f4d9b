package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken       string        `env:"DISCORD_TOKEN"`
	StoragePath        string        `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	OwnerIDs           []string      `env:"OWNER_IDS" envSeparator:","`
	GuildBlacklist     []string      `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands  bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	ClearSlashCommands bool          `env:"CLEAR_SLASH_COMMANDS"`
	CommandPrefix      string        `env:"COMMAND_PREFIX" envDefault:"!"`
	RegisterRate       float64       `env:"REGISTER_RATE" envDefault:"40"`
	MetricsAddr        string        `env:"METRICS_ADDR"`
	DeveloperID        string        `env:"DEVELOPER_ID"`
	AutoSaveInterval   time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"10s"`
}

// Load reads .env files when present, then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX cannot be empty")
	}
	if c.RegisterRate <= 0 {
		return fmt.Errorf("REGISTER_RATE must be positive, got %v", c.RegisterRate)
	}
	return nil
}

// IsOwner reports whether userID is listed in OWNER_IDS or is the developer.
func (c *Config) IsOwner(userID string) bool {
	if userID == "" {
		return false
	}
	if userID == c.DeveloperID {
		return true
	}
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsGuildBlacklisted reports whether the bot must stay out of guildID.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
