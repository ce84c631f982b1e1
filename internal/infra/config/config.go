package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken    string
	ModeratorChatIDs []int64 // fan-out destinations; also the moderator allow-list
	StorageBackend   string  // "postgres" or "memory"
	DatabaseURL      string  // required for the postgres backend
	HealthPort       int
	PreviewLimit     int
	IDStrategy       string // "short" or "compound"
	LogLevel         string
	Environment      string

	// Stale-ticket sweep. A zero timeout disables the sweep entirely.
	CronSpecStaleCheck string
	ReasonTimeout      int // minutes a ticket may sit in AWAITING_REASON
}

// Load reads configuration from environment variables and .env file (if present).
// Every required value is validated here; the process must not start without them.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	rawMods := os.Getenv("MODERATOR_CHAT_IDS")
	if strings.TrimSpace(rawMods) == "" {
		return nil, fmt.Errorf("MODERATOR_CHAT_IDS is not set (comma-separated chat ids)")
	}
	for _, part := range strings.Split(rawMods, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MODERATOR_CHAT_IDS entry %q: %w", part, err)
		}
		cfg.ModeratorChatIDs = append(cfg.ModeratorChatIDs, id)
	}
	if len(cfg.ModeratorChatIDs) == 0 {
		return nil, fmt.Errorf("MODERATOR_CHAT_IDS contains no chat ids")
	}

	cfg.StorageBackend = strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StoragePostgres
	}
	switch cfg.StorageBackend {
	case StoragePostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for STORAGE_BACKEND=postgres)")
		}
	case StorageMemory:
		// No connection string needed.
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q", cfg.StorageBackend, StoragePostgres, StorageMemory)
	}

	var err error
	cfg.HealthPort, err = intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	cfg.PreviewLimit, err = intEnv("PREVIEW_LIMIT", 40)
	if err != nil {
		return nil, err
	}
	if cfg.PreviewLimit <= 0 {
		return nil, fmt.Errorf("PREVIEW_LIMIT must be positive")
	}

	cfg.IDStrategy = strings.ToLower(os.Getenv("TICKET_ID_STRATEGY"))
	if cfg.IDStrategy == "" {
		cfg.IDStrategy = "short"
	}
	if cfg.IDStrategy != "short" && cfg.IDStrategy != "compound" {
		return nil, fmt.Errorf("invalid TICKET_ID_STRATEGY %q: must be \"short\" or \"compound\"", cfg.IDStrategy)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecStaleCheck = os.Getenv("CRON_SPEC_STALE_CHECK")
	if cfg.CronSpecStaleCheck == "" {
		cfg.CronSpecStaleCheck = "*/10 * * * *" // every 10 minutes
	}

	cfg.ReasonTimeout, err = intEnv("REASON_TIMEOUT_MINUTES", 0)
	if err != nil {
		return nil, err
	}
	if cfg.ReasonTimeout < 0 {
		return nil, fmt.Errorf("REASON_TIMEOUT_MINUTES must not be negative")
	}

	return cfg, nil
}

// IsModerator reports whether a chat id belongs to the configured moderator set.
func (c *AppConfig) IsModerator(chatID int64) bool {
	for _, id := range c.ModeratorChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
