package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAuthBaseURL   = "https://apihealth.zethealth.com/api/v1/Authenticate/"
	defaultAPIBaseURL    = "https://apihealth.zethealth.com/api/v1/Authenticate/"
	defaultGeocoderURL   = "https://api.bigdatacloud.net/data/reverse-geocode-client"
	defaultHTTPTimeout   = 30 * time.Second
	defaultStorageKind   = StorageFile
	defaultStoragePrefix = "zet:"
)

// Storage backends understood by the client.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// Client captures configuration for the booking client core and the zetctl CLI.
type Client struct {
	AuthBaseURL   string
	APIBaseURL    string
	GeocoderURL   string
	HTTPTimeout   time.Duration
	Storage       string
	StoragePath   string
	StoragePrefix string
	RedisURL      string
	LogLevel      string
}

// LoadClient reads client configuration from the environment.
func LoadClient() (Client, error) {
	_ = godotenv.Load()

	cfg := Client{
		AuthBaseURL:   getEnv("ZET_AUTH_BASE_URL", defaultAuthBaseURL),
		APIBaseURL:    getEnv("ZET_API_BASE_URL", defaultAPIBaseURL),
		GeocoderURL:   getEnv("ZET_GEOCODER_URL", defaultGeocoderURL),
		Storage:       strings.ToLower(getEnv("ZET_STORAGE", defaultStorageKind)),
		StoragePath:   os.Getenv("ZET_STORAGE_PATH"),
		StoragePrefix: getEnv("ZET_STORAGE_PREFIX", defaultStoragePrefix),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "warn")),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("ZET_HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return Client{}, err
	}

	switch cfg.Storage {
	case StorageMemory:
	case StorageFile:
		if cfg.StoragePath == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return Client{}, fmt.Errorf("resolve config dir: %w", err)
			}
			cfg.StoragePath = filepath.Join(dir, "zetctl", "storage.json")
		}
	case StorageRedis:
		if cfg.RedisURL == "" {
			return Client{}, fmt.Errorf("REDIS_URL must be set when ZET_STORAGE=redis")
		}
	default:
		return Client{}, fmt.Errorf("invalid ZET_STORAGE %q", cfg.Storage)
	}

	return cfg, nil
}
