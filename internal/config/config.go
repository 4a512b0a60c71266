package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "Firstcare Member Registry"
	defaultAppEnv          = "development"
	defaultPort            = "8000"
	defaultLogLevel        = "info"
	defaultCORSOrigin      = "http://localhost:3000"
	defaultStoreDriver     = StoreSQLite
	defaultStorePath       = "./registration.db"
	defaultUploadDir       = "uploads"
	defaultArtifactDir     = "cards"
	defaultCardPages       = "front_and_back"
	defaultRegPrefix       = "FHP"
	defaultRegistrationFee = 6000.0
	defaultRegisterPerMin  = 30
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	LogFormat       string
	CORSOrigin      string
	StoreDriver     string
	StorePath       string
	DatabaseURL     string
	RedisURL        string
	UploadDir       string
	ArtifactDir     string
	CardPages       string
	CardLogoPath    string
	RegPrefix       string
	RegistrationFee float64
	RegisterPerMin  int
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
}

// Load reads an optional .env file, then configuration values from the
// environment, and populates a Config instance.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "json")),
		CORSOrigin:      getEnv("CORS_ORIGIN", defaultCORSOrigin),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", defaultStoreDriver)),
		StorePath:       getEnv("STORE_PATH", defaultStorePath),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		UploadDir:       getEnv("UPLOAD_DIR", defaultUploadDir),
		ArtifactDir:     getEnv("ARTIFACT_DIR", defaultArtifactDir),
		CardPages:       strings.ToLower(getEnv("CARD_PAGES", defaultCardPages)),
		CardLogoPath:    os.Getenv("CARD_LOGO_PATH"),
		RegPrefix:       strings.ToUpper(getEnv("REGISTRATION_PREFIX", defaultRegPrefix)),
		RegistrationFee: defaultRegistrationFee,
		RegisterPerMin:  defaultRegisterPerMin,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
	}

	if v := os.Getenv("REGISTRATION_FEE"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil || fee < 0 {
			return Config{}, fmt.Errorf("invalid REGISTRATION_FEE %q", v)
		}
		cfg.RegistrationFee = fee
	}

	if v := os.Getenv("REGISTER_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REGISTER_RATE_PER_MIN: %w", err)
		}
		cfg.RegisterPerMin = n
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH must be set for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.CardPages {
	case "front_only", "front_and_back":
	default:
		return fmt.Errorf("invalid CARD_PAGES %q", c.CardPages)
	}

	if c.RegPrefix == "" {
		return fmt.Errorf("REGISTRATION_PREFIX must not be empty")
	}

	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local/development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
