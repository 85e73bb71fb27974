package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Типы хранилища
const (
	StorageInMemory = "in-memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config - настройки приложения. Значения по умолчанию берутся из
// переменных окружения, флаги командной строки их переопределяют.
type Config struct {
	Port        string
	Storage     string
	DatabaseURL string
	SQLitePath  string
	LogSQL      bool
	Seed        bool

	SessionSecret       string
	SessionTTL          time.Duration
	CookieSecure        bool
	PasswordIterations  int
	DetailedLoginErrors bool
}

// Load читает конфигурацию из окружения.
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Storage:             getEnv("STORAGE", StorageInMemory),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "posts.db"),
		LogSQL:              getBool("LOG_SQL", false),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:        getBool("COOKIE_SECURE", false),
		PasswordIterations:  getInt("PASSWORD_ITERATIONS", 600000),
		DetailedLoginErrors: getBool("DETAILED_LOGIN_ERRORS", false),
	}
}

// Validate проверяет согласованность настроек и дополняет пустой секрет.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageInMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q (in-memory, sqlite or postgres)", c.Storage)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}

	if c.SessionSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.SessionSecret = hex.EncodeToString(secret)
		log.Println("warning: SESSION_SECRET is not set, sessions will not survive a restart")
	}
	return nil
}

// getEnv получает переменную окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		log.Printf("warning: %s is not a boolean, using %t", key, defaultValue)
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		log.Printf("warning: %s is not an integer, using %d", key, defaultValue)
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		log.Printf("warning: %s is not a duration, using %s", key, defaultValue)
		return defaultValue
	}
	return v
}
