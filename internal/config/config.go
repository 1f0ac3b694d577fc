package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable via AUCTION_STORE
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

// Config holds the runtime settings for the auction service
type Config struct {
	Port     string        // listen address, e.g. ":8080"
	LogLevel string        // logrus level name
	Store    string        // memory or mysql
	MySQLDSN string        // required when Store is mysql
	LockWait time.Duration // bound on waiting for a listing's exclusive section
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first if present (silently ignored if missing).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:     ":8080",
		LogLevel: "info",
		Store:    StoreMemory,
		LockWait: 5 * time.Second,
	}

	if p := os.Getenv("PORT"); p != "" {
		cfg.Port = fmt.Sprintf(":%s", p)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if s := os.Getenv("AUCTION_STORE"); s != "" {
		cfg.Store = s
	}
	cfg.MySQLDSN = os.Getenv("AUCTION_MYSQL_DSN")
	if w := os.Getenv("AUCTION_LOCK_WAIT"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid AUCTION_LOCK_WAIT %q: %w", w, err)
		}
		cfg.LockWait = d
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreMySQL:
		if cfg.MySQLDSN == "" {
			return Config{}, fmt.Errorf("config: AUCTION_STORE=mysql requires AUCTION_MYSQL_DSN")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown AUCTION_STORE %q", cfg.Store)
	}

	return cfg, nil
}
