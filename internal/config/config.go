package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	DatabaseURL   string
	RedisAddr     string
	IncomingDir   string
	GeneratorURL  string
	GeneratorKey  string
	PositionGap   int
	BatchSpacing  int
	ReadRetryWait time.Duration
}

func Load() *Config {
	return &Config{
		Port:          envInt("PORT", 8080),
		DatabaseURL:   env("DATABASE_URL", "postgres://shotline:shotline@db:5432/shotline?sslmode=disable"),
		RedisAddr:     env("REDIS_ADDR", "redis:6379"),
		IncomingDir:   env("INCOMING_DIR", "/data/incoming"),
		GeneratorURL:  env("GENERATOR_URL", ""),
		GeneratorKey:  env("GENERATOR_API_KEY", ""),
		PositionGap:   envInt("POSITION_GAP", 50),
		BatchSpacing:  envInt("BATCH_SPACING", 50),
		ReadRetryWait: envDuration("READ_RETRY_WAIT", 250*time.Millisecond),
	}
}

// MergeFromDB overlays runtime-editable settings stored in the database.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.QueryContext(context.Background(), "SELECT key, value FROM settings")
	if err != nil {
		log.Printf("config: skipping DB merge: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "generator_url":
			c.GeneratorURL = value
		case "generator_api_key":
			c.GeneratorKey = value
		case "position_gap":
			if v, err := strconv.Atoi(value); err == nil && v > 0 {
				c.PositionGap = v
			}
		case "batch_spacing":
			if v, err := strconv.Atoi(value); err == nil && v > 0 {
				c.BatchSpacing = v
			}
		}
	}
}

func (c *Config) GeneratorEnabled() bool {
	return c.GeneratorURL != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
