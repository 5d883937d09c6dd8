// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the match service.
type Config struct {
	Port                     string
	GRPCPort                 string
	DatabaseURL              string
	RedisURL                 string
	ExpireAfterDays          int // non-terminal matches untouched for this long are swept to expired
	ExpireSweepIntervalHours int // how often the expiry cron fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCH_PORT")
	if port == "" {
		port = "8083"
	}

	grpcPort := os.Getenv("GRPC_PORT")
	if grpcPort == "" {
		grpcPort = "9083"
	}

	expireDays := 90
	if s := os.Getenv("EXPIRE_AFTER_DAYS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("EXPIRE_AFTER_DAYS must be a positive integer, got %q", s)
		}
		expireDays = v
	}

	sweep := 24
	if s := os.Getenv("EXPIRE_SWEEP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("EXPIRE_SWEEP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		sweep = v
	}

	return &Config{
		Port:                     port,
		GRPCPort:                 grpcPort,
		DatabaseURL:              dbURL,
		RedisURL:                 redisURL,
		ExpireAfterDays:          expireDays,
		ExpireSweepIntervalHours: sweep,
	}, nil
}
