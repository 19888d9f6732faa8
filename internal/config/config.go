package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	AppEnv            string
	OrphanCleanupCron string
	MissedSweepCron   string
	CleanupBatchSize  int
	CleanupBatchDelay time.Duration
	WorkerCount       int
	JobMaxRetries     int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DBUrl:             getEnv("DB_URL", ""),
		AppEnv:            normalizeEnv(getEnv("APP_ENV", "production")),
		OrphanCleanupCron: getEnv("ORPHAN_CLEANUP_CRON", "0 3 * * 0"),
		MissedSweepCron:   getEnv("MISSED_SWEEP_CRON", "0 1 * * *"),
		CleanupBatchSize:  getEnvInt("CLEANUP_BATCH_SIZE", 5),
		CleanupBatchDelay: getEnvDuration("CLEANUP_BATCH_DELAY", time.Second),
		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		JobMaxRetries:     getEnvInt("JOB_MAX_RETRIES", 2),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
