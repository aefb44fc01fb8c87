package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Settings carries the knobs the embedding application wires the core with.
type Settings struct {
	APIBaseURL         string
	RedisAddr          string
	MongoURI           string
	MongoDatabase      string
	OrderCountInterval time.Duration
}

// Load reads settings from the environment, with an optional .env file.
func Load() Settings {
	// Missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	interval := 30 * time.Second
	if raw := os.Getenv("ORDER_COUNT_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("config: invalid ORDER_COUNT_INTERVAL %q, using default: %v", raw, err)
		} else {
			interval = d
		}
	}

	return Settings{
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080/api"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DB_NAME", "deliverydb"),
		OrderCountInterval: interval,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
