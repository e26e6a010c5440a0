package global

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetBackendURL() string {
	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		log.Fatal("BACKEND_URL is not set in environment variables")
		os.Exit(1)
	}
	return backendURL
}

func GetSessionTTL() time.Duration {
	minutes, err := strconv.Atoi(GetEnvOrDefault("SESSION_TTL_MINUTES", "720"))
	if err != nil || minutes <= 0 {
		minutes = 720
	}
	return time.Duration(minutes) * time.Minute
}
