package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/gimenezlucas594-sudo/stocking-app/internal/router"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/backend"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/global"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/pos"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/redis"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	client := redis.RedisClient()
	store := redis.NewSessionStore(client, global.GetSessionTTL())

	ctx, cancel := global.GetDefaultTimer()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	cancel()

	cache := redis.NewCatalogCache(client, 5*time.Minute)
	backendClient := backend.NewClient(global.GetBackendURL())
	manager := pos.NewManager(store, backendClient, cache)

	router.InitEngine()
	router.InitializeRoutes(router.NewHandler(manager))

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("POS terminal is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
