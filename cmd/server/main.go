package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/aura-backend/internal/config"
	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/handlers"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/routes"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET not set, using the default development secret.")
		log.Println("   Generate one with: openssl rand -base64 32")
	}
	if len(cfg.AdminAccounts) == 0 {
		log.Println("⚠️  WARNING: ADMIN_ACCOUNTS not set. Admin login will be unavailable.")
		log.Println("   Format: email:password:username, comma-separated for multiple accounts")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Println("⚠️  WARNING: Google OAuth credentials not found. Google login will be unavailable.")
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Ensure MongoDB indexes (unique email/username, feed sort)
	if err := services.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Wire handler package configuration (JWT secret, OAuth, admin accounts)
	handlers.Configure(cfg)

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Image uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Image uploads will not be available")
	}

	// Start the Redis notification subscriber feeding WebSocket clients
	services.StartNotifySubscriber(context.Background())
	log.Println("✅ Notification subscriber started")

	// Start the follow-graph consistency sweep
	// Repairs missing followers entries left by interrupted follow requests
	services.StartFollowGraphSweep(1) // Run every 1 hour
	log.Println("✅ Follow graph sweep started")

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, []byte(cfg.JWTSecret))

	log.Printf("🚀 AURA backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
