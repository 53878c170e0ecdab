package routes

import (
	"github.com/AnshRaj112/aura-backend/internal/handlers"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the full API surface. Protected groups run the
// bearer-token check first; admin routes additionally require the admin role,
// strictly in that order.
func SetupRoutes(r *chi.Mux, jwtSecret []byte) {
	authenticate := middleware.Authenticate(jwtSecret)

	// Auth routes (public)
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/admin-login", handlers.AdminLogin)
	r.Get("/api/auth/google", handlers.GoogleLogin)
	r.Get("/api/auth/google/callback", handlers.GoogleCallback)

	// Public profile and trending routes
	r.Get("/api/users/{userId}", handlers.GetUserByID)
	r.Get("/api/memories/trending-hashtags", handlers.TrendingHashtags)

	// User routes
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/api/users/me", handlers.Me)
		r.Put("/api/users/profile", handlers.UpdateProfile)
		r.Get("/api/users/search", handlers.SearchUsers)
		r.Post("/api/users/profile-picture", handlers.UploadProfilePicture)
	})

	// Memory routes
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/api/memories/feed", handlers.Feed)
		r.Post("/api/memories", handlers.CreateMemory)
		r.Post("/api/memories/upload", handlers.UploadMemoryImage)
		r.Get("/api/memories/stats", handlers.MemoryStats)
		r.Get("/api/memories/user/{userId}", handlers.UserMemories)
		r.Post("/api/memories/{id}/like", handlers.ToggleLike)
		r.Post("/api/memories/{id}/comment", handlers.AddComment)
		r.Delete("/api/memories/{id}", handlers.DeleteMemory)
	})

	// Follow routes
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/api/follow/{userId}", handlers.Follow)
		r.Delete("/api/follow/{userId}", handlers.Unfollow)
		r.Get("/api/follow/check/{userId}", handlers.CheckFollowing)
		r.Get("/api/follow/suggestions", handlers.Suggestions)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin)
		r.Get("/api/admin/stats", handlers.AdminStats)
		r.Get("/api/admin/analytics/user-growth", handlers.AdminUserGrowth)
		r.Get("/api/admin/analytics/memory-activity", handlers.AdminMemoryActivity)
		r.Get("/api/admin/users", handlers.AdminUsers)
		r.Get("/api/admin/memories", handlers.AdminMemories)
		r.Get("/api/admin/nfts", handlers.AdminNFTs)
		r.Get("/api/admin/likes", handlers.AdminLikes)
		r.Delete("/api/admin/memories/{id}", handlers.AdminDeleteMemory)
		r.Put("/api/admin/unblock-ip", handlers.AdminUnblockIP)
	})

	// WebSocket endpoint for realtime notifications; does its own token check
	// so browser clients can pass the token as a query parameter.
	r.Get("/ws/notifications", handlers.NotificationsWebSocket)
}
