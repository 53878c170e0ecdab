package config

import (
	"log"
	"os"
	"strings"
)

// AdminAccount is one entry of the admin allow-list. Only these credentials may
// use the admin-login route; they are configured out of band via ADMIN_ACCOUNTS
// instead of being hard-coded.
type AdminAccount struct {
	Email    string
	Password string
	Username string
}

type Config struct {
	MongoURI            string
	RedisURI            string
	JWTSecret           string
	Port                string
	FrontendURL         string
	BackendURL          string
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	AllowedHost         string   // Hostname only for strict host check (production only)
	Environment         string   // ENV: production, development, etc.
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	GoogleClientID      string
	GoogleClientSecret  string
	AdminAccounts       []AdminAccount
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	backendURL := getEnv("BACKEND_URL", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostOnly(backendURL)
	}

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/aura")),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		BackendURL:          backendURL,
		AllowedOrigins:      allowedOrigins,
		AllowedHost:         allowedHost,
		Environment:         env,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		AdminAccounts:       ParseAdminAccounts(getEnv("ADMIN_ACCOUNTS", "")),
	}
}

// ParseAdminAccounts parses the ADMIN_ACCOUNTS env value. Format:
// "email:password:username,email:password:username". Malformed entries are
// logged and skipped so one typo doesn't break every admin login.
func ParseAdminAccounts(s string) []AdminAccount {
	var out []AdminAccount
	for _, entry := range parseList(s) {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			log.Printf("⚠️  WARNING: skipping malformed ADMIN_ACCOUNTS entry %q", entry)
			continue
		}
		out = append(out, AdminAccount{
			Email:    strings.ToLower(strings.TrimSpace(parts[0])),
			Password: parts[1],
			Username: strings.TrimSpace(parts[2]),
		})
	}
	return out
}

// FindAdminAccount returns the allow-list entry for an email, if any.
func (c *Config) FindAdminAccount(email string) (AdminAccount, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminAccounts {
		if a.Email == email {
			return a, true
		}
	}
	return AdminAccount{}, false
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// hostOnly strips scheme, path and port from a URL, leaving the bare hostname.
func hostOnly(u string) string {
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	if idx := strings.Index(u, "/"); idx != -1 {
		u = u[:idx]
	}
	if idx := strings.Index(u, ":"); idx != -1 {
		u = u[:idx]
	}
	return strings.TrimSpace(u)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
