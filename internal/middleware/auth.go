package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type contextKey string

const userIDKey contextKey = "userID"

var errUserNotFound = errors.New("user not found")

// lookupRole fetches a user's role by hex id. Overridable in tests.
var lookupRole = func(ctx context.Context, userID string) (string, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", errUserNotFound
	}

	// role only; the gate never needs the rest of the document
	var result struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.M{"role": 1})
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return "", errUserNotFound
	}
	if err != nil {
		return "", err
	}
	return result.Role, nil
}

// UserID returns the authenticated caller's hex id bound by Authenticate,
// or "" when the request did not pass through it.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// Authenticate extracts the bearer token from the Authorization header,
// verifies it and binds the caller's user id to the request context.
// Responds 401 on a missing, malformed, expired or badly signed token.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				failJSON(w, http.StatusUnauthorized, "No token provided")
				return
			}

			userID, err := services.VerifyToken(token, secret)
			if err != nil {
				failJSON(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the identity bound by Authenticate still exists and
// holds the admin role. Always ordered after Authenticate, never used alone.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := UserID(r)
		if userID == "" {
			failJSON(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		role, err := lookupRole(ctx, userID)
		if err == errUserNotFound {
			failJSON(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			failJSON(w, http.StatusInternalServerError, "Error verifying admin access")
			return
		}
		if role != "admin" {
			failJSON(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func failJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
