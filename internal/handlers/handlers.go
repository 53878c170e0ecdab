package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/config"
	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Package-level configuration shared by all handlers, set once from main.
var (
	cfg       *config.Config
	jwtSecret []byte

	cloudinaryService *services.CloudinaryService
)

// Configure stores process-wide configuration for the handlers package.
func Configure(c *config.Config) {
	cfg = c
	jwtSecret = []byte(c.JWTSecret)
	initGoogleOAuth(c)
}

// InitCloudinaryService wires up the image upload service.
func InitCloudinaryService(c *config.Config) error {
	service, err := services.NewCloudinaryService(
		c.CloudinaryName,
		c.CloudinaryAPIKey,
		c.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// fail writes the uniform {success:false, message} error body.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// dbCtx returns the 5-second context used for single store round trips.
func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// findUserByID loads a full user document by hex id.
func findUserByID(ctx context.Context, hexID string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var user models.User
	err = database.DB.Collection("users").FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userSummary is the embedded author object attached to memories and comments.
func userSummary(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID.Hex(),
		"username":       u.Username,
		"email":          u.Email,
		"profilePicture": u.ProfilePicture,
	}
}

// loadUserSummaries fetches the users referenced by a batch of memories
// (owners and comment authors) in one query and returns them keyed by id.
func loadUserSummaries(ctx context.Context, memories []models.Memory) (map[primitive.ObjectID]map[string]interface{}, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, m := range memories {
		idSet[m.User] = struct{}{}
		for _, c := range m.Comments {
			idSet[c.User] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	summaries := make(map[primitive.ObjectID]map[string]interface{}, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			continue
		}
		summaries[u.ID] = userSummary(&u)
	}
	return summaries, cursor.Err()
}

// memoryPayload renders a memory with its derived likesCount and embedded
// author objects. The raw likes array of ids is kept so clients can check
// their own membership locally.
func memoryPayload(m *models.Memory, users map[primitive.ObjectID]map[string]interface{}) map[string]interface{} {
	likes := make([]string, 0, len(m.Likes))
	for _, id := range m.Likes {
		likes = append(likes, id.Hex())
	}

	comments := make([]map[string]interface{}, 0, len(m.Comments))
	for _, c := range m.Comments {
		comment := map[string]interface{}{
			"text":      c.Text,
			"createdAt": c.CreatedAt,
		}
		if summary, ok := users[c.User]; ok {
			comment["user"] = summary
		} else {
			comment["user"] = c.User.Hex()
		}
		comments = append(comments, comment)
	}

	payload := map[string]interface{}{
		"id":         m.ID.Hex(),
		"caption":    m.Caption,
		"image":      m.Image,
		"emotions":   m.Emotions,
		"likes":      likes,
		"likesCount": m.LikesCount(),
		"comments":   comments,
		"visibility": m.Visibility,
		"createdAt":  m.CreatedAt,
	}
	if summary, ok := users[m.User]; ok {
		payload["user"] = summary
	} else {
		payload["user"] = m.User.Hex()
	}
	return payload
}

// memoryPayloads renders a batch, fetching the referenced users in one query.
func memoryPayloads(ctx context.Context, memories []models.Memory) ([]map[string]interface{}, error) {
	users, err := loadUserSummaries(ctx, memories)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(memories))
	for i := range memories {
		out = append(out, memoryPayload(&memories[i], users))
	}
	return out, nil
}
