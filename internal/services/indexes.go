package services

import (
	"context"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the indexes the API depends on. Called on startup
// from main after Mongo has connected. The unique indexes on email and
// username are what turns duplicate signups into conflicts instead of
// silent double accounts.
func EnsureIndexes(ctx context.Context) error {
	users := database.DB.Collection("users")
	userModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username_unique").SetUnique(true),
		},
	}
	for _, m := range userModels {
		if _, err := users.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}

	memories := database.DB.Collection("memories")
	memoryModels := []mongo.IndexModel{
		{
			// Per-user memory listings, newest first.
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			// Feed pagination over public memories.
			Keys: bson.D{
				{Key: "visibility", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("idx_visibility_created"),
		},
	}
	for _, m := range memoryModels {
		if _, err := memories.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}

	return nil
}
