package services

import (
	"context"
	"log"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The follow relationship is two writes on two documents with no transaction.
// The writes themselves are idempotent ($addToSet/$pull), but a crash between
// them leaves the graph asymmetric. The sweep walks every user's following
// list and re-adds the reverse edge. Only the following ⇒ followers direction
// is repaired: repairing the reverse could resurrect a half-completed unfollow.

// StartFollowGraphSweep starts a background goroutine that periodically
// repairs follow-graph asymmetry. Runs once at startup, then every
// intervalHours.
func StartFollowGraphSweep(intervalHours int) {
	if intervalHours <= 0 {
		intervalHours = 1
	}

	go func() {
		ticker := time.NewTicker(time.Duration(intervalHours) * time.Hour)
		defer ticker.Stop()

		if err := ReconcileFollowGraph(context.Background()); err != nil {
			log.Printf("follow graph sweep error: %v", err)
		}

		for range ticker.C {
			if err := ReconcileFollowGraph(context.Background()); err != nil {
				log.Printf("follow graph sweep error: %v", err)
			}
		}
	}()
}

type followEdges struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Following []primitive.ObjectID `bson:"following"`
}

// ReconcileFollowGraph ensures every following edge has its matching
// followers entry. Safe to run concurrently with live traffic: $addToSet on an
// already-consistent pair is a no-op.
func ReconcileFollowGraph(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	users := database.DB.Collection("users")

	cursor, err := users.Find(ctx, bson.M{"following.0": bson.M{"$exists": true}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	repaired := 0
	for cursor.Next(ctx) {
		var u followEdges
		if err := cursor.Decode(&u); err != nil {
			continue
		}

		for _, target := range u.Following {
			res, err := users.UpdateOne(ctx,
				bson.M{"_id": target},
				bson.M{"$addToSet": bson.M{"followers": u.ID}},
			)
			if err != nil {
				return err
			}
			if res.ModifiedCount > 0 {
				repaired++
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	if repaired > 0 {
		log.Printf("follow graph sweep repaired %d missing follower edges", repaired)
	}
	return nil
}
