package handlers

import (
	"net/http"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// followPair resolves the caller and the target user from the request. The
// target must exist; the caller is trusted from the verified token.
func followPair(r *http.Request) (actor, target primitive.ObjectID, ok bool) {
	actor, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		return actor, target, false
	}
	target, err = primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		return actor, target, false
	}
	return actor, target, true
}

// Follow makes the caller follow the target user. Both sides of the graph are
// written with set semantics, so a replayed request cannot double-count.
func Follow(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := followPair(r)
	if !ok {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if actorID == targetID {
		fail(w, http.StatusBadRequest, "Cannot follow yourself")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")

	var actor models.User
	if err := users.FindOne(ctx, bson.M{"_id": actorID}).Decode(&actor); err != nil {
		fail(w, http.StatusNotFound, "Current user not found")
		return
	}
	var target models.User
	if err := users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target); err != nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	for _, id := range actor.Following {
		if id == targetID {
			fail(w, http.StatusBadRequest, "Already following this user")
			return
		}
	}

	if _, err := users.UpdateOne(ctx,
		bson.M{"_id": actorID},
		bson.M{"$addToSet": bson.M{"following": targetID}}); err != nil {
		fail(w, http.StatusInternalServerError, "Failed to follow user")
		return
	}
	if _, err := users.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": actorID}}); err != nil {
		// The sweep repairs the reverse edge if this write was lost
		fail(w, http.StatusInternalServerError, "Failed to follow user")
		return
	}

	services.PublishNotification(services.NotifyEvent{
		Type:          services.NotifyTypeFollow,
		UserID:        targetID.Hex(),
		ActorID:       actorID.Hex(),
		ActorUsername: actor.Username,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"followerCount":  len(target.Followers) + 1,
		"followingCount": len(actor.Following) + 1,
	})
}

// Unfollow removes the caller from the target's followers and the target from
// the caller's following list. Unfollowing someone you do not follow is a
// no-op that still succeeds.
func Unfollow(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := followPair(r)
	if !ok {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")

	var target models.User
	if err := users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target); err != nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	var actor models.User
	err := users.FindOneAndUpdate(ctx,
		bson.M{"_id": actorID},
		bson.M{"$pull": bson.M{"following": targetID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&actor)
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "Current user not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to unfollow user")
		return
	}

	err = users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID},
		bson.M{"$pull": bson.M{"followers": actorID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&target)
	if err != nil && err != mongo.ErrNoDocuments {
		fail(w, http.StatusInternalServerError, "Failed to unfollow user")
		return
	}

	services.PublishNotification(services.NotifyEvent{
		Type:          services.NotifyTypeUnfollow,
		UserID:        targetID.Hex(),
		ActorID:       actorID.Hex(),
		ActorUsername: actor.Username,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"followerCount":  len(target.Followers),
		"followingCount": len(actor.Following),
	})
}

// CheckFollowing reports whether the caller currently follows the target.
func CheckFollowing(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := followPair(r)
	if !ok {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	count, err := database.DB.Collection("users").CountDocuments(ctx,
		bson.M{"_id": actorID, "following": targetID})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"isFollowing": count > 0,
	})
}

// Suggestions returns up to 10 users the caller does not already follow.
func Suggestions(w http.ResponseWriter, r *http.Request) {
	actorID, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")

	var actor models.User
	if err := users.FindOne(ctx, bson.M{"_id": actorID}).Decode(&actor); err != nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	exclude := append([]primitive.ObjectID{actorID}, actor.Following...)

	cursor, err := users.Find(ctx,
		bson.M{"_id": bson.M{"$nin": exclude}},
		options.Find().SetLimit(10))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var candidates []models.User
	if err := cursor.All(ctx, &candidates); err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	suggestions := make([]map[string]interface{}, 0, len(candidates))
	for _, u := range candidates {
		suggestions = append(suggestions, map[string]interface{}{
			"id":            u.ID.Hex(),
			"username":      u.Username,
			"email":         u.Email,
			"followerCount": u.FollowerCount(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": suggestions,
	})
}
