package handlers

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedPageSize is the default page size for the main feed.
const FeedPageSize = 10

// CreateMemoryRequest represents the request to create a memory
type CreateMemoryRequest struct {
	Caption    string   `json:"caption"`
	Image      *string  `json:"image"`
	Emotions   []string `json:"emotions"`
	Visibility string   `json:"visibility"`
}

// CommentRequest represents the request to add a comment
type CommentRequest struct {
	Text string `json:"text"`
}

// Feed returns public memories, newest first, paginated.
func Feed(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.ParsePagination(r.URL.Query(), FeedPageSize)

	ctx, cancel := dbCtx()
	defer cancel()

	filter := bson.M{"visibility": models.VisibilityPublic}
	memories := database.DB.Collection("memories")

	total, err := memories.CountDocuments(ctx, filter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := memories.Find(ctx, filter, findOptions)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var results []models.Memory
	if err := cursor.All(ctx, &results); err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	payloads, err := memoryPayloads(ctx, results)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"memories": payloads,
		"hasMore":  utils.HasMore(skip, len(results), total),
		"page":     page,
		"limit":    limit,
		"total":    total,
	})
}

// CreateMemory creates a new memory owned by the caller.
func CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Caption) == "" {
		fail(w, http.StatusBadRequest, "Caption is required")
		return
	}
	if utf8.RuneCountInString(req.Caption) > models.MaxCaptionLength {
		fail(w, http.StatusBadRequest, "Caption cannot exceed 500 characters")
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !models.ValidVisibility(visibility) {
		fail(w, http.StatusBadRequest, "Invalid visibility")
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	memory := models.Memory{
		CreatedAt:  time.Now(),
		User:       ownerID,
		Caption:    req.Caption,
		Image:      req.Image,
		Emotions:   orEmpty(req.Emotions),
		Likes:      []primitive.ObjectID{},
		Comments:   []models.Comment{},
		Visibility: visibility,
	}

	result, err := database.DB.Collection("memories").InsertOne(ctx, memory)
	if err != nil {
		log.Printf("ERROR: Failed to create memory: %v", err)
		fail(w, http.StatusInternalServerError, "Failed to create memory")
		return
	}
	memory.ID = result.InsertedID.(primitive.ObjectID)

	// Trending is derived from public captions; drop the cached list
	services.Cache.Delete(services.TrendingCacheKey)

	payloads, err := memoryPayloads(ctx, []models.Memory{memory})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"memory":  payloads[0],
	})
}

// ToggleLike adds the caller to a memory's likes set, or removes them if
// already present. Both steps are single atomic array updates, so concurrent
// toggles cannot produce duplicate entries.
func ToggleLike(w http.ResponseWriter, r *http.Request) {
	memoryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	memories := database.DB.Collection("memories")

	// Unlike first: matches only when the actor is already in the set
	liked := false
	res, err := memories.UpdateOne(ctx,
		bson.M{"_id": memoryID, "likes": actorID},
		bson.M{"$pull": bson.M{"likes": actorID}})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		res, err = memories.UpdateOne(ctx,
			bson.M{"_id": memoryID},
			bson.M{"$addToSet": bson.M{"likes": actorID}})
		if err != nil {
			fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		if res.MatchedCount == 0 {
			fail(w, http.StatusNotFound, "Memory not found")
			return
		}
		liked = true
	}

	var memory models.Memory
	if err := memories.FindOne(ctx, bson.M{"_id": memoryID}).Decode(&memory); err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}

	if liked && memory.User != actorID {
		services.PublishNotification(services.NotifyEvent{
			Type:     services.NotifyTypeLike,
			UserID:   memory.User.Hex(),
			ActorID:  actorID.Hex(),
			MemoryID: memory.ID.Hex(),
		})
	}

	payloads, err := memoryPayloads(ctx, []models.Memory{memory})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"memory":  payloads[0],
	})
}

// AddComment appends a comment to a memory's ordered comment list.
func AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		fail(w, http.StatusBadRequest, "Comment text is required")
		return
	}

	memoryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	comment := models.Comment{
		User:      actorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	var memory models.Memory
	err = database.DB.Collection("memories").FindOneAndUpdate(ctx,
		bson.M{"_id": memoryID},
		bson.M{"$push": bson.M{"comments": comment}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&memory)
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	if memory.User != actorID {
		services.PublishNotification(services.NotifyEvent{
			Type:     services.NotifyTypeComment,
			UserID:   memory.User.Hex(),
			ActorID:  actorID.Hex(),
			MemoryID: memory.ID.Hex(),
		})
	}

	payloads, err := memoryPayloads(ctx, []models.Memory{memory})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"memory":  payloads[0],
	})
}

// UserMemories lists a specific user's memories. Anyone who is not the owner
// only ever sees public ones.
func UserMemories(w http.ResponseWriter, r *http.Request) {
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	filter := bson.M{"user": targetID}
	if middleware.UserID(r) != targetID.Hex() {
		filter["visibility"] = models.VisibilityPublic
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("memories").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var results []models.Memory
	if err := cursor.All(ctx, &results); err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	payloads, err := memoryPayloads(ctx, results)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"memories": payloads,
	})
}

// DeleteMemory hard-deletes a memory. Only the owner may use this route;
// admins go through the admin API.
func DeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	memories := database.DB.Collection("memories")

	var memory models.Memory
	if err := memories.FindOne(ctx, bson.M{"_id": memoryID}).Decode(&memory); err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}

	if memory.User.Hex() != middleware.UserID(r) {
		fail(w, http.StatusForbidden, "Not authorized to delete this memory")
		return
	}

	if _, err := memories.DeleteOne(ctx, bson.M{"_id": memoryID}); err != nil {
		fail(w, http.StatusInternalServerError, "Failed to delete memory")
		return
	}

	services.Cache.Delete(services.TrendingCacheKey)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Memory deleted successfully",
	})
}

// UploadMemoryImage uploads a post image to Cloudinary and returns its URL.
func UploadMemoryImage(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		fail(w, http.StatusInternalServerError, "File upload service not available")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		fail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		fail(w, http.StatusBadRequest, "No image file uploaded. Please select an image file.")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	imageURL, err := cloudinaryService.UploadMemoryImage(ctx, file)
	if err != nil {
		log.Printf("ERROR: Memory image upload failed: %v", err)
		fail(w, http.StatusInternalServerError, "Error uploading image. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"imageUrl":  imageURL,
		"secureUrl": imageURL,
	})
}

// TrendingHashtags returns the top 5 hashtags across public captions.
// Public data, no auth required; served from the Redis cache when warm.
func TrendingHashtags(w http.ResponseWriter, r *http.Request) {
	var cached []utils.HashtagCount
	if found, _ := services.Cache.Get(services.TrendingCacheKey, &cached); found {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"hashtags": cached,
		})
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("memories").Find(ctx,
		bson.M{"visibility": models.VisibilityPublic},
		options.Find().SetProjection(bson.M{"caption": 1}))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var captions []string
	for cursor.Next(ctx) {
		var doc struct {
			Caption string `bson:"caption"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		captions = append(captions, doc.Caption)
	}

	trending := utils.TrendingHashtags(captions, 5)
	services.Cache.Set(services.TrendingCacheKey, trending, services.TrendingCacheTTL)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"hashtags": trending,
	})
}

// MemoryStats returns marketplace statistics over public memories.
func MemoryStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	memories := database.DB.Collection("memories")
	publicFilter := bson.M{"visibility": models.VisibilityPublic}

	totalMemories, err := memories.CountDocuments(ctx, publicFilter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	cursor, err := memories.Find(ctx, publicFilter, options.Find().SetProjection(bson.M{"likes": 1}))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	totalLikes := 0
	for cursor.Next(ctx) {
		var doc struct {
			Likes []primitive.ObjectID `bson:"likes"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		totalLikes += len(doc.Likes)
	}

	sellers, err := memories.Distinct(ctx, "user", publicFilter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Placeholder pricing until real listings exist
	const floorPrice = 0.1
	const averagePrice = 0.25
	volume24h := math.Round(float64(totalMemories)*averagePrice*100) / 100

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"totalMemories": totalMemories,
			"totalLikes":    totalLikes,
			"activeSellers": len(sellers),
			"floorPrice":    floorPrice,
			"volume24h":     volume24h,
		},
	})
}
