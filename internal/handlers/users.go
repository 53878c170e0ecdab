package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpdateProfileRequest carries the editable profile fields. Pointers
// distinguish "not sent" from "set to null/empty".
type UpdateProfileRequest struct {
	Username       *string   `json:"username"`
	Interests      *[]string `json:"interests"`
	Emotions       *[]string `json:"emotions"`
	ProfilePicture *string   `json:"profilePicture"`
	pictureSent    bool
}

// UnmarshalJSON records whether profilePicture appeared at all, since null is
// a meaningful value (remove the picture).
func (u *UpdateProfileRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateProfileRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = UpdateProfileRequest(a)
	_, u.pictureSent = raw["profilePicture"]
	return nil
}

func profileResponse(u *models.User) map[string]interface{} {
	followers := make([]string, 0, len(u.Followers))
	for _, id := range u.Followers {
		followers = append(followers, id.Hex())
	}
	following := make([]string, 0, len(u.Following))
	for _, id := range u.Following {
		following = append(following, id.Hex())
	}

	return map[string]interface{}{
		"id":             u.ID.Hex(),
		"username":       u.Username,
		"email":          u.Email,
		"interests":      u.Interests,
		"emotions":       u.Emotions,
		"createdAt":      u.CreatedAt,
		"followers":      followers,
		"following":      following,
		"role":           u.Role,
		"profilePicture": u.ProfilePicture,
	}
}

// Me returns the authenticated caller's own profile.
func Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	user, err := findUserByID(ctx, middleware.UserID(r))
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    profileResponse(user),
	})
}

// UpdateProfile edits username, interests, emotions and profile picture.
// Email and password are not editable here.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Interests != nil {
		if err := models.ValidateTagList("Interests", *req.Interests); err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Emotions != nil {
		if err := models.ValidateTagList("Emotions", *req.Emotions); err != nil {
			fail(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := findUserByID(ctx, middleware.UserID(r))
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	update := bson.M{}
	if req.Username != nil {
		update["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Interests != nil {
		update["interests"] = *req.Interests
	}
	if req.Emotions != nil {
		update["emotions"] = *req.Emotions
	}
	if req.pictureSent {
		// Removing the picture also destroys the old asset, best effort
		if req.ProfilePicture == nil && user.ProfilePicture != nil && cloudinaryService != nil {
			cloudinaryService.DeleteImageByURL(ctx, *user.ProfilePicture)
		}
		update["profilePicture"] = req.ProfilePicture
	}

	if len(update) > 0 {
		_, err = database.DB.Collection("users").UpdateOne(ctx,
			bson.M{"_id": user.ID}, bson.M{"$set": update})
		if mongo.IsDuplicateKeyError(err) {
			fail(w, http.StatusConflict, "Username already exists")
			return
		}
		if err != nil {
			fail(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	updated, err := findUserByID(ctx, middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    profileResponse(updated),
	})
}

// SearchUsers finds users by username substring, case-insensitive, excluding
// the caller. Capped at 20 results.
func SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"users":   []interface{}{},
		})
		return
	}

	callerID, err := primitive.ObjectIDFromHex(middleware.UserID(r))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	filter := bson.M{
		"username": bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"},
		"_id":      bson.M{"$ne": callerID},
	}

	cursor, err := database.DB.Collection("users").Find(ctx, filter, options.Find().SetLimit(20))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	results := []map[string]interface{}{}
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			continue
		}
		results = append(results, map[string]interface{}{
			"id":            u.ID.Hex(),
			"username":      u.Username,
			"email":         u.Email,
			"followerCount": u.FollowerCount(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   results,
	})
}

// UploadProfilePicture uploads a new avatar, replaces the stored URL and
// destroys the previous asset best effort.
func UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
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
		fail(w, http.StatusBadRequest, "No image file uploaded")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := findUserByID(ctx, middleware.UserID(r))
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	imageURL, err := cloudinaryService.UploadProfilePicture(ctx, file)
	if err != nil {
		log.Printf("ERROR: Profile picture upload failed: %v", err)
		fail(w, http.StatusInternalServerError, "Failed to upload profile picture")
		return
	}

	if user.ProfilePicture != nil {
		cloudinaryService.DeleteImageByURL(ctx, *user.ProfilePicture)
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"profilePicture": imageURL}})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"profilePicture": imageURL,
		"message":        "Profile picture updated successfully",
	})
}

// GetUserByID returns a public user profile with its memory count. No auth
// required.
func GetUserByID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := findUserByID(ctx, userID)
	if err == mongo.ErrNoDocuments {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	memoryCount, err := database.DB.Collection("memories").CountDocuments(ctx, bson.M{"user": user.ID})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	payload := profileResponse(user)
	delete(payload, "role")
	payload["memoryCount"] = memoryCount

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    payload,
	})
}
