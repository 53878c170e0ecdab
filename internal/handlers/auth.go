package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SignupRequest represents the request to create an account
type SignupRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Username  string   `json:"username"`
	Interests []string `json:"interests,omitempty"`
	Emotions  []string `json:"emotions,omitempty"`
}

// LoginRequest represents the request to sign in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authUserPayload is the user object returned alongside a fresh token.
func authUserPayload(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID.Hex(),
		"email":          u.Email,
		"username":       u.Username,
		"interests":      u.Interests,
		"emotions":       u.Emotions,
		"role":           u.Role,
		"profilePicture": u.ProfilePicture,
	}
}

// Signup handles user registration
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if req.Email == "" || req.Password == "" || req.Username == "" {
		fail(w, http.StatusBadRequest, "Email, password, and username are required")
		return
	}
	if !utils.IsProviderCredential(req.Password) && len(req.Password) < models.MinPasswordLength {
		fail(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}
	if err := models.ValidateTagList("Interests", req.Interests); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := models.ValidateTagList("Emotions", req.Emotions); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	// Check if user already exists by email
	count, err := database.DB.Collection("users").CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		fail(w, http.StatusConflict, "User already exists")
		return
	}

	// OAuth sentinels are stored verbatim so the login path can never match them
	password := req.Password
	if !utils.IsProviderCredential(password) {
		password, err = utils.HashPassword(password)
		if err != nil {
			fail(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
	}

	user := models.User{
		CreatedAt: time.Now(),
		Email:     req.Email,
		Password:  password,
		Username:  req.Username,
		Interests: orEmpty(req.Interests),
		Emotions:  orEmpty(req.Emotions),
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Role:      models.RoleUser,
	}

	result, err := database.DB.Collection("users").InsertOne(ctx, user)
	if err != nil {
		// The unique indexes catch signup races and duplicate usernames
		if mongo.IsDuplicateKeyError(err) {
			fail(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("ERROR: Failed to create user: %v", err)
		fail(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	token, err := services.IssueToken(user.ID.Hex(), jwtSecret)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    authUserPayload(&user),
	})
}

// Login handles email/password sign in. Unknown email and wrong password fail
// identically so the response leaks nothing about which one it was.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := services.IssueToken(user.ID.Hex(), jwtSecret)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    authUserPayload(&user),
	})
}

// AdminLogin authenticates against the out-of-band admin allow-list. On first
// use for an allow-listed email the matching user is created (or promoted) with
// the admin role; afterwards the stored hash is what gets verified.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, ok := cfg.FindAdminAccount(req.Email)
	if !ok || req.Password != account.Password {
		fail(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")

	var admin models.User
	err := users.FindOne(ctx, bson.M{"email": account.Email}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		hashed, err := utils.HashPassword(account.Password)
		if err != nil {
			fail(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		admin = models.User{
			CreatedAt: time.Now(),
			Email:     account.Email,
			Password:  hashed,
			Username:  account.Username,
			Interests: []string{},
			Emotions:  []string{},
			Role:      models.RoleAdmin,
		}
		result, err := users.InsertOne(ctx, admin)
		if err != nil {
			log.Printf("ERROR: Failed to create admin user: %v", err)
			fail(w, http.StatusInternalServerError, "Failed to create admin user")
			return
		}
		admin.ID = result.InsertedID.(primitive.ObjectID)
	} else if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	} else {
		if !admin.IsAdmin() {
			if _, err := users.UpdateOne(ctx, bson.M{"_id": admin.ID}, bson.M{"$set": bson.M{"role": models.RoleAdmin}}); err != nil {
				fail(w, http.StatusInternalServerError, "Failed to promote admin user")
				return
			}
			admin.Role = models.RoleAdmin
		}
		if !utils.VerifyPassword(req.Password, admin.Password) {
			fail(w, http.StatusUnauthorized, "Invalid admin credentials")
			return
		}
	}

	token, err := services.IssueToken(admin.ID.Hex(), jwtSecret)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	payload := authUserPayload(&admin)
	payload["isAdmin"] = true

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    payload,
	})
}

func orEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
