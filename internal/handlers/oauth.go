package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/config"
	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOAuth *oauth2.Config

const (
	oauthStatePrefix = "oauth_state:"
	oauthStateTTL    = 10 * time.Minute

	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// googleProfile is the subset of the userinfo response we use.
type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func initGoogleOAuth(c *config.Config) {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return
	}
	googleOAuth = &oauth2.Config{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.BackendURL + "/api/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleLogin starts the redirect-based Google sign-in flow. The CSRF state
// token lives in Redis for 10 minutes so the callback can validate it.
func GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if googleOAuth == nil {
		fail(w, http.StatusInternalServerError, "Google OAuth is not configured")
		return
	}

	state := uuid.NewString()
	ctx, cancel := dbCtx()
	defer cancel()

	if err := database.RedisClient.Set(ctx, oauthStatePrefix+state, "1", oauthStateTTL).Err(); err != nil {
		fail(w, http.StatusInternalServerError, "Failed to start sign-in")
		return
	}

	http.Redirect(w, r, googleOAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the flow: validates state, exchanges the code,
// fetches the verified profile and upserts the account keyed on email. The
// browser is redirected back to the frontend with either a token or an error.
func GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if googleOAuth == nil {
		redirectWithError(w, r, "Google OAuth is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		redirectWithError(w, r, "missing state or code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	deleted, err := database.RedisClient.Del(ctx, oauthStatePrefix+state).Result()
	if err != nil || deleted == 0 {
		redirectWithError(w, r, "invalid or expired state")
		return
	}

	oauthToken, err := googleOAuth.Exchange(ctx, code)
	if err != nil {
		log.Printf("Google OAuth exchange error: %v", err)
		redirectWithError(w, r, "code exchange failed")
		return
	}

	profile, err := fetchGoogleProfile(ctx, oauthToken)
	if err != nil {
		log.Printf("Google OAuth userinfo error: %v", err)
		redirectWithError(w, r, "failed to fetch profile")
		return
	}
	if profile.Email == "" {
		redirectWithError(w, r, "no email in Google profile")
		return
	}

	user, err := upsertGoogleUser(ctx, profile)
	if err != nil {
		log.Printf("Google OAuth upsert error: %v", err)
		redirectWithError(w, r, "failed to create account")
		return
	}

	token, err := services.IssueToken(user.ID.Hex(), jwtSecret)
	if err != nil {
		redirectWithError(w, r, "failed to issue token")
		return
	}

	http.Redirect(w, r,
		fmt.Sprintf("%s/auth/callback?token=%s&success=true", cfg.FrontendURL, url.QueryEscape(token)),
		http.StatusTemporaryRedirect)
}

func fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	client := googleOAuth.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// upsertGoogleUser links on email only: an existing account with the same
// email is reused as-is, otherwise a new one is created with a synthesized
// unique username and a sentinel credential the password login can never match.
func upsertGoogleUser(ctx context.Context, profile *googleProfile) (*models.User, error) {
	users := database.DB.Collection("users")

	var user models.User
	err := users.FindOne(ctx, bson.M{"email": profile.Email}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	base := utils.UsernameBase(profile.Name, profile.Email)
	username := utils.UniqueUsername(base, func(candidate string) bool {
		count, err := users.CountDocuments(ctx, bson.M{"username": candidate})
		return err == nil && count > 0
	})

	user = models.User{
		CreatedAt: time.Now(),
		Email:     profile.Email,
		Password:  fmt.Sprintf("%s%s_%d", utils.ProviderCredentialPrefix, profile.ID, time.Now().UnixMilli()),
		Username:  username,
		Interests: []string{},
		Emotions:  []string{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Role:      models.RoleUser,
	}

	result, err := users.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return &user, nil
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r,
		fmt.Sprintf("%s/auth/callback?success=false&error=%s", cfg.FrontendURL, url.QueryEscape(message)),
		http.StatusTemporaryRedirect)
}
