package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var testTokenSecret = []byte("handler-test-secret")

func init() {
	// Point the fire-and-forget Redis paths (notifications, cache
	// invalidation) at a closed port so they error out instead of panicking.
	database.RedisClient = redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func newMockMT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// authedRouter routes a single handler behind the real bearer-token gate.
func authedRouter(method, pattern string, h http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.With(middleware.Authenticate(testTokenSecret)).Method(method, pattern, h)
	return r
}

func bearerRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	token, err := services.IssueToken(userID, testTokenSecret)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func userDoc(id primitive.ObjectID, username, email string, followers ...primitive.ObjectID) bson.D {
	followerIDs := bson.A{}
	for _, f := range followers {
		followerIDs = append(followerIDs, f)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(time.Now())},
		{Key: "email", Value: email},
		{Key: "username", Value: username},
		{Key: "interests", Value: bson.A{}},
		{Key: "emotions", Value: bson.A{}},
		{Key: "followers", Value: followerIDs},
		{Key: "following", Value: bson.A{}},
		{Key: "role", Value: "user"},
	}
}

func memoryDoc(id, owner primitive.ObjectID, visibility string, likes ...primitive.ObjectID) bson.D {
	likeIDs := bson.A{}
	for _, l := range likes {
		likeIDs = append(likeIDs, l)
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(time.Now())},
		{Key: "user", Value: owner},
		{Key: "caption", Value: "sunset over the bay"},
		{Key: "emotions", Value: bson.A{}},
		{Key: "likes", Value: likeIDs},
		{Key: "comments", Value: bson.A{}},
		{Key: "visibility", Value: visibility},
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIdentical(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("uniform 401", func(mt *mtest.T) {
		database.DB = mt.DB
		usersNS := mt.DB.Name() + ".users"

		// Unknown email: the lookup finds nothing.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		req1 := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"nobody@x.com","password":"secret1"}`))
		rec1 := httptest.NewRecorder()
		Login(rec1, req1)

		// Known email, wrong password: the stored hash does not match.
		hash, err := utils.HashPassword("the-real-password")
		require.NoError(mt, err)
		existing := userDoc(primitive.NewObjectID(), "alice", "alice@x.com")
		existing = append(existing, bson.E{Key: "password", Value: hash})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, existing))

		req2 := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@x.com","password":"wrong"}`))
		rec2 := httptest.NewRecorder()
		Login(rec2, req2)

		assert.Equal(mt, http.StatusUnauthorized, rec1.Code)
		assert.Equal(mt, http.StatusUnauthorized, rec2.Code)

		// Byte-identical bodies: nothing reveals which check failed.
		assert.Equal(mt, rec1.Body.String(), rec2.Body.String())
		assert.JSONEq(mt, `{"success": false, "message": "Invalid credentials"}`, rec1.Body.String())
	})
}

func TestToggleLike_LikeThenUnlikeRestoresCount(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("involution", func(mt *mtest.T) {
		database.DB = mt.DB
		memoriesNS := mt.DB.Name() + ".memories"
		usersNS := mt.DB.Name() + ".users"

		// Actor likes their own memory so no notification is published.
		actorID := primitive.NewObjectID()
		memoryID := primitive.NewObjectID()

		router := authedRouter(http.MethodPost, "/api/memories/{id}/like", ToggleLike)

		// First toggle: the membership-guarded $pull matches nothing, the
		// $addToSet adds the actor.
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, memoriesNS, mtest.FirstBatch, memoryDoc(memoryID, actorID, "public", actorID)),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(actorID, "alice", "alice@x.com")),
		)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodPost, "/api/memories/"+memoryID.Hex()+"/like", "", actorID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)
		memory := decodeBody(mt.T, rec)["memory"].(map[string]interface{})
		assert.Equal(mt, float64(1), memory["likesCount"])
		assert.Contains(mt, memory["likes"], actorID.Hex())

		// Second toggle: the $pull matches and removes the actor.
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, memoriesNS, mtest.FirstBatch, memoryDoc(memoryID, actorID, "public")),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(actorID, "alice", "alice@x.com")),
		)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodPost, "/api/memories/"+memoryID.Hex()+"/like", "", actorID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)
		memory = decodeBody(mt.T, rec)["memory"].(map[string]interface{})
		assert.Equal(mt, float64(0), memory["likesCount"])
		assert.Empty(mt, memory["likes"])
	})
}

func TestUserMemories_VisibilityFilter(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("non-owner queries public only", func(mt *mtest.T) {
		database.DB = mt.DB
		memoriesNS := mt.DB.Name() + ".memories"
		usersNS := mt.DB.Name() + ".users"

		ownerID := primitive.NewObjectID()
		callerID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, memoriesNS, mtest.FirstBatch,
				memoryDoc(primitive.NewObjectID(), ownerID, "public")),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(ownerID, "alice", "alice@x.com")),
		)

		router := authedRouter(http.MethodGet, "/api/memories/user/{userId}", UserMemories)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodGet, "/api/memories/user/"+ownerID.Hex(), "", callerID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)

		visibility, err := evt.Command.LookupErr("filter", "visibility")
		require.NoError(mt, err, "non-owner listing must be restricted to public")
		assert.Equal(mt, "public", visibility.StringValue())
	})

	mt.Run("owner sees every tier", func(mt *mtest.T) {
		database.DB = mt.DB
		memoriesNS := mt.DB.Name() + ".memories"
		usersNS := mt.DB.Name() + ".users"

		ownerID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, memoriesNS, mtest.FirstBatch,
				memoryDoc(primitive.NewObjectID(), ownerID, "private")),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(ownerID, "alice", "alice@x.com")),
		)

		router := authedRouter(http.MethodGet, "/api/memories/user/{userId}", UserMemories)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodGet, "/api/memories/user/"+ownerID.Hex(), "", ownerID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)

		_, err := evt.Command.LookupErr("filter", "visibility")
		assert.Error(mt, err, "owner listing must not filter on visibility")
	})
}

func TestCreateMemory_CaptionLengthInRunes(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("501 runes rejected", func(mt *mtest.T) {
		database.DB = mt.DB

		caption := strings.Repeat("é", 501)
		body, err := json.Marshal(map[string]string{"caption": caption})
		require.NoError(mt, err)

		req := httptest.NewRequest(http.MethodPost, "/api/memories", strings.NewReader(string(body)))
		rec := httptest.NewRecorder()
		CreateMemory(rec, req)

		assert.Equal(mt, http.StatusBadRequest, rec.Code)
		assert.Equal(mt, "Caption cannot exceed 500 characters", decodeBody(mt.T, rec)["message"])
	})

	mt.Run("500 multibyte runes accepted", func(mt *mtest.T) {
		database.DB = mt.DB
		usersNS := mt.DB.Name() + ".users"

		ownerID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(ownerID, "alice", "alice@x.com")),
		)

		// 500 two-byte runes: over the cap in bytes, at the cap in characters.
		caption := strings.Repeat("é", 500)
		body, err := json.Marshal(map[string]string{"caption": caption})
		require.NoError(mt, err)

		router := authedRouter(http.MethodPost, "/api/memories", CreateMemory)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodPost, "/api/memories", string(body), ownerID.Hex()))

		require.Equal(mt, http.StatusCreated, rec.Code)
		memory := decodeBody(mt.T, rec)["memory"].(map[string]interface{})
		assert.Equal(mt, caption, memory["caption"])
	})
}

func TestFollow_ResponseCounts(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("counts after follow", func(mt *mtest.T) {
		database.DB = mt.DB
		usersNS := mt.DB.Name() + ".users"

		actorID := primitive.NewObjectID()
		targetID := primitive.NewObjectID()
		existingFollower := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(actorID, "bob", "bob@x.com")),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(targetID, "alice", "alice@x.com", existingFollower)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		router := authedRouter(http.MethodPost, "/api/follow/{userId}", Follow)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodPost, "/api/follow/"+targetID.Hex(), "", actorID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt.T, rec)
		assert.Equal(mt, float64(2), body["followerCount"])
		assert.Equal(mt, float64(1), body["followingCount"])
		assert.NotContains(mt, body, "followersCount")
	})
}

func TestSuggestions_ResponseShape(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("suggestions carry email and followerCount", func(mt *mtest.T) {
		database.DB = mt.DB
		usersNS := mt.DB.Name() + ".users"

		actorID := primitive.NewObjectID()
		candidateID := primitive.NewObjectID()
		follower := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(actorID, "bob", "bob@x.com")),
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, userDoc(candidateID, "carol", "carol@x.com", follower)),
		)

		router := authedRouter(http.MethodGet, "/api/follow/suggestions", Suggestions)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, bearerRequest(mt.T, http.MethodGet, "/api/follow/suggestions", "", actorID.Hex()))

		require.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt.T, rec)

		suggestions, ok := body["suggestions"].([]interface{})
		require.True(mt, ok, "suggestions key missing")
		require.Len(mt, suggestions, 1)

		entry := suggestions[0].(map[string]interface{})
		assert.Equal(mt, candidateID.Hex(), entry["id"])
		assert.Equal(mt, "carol", entry["username"])
		assert.Equal(mt, "carol@x.com", entry["email"])
		assert.Equal(mt, float64(1), entry["followerCount"])
	})
}

func TestAdminUnblockIP_RequiresIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/admin/unblock-ip", nil)
	rec := httptest.NewRecorder()
	AdminUnblockIP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "IP address is required"}`, rec.Body.String())
}
