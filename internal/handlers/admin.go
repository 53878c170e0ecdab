package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/models"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/AnshRaj112/aura-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminPageSize is the default page size for admin listings.
const AdminPageSize = 20

func adminPagination(page, limit, skip int, total int64) map[string]interface{} {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return map[string]interface{}{
		"page":    page,
		"limit":   limit,
		"total":   total,
		"pages":   pages,
		"hasMore": int64(skip+limit) < total,
	}
}

// AdminStats returns dashboard headline numbers.
func AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")
	memories := database.DB.Collection("memories")

	totalUsers, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	totalMemories, err := memories.CountDocuments(ctx, bson.M{})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	totalNFTs, err := memories.CountDocuments(ctx, bson.M{"visibility": models.VisibilityPublic})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	cursor, err := memories.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"likes": 1}))
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

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"totalUsers":    totalUsers,
			"totalMemories": totalMemories,
			"totalNFTs":     totalNFTs,
			"totalLikes":    totalLikes,
		},
	})
}

// AdminUserGrowth counts signups per calendar month over the last 12 months.
func AdminUserGrowth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")
	now := time.Now()

	type monthPoint struct {
		Month string `json:"month"`
		Count int64  `json:"count"`
	}

	points := make([]monthPoint, 0, 12)
	for i := 11; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		count, err := users.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": monthStart, "$lt": monthEnd},
		})
		if err != nil {
			fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		points = append(points, monthPoint{
			Month: monthStart.Format("Jan 2006"),
			Count: count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    points,
	})
}

// AdminMemoryActivity counts memories created per day over the last 7 days.
func AdminMemoryActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	memories := database.DB.Collection("memories")
	now := time.Now()

	type dayPoint struct {
		Day   string `json:"day"`
		Count int64  `json:"count"`
	}

	points := make([]dayPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		count, err := memories.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": dayStart, "$lt": dayEnd},
		})
		if err != nil {
			fail(w, http.StatusInternalServerError, "Database error")
			return
		}

		points = append(points, dayPoint{
			Day:   dayStart.Format("Mon"),
			Count: count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    points,
	})
}

// AdminUsers lists all users with per-user memory counts.
func AdminUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.ParsePagination(r.URL.Query(), AdminPageSize)

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")
	memories := database.DB.Collection("memories")

	total, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	cursor, err := users.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var results []models.User
	if err := cursor.All(ctx, &results); err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	payload := make([]map[string]interface{}, 0, len(results))
	for _, u := range results {
		memoriesCount, err := memories.CountDocuments(ctx, bson.M{"user": u.ID})
		if err != nil {
			fail(w, http.StatusInternalServerError, "Database error")
			return
		}
		payload = append(payload, map[string]interface{}{
			"id":            u.ID.Hex(),
			"username":      u.Username,
			"email":         u.Email,
			"createdAt":     u.CreatedAt,
			"role":          u.Role,
			"memoriesCount": memoriesCount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"users":      payload,
		"pagination": adminPagination(page, limit, skip, total),
	})
}

// adminMemoryList is the shared listing behind the memories and nfts views.
func adminMemoryList(w http.ResponseWriter, r *http.Request, filter bson.M, key string) {
	page, limit, skip := utils.ParsePagination(r.URL.Query(), AdminPageSize)

	ctx, cancel := dbCtx()
	defer cancel()

	memories := database.DB.Collection("memories")

	total, err := memories.CountDocuments(ctx, filter)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	cursor, err := memories.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)))
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
		"success":    true,
		key:          payloads,
		"pagination": adminPagination(page, limit, skip, total),
	})
}

// AdminMemories lists every memory, regardless of visibility.
func AdminMemories(w http.ResponseWriter, r *http.Request) {
	adminMemoryList(w, r, bson.M{}, "memories")
}

// AdminNFTs lists public memories. NFTs are public memories for now.
func AdminNFTs(w http.ResponseWriter, r *http.Request) {
	adminMemoryList(w, r, bson.M{"visibility": models.VisibilityPublic}, "nfts")
}

// AdminLikes ranks all memories by like count. The whole collection is pulled
// and sorted in process, matching the dashboard's current expectations; fine
// at present scale, revisit with an aggregation pipeline if it grows.
func AdminLikes(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.ParsePagination(r.URL.Query(), AdminPageSize)

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("memories").Find(ctx, bson.M{})
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

	totalLikes := 0
	for _, m := range results {
		totalLikes += m.LikesCount()
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].LikesCount() > results[j].LikesCount()
	})

	total := len(results)

	pageSlice := []models.Memory{}
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		pageSlice = results[skip:end]
	}

	topEnd := 10
	if topEnd > total {
		topEnd = total
	}

	pagePayloads, err := memoryPayloads(ctx, pageSlice)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}
	topPayloads, err := memoryPayloads(ctx, results[:topEnd])
	if err != nil {
		fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"totalLikes": totalLikes,
		"memories":   pagePayloads,
		"topLiked":   topPayloads,
		"pagination": adminPagination(page, limit, skip, int64(total)),
	})
}

// AdminUnblockIP lifts a rate-limit block for a client IP before its 24h
// expiry.
func AdminUnblockIP(w http.ResponseWriter, r *http.Request) {
	ipAddress := strings.TrimSpace(r.URL.Query().Get("ip"))
	if ipAddress == "" {
		fail(w, http.StatusBadRequest, "IP address is required")
		return
	}

	if err := middleware.UnblockIP(ipAddress); err != nil {
		fail(w, http.StatusInternalServerError, "Failed to unblock IP")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "IP unblocked successfully",
	})
}

// AdminDeleteMemory removes any memory, regardless of owner.
func AdminDeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	res, err := database.DB.Collection("memories").DeleteOne(ctx, bson.M{"_id": memoryID})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to delete memory")
		return
	}
	if res.DeletedCount == 0 {
		fail(w, http.StatusNotFound, "Memory not found")
		return
	}

	services.Cache.Delete(services.TrendingCacheKey)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Memory deleted successfully",
	})
}
