package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func authedHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, UserID(r))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := "64b7f1c2e4a9d83a5c0f1234"
	token, err := services.IssueToken(userID, testSecret)
	require.NoError(t, err)

	handler := Authenticate(testSecret)(authedHandler(t, userID))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "No token provided"}`, rec.Body.String())
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticate_BadSignature(t *testing.T) {
	token, err := services.IssueToken("u1", []byte("other-secret"))
	require.NoError(t, err)

	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Invalid token"}`, rec.Body.String())
}

func withRole(t *testing.T, role string, err error) {
	t.Helper()
	orig := lookupRole
	lookupRole = func(ctx context.Context, userID string) (string, error) {
		return role, err
	}
	t.Cleanup(func() { lookupRole = orig })
}

func adminRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	if userID != "" {
		ctx := context.WithValue(req.Context(), userIDKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	withRole(t, "admin", nil)

	called := false
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest("64b7f1c2e4a9d83a5c0f1234"))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	withRole(t, "user", nil)

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest("64b7f1c2e4a9d83a5c0f1234"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Admin access required"}`, rec.Body.String())
}

func TestRequireAdmin_NoBoundIdentity(t *testing.T) {
	withRole(t, "admin", nil)

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_UserGone(t *testing.T) {
	withRole(t, "", errUserNotFound)

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, adminRequest("64b7f1c2e4a9d83a5c0f1234"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", BearerToken(req))

	req.Header.Set("Authorization", "bearer abc")
	assert.Empty(t, BearerToken(req))
}
