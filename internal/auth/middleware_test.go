package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newProtectedRouter() (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)

	var captured uuid.UUID
	router := gin.New()
	router.GET("/protected", RequireAuth(testSecret), func(c *gin.Context) {
		id, _ := UserID(c)
		captured = id
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, &captured
}

func TestRequireAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":   userID.String(),
		"aud":   "authenticated",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	router, captured := newProtectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if *captured != userID {
		t.Errorf("handler saw user %s, want %s", captured, userID)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	userID := uuid.New().String()

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{
			name: "expired token",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": userID,
				"aud": "authenticated",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}, testSecret),
		},
		{
			name: "wrong audience",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": userID,
				"aud": "anon",
				"exp": time.Now().Add(time.Hour).Unix(),
			}, testSecret),
		},
		{
			name: "wrong secret",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": userID,
				"aud": "authenticated",
				"exp": time.Now().Add(time.Hour).Unix(),
			}, "some-other-secret"),
		},
		{
			name: "no expiration",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": userID,
				"aud": "authenticated",
			}, testSecret),
		},
		{
			name: "subject not a uuid",
			header: "Bearer " + signToken(t, jwt.MapClaims{
				"sub": "root",
				"aud": "authenticated",
				"exp": time.Now().Add(time.Hour).Unix(),
			}, testSecret),
		},
	}

	router, _ := newProtectedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
