package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/koodos-golang/internal/auth"
	"github.com/01moynul/koodos-golang/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORSMiddleware("http://localhost:5173"))
	admin := r.Group("/admin", middleware.AuthMiddleware(tokens), middleware.RequireRole(auth.RoleEditor, auth.RoleAdmin))
	admin.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": c.GetString(middleware.UserIDKey), "role": c.GetString(middleware.UserRoleKey)})
	})
	return r, tokens
}

func TestAuthMiddleware(t *testing.T) {
	r, tokens := newRouter(t)

	editor, err := tokens.GenerateToken("editor-1", auth.RoleEditor, time.Hour)
	require.NoError(t, err)
	reader, err := tokens.GenerateToken("reader-1", "reader", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"role not allowed", "Bearer " + reader, http.StatusForbidden},
		{"editor allowed", "Bearer " + editor, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+editor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"sub":"editor-1","role":"editor"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/admin/me", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
