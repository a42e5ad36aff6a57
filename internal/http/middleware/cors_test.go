package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, origin := range []string{"http://localhost:9002", "http://127.0.0.1:3000"} {
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(nil))
			r.OPTIONS("/api/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			rec := preflight(r, origin)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSConfiguredOriginsReplaceDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://roadmap.example.com"}))
	r.OPTIONS("/api/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, "https://roadmap.example.com", preflight(r, "https://roadmap.example.com").Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusForbidden, preflight(r, "http://localhost:3000").Code)
}
