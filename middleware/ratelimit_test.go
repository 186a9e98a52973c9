package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

// The progress endpoint is the hot path: clients poll it, so it is the
// realistic fixture for the per-IP bucket.
func newRateLimitRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/api/achievements/progress", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func pollProgress(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/achievements/progress", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsFirst(t *testing.T) {
	r := newRateLimitRouter(100, 5)
	assert.Equal(t, http.StatusOK, pollProgress(r, "10.0.0.1").Code)
}

func TestRateLimit_Burst(t *testing.T) {
	// Burst of 3, then reject. Near-zero refill so the bucket stays dry.
	r := newRateLimitRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, pollProgress(r, "10.0.1.1").Code, "poll %d should be allowed", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, pollProgress(r, "10.0.1.1").Code)
}

func TestRateLimit_PerIP(t *testing.T) {
	// Two writers behind different IPs each get their own bucket.
	r := newRateLimitRouter(0.001, 1)

	for _, ip := range []string{"10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, pollProgress(r, ip).Code, "first poll from %s should be OK", ip)
	}

	// A second poll from the first IP exhausts its bucket.
	assert.Equal(t, http.StatusTooManyRequests, pollProgress(r, "10.1.1.1").Code)
}
