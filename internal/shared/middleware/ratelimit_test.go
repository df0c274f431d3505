package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"contentpilot-backend/internal/shared/ratelimit"
)

func rateLimitedRouter(limiter *ratelimit.Limiter, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", *userID)
	})
	router.POST("/generate",
		RateLimit(limiter, ratelimit.BucketGeneration),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func postGenerate(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitBudgetIsPerUser(t *testing.T) {
	limiter := ratelimit.New(map[ratelimit.Bucket]ratelimit.Limit{
		ratelimit.BucketGeneration: {MaxRequests: 2, Window: time.Minute},
	})

	userID := uuid.New()
	router := rateLimitedRouter(limiter, &userID)

	assert.Equal(t, http.StatusOK, postGenerate(router).Code)
	assert.Equal(t, http.StatusOK, postGenerate(router).Code)

	rejected := postGenerate(router)
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.NotEmpty(t, rejected.Header().Get("Retry-After"))

	// A second editor has their own budget; one user exhausting theirs
	// must not starve the rest of the workspace.
	userID = uuid.New()
	assert.Equal(t, http.StatusOK, postGenerate(router).Code)
}
