package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "7b1e4c2a-1111-4000-8000-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("middleware-test-secret")
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWT(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	token, err := service.GenerateJWT(testUser, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUser, w.Body.String())
}

func TestSimpleRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/x", SimpleRateLimit(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l := newMemoryLimiter()
	l.now = func() time.Time { return now }

	assert.Equal(t, 1, l.hit("a", time.Second))
	assert.Equal(t, 2, l.hit("a", time.Second))
	assert.Equal(t, 1, l.hit("b", time.Second))

	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, l.hit("a", time.Second))
}

func TestClaimRateLimit_PerUserWithoutRedis(t *testing.T) {
	SetRedisClient(nil)

	r := gin.New()
	r.POST("/claim", func(c *gin.Context) {
		if u := c.GetHeader("X-User"); u != "" {
			c.Set(UserIDKey, u)
		}
	}, ClaimRateLimit(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	claim := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/claim", nil)
		req.Header.Set("X-User", user)
		return do(r, req)
	}

	w := claim("u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-ClaimRateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, claim("u1").Code)
	assert.Equal(t, http.StatusOK, claim("u2").Code)
	assert.Equal(t, http.StatusUnauthorized, claim("").Code)
}

func TestMetricsCountsUnmatched(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	w := do(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
