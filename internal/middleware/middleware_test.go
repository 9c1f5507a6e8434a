package middleware

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	store "pollopollo/internal/db"
	"pollopollo/internal/domain"
	"pollopollo/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const secret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	id, _ := UserID(c)
	c.JSON(http.StatusOK, gin.H{"userID": id, "role": c.GetString(ContextUserRole)})
}

func bearer(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(userID, "Jane Doe", role, secret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(secret), okHandler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nonsense", http.StatusUnauthorized},
		{"valid", bearer(t, 7, "Receiver"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"userID":7,"role":"Receiver"}`, w.Body.String())
			}
		})
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.AutoMigrate(gdb))
	return gdb
}

func TestRoleMiddleware(t *testing.T) {
	gdb := newTestDB(t)
	producer := domain.User{FirstName: "P", SurName: "P", Email: "p@example.com", Password: "x", Country: "DK"}
	require.NoError(t, gdb.Create(&producer).Error)
	require.NoError(t, gdb.Create(&domain.UserRole{UserID: producer.ID, Role: domain.RoleProducer}).Error)
	receiver := domain.User{FirstName: "R", SurName: "R", Email: "r@example.com", Password: "x", Country: "DK"}
	require.NoError(t, gdb.Create(&receiver).Error)
	require.NoError(t, gdb.Create(&domain.UserRole{UserID: receiver.ID, Role: domain.RoleReceiver}).Error)

	r := gin.New()
	r.POST("/products", JWTAuthMiddleware(secret), RoleMiddleware(gdb, domain.RoleProducer), okHandler)

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do(bearer(t, producer.ID, "Producer")))
	assert.Equal(t, http.StatusForbidden, do(bearer(t, receiver.ID, "Receiver")))
	// The stored role wins over a forged claim
	assert.Equal(t, http.StatusForbidden, do(bearer(t, receiver.ID, "Producer")))
	assert.Equal(t, http.StatusForbidden, do(bearer(t, 999, "Producer")))

	bare := gin.New()
	bare.GET("/x", RoleMiddleware(gdb, domain.RoleProducer), okHandler)
	w := httptest.NewRecorder()
	bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// localRequest builds a request from remote that arrived on the given local port
func localRequest(remote string, port int) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/local", nil)
	req.RemoteAddr = remote
	local := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	return req.WithContext(context.WithValue(req.Context(), http.LocalAddrContextKey, local))
}

func TestLocalOnlyMiddleware(t *testing.T) {
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"127.0.0.1"}))
	r.GET("/local", LocalOnlyMiddleware("4001"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	serve := func(req *http.Request) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(localRequest("127.0.0.1:5555", 4001)))
	assert.Equal(t, http.StatusNoContent, serve(localRequest("[::1]:5555", 4001)))
	assert.Equal(t, http.StatusForbidden, serve(localRequest("10.0.0.8:5555", 4001)))
	// Loopback on the public listener, as seen behind a local reverse proxy
	assert.Equal(t, http.StatusForbidden, serve(localRequest("127.0.0.1:5555", 8080)))

	forwarded := localRequest("127.0.0.1:5555", 4001)
	forwarded.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusForbidden, serve(forwarded))

	bare := httptest.NewRequest(http.MethodGet, "/local", nil)
	bare.RemoteAddr = "127.0.0.1:5555"
	assert.Equal(t, http.StatusForbidden, serve(bare), "no local address")
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewRateLimiter(0.001, 2).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body),
		`pollopollo_http_requests_total{method="GET",path="/ping",status="200"} 1`))
}
