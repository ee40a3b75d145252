package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b stubBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return b.revoked[token], b.err
}

func newAuthEngine(t *testing.T, blacklist TokenBlacklist) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	manager := jwt.NewManager("secret", time.Hour, 2*time.Hour)
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(manager, blacklist).RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    GetMemberID(c),
			"email": GetEmail(c),
			"token": GetToken(c) != "",
		})
	})
	return r, manager
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, manager := newAuthEngine(t, stubBlacklist{revoked: map[string]bool{}})
	pair, err := manager.GenerateToken(7, "a@b.com", "ROLE_MEMBER")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"没有Authorization", "", http.StatusUnauthorized, "请先登录"},
		{"不是Bearer", "Basic abc", http.StatusUnauthorized, "Token格式错误"},
		{"Bearer后为空", "Bearer ", http.StatusUnauthorized, "Token格式错误"},
		{"无效Token", "Bearer abc.def.ghi", http.StatusUnauthorized, "无效的Token"},
		{"Refresh Token不能访问", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, ""},
		{"有效Token", "Bearer " + pair.AccessToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := get(r, "/me", headers)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, w.Body.String(), tt.wantMsg)
			}
		})
	}

	w := get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	assert.JSONEq(t, `{"id":7,"email":"a@b.com","token":true}`, w.Body.String())
}

func TestRequireAuth_Blacklist(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour, 2*time.Hour)
	pair, err := manager.GenerateToken(1, "a@b.com", "ROLE_MEMBER")
	require.NoError(t, err)

	r, _ := newAuthEngine(t, stubBlacklist{revoked: map[string]bool{pair.AccessToken: true}})
	w := get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token已失效，请重新登录")

	r, _ = newAuthEngine(t, stubBlacklist{err: errors.New("redis down")})
	w = get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func newCORSEngine(cfg config.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.String(http.StatusOK, "not reached") })
	return r
}

func TestCORS(t *testing.T) {
	r := newCORSEngine(config.CORSConfig{
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET", "PATCH"},
		AllowHeaders:  []string{"Authorization"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        time.Hour,
	})

	w := get(r, "/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PATCH", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))

	w = get(r, "/ping", map[string]string{"Origin": "http://evil.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code, "非浏览器请求不检查Origin")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	pre := httptest.NewRecorder()
	r.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	w := get(newCORSEngine(config.CORSConfig{AllowOrigins: []string{"*"}}), "/ping",
		map[string]string{"Origin": "http://any.com"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(newCORSEngine(config.CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}), "/ping",
		map[string]string{"Origin": "http://any.com"})
	assert.Equal(t, "http://any.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNotFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFound())
	w := get(r, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":404,"message":"请求的资源不存在","fieldErrors":[]}`, w.Body.String())
}
