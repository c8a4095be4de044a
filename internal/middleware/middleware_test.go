package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"line_price_portal/internal/model"

	"github.com/gin-gonic/gin"
)

// ==================== 测试辅助 ====================

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker map[model.Role][]model.Permission

func (s stubChecker) HasPermission(_ context.Context, role model.Role, p model.Permission) bool {
	for _, perm := range s[role] {
		if perm == p {
			return true
		}
	}
	return false
}

type stubUsers map[int64]*model.User

func (s stubUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return s[id], nil
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return resp
}

// ==================== JWT ====================

func TestTokenPair_RoundTrip(t *testing.T) {
	access, refresh, err := GenerateTokenPair(7, "alice", model.RoleWorker)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	claims, err := ParseToken(access)
	if err != nil {
		t.Fatalf("解析 Access Token 失败: %v", err)
	}
	if claims.UserID != 7 || claims.Role != model.RoleWorker || claims.Subject != TokenSubjectAccess {
		t.Errorf("claims = %+v, want user 7 worker access", claims)
	}

	claims, err = ParseToken(refresh)
	if err != nil {
		t.Fatalf("解析 Refresh Token 失败: %v", err)
	}
	if claims.Subject != TokenSubjectRefresh {
		t.Errorf("Subject = %v, want %v", claims.Subject, TokenSubjectRefresh)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "bob", model.RoleUser)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	orig := GetJWTConfig()
	SetJWTConfig(&JWTConfig{SecretKey: "other", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour, Issuer: orig.Issuer})
	defer SetJWTConfig(orig)

	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken() error = nil, want signature error")
	}
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"id": GetUserID(c), "role": GetUserRole(c)}})
	})

	access, refresh, _ := GenerateTokenPair(3, "carol", model.RoleOperator)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "abc", http.StatusUnauthorized},
		{"refresh token", refresh, http.StatusUnauthorized},
		{"access token", access, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/me", tt.token)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// ==================== 权限 ====================

func TestRequirePermission(t *testing.T) {
	checker := stubChecker{
		model.RoleOperator: {model.PermApproveRequests},
	}

	r := gin.New()
	r.POST("/approve", JWTAuth(), RequirePermission(checker, model.PermApproveRequests), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	opToken, _ := GenerateAccessToken(1, "op", model.RoleOperator)
	userToken, _ := GenerateAccessToken(2, "u", model.RoleUser)

	if w := doRequest(r, http.MethodPost, "/approve", opToken); w.Code != http.StatusOK {
		t.Errorf("operator status = %d, want 200", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/approve", userToken)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("user status = %d, want 401", w.Code)
	}
	if resp := decodeBody(t, w); resp["code"] != float64(401) {
		t.Errorf("code = %v, want 401", resp["code"])
	}
}

func TestActiveUser(t *testing.T) {
	users := stubUsers{
		1: {BaseModel: model.BaseModel{ID: 1}, Role: model.RoleAdmin, IsActive: true},
		2: {BaseModel: model.BaseModel{ID: 2}, Role: model.RoleUser, IsActive: false},
	}

	r := gin.New()
	r.GET("/x", JWTAuth(), ActiveUser(users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": GetUserRole(c)})
	})

	// Token 里是 user，数据库里已经升级为 admin
	t1, _ := GenerateAccessToken(1, "a", model.RoleUser)
	w := doRequest(r, http.MethodGet, "/x", t1)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := decodeBody(t, w); resp["data"] != string(model.RoleAdmin) {
		t.Errorf("role = %v, want admin", resp["data"])
	}

	t2, _ := GenerateAccessToken(2, "b", model.RoleUser)
	if w := doRequest(r, http.MethodGet, "/x", t2); w.Code != http.StatusUnauthorized {
		t.Errorf("disabled status = %d, want 401", w.Code)
	}

	t3, _ := GenerateAccessToken(99, "ghost", model.RoleUser)
	if w := doRequest(r, http.MethodGet, "/x", t3); w.Code != http.StatusUnauthorized {
		t.Errorf("missing user status = %d, want 401", w.Code)
	}
}

// ==================== 限流 ====================

func TestCooldownLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewCooldownLimiter()
	limiter.now = func() time.Time { return now }

	if res := limiter.Check("k", 10*time.Second); !res.Allowed {
		t.Fatal("first Check() not allowed")
	}

	now = now.Add(3 * time.Second)
	res := limiter.Check("k", 10*time.Second)
	if res.Allowed {
		t.Fatal("second Check() allowed, want blocked")
	}
	if res.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", res.RetryAfter)
	}

	// 其他 key 不受影响
	if res := limiter.Check("other", 10*time.Second); !res.Allowed {
		t.Error("other key blocked")
	}

	now = now.Add(7 * time.Second)
	if res := limiter.Check("k", 10*time.Second); !res.Allowed {
		t.Error("Check() after cooldown not allowed")
	}
}

func TestUserCooldown(t *testing.T) {
	limiter := NewCooldownLimiter()
	r := gin.New()
	r.POST("/submit", JWTAuth(), UserCooldown(limiter, "access_request", time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	token, _ := GenerateAccessToken(5, "e", model.RoleUser)
	if w := doRequest(r, http.MethodPost, "/submit", token); w.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/submit", token)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	data, _ := decodeBody(t, w)["data"].(map[string]interface{})
	if data["retry_after"] == nil {
		t.Error("retry_after missing")
	}

	other, _ := GenerateAccessToken(6, "f", model.RoleUser)
	if w := doRequest(r, http.MethodPost, "/submit", other); w.Code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", w.Code)
	}
}

func TestCooldownLimiter_Release(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewCooldownLimiter()
	limiter.now = func() time.Time { return now }

	first := limiter.Check("k", 10*time.Second)
	limiter.Release("k", first.At)
	if res := limiter.Check("k", 10*time.Second); !res.Allowed {
		t.Fatal("Check() after Release not allowed")
	}

	// 过期的 at 不会释放新占用的额度
	now = now.Add(time.Second)
	limiter.Release("k", first.At.Add(-time.Hour))
	if res := limiter.Check("k", 10*time.Second); res.Allowed {
		t.Error("stale Release freed the slot")
	}

	limiter.Release("missing", now)
}

func TestUserCooldown_FailedRequestNotCounted(t *testing.T) {
	limiter := NewCooldownLimiter()
	r := gin.New()
	r.POST("/submit", JWTAuth(), UserCooldown(limiter, "access_request", time.Minute), func(c *gin.Context) {
		if c.GetHeader("X-Valid") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "phone is required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	token, _ := GenerateAccessToken(5, "e", model.RoleUser)
	if w := doRequest(r, http.MethodPost, "/submit", token); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Valid", "1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("retry status = %d, want 200", w.Code)
	}

	// 成功后进入冷却
	if w := doRequest(r, http.MethodPost, "/submit", token); w.Code != http.StatusTooManyRequests {
		t.Errorf("third status = %d, want 429", w.Code)
	}
}

// ==================== 审计上下文 ====================

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2", "X-Real-IP": "3.3.3.3"}, "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3", "CF-Connecting-IP": "4.4.4.4"}, "3.3.3.3"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "4.4.4.4"}, "4.4.4.4"},
		{"remote addr", nil, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := ClientIP(c); got != tt.want {
				t.Errorf("ClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuditContext(t *testing.T) {
	var got *AuditInfo
	r := gin.New()
	r.GET("/x", JWTAuth(), AuditContext(), func(c *gin.Context) {
		got = GetAuditInfo(c.Request.Context())
		c.Status(http.StatusOK)
	})

	token, _ := GenerateAccessToken(42, "z", model.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Real-IP", "10.0.0.9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("AuditInfo not injected")
	}
	if got.UserID != 42 || got.IP != "10.0.0.9" || got.UserAgent != "test-agent" {
		t.Errorf("AuditInfo = %+v", got)
	}

	if info := GetAuditInfo(context.Background()); info == nil || info.IP != "" {
		t.Errorf("GetAuditInfo(empty) = %+v, want zero value", info)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodGet, "/x", "")
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("X-Request-ID not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "fixed" {
		t.Errorf("X-Request-ID = %v, want fixed", got)
	}
}
