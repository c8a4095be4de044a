package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"line_price_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey       string        // 签名密钥
	AccessTokenTTL  time.Duration // Access Token 有效期
	RefreshTokenTTL time.Duration // Refresh Token 有效期
	Issuer          string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:       "line-price-portal-change-me",
		AccessTokenTTL:  2 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "line-price-portal",
	}
}

var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置，启动时调用一次
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// Token 类型
const (
	TokenSubjectAccess  = "access"
	TokenSubjectRefresh = "refresh"
)

// ErrInvalidToken Token 无效
var ErrInvalidToken = errors.New("invalid token")

// ==================== Claims 定义 ====================

// UserClaims 用户声明
type UserClaims struct {
	UserID int64      `json:"user_id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 ====================

func generateToken(subject string, ttl time.Duration, userID int64, name string, role model.Role) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(userID int64, name string, role model.Role) (string, error) {
	return generateToken(TokenSubjectAccess, jwtConfig.AccessTokenTTL, userID, name, role)
}

// GenerateRefreshToken 生成 Refresh Token
func GenerateRefreshToken(userID int64, name string, role model.Role) (string, error) {
	return generateToken(TokenSubjectRefresh, jwtConfig.RefreshTokenTTL, userID, name, role)
}

// GenerateTokenPair 生成 Token 对
func GenerateTokenPair(userID int64, name string, role model.Role) (accessToken, refreshToken string, err error) {
	accessToken, err = GenerateAccessToken(userID, name, role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = GenerateRefreshToken(userID, name, role)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ==================== Token 解析 ====================

// ParseToken 解析 Token
func ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	}, jwt.WithIssuer(jwtConfig.Issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyName   = "name"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": message,
		"data":    nil,
	})
	c.Abort()
}

// JWTAuth JWT 认证中间件
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		// Bearer {token}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "authorization header must be Bearer {token}")
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "token invalid or expired")
			return
		}

		if claims.Subject != TokenSubjectAccess {
			abortUnauthorized(c, "wrong token type")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// RequireRole 角色校验中间件
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRole(c)
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}
		abortUnauthorized(c, "insufficient role")
	}
}

// ==================== 辅助函数 ====================

// GetUserID 从 Context 获取用户 ID
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}

// GetUserName 从 Context 获取用户名
func GetUserName(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyName); exists {
		return name.(string)
	}
	return ""
}

// GetUserRole 从 Context 获取用户角色
func GetUserRole(c *gin.Context) model.Role {
	if role, exists := c.Get(ContextKeyRole); exists {
		return role.(model.Role)
	}
	return ""
}

// GetUserClaims 从 Context 获取完整 Claims
func GetUserClaims(c *gin.Context) *UserClaims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		return claims.(*UserClaims)
	}
	return nil
}
