package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
	"github.com/xiebiao/playchat/pkg/jwt"
	"github.com/xiebiao/playchat/pkg/response"
)

const (
	ctxKeyMemberID = "member_id"
	ctxKeyEmail    = "email"
	ctxKeyRole     = "role"
	ctxKeyClaims   = "claims"
	ctxKeyToken    = "token"
)

// TokenBlacklist 已登出Token查询
type TokenBlacklist interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 1. 从Authorization头提取Bearer Token
// 2. 先查黑名单，再验证签名和过期时间
// 3. 会员ID、邮箱、角色写入gin.Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
//
//	members := r.Group("/api/members")
//	members.Use(authMiddleware.RequireAuth())
//	members.GET("/me", handler.Me)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != jwt.TokenType || strings.TrimSpace(tokenString) == "" {
			response.AbortWithError(c, apperrors.ErrTokenFormat)
			return
		}
		tokenString = strings.TrimSpace(tokenString)

		revoked, err := m.blacklist.Contains(c.Request.Context(), tokenString)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if revoked {
			response.AbortWithError(c, apperrors.ErrTokenRevoked)
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(ctxKeyMemberID, claims.MemberID)
		c.Set(ctxKeyEmail, claims.Email)
		c.Set(ctxKeyRole, claims.Role)
		c.Set(ctxKeyClaims, claims)
		c.Set(ctxKeyToken, tokenString)

		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetMemberID 当前登录会员ID，未登录返回0
func GetMemberID(c *gin.Context) uint {
	return c.GetUint(ctxKeyMemberID)
}

// GetEmail 当前登录会员邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}

// GetClaims 当前请求的Token Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken 当前请求的原始Token
func GetToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}
