package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/medsupply/internal/domain/identity"
	"github.com/xiebiao/medsupply/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/medsupply/pkg/jwt"
	"github.com/xiebiao/medsupply/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token有效性、检查黑名单
// 3. 从Claims还原Principal注入Context,鉴权不回查数据库
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token（格式：Authorization: Bearer <token>）
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, 40100, "请先登录")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, 40101, "Token格式错误")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 2. 检查Token黑名单（用户已登出或Token被强制失效）
		isBlacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.ErrorWithCode(c, 50000, "验证Token失败")
			c.Abort()
			return
		}
		if isBlacklisted {
			response.ErrorWithCode(c, 40102, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		// 3. 验证Token并解析Claims
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 4. 还原Principal注入Context
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("principal", identity.Principal{
			UserID:     claims.UserID,
			Role:       identity.Role(claims.Role),
			FacilityID: claims.FacilityID,
		})

		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// MustGetUserID 从Context获取用户ID（已通过RequireAuth的Handler使用）
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}

// GetPrincipal 从Context获取当前操作者身份
func GetPrincipal(c *gin.Context) identity.Principal {
	if p, exists := c.Get("principal"); exists {
		if principal, ok := p.(identity.Principal); ok {
			return principal
		}
	}
	return identity.Principal{}
}
