package middleware

import (
	"strings"

	"admin-go/internal/api/response"
	"admin-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyAccountID   = "currentAccountID"
	ContextKeyAccountRole = "currentAccountRole"
)

// AuthRequired JWT 认证中间件，要求请求必须携带有效 Token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "无效或过期的认证令牌")
			c.Abort()
			return
		}

		// 将账号 ID 与角色存入上下文，后续 Handler 可直接读取
		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyAccountRole, claims.Role)
		c.Next()
	}
}

// GetCurrentAccountID 从 Gin Context 中获取当前登录账号 ID
func GetCurrentAccountID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyAccountID)
	if !exists {
		return 0, false
	}
	accountID, ok := val.(int64)
	return accountID, ok
}

// GetCurrentAccountRole 从 Gin Context 中获取当前登录账号角色
func GetCurrentAccountRole(c *gin.Context) (string, bool) {
	val, exists := c.Get(ContextKeyAccountRole)
	if !exists {
		return "", false
	}
	role, ok := val.(string)
	return role, ok
}

// AdminRequired 管理员权限中间件（必须在 AuthRequired 之后使用）。
// 角色直接取自令牌声明，不回查数据库
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetCurrentAccountRole(c)
		if !ok {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		if role != "admin" {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
