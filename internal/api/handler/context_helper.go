package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/pkg/jwt"
	"github.com/amjey/staff-tracker/pkg/response"
)

// ClaimsKey JWTAuth 中间件注入会话声明所用的上下文键
const ClaimsKey = "claims"

// MustGetClaims 从 Gin 上下文中安全提取会话声明。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
