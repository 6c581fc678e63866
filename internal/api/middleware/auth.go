package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amjey/staff-tracker/internal/api/handler"
	"github.com/amjey/staff-tracker/internal/service"
	"github.com/amjey/staff-tracker/pkg/jwt"
	"github.com/amjey/staff-tracker/pkg/response"
)

// JWTAuth 会话认证中间件
// 从 Authorization: Bearer <token> 中提取会话令牌，校验签名、有效期与吊销状态
func JWTAuth(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := authSvc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionRevoked):
				response.Unauthorized(c, 10002, "会话已登出")
			case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenInvalid):
				response.Unauthorized(c, 10002, "会话无效或已过期")
			default:
				// 吊销名单不可用，拒绝放行
				response.Error(c, http.StatusServiceUnavailable, 10006, "会话校验暂不可用")
			}
			c.Abort()
			return
		}

		c.Set(handler.ClaimsKey, claims)
		c.Next()
	}
}
