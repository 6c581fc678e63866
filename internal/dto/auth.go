package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求（共享口令）
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// SessionResponse 会话令牌响应
type SessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"` // RFC 3339
	ExpiresIn int    `json:"expires_in"` // 秒
}
