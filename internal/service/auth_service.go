package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("口令错误")
	ErrSessionRevoked     = errors.New("会话已登出")
)

// RevocationStore 会话吊销名单。*redis.Client 直接满足该接口；
// 未部署 Redis 时使用进程内实现，重启后名单丢失，会话仍按 TTL 过期。
type RevocationStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	// Authenticate 校验令牌签名、有效期与吊销状态
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

type authService struct {
	passwordHash []byte
	jwtMgr       *jwt.Manager
	revoked      RevocationStore
	logger       *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// 仅配置明文口令时在启动阶段计算一次 bcrypt hash，之后统一按 hash 比对
func NewAuthService(cfg *config.Config, jwtMgr *jwt.Manager, revoked RevocationStore, logger *zap.Logger) AuthService {
	hash := []byte(cfg.Auth.PasswordHash)
	if len(hash) == 0 && cfg.Auth.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Auth.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("计算口令 hash 失败，所有登录都将被拒绝", zap.Error(err))
			hash = nil
		}
	}
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &authService{
		passwordHash: hash,
		jwtMgr:       jwtMgr,
		revoked:      revoked,
		logger:       logger,
	}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwtMgr.GenerateSessionToken()
	if err != nil {
		s.logger.Error("签发会话令牌失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("会话登录", zap.String("session_id", claims.SessionID()))
	return &dto.SessionResponse{
		Token:     token,
		SessionID: claims.SessionID(),
		ExpiresAt: claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		ExpiresIn: int(claims.Remaining().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := s.revoked.BlacklistToken(ctx, claims.SessionID(), claims.Remaining()); err != nil {
		s.logger.Error("吊销会话失败", zap.String("session_id", claims.SessionID()), zap.Error(err))
		return err
	}
	s.logger.Info("会话登出", zap.String("session_id", claims.SessionID()))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsBlacklisted(ctx, claims.SessionID())
	if err != nil {
		// 吊销名单不可用时拒绝请求，避免已登出的会话被放行
		s.logger.Error("查询会话吊销名单失败", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// ──── 进程内吊销名单 ────

type memoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti → 过期时间
}

// NewMemoryRevocationStore 创建进程内吊销名单
func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{entries: make(map[string]time.Time)}
}

func (m *memoryRevocationStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, exp := range m.entries {
		if now.After(exp) {
			delete(m.entries, k)
		}
	}
	m.entries[jti] = now.Add(ttl)
	return nil
}

func (m *memoryRevocationStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[jti]
	return ok && time.Now().Before(exp), nil
}
