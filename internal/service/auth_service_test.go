package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amjey/staff-tracker/internal/dto"
	"github.com/amjey/staff-tracker/pkg/jwt"
)

func setupTestAuthService(t *testing.T, mutate func(cfgPassword, cfgHash *string)) AuthService {
	t.Helper()
	cfg := newTestConfig()
	if mutate != nil {
		mutate(&cfg.Auth.Password, &cfg.Auth.PasswordHash)
	}
	return NewAuthService(cfg, jwt.NewManager(&cfg.Auth), NewMemoryRevocationStore(), zap.NewNop())
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupTestAuthService(t, nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "guess"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_PlainPassword(t *testing.T) {
	svc := setupTestAuthService(t, nil)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Password: "fireworks-2026"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.Token == "" || resp.SessionID == "" {
		t.Fatal("Token 与 SessionID 不应为空")
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("ExpiresIn 应为正数，实际=%d", resp.ExpiresIn)
	}

	claims, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Authenticate 应成功: %v", err)
	}
	if claims.SessionID() != resp.SessionID {
		t.Errorf("会话 ID 不一致: %s vs %s", claims.SessionID(), resp.SessionID)
	}
}

func TestAuthService_Login_BcryptHash(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	svc := setupTestAuthService(t, func(pw, h *string) {
		*pw = ""
		*h = string(hash)
	})

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "hashed-secret"}); err != nil {
		t.Errorf("按 hash 校验应成功: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "fireworks-2026"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧口令应被拒绝，实际: %v", err)
	}
}

func TestAuthService_Logout_RevokesSession(t *testing.T) {
	svc := setupTestAuthService(t, nil)
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &dto.LoginRequest{Password: "fireworks-2026"})
	claims, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Authenticate 应成功: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if _, err := svc.Authenticate(ctx, resp.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("登出后期望 ErrSessionRevoked，实际: %v", err)
	}
}

func TestAuthService_Authenticate_BadToken(t *testing.T) {
	svc := setupTestAuthService(t, nil)

	if _, err := svc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
