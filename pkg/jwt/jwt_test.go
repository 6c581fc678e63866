package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/amjey/staff-tracker/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret-key-for-unit-testing-2026",
		SessionTTL: 8 * time.Hour,
	})
}

func TestGenerateAndParseSessionToken(t *testing.T) {
	m := newTestManager()

	token, issued, err := m.GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.TokenType != TokenTypeSession {
		t.Errorf("期望 TokenType=session，实际=%s", claims.TokenType)
	}
	if claims.Issuer != "staff-tracker" {
		t.Errorf("期望 Issuer=staff-tracker，实际=%s", claims.Issuer)
	}
	if claims.SessionID() == "" || claims.SessionID() != issued.SessionID() {
		t.Errorf("会话 ID 不一致: %q vs %q", claims.SessionID(), issued.SessionID())
	}

	ttl := claims.Remaining()
	if ttl < 7*time.Hour || ttl > 9*time.Hour {
		t.Errorf("会话 TTL 期望约 8h，实际=%v", ttl)
	}
}

func TestGenerateSessionToken_UniqueIDs(t *testing.T) {
	m := newTestManager()
	_, a, _ := m.GenerateSessionToken()
	_, b, _ := m.GenerateSessionToken()
	if a.SessionID() == b.SessionID() {
		t.Error("两次签发的会话 ID 不应相同")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	if _, err := m.ParseToken("invalid.token.string"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:  "different-secret-key",
		SessionTTL: time.Hour,
	})

	token, _, _ := m1.GenerateSessionToken()
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_WrongTokenType(t *testing.T) {
	m := newTestManager()

	claims := Claims{
		TokenType: "refresh",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "staff-tracker",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	if _, err := m.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("非会话类型 token 期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: 1 * time.Millisecond,
	})

	token, _, _ := m.GenerateSessionToken()
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
