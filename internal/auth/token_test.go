package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: 42, Role: domain.RoleCitizen}

	token, claims, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("jti must be set")
	}

	parsed, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsed.UserID != 42 || parsed.Role != domain.RoleCitizen || parsed.ID != claims.ID {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleCitizen})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("different-secret", time.Hour)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with another secret must not parse")
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := tm.ParseToken(tampered); err == nil {
		t.Error("tampered signature must not parse")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Nanosecond)
	token, _, err := tm.GenerateToken(&domain.User{ID: 1, Role: domain.RoleCitizen})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("expired token must not parse")
	}
}
