package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flocknet/flock/pkg/config"
)

func newTestService() *Service {
	cfg := &config.AuthConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
	// nil cache: revocation is skipped, which the service tolerates
	return NewService(cfg, nil)
}

func TestPasswordHashing(t *testing.T) {
	s := newTestService()

	hash, err := s.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := s.CheckPassword(hash, "hunter22"); err != nil {
		t.Errorf("CheckPassword() with correct password = %v, want nil", err)
	}
	if err := s.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService()

	pair, err := s.IssuePair(42)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("IssuePair() returned empty tokens")
	}
	if pair.ExpiresIn != 60 {
		t.Errorf("ExpiresIn = %d, want 60", pair.ExpiresIn)
	}

	userID, err := s.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error: %v", err)
	}
	if userID != 42 {
		t.Errorf("VerifyAccess() user = %d, want 42", userID)
	}

	userID, err = s.VerifyRefresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh() error: %v", err)
	}
	if userID != 42 {
		t.Errorf("VerifyRefresh() user = %d, want 42", userID)
	}
}

func TestTokenTypeConfusion(t *testing.T) {
	s := newTestService()

	pair, err := s.IssuePair(7)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	// A refresh token must not pass as an access token, nor vice versa
	if _, err := s.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess(refresh token) = %v, want ErrInvalidToken", err)
	}
	if _, err := s.VerifyRefresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyRefresh(access token) = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	s := newTestService()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "definitely-not-a-token"},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.VerifyAccess(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyAccess(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	s := newTestService()

	pair, err := s.IssuePair(9)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	rotated, err := s.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("Refresh() returned empty tokens")
	}

	userID, err := s.VerifyAccess(rotated.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() on rotated token error: %v", err)
	}
	if userID != 9 {
		t.Errorf("rotated token user = %d, want 9", userID)
	}
}

func TestRevokeWithoutCacheIsNoop(t *testing.T) {
	s := newTestService()

	pair, err := s.IssuePair(3)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	if err := s.Revoke(context.Background(), pair.RefreshToken); err != nil {
		t.Errorf("Revoke() with disabled cache = %v, want nil", err)
	}
}
