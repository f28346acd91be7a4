// Package auth issues and verifies the access/refresh token pairs backing
// the identity lifecycle endpoints. Revoked refresh tokens are held in redis
// until their natural expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/flocknet/flock/internal/cache"
	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for malformed, expired or mistyped tokens
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned for blacklisted refresh tokens
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrInvalidCredentials is returned when email/password verification fails
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenPair is an access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service issues, verifies, rotates and revokes token pairs
type Service struct {
	cfg    *config.AuthConfig
	cache  *cache.Cache
	logger *zap.Logger
}

// NewService creates a new token service
func NewService(cfg *config.AuthConfig, redisCache *cache.Cache) *Service {
	return &Service{
		cfg:    cfg,
		cache:  redisCache,
		logger: logging.GetLogger().With(zap.String("component", "auth")),
	}
}

// HashPassword hashes a plaintext password with bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against its stored hash
func (s *Service) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssuePair issues a fresh access/refresh pair for a user identity
func (s *Service) IssuePair(userID int64) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := s.sign(userID, tokenTypeAccess, []byte(s.cfg.AccessSecret), now.Add(s.cfg.AccessTTL))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(userID, tokenTypeRefresh, []byte(s.cfg.RefreshSecret), now.Add(s.cfg.RefreshTTL))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *Service) sign(userID int64, tokenType string, secret []byte, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": uuid.NewString(),
		"typ": tokenType,
		"exp": expiry.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *Service) parse(tokenString, wantType string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func claimUserID(claims jwt.MapClaims) (int64, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// VerifyAccess validates an access token and returns the user ID it carries
func (s *Service) VerifyAccess(tokenString string) (int64, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess, []byte(s.cfg.AccessSecret))
	if err != nil {
		return 0, err
	}
	return claimUserID(claims)
}

// VerifyRefresh validates a refresh token against signature, type and the
// revocation blacklist, returning the user ID it carries.
func (s *Service) VerifyRefresh(ctx context.Context, tokenString string) (int64, error) {
	claims, err := s.parse(tokenString, tokenTypeRefresh, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return 0, err
	}

	jti, _ := claims["jti"].(string)
	revoked, err := s.isRevoked(ctx, jti)
	if err != nil {
		return 0, err
	}
	if revoked {
		return 0, ErrTokenRevoked
	}
	return claimUserID(claims)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.IssuePair(userID)
}

// Revoke blacklists a refresh token's jti until its natural expiry
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, tokenTypeRefresh, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return err
	}

	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	ttl := time.Until(time.Unix(int64(exp), 0))
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Set(ctx, revokedKey(jti), "1", ttl); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			s.logger.Warn("token revocation skipped, cache disabled", zap.String("jti", jti))
			return nil
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *Service) isRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := s.cache.Exists(ctx, revokedKey(jti))
	if err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}
