package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
)

const (
	bcryptCost          = 12
	defaultTokenTTL     = 7 * 24 * time.Hour
	revokedTokenPrefix  = "token:revoked:"
	revokedBeforePrefix = "token:revoked_before:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// tokenClaims is the JWT payload: the caller's id, username and role.
type tokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret []byte
	ttl    time.Duration
	redis  redis.Cmdable
	now    func() time.Time
}

func NewAuthService(secret string, ttl time.Duration, redisClient redis.Cmdable) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  redisClient,
		now:    time.Now,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := tokenClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// VerifyToken checks the signature, expiry and revocation state of token.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	principal := &models.Principal{
		UserID:   userID,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
		TokenID:  claims.ID,
		Expires:  claims.ExpiresAt.Time,
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	revoked, err := s.isRevoked(ctx, principal, issuedAt)
	if err != nil {
		// Fail open: signature and expiry are already verified.
		logging.Warn("Token revocation check failed", map[string]interface{}{"error": err.Error()})
		return principal, nil
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return principal, nil
}

func (s *AuthService) isRevoked(ctx context.Context, p *models.Principal, issuedAt time.Time) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	vals, err := s.redis.MGet(ctx, revokedTokenPrefix+p.TokenID, revokedBeforePrefix+p.UserID.String()).Result()
	if err != nil {
		return false, err
	}
	if len(vals) > 0 && vals[0] != nil {
		return true, nil
	}
	if len(vals) > 1 && vals[1] != nil {
		raw, _ := vals[1].(string)
		cutoff, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && issuedAt.Unix() < cutoff {
			return true, nil
		}
	}
	return false, nil
}

// RevokeToken denylists a single token until it would have expired anyway.
func (s *AuthService) RevokeToken(ctx context.Context, p *models.Principal) error {
	if p == nil || p.TokenID == "" {
		return ErrInvalidToken
	}
	remaining := p.Expires.Sub(s.now())
	if remaining <= 0 || s.redis == nil {
		return nil
	}
	if err := s.redis.Set(ctx, revokedTokenPrefix+p.TokenID, "1", remaining).Err(); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// RevokeAllFor invalidates tokens issued to userID before the current second.
// Used after a password change.
func (s *AuthService) RevokeAllFor(ctx context.Context, userID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	cutoff := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.redis.Set(ctx, revokedBeforePrefix+userID.String(), cutoff, s.ttl).Err(); err != nil {
		return fmt.Errorf("revoking user tokens: %w", err)
	}
	return nil
}
