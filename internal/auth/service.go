package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL = 24 * time.Hour

	// Failed logins per client IP before the gate locks.
	maxFailedLogins = 5
	failWindow      = 15 * time.Minute
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyAttempts = errors.New("too many failed attempts")
)

// Service is the shared-password gate. There are no user accounts: anyone
// who knows the trip password gets a viewer token.
type Service struct {
	secret       []byte
	passwordHash []byte
	redis        *redis.Client
}

type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewService builds the gate. redisClient may be nil, in which case the
// failed-attempt lockout is disabled.
func NewService(secret, passwordHash string, redisClient *redis.Client) *Service {
	return &Service{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		redis:        redisClient,
	}
}

// Login checks the trip password and issues a viewer token. Repeated wrong
// passwords from one IP lock that IP out for the fail window.
func (s *Service) Login(ctx context.Context, req LoginRequest, clientIP string) (TokenResponse, error) {
	locked, err := s.isLocked(ctx, clientIP)
	if err != nil {
		return TokenResponse{}, err
	}
	if locked {
		return TokenResponse{}, ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		if err := s.recordFailure(ctx, clientIP); err != nil {
			return TokenResponse{}, err
		}
		return TokenResponse{}, ErrInvalidPassword
	}

	if err := s.clearFailures(ctx, clientIP); err != nil {
		return TokenResponse{}, err
	}

	access, err := s.signToken(uuid.NewString())
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenTTL.Seconds()),
	}, nil
}

// ValidateToken returns the session id carried by a viewer token.
func (s *Service) ValidateToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

func (s *Service) signToken(sessionID string) (string, error) {
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func failKey(clientIP string) string {
	return "login:fail:" + clientIP
}

func (s *Service) isLocked(ctx context.Context, clientIP string) (bool, error) {
	if s.redis == nil || clientIP == "" {
		return false, nil
	}
	count, err := s.redis.Get(ctx, failKey(clientIP)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= maxFailedLogins, nil
}

func (s *Service) recordFailure(ctx context.Context, clientIP string) error {
	if s.redis == nil || clientIP == "" {
		return nil
	}
	count, err := s.redis.Incr(ctx, failKey(clientIP)).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return s.redis.Expire(ctx, failKey(clientIP), failWindow).Err()
	}
	return nil
}

func (s *Service) clearFailures(ctx context.Context, clientIP string) error {
	if s.redis == nil || clientIP == "" {
		return nil
	}
	return s.redis.Del(ctx, failKey(clientIP)).Err()
}
