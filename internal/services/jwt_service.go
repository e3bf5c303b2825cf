package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard/backend/internal/models"
)

// ErrInvalidToken は署名不正・形式不正・期限切れのトークンを表します。
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL はトークンの既定の有効期限 (7日) です。
const DefaultTokenTTL = 7 * 24 * time.Hour

// JWTService はJWTトークンの生成と検証を扱います。
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService は新しいJWTServiceを作成します。ttl が0以下なら既定値を使います。
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken は id と email を埋め込んだ署名付きトークンを生成します。
func (s *JWTService) GenerateToken(identity models.Identity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"id":    identity.ID,
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken はJWTトークンを検証し、埋め込まれた識別情報を返します。
func (s *JWTService) ValidateToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidToken)
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return &models.Identity{ID: id, Email: email}, nil
}
