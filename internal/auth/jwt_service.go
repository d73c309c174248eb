package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	// MinSecretLength 签名密钥最小长度
	MinSecretLength = 32
)

var (
	ErrSecretTooShort = fmt.Errorf("JWT secret must be at least %d characters long", MinSecretLength)
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// TokenClaims 管理令牌声明
type TokenClaims struct {
	Subject string
	Role    string
	Exp     int64
	Iat     int64
}

// JWTService 管理接口令牌的签发与校验（HS256）
type JWTService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewJWTService 创建 JWT 服务
func NewJWTService(secret string, expiresIn time.Duration) (*JWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &JWTService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}, nil
}

// GenerateAdminToken 签发管理令牌
func (s *JWTService) GenerateAdminToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.expiresIn)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": RoleAdmin,
		"type": "access",
		"exp":  expiry.Unix(),
		"iat":  now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate admin token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	subject, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	expFloat, _ := claims["exp"].(float64)
	iatFloat, _ := claims["iat"].(float64)

	return &TokenClaims{
		Subject: subject,
		Role:    role,
		Exp:     int64(expFloat),
		Iat:     int64(iatFloat),
	}, nil
}
