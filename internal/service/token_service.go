package service

import (
	"errors"
	"time"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is the fixed validity window of an issued credential.
const tokenTTL = 2 * time.Hour

// Claims is the structured data carried inside a signed token. A decoded
// and verified Claims value is the request's Principal: it lives in the
// request context only and is never persisted.
type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, time-bounded credentials.
type TokenService interface {
	Issue(userID uint, email, role string) (string, error)
	Validate(tokenString string) (*Claims, error)
}

type tokenService struct {
	secret []byte
}

// NewTokenService builds a TokenService around the process-wide signing
// key. The key is copied once at startup and never rotated afterwards.
func NewTokenService(secret string) TokenService {
	return &tokenService{secret: []byte(secret)}
}

func (s *tokenService) Issue(userID uint, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies signature and expiry and returns the decoded Claims.
// The three failure kinds stay distinct: a malformed string, a bad
// signature and an expired-but-genuine token each imply a different
// client remedy even though all three answer 401.
func (s *tokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperror.ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperror.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperror.ErrTokenExpired
		default:
			return nil, apperror.ErrInvalidSignature
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.ErrInvalidSignature
	}
	if !model.ValidRole(claims.Role) {
		return nil, apperror.E(apperror.ErrMalformedToken, "unknown role in token")
	}
	return claims, nil
}
