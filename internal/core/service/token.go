package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

type sessionClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of every issued token.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token binding the account id and role.
func (m *TokenManager) Issue(account *domain.Account) (*ports.Session, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := sessionClaims{
		UserID: account.ID,
		Role:   account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.Session{Token: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm and expiry. Any failure is reported as
// domain.ErrUnauthenticated.
func (m *TokenManager) Verify(token string) (*ports.SessionClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	return &ports.SessionClaims{AccountID: claims.UserID, Role: claims.Role}, nil
}
