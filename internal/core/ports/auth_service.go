package ports

import (
	"context"
	"time"

	"github.com/jobportal/account-service/internal/core/domain"
)

// Upload is a file received with a request.
type Upload struct {
	Filename string
	Data     []byte
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
	Photo       *Upload // optional
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionClaims are the facts a verified session token binds.
type SessionClaims struct {
	AccountID string
	Role      string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, in LoginInput) (*Session, *domain.Account, error)
}

// TokenVerifier resolves a session token into its claims.
type TokenVerifier interface {
	Verify(token string) (*SessionClaims, error)
}
