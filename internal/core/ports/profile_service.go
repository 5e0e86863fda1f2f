package ports

import (
	"context"

	"github.com/jobportal/account-service/internal/core/domain"
)

// UpdateProfileInput carries a partial profile update. Empty strings mean
// "not supplied".
type UpdateProfileInput struct {
	AccountID   string
	FullName    string
	Email       string
	PhoneNumber string
	Bio         string
	Skills      string
	Resume      *Upload // optional
}

type ProfileService interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.Account, error)
}
