package ports

import (
	"context"

	"github.com/jobportal/account-service/internal/core/domain"
)

// AccountRepository is the persistence contract for accounts.
type AccountRepository interface {
	// Create inserts a new account and returns it with its assigned ID.
	// A duplicate email yields domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// ApplyProfilePatch atomically writes only the fields set in patch and
	// returns the updated account.
	ApplyProfilePatch(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Account, error)
}
