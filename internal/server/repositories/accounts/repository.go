// Package accounts persists account records keyed by unique email.
package accounts

import (
	"context"

	"github.com/avdokushin/authgate/internal/server/models"
)

type Repository interface {
	// Create inserts the account. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail looks up an account by its lowercased email, returning
	// common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByID looks up an account by identifier, returning
	// common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
