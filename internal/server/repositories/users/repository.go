// Package users declares the server-side repository contract for accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. A duplicate
	// email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// Count returns the number of registered accounts.
	Count(ctx context.Context) (int64, error)
	// LockForSignUp blocks concurrent sign-ups until the surrounding
	// transaction ends. It must run inside a transaction.
	LockForSignUp(ctx context.Context) error
}
