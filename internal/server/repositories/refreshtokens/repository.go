// Package refreshtokens declares the repository for single-use refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	// Create stores rt. rt.Expires must already be set.
	Create(ctx context.Context, rt *models.RefreshToken) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete reports whether a row was removed; a missing token is not an error.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteExpired purges every token of userID that expired before now.
	DeleteExpired(ctx context.Context, userID string, now time.Time) error
}
