// Package profiles stores the optional personal details of an account.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	// Save inserts or replaces the profile of p.UserID.
	Save(ctx context.Context, p *models.Profile) error
	// Get returns an empty profile when none was saved.
	Get(ctx context.Context, userID string) (*models.Profile, error)
}
