package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    phone = EXCLUDED.phone,
		    updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.FirstName, p.LastName, p.Phone); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT first_name, last_name, phone
		FROM profiles
		WHERE user_id = $1
	`
	p := &models.Profile{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.FirstName, &p.LastName, &p.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
