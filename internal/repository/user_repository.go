package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workorder-service/internal/domain"
)

type userDirectory struct {
	db querier
}

// NewUserDirectory returns a Postgres-backed user directory.
func NewUserDirectory(pool *pgxpool.Pool) UserDirectory {
	return &userDirectory{db: pool}
}

func (r *userDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, username, first_name, last_name, email, department,
               is_manager, is_production, is_utilities, is_purchase, created_at, updated_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Department,
		&user.IsManager,
		&user.IsProduction,
		&user.IsUtilities,
		&user.IsPurchase,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}
