package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casaguide/concierge/internal/domain"
)

type AdminRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type AdminRepoImpl struct{ pool *pgxpool.Pool }

func NewAdminRepo(pool *pgxpool.Pool) *AdminRepoImpl {
	return &AdminRepoImpl{pool: pool}
}

func (r *AdminRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const q = `SELECT id, email, name, password_hash, created_at FROM admins WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Admin
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
