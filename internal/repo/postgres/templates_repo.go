package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casaguide/concierge/internal/domain"
)

type TemplateRepo interface {
	Create(ctx context.Context, in *domain.TemplateCreateReq) (*domain.Template, error)
	GetByID(ctx context.Context, id int64) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type TemplateRepoImpl struct{ pool *pgxpool.Pool }

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepoImpl {
	return &TemplateRepoImpl{pool: pool}
}

const templateCols = `id, name, property_id, guest_name, guest_phone, flat_number, welcome_message, admin_notes, created_at`

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var t domain.Template
	err := row.Scan(
		&t.ID, &t.Name, &t.PropertyID, &t.GuestName, &t.GuestPhone,
		&t.FlatNumber, &t.WelcomeMessage, &t.AdminNotes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepoImpl) Create(ctx context.Context, in *domain.TemplateCreateReq) (*domain.Template, error) {
	const q = `INSERT INTO reservation_templates (
    name, property_id, guest_name, guest_phone, flat_number, welcome_message, admin_notes
  ) VALUES ($1,$2,$3,$4,$5,$6,$7)
  RETURNING ` + templateCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTemplate(r.pool.QueryRow(ctx, q,
		in.Name, in.PropertyID, in.GuestName, in.GuestPhone,
		in.FlatNumber, in.WelcomeMessage, in.AdminNotes,
	))
}

func (r *TemplateRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	const q = `SELECT ` + templateCols + ` FROM reservation_templates WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTemplate(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *TemplateRepoImpl) List(ctx context.Context) ([]domain.Template, error) {
	const q = `SELECT ` + templateCols + ` FROM reservation_templates ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TemplateRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM reservation_templates WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
