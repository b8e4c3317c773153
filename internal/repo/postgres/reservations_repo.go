package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casaguide/concierge/internal/domain"
)

type ReservationRepo interface {
	Create(ctx context.Context, in *domain.ReservationCreateReq) (*domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByToken(ctx context.Context, token string) (*domain.Reservation, error)
	List(ctx context.Context, propertyID *domain.PropertyID, limit, offset int) ([]domain.Reservation, error)
	Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error)
	SetManualDeactivation(ctx context.Context, id int64, value bool) error
	SetFeedback(ctx context.Context, token string, rating int, feedback string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ReservationRepoImpl struct{ pool *pgxpool.Pool }

func NewReservationRepo(pool *pgxpool.Pool) *ReservationRepoImpl {
	return &ReservationRepoImpl{pool: pool}
}

const reservationCols = `id, guest_token, property_id,
guest_name, guest_phone, guest_email,
check_in_date, check_in_time, checkout_date, check_out_time,
lock_code, flat_number,
manual_deactivation,
guest_alert_active, guest_alert_text,
welcome_message, admin_notes,
guest_rating, guest_feedback,
created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.GuestToken, &res.PropertyID,
		&res.GuestName, &res.GuestPhone, &res.GuestEmail,
		&res.CheckInDate, &res.CheckInTime, &res.CheckoutDate, &res.CheckOutTime,
		&res.LockCode, &res.FlatNumber,
		&res.ManualDeactivation,
		&res.GuestAlertActive, &res.GuestAlertText,
		&res.WelcomeMessage, &res.AdminNotes,
		&res.GuestRating, &res.GuestFeedback,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepoImpl) Create(ctx context.Context, in *domain.ReservationCreateReq) (*domain.Reservation, error) {
	const q = `INSERT INTO reservations (
    guest_token, property_id,
    guest_name, guest_phone, guest_email,
    check_in_date, check_in_time, checkout_date, check_out_time,
    lock_code, flat_number,
    welcome_message, admin_notes
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
  RETURNING ` + reservationCols

	tok := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanReservation(r.pool.QueryRow(ctx, q, tok, in.PropertyID,
		in.GuestName, in.GuestPhone, in.GuestEmail,
		in.CheckInDate, in.CheckInTime, in.CheckoutDate, in.CheckOutTime,
		in.LockCode, in.FlatNumber,
		in.WelcomeMessage, in.AdminNotes,
	))
}

func (r *ReservationRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *ReservationRepoImpl) GetByToken(ctx context.Context, token string) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE guest_token=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *ReservationRepoImpl) List(ctx context.Context, propertyID *domain.PropertyID, limit, offset int) ([]domain.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + reservationCols + ` FROM reservations`
	args := []any{}
	if propertyID != nil {
		q += ` WHERE property_id=$1`
		args = append(args, *propertyID)
	}
	q += ` ORDER BY check_in_date DESC, check_in_time DESC LIMIT $` +
		strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Reservation, 0, limit)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *ReservationRepoImpl) Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error) {
	const q = `UPDATE reservations SET
    guest_name        = COALESCE($2, guest_name),
    guest_phone       = COALESCE($3, guest_phone),
    check_in_date     = COALESCE($4, check_in_date),
    check_in_time     = COALESCE($5, check_in_time),
    checkout_date     = COALESCE($6, checkout_date),
    check_out_time    = COALESCE($7, check_out_time),
    lock_code         = COALESCE($8, lock_code),
    flat_number       = COALESCE($9, flat_number),
    guest_alert_active = COALESCE($10, guest_alert_active),
    guest_alert_text  = COALESCE($11, guest_alert_text),
    welcome_message   = COALESCE($12, welcome_message),
    admin_notes       = COALESCE($13, admin_notes),
    updated_at        = now()
  WHERE id=$1
  RETURNING ` + reservationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id,
		patch.GuestName, patch.GuestPhone,
		patch.CheckInDate, patch.CheckInTime, patch.CheckoutDate, patch.CheckOutTime,
		patch.LockCode, patch.FlatNumber,
		patch.GuestAlertActive, patch.GuestAlertText,
		patch.WelcomeMessage, patch.AdminNotes,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *ReservationRepoImpl) SetManualDeactivation(ctx context.Context, id int64, value bool) error {
	const q = `UPDATE reservations SET manual_deactivation=$2, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, id, value)
	return err
}

func (r *ReservationRepoImpl) SetFeedback(ctx context.Context, token string, rating int, feedback string) (bool, error) {
	const q = `UPDATE reservations SET guest_rating=$2, guest_feedback=$3, updated_at=now() WHERE guest_token=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, token, rating, feedback)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ReservationRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM reservations WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
