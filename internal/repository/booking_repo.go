package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drivehub/internal/apperr"
	"drivehub/internal/db"
)

type BookingRepository interface {
	Create(ctx context.Context, b *db.Booking) error
	GetByCode(ctx context.Context, code string) (*db.Booking, error)
	GetByStripeSessionID(ctx context.Context, sessionID string) (*db.Booking, error)
	ListAll(ctx context.Context) ([]db.Booking, error)
	ListByCustomer(ctx context.Context, customerID int) ([]db.Booking, error)
	UpdateStatus(ctx context.Context, id int, from, to db.BookingStatus) (bool, error)
	SetPaymentInfo(ctx context.Context, id int, sessionID, paymentStatus string) error
	HasActiveForVehicle(ctx context.Context, vehicleID int) (bool, error)
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(database *sql.DB) BookingRepository {
	return &bookingRepository{db: database}
}

const bookingColumns = `id, code, vehicle_id, customer_id, start_date, end_date,
	payment_method, total_cost_cents, status, notes,
	COALESCE(stripe_session_id, ''), COALESCE(payment_status, ''),
	created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.VehicleID, &b.CustomerID, &b.StartDate, &b.EndDate,
		&b.PaymentMethod, &b.TotalCostCents, &b.Status, &b.Notes,
		&b.StripeSessionID, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persists a new booking after checking for overlapping active
// bookings on the same vehicle. The vehicle row is locked for the duration
// of the transaction, so concurrent creations for one vehicle serialize and
// at most one of two overlapping requests can succeed. Bookings on other
// vehicles proceed in parallel.
func (r *bookingRepository) Create(ctx context.Context, b *db.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	var vehicleID int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, b.VehicleID,
	).Scan(&vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("vehicle", b.VehicleID)
		}
		return fmt.Errorf("lock vehicle row: %w", err)
	}

	var overlapping int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE vehicle_id = $1
		  AND status IN ($2, $3)
		  AND start_date < $5
		  AND end_date > $4`,
		b.VehicleID, db.StatusPending, db.StatusConfirmed, b.StartDate, b.EndDate,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("scan overlapping bookings: %w", err)
	}
	if overlapping > 0 {
		return apperr.Conflict("vehicle %d already booked between %s and %s",
			b.VehicleID, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings
		(code, vehicle_id, customer_id, start_date, end_date, payment_method,
		 total_cost_cents, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at`,
		b.Code, b.VehicleID, b.CustomerID, b.StartDate, b.EndDate, b.PaymentMethod,
		b.TotalCostCents, b.Status, b.Notes, b.CreatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return tx.Commit()
}

func (r *bookingRepository) GetByCode(ctx context.Context, code string) (*db.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE code = $1`, code)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("booking", code)
		}
		return nil, fmt.Errorf("query booking by code: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetByStripeSessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE stripe_session_id = $1`, sessionID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("booking for session", sessionID)
		}
		return nil, fmt.Errorf("query booking by session: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) ListAll(ctx context.Context) ([]db.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID int) ([]db.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`,
		customerID)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]db.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus applies from -> to only if the booking is still in the
// expected state. The guard serializes concurrent transitions per booking:
// the loser of a race sees false.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int, from, to db.BookingStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *bookingRepository) SetPaymentInfo(ctx context.Context, id int, sessionID, paymentStatus string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET stripe_session_id = $1, payment_status = $2, updated_at = NOW() WHERE id = $3`,
		sessionID, paymentStatus, id)
	if err != nil {
		return fmt.Errorf("update booking payment info: %w", err)
	}
	return nil
}

func (r *bookingRepository) HasActiveForVehicle(ctx context.Context, vehicleID int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE vehicle_id = $1 AND status IN ($2, $3)`,
		vehicleID, db.StatusPending, db.StatusConfirmed,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count active bookings: %w", err)
	}
	return count > 0, nil
}
