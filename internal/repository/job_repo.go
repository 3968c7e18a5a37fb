package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"drivehub/internal/db"

	"github.com/lib/pq"
)

// FinishedBooking pairs a booking with its vehicle so the availability
// projection can be refreshed after the sweep.
type FinishedBooking struct {
	ID        int
	VehicleID int
}

type JobRepository interface {
	GetConfirmedPastEndDate(ctx context.Context) ([]FinishedBooking, error)
	UpdateBookingStatuses(ctx context.Context, ids []int, from, to db.BookingStatus) error
}

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(database *sql.DB) JobRepository {
	return &jobRepository{db: database}
}

// GetConfirmedPastEndDate returns confirmed bookings whose rental window has
// ended.
func (r *jobRepository) GetConfirmedPastEndDate(ctx context.Context) ([]FinishedBooking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, vehicle_id FROM bookings WHERE status = $1 AND end_date < CURRENT_DATE`,
		db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("query confirmed bookings past end date: %w", err)
	}
	defer rows.Close()

	var finished []FinishedBooking
	for rows.Next() {
		var fb FinishedBooking
		if err := rows.Scan(&fb.ID, &fb.VehicleID); err != nil {
			return nil, fmt.Errorf("scan finished booking: %w", err)
		}
		finished = append(finished, fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finished bookings: %w", err)
	}
	return finished, nil
}

// UpdateBookingStatuses moves a batch of bookings from one status to another.
// The status guard skips rows that moved since they were selected, so a
// booking cancelled mid-sweep never leaves its terminal state.
func (r *jobRepository) UpdateBookingStatuses(ctx context.Context, ids []int, from, to db.BookingStatus) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`,
		to, pq.Array(ids), from)
	if err != nil {
		return fmt.Errorf("update booking statuses: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Printf("could not get rows affected: %v", err)
	} else {
		log.Printf("updated status for %d bookings to %q", affected, to)
	}
	return nil
}
