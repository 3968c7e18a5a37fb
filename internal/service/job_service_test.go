package service

import (
	"context"
	"testing"
	"time"

	"drivehub/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedBooking(t *testing.T, repo *fakeBookingRepo, code string, start, end time.Time) *db.Booking {
	t.Helper()
	b := &db.Booking{
		Code: code, VehicleID: 1, CustomerID: 1,
		StartDate: start, EndDate: end,
		PaymentMethod: db.PaymentCash, Status: db.StatusConfirmed,
		CreatedAt: start,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestCompleteFinishedBookings(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	past := confirmedBooking(t, f.bookings, "past",
		date(2024, time.December, 20), date(2024, time.December, 27))
	ongoing := confirmedBooking(t, f.bookings, "ongoing",
		date(2024, time.December, 30), date(2025, time.January, 3))

	jobs := &fakeJobRepo{bookings: f.bookings, today: testToday}
	svc := NewJobService(jobs, f.vehicles)
	require.NoError(t, svc.CompleteFinishedBookings(ctx))

	stored, err := f.bookings.GetByCode(ctx, past.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCompleted, stored.Status)

	stored, err = f.bookings.GetByCode(ctx, ongoing.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, stored.Status, "a booking still inside its window is untouched")

	assert.Contains(t, f.vehicles.refreshed, 1)
}

func TestSweepSkipsBookingCancelledMidFlight(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()

	past := confirmedBooking(t, f.bookings, "past",
		date(2024, time.December, 20), date(2024, time.December, 27))

	// An admin cancels the booking after the sweep selected it but before
	// the batch update runs. The guarded update must leave it CANCELLED.
	jobs := &fakeJobRepo{bookings: f.bookings, today: testToday}
	jobs.afterFetch = func() {
		ok, err := f.bookings.UpdateStatus(ctx, past.ID, db.StatusConfirmed, db.StatusCancelled)
		require.NoError(t, err)
		require.True(t, ok)
	}

	svc := NewJobService(jobs, f.vehicles)
	require.NoError(t, svc.CompleteFinishedBookings(ctx))

	stored, err := f.bookings.GetByCode(ctx, past.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, stored.Status)
}
