package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"drivehub/internal/apperr"
	"drivehub/internal/db"
	"drivehub/internal/repository"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// fakeBookingRepo mirrors the transactional behavior of the SQL repository:
// overlap check and insert are one atomic unit under the mutex.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*db.Booking
	nextID   int
}

func (f *fakeBookingRepo) Create(_ context.Context, b *db.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.bookings {
		if existing.VehicleID == b.VehicleID && existing.Active() && existing.Overlaps(b.StartDate, b.EndDate) {
			return apperr.Conflict("vehicle %d already booked", b.VehicleID)
		}
	}
	f.nextID++
	b.ID = f.nextID
	b.UpdatedAt = b.CreatedAt
	stored := *b
	f.bookings = append(f.bookings, &stored)
	return nil
}

func (f *fakeBookingRepo) GetByCode(_ context.Context, code string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.Code == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("booking", code)
}

func (f *fakeBookingRepo) GetByStripeSessionID(_ context.Context, sessionID string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.StripeSessionID == sessionID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("booking for session", sessionID)
}

func (f *fakeBookingRepo) ListAll(_ context.Context) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(*db.Booking) bool { return true }), nil
}

func (f *fakeBookingRepo) ListByCustomer(_ context.Context, customerID int) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(b *db.Booking) bool { return b.CustomerID == customerID }), nil
}

func (f *fakeBookingRepo) sorted(keep func(*db.Booking) bool) []db.Booking {
	var out []db.Booking
	for _, b := range f.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int, from, to db.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			if b.Status != from {
				return false, nil
			}
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) SetPaymentInfo(_ context.Context, id int, sessionID, paymentStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			b.StripeSessionID = sessionID
			b.PaymentStatus = paymentStatus
			return nil
		}
	}
	return apperr.NotFound("booking", id)
}

func (f *fakeBookingRepo) HasActiveForVehicle(_ context.Context, vehicleID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.VehicleID == vehicleID && b.Active() {
			return true, nil
		}
	}
	return false, nil
}

// fakeVehicleRepo keeps vehicles in a map and recomputes the availability
// projection against the linked booking repo, with "today" pinned for
// deterministic tests.
type fakeVehicleRepo struct {
	mu        sync.Mutex
	vehicles  map[int]*db.Vehicle
	bookings  *fakeBookingRepo
	today     time.Time
	refreshed []int
	nextID    int
}

func newFakeVehicleRepo(bookings *fakeBookingRepo, today time.Time) *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: map[int]*db.Vehicle{}, bookings: bookings, today: today}
}

func (f *fakeVehicleRepo) add(v db.Vehicle) *db.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == 0 {
		f.nextID++
		v.ID = f.nextID
	} else if v.ID > f.nextID {
		f.nextID = v.ID
	}
	f.vehicles[v.ID] = &v
	return &v
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *db.Vehicle) error {
	stored := f.add(*v)
	v.ID = stored.ID
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id int) (*db.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return nil, apperr.NotFound("vehicle", id)
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVehicleRepo) List(_ context.Context, onlyAvailable bool) ([]db.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Vehicle
	for _, v := range f.vehicles {
		if !onlyAvailable || v.Available {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVehicleRepo) Update(_ context.Context, v *db.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[v.ID]; !ok {
		return apperr.NotFound("vehicle", v.ID)
	}
	stored := *v
	f.vehicles[v.ID] = &stored
	return nil
}

func (f *fakeVehicleRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[id]; !ok {
		return apperr.NotFound("vehicle", id)
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) SetAvailability(_ context.Context, id int, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return apperr.NotFound("vehicle", id)
	}
	v.Available = available
	return nil
}

func (f *fakeVehicleRepo) RefreshAvailability(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, id)
	v, ok := f.vehicles[id]
	if !ok {
		return apperr.NotFound("vehicle", id)
	}
	occupied := false
	if f.bookings != nil {
		f.bookings.mu.Lock()
		for _, b := range f.bookings.bookings {
			if b.VehicleID == id && b.Status == db.StatusConfirmed &&
				!b.StartDate.After(f.today) && b.EndDate.After(f.today) {
				occupied = true
				break
			}
		}
		f.bookings.mu.Unlock()
	}
	v.Available = !occupied
	return nil
}

// contendedBookingRepo lets a test slip a competing transition in between
// the service's read of a booking and its guarded status update.
type contendedBookingRepo struct {
	*fakeBookingRepo
	beforeUpdate func()
}

func (r *contendedBookingRepo) UpdateStatus(ctx context.Context, id int, from, to db.BookingStatus) (bool, error) {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}
	return r.fakeBookingRepo.UpdateStatus(ctx, id, from, to)
}

// fakeJobRepo drives the sweep against the in-memory booking repo. The batch
// update mirrors the SQL repository's status guard: rows that moved since
// selection are skipped.
type fakeJobRepo struct {
	bookings   *fakeBookingRepo
	today      time.Time
	afterFetch func()
}

func (f *fakeJobRepo) GetConfirmedPastEndDate(_ context.Context) ([]repository.FinishedBooking, error) {
	f.bookings.mu.Lock()
	var finished []repository.FinishedBooking
	for _, b := range f.bookings.bookings {
		if b.Status == db.StatusConfirmed && b.EndDate.Before(f.today) {
			finished = append(finished, repository.FinishedBooking{ID: b.ID, VehicleID: b.VehicleID})
		}
	}
	f.bookings.mu.Unlock()

	if f.afterFetch != nil {
		hook := f.afterFetch
		f.afterFetch = nil
		hook()
	}
	return finished, nil
}

func (f *fakeJobRepo) UpdateBookingStatuses(ctx context.Context, ids []int, from, to db.BookingStatus) error {
	for _, id := range ids {
		if _, err := f.bookings.UpdateStatus(ctx, id, from, to); err != nil {
			return err
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[int]*db.User
}

func newFakeUserRepo(users ...db.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[int]*db.User{}}
	for _, u := range users {
		stored := u
		f.users[u.ID] = &stored
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *db.User) error {
	u.ID = len(f.users) + 1
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

type fakeRefunder struct {
	refunded []string
	err      error
}

func (f *fakeRefunder) RefundBySessionID(sessionID string) error {
	if f.err != nil {
		return f.err
	}
	f.refunded = append(f.refunded, sessionID)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []db.BookingStatus
}

func (f *fakeNotifier) BookingStatusChanged(b db.Booking, _ db.Vehicle, _ db.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, b.Status)
}

type fakeGateway struct {
	url       string
	sessionID string
	err       error
	requested int64
}

func (f *fakeGateway) CreateCheckoutSession(amountCents int64, _, _, _ string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.requested = amountCents
	return f.url, f.sessionID, nil
}
