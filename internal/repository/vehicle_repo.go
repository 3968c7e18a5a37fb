package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drivehub/internal/apperr"
	"drivehub/internal/db"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *db.Vehicle) error
	GetByID(ctx context.Context, id int) (*db.Vehicle, error)
	List(ctx context.Context, onlyAvailable bool) ([]db.Vehicle, error)
	Update(ctx context.Context, v *db.Vehicle) error
	Delete(ctx context.Context, id int) error
	SetAvailability(ctx context.Context, id int, available bool) error
	RefreshAvailability(ctx context.Context, id int) error
}

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(database *sql.DB) VehicleRepository {
	return &vehicleRepository{db: database}
}

const vehicleColumns = `id, category, brand, model, daily_rate_cents, available,
	COALESCE(registration_number, ''), COALESCE(year_of_manufacture, 0),
	COALESCE(description, ''), COALESCE(seats, 0), COALESCE(fuel_type, ''),
	COALESCE(transmission, ''), created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (*db.Vehicle, error) {
	var v db.Vehicle
	err := row.Scan(
		&v.ID, &v.Category, &v.Brand, &v.Model, &v.DailyRateCents, &v.Available,
		&v.RegistrationNumber, &v.YearOfManufacture,
		&v.Description, &v.Seats, &v.FuelType,
		&v.Transmission, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *db.Vehicle) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO vehicles
		(category, brand, model, daily_rate_cents, available, registration_number,
		 year_of_manufacture, description, seats, fuel_type, transmission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		v.Category, v.Brand, v.Model, v.DailyRateCents, v.Available, v.RegistrationNumber,
		v.YearOfManufacture, v.Description, v.Seats, v.FuelType, v.Transmission,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int) (*db.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("vehicle", id)
		}
		return nil, fmt.Errorf("query vehicle: %w", err)
	}
	return v, nil
}

func (r *vehicleRepository) List(ctx context.Context, onlyAvailable bool) ([]db.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if onlyAvailable {
		query += ` WHERE available`
	}
	query += ` ORDER BY brand, model, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *db.Vehicle) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE vehicles SET
			category = $1, brand = $2, model = $3, daily_rate_cents = $4,
			available = $5, registration_number = $6, year_of_manufacture = $7,
			description = $8, seats = $9, fuel_type = $10, transmission = $11,
			updated_at = NOW()
		WHERE id = $12`,
		v.Category, v.Brand, v.Model, v.DailyRateCents,
		v.Available, v.RegistrationNumber, v.YearOfManufacture,
		v.Description, v.Seats, v.FuelType, v.Transmission, v.ID)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("vehicle", v.ID)
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("vehicle", id)
	}
	return nil
}

func (r *vehicleRepository) SetAvailability(ctx context.Context, id int, available bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET available = $1, updated_at = NOW() WHERE id = $2`,
		available, id)
	if err != nil {
		return fmt.Errorf("set vehicle availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("vehicle", id)
	}
	return nil
}

// RefreshAvailability recomputes the availability flag from the confirmed
// bookings that span today. The flag is a cached projection; conflict checks
// never read it.
func (r *vehicleRepository) RefreshAvailability(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE vehicles v SET available = NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.vehicle_id = v.id
			  AND b.status = $1
			  AND b.start_date <= CURRENT_DATE
			  AND b.end_date > CURRENT_DATE
		), updated_at = NOW()
		WHERE v.id = $2`,
		db.StatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("refresh vehicle availability: %w", err)
	}
	return nil
}
