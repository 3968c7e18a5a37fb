package service

import (
	"context"
	"fmt"
	"log"

	"drivehub/internal/db"
	"drivehub/internal/repository"
)

type JobService struct {
	repo     repository.JobRepository
	vehicles repository.VehicleRepository
}

func NewJobService(repo repository.JobRepository, vehicles repository.VehicleRepository) *JobService {
	return &JobService{repo: repo, vehicles: vehicles}
}

// CompleteFinishedBookings marks confirmed bookings whose rental window has
// ended as COMPLETED and refreshes the availability projection of the
// affected vehicles.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) error {
	log.Println("cron: checking for bookings to mark as completed...")

	finished, err := s.repo.GetConfirmedPastEndDate(ctx)
	if err != nil {
		return fmt.Errorf("cron: get confirmed bookings past end date: %w", err)
	}
	if len(finished) == 0 {
		log.Println("cron: no confirmed bookings past their end date")
		return nil
	}

	ids := make([]int, 0, len(finished))
	vehicleIDs := make(map[int]struct{}, len(finished))
	for _, fb := range finished {
		ids = append(ids, fb.ID)
		vehicleIDs[fb.VehicleID] = struct{}{}
	}

	log.Printf("cron: marking %d bookings as completed. IDs: %v", len(ids), ids)
	if err := s.repo.UpdateBookingStatuses(ctx, ids, db.StatusConfirmed, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron: update booking statuses: %w", err)
	}

	for vehicleID := range vehicleIDs {
		if err := s.vehicles.RefreshAvailability(ctx, vehicleID); err != nil {
			log.Printf("cron: could not refresh availability for vehicle %d: %v", vehicleID, err)
		}
	}
	return nil
}
