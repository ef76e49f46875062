package service

import (
	"context"
	"encoding/json"

	"kassa/internal/models"
)

// SeatService serves the read-heavy seat views, fronted by the Valkey cache.
type SeatService struct {
	deps Deps
}

func NewSeatService(deps Deps) *SeatService {
	return &SeatService{deps: deps}
}

// Availability returns free/booked counts for the event.
func (s *SeatService) Availability(ctx context.Context, eventID int64) (*models.AvailabilityResponse, error) {
	if s.deps.Valkey != nil {
		if raw, err := s.deps.Valkey.GetAvailabilityRaw(ctx, eventID); err == nil {
			var cached models.AvailabilityResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	available, err := s.deps.Engine.AvailableSeatCount(eventID)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.deps.Engine.OccupancyPercent(eventID)
	if err != nil {
		return nil, err
	}

	total := 0
	if ev, ok := s.deps.Engine.Registry().Get(eventID); ok {
		total = ev.Config.Rows * ev.Config.Cols
	}
	resp := &models.AvailabilityResponse{
		EventID:          eventID,
		TotalSeats:       total,
		BookedSeats:      total - available,
		AvailableSeats:   available,
		OccupancyPercent: occupancy,
	}

	if s.deps.Valkey != nil {
		s.deps.Valkey.SetAvailability(ctx, eventID, resp)
	}
	return resp, nil
}

// SeatMap returns the row-by-row occupancy snapshot.
func (s *SeatService) SeatMap(ctx context.Context, eventID int64) (*models.SeatMapResponse, error) {
	if s.deps.Valkey != nil {
		if raw, err := s.deps.Valkey.GetSeatMapRaw(ctx, eventID); err == nil {
			var cached models.SeatMapResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	rows, nRows, nCols, err := s.deps.Engine.SeatMap(eventID)
	if err != nil {
		return nil, err
	}

	resp := &models.SeatMapResponse{
		EventID: eventID,
		Rows:    nRows,
		Cols:    nCols,
		SeatMap: rows,
	}

	if s.deps.Valkey != nil {
		s.deps.Valkey.SetSeatMap(ctx, eventID, resp)
	}
	return resp, nil
}

// Waitlist returns the queue snapshot in service order.
func (s *SeatService) Waitlist(ctx context.Context, eventID int64) (*models.WaitlistResponse, error) {
	entries, err := s.deps.Engine.Waitlist(eventID)
	if err != nil {
		return nil, err
	}

	resp := &models.WaitlistResponse{
		EventID: eventID,
		Waiting: len(entries),
		Entries: make([]models.WaitlistEntryItem, 0, len(entries)),
	}
	for i, e := range entries {
		resp.Entries = append(resp.Entries, models.WaitlistEntryItem{
			Position:       i + 1,
			Username:       e.Identity.Username,
			Phone:          e.Identity.Phone,
			Email:          e.Identity.Email,
			RequestedSeats: e.RequestedSeats,
			JoinedAt:       e.JoinedAt,
		})
	}
	return resp, nil
}
