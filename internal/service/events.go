package service

import (
	"context"

	apperrors "kassa/internal/errors"
	"kassa/internal/metrics"
	"kassa/internal/models"
)

// EventService manages the event lifecycle and the analytics rollup.
type EventService struct {
	deps Deps
}

func NewEventService(deps Deps) *EventService {
	return &EventService{deps: deps}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	ev, err := s.deps.Engine.CreateEvent(models.EventConfig{
		Name:            req.Name,
		BasePrice:       req.BasePrice,
		Rows:            req.Rows,
		Cols:            req.Cols,
		DiscountCode:    req.DiscountCode,
		DiscountPercent: req.DiscountPercent,
		Date:            req.Date,
		Time:            req.Time,
	})
	if err != nil {
		return nil, err
	}

	persistSnapshot(s.deps)
	syncEventGauges(s.deps, ev.ID)
	return &models.CreateEventResponse{ID: ev.ID}, nil
}

func (s *EventService) List(ctx context.Context) models.ListEventsResponse {
	stats := s.deps.Engine.Stats()
	out := make(models.ListEventsResponse, 0, len(stats))
	for _, st := range stats {
		out = append(out, s.listItem(st.EventID))
	}
	return out
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.ListEventsResponseItem, error) {
	if _, ok := s.deps.Engine.Registry().Get(id); !ok {
		return nil, apperrors.NotFoundf("event %d", id)
	}
	item := s.listItem(id)
	return &item, nil
}

func (s *EventService) listItem(id int64) models.ListEventsResponseItem {
	ev, ok := s.deps.Engine.Registry().Get(id)
	if !ok {
		return models.ListEventsResponseItem{ID: id}
	}
	occupancy, _ := s.deps.Engine.OccupancyPercent(id)
	return models.ListEventsResponseItem{
		ID:               ev.ID,
		Name:             ev.Config.Name,
		Date:             ev.Config.Date,
		Time:             ev.Config.Time,
		BasePrice:        ev.Config.BasePrice,
		Rows:             ev.Config.Rows,
		Cols:             ev.Config.Cols,
		OccupancyPercent: occupancy,
	}
}

func (s *EventService) ChangePrice(ctx context.Context, id int64, req *models.ChangePriceRequest) error {
	if err := s.deps.Engine.ChangePrice(id, req.BasePrice); err != nil {
		return err
	}
	persistSnapshot(s.deps)
	return nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.deps.Engine.DeleteEvent(id); err != nil {
		return err
	}
	persistSnapshot(s.deps)
	metrics.DropEventGauges(id)
	invalidateEvent(ctx, s.deps.Valkey, id)
	return nil
}

// Analytics rolls up per-event statistics. The most popular event is the one
// with the highest occupancy; ties go to the lower id.
func (s *EventService) Analytics(ctx context.Context) *models.AnalyticsResponse {
	stats := s.deps.Engine.Stats()

	resp := &models.AnalyticsResponse{
		Events: make([]models.EventAnalytics, 0, len(stats)),
	}
	best := -1.0
	for _, st := range stats {
		resp.Events = append(resp.Events, models.EventAnalytics{
			EventID:          st.EventID,
			Name:             st.Name,
			TotalBookings:    st.TotalBookings,
			SeatsBooked:      st.SeatsBooked,
			TotalSeats:       st.TotalSeats,
			OccupancyPercent: st.Occupancy,
			Revenue:          st.Revenue,
			BasePrice:        st.BasePrice,
		})
		resp.TotalRevenue += st.Revenue
		if st.Occupancy > best {
			best = st.Occupancy
			resp.MostPopularEvent = st.Name
		}
	}
	return resp
}
