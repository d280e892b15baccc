package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// ITripService defines the interface for trip management
type ITripService interface {
	Create(ctx context.Context, ownerID int64, req *dto.CreateTripRequest) (*dto.TripDTO, error)
	Get(ctx context.Context, id int64) (*dto.TripDTO, error)
	List(ctx context.Context, page, size int) (*dto.TripPage, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*dto.TripDTO, error)
	Update(ctx context.Context, id, actingUserID int64, req *dto.UpdateTripRequest) (*dto.TripDTO, error)
	// Delete removes a trip and its closed or cancelled listings. It refuses while any listing recruits.
	Delete(ctx context.Context, id, actingUserID int64) error
	CanDeleteTrip(ctx context.Context, id int64) (bool, error)
	// GetSchedules returns a trip's itinerary ordered by day, then time.
	GetSchedules(ctx context.Context, tripID int64) ([]*dto.TripScheduleDTO, error)
	// ReplaceSchedules swaps the whole itinerary of the caller's trip for entries.
	ReplaceSchedules(ctx context.Context, tripID, actingUserID int64, entries []*dto.TripScheduleRequest) ([]*dto.TripScheduleDTO, error)
}

const (
	scheduleTimeLayout     = "15:04"
	maxSchedulePlaceName   = 255
	maxScheduleDescription = 1000
)

// TripService implements the ITripService interface
type TripService struct {
	store  repository.IStore
	ids    IDGenerator
	cache  CompanionCache
	events *eventDispatcher
	logger *logger.Logger
}

// NewTripService creates a new ITripService instance
func NewTripService(deps Dependencies) ITripService {
	deps = deps.withDefaults()
	return &TripService{
		store:  deps.Store,
		ids:    deps.IDs,
		cache:  deps.Cache,
		events: deps.dispatcher(),
		logger: deps.Logger,
	}
}

func (s *TripService) Create(ctx context.Context, ownerID int64, req *dto.CreateTripRequest) (*dto.TripDTO, error) {
	title := strings.TrimSpace(req.Title)
	destination := strings.TrimSpace(req.Destination)
	if title == "" || destination == "" {
		return nil, invalidArgument("title and destination are required")
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	themes, err := normalizeThemes(req.Themes)
	if err != nil {
		return nil, err
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate trip id: %w", err)
	}
	trip := &model.Trip{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		Themes:      themes,
		Status:      model.TripPlanning,
	}
	if err := s.store.Trips().Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return dto.FromTrip(trip), nil
}

func (s *TripService) Get(ctx context.Context, id int64) (*dto.TripDTO, error) {
	trip, err := s.find(ctx, s.store, id, repository.LockNone)
	if err != nil {
		return nil, err
	}
	return dto.FromTrip(trip), nil
}

func (s *TripService) List(ctx context.Context, page, size int) (*dto.TripPage, error) {
	page, size = normalizePage(page, size)
	trips, total, err := s.store.Trips().List(ctx, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return &dto.TripPage{Items: dto.FromTrips(trips), Total: total, Page: page, Size: size}, nil
}

func (s *TripService) ListByOwner(ctx context.Context, ownerID int64) ([]*dto.TripDTO, error) {
	trips, err := s.store.Trips().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return dto.FromTrips(trips), nil
}

func (s *TripService) Update(ctx context.Context, id, actingUserID int64, req *dto.UpdateTripRequest) (*dto.TripDTO, error) {
	var trip *model.Trip
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		var err error
		trip, err = s.find(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if trip.OwnerID != actingUserID {
			return ErrNotTripOwner
		}
		if err := applyTripUpdate(trip, req); err != nil {
			return err
		}
		if err := tx.Trips().Update(ctx, trip); err != nil {
			return fmt.Errorf("failed to update trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.FromTrip(trip), nil
}

func applyTripUpdate(trip *model.Trip, req *dto.UpdateTripRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return invalidArgument("title must not be empty")
		}
		trip.Title = strings.TrimSpace(*req.Title)
	}
	if req.Destination != nil {
		if strings.TrimSpace(*req.Destination) == "" {
			return invalidArgument("destination must not be empty")
		}
		trip.Destination = strings.TrimSpace(*req.Destination)
	}

	startStr, endStr := trip.StartDate.Format(dto.DateLayout), trip.EndDate.Format(dto.DateLayout)
	if req.StartDate != nil {
		startStr = *req.StartDate
	}
	if req.EndDate != nil {
		endStr = *req.EndDate
	}
	if req.StartDate != nil || req.EndDate != nil {
		start, end, err := parseRange(startStr, endStr)
		if err != nil {
			return err
		}
		trip.StartDate, trip.EndDate = start, end
	}

	if req.Budget != nil {
		trip.Budget = req.Budget
	}
	if req.Themes != nil {
		themes, err := normalizeThemes(*req.Themes)
		if err != nil {
			return err
		}
		trip.Themes = themes
	}
	if req.Status != nil {
		status, ok := model.ParseTripStatus(strings.ToUpper(*req.Status))
		if !ok {
			return invalidArgument("unknown trip status %q", *req.Status)
		}
		trip.Status = status
	}
	return nil
}

func (s *TripService) Delete(ctx context.Context, id, actingUserID int64) error {
	var removed []int64
	var roomIDs []int64
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		trip, err := s.find(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if trip.OwnerID != actingUserID {
			return ErrNotTripOwner
		}

		// Decided on the locked rows; a listing cannot reopen before the cascade.
		companions, err := tx.Companions().ListByTrip(ctx, id, repository.LockUpdate)
		if err != nil {
			return fmt.Errorf("failed to list companions: %w", err)
		}
		if slices.ContainsFunc(companions, (*model.Companion).IsRecruiting) {
			return ErrTripHasRecruitingCompanions
		}

		if err := tx.Schedules().DeleteByTrip(ctx, id); err != nil {
			return fmt.Errorf("failed to delete trip schedules: %w", err)
		}
		for _, c := range companions {
			roomID, err := deleteCompanionCascade(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			removed = append(removed, c.ID)
			roomIDs = append(roomIDs, roomID)
		}

		if err := tx.Trips().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "trip deleted",
		zap.Int64("trip_id", id),
		zap.Int("companions_removed", len(removed)),
	)
	s.cache.Invalidate(ctx, removed...)
	events := make([]*model.CompanionEvent, 0, len(removed))
	for i, companionID := range removed {
		events = append(events, &model.CompanionEvent{
			Type: model.EventCompanionDeleted, CompanionID: companionID, TripID: id, ChatRoomID: roomIDs[i],
		})
	}
	s.events.dispatch(ctx, events...)
	return nil
}

// CanDeleteTrip reports whether no listing of the trip is still recruiting.
func (s *TripService) CanDeleteTrip(ctx context.Context, id int64) (bool, error) {
	if _, err := s.find(ctx, s.store, id, repository.LockNone); err != nil {
		return false, err
	}
	return s.canDelete(ctx, s.store, id)
}

func (s *TripService) canDelete(ctx context.Context, st repository.IStore, id int64) (bool, error) {
	recruiting, err := st.Companions().ExistsByTripAndStatus(ctx, id, model.CompanionRecruiting)
	if err != nil {
		return false, fmt.Errorf("failed to check recruiting companions: %w", err)
	}
	return !recruiting, nil
}

func (s *TripService) GetSchedules(ctx context.Context, tripID int64) ([]*dto.TripScheduleDTO, error) {
	if _, err := s.find(ctx, s.store, tripID, repository.LockNone); err != nil {
		return nil, err
	}
	schedules, err := s.store.Schedules().ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip schedules: %w", err)
	}
	return dto.FromSchedules(schedules), nil
}

func (s *TripService) ReplaceSchedules(ctx context.Context, tripID, actingUserID int64, entries []*dto.TripScheduleRequest) ([]*dto.TripScheduleDTO, error) {
	var schedules []*model.TripSchedule
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		trip, err := s.find(ctx, tx, tripID, repository.LockUpdate)
		if err != nil {
			return err
		}
		if trip.OwnerID != actingUserID {
			return ErrNotTripOwner
		}
		built, err := s.buildSchedules(trip, entries)
		if err != nil {
			return err
		}

		if err := tx.Schedules().DeleteByTrip(ctx, tripID); err != nil {
			return fmt.Errorf("failed to clear trip schedules: %w", err)
		}
		if err := tx.Schedules().CreateBatch(ctx, built); err != nil {
			return fmt.Errorf("failed to save trip schedules: %w", err)
		}
		schedules, err = tx.Schedules().ListByTrip(ctx, tripID)
		if err != nil {
			return fmt.Errorf("failed to list trip schedules: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "trip schedules replaced",
		zap.Int64("trip_id", tripID),
		zap.Int("entries", len(schedules)),
	)
	return dto.FromSchedules(schedules), nil
}

func (s *TripService) buildSchedules(trip *model.Trip, entries []*dto.TripScheduleRequest) ([]*model.TripSchedule, error) {
	days := tripDays(trip)
	out := make([]*model.TripSchedule, 0, len(entries))
	for i, e := range entries {
		if e == nil {
			return nil, invalidArgument("schedule %d is empty", i)
		}
		if e.DayNumber < 1 || e.DayNumber > days {
			return nil, invalidArgument("schedule %d: day_number must be between 1 and %d", i, days)
		}
		at, err := time.Parse(scheduleTimeLayout, strings.TrimSpace(e.Time))
		if err != nil {
			return nil, invalidArgument("schedule %d: time must be HH:MM", i)
		}
		place := strings.TrimSpace(e.PlaceName)
		if place == "" || utf8.RuneCountInString(place) > maxSchedulePlaceName {
			return nil, invalidArgument("schedule %d: place_name must be 1 to %d characters", i, maxSchedulePlaceName)
		}
		placeType, ok := model.ParsePlaceType(strings.ToUpper(strings.TrimSpace(e.PlaceType)))
		if !ok {
			return nil, invalidArgument("schedule %d: unknown place_type %q", i, e.PlaceType)
		}
		if utf8.RuneCountInString(e.Description) > maxScheduleDescription {
			return nil, invalidArgument("schedule %d: description must be at most %d characters", i, maxScheduleDescription)
		}
		if e.Lat != nil && (*e.Lat < -90 || *e.Lat > 90) {
			return nil, invalidArgument("schedule %d: lat out of range", i)
		}
		if e.Lng != nil && (*e.Lng < -180 || *e.Lng > 180) {
			return nil, invalidArgument("schedule %d: lng out of range", i)
		}

		id, err := s.ids.NextID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate schedule id: %w", err)
		}
		out = append(out, &model.TripSchedule{
			ID:          id,
			TripID:      trip.ID,
			DayNumber:   e.DayNumber,
			Time:        at.Format(scheduleTimeLayout),
			PlaceName:   place,
			PlaceType:   placeType,
			Description: e.Description,
			Lat:         e.Lat,
			Lng:         e.Lng,
		})
	}
	return out, nil
}

// tripDays counts the calendar days of a trip, both ends included.
func tripDays(t *model.Trip) int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

func (s *TripService) find(ctx context.Context, st repository.IStore, id int64, lock repository.LockMode) (*model.Trip, error) {
	trip, err := st.Trips().FindByID(ctx, id, lock)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return trip, nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dto.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidArgument("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dto.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidArgument("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalidArgument("end_date is before start_date")
	}
	return start, end, nil
}

func normalizeThemes(themes []string) ([]string, error) {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		t = strings.ToUpper(strings.TrimSpace(t))
		if _, ok := model.TripThemes[t]; !ok {
			return nil, invalidArgument("unknown theme %q", t)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}
