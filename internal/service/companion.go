package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// ICompanionService defines the interface for companion listing management
type ICompanionService interface {
	Create(ctx context.Context, ownerID int64, req *dto.CreateCompanionRequest) (*dto.CompanionDTO, error)
	Get(ctx context.Context, id int64) (*dto.CompanionDTO, error)
	List(ctx context.Context, query *dto.CompanionQuery) (*dto.CompanionPage, error)
	Update(ctx context.Context, id, actingUserID int64, req *dto.UpdateCompanionRequest) (*dto.CompanionDTO, error)
	Delete(ctx context.Context, id, actingUserID int64) error
}

// CompanionService implements the ICompanionService interface
type CompanionService struct {
	store  repository.IStore
	ids    IDGenerator
	chat   *ChatService
	cache  CompanionCache
	events *eventDispatcher
	logger *logger.Logger
}

// NewCompanionService creates a new ICompanionService instance
func NewCompanionService(deps Dependencies, chat *ChatService) ICompanionService {
	deps = deps.withDefaults()
	return &CompanionService{
		store:  deps.Store,
		ids:    deps.IDs,
		chat:   chat,
		cache:  deps.Cache,
		events: deps.dispatcher(),
		logger: deps.Logger,
	}
}

// Create opens a recruiting listing on one of the caller's trips together with its chat room.
func (s *CompanionService) Create(ctx context.Context, ownerID int64, req *dto.CreateCompanionRequest) (*dto.CompanionDTO, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidArgument("title is required")
	}
	if req.MaxMembers < 1 {
		return nil, invalidArgument("max_members must be at least 1")
	}

	var (
		companion *model.Companion
		room      *model.ChatRoom
	)
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		trip, err := tx.Trips().FindByID(ctx, req.TripID, repository.LockShare)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTripNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find trip: %w", err)
		}
		if trip.OwnerID != ownerID {
			return ErrNotTripOwner
		}

		id, err := s.ids.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate companion id: %w", err)
		}
		companion = &model.Companion{
			ID:             id,
			TripID:         trip.ID,
			OwnerID:        ownerID,
			Title:          title,
			Content:        req.Content,
			MaxMembers:     req.MaxMembers,
			CurrentMembers: 1,
			Status:         model.CompanionRecruiting,
		}
		if err := tx.Companions().Create(ctx, companion); err != nil {
			return fmt.Errorf("failed to create companion: %w", err)
		}

		room, err = s.chat.ProvisionRoom(ctx, tx, companion.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "companion listing created",
		zap.Int64("companion_id", companion.ID),
		zap.Int64("trip_id", companion.TripID),
		zap.Int64("chat_room_id", room.ID),
	)
	s.events.dispatch(ctx,
		&model.CompanionEvent{Type: model.EventCompanionCreated, CompanionID: companion.ID, TripID: companion.TripID, UserID: ownerID},
		&model.CompanionEvent{Type: model.EventChatRoomProvisioned, CompanionID: companion.ID, ChatRoomID: room.ID, UserID: ownerID},
	)

	out := dto.FromCompanion(companion)
	out.ChatRoomID = room.ID
	return out, nil
}

// Get returns a listing, served from the cache when possible.
func (s *CompanionService) Get(ctx context.Context, id int64) (*dto.CompanionDTO, error) {
	cached, version, ok := s.cache.Get(ctx, id)
	if ok {
		return cached, nil
	}

	companion, err := s.store.Companions().FindByID(ctx, id, repository.LockNone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find companion: %w", err)
	}

	out := dto.FromCompanion(companion)
	room, err := s.store.ChatRooms().FindByCompanion(ctx, id)
	switch {
	case err == nil:
		out.ChatRoomID = room.ID
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to find chat room: %w", err)
	}

	s.cache.Set(ctx, out, version)
	return out, nil
}

func (s *CompanionService) List(ctx context.Context, query *dto.CompanionQuery) (*dto.CompanionPage, error) {
	filter := repository.CompanionFilter{
		TripID:      query.TripID,
		OwnerID:     query.OwnerID,
		Destination: strings.TrimSpace(query.Destination),
	}
	if query.Status != "" {
		status, ok := model.ParseCompanionStatus(strings.ToUpper(query.Status))
		if !ok {
			return nil, invalidArgument("unknown status %q", query.Status)
		}
		filter.Status = status
	}

	page, size := normalizePage(query.Page, query.Size)
	companions, total, err := s.store.Companions().List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list companions: %w", err)
	}
	return &dto.CompanionPage{
		Items: dto.FromCompanions(companions),
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// Update edits a listing. Title and content are plain edits; max members and status
// are owner overrides applied as given even when they break the capacity rules.
func (s *CompanionService) Update(ctx context.Context, id, actingUserID int64, req *dto.UpdateCompanionRequest) (*dto.CompanionDTO, error) {
	var override *model.CompanionStatus
	if req.Status != nil {
		status, ok := model.ParseCompanionStatus(strings.ToUpper(*req.Status))
		if !ok {
			return nil, invalidArgument("unknown status %q", *req.Status)
		}
		override = &status
	}
	if req.MaxMembers != nil && *req.MaxMembers < 1 {
		return nil, invalidArgument("max_members must be at least 1")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, invalidArgument("title must not be empty")
	}

	var (
		companion *model.Companion
		closed    bool
	)
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		var err error
		companion, err = tx.Companions().FindByID(ctx, id, repository.LockUpdate)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find companion: %w", err)
		}
		if companion.OwnerID != actingUserID {
			return ErrNotCompanionOwner
		}

		if req.Title != nil {
			companion.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			companion.Content = *req.Content
		}

		previous := companion.Status
		if req.MaxMembers != nil || override != nil {
			s.applyOverride(ctx, companion, req.MaxMembers, override)
		}
		closed = previous != model.CompanionClosed && companion.Status == model.CompanionClosed

		if err := tx.Companions().Update(ctx, companion); err != nil {
			return fmt.Errorf("failed to update companion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	if closed {
		s.events.dispatch(ctx, &model.CompanionEvent{Type: model.EventCompanionClosed, CompanionID: id, TripID: companion.TripID})
	}
	return s.Get(ctx, id)
}

// applyOverride sets owner-controlled capacity fields and logs every rule the result breaks.
func (s *CompanionService) applyOverride(ctx context.Context, c *model.Companion, maxMembers *int, status *model.CompanionStatus) {
	if maxMembers != nil {
		c.MaxMembers = *maxMembers
	}
	if status != nil {
		c.Status = *status
	}

	var violations []string
	if c.CurrentMembers > c.MaxMembers {
		violations = append(violations, "current_members exceeds max_members")
	}
	if c.Status == model.CompanionClosed && c.CurrentMembers != c.MaxMembers {
		violations = append(violations, "closed while below capacity")
	}
	if c.Status == model.CompanionRecruiting && !c.HasOpenSlot() {
		violations = append(violations, "recruiting with no open slot")
	}
	if len(violations) == 0 {
		return
	}
	s.logger.WarnContext(ctx, "owner override accepted with capacity violation",
		zap.Int64("companion_id", c.ID),
		zap.Strings("violations", violations),
		zap.Int("current_members", c.CurrentMembers),
		zap.Int("max_members", c.MaxMembers),
		zap.String("status", string(c.Status)),
	)
}

// Delete removes a listing together with its applications and chat room.
func (s *CompanionService) Delete(ctx context.Context, id, actingUserID int64) error {
	var (
		companion *model.Companion
		roomID    int64
	)
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		var err error
		companion, err = tx.Companions().FindByID(ctx, id, repository.LockUpdate)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find companion: %w", err)
		}
		if companion.OwnerID != actingUserID {
			return ErrNotCompanionOwner
		}
		roomID, err = deleteCompanionCascade(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.events.dispatch(ctx, &model.CompanionEvent{
		Type: model.EventCompanionDeleted, CompanionID: id, TripID: companion.TripID, ChatRoomID: roomID,
	})
	return nil
}

// deleteCompanionCascade removes a listing's applications, room and row. It returns
// the removed room id, or 0 when the listing had none.
func deleteCompanionCascade(ctx context.Context, tx repository.IStore, companionID int64) (int64, error) {
	var roomID int64
	room, err := tx.ChatRooms().FindByCompanion(ctx, companionID)
	switch {
	case err == nil:
		roomID = room.ID
	case !errors.Is(err, repository.ErrNotFound):
		return 0, fmt.Errorf("failed to find chat room: %w", err)
	}

	if err := tx.Applications().DeleteByCompanion(ctx, companionID); err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}
	if err := tx.ChatRooms().DeleteByCompanion(ctx, companionID); err != nil {
		return 0, fmt.Errorf("failed to delete chat room: %w", err)
	}
	if err := tx.Companions().Delete(ctx, companionID); err != nil {
		return 0, fmt.Errorf("failed to delete companion: %w", err)
	}
	return roomID, nil
}
