package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

const maxApplicationMessage = 500

// IApplicationService defines the interface for the companion application ledger
type IApplicationService interface {
	Apply(ctx context.Context, companionID, applicantID int64, message string) (*dto.ApplicationDTO, error)
	Approve(ctx context.Context, companionID, applicantID, actingUserID int64) (*dto.ApplicationDTO, error)
	Reject(ctx context.Context, companionID, applicantID, actingUserID int64) (*dto.ApplicationDTO, error)
	// ListApplications returns every application to a listing; only its owner may read them.
	ListApplications(ctx context.Context, companionID, actingUserID int64) ([]*dto.ApplicationDTO, error)
	ListMyApplications(ctx context.Context, userID int64) ([]*dto.ApplicationDTO, error)
}

// ApplicationService implements the IApplicationService interface
type ApplicationService struct {
	store  repository.IStore
	ids    IDGenerator
	guard  *CapacityGuard
	cache  CompanionCache
	events *eventDispatcher
	logger *logger.Logger
}

// NewApplicationService creates a new IApplicationService instance
func NewApplicationService(deps Dependencies, guard *CapacityGuard) IApplicationService {
	deps = deps.withDefaults()
	return &ApplicationService{
		store:  deps.Store,
		ids:    deps.IDs,
		guard:  guard,
		cache:  deps.Cache,
		events: deps.dispatcher(),
		logger: deps.Logger,
	}
}

// Apply records a pending application. The listing is share-locked so its status
// cannot change between the recruiting check and the insert.
func (s *ApplicationService) Apply(ctx context.Context, companionID, applicantID int64, message string) (*dto.ApplicationDTO, error) {
	if utf8.RuneCountInString(message) > maxApplicationMessage {
		return nil, invalidArgument("message must be at most %d characters", maxApplicationMessage)
	}

	var app *model.CompanionApplication
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		companion, err := tx.Companions().FindByID(ctx, companionID, repository.LockShare)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find companion: %w", err)
		}

		if companion.OwnerID == applicantID {
			return ErrSelfApplication
		}
		if !companion.IsRecruiting() {
			return ErrNotRecruiting
		}
		exists, err := tx.Applications().Exists(ctx, companionID, applicantID)
		if err != nil {
			return fmt.Errorf("failed to check application: %w", err)
		}
		if exists {
			return ErrAlreadyApplied
		}

		id, err := s.ids.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate application id: %w", err)
		}
		app = &model.CompanionApplication{
			ID:          id,
			CompanionID: companionID,
			UserID:      applicantID,
			Message:     message,
			Status:      model.ApplicationPending,
		}
		if err := tx.Applications().Create(ctx, app); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyApplied
			}
			return fmt.Errorf("failed to create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.dispatch(ctx, &model.CompanionEvent{
		Type: model.EventApplicationSubmitted, CompanionID: companionID, UserID: applicantID,
	})
	return dto.FromApplication(app), nil
}

// Approve admits the applicant through the capacity guard. Losing the race for the
// last slot rolls back and leaves the application pending.
func (s *ApplicationService) Approve(ctx context.Context, companionID, applicantID, actingUserID int64) (*dto.ApplicationDTO, error) {
	var (
		app       *model.CompanionApplication
		companion *model.Companion
	)
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		var err error
		companion, app, err = s.lockPending(ctx, tx, companionID, applicantID, actingUserID)
		if err != nil {
			return err
		}

		outcome, err := s.guard.TryAdmit(ctx, tx, companion)
		if err != nil {
			return err
		}
		switch outcome {
		case Full:
			return ErrCompanionFull
		case NotRecruiting:
			return ErrNotRecruiting
		}

		if err := tx.Applications().UpdateStatus(ctx, app.ID, model.ApplicationApproved); err != nil {
			return fmt.Errorf("failed to approve application: %w", err)
		}
		app.Status = model.ApplicationApproved
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCompanionFull) || errors.Is(err, ErrNotRecruiting) {
			s.logger.InfoContext(ctx, "approval lost capacity check",
				zap.Int64("companion_id", companionID),
				zap.Int64("applicant_id", applicantID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, companionID)
	events := []*model.CompanionEvent{{
		Type: model.EventApplicationApproved, CompanionID: companionID, UserID: applicantID,
	}}
	if companion.Status == model.CompanionClosed {
		events = append(events, &model.CompanionEvent{
			Type: model.EventCompanionClosed, CompanionID: companionID, TripID: companion.TripID,
		})
	}
	s.events.dispatch(ctx, events...)
	return dto.FromApplication(app), nil
}

// Reject declines a pending application. Capacity is untouched.
func (s *ApplicationService) Reject(ctx context.Context, companionID, applicantID, actingUserID int64) (*dto.ApplicationDTO, error) {
	var app *model.CompanionApplication
	err := s.store.Transaction(ctx, func(tx repository.IStore) error {
		var err error
		_, app, err = s.lockPending(ctx, tx, companionID, applicantID, actingUserID)
		if err != nil {
			return err
		}
		if err := tx.Applications().UpdateStatus(ctx, app.ID, model.ApplicationRejected); err != nil {
			return fmt.Errorf("failed to reject application: %w", err)
		}
		app.Status = model.ApplicationRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.dispatch(ctx, &model.CompanionEvent{
		Type: model.EventApplicationRejected, CompanionID: companionID, UserID: applicantID,
	})
	return dto.FromApplication(app), nil
}

// lockPending acquires the listing, checks ownership and loads the still-pending application.
func (s *ApplicationService) lockPending(ctx context.Context, tx repository.IStore, companionID, applicantID, actingUserID int64) (*model.Companion, *model.CompanionApplication, error) {
	companion, err := s.guard.Acquire(ctx, tx, companionID)
	if err != nil {
		return nil, nil, err
	}
	if companion.OwnerID != actingUserID {
		return nil, nil, ErrNotCompanionOwner
	}

	app, err := tx.Applications().FindByCompanionAndUser(ctx, companionID, applicantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find application: %w", err)
	}
	if !app.IsPending() {
		return nil, nil, ErrApplicationDecided
	}
	return companion, app, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, companionID, actingUserID int64) ([]*dto.ApplicationDTO, error) {
	companion, err := s.store.Companions().FindByID(ctx, companionID, repository.LockNone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find companion: %w", err)
	}
	if companion.OwnerID != actingUserID {
		return nil, ErrNotCompanionOwner
	}

	apps, err := s.store.Applications().ListByCompanion(ctx, companionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return dto.FromApplications(apps), nil
}

func (s *ApplicationService) ListMyApplications(ctx context.Context, userID int64) ([]*dto.ApplicationDTO, error) {
	apps, err := s.store.Applications().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return dto.FromApplications(apps), nil
}
